package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"epusara/internal/api"
	"epusara/internal/booking"
	"epusara/internal/kit"
	"epusara/internal/lifecycle"
	"epusara/internal/payment"
	"epusara/internal/plot"
	"epusara/internal/staff"
	"epusara/internal/user"
	"epusara/pkg/config"
)

type Dependencies struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Logger *zap.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(api.CORSMiddleware(api.CORSOptions{
		AllowedOrigins: deps.Cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAgeSeconds:  600,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	usersRepo := user.NewRepository(deps.DB)
	bookingsRepo := booking.NewRepository(deps.DB)
	paymentsRepo := payment.NewRepository(deps.DB)
	plotsRepo := plot.NewRepository(deps.DB)
	kitsRepo := kit.NewRepository(deps.DB)
	staffRepo := staff.NewRepository(deps.DB)

	engine := lifecycle.NewEngine(
		lifecycle.NewPgxStore(deps.DB, deps.Logger),
		deps.Cfg.PaymentDueDays,
	)

	bookingHandlers := booking.Handlers{
		DB:       deps.DB,
		Bookings: bookingsRepo,
		Payments: paymentsRepo,
		Logger:   deps.Logger,
	}
	paymentHandlers := payment.Handlers{
		DB:       deps.DB,
		Payments: paymentsRepo,
		Logger:   deps.Logger,
	}
	userHandlers := user.Handlers{Users: usersRepo, Logger: deps.Logger}
	plotHandlers := plot.Handlers{Plots: plotsRepo, Logger: deps.Logger}
	kitHandlers := kit.Handlers{DB: deps.DB, Kits: kitsRepo, Logger: deps.Logger}
	staffHandlers := staff.Handlers{Staff: staffRepo, Logger: deps.Logger}
	lifecycleHandlers := lifecycle.Handlers{Engine: engine, Logger: deps.Logger}

	r.Route("/v1", func(r chi.Router) {
		// Public
		r.Get("/plots", plotHandlers.List)

		// Customer (authenticated)
		r.Group(func(r chi.Router) {
			r.Use(api.RequireUser(deps.Cfg))

			r.Get("/me", userHandlers.Me)
			r.Post("/bookings", bookingHandlers.Create)
			r.Get("/bookings", bookingHandlers.List)
			r.Get("/bookings/{id}", bookingHandlers.Get)
			r.Post("/payments/{id}/submit", paymentHandlers.Submit)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(api.RequireUser(deps.Cfg))
			r.Use(api.RequireAdmin(usersRepo, user.RoleAdmin))

			r.Post("/bookings/{id}/approve", lifecycleHandlers.Approve)
			r.Post("/bookings/{id}/reject", lifecycleHandlers.Reject)
			r.Post("/bookings/{id}/complete", lifecycleHandlers.Complete)
			r.Post("/payments/{id}/verify", lifecycleHandlers.VerifyPayment)

			r.Get("/staff/available", staffHandlers.Available)
			r.Get("/staff", staffHandlers.List)
			r.Post("/staff", staffHandlers.Create)
			r.Patch("/staff/{id}", staffHandlers.Patch)

			r.Get("/kits", kitHandlers.List)
			r.Get("/kits/{id}/usage", kitHandlers.Usage)
			r.Post("/kits/{id}/adjust", kitHandlers.Adjust)
		})
	})

	return r
}
