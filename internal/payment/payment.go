package payment

import "fmt"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusSubmitted  Status = "SUBMITTED"
	StatusSuccessful Status = "SUCCESSFUL"
	StatusRejected   Status = "REJECTED"
	StatusCancelled  Status = "CANCELLED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusSubmitted, StatusSuccessful, StatusRejected, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown payment status: %s", s)
	}
}

// Live reports whether the payment still counts against the one-live-payment
// invariant of its booking.
func (s Status) Live() bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusSuccessful:
		return true
	default:
		return false
	}
}

const MethodQR = "QR"
