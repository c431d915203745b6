package booking

import "fmt"

type Status string

const (
	StatusPending                Status = "PENDING"
	StatusApprovedPendingPayment Status = "APPROVED_PENDING_PAYMENT"
	StatusPaymentConfirmed       Status = "PAYMENT_CONFIRMED"
	StatusCompleted              Status = "COMPLETED"
	StatusRejected               Status = "REJECTED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApprovedPendingPayment, StatusPaymentConfirmed, StatusCompleted, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:                {StatusApprovedPendingPayment: true, StatusRejected: true},
	StatusApprovedPendingPayment: {StatusPaymentConfirmed: true, StatusRejected: true},
	StatusPaymentConfirmed:       {StatusCompleted: true},
	StatusCompleted:              {},
	StatusRejected:               {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}
