package plot

import "fmt"

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusBooked    Status = "BOOKED"
	StatusOccupied  Status = "OCCUPIED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAvailable, StatusBooked, StatusOccupied:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown plot status: %s", s)
	}
}
