package staff

import (
	"fmt"
	"time"
)

type Type string

const (
	TypePengaliKubur   Type = "PENGALI_KUBUR"
	TypePemandiJenazah Type = "PEMANDI_JENAZAH"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePengaliKubur, TypePemandiJenazah:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown staff type: %s", s)
	}
}

// NoStaffNeededID is the well-known sentinel row meaning the family handles
// the washing themselves. It is seeded by migration, always considered
// available, and sorted first in its group.
const NoStaffNeededID = "00000000-0000-0000-0000-000000000000"

type Staff struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	StaffType Type      `json:"staffType"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Assignment links a booking to a staff member for the burial day.
type Assignment struct {
	BookingID string `json:"bookingId"`
	StaffID   string `json:"staffId"`
	StaffType Type   `json:"staffType"`
}
