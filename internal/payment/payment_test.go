package payment

import "testing"

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "SUBMITTED", "SUCCESSFUL", "REJECTED", "CANCELLED"} {
		if _, err := ParseStatus(s); err != nil {
			t.Fatalf("ParseStatus(%s): %v", s, err)
		}
	}
	if _, err := ParseStatus("PAID"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestStatusLive(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusSubmitted, true},
		{StatusSuccessful, true},
		{StatusRejected, false},
		{StatusCancelled, false},
	}
	for _, c := range cases {
		if got := c.status.Live(); got != c.want {
			t.Fatalf("Live(%s) = %v, want %v", c.status, got, c.want)
		}
	}
}
