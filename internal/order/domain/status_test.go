package domain

import "testing"

func TestTransitionTable(t *testing.T) {
	all := []Status{
		StatusPending, StatusProvisioning, StatusActive, StatusPaid,
		StatusPaymentFailed, StatusCompleted, StatusCancelled,
	}

	allowed := map[Status]map[Status]bool{
		StatusPending:       {StatusProvisioning: true, StatusPaymentFailed: true, StatusCancelled: true},
		StatusProvisioning:  {StatusActive: true, StatusPaid: true, StatusCancelled: true},
		StatusActive:        {StatusCompleted: true, StatusCancelled: true},
		StatusPaid:          {StatusCompleted: true, StatusCancelled: true},
		StatusPaymentFailed: {StatusPending: true, StatusCancelled: true},
		StatusCompleted:     {},
		StatusCancelled:     {},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := from.CanTransition(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusProvisioning, StatusActive, StatusPaid, StatusPaymentFailed} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus(" Provisioning "); !ok || s != StatusProvisioning {
		t.Fatalf("ParseStatus: got %q ok=%v", s, ok)
	}
	if _, ok := ParseStatus("shipped"); ok {
		t.Fatal("unknown status must not parse")
	}
}
