package booking

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}
	statuses := []string{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
	if CanTransition("bogus", StatusConfirmed) {
		t.Error("unknown status must not transition anywhere")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(StatusPending) || IsTerminal(StatusConfirmed) {
		t.Error("pending and confirmed are not terminal")
	}
	if !IsTerminal(StatusCancelled) || !IsTerminal(StatusCompleted) {
		t.Error("cancelled and completed are terminal")
	}
}
