package booking

// Reservation statuses as stored in the `reservations.status` column.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// ActiveStatuses are the states that participate in conflict scans.
// Cancelled and completed reservations never block a new booking.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// IsTerminal reports whether no further transition is permitted out of
// the given status.
func IsTerminal(status string) bool {
	return status == StatusCancelled || status == StatusCompleted
}

// CanTransition reports whether the lifecycle permits moving from one
// status to another:
//
//	pending   -> confirmed | cancelled
//	confirmed -> completed | cancelled
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}
