package shop

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// ValidTransition encodes the purchase state machine:
// pending -> approved -> delivered, or pending -> cancelled.
func ValidTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusCancelled
	case StatusApproved:
		return to == StatusDelivered
	}
	return false
}

var Statuses = []string{StatusPending, StatusApproved, StatusDelivered, StatusCancelled}

func ValidStatus(s string) bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}
