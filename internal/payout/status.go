package payout

// Status is the server-authoritative payout lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
)

// Known reports whether the status is one of the defined lifecycle
// states. Clients render unknown statuses as-is without inferring
// behaviour from them.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSuccess, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// ValidTransition encodes the one-directional lifecycle:
// PENDING -> PROCESSING -> {SUCCESS | FAILED}, plus the user-initiated
// PENDING -> CANCELLED which requires PIN re-entry.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusCancelled
	case StatusProcessing:
		return to == StatusSuccess || to == StatusFailed
	default:
		return false
	}
}
