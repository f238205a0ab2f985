package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(validNext[s]) == 0
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// TransitionPolicy decides whether a status change is allowed.
type TransitionPolicy int

const (
	// PolicyPermissive lets sellers set any known status (operator override).
	PolicyPermissive TransitionPolicy = iota
	// PolicyStrict only allows edges in validNext.
	PolicyStrict
)

func ParsePolicy(s string) TransitionPolicy {
	if s == "strict" {
		return PolicyStrict
	}
	return PolicyPermissive
}

func (p TransitionPolicy) Allows(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if p == PolicyStrict {
		return CanTransition(from, to)
	}
	return true
}
