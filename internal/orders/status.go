package orders

import "optica/internal/errs"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validNext[st]; !ok {
		return "", errs.Validation("unknown order status %q", s)
	}
	return st, nil
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// RestoresStock reports whether a transition returns the order's quantities
// to the stock ledger. Only entering CANCELLED from a non-CANCELLED state
// does; comparing the old status is what keeps a repeated cancel from
// restoring twice.
func RestoresStock(from, to Status) bool {
	return to == StatusCancelled && from != StatusCancelled
}
