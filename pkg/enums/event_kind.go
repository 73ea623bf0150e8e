package enums

import "fmt"

// EventKind names the transactional email each order event triggers.
type EventKind string

const (
	EventOrderPlaced   EventKind = "order_placed"
	EventStatusUpdate  EventKind = "status_update"
	EventAdminNewOrder EventKind = "admin_new_order"
)

var validEventKinds = []EventKind{
	EventOrderPlaced,
	EventStatusUpdate,
	EventAdminNewOrder,
}

// String implements fmt.Stringer.
func (e EventKind) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EventKind.
func (e EventKind) IsValid() bool {
	for _, candidate := range validEventKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventKind converts raw input into an EventKind.
func ParseEventKind(value string) (EventKind, error) {
	for _, candidate := range validEventKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event kind %q", value)
}
