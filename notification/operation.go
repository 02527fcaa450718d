package notification

import "fmt"

// Operation selects which direction a registration call moves the records in.
type Operation int

const (
	Create Operation = iota // Absent -> Present
	Remove                  // Present -> Absent
)

func (o Operation) String() string {
	switch o {
	case Create:
		return "create"
	case Remove:
		return "remove"
	default:
		return "unknown"
	}
}

// ParseOperation accepts both the record-level names (create/remove) and the
// user-facing verbs (register/deregister).
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "create", "register":
		return Create, nil
	case "remove", "deregister":
		return Remove, nil
	default:
		return 0, fmt.Errorf("invalid operation %q (expected \"register\" or \"deregister\")", s)
	}
}
