package merge

import (
	"errors"
	"fmt"
	"strings"
)

// Operation selects how differing content is combined. Insert and Remove
// are flags; Both is their union. Ask is a separate interactive mode.
type Operation uint8

const (
	OpInsert Operation = 1 << iota
	OpRemove
	OpAsk

	OpBoth = OpInsert | OpRemove
)

var ErrInvalidOperation = errors.New("invalid merge operation")

// Inserts reports whether the insert flag is set.
func (o Operation) Inserts() bool { return o&OpInsert != 0 }

// Removes reports whether the remove flag is set.
func (o Operation) Removes() bool { return o&OpRemove != 0 }

func (o Operation) IsAsk() bool { return o == OpAsk }

func (o Operation) Valid() bool {
	switch o {
	case OpInsert, OpRemove, OpBoth, OpAsk:
		return true
	}
	return false
}

func (o Operation) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpBoth:
		return "both"
	case OpAsk:
		return "ask"
	}
	return fmt.Sprintf("operation(%d)", uint8(o))
}

// ParseOperation accepts insert, remove, both or ask in any case.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert":
		return OpInsert, nil
	case "remove":
		return OpRemove, nil
	case "both":
		return OpBoth, nil
	case "ask":
		return OpAsk, nil
	}
	return 0, fmt.Errorf("%w: %q (expected insert|remove|both|ask)", ErrInvalidOperation, s)
}

func (o Operation) validate() error {
	if !o.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidOperation, o)
	}
	return nil
}
