// Package faults defines the error taxonomy shared by the inventory,
// menu and order components. Every validation failure surfaces as a
// *Error carrying one of the kinds below, so callers can branch on
// KindOf without parsing messages.
package faults

import (
	"errors"
	"fmt"
)

// Kind categorizes a domain failure.
type Kind int

const (
	// KindUnknown is the zero kind for errors outside the taxonomy.
	KindUnknown Kind = iota
	// NotFound indicates a missing ingredient, recipe, dish, order or line.
	NotFound
	// DuplicateEntry indicates a re-added existing key.
	DuplicateEntry
	// InvalidQuantity indicates a non-positive or negative numeric input.
	InvalidQuantity
	// InsufficientStock indicates consumption beyond the available quantity.
	InsufficientStock
	// InUse indicates a deletion blocked by a referencing recipe.
	InUse
	// InvalidStatus indicates a value outside an enumerated status set.
	InvalidStatus
	// InvalidState indicates an operation attempted from a disallowed state.
	InvalidState
	// InvalidDate indicates an expiry date set in the past.
	InvalidDate
	// OutOfRange indicates a percentage outside its allowed interval.
	OutOfRange
	// InvalidChoice indicates a payment method outside the enumerated set.
	InvalidChoice
	// EmptyRecipe indicates a recipe with no ingredients.
	EmptyRecipe
	// Unavailable indicates a dish marked unavailable in the menu.
	Unavailable
)

// String returns the kind name used in logs and API payloads.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case DuplicateEntry:
		return "duplicate_entry"
	case InvalidQuantity:
		return "invalid_quantity"
	case InsufficientStock:
		return "insufficient_stock"
	case InUse:
		return "in_use"
	case InvalidStatus:
		return "invalid_status"
	case InvalidState:
		return "invalid_state"
	case InvalidDate:
		return "invalid_date"
	case OutOfRange:
		return "out_of_range"
	case InvalidChoice:
		return "invalid_choice"
	case EmptyRecipe:
		return "empty_recipe"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a typed domain failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the kind carried by err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
