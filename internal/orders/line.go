package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"brasserie/internal/faults"
)

// LineStatus represents the preparation state of a single line item.
type LineStatus string

const (
	LineStatusPreparing LineStatus = "preparing"
	LineStatusReady     LineStatus = "ready"
	LineStatusServed    LineStatus = "served"
)

// Line represents one ordered dish within an order. The unit price is
// a snapshot taken when the line was added; later menu price changes
// do not touch it.
type Line struct {
	Dish      string
	Quantity  int
	UnitPrice decimal.Decimal
	Notes     string
	Status    LineStatus
	AddedAt   time.Time
}

// NewLine creates a line in the preparing state.
func NewLine(dish string, unitPrice decimal.Decimal, quantity int, notes string) (*Line, error) {
	if quantity < 1 {
		return nil, faults.New(faults.InvalidQuantity, "quantity of %s must be at least one", dish)
	}
	if unitPrice.IsNegative() {
		return nil, faults.New(faults.InvalidQuantity, "unit price of %s cannot be negative", dish)
	}
	return &Line{
		Dish:      dish,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Notes:     notes,
		Status:    LineStatusPreparing,
		AddedAt:   time.Now(),
	}, nil
}

// ChangeQuantity sets a new portion count.
func (ln *Line) ChangeQuantity(quantity int) error {
	if quantity < 1 {
		return faults.New(faults.InvalidQuantity, "quantity of %s must be at least one", ln.Dish)
	}
	ln.Quantity = quantity
	return nil
}

// SetStatus moves the line to another preparation state. Only
// membership in the status set is enforced; the kitchen may move a
// line back and forth freely.
func (ln *Line) SetStatus(status LineStatus) error {
	switch status {
	case LineStatusPreparing, LineStatusReady, LineStatusServed:
		ln.Status = status
		return nil
	default:
		return faults.New(faults.InvalidStatus, "invalid line status: %s", status)
	}
}

// AppendNote adds a note, joining existing notes with "; ".
func (ln *Line) AppendNote(note string) {
	if ln.Notes != "" {
		ln.Notes += "; " + note
	} else {
		ln.Notes = note
	}
}

// Total returns quantity times unit price, rounded to two decimals.
func (ln *Line) Total() decimal.Decimal {
	return ln.UnitPrice.Mul(decimal.NewFromInt(int64(ln.Quantity))).Round(2)
}
