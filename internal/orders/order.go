package orders

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"brasserie/internal/faults"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusInProgress OrderStatus = "in_progress"
	StatusReady      OrderStatus = "ready"
	StatusDelivered  OrderStatus = "delivered"
	StatusPaid       OrderStatus = "paid"
	StatusCancelled  OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// PaymentMethod represents how an order was settled.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
)

// Order represents all line items for one table. Lines are keyed by
// dish name; lineOrder preserves insertion order for rendering.
type Order struct {
	ID              string
	Table           int
	CreatedAt       time.Time
	Status          OrderStatus
	Payment         PaymentMethod
	DiscountPercent float64
	Tip             decimal.Decimal
	Waiter          string
	Notes           string

	lines     map[string]*Line
	lineOrder []string
}

// NewOrder creates an order in the "new" state.
func NewOrder(table int, waiter string) (*Order, error) {
	if table < 0 {
		return nil, faults.New(faults.InvalidQuantity, "table number cannot be negative")
	}
	return &Order{
		ID:        uuid.NewString(),
		Table:     table,
		CreatedAt: time.Now(),
		Status:    StatusNew,
		Tip:       decimal.Zero,
		Waiter:    waiter,
		lines:     make(map[string]*Line),
	}, nil
}

// AddLine adds a dish to the order. Adding a dish that is already on
// the order merges into the existing line: quantities sum and any new
// note is appended.
func (o *Order) AddLine(dish string, unitPrice decimal.Decimal, quantity int, notes string) error {
	if existing, ok := o.lines[dish]; ok {
		if quantity < 1 {
			return faults.New(faults.InvalidQuantity, "quantity of %s must be at least one", dish)
		}
		if err := existing.ChangeQuantity(existing.Quantity + quantity); err != nil {
			return err
		}
		if notes != "" {
			existing.AppendNote(notes)
		}
		return nil
	}

	line, err := NewLine(dish, unitPrice, quantity, notes)
	if err != nil {
		return err
	}
	o.lines[dish] = line
	o.lineOrder = append(o.lineOrder, dish)
	return nil
}

// RemoveLine removes portions of a dish and returns how many were
// actually removed. A quantity of zero or less, or one at or above the
// current count, removes the whole line.
func (o *Order) RemoveLine(dish string, quantity int) (int, error) {
	line, ok := o.lines[dish]
	if !ok {
		return 0, faults.New(faults.NotFound, "dish %s is not on the order", dish)
	}

	if quantity <= 0 || quantity >= line.Quantity {
		removed := line.Quantity
		delete(o.lines, dish)
		for idx, name := range o.lineOrder {
			if name == dish {
				o.lineOrder = append(o.lineOrder[:idx], o.lineOrder[idx+1:]...)
				break
			}
		}
		return removed, nil
	}

	if err := line.ChangeQuantity(line.Quantity - quantity); err != nil {
		return 0, err
	}
	return quantity, nil
}

// Line returns the line for a dish.
func (o *Order) Line(dish string) (*Line, error) {
	line, ok := o.lines[dish]
	if !ok {
		return nil, faults.New(faults.NotFound, "dish %s is not on the order", dish)
	}
	return line, nil
}

// Lines returns the line items in insertion order.
func (o *Order) Lines() []*Line {
	out := make([]*Line, 0, len(o.lineOrder))
	for _, dish := range o.lineOrder {
		out = append(out, o.lines[dish])
	}
	return out
}

// SetStatus moves the order to another lifecycle state. Membership is
// the only rule enforced here; the one operationally binding
// transition (payment requires a delivered order) lives in the registry.
func (o *Order) SetStatus(status OrderStatus) error {
	switch status {
	case StatusNew, StatusInProgress, StatusReady, StatusDelivered, StatusPaid, StatusCancelled:
		o.Status = status
		return nil
	default:
		return faults.New(faults.InvalidStatus, "invalid order status: %s", status)
	}
}

// SetDiscount sets the whole-order discount percentage.
func (o *Order) SetDiscount(percent float64) error {
	if percent < 0 || percent > 100 {
		return faults.New(faults.OutOfRange, "discount must be between 0 and 100")
	}
	o.DiscountPercent = percent
	return nil
}

// SetPayment records the payment method and tip.
func (o *Order) SetPayment(method PaymentMethod, tip decimal.Decimal) error {
	switch method {
	case PaymentCash, PaymentCard, PaymentMobile:
	default:
		return faults.New(faults.InvalidChoice, "invalid payment method: %s", method)
	}
	if tip.IsNegative() {
		return faults.New(faults.InvalidQuantity, "tip cannot be negative")
	}
	o.Payment = method
	o.Tip = tip
	return nil
}

// Subtotal returns the sum of all line totals.
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.lines {
		total = total.Add(line.Total())
	}
	return total
}

// TotalAfterDiscount applies the discount to the subtotal, rounded to
// two decimals.
func (o *Order) TotalAfterDiscount() decimal.Decimal {
	factor := decimal.NewFromFloat(100 - o.DiscountPercent).Div(decimal.NewFromInt(100))
	return o.Subtotal().Mul(factor).Round(2)
}

// GrandTotal returns the discounted total plus tip.
func (o *Order) GrandTotal() decimal.Decimal {
	return o.TotalAfterDiscount().Add(o.Tip)
}

// FulfillmentMinutes returns the minutes from creation until now,
// rounded to one decimal. It is only defined once the order has been
// delivered or paid.
func (o *Order) FulfillmentMinutes() (float64, bool) {
	if o.Status != StatusDelivered && o.Status != StatusPaid {
		return 0, false
	}
	minutes := time.Since(o.CreatedAt).Minutes()
	return math.Round(minutes*10) / 10, true
}
