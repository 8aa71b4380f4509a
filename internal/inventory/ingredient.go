package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"brasserie/internal/faults"
)

// HistoryEntry represents one recorded stock movement. Entries are
// append-only; past entries are never rewritten.
type HistoryEntry struct {
	At        time.Time
	Operation string
	Delta     float64
}

// Ingredient represents a single tracked ingredient in the pantry.
type Ingredient struct {
	Name        string
	Unit        string
	OnHand      float64
	MinQuantity float64
	UnitPrice   decimal.Decimal
	Expiry      *time.Time
	Supplier    string
	Category    string
	Location    string

	history []HistoryEntry
}

// IngredientSpec carries the construction parameters for an ingredient.
type IngredientSpec struct {
	Name        string
	Unit        string
	Initial     float64
	MinQuantity float64
	UnitPrice   decimal.Decimal
	Expiry      *time.Time
	Supplier    string
	Category    string
	Location    string
}

// NewIngredient validates the spec and creates the ingredient. An
// initial quantity above zero is logged as the first history entry.
func NewIngredient(spec IngredientSpec) (*Ingredient, error) {
	if spec.Initial < 0 {
		return nil, faults.New(faults.InvalidQuantity, "initial quantity of %s cannot be negative", spec.Name)
	}
	if spec.MinQuantity < 0 {
		return nil, faults.New(faults.InvalidQuantity, "minimum quantity of %s cannot be negative", spec.Name)
	}
	if spec.UnitPrice.IsNegative() {
		return nil, faults.New(faults.InvalidQuantity, "unit price of %s cannot be negative", spec.Name)
	}

	ing := &Ingredient{
		Name:        spec.Name,
		Unit:        spec.Unit,
		OnHand:      spec.Initial,
		MinQuantity: spec.MinQuantity,
		UnitPrice:   spec.UnitPrice,
		Expiry:      spec.Expiry,
		Supplier:    spec.Supplier,
		Category:    spec.Category,
		Location:    spec.Location,
	}
	if spec.Initial > 0 {
		ing.record("initial stock", spec.Initial)
	}
	return ing, nil
}

// Deposit adds stock, optionally tagged with the delivery it came from.
func (i *Ingredient) Deposit(quantity float64, deliveryRef string) error {
	if quantity <= 0 {
		return faults.New(faults.InvalidQuantity, "deposit quantity for %s must be greater than zero", i.Name)
	}

	i.OnHand += quantity
	operation := "delivery"
	if deliveryRef != "" {
		operation = "delivery " + deliveryRef
	}
	i.record(operation, quantity)
	return nil
}

// Consume removes stock for the given purpose. The history entry
// carries a negative delta so the running sum reconstructs OnHand.
func (i *Ingredient) Consume(quantity float64, purpose string) error {
	if quantity <= 0 {
		return faults.New(faults.InvalidQuantity, "consumed quantity of %s must be greater than zero", i.Name)
	}
	if quantity > i.OnHand {
		return faults.New(faults.InsufficientStock, "not enough %s on hand: need %v, have %v", i.Name, quantity, i.OnHand)
	}

	i.OnHand -= quantity
	operation := "consumption"
	if purpose != "" {
		operation = "consumption " + purpose
	}
	i.record(operation, -quantity)
	return nil
}

// SetPrice updates the unit price.
func (i *Ingredient) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return faults.New(faults.InvalidQuantity, "unit price of %s cannot be negative", i.Name)
	}
	i.UnitPrice = price
	return nil
}

// SetExpiry updates the expiry date. Dates already in the past are rejected.
func (i *Ingredient) SetExpiry(expiry time.Time) error {
	if expiry.Before(time.Now()) {
		return faults.New(faults.InvalidDate, "expiry of %s cannot be in the past", i.Name)
	}
	i.Expiry = &expiry
	return nil
}

// NeedsReorder reports whether on-hand stock fell below the reorder threshold.
func (i *Ingredient) NeedsReorder() bool {
	return i.OnHand < i.MinQuantity
}

// IsExpired reports whether the expiry date has passed. Ingredients
// without an expiry date never expire.
func (i *Ingredient) IsExpired() bool {
	if i.Expiry == nil {
		return false
	}
	return time.Now().After(*i.Expiry)
}

// StockValue returns on-hand quantity times unit price, rounded to two decimals.
func (i *Ingredient) StockValue() decimal.Decimal {
	return decimal.NewFromFloat(i.OnHand).Mul(i.UnitPrice).Round(2)
}

// History returns a copy of the movement log in recording order.
func (i *Ingredient) History() []HistoryEntry {
	out := make([]HistoryEntry, len(i.history))
	copy(out, i.history)
	return out
}

func (i *Ingredient) record(operation string, delta float64) {
	i.history = append(i.history, HistoryEntry{At: time.Now(), Operation: operation, Delta: delta})
}
