package inventory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"brasserie/internal/faults"
)

// Recipe maps ingredient names to the quantity required for one portion.
type Recipe map[string]float64

// DeliveryItem is one line of a registered delivery.
type DeliveryItem struct {
	Quantity float64
	Price    decimal.Decimal
}

// Delivery represents a recorded supplier delivery.
type Delivery struct {
	ID       string
	Supplier string
	At       time.Time
	Items    map[string]DeliveryItem
	Notes    string
}

// Ledger tracks all ingredients, the recipes that reference them and
// the delivery log. Recipes may only name ingredients the ledger knows
// about, and an ingredient referenced by a recipe cannot be removed.
type Ledger struct {
	mu          sync.RWMutex
	ingredients map[string]*Ingredient
	recipes     map[string]Recipe
	deliveries  []Delivery
	categories  map[string]struct{}
	suppliers   map[string]struct{}
	logger      *zap.Logger
}

// NewLedger creates an empty ledger.
func NewLedger(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		ingredients: make(map[string]*Ingredient),
		recipes:     make(map[string]Recipe),
		categories:  make(map[string]struct{}),
		suppliers:   make(map[string]struct{}),
		logger:      logger,
	}
}

// AddIngredient registers a new ingredient and folds its category and
// supplier into the derived sets.
func (l *Ledger) AddIngredient(ing *Ingredient) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.ingredients[ing.Name]; exists {
		return faults.New(faults.DuplicateEntry, "ingredient %s already exists", ing.Name)
	}
	l.ingredients[ing.Name] = ing

	if ing.Category != "" {
		l.categories[ing.Category] = struct{}{}
	}
	if ing.Supplier != "" {
		l.suppliers[ing.Supplier] = struct{}{}
	}
	l.logger.Info("ingredient added", zap.String("name", ing.Name), zap.Float64("on_hand", ing.OnHand))
	return nil
}

// RemoveIngredient deletes an ingredient. Removal is refused while any
// recipe still references it. Category and supplier are pruned from
// the derived sets once no remaining ingredient uses them.
func (l *Ledger) RemoveIngredient(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ing, exists := l.ingredients[name]
	if !exists {
		return faults.New(faults.NotFound, "ingredient %s does not exist", name)
	}
	for dish, recipe := range l.recipes {
		if _, used := recipe[name]; used {
			return faults.New(faults.InUse, "ingredient %s is used by the recipe for %s", name, dish)
		}
	}

	delete(l.ingredients, name)
	l.pruneCategory(ing.Category)
	l.pruneSupplier(ing.Supplier)
	l.logger.Info("ingredient removed", zap.String("name", name))
	return nil
}

// Ingredient returns the ingredient registered under name.
func (l *Ledger) Ingredient(name string) (*Ingredient, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ing, exists := l.ingredients[name]
	if !exists {
		return nil, faults.New(faults.NotFound, "ingredient %s does not exist", name)
	}
	return ing, nil
}

// AddRecipe registers the ingredient quantities needed for one portion
// of a dish. All referenced ingredients must already be in the ledger.
func (l *Ledger) AddRecipe(dish string, quantities Recipe) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validateRecipe(quantities); err != nil {
		return err
	}
	if _, exists := l.recipes[dish]; exists {
		return faults.New(faults.DuplicateEntry, "recipe for %s already exists", dish)
	}

	l.recipes[dish] = cloneRecipe(quantities)
	l.logger.Info("recipe added", zap.String("dish", dish), zap.Int("ingredients", len(quantities)))
	return nil
}

// UpdateRecipe replaces the whole mapping for a dish atomically.
func (l *Ledger) UpdateRecipe(dish string, quantities Recipe) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.recipes[dish]; !exists {
		return faults.New(faults.NotFound, "recipe for %s does not exist", dish)
	}
	if err := l.validateRecipe(quantities); err != nil {
		return err
	}

	l.recipes[dish] = cloneRecipe(quantities)
	return nil
}

// RemoveRecipe deletes the recipe for a dish.
func (l *Ledger) RemoveRecipe(dish string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.recipes[dish]; !exists {
		return faults.New(faults.NotFound, "recipe for %s does not exist", dish)
	}
	delete(l.recipes, dish)
	return nil
}

// Recipe returns a copy of the recipe registered for a dish.
func (l *Ledger) Recipe(dish string) (Recipe, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	recipe, exists := l.recipes[dish]
	if !exists {
		return nil, faults.New(faults.NotFound, "recipe for %s does not exist", dish)
	}
	return cloneRecipe(recipe), nil
}

// CanPrepare reports whether the pantry holds enough of every recipe
// ingredient for the requested number of portions.
func (l *Ledger) CanPrepare(dish string, portions int) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.canPrepare(dish, portions)
}

// Prepare consumes the scaled recipe quantities for a dish. The full
// feasibility check runs first and the consumptions follow in a single
// committed pass, so the ledger is never left partially drained.
func (l *Ledger) Prepare(dish string, portions int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ok, err := l.canPrepare(dish, portions)
	if err != nil {
		return err
	}
	if !ok {
		return faults.New(faults.InsufficientStock, "not enough ingredients to prepare %d portion(s) of %s", portions, dish)
	}

	for name, required := range l.recipes[dish] {
		if err := l.ingredients[name].Consume(required*float64(portions), dish); err != nil {
			// Unreachable after a successful feasibility check.
			return err
		}
	}
	l.logger.Info("dish prepared", zap.String("dish", dish), zap.Int("portions", portions))
	return nil
}

// RegisterDelivery deposits every delivered item, updates unit prices
// where a positive price is given and records the delivery. All item
// names and quantities are validated before anything is deposited, so
// a rejected delivery leaves every stock untouched.
func (l *Ledger) RegisterDelivery(supplier string, items map[string]DeliveryItem, notes string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for name, item := range items {
		if _, exists := l.ingredients[name]; !exists {
			return "", faults.New(faults.NotFound, "ingredient %s does not exist", name)
		}
		if item.Quantity <= 0 {
			return "", faults.New(faults.InvalidQuantity, "delivered quantity of %s must be greater than zero", name)
		}
	}

	deliveryID := uuid.NewString()
	for name, item := range items {
		ing := l.ingredients[name]
		if err := ing.Deposit(item.Quantity, deliveryID); err != nil {
			return "", err
		}
		if item.Price.IsPositive() {
			if err := ing.SetPrice(item.Price); err != nil {
				return "", err
			}
		}
	}

	l.suppliers[supplier] = struct{}{}
	l.deliveries = append(l.deliveries, Delivery{
		ID:       deliveryID,
		Supplier: supplier,
		At:       time.Now(),
		Items:    cloneItems(items),
		Notes:    notes,
	})
	l.logger.Info("delivery registered",
		zap.String("delivery_id", deliveryID),
		zap.String("supplier", supplier),
		zap.Int("items", len(items)))
	return deliveryID, nil
}

// Deliveries returns the delivery log in registration order.
func (l *Ledger) Deliveries() []Delivery {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Delivery, len(l.deliveries))
	copy(out, l.deliveries)
	return out
}

// ReorderList returns every ingredient below its reorder threshold.
func (l *Ledger) ReorderList() []*Ingredient {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Ingredient
	for _, ing := range l.ingredients {
		if ing.NeedsReorder() {
			out = append(out, ing)
		}
	}
	return out
}

// ExpiredList returns every ingredient past its expiry date.
func (l *Ledger) ExpiredList() []*Ingredient {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Ingredient
	for _, ing := range l.ingredients {
		if ing.IsExpired() {
			out = append(out, ing)
		}
	}
	return out
}

// TotalValue returns the summed stock value of the whole pantry.
func (l *Ledger) TotalValue() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, ing := range l.ingredients {
		total = total.Add(ing.StockValue())
	}
	return total
}

// Categories returns the sorted set of categories in use.
func (l *Ledger) Categories() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.categories)
}

// Suppliers returns the sorted set of suppliers in use.
func (l *Ledger) Suppliers() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.suppliers)
}

// canPrepare must be called with the lock held.
func (l *Ledger) canPrepare(dish string, portions int) (bool, error) {
	if portions < 1 {
		return false, faults.New(faults.InvalidQuantity, "portions must be at least one")
	}
	recipe, exists := l.recipes[dish]
	if !exists {
		return false, faults.New(faults.NotFound, "recipe for %s does not exist", dish)
	}

	for name, required := range recipe {
		ing, present := l.ingredients[name]
		if !present {
			return false, nil
		}
		if ing.OnHand < required*float64(portions) {
			return false, nil
		}
	}
	return true, nil
}

// validateRecipe must be called with the lock held.
func (l *Ledger) validateRecipe(quantities Recipe) error {
	if len(quantities) == 0 {
		return faults.New(faults.EmptyRecipe, "a recipe needs at least one ingredient")
	}
	for name, quantity := range quantities {
		if _, exists := l.ingredients[name]; !exists {
			return faults.New(faults.NotFound, "ingredient %s does not exist", name)
		}
		if quantity <= 0 {
			return faults.New(faults.InvalidQuantity, "quantity of %s must be greater than zero", name)
		}
	}
	return nil
}

func (l *Ledger) pruneCategory(category string) {
	if category == "" {
		return
	}
	for _, other := range l.ingredients {
		if other.Category == category {
			return
		}
	}
	delete(l.categories, category)
}

func (l *Ledger) pruneSupplier(supplier string) {
	if supplier == "" {
		return
	}
	for _, other := range l.ingredients {
		if other.Supplier == supplier {
			return
		}
	}
	delete(l.suppliers, supplier)
}

func cloneRecipe(recipe Recipe) Recipe {
	out := make(Recipe, len(recipe))
	for name, quantity := range recipe {
		out[name] = quantity
	}
	return out
}

func cloneItems(items map[string]DeliveryItem) map[string]DeliveryItem {
	out := make(map[string]DeliveryItem, len(items))
	for name, item := range items {
		out[name] = item
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
