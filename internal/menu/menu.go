// Package menu implements the restaurant's dish catalog. The order
// registry only depends on the LookupDish method; everything else is
// front-of-house bookkeeping.
package menu

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"brasserie/internal/faults"
)

// Dish represents a single dish on the menu.
type Dish struct {
	Name        string
	Price       decimal.Decimal
	Category    string
	PrepTime    time.Duration
	Available   bool
	Ingredients []string
	Calories    *int
	AddedAt     time.Time
}

// NewDish creates a dish. Dishes start out available.
func NewDish(name string, price decimal.Decimal, category string, prepTime time.Duration) (*Dish, error) {
	if !price.IsPositive() {
		return nil, faults.New(faults.InvalidQuantity, "price of %s must be greater than zero", name)
	}
	return &Dish{
		Name:      name,
		Price:     price,
		Category:  category,
		PrepTime:  prepTime,
		Available: true,
		AddedAt:   time.Now(),
	}, nil
}

// ChangePrice updates the dish price.
func (d *Dish) ChangePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return faults.New(faults.InvalidQuantity, "price of %s must be greater than zero", d.Name)
	}
	d.Price = price
	return nil
}

// SetAvailable flips the dish availability.
func (d *Dish) SetAvailable(available bool) {
	d.Available = available
}

// AddIngredient appends a listed ingredient.
func (d *Dish) AddIngredient(ingredient string) error {
	for _, existing := range d.Ingredients {
		if existing == ingredient {
			return faults.New(faults.DuplicateEntry, "%s already lists %s", d.Name, ingredient)
		}
	}
	d.Ingredients = append(d.Ingredients, ingredient)
	return nil
}

// RemoveIngredient drops a listed ingredient.
func (d *Dish) RemoveIngredient(ingredient string) error {
	for idx, existing := range d.Ingredients {
		if existing == ingredient {
			d.Ingredients = append(d.Ingredients[:idx], d.Ingredients[idx+1:]...)
			return nil
		}
	}
	return faults.New(faults.NotFound, "%s does not list %s", d.Name, ingredient)
}

// Menu represents the whole catalog: dishes by name, the derived
// category set and the capped list of daily specials.
type Menu struct {
	mu          sync.RWMutex
	dishes      map[string]*Dish
	categories  map[string]struct{}
	specials    []string
	maxSpecials int
	updatedAt   time.Time
}

// NewMenu creates an empty menu allowing up to maxSpecials daily specials.
func NewMenu(maxSpecials int) (*Menu, error) {
	if maxSpecials < 1 {
		return nil, faults.New(faults.InvalidQuantity, "the specials limit must be at least one")
	}
	return &Menu{
		dishes:      make(map[string]*Dish),
		categories:  make(map[string]struct{}),
		maxSpecials: maxSpecials,
		updatedAt:   time.Now(),
	}, nil
}

// AddDish registers a dish under its name.
func (m *Menu) AddDish(dish *Dish) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.dishes[dish.Name]; exists {
		return faults.New(faults.DuplicateEntry, "dish %s is already on the menu", dish.Name)
	}
	m.dishes[dish.Name] = dish
	if dish.Category != "" {
		m.categories[dish.Category] = struct{}{}
	}
	m.updatedAt = time.Now()
	return nil
}

// RemoveDish deletes a dish, dropping it from the specials and pruning
// its category once no other dish uses it.
func (m *Menu) RemoveDish(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dish, exists := m.dishes[name]
	if !exists {
		return faults.New(faults.NotFound, "dish %s is not on the menu", name)
	}

	for idx, special := range m.specials {
		if special == name {
			m.specials = append(m.specials[:idx], m.specials[idx+1:]...)
			break
		}
	}
	delete(m.dishes, name)

	if dish.Category != "" {
		remaining := false
		for _, other := range m.dishes {
			if other.Category == dish.Category {
				remaining = true
				break
			}
		}
		if !remaining {
			delete(m.categories, dish.Category)
		}
	}
	m.updatedAt = time.Now()
	return nil
}

// Dish returns the dish registered under name.
func (m *Menu) Dish(name string) (*Dish, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dish, exists := m.dishes[name]
	if !exists {
		return nil, faults.New(faults.NotFound, "dish %s is not on the menu", name)
	}
	return dish, nil
}

// LookupDish resolves a dish to its current price and availability.
// This is the catalog contract the order registry consumes.
func (m *Menu) LookupDish(name string) (price decimal.Decimal, available bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dish, exists := m.dishes[name]
	if !exists {
		return decimal.Zero, false, faults.New(faults.NotFound, "dish %s is not on the menu", name)
	}
	return dish.Price, dish.Available, nil
}

// DishesByCategory returns every dish in the given category.
func (m *Menu) DishesByCategory(category string) []*Dish {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Dish
	for _, dish := range m.dishes {
		if dish.Category == category {
			out = append(out, dish)
		}
	}
	return out
}

// DishesInPriceRange returns the available dishes priced within [min, max].
func (m *Menu) DishesInPriceRange(min, max decimal.Decimal) ([]*Dish, error) {
	if min.GreaterThan(max) {
		return nil, faults.New(faults.OutOfRange, "minimum price cannot exceed maximum price")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Dish
	for _, dish := range m.dishes {
		if dish.Available && dish.Price.GreaterThanOrEqual(min) && dish.Price.LessThanOrEqual(max) {
			out = append(out, dish)
		}
	}
	return out, nil
}

// AddSpecial puts a dish on the daily specials list.
func (m *Menu) AddSpecial(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.dishes[name]; !exists {
		return faults.New(faults.NotFound, "dish %s is not on the menu", name)
	}
	for _, special := range m.specials {
		if special == name {
			return faults.New(faults.DuplicateEntry, "dish %s is already a special", name)
		}
	}
	if len(m.specials) >= m.maxSpecials {
		return faults.New(faults.OutOfRange, "the specials list is full (max %d)", m.maxSpecials)
	}
	m.specials = append(m.specials, name)
	return nil
}

// RemoveSpecial takes a dish off the daily specials list.
func (m *Menu) RemoveSpecial(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.dishes[name]; !exists {
		return faults.New(faults.NotFound, "dish %s is not on the menu", name)
	}
	for idx, special := range m.specials {
		if special == name {
			m.specials = append(m.specials[:idx], m.specials[idx+1:]...)
			return nil
		}
	}
	return faults.New(faults.NotFound, "dish %s is not a special", name)
}

// Specials returns the daily specials in insertion order.
func (m *Menu) Specials() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.specials))
	copy(out, m.specials)
	return out
}

// Categories returns the sorted set of categories on the menu.
func (m *Menu) Categories() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.categories))
	for category := range m.categories {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// UpdatedAt returns when the menu was last changed.
func (m *Menu) UpdatedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updatedAt
}
