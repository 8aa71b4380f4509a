package menu

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brasserie/internal/faults"
)

func newTestMenu(t *testing.T) *Menu {
	t.Helper()
	m, err := NewMenu(3)
	require.NoError(t, err)
	return m
}

func addDish(t *testing.T, m *Menu, name, price, category string) *Dish {
	t.Helper()
	dish, err := NewDish(name, decimal.RequireFromString(price), category, 20*time.Minute)
	require.NoError(t, err)
	require.NoError(t, m.AddDish(dish))
	return dish
}

func TestNewDishRejectsNonPositivePrice(t *testing.T) {
	_, err := NewDish("Schabowy", decimal.Zero, "main", 0)
	assert.True(t, faults.Is(err, faults.InvalidQuantity))

	_, err = NewDish("Schabowy", decimal.NewFromInt(-5), "main", 0)
	assert.True(t, faults.Is(err, faults.InvalidQuantity))
}

func TestAddDishDuplicate(t *testing.T) {
	m := newTestMenu(t)
	addDish(t, m, "Schabowy", "25.99", "main")

	dup, err := NewDish("Schabowy", decimal.NewFromInt(30), "main", 0)
	require.NoError(t, err)
	assert.True(t, faults.Is(m.AddDish(dup), faults.DuplicateEntry))
}

func TestLookupDish(t *testing.T) {
	m := newTestMenu(t)
	dish := addDish(t, m, "Schabowy", "25.99", "main")

	price, available, err := m.LookupDish("Schabowy")
	require.NoError(t, err)
	assert.Equal(t, "25.99", price.StringFixed(2))
	assert.True(t, available)

	dish.SetAvailable(false)
	_, available, err = m.LookupDish("Schabowy")
	require.NoError(t, err)
	assert.False(t, available)

	_, _, err = m.LookupDish("Ghost")
	assert.True(t, faults.Is(err, faults.NotFound))
}

func TestRemoveDishPrunesCategoryAndSpecials(t *testing.T) {
	m := newTestMenu(t)
	addDish(t, m, "Schabowy", "25.99", "main")
	addDish(t, m, "Pierogi", "18.50", "main")
	addDish(t, m, "Szarlotka", "12.00", "dessert")
	require.NoError(t, m.AddSpecial("Szarlotka"))

	require.NoError(t, m.RemoveDish("Szarlotka"))
	assert.Equal(t, []string{"main"}, m.Categories())
	assert.Empty(t, m.Specials())

	require.NoError(t, m.RemoveDish("Pierogi"))
	assert.Equal(t, []string{"main"}, m.Categories(), "Schabowy still holds the category")

	assert.True(t, faults.Is(m.RemoveDish("Ghost"), faults.NotFound))
}

func TestDishesInPriceRange(t *testing.T) {
	m := newTestMenu(t)
	addDish(t, m, "Schabowy", "25.99", "main")
	addDish(t, m, "Pierogi", "18.50", "main")
	hidden := addDish(t, m, "Zurek", "16.00", "soup")
	hidden.SetAvailable(false)

	dishes, err := m.DishesInPriceRange(decimal.NewFromInt(15), decimal.NewFromInt(20))
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Pierogi", dishes[0].Name)

	_, err = m.DishesInPriceRange(decimal.NewFromInt(20), decimal.NewFromInt(10))
	assert.True(t, faults.Is(err, faults.OutOfRange))
}

func TestSpecialsCap(t *testing.T) {
	m := newTestMenu(t)
	addDish(t, m, "A", "10", "main")
	addDish(t, m, "B", "11", "main")
	addDish(t, m, "C", "12", "main")
	addDish(t, m, "D", "13", "main")

	require.NoError(t, m.AddSpecial("A"))
	require.NoError(t, m.AddSpecial("B"))
	require.NoError(t, m.AddSpecial("C"))
	assert.True(t, faults.Is(m.AddSpecial("D"), faults.OutOfRange))
	assert.True(t, faults.Is(m.AddSpecial("A"), faults.DuplicateEntry))
	assert.True(t, faults.Is(m.AddSpecial("Ghost"), faults.NotFound))

	require.NoError(t, m.RemoveSpecial("B"))
	assert.Equal(t, []string{"A", "C"}, m.Specials())
	assert.True(t, faults.Is(m.RemoveSpecial("D"), faults.NotFound))
}

func TestDishIngredients(t *testing.T) {
	dish, err := NewDish("Schabowy", decimal.RequireFromString("25.99"), "main", 25*time.Minute)
	require.NoError(t, err)

	require.NoError(t, dish.AddIngredient("pork"))
	require.NoError(t, dish.AddIngredient("breadcrumbs"))
	assert.True(t, faults.Is(dish.AddIngredient("pork"), faults.DuplicateEntry))

	require.NoError(t, dish.RemoveIngredient("pork"))
	assert.True(t, faults.Is(dish.RemoveIngredient("pork"), faults.NotFound))
	assert.Equal(t, []string{"breadcrumbs"}, dish.Ingredients)
}
