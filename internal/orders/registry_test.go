package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brasserie/internal/faults"
)

type stubDish struct {
	price     decimal.Decimal
	available bool
}

type stubCatalog struct {
	dishes map[string]stubDish
}

func (s *stubCatalog) LookupDish(name string) (decimal.Decimal, bool, error) {
	dish, ok := s.dishes[name]
	if !ok {
		return decimal.Zero, false, faults.New(faults.NotFound, "dish %s is not on the menu", name)
	}
	return dish.price, dish.available, nil
}

func newTestRegistry(t *testing.T) (*Registry, *stubCatalog) {
	t.Helper()
	catalog := &stubCatalog{dishes: map[string]stubDish{
		"Schabowy": {price: decimal.RequireFromString("25.99"), available: true},
		"Pierogi":  {price: decimal.RequireFromString("18.50"), available: true},
		"Zurek":    {price: decimal.RequireFromString("16.00"), available: false},
	}}
	return NewRegistry(catalog, nil), catalog
}

func deliveredOrder(t *testing.T, r *Registry) *Order {
	t.Helper()
	order, err := r.CreateOrder(5, "Ania")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(order.ID, "Schabowy", 2, ""))
	require.NoError(t, order.SetStatus(StatusDelivered))
	return order
}

func TestCreateOrderCountsAndIndexes(t *testing.T) {
	r, _ := newTestRegistry(t)

	order, err := r.CreateOrder(5, "Ania")
	require.NoError(t, err)

	assert.Equal(t, 1, r.Statistics().OrderCount)
	require.Len(t, r.ActiveOrders(), 1)
	assert.Equal(t, order.ID, r.ActiveOrders()[0].ID)

	_, err = r.CreateOrder(-1, "")
	assert.True(t, faults.Is(err, faults.InvalidQuantity))
}

func TestAddItemLookups(t *testing.T) {
	r, _ := newTestRegistry(t)
	order, err := r.CreateOrder(5, "")
	require.NoError(t, err)

	assert.True(t, faults.Is(r.AddItem("missing", "Schabowy", 1, ""), faults.NotFound))
	assert.True(t, faults.Is(r.AddItem(order.ID, "Ghost", 1, ""), faults.NotFound))
	assert.True(t, faults.Is(r.AddItem(order.ID, "Zurek", 1, ""), faults.Unavailable))

	require.NoError(t, r.AddItem(order.ID, "Schabowy", 2, "no cabbage"))
	line, err := order.Line("Schabowy")
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "25.99", line.UnitPrice.StringFixed(2))
}

// The line keeps the price from the moment it was added; later menu
// price changes never touch placed orders.
func TestAddItemSnapshotsPrice(t *testing.T) {
	r, catalog := newTestRegistry(t)
	order, err := r.CreateOrder(5, "")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(order.ID, "Schabowy", 1, ""))

	catalog.dishes["Schabowy"] = stubDish{price: decimal.NewFromInt(99), available: true}

	line, err := order.Line("Schabowy")
	require.NoError(t, err)
	assert.Equal(t, "25.99", line.UnitPrice.StringFixed(2))
}

func TestSoldCountsAndMostPopular(t *testing.T) {
	r, _ := newTestRegistry(t)
	order, err := r.CreateOrder(5, "")
	require.NoError(t, err)

	require.NoError(t, r.AddItem(order.ID, "Schabowy", 2, ""))
	require.NoError(t, r.AddItem(order.ID, "Pierogi", 3, ""))

	stats := r.Statistics()
	assert.Equal(t, map[string]int{"Schabowy": 2, "Pierogi": 3}, stats.SoldCounts)
	assert.Equal(t, "Pierogi", stats.MostPopular)

	require.NoError(t, r.AddItem(order.ID, "Schabowy", 2, ""))
	assert.Equal(t, "Schabowy", r.Statistics().MostPopular)
}

func TestRemoveItemUnwindsStatistics(t *testing.T) {
	r, _ := newTestRegistry(t)
	order, err := r.CreateOrder(5, "")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(order.ID, "Schabowy", 3, ""))
	require.NoError(t, r.AddItem(order.ID, "Pierogi", 1, ""))

	require.NoError(t, r.RemoveItem(order.ID, "Schabowy", 1))
	assert.Equal(t, 2, r.Statistics().SoldCounts["Schabowy"])

	// Removing without a quantity drops the line and the whole count;
	// the reduction is capped at what the line actually held.
	require.NoError(t, r.RemoveItem(order.ID, "Schabowy", 0))
	stats := r.Statistics()
	_, tracked := stats.SoldCounts["Schabowy"]
	assert.False(t, tracked)
	assert.Equal(t, "Pierogi", stats.MostPopular)

	assert.True(t, faults.Is(r.RemoveItem(order.ID, "Schabowy", 1), faults.NotFound))
	assert.True(t, faults.Is(r.RemoveItem("missing", "Schabowy", 1), faults.NotFound))
}

// Scenario: closing an order still in "new" is refused; after the
// order is delivered the closure succeeds and moves it to history.
func TestCloseOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	order, err := r.CreateOrder(5, "")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(order.ID, "Schabowy", 2, ""))

	_, err = r.CloseOrder(order.ID, PaymentCard, decimal.Zero)
	assert.True(t, faults.Is(err, faults.InvalidState))

	require.NoError(t, order.SetStatus(StatusDelivered))
	require.NoError(t, order.SetDiscount(20))

	total, err := r.CloseOrder(order.ID, PaymentCard, decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Equal(t, "46.58", total.StringFixed(2))

	assert.Equal(t, StatusPaid, order.Status)
	assert.Empty(t, r.ActiveOrders())

	stats := r.Statistics()
	assert.Equal(t, "41.58", stats.RevenueSum.StringFixed(2))
	assert.Equal(t, "41.58", stats.MeanValue.StringFixed(2))

	_, err = r.CloseOrder("missing", PaymentCard, decimal.Zero)
	assert.True(t, faults.Is(err, faults.NotFound))
}

func TestCloseOrderMeanOverHistory(t *testing.T) {
	r, _ := newTestRegistry(t)

	first := deliveredOrder(t, r)
	_, err := r.CloseOrder(first.ID, PaymentCash, decimal.Zero)
	require.NoError(t, err)

	second, err := r.CreateOrder(6, "")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(second.ID, "Pierogi", 1, ""))
	require.NoError(t, second.SetStatus(StatusDelivered))
	_, err = r.CloseOrder(second.ID, PaymentCash, decimal.Zero)
	require.NoError(t, err)

	stats := r.Statistics()
	assert.Equal(t, "70.48", stats.RevenueSum.StringFixed(2))
	assert.Equal(t, "35.24", stats.MeanValue.StringFixed(2))
}

// A cancelled order counts toward the history length the mean divides
// by, so cancelling after a closure halves the mean.
func TestCancelOrderRefreshesMeanValue(t *testing.T) {
	r, _ := newTestRegistry(t)

	paid := deliveredOrder(t, r)
	_, err := r.CloseOrder(paid.ID, PaymentCash, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "51.98", r.Statistics().MeanValue.StringFixed(2))

	doomed, err := r.CreateOrder(6, "")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(doomed.ID, "Pierogi", 1, ""))
	require.NoError(t, r.CancelOrder(doomed.ID, ""))

	stats := r.Statistics()
	assert.Equal(t, "51.98", stats.RevenueSum.StringFixed(2))
	assert.Equal(t, "25.99", stats.MeanValue.StringFixed(2))
}

// Cancelling must restore the per-dish sold counts to their pre-order
// values, including the most-popular dish.
func TestCancelOrderReversesStatistics(t *testing.T) {
	r, _ := newTestRegistry(t)

	base, err := r.CreateOrder(1, "")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(base.ID, "Pierogi", 2, ""))
	before := r.Statistics()

	doomed, err := r.CreateOrder(2, "")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(doomed.ID, "Schabowy", 5, ""))
	require.NoError(t, r.AddItem(doomed.ID, "Pierogi", 1, ""))
	assert.Equal(t, "Schabowy", r.Statistics().MostPopular)

	require.NoError(t, r.CancelOrder(doomed.ID, "guest left"))

	after := r.Statistics()
	assert.Equal(t, before.SoldCounts, after.SoldCounts)
	assert.Equal(t, before.MostPopular, after.MostPopular)
	assert.Equal(t, StatusCancelled, doomed.Status)
	assert.Equal(t, "cancelled: guest left", doomed.Notes)
	assert.Len(t, r.ActiveOrders(), 1)
}

func TestCancelOrderTerminalStates(t *testing.T) {
	r, _ := newTestRegistry(t)

	order := deliveredOrder(t, r)
	_, err := r.CloseOrder(order.ID, PaymentCash, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, faults.Is(r.CancelOrder(order.ID, ""), faults.InvalidState))

	doomed, err := r.CreateOrder(2, "")
	require.NoError(t, err)
	require.NoError(t, r.CancelOrder(doomed.ID, ""))
	assert.Equal(t, "cancelled", doomed.Notes)
	assert.True(t, faults.Is(r.CancelOrder(doomed.ID, ""), faults.InvalidState))

	assert.True(t, faults.Is(r.CancelOrder("missing", ""), faults.NotFound))
}

func TestOrdersForTable(t *testing.T) {
	r, _ := newTestRegistry(t)

	first, err := r.CreateOrder(5, "")
	require.NoError(t, err)
	_, err = r.CreateOrder(6, "")
	require.NoError(t, err)
	second, err := r.CreateOrder(5, "")
	require.NoError(t, err)

	found := r.OrdersForTable(5)
	require.Len(t, found, 2)
	ids := []string{found[0].ID, found[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)

	require.NoError(t, r.CancelOrder(first.ID, ""))
	assert.Len(t, r.OrdersForTable(5), 1)
}

// After a mixed workload the incrementally maintained statistics must
// match a full recomputation from the orders themselves.
func TestStatisticsMatchRecomputation(t *testing.T) {
	r, _ := newTestRegistry(t)

	paid := deliveredOrder(t, r)
	require.NoError(t, paid.SetDiscount(10))
	_, err := r.CloseOrder(paid.ID, PaymentCard, decimal.NewFromInt(3))
	require.NoError(t, err)

	cancelled, err := r.CreateOrder(7, "")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(cancelled.ID, "Pierogi", 4, ""))
	require.NoError(t, r.CancelOrder(cancelled.ID, "kitchen out of stock"))

	open, err := r.CreateOrder(8, "")
	require.NoError(t, err)
	require.NoError(t, r.AddItem(open.ID, "Pierogi", 2, ""))
	require.NoError(t, r.AddItem(open.ID, "Schabowy", 1, ""))
	require.NoError(t, r.RemoveItem(open.ID, "Schabowy", 1))

	incremental := r.Statistics()
	recomputed := r.RecomputeStatistics()

	assert.Equal(t, recomputed.OrderCount, incremental.OrderCount)
	assert.Equal(t, recomputed.SoldCounts, incremental.SoldCounts)
	assert.Equal(t, recomputed.MostPopular, incremental.MostPopular)
	assert.True(t, recomputed.RevenueSum.Equal(incremental.RevenueSum))
	assert.True(t, recomputed.MeanValue.Equal(incremental.MeanValue))
}
