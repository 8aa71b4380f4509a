package orders

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"brasserie/internal/faults"
)

// Catalog is the read-only menu lookup the registry depends on.
// *menu.Menu satisfies it.
type Catalog interface {
	LookupDish(name string) (price decimal.Decimal, available bool, err error)
}

// Statistics holds the running sales figures. RevenueSum and MeanValue
// only cover closed (paid) orders; MeanValue divides by the full
// history length, cancelled orders included.
type Statistics struct {
	OrderCount  int
	RevenueSum  decimal.Decimal
	MeanValue   decimal.Decimal
	SoldCounts  map[string]int
	MostPopular string
}

func newStatistics() Statistics {
	return Statistics{
		RevenueSum: decimal.Zero,
		MeanValue:  decimal.Zero,
		SoldCounts: make(map[string]int),
	}
}

func (s Statistics) clone() Statistics {
	counts := make(map[string]int, len(s.SoldCounts))
	for dish, count := range s.SoldCounts {
		counts[dish] = count
	}
	s.SoldCounts = counts
	return s
}

// Registry manages every order, mediates dish lookup through the
// catalog and keeps the running statistics consistent across item
// additions, removals, closures and cancellations.
type Registry struct {
	mu      sync.RWMutex
	orders  map[string]*Order
	active  []string
	history []string
	catalog Catalog
	stats   Statistics
	logger  *zap.Logger
}

// NewRegistry creates a registry backed by the given catalog.
func NewRegistry(catalog Catalog, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		orders:  make(map[string]*Order),
		catalog: catalog,
		stats:   newStatistics(),
		logger:  logger,
	}
}

// CreateOrder opens a new order for a table and indexes it as active.
func (r *Registry) CreateOrder(table int, waiter string) (*Order, error) {
	order, err := NewOrder(table, waiter)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.ID] = order
	r.active = append(r.active, order.ID)
	r.stats.OrderCount++
	r.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int("table", table),
		zap.String("waiter", waiter))
	return order, nil
}

// Order returns the order registered under id.
func (r *Registry) Order(id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.order(id)
}

// AddItem adds a dish to an order at the catalog's current price. The
// price is copied into the line at this moment; later catalog price
// changes do not alter the order.
func (r *Registry) AddItem(orderID, dish string, quantity int, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := r.order(orderID)
	if err != nil {
		return err
	}

	price, available, err := r.catalog.LookupDish(dish)
	if err != nil {
		return err
	}
	if !available {
		return faults.New(faults.Unavailable, "dish %s is currently unavailable", dish)
	}

	if err := order.AddLine(dish, price, quantity, notes); err != nil {
		return err
	}

	r.stats.SoldCounts[dish] += quantity
	r.recomputeMostPopular()
	return nil
}

// RemoveItem removes portions of a dish from an order and unwinds the
// sold-count contribution of whatever was actually removed.
func (r *Registry) RemoveItem(orderID, dish string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := r.order(orderID)
	if err != nil {
		return err
	}

	removed, err := order.RemoveLine(dish, quantity)
	if err != nil {
		return err
	}

	r.reduceSoldCount(dish, removed)
	r.recomputeMostPopular()
	return nil
}

// CloseOrder settles a delivered order: payment is recorded, the order
// moves to history and its discounted total folds into the revenue
// figures. The returned amount is the grand total including tip.
func (r *Registry) CloseOrder(orderID string, method PaymentMethod, tip decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := r.order(orderID)
	if err != nil {
		return decimal.Zero, err
	}
	if order.Status != StatusDelivered {
		return decimal.Zero, faults.New(faults.InvalidState, "only a delivered order can be closed, current status is %s", order.Status)
	}

	if err := order.SetPayment(method, tip); err != nil {
		return decimal.Zero, err
	}
	if err := order.SetStatus(StatusPaid); err != nil {
		return decimal.Zero, err
	}
	r.moveToHistory(orderID)

	r.stats.RevenueSum = r.stats.RevenueSum.Add(order.TotalAfterDiscount())
	r.stats.MeanValue = r.stats.RevenueSum.Div(decimal.NewFromInt(int64(len(r.history)))).Round(2)

	total := order.GrandTotal()
	r.logger.Info("order closed",
		zap.String("order_id", orderID),
		zap.String("payment", string(method)),
		zap.String("total", total.StringFixed(2)))
	return total, nil
}

// CancelOrder cancels a non-terminal order, records the reason in its
// notes and reverses every line's sold-count contribution so the
// statistics read as if the order never happened.
func (r *Registry) CancelOrder(orderID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := r.order(orderID)
	if err != nil {
		return err
	}
	if order.Status.IsTerminal() {
		return faults.New(faults.InvalidState, "order in status %s cannot be cancelled", order.Status)
	}

	if err := order.SetStatus(StatusCancelled); err != nil {
		return err
	}
	if reason != "" {
		order.Notes = "cancelled: " + reason
	} else {
		order.Notes = "cancelled"
	}
	r.moveToHistory(orderID)

	// The mean divides by the full history length, so a cancellation
	// changes it even though revenue stays put.
	r.stats.MeanValue = r.stats.RevenueSum.Div(decimal.NewFromInt(int64(len(r.history)))).Round(2)

	for _, line := range order.Lines() {
		r.reduceSoldCount(line.Dish, line.Quantity)
	}
	r.recomputeMostPopular()

	r.logger.Info("order cancelled", zap.String("order_id", orderID), zap.String("reason", reason))
	return nil
}

// OrdersForTable returns the active orders for a table.
func (r *Registry) OrdersForTable(table int) []*Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Order
	for _, id := range r.active {
		if order := r.orders[id]; order.Table == table {
			out = append(out, order)
		}
	}
	return out
}

// ActiveOrders returns every active order in creation order.
func (r *Registry) ActiveOrders() []*Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Order, 0, len(r.active))
	for _, id := range r.active {
		out = append(out, r.orders[id])
	}
	return out
}

// Statistics returns a copy of the running sales statistics.
func (r *Registry) Statistics() Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats.clone()
}

// RecomputeStatistics rebuilds the statistics from the orders
// themselves, ignoring the incrementally maintained figures. The
// result must always match Statistics(); tests use it to cross-check
// the incremental path.
func (r *Registry) RecomputeStatistics() Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := newStatistics()
	stats.OrderCount = len(r.orders)

	for _, order := range r.orders {
		if order.Status == StatusCancelled {
			continue
		}
		for _, line := range order.Lines() {
			stats.SoldCounts[line.Dish] += line.Quantity
		}
	}

	for _, id := range r.history {
		order := r.orders[id]
		if order.Status == StatusPaid {
			stats.RevenueSum = stats.RevenueSum.Add(order.TotalAfterDiscount())
		}
	}
	if len(r.history) > 0 {
		stats.MeanValue = stats.RevenueSum.Div(decimal.NewFromInt(int64(len(r.history)))).Round(2)
	}

	best := ""
	bestCount := 0
	for dish, count := range stats.SoldCounts {
		if count > bestCount {
			best, bestCount = dish, count
		}
	}
	stats.MostPopular = best
	return stats
}

// order must be called with the lock held.
func (r *Registry) order(id string) (*Order, error) {
	order, exists := r.orders[id]
	if !exists {
		return nil, faults.New(faults.NotFound, "order %s does not exist", id)
	}
	return order, nil
}

// moveToHistory must be called with the lock held. An order id lives
// in exactly one of the two lists after creation.
func (r *Registry) moveToHistory(id string) {
	for idx, active := range r.active {
		if active == id {
			r.active = append(r.active[:idx], r.active[idx+1:]...)
			break
		}
	}
	r.history = append(r.history, id)
}

// reduceSoldCount must be called with the lock held. The reduction is
// capped at the currently recorded count and zeroed entries are dropped.
func (r *Registry) reduceSoldCount(dish string, quantity int) {
	count, tracked := r.stats.SoldCounts[dish]
	if !tracked {
		return
	}
	count -= quantity
	if count <= 0 {
		delete(r.stats.SoldCounts, dish)
		return
	}
	r.stats.SoldCounts[dish] = count
}

// recomputeMostPopular must be called with the lock held. Ties go to
// whichever dish the scan sees first.
func (r *Registry) recomputeMostPopular() {
	best := ""
	bestCount := 0
	for dish, count := range r.stats.SoldCounts {
		if count > bestCount {
			best, bestCount = dish, count
		}
	}
	r.stats.MostPopular = best
}
