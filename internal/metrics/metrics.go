// Package metrics exposes the operational counters for the back office
// on a private prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector handles metrics collection and reporting.
type Collector struct {
	registry *prometheus.Registry

	ordersCreated   prometheus.Counter
	ordersClosed    prometheus.Counter
	ordersCancelled prometheus.Counter
	revenue         prometheus.Counter
	fulfillment     prometheus.Histogram
	lowStock        prometheus.Gauge
	inventoryValue  prometheus.Gauge
}

// NewCollector creates a collector with all metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Number of orders opened",
		}),
		ordersClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_closed_total",
			Help: "Number of orders paid and closed",
		}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Number of orders cancelled",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revenue_total",
			Help: "Discounted revenue of closed orders",
		}),
		fulfillment: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "order_fulfillment_minutes",
			Help:    "Minutes from order creation to payment",
			Buckets: prometheus.LinearBuckets(0, 5, 12),
		}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_low_stock",
			Help: "Number of ingredients below their reorder threshold",
		}),
		inventoryValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_value",
			Help: "Total value of the pantry",
		}),
	}

	registry.MustRegister(
		c.ordersCreated,
		c.ordersClosed,
		c.ordersCancelled,
		c.revenue,
		c.fulfillment,
		c.lowStock,
		c.inventoryValue,
	)
	return c
}

// RecordOrderCreated counts an opened order.
func (c *Collector) RecordOrderCreated() {
	c.ordersCreated.Inc()
}

// RecordOrderClosed counts a paid order with its discounted revenue
// and, when known, the fulfillment time.
func (c *Collector) RecordOrderClosed(revenue float64, fulfillmentMinutes float64, fulfillmentKnown bool) {
	c.ordersClosed.Inc()
	c.revenue.Add(revenue)
	if fulfillmentKnown {
		c.fulfillment.Observe(fulfillmentMinutes)
	}
}

// RecordOrderCancelled counts a cancelled order.
func (c *Collector) RecordOrderCancelled() {
	c.ordersCancelled.Inc()
}

// SetLowStockCount updates the low-stock gauge.
func (c *Collector) SetLowStockCount(count int) {
	c.lowStock.Set(float64(count))
}

// SetInventoryValue updates the pantry value gauge.
func (c *Collector) SetInventoryValue(value float64) {
	c.inventoryValue.Set(value)
}

// Handler returns the HTTP handler serving the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
