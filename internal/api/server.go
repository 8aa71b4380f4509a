// Package api exposes the back office over HTTP: orders, inventory
// and menu management, plus a websocket board for live order events.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brasserie/internal/faults"
	"brasserie/internal/inventory"
	"brasserie/internal/menu"
	"brasserie/internal/metrics"
	"brasserie/internal/orders"
)

// Server represents the main API handler for the restaurant back office.
type Server struct {
	router   *gin.Engine
	menu     *menu.Menu
	ledger   *inventory.Ledger
	registry *orders.Registry
	metrics  *metrics.Collector
	board    *Board
	logger   *zap.Logger
}

// NewServer creates a server wired to the given core components.
func NewServer(m *menu.Menu, ledger *inventory.Ledger, registry *orders.Registry, collector *metrics.Collector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:   gin.Default(),
		menu:     m,
		ledger:   ledger,
		registry: registry,
		metrics:  collector,
		board:    NewBoard(logger),
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints.
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/ws", s.board.HandleWS)

	v1 := s.router.Group("/api/v1")
	{
		// Order lifecycle
		v1.POST("/orders", s.CreateOrder)
		v1.GET("/orders", s.ListOrders)
		v1.GET("/orders/:id", s.GetOrder)
		v1.POST("/orders/:id/items", s.AddItem)
		v1.DELETE("/orders/:id/items/:dish", s.RemoveItem)
		v1.POST("/orders/:id/status", s.SetOrderStatus)
		v1.POST("/orders/:id/close", s.CloseOrder)
		v1.POST("/orders/:id/cancel", s.CancelOrder)
		v1.GET("/stats", s.GetStatistics)

		// Inventory management
		v1.POST("/inventory/ingredients", s.AddIngredient)
		v1.GET("/inventory/ingredients/:name", s.GetIngredient)
		v1.DELETE("/inventory/ingredients/:name", s.RemoveIngredient)
		v1.POST("/inventory/recipes", s.AddRecipe)
		v1.PUT("/inventory/recipes/:dish", s.UpdateRecipe)
		v1.DELETE("/inventory/recipes/:dish", s.RemoveRecipe)
		v1.GET("/inventory/can-prepare", s.CanPrepare)
		v1.POST("/inventory/prepare", s.Prepare)
		v1.POST("/inventory/deliveries", s.RegisterDelivery)
		v1.GET("/inventory/deliveries", s.ListDeliveries)
		v1.GET("/inventory/reorder", s.ReorderList)
		v1.GET("/inventory/expired", s.ExpiredList)
		v1.GET("/inventory/value", s.InventoryValue)

		// Menu management
		v1.POST("/menu/dishes", s.AddDish)
		v1.GET("/menu/dishes", s.ListDishes)
		v1.DELETE("/menu/dishes/:name", s.RemoveDish)
		v1.POST("/menu/dishes/:name/availability", s.SetDishAvailability)
		v1.POST("/menu/dishes/:name/price", s.ChangeDishPrice)
		v1.POST("/menu/specials", s.AddSpecial)
		v1.DELETE("/menu/specials/:name", s.RemoveSpecial)
		v1.GET("/menu/specials", s.ListSpecials)
	}
}

// Router returns the gin router.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Board returns the websocket board so callers can broadcast their own events.
func (s *Server) Board() *Board {
	return s.board
}

// statusFor maps a fault kind to an HTTP status.
func statusFor(err error) int {
	switch faults.KindOf(err) {
	case faults.NotFound:
		return http.StatusNotFound
	case faults.DuplicateEntry, faults.InUse, faults.InvalidState, faults.Unavailable:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// fail writes a fault as a JSON error response.
func (s *Server) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"kind":  faults.KindOf(err).String(),
	})
}

// refreshInventoryGauges pushes current pantry figures to the collector.
func (s *Server) refreshInventoryGauges() {
	s.metrics.SetLowStockCount(len(s.ledger.ReorderList()))
	value, _ := s.ledger.TotalValue().Float64()
	s.metrics.SetInventoryValue(value)
}
