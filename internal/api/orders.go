package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"brasserie/internal/orders"
)

// Order lifecycle handlers.

func (s *Server) CreateOrder(c *gin.Context) {
	var req struct {
		Table  int    `json:"table"`
		Waiter string `json:"waiter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.registry.CreateOrder(req.Table, req.Waiter)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.RecordOrderCreated()
	s.board.Broadcast(Event{Type: "order_created", OrderID: order.ID, Table: order.Table, Status: string(order.Status), At: time.Now()})
	c.JSON(http.StatusCreated, orderView(order))
}

func (s *Server) ListOrders(c *gin.Context) {
	if tableParam := c.Query("table"); tableParam != "" {
		table, err := strconv.Atoi(tableParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "table must be a number"})
			return
		}
		c.JSON(http.StatusOK, orderViews(s.registry.OrdersForTable(table)))
		return
	}
	c.JSON(http.StatusOK, orderViews(s.registry.ActiveOrders()))
}

func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.registry.Order(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView(order))
}

func (s *Server) AddItem(c *gin.Context) {
	var req struct {
		Dish     string `json:"dish"`
		Quantity int    `json:"quantity"`
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := s.registry.AddItem(c.Param("id"), req.Dish, req.Quantity, req.Notes); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item added"})
}

func (s *Server) RemoveItem(c *gin.Context) {
	quantity := 0 // zero removes the whole line
	if quantityParam := c.Query("quantity"); quantityParam != "" {
		parsed, err := strconv.Atoi(quantityParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a number"})
			return
		}
		quantity = parsed
	}

	if err := s.registry.RemoveItem(c.Param("id"), c.Param("dish"), quantity); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed"})
}

func (s *Server) SetOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.registry.Order(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := order.SetStatus(orders.OrderStatus(req.Status)); err != nil {
		s.fail(c, err)
		return
	}

	s.board.Broadcast(Event{Type: "order_status", OrderID: order.ID, Table: order.Table, Status: string(order.Status), At: time.Now()})
	c.JSON(http.StatusOK, orderView(order))
}

func (s *Server) CloseOrder(c *gin.Context) {
	var req struct {
		Method string          `json:"method"`
		Tip    decimal.Decimal `json:"tip"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := s.registry.CloseOrder(c.Param("id"), orders.PaymentMethod(req.Method), req.Tip)
	if err != nil {
		s.fail(c, err)
		return
	}

	order, lookupErr := s.registry.Order(c.Param("id"))
	if lookupErr == nil {
		revenue, _ := order.TotalAfterDiscount().Float64()
		minutes, known := order.FulfillmentMinutes()
		s.metrics.RecordOrderClosed(revenue, minutes, known)
		s.board.Broadcast(Event{Type: "order_closed", OrderID: order.ID, Table: order.Table, Status: string(order.Status), At: time.Now()})
	}

	c.JSON(http.StatusOK, gin.H{"total": total})
}

func (s *Server) CancelOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.registry.CancelOrder(c.Param("id"), req.Reason); err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.RecordOrderCancelled()
	if order, err := s.registry.Order(c.Param("id")); err == nil {
		s.board.Broadcast(Event{Type: "order_cancelled", OrderID: order.ID, Table: order.Table, Status: string(order.Status), At: time.Now()})
	}
	c.JSON(http.StatusOK, gin.H{"message": "order cancelled"})
}

func (s *Server) GetStatistics(c *gin.Context) {
	stats := s.registry.Statistics()
	c.JSON(http.StatusOK, gin.H{
		"order_count":  stats.OrderCount,
		"revenue_sum":  stats.RevenueSum,
		"mean_value":   stats.MeanValue,
		"sold_counts":  stats.SoldCounts,
		"most_popular": stats.MostPopular,
	})
}

// View helpers.

func orderView(order *orders.Order) gin.H {
	lines := make([]gin.H, 0, len(order.Lines()))
	for _, line := range order.Lines() {
		lines = append(lines, gin.H{
			"dish":       line.Dish,
			"quantity":   line.Quantity,
			"unit_price": line.UnitPrice,
			"notes":      line.Notes,
			"status":     string(line.Status),
			"total":      line.Total(),
		})
	}

	view := gin.H{
		"id":                   order.ID,
		"table":                order.Table,
		"status":               string(order.Status),
		"waiter":               order.Waiter,
		"notes":                order.Notes,
		"discount_percent":     order.DiscountPercent,
		"tip":                  order.Tip,
		"lines":                lines,
		"subtotal":             order.Subtotal(),
		"total_after_discount": order.TotalAfterDiscount(),
		"grand_total":          order.GrandTotal(),
		"created_at":           order.CreatedAt,
	}
	if minutes, known := order.FulfillmentMinutes(); known {
		view["fulfillment_minutes"] = minutes
	}
	return view
}

func orderViews(list []*orders.Order) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, order := range list {
		out = append(out, orderView(order))
	}
	return out
}
