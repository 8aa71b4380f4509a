package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"brasserie/internal/inventory"
)

// Inventory management handlers.

func (s *Server) AddIngredient(c *gin.Context) {
	var req struct {
		Name        string          `json:"name"`
		Unit        string          `json:"unit"`
		Initial     float64         `json:"initial"`
		MinQuantity float64         `json:"min_quantity"`
		UnitPrice   decimal.Decimal `json:"unit_price"`
		Expiry      *time.Time      `json:"expiry"`
		Supplier    string          `json:"supplier"`
		Category    string          `json:"category"`
		Location    string          `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ing, err := inventory.NewIngredient(inventory.IngredientSpec{
		Name:        req.Name,
		Unit:        req.Unit,
		Initial:     req.Initial,
		MinQuantity: req.MinQuantity,
		UnitPrice:   req.UnitPrice,
		Expiry:      req.Expiry,
		Supplier:    req.Supplier,
		Category:    req.Category,
		Location:    req.Location,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.ledger.AddIngredient(ing); err != nil {
		s.fail(c, err)
		return
	}

	s.refreshInventoryGauges()
	c.JSON(http.StatusCreated, ingredientView(ing))
}

func (s *Server) GetIngredient(c *gin.Context) {
	ing, err := s.ledger.Ingredient(c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}

	view := ingredientView(ing)
	history := make([]gin.H, 0, len(ing.History()))
	for _, entry := range ing.History() {
		history = append(history, gin.H{
			"at":        entry.At,
			"operation": entry.Operation,
			"delta":     entry.Delta,
		})
	}
	view["history"] = history
	c.JSON(http.StatusOK, view)
}

func (s *Server) RemoveIngredient(c *gin.Context) {
	if err := s.ledger.RemoveIngredient(c.Param("name")); err != nil {
		s.fail(c, err)
		return
	}
	s.refreshInventoryGauges()
	c.JSON(http.StatusOK, gin.H{"message": "ingredient removed"})
}

func (s *Server) AddRecipe(c *gin.Context) {
	var req struct {
		Dish        string             `json:"dish"`
		Ingredients map[string]float64 `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ledger.AddRecipe(req.Dish, req.Ingredients); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "recipe added"})
}

func (s *Server) UpdateRecipe(c *gin.Context) {
	var req struct {
		Ingredients map[string]float64 `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ledger.UpdateRecipe(c.Param("dish"), req.Ingredients); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recipe updated"})
}

func (s *Server) RemoveRecipe(c *gin.Context) {
	if err := s.ledger.RemoveRecipe(c.Param("dish")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recipe removed"})
}

func (s *Server) CanPrepare(c *gin.Context) {
	portions := 1
	if portionsParam := c.Query("portions"); portionsParam != "" {
		parsed, err := strconv.Atoi(portionsParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "portions must be a number"})
			return
		}
		portions = parsed
	}

	ok, err := s.ledger.CanPrepare(c.Query("dish"), portions)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_prepare": ok})
}

func (s *Server) Prepare(c *gin.Context) {
	var req struct {
		Dish     string `json:"dish"`
		Portions int    `json:"portions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Portions == 0 {
		req.Portions = 1
	}

	if err := s.ledger.Prepare(req.Dish, req.Portions); err != nil {
		s.fail(c, err)
		return
	}

	s.refreshInventoryGauges()
	c.JSON(http.StatusOK, gin.H{"message": "dish prepared"})
}

func (s *Server) RegisterDelivery(c *gin.Context) {
	var req struct {
		Supplier string `json:"supplier"`
		Notes    string `json:"notes"`
		Items    map[string]struct {
			Quantity float64         `json:"quantity"`
			Price    decimal.Decimal `json:"price"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make(map[string]inventory.DeliveryItem, len(req.Items))
	for name, item := range req.Items {
		items[name] = inventory.DeliveryItem{Quantity: item.Quantity, Price: item.Price}
	}

	deliveryID, err := s.ledger.RegisterDelivery(req.Supplier, items, req.Notes)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.refreshInventoryGauges()
	c.JSON(http.StatusCreated, gin.H{"delivery_id": deliveryID})
}

func (s *Server) ListDeliveries(c *gin.Context) {
	deliveries := s.ledger.Deliveries()
	out := make([]gin.H, 0, len(deliveries))
	for _, delivery := range deliveries {
		items := make(map[string]gin.H, len(delivery.Items))
		for name, item := range delivery.Items {
			items[name] = gin.H{"quantity": item.Quantity, "price": item.Price}
		}
		out = append(out, gin.H{
			"id":       delivery.ID,
			"supplier": delivery.Supplier,
			"at":       delivery.At,
			"items":    items,
			"notes":    delivery.Notes,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) ReorderList(c *gin.Context) {
	c.JSON(http.StatusOK, ingredientViews(s.ledger.ReorderList()))
}

func (s *Server) ExpiredList(c *gin.Context) {
	c.JSON(http.StatusOK, ingredientViews(s.ledger.ExpiredList()))
}

func (s *Server) InventoryValue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"total_value": s.ledger.TotalValue()})
}

func ingredientView(ing *inventory.Ingredient) gin.H {
	view := gin.H{
		"name":          ing.Name,
		"unit":          ing.Unit,
		"on_hand":       ing.OnHand,
		"min_quantity":  ing.MinQuantity,
		"unit_price":    ing.UnitPrice,
		"supplier":      ing.Supplier,
		"category":      ing.Category,
		"location":      ing.Location,
		"needs_reorder": ing.NeedsReorder(),
		"expired":       ing.IsExpired(),
		"stock_value":   ing.StockValue(),
	}
	if ing.Expiry != nil {
		view["expiry"] = ing.Expiry
	}
	return view
}

func ingredientViews(list []*inventory.Ingredient) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, ing := range list {
		out = append(out, ingredientView(ing))
	}
	return out
}
