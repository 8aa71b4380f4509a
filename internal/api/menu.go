package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"brasserie/internal/menu"
)

// Menu management handlers.

func (s *Server) AddDish(c *gin.Context) {
	var req struct {
		Name            string          `json:"name"`
		Price           decimal.Decimal `json:"price"`
		Category        string          `json:"category"`
		PrepTimeMinutes int             `json:"prep_time_minutes"`
		Ingredients     []string        `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dish, err := menu.NewDish(req.Name, req.Price, req.Category, time.Duration(req.PrepTimeMinutes)*time.Minute)
	if err != nil {
		s.fail(c, err)
		return
	}
	for _, ingredient := range req.Ingredients {
		if err := dish.AddIngredient(ingredient); err != nil {
			s.fail(c, err)
			return
		}
	}
	if err := s.menu.AddDish(dish); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dishView(dish))
}

func (s *Server) ListDishes(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		c.JSON(http.StatusOK, dishViews(s.menu.DishesByCategory(category)))
		return
	}

	var all []*menu.Dish
	for _, category := range s.menu.Categories() {
		all = append(all, s.menu.DishesByCategory(category)...)
	}
	c.JSON(http.StatusOK, dishViews(all))
}

func (s *Server) RemoveDish(c *gin.Context) {
	if err := s.menu.RemoveDish(c.Param("name")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "dish removed"})
}

func (s *Server) SetDishAvailability(c *gin.Context) {
	var req struct {
		Available bool `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dish, err := s.menu.Dish(c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	dish.SetAvailable(req.Available)
	c.JSON(http.StatusOK, dishView(dish))
}

func (s *Server) ChangeDishPrice(c *gin.Context) {
	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dish, err := s.menu.Dish(c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := dish.ChangePrice(req.Price); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dishView(dish))
}

func (s *Server) AddSpecial(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.menu.AddSpecial(req.Name); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"specials": s.menu.Specials()})
}

func (s *Server) RemoveSpecial(c *gin.Context) {
	if err := s.menu.RemoveSpecial(c.Param("name")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"specials": s.menu.Specials()})
}

func (s *Server) ListSpecials(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"specials": s.menu.Specials()})
}

func dishView(dish *menu.Dish) gin.H {
	return gin.H{
		"name":        dish.Name,
		"price":       dish.Price,
		"category":    dish.Category,
		"prep_time":   dish.PrepTime.Minutes(),
		"available":   dish.Available,
		"ingredients": dish.Ingredients,
	}
}

func dishViews(list []*menu.Dish) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, dish := range list {
		out = append(out, dishView(dish))
	}
	return out
}
