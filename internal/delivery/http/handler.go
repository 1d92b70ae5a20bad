package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basketwise/backend/internal/domain"
	"github.com/basketwise/backend/internal/usecase"
)

// BasketPlanner is the slice of the basket service the HTTP layer needs.
type BasketPlanner interface {
	OptimizeBasket(ctx context.Context, request usecase.OptimizeRequest) (*domain.Plan, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	planner BasketPlanner
}

// NewHandler creates a new HTTP handler
func NewHandler(planner BasketPlanner) *Handler {
	return &Handler{planner: planner}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "basketwise-backend",
		"version": "1.0.0",
	})
}

// optimizeRequestBody is the JSON body of POST /api/v1/basket/optimize.
// Items holds the raw shopping list, comma or newline separated.
type optimizeRequestBody struct {
	Items     string `json:"items" binding:"required"`
	Strategy  string `json:"strategy"`
	MaxStores int    `json:"maxStores"`
}

// OptimizeBasket handles basket optimization requests
func (h *Handler) OptimizeBasket(c *gin.Context) {
	if h.planner == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "basket service not configured"})
		return
	}

	var body optimizeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	items := usecase.SplitItems(body.Items)
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shopping list is empty"})
		return
	}

	strategy, ok := parseStrategy(body.Strategy)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown strategy: " + body.Strategy})
		return
	}

	plan, err := h.planner.OptimizeBasket(c.Request.Context(), usecase.OptimizeRequest{
		Items:     items,
		Strategy:  strategy,
		MaxStores: body.MaxStores,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNoStores):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "optimization failed"})
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// parseStrategy maps the wire strategy names onto plan strategies. The short
// aliases match the chat-bot era button names; the long forms match the Plan
// JSON output.
func parseStrategy(s string) (domain.PlanStrategy, bool) {
	switch s {
	case "", "split", string(domain.StrategyFullSplit):
		return domain.StrategyFullSplit, true
	case "limited", string(domain.StrategyLimitedStores):
		return domain.StrategyLimitedStores, true
	case "single", string(domain.StrategySingleStore):
		return domain.StrategySingleStore, true
	default:
		return "", false
	}
}
