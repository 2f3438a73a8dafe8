package handlers

import (
	"errors"
	"log"
	"net/http"

	"laas-calculator/internal/models"
	"laas-calculator/internal/services"
	"laas-calculator/utils"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	pricingService *services.PricingService
	middleware     *Middleware
}

func NewPricingHandler(pricingService *services.PricingService, middleware *Middleware) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		middleware:     middleware,
	}
}

func (p *PricingHandler) RegisterRoutes(router *gin.Engine) {
	pricingGr := router.Group("/api/pricing")

	// Public routes with optional authentication
	pricingGr.GET("/", p.middleware.OptionalAuth, p.GetPricing)
	pricingGr.POST("/calculate", p.middleware.OptionalAuth, p.CalculateCosts)

	// Admin routes
	pricingGr.PUT("/", p.middleware.RequireAdmin, p.UpdatePricing)
}

// GetPricing returns the current rate plan. Non-admin callers receive the
// redacted view.
func (p *PricingHandler) GetPricing(c *gin.Context) {
	caller := GetCaller(c)

	rules, err := p.pricingService.GetRules(caller)
	if err != nil {
		log.Printf("Get pricing failed: %v", err)
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("FETCH_FAILED", "failed to load pricing rules"))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(rules))
}

// UpdatePricing applies a partial rules update (admin only)
func (p *PricingHandler) UpdatePricing(c *gin.Context) {
	caller := GetCaller(c)

	var update models.PricingRulesUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		log.Printf("Invalid pricing update format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	rules, err := p.pricingService.UpdateRules(update, caller.UserID)
	if err != nil {
		log.Printf("Pricing update failed: %v", err)
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("UPDATE_FAILED", "failed to update pricing rules"))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(rules))
}

// CalculateCosts computes a cost breakdown for an ad-hoc resource list
func (p *PricingHandler) CalculateCosts(c *gin.Context) {
	caller := GetCaller(c)

	var req models.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid calculate request format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	result, err := p.pricingService.CalculateCosts(req.RawOptions, caller)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_INPUT", err.Error()))
			return
		}
		log.Printf("Cost calculation failed: %v", err)
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("CALCULATION_FAILED", "failed to calculate costs"))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
}
