package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"laas-calculator/internal/models"
	"laas-calculator/internal/services"
	"laas-calculator/utils"

	"github.com/gin-gonic/gin"
)

type ConfigurationHandler struct {
	configService *services.ConfigurationService
	middleware    *Middleware
}

func NewConfigurationHandler(configService *services.ConfigurationService, middleware *Middleware) *ConfigurationHandler {
	return &ConfigurationHandler{
		configService: configService,
		middleware:    middleware,
	}
}

func (h *ConfigurationHandler) RegisterRoutes(router *gin.Engine) {
	configGr := router.Group("/api/configurations")

	// Public routes
	configGr.GET("/public", h.GetPublicConfigurations)
	configGr.GET("/share/:token", h.GetConfigurationByShareToken)

	// Protected routes
	configGr.GET("/", h.middleware.RequireAuth, h.GetConfigurations)
	configGr.GET("/:id", h.middleware.RequireAuth, h.GetConfiguration)
	configGr.POST("/", h.middleware.RequireAuth, h.CreateConfiguration)
	configGr.PUT("/:id", h.middleware.RequireAuth, h.UpdateConfiguration)
	configGr.PUT("/:id/revert/:versionIndex", h.middleware.RequireAuth, h.RevertVersion)
	configGr.DELETE("/:id", h.middleware.RequireAuth, h.DeleteConfiguration)
}

func (h *ConfigurationHandler) GetConfigurations(c *gin.Context) {
	caller := GetCaller(c)

	cfgs, err := h.configService.ListConfigurations(caller)
	if err != nil {
		h.writeError(c, err, "FETCH_FAILED")
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"count":          len(cfgs),
		"configurations": cfgs,
	}))
}

func (h *ConfigurationHandler) GetPublicConfigurations(c *gin.Context) {
	cfgs, err := h.configService.ListPublicConfigurations()
	if err != nil {
		h.writeError(c, err, "FETCH_FAILED")
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"count":          len(cfgs),
		"configurations": cfgs,
	}))
}

func (h *ConfigurationHandler) GetConfiguration(c *gin.Context) {
	caller := GetCaller(c)

	cfg, err := h.configService.GetConfiguration(c.Param("id"), caller)
	if err != nil {
		h.writeError(c, err, "FETCH_FAILED")
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(cfg))
}

func (h *ConfigurationHandler) GetConfigurationByShareToken(c *gin.Context) {
	cfg, err := h.configService.GetConfigurationByShareToken(c.Param("token"))
	if err != nil {
		h.writeError(c, err, "FETCH_FAILED")
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(cfg))
}

func (h *ConfigurationHandler) CreateConfiguration(c *gin.Context) {
	caller := GetCaller(c)

	var req models.CreateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid configuration request format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	cfg, err := h.configService.CreateConfiguration(req, caller)
	if err != nil {
		h.writeError(c, err, "CREATION_FAILED")
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(cfg))
}

func (h *ConfigurationHandler) UpdateConfiguration(c *gin.Context) {
	caller := GetCaller(c)

	var req models.UpdateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid configuration update format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	cfg, err := h.configService.UpdateConfiguration(c.Param("id"), req, caller)
	if err != nil {
		h.writeError(c, err, "UPDATE_FAILED")
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(cfg))
}

func (h *ConfigurationHandler) RevertVersion(c *gin.Context) {
	caller := GetCaller(c)

	versionIndex, err := strconv.Atoi(c.Param("versionIndex"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_VERSION_INDEX", "version index must be a number"))
		return
	}

	cfg, err := h.configService.RevertVersion(c.Param("id"), versionIndex, caller)
	if err != nil {
		h.writeError(c, err, "REVERT_FAILED")
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(cfg))
}

func (h *ConfigurationHandler) DeleteConfiguration(c *gin.Context) {
	caller := GetCaller(c)

	if err := h.configService.DeleteConfiguration(c.Param("id"), caller); err != nil {
		h.writeError(c, err, "DELETE_FAILED")
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{}))
}

// writeError maps service errors to HTTP responses
func (h *ConfigurationHandler) writeError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, utils.CreateErrorResponse("NOT_FOUND", "Configuration not found"))
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, utils.CreateErrorResponse("NOT_AUTHORIZED", err.Error()))
	case errors.Is(err, models.ErrInvalidVersionIndex):
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_VERSION_INDEX", err.Error()))
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_INPUT", err.Error()))
	default:
		log.Printf("Configuration operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse(fallbackCode, "internal error"))
	}
}
