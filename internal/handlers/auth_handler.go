package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"laas-calculator/internal/models"
	"laas-calculator/internal/services"
	"laas-calculator/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService services.IUserService
	middleware  *Middleware
}

func NewAuthHandler(userService services.IUserService, middleware *Middleware) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		middleware:  middleware,
	}
}

func (a *AuthHandler) RegisterRoutes(router *gin.Engine) {
	authGr := router.Group("/api/auth")

	// Public routes
	authGr.POST("/register", a.Register)
	authGr.POST("/login", a.Login)
	authGr.POST("/forgot-password", a.ForgotPassword)
	authGr.PUT("/reset-password/:resettoken", a.ResetPassword)

	// Protected routes
	authGr.GET("/me", a.middleware.RequireAuth, a.GetMe)
	authGr.GET("/logout", a.middleware.RequireAuth, a.Logout)

	// Admin routes
	authGr.GET("/users", a.middleware.RequireAdmin, a.GetAllUsers)
}

// Register handles user registration
func (a *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid register request format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	user, err := a.userService.RegisterNewUser(req.Name, req.Username, req.Email, req.Password, models.RoleUser)
	if err != nil {
		log.Printf("Registration failed for %s/%s: %v", req.Email, req.Username, err)
		statusCode, errorCode := a.mapRegisterError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(gin.H{"user": user}))
}

// Login handles user authentication
func (a *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid login request format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", "Please provide a username and password"))
		return
	}

	deviceInfo := a.getDeviceInfo(c)
	ipAddress := a.getClientIP(c)

	user, session, err := a.userService.Login(req.Username, req.Password, &deviceInfo, &ipAddress)
	if err != nil {
		log.Printf("Login failed for user %s: %v", req.Username, err)
		statusCode, errorCode := a.mapLoginError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, "Login failed"))
		return
	}

	log.Printf("Successful login for user %s/%s", user.ID, user.Email)
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"user": gin.H{
			"id":       user.ID,
			"name":     user.Name,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
		"session": gin.H{
			"session_id": session.ID,
			"expires_at": session.ExpiresAt,
			"is_active":  session.IsActive,
		},
		"access_token": session.TokenHash,
	}))
}

// GetMe returns the currently logged in user
func (a *AuthHandler) GetMe(c *gin.Context) {
	caller := GetCaller(c)

	user, err := a.userService.GetUserByID(caller.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, utils.CreateErrorResponse("NOT_FOUND", "user not found"))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(user))
}

// Logout invalidates all sessions of the current user
func (a *AuthHandler) Logout(c *gin.Context) {
	caller := GetCaller(c)

	if err := a.userService.Logout(c.Request.Context(), caller.UserID); err != nil {
		log.Printf("Logout failed for user %s: %v", caller.UserID, err)
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("LOGOUT_FAILED", "failed to log out"))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{}))
}

// ForgotPassword issues a password reset token. The token is returned in the
// response body; mail delivery is out of scope.
func (a *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Please provide an email"))
		return
	}

	resetToken, err := a.userService.ForgotPassword(req.Email)
	if err != nil {
		log.Printf("Forgot password failed for %s: %v", req.Email, err)
		c.JSON(http.StatusNotFound, utils.CreateErrorResponse("NOT_FOUND", "No user with that email"))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"reset_token": resetToken,
		"reset_url":   fmt.Sprintf("/reset-password/%s", resetToken),
	}))
}

// ResetPassword redeems a reset token and sets the new password
func (a *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	if err := a.userService.ResetPassword(c.Request.Context(), c.Param("resettoken"), req.Password); err != nil {
		log.Printf("Password reset failed: %v", err)
		statusCode, errorCode := a.mapResetPasswordError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"message": "Password updated successfully"}))
}

// GetAllUsers returns every registered user (admin only)
func (a *AuthHandler) GetAllUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := a.userService.GetAllUsers(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("FETCH_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(users))
}

func (a *AuthHandler) getDeviceInfo(c *gin.Context) string {
	userAgent := c.GetHeader("User-Agent")
	if userAgent == "" {
		userAgent = "Unknown Device"
	}
	return userAgent
}

func (a *AuthHandler) getClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}

	return c.ClientIP()
}

func (a *AuthHandler) mapLoginError(err error) (int, string) {
	errorMsg := err.Error()

	switch {
	case strings.Contains(errorMsg, "invalid password"):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS"
	case strings.Contains(errorMsg, "username or password incorrect"):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (a *AuthHandler) mapResetPasswordError(err error) (int, string) {
	errorMsg := err.Error()

	switch {
	case strings.Contains(errorMsg, "invalid or expired"):
		return http.StatusBadRequest, "INVALID_RESET_TOKEN"
	case strings.Contains(errorMsg, "password"):
		return http.StatusBadRequest, "INVALID_PASSWORD_FORMAT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (a *AuthHandler) mapRegisterError(err error) (int, string) {
	errorMsg := err.Error()

	switch {
	case strings.Contains(errorMsg, "email already registered"):
		return http.StatusBadRequest, "EMAIL_TAKEN"
	case strings.Contains(errorMsg, "username already taken"):
		return http.StatusBadRequest, "USERNAME_TAKEN"
	case strings.Contains(errorMsg, "email"):
		return http.StatusBadRequest, "INVALID_EMAIL"
	case strings.Contains(errorMsg, "password"):
		return http.StatusBadRequest, "INVALID_PASSWORD_FORMAT"
	case strings.Contains(errorMsg, "username"):
		return http.StatusBadRequest, "INVALID_USERNAME"
	case strings.Contains(errorMsg, "creating new user"):
		return http.StatusConflict, "USER_ALREADY_EXISTS"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
