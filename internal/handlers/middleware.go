package handlers

import (
	"log"
	"net/http"
	"strings"

	"laas-calculator/internal/models"
	"laas-calculator/internal/services"
	"laas-calculator/utils"

	"github.com/gin-gonic/gin"
)

const callerIdentityKey = "caller_identity"

type Middleware struct {
	jwtService     *services.JWTService
	sessionService *services.SessionService
}

func NewMiddleware(jwtService *services.JWTService, sessionService *services.SessionService) *Middleware {
	return &Middleware{
		jwtService:     jwtService,
		sessionService: sessionService,
	}
}

// OptionalAuth resolves the caller identity when a valid token is presented
// and leaves an anonymous identity otherwise. It never rejects the request.
func (m *Middleware) OptionalAuth(c *gin.Context) {
	caller, ok := m.resolveCaller(c)
	if !ok {
		caller = models.CallerIdentity{}
	}
	c.Set(callerIdentityKey, caller)
	c.Next()
}

// RequireAuth rejects requests without a valid token and active session.
func (m *Middleware) RequireAuth(c *gin.Context) {
	caller, ok := m.resolveCaller(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			utils.CreateErrorResponse("INVALID_TOKEN", "valid authorization token required"))
		return
	}
	c.Set(callerIdentityKey, caller)
	c.Next()
}

// RequireAdmin rejects any caller that is not an authenticated admin.
func (m *Middleware) RequireAdmin(c *gin.Context) {
	caller, ok := m.resolveCaller(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			utils.CreateErrorResponse("INVALID_TOKEN", "valid authorization token required"))
		return
	}
	if caller.Role != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden,
			utils.CreateErrorResponse("ADMIN_REQUIRED", "admin role required"))
		return
	}
	c.Set(callerIdentityKey, caller)
	c.Next()
}

// GetCaller reads the identity resolved by the middleware. Handlers thread it
// explicitly into every service call.
func GetCaller(c *gin.Context) models.CallerIdentity {
	if v, exists := c.Get(callerIdentityKey); exists {
		if caller, ok := v.(models.CallerIdentity); ok {
			return caller
		}
	}
	return models.CallerIdentity{}
}

func (m *Middleware) resolveCaller(c *gin.Context) (models.CallerIdentity, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return models.CallerIdentity{}, false
	}

	tokenString := authHeader
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = authHeader[7:]
	}

	claims, err := m.jwtService.VerifyToken(tokenString)
	if err != nil {
		log.Printf("Token validation failed: %v", err)
		return models.CallerIdentity{}, false
	}

	sessions, err := m.sessionService.GetUserSessions(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Printf("Failed to retrieve user sessions: %v", err)
		return models.CallerIdentity{}, false
	}

	isSessionValid := false
	for _, session := range sessions {
		if session.TokenHash == tokenString && session.IsActive {
			isSessionValid = true
			break
		}
	}

	if !isSessionValid {
		return models.CallerIdentity{}, false
	}

	return models.CallerIdentity{
		Authenticated: true,
		Role:          models.UserRole(claims.Role),
		UserID:        claims.UserID,
	}, true
}
