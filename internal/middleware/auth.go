package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/naijasafe/emergency-api/internal/handler"
	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/service/auth"
	"github.com/naijasafe/emergency-api/internal/service/volunteer"
)

const (
	ContextUserID  = "userID"
	ContextEmail   = "userEmail"
	ContextIsStaff = "isStaff"
)

type AuthMiddleware struct {
	authService      auth.Service
	volunteerService volunteer.Service
}

func NewAuthMiddleware(authService auth.Service, volunteerService volunteer.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService:      authService,
		volunteerService: volunteerService,
	}
}

// Authenticate verifies the bearer token and sets caller info in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.resolveClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing or invalid authorization"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextIsStaff, claims.IsStaff)
		c.Next()
	}
}

// OptionalAuthenticate resolves caller identity when a valid token is
// present and stays silent otherwise. The SOS ingest path accepts anonymous
// callers, so a bad token is treated the same as no token.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := m.resolveClaims(c); ok {
			c.Set(ContextUserID, claims.UserID.String())
			c.Set(ContextEmail, claims.Email)
			c.Set(ContextIsStaff, claims.IsStaff)
		}
		c.Next()
	}
}

// RequireStaff gates staff-only routes; run after Authenticate.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsStaff) {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("access denied, staff only"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireVolunteerOrStaff gates the volunteer task list; run after
// Authenticate. Non-volunteers are pointed at the signup flow.
func (m *AuthMiddleware) RequireVolunteerOrStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(ContextIsStaff) {
			c.Next()
			return
		}

		callerID := CallerID(c)
		if callerID != uuid.Nil {
			profile, err := m.volunteerService.GetProfile(c.Request.Context(), callerID)
			if err == nil && profile != nil {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, handler.NewErrorResponse("please sign up as a volunteer to view tasks"))
		c.Abort()
	}
}

func (m *AuthMiddleware) resolveClaims(c *gin.Context) (*model.TokenClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// CallerID returns the authenticated caller's id, or uuid.Nil for anonymous
// requests.
func CallerID(c *gin.Context) uuid.UUID {
	raw := c.GetString(ContextUserID)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
