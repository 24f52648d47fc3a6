package middleware

import (
	"net/http"
	"strings"

	"github.com/Fresh-Industries/pantrypal/internal/handler/httperr"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contextKeyAgentRunID = "agent_run_id"
	contextKeyDeviceID   = "device_id"
)

type AuthMiddleware struct {
	jwt *jwt.Service
}

func NewAuthMiddleware(jwtSvc *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

// RequireSession validates the agent session token and binds its run to
// the request context.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.parse(c)
		if err != nil {
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "UNAUTHORIZED", "invalid or expired session token")
			return
		}
		c.Set(contextKeyAgentRunID, claims.AgentRunID)
		c.Set(contextKeyDeviceID, claims.DeviceID)
		c.Next()
	}
}

// OptionalSession binds session claims when a token is present but lets
// anonymous requests through. Agent harnesses often skip sessions.
func (m *AuthMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := m.parse(c); err == nil {
			c.Set(contextKeyAgentRunID, claims.AgentRunID)
			c.Set(contextKeyDeviceID, claims.DeviceID)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) parse(c *gin.Context) (*jwt.Claims, error) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, jwt.ErrInvalidToken
	}
	return m.jwt.ValidateToken(token)
}

func GetAgentRunID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(contextKeyAgentRunID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
