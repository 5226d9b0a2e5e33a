package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Vinoddhakad18/go-architecture/internal/infra/security"
	"github.com/Vinoddhakad18/go-architecture/internal/usecase"
)

// AuthFailure is the uniform body returned for every authentication failure.
// Malformed, expired, blacklisted and fenced credentials are intentionally
// indistinguishable to the caller.
type AuthFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

const authFailureMessage = "Please authenticate"

func newAuthFailure(c *gin.Context) AuthFailure {
	return AuthFailure{
		Success: false,
		Message: authFailureMessage,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the Authorization header and runs the full
// verification chain: signature and expiry, blacklist, user fence. Claims
// are stored on the context for downstream handlers.
func RequireAuth(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newAuthFailure(c))
			return
		}

		claims, err := auth.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newAuthFailure(c))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set("claims", claims)
		c.Set("access_token", token)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = claims.UserID
		}

		c.Next()
	}
}

// RequireRole ensures the authenticated user carries one of the listed
// roles. Must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newAuthFailure(c))
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, AuthFailure{
			Success: false,
			Message: "insufficient permissions",
			TraceID: GetTraceID(c),
		})
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetClaims retrieves verified claims stored by RequireAuth.
func GetClaims(c *gin.Context) (*security.Claims, bool) {
	val, exists := c.Get("claims")
	if !exists {
		return nil, false
	}
	claims, ok := val.(*security.Claims)
	return claims, ok
}

// GetAuthenticatedUserID retrieves the user ID from context.
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok {
		return id, true
	}

	return "", false
}

// GetAccessToken retrieves the raw bearer token stored by RequireAuth.
func GetAccessToken(c *gin.Context) (string, bool) {
	val, exists := c.Get("access_token")
	if !exists {
		return "", false
	}
	token, ok := val.(string)
	return token, ok && token != ""
}
