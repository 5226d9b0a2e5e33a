package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vinoddhakad18/go-architecture/internal/infra/security"
	"github.com/Vinoddhakad18/go-architecture/internal/transport/http/middleware"
	"github.com/Vinoddhakad18/go-architecture/internal/usecase"
)

const bearerTokenType = "Bearer"

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	if len(loginMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		chain = append(chain, h.login)
		r.POST("/login", chain...)
	} else {
		r.POST("/login", h.login)
	}

	r.POST("/refresh-token", h.refresh)
	r.POST("/refresh-token-rotate", h.refreshRotate)
	r.POST("/verify-token", h.verifyToken)
	r.POST("/logout", middleware.RequireAuth(h.auth), h.logout)
	r.POST("/change-password", middleware.RequireAuth(h.auth), h.changePassword)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials), errors.Is(err, usecase.ErrUserInactive):
			c.JSON(http.StatusUnauthorized, NewAuthFailureResponse(c))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "login failed"))
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    bearerTokenType,
		ExpiresIn:    result.Tokens.ExpiresIn,
		User:         newUserSummary(*result.User),
	})
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid refresh payload"))
		return
	}

	access, expiresIn, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, usecase.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, NewAuthFailureResponse(c))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "refresh failed"))
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		AccessToken: access,
		TokenType:   bearerTokenType,
		ExpiresIn:   expiresIn,
	})
}

func (h *AuthHandler) refreshRotate(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid refresh payload"))
		return
	}

	tokens, err := h.auth.RefreshRotate(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, usecase.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, NewAuthFailureResponse(c))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "token rotation failed"))
		return
	}

	c.JSON(http.StatusOK, RotateResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    bearerTokenType,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	accessToken, ok := middleware.GetAccessToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewAuthFailureResponse(c))
		return
	}

	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.auth.Logout(c.Request.Context(), accessToken, req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "logout failed"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewAuthFailureResponse(c))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password change payload"))
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password confirmation does not match"))
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		var policyErr *security.PasswordValidationError
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, NewAuthFailureResponse(c))
		case errors.As(err, &policyErr):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, policyErr.Message))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "password change failed"))
		}
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

// verifyToken reports whether the supplied access token passes the full
// verification chain. It never returns an error body.
func (h *AuthHandler) verifyToken(c *gin.Context) {
	var req VerifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, VerifyTokenResponse{Valid: false})
		return
	}

	_, err := h.auth.Verify(c.Request.Context(), req.Token)
	c.JSON(http.StatusOK, VerifyTokenResponse{Valid: err == nil})
}
