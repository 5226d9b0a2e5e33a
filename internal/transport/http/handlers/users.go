package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
	"github.com/Vinoddhakad18/go-architecture/internal/infra/security"
	"github.com/Vinoddhakad18/go-architecture/internal/transport/http/middleware"
	"github.com/Vinoddhakad18/go-architecture/internal/usecase"
)

// UserHandler exposes account registration and profile endpoints.
type UserHandler struct {
	users *usecase.UserService
	auth  *usecase.AuthService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService, auth *usecase.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// RegisterRoutes binds user routes. Registration is public; everything else
// requires a verified access token, and listing is admin-only.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	authMiddleware := middleware.RequireAuth(h.auth)

	r.POST("", h.register)
	r.GET("", authMiddleware, middleware.RequireRole("admin"), h.list)
	r.GET("/:id", authMiddleware, h.get)
	r.PUT("/:id", authMiddleware, h.update)
	r.DELETE("/:id", authMiddleware, h.delete)
}

func (h *UserHandler) register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var policyErr *security.PasswordValidationError
		switch {
		case errors.Is(err, usecase.ErrEmailTaken):
			c.JSON(http.StatusConflict, NewErrorResponse(c, "email already registered"))
		case errors.As(err, &policyErr):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, policyErr.Message))
		default:
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "registration failed"))
		}
		return
	}

	c.JSON(http.StatusCreated, newUserSummary(*user))
}

func (h *UserHandler) get(c *gin.Context) {
	id := c.Param("id")

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load user"))
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*user))
}

func (h *UserHandler) update(c *gin.Context) {
	id := c.Param("id")
	if !h.canAccess(c, id) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "insufficient permissions"))
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid update payload"))
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), id, req.Name)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "update failed"))
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*user))
}

func (h *UserHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if !h.canAccess(c, id) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "insufficient permissions"))
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "delete failed"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}

func (h *UserHandler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := port.UserFilter{Page: page, Limit: limit}
	users, err := h.users.ListUsers(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list users"))
		return
	}

	items := make([]UserSummary, 0, len(users))
	for _, user := range users {
		items = append(items, newUserSummary(user))
	}

	c.JSON(http.StatusOK, UserListResponse{Items: items, Page: page, Limit: limit})
}

// canAccess allows users to modify their own account and admins to modify
// anyone's.
func (h *UserHandler) canAccess(c *gin.Context, targetID string) bool {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return false
	}
	return claims.UserID == targetID || claims.Role == "admin"
}
