package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
	"github.com/Vinoddhakad18/go-architecture/internal/transport/http/middleware"
	"github.com/Vinoddhakad18/go-architecture/internal/usecase"
)

// ProductHandler exposes product CRUD endpoints.
type ProductHandler struct {
	products *usecase.ProductService
	auth     *usecase.AuthService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(products *usecase.ProductService, auth *usecase.AuthService) *ProductHandler {
	return &ProductHandler{products: products, auth: auth}
}

var productErrors = newErrorMapping().
	on(usecase.ErrProductNotFound, http.StatusNotFound, "product not found").
	on(usecase.ErrCodeTaken, http.StatusConflict, "product code already in use")

// RegisterRoutes binds product routes. Reads are public; writes require a
// verified access token.
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup) {
	authMiddleware := middleware.RequireAuth(h.auth)

	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.GET("/code/:code", h.getByCode)
	r.POST("", authMiddleware, h.create)
	r.PUT("/:id", authMiddleware, h.update)
	r.DELETE("/:id", authMiddleware, h.delete)
}

func (h *ProductHandler) create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), usecase.CreateProductInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	})
	if err != nil {
		productErrors.respond(c, err, http.StatusBadRequest, "product creation failed")
		return
	}

	c.JSON(http.StatusCreated, newProductResponse(*product))
}

func (h *ProductHandler) get(c *gin.Context) {
	product, err := h.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		productErrors.respond(c, err, http.StatusInternalServerError, "failed to load product")
		return
	}

	c.JSON(http.StatusOK, newProductResponse(*product))
}

func (h *ProductHandler) getByCode(c *gin.Context) {
	product, err := h.products.GetProductByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		productErrors.respond(c, err, http.StatusInternalServerError, "failed to load product")
		return
	}

	c.JSON(http.StatusOK, newProductResponse(*product))
}

func (h *ProductHandler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	sort := c.DefaultQuery("sort", "created_at")

	filter := domain.ProductFilter{Page: page, Limit: limit, Sort: sort}
	result, err := h.products.ListProducts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list products"))
		return
	}

	c.JSON(http.StatusOK, newProductListResponse(*result))
}

func (h *ProductHandler) update(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), c.Param("id"), usecase.UpdateProductInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	})
	if err != nil {
		productErrors.respond(c, err, http.StatusBadRequest, "product update failed")
		return
	}

	c.JSON(http.StatusOK, newProductResponse(*product))
}

func (h *ProductHandler) delete(c *gin.Context) {
	if err := h.products.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		productErrors.respond(c, err, http.StatusInternalServerError, "product delete failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "product deleted"})
}
