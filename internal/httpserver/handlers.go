package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shoppingcart/internal/domain"
)

type handlers struct {
	carts    cartService
	products productService
	logger   *zap.Logger
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	results := make([]productResponse, 0, len(products))
	for _, p := range products {
		results = append(results, toProductResponse(p))
	}
	c.JSON(http.StatusOK, pagedProducts{
		Limit:   len(results),
		Offset:  0,
		Count:   len(results),
		Total:   len(results),
		Results: results,
	})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

func (h *handlers) createCart(c *gin.Context) {
	view, err := h.carts.Create(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartResponse(view))
}

func (h *handlers) getCart(c *gin.Context) {
	view, err := h.carts.Get(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *handlers) deleteCart(c *gin.Context) {
	if err := h.carts.Delete(c.Request.Context(), c.Param("cartId")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("InvalidJsonInput", "invalid request body"))
		return
	}
	view, err := h.carts.AddItem(c.Request.Context(), c.Param("cartId"), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *handlers) removeItem(c *gin.Context) {
	view, err := h.carts.RemoveItem(c.Request.Context(), c.Param("cartId"), c.Param("productId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *handlers) clearCart(c *gin.Context) {
	view, err := h.carts.Clear(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, errorBody("ResourceNotFound", err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("ResourceNotFound", "resource not found"))
	case errors.Is(err, domain.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, errorBody("InvalidInput", err.Error()))
	case errors.Is(err, domain.ErrInvalidOperation):
		c.JSON(http.StatusConflict, errorBody("InvalidOperation", err.Error()))
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("General", "internal error"))
	}
}

func errorBody(code, message string) gin.H {
	return gin.H{
		"message": message,
		"errors":  []gin.H{{"code": code, "message": message}},
	}
}
