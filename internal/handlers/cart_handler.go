package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/diamanteazul/storefront-api/internal/catalog"
	"github.com/diamanteazul/storefront-api/internal/validation"
)

func registerCartRoutes(r *gin.Engine, cfg HandlerConfig, v *validatorv10.Validate) {
	r.GET("/cart", func(c *gin.Context) {
		crt := cfg.Carts.Get(c.Request.Context(), c.GetHeader(cartKeyHeader))
		c.JSON(http.StatusOK, crt.Snapshot())
	})

	r.POST("/cart/items", func(c *gin.Context) {
		var req validation.AddToCartRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		quantity := req.Quantity
		if quantity < 1 {
			quantity = 1
		}

		product, err := cfg.Catalog.GetByID(c.Request.Context(), req.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		if err != nil {
			serverError(c, cfg, "get product", err)
			return
		}

		crt := cfg.Carts.Get(c.Request.Context(), c.GetHeader(cartKeyHeader))
		crt.AddItem(c.Request.Context(), *product, quantity)
		c.JSON(http.StatusOK, crt.Snapshot())
	})

	r.PATCH("/cart/items/:productID", func(c *gin.Context) {
		var req validation.UpdateQuantityRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		crt := cfg.Carts.Get(c.Request.Context(), c.GetHeader(cartKeyHeader))
		crt.UpdateQuantity(c.Request.Context(), c.Param("productID"), req.Quantity)
		c.JSON(http.StatusOK, crt.Snapshot())
	})

	r.DELETE("/cart/items/:productID", func(c *gin.Context) {
		crt := cfg.Carts.Get(c.Request.Context(), c.GetHeader(cartKeyHeader))
		crt.RemoveItem(c.Request.Context(), c.Param("productID"))
		c.JSON(http.StatusOK, crt.Snapshot())
	})

	r.DELETE("/cart", func(c *gin.Context) {
		crt := cfg.Carts.Get(c.Request.Context(), c.GetHeader(cartKeyHeader))
		crt.Clear(c.Request.Context())
		c.JSON(http.StatusOK, crt.Snapshot())
	})
}
