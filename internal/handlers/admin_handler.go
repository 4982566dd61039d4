package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/diamanteazul/storefront-api/internal/orders"
	"github.com/diamanteazul/storefront-api/internal/validation"
)

func registerAdminRoutes(r *gin.Engine, cfg HandlerConfig, v *validatorv10.Validate) {
	r.GET("/admin/orders/:id", func(c *gin.Context) {
		order, err := cfg.Orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			serverError(c, cfg, "get order", err)
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.PATCH("/admin/orders/:id/status", func(c *gin.Context) {
		var req validation.UpdateOrderStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if !orders.CanTransition(req.Expected, req.New) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_transition",
				"message": fmt.Sprintf("transição %s -> %s não permitida", req.Expected, req.New),
			})
			return
		}

		orderID := c.Param("id")
		err := cfg.Orders.UpdateStatus(c.Request.Context(), orderID, req.Expected, req.New)
		switch {
		case errors.Is(err, orders.ErrStatusMismatch):
			c.JSON(http.StatusConflict, gin.H{"error": "status_mismatch"})
		case err != nil:
			serverError(c, cfg, "update order status", err)
		default:
			c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": req.New})
		}
	})
}
