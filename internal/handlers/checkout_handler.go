package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/diamanteazul/storefront-api/internal/cart"
	"github.com/diamanteazul/storefront-api/internal/cep"
	"github.com/diamanteazul/storefront-api/internal/checkout"
	"github.com/diamanteazul/storefront-api/internal/validation"
)

func registerCheckoutRoutes(r *gin.Engine, cfg HandlerConfig, v *validatorv10.Validate) {
	r.POST("/checkout/sessions", func(c *gin.Context) {
		crt := cfg.Carts.Get(c.Request.Context(), c.GetHeader(cartKeyHeader))
		if len(crt.Items()) == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "empty_cart"})
			return
		}
		s := cfg.Checkout.Create(crt)
		c.JSON(http.StatusCreated, sessionView(s))
	})

	r.GET("/checkout/sessions/:id", func(c *gin.Context) {
		s, ok := getSession(c, cfg)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, sessionView(s))
	})

	r.PUT("/checkout/sessions/:id/customer", func(c *gin.Context) {
		s, ok := getSession(c, cfg)
		if !ok {
			return
		}
		var req validation.CustomerRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		s.SetCustomer(checkout.Customer{
			Name:  req.Name,
			Email: req.Email,
			CPF:   req.CPF,
			Phone: req.Phone,
		})
		c.JSON(http.StatusOK, sessionView(s))
	})

	r.PUT("/checkout/sessions/:id/address", func(c *gin.Context) {
		s, ok := getSession(c, cfg)
		if !ok {
			return
		}
		var req validation.AddressRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		s.SetAddress(checkout.Address{
			CEP:          validation.SanitizeCEP(req.CEP),
			Street:       req.Street,
			Number:       req.Number,
			Complement:   req.Complement,
			Neighborhood: req.Neighborhood,
			City:         req.City,
			State:        req.State,
			Reference:    req.Reference,
		})
		c.JSON(http.StatusOK, sessionView(s))
	})

	r.POST("/checkout/sessions/:id/address/lookup", func(c *gin.Context) {
		s, ok := getSession(c, cfg)
		if !ok {
			return
		}
		err := s.LookupAddress(c.Request.Context())
		switch {
		case errors.Is(err, cep.ErrInvalidCEP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_cep", "message": "CEP inválido"})
		case errors.Is(err, cep.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "cep_not_found", "message": "CEP não encontrado"})
		case errors.Is(err, checkout.ErrBusy):
			c.JSON(http.StatusConflict, gin.H{"error": "lookup_in_progress"})
		case err != nil:
			cfg.Logger.Warn("cep lookup failed", "err", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "cep_lookup_failed", "message": "Erro ao buscar CEP"})
		default:
			c.JSON(http.StatusOK, sessionView(s))
		}
	})

	r.GET("/checkout/sessions/:id/shipping-options", func(c *gin.Context) {
		s, ok := getSession(c, cfg)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"options": s.ShippingOptions(),
			"totals":  s.Totals(),
		})
	})

	r.PUT("/checkout/sessions/:id/shipping", func(c *gin.Context) {
		s, ok := getSession(c, cfg)
		if !ok {
			return
		}
		var req validation.SelectShippingRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if err := s.SelectShipping(req.OptionID); err != nil {
			writeGateError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionView(s))
	})

	r.POST("/checkout/sessions/:id/next", func(c *gin.Context) {
		s, ok := getSession(c, cfg)
		if !ok {
			return
		}
		if err := s.Next(c.Request.Context()); err != nil {
			writeGateError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionView(s))
	})

	r.POST("/checkout/sessions/:id/back", func(c *gin.Context) {
		s, ok := getSession(c, cfg)
		if !ok {
			return
		}
		s.Back()
		c.JSON(http.StatusOK, sessionView(s))
	})

	r.POST("/checkout/sessions/:id/finalize", func(c *gin.Context) {
		s, ok := getSession(c, cfg)
		if !ok {
			return
		}
		if s.Step() != checkout.StepSummary {
			c.JSON(http.StatusConflict, gin.H{"error": "checkout_incomplete"})
			return
		}
		if err := s.BeginFinalize(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "finalize_in_progress"})
			return
		}

		// line items come from the cart the session was created over; a cart
		// key on the finalize request is ignored
		sessionCart, ok := s.Cart().(*cart.Cart)
		if !ok {
			s.EndFinalize()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		res := cfg.Finalizer.Finalize(
			c.Request.Context(),
			sessionCart.Items(),
			s.Customer(),
			s.Address(),
			s.SelectedShipping(),
			s.Totals(),
		)

		// cart cleared and session discarded unconditionally, even when the
		// persist failed
		sessionCart.Clear(c.Request.Context())
		cfg.Checkout.Discard(s.ID)

		c.JSON(http.StatusCreated, gin.H{
			"order":       res.Order,
			"message":     res.Message,
			"handoff_url": res.HandoffURL,
		})
	})
}

func getSession(c *gin.Context, cfg HandlerConfig) (*checkout.Session, bool) {
	s, err := cfg.Checkout.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		return nil, false
	}
	return s, true
}

// writeGateError maps a validation-gate failure (a transient, user-fixable
// condition) or a busy latch onto the HTTP surface.
func writeGateError(c *gin.Context, err error) {
	var fe *checkout.FieldError
	if errors.As(err, &fe) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_failed",
			"field":   fe.Field,
			"message": fe.Message,
		})
		return
	}
	if errors.Is(err, checkout.ErrBusy) {
		c.JSON(http.StatusConflict, gin.H{"error": "operation_in_progress"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}

func sessionView(s *checkout.Session) gin.H {
	return gin.H{
		"id":       s.ID,
		"step":     s.Step(),
		"customer": s.Customer(),
		"address":  s.Address(),
		"shipping": gin.H{
			"options":  s.ShippingOptions(),
			"selected": s.SelectedShipping(),
		},
		"totals": s.Totals(),
	}
}
