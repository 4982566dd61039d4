package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/diamanteazul/storefront-api/internal/catalog"
	"github.com/diamanteazul/storefront-api/internal/validation"
)

// cartKeyHeader selects which persisted cart a request operates on.
const cartKeyHeader = "X-Cart-Key"

// RegisterRoutes wires the storefront API onto the router.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	v := validation.New()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// storefront branding and contact data for header/footer rendering
	r.GET("/company", func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Company)
	})

	registerCatalogRoutes(r, cfg)
	registerCartRoutes(r, cfg, v)
	registerCheckoutRoutes(r, cfg, v)
	registerAdminRoutes(r, cfg, v)
}

func registerCatalogRoutes(r *gin.Engine, cfg HandlerConfig) {
	r.GET("/catalog/products", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		products, err := cfg.Catalog.ListActive(c.Request.Context(), page)
		if err != nil {
			serverError(c, cfg, "list products", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products, "page": page})
	})

	r.GET("/catalog/products/:slug", func(c *gin.Context) {
		p, err := cfg.Catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		if err != nil {
			serverError(c, cfg, "get product", err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	r.GET("/catalog/promotions", func(c *gin.Context) {
		products, err := cfg.Catalog.ListPromotions(c.Request.Context())
		if err != nil {
			serverError(c, cfg, "list promotions", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	})

	r.GET("/catalog/featured", func(c *gin.Context) {
		products, err := cfg.Catalog.ListFeatured(c.Request.Context())
		if err != nil {
			serverError(c, cfg, "list featured", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	})

	r.GET("/catalog/search", func(c *gin.Context) {
		term := c.Query("q")
		if term == "" {
			c.JSON(http.StatusOK, gin.H{"products": []catalog.Product{}})
			return
		}
		products, err := cfg.Catalog.SearchByName(c.Request.Context(), term)
		if err != nil {
			serverError(c, cfg, "search products", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	})

	r.GET("/catalog/categories", func(c *gin.Context) {
		cats, err := cfg.Catalog.ListCategories(c.Request.Context())
		if err != nil {
			serverError(c, cfg, "list categories", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": cats})
	})

	// category page: the category header plus one page of its products
	r.GET("/catalog/categories/:slug/products", func(c *gin.Context) {
		cat, err := cfg.Catalog.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
			return
		}
		if err != nil {
			serverError(c, cfg, "get category", err)
			return
		}
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		products, err := cfg.Catalog.ListByCategory(c.Request.Context(), cat.ID, page)
		if err != nil {
			serverError(c, cfg, "list category products", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": cat, "products": products, "page": page})
	})
}

func serverError(c *gin.Context, cfg HandlerConfig, op string, err error) {
	cfg.Logger.Error(op+" failed", "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}
