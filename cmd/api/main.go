package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/diamanteazul/storefront-api/internal/awsx"
	"github.com/diamanteazul/storefront-api/internal/cart"
	"github.com/diamanteazul/storefront-api/internal/catalog"
	"github.com/diamanteazul/storefront-api/internal/cep"
	"github.com/diamanteazul/storefront-api/internal/checkout"
	"github.com/diamanteazul/storefront-api/internal/handlers"
	"github.com/diamanteazul/storefront-api/internal/orders"
	"github.com/diamanteazul/storefront-api/internal/settings"
	"github.com/diamanteazul/storefront-api/internal/shipping"
	"github.com/diamanteazul/storefront-api/pkg/config"
	"github.com/diamanteazul/storefront-api/pkg/logger"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	ctx := context.Background()
	cfg := config.Load()

	logg := logger.New(logger.Options{
		Service: "storefront-api",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to open postgres: %v", err)
	}

	clients, err := awsx.NewClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	// company settings steer pricing policy; env values are the fallback for
	// a fresh install with an empty settings table
	settingsStore := settings.NewStore(db, settings.Defaults{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		WhatsApp:              cfg.WhatsAppNumber,
	})
	company, err := settingsStore.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load company settings: %v", err)
	}

	fallback := shipping.Fallback{
		SlowPrice:    cfg.FallbackSlowPrice,
		SlowDays:     cfg.FallbackSlowDays,
		ExpressPrice: cfg.FallbackExpressPrice,
		ExpressDays:  cfg.FallbackExpressDays,
	}
	resolver := shipping.NewResolver(cfg.RateQuoteURL, fallback, logg)
	cepClient := cep.NewClient("")

	catalogStore := catalog.NewStore(db)

	carts := handlers.NewCarts(func(storageKey string) *cart.Cart {
		return cart.New(cart.NewDynamoStorage(clients.DynamoDB, cfg.CartTable, storageKey), logg)
	}, catalogStore, logg)

	manager := checkout.NewManager(resolver, cepClient, checkout.Config{
		FreeShippingThreshold: company.FreeShippingThreshold,
	}, logg)

	metrics := awsx.NewMetrics(clients.CloudWatch, cfg.MetricsNS, logg)
	var publisher orders.EventPublisher
	if cfg.OrdersQueue != "" {
		publisher = awsx.NewPublisher(clients.SQS, cfg.OrdersQueue)
	}
	orderStore := orders.NewStore(clients.DynamoDB, cfg.OrdersTable)
	finalizer := orders.NewFinalizer(orderStore, publisher, metrics, company.WhatsApp, logg)

	r := setupRouter(handlers.HandlerConfig{
		Logger:    logg,
		Catalog:   catalogStore,
		Orders:    orderStore,
		Carts:     carts,
		Checkout:  manager,
		Finalizer: finalizer,
		Company:   company,
	})

	// RUN_LOCAL=true runs a plain HTTP server for development
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		logg.Info("running local server", "addr", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
