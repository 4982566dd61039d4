package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/diamanteazul/storefront-api/internal/awsx"
	"github.com/diamanteazul/storefront-api/internal/orders"
	"github.com/diamanteazul/storefront-api/pkg/config"
	"github.com/diamanteazul/storefront-api/pkg/logger"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	logg := logger.New(logger.Options{
		Service: "storefront-worker",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	clients, err := awsx.NewClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	store := orders.NewStore(clients.DynamoDB, cfg.OrdersTable)
	metrics := awsx.NewMetrics(clients.CloudWatch, cfg.MetricsNS, logg)
	processor := NewProcessor(store, metrics, logg)

	handle := func(ctx context.Context, event events.SQSEvent) error {
		logg.Info("received sqs batch", "messages", len(event.Records))
		for _, r := range event.Records {
			if err := processor.Process(ctx, r.Body); err != nil {
				// returning the error hands the batch back to SQS for retry
				logg.Error("process order event failed", "message_id", r.MessageId, "err", err)
				return err
			}
		}
		return nil
	}

	// RUN_LOCAL=true feeds a single simulated event for local testing
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"order_id":"local-order-1","persisted":false,"order":{"order_id":"local-order-1"}}`
		}
		event := events.SQSEvent{Records: []events.SQSMessage{{Body: body}}}
		if err := handle(ctx, event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(handle)
}
