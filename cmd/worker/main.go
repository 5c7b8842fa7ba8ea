package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"payflow/internal/config"
	"payflow/internal/database"
	"payflow/internal/infrastructure/settlement"
	"payflow/internal/metrics"
	"payflow/internal/rabbitmq"
	"payflow/internal/repo"
	"payflow/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConfig, err := config.NewDBConfig()
	if err != nil {
		log.Fatalf("failed to load db config: %v", err)
	}

	mqConfig, err := config.NewMQConfig()
	if err != nil {
		log.Fatalf("failed to load mq config: %v", err)
	}

	settlementConfig, err := config.NewSettlementConfig()
	if err != nil {
		log.Fatalf("failed to load settlement config: %v", err)
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	mqClient, err := rabbitmq.NewClient(mqConfig)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer mqClient.Close()

	paymentRepo := repo.NewPaymentRepo(db)
	provider := settlement.NewMockProvider()
	counters := metrics.New()

	settler := worker.NewSettlementWorker(paymentRepo, provider, counters, settlementConfig)
	reconciler := worker.NewReconciliationWorker(paymentRepo, mqClient, counters, settlementConfig)
	go reconciler.Run(ctx)

	if err := mqClient.ConsumeSettlementTasks(ctx, mqConfig.WorkerCount, settler.Handle); err != nil {
		log.Fatalf("consumer error: %v", err)
	}

	log.Printf("worker stopped; totals: %v", counters.Snapshot())
}
