package main

import (
	"context"
	"log"

	"payflow/internal/config"
	"payflow/internal/database"
	"payflow/internal/handlers"
	"payflow/internal/metrics"
	"payflow/internal/rabbitmq"
	"payflow/internal/repo"
	"payflow/internal/service"
)

func main() {
	ctx := context.Background()

	dbConfig, err := config.NewDBConfig()
	if err != nil {
		log.Fatalf("failed to load db config: %v", err)
	}

	apiConfig, err := config.NewAPIConfig()
	if err != nil {
		log.Fatalf("failed to load api config: %v", err)
	}

	mqConfig, err := config.NewMQConfig()
	if err != nil {
		log.Fatalf("failed to load mq config: %v", err)
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	mqClient, err := rabbitmq.NewClient(mqConfig)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer mqClient.Close()

	paymentRepo := repo.NewPaymentRepo(db)
	svc := service.NewPaymentService(paymentRepo, mqClient, apiConfig.Currencies)
	handler := handlers.NewPaymentHandler(svc, metrics.New())
	router := handlers.NewRouter(handler)

	log.Printf("payment api listening on %s", apiConfig.Addr)
	log.Fatal(router.Run(apiConfig.Addr))
}
