package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timber-market/config"
	"timber-market/internal/broker"
	"timber-market/internal/service"
	"timber-market/internal/storage"
	"timber-market/internal/util"
	"timber-market/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting timber market service")

	tp, err := util.InitTracer("timber-market", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	kv, err := storage.Open(storage.Options{
		Backend:       cfg.Storage.Backend,
		DatabaseURL:   cfg.Storage.DatabaseURL,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("Failed to open storage backend: %v", err)
	}
	store := storage.NewStore(kv)
	defer store.Close()
	log.Printf("Storage backend ready: %s", cfg.Storage.Backend)

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicDeals)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	settlement := service.NewSettlementService(store, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	invoiceConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicInvoices, cfg.Kafka.ConsumerGroup)
	billingWorker := worker.NewBillingWorker(invoiceConsumer, settlement)
	go func() {
		if err := billingWorker.Start(workerCtx); err != nil {
			log.Printf("Billing worker error: %v", err)
		}
	}()

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Observ.PrometheusPort),
		Handler: promhttp.Handler(),
	}
	go func() {
		log.Printf("Serving metrics on port %s", cfg.Observ.PrometheusPort)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start metrics listener: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Metrics listener forced to shutdown: %v", err)
	}

	workerCancel()
	billingWorker.Stop()

	log.Println("Service exited")
}
