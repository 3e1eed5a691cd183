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

	"catalog-service/config"
	"catalog-service/internal/api"
	"catalog-service/internal/broker"
	"catalog-service/internal/cart"
	"catalog-service/internal/catalog"
	"catalog-service/internal/livefeed"
	"catalog-service/internal/notify"
	"catalog-service/internal/redisclient"
	"catalog-service/internal/service"
	"catalog-service/internal/store"
	"catalog-service/internal/util"
	"catalog-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting catalog service")

	tp, err := util.InitTracer("catalog-service", cfg.Observ.JaegerEndpoint)
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

	db, err := store.NewStore(cfg.Database.URL, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	carts, err := cart.NewBoltStorage(cfg.Cart.Path)
	if err != nil {
		log.Fatalf("Failed to open cart storage: %v", err)
	}
	defer carts.Close()
	log.Println("Cart storage opened")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOutbound)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	sink := notify.NewKafkaSink(producer)

	catalogStore := catalog.NewStore(cfg.Business.MinProductID)

	feedCtx, feedCancel := context.WithCancel(context.Background())
	defer feedCancel()

	feed := livefeed.New(db, redisClient)
	subscription, err := feed.Subscribe(feedCtx, catalogStore.ApplySnapshot)
	if err != nil {
		log.Fatalf("Failed to subscribe to catalog feed: %v", err)
	}
	defer subscription.Unsubscribe()

	go func() {
		if err := feed.Run(feedCtx); err != nil && err != context.Canceled {
			log.Printf("Live feed error: %v", err)
		}
	}()

	adminService := service.NewAdminService(db, catalogStore, redisClient)
	checkoutService := service.NewCheckoutService(sink, db)

	deliveryConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOutbound, cfg.Kafka.ConsumerGroup)
	deliveryWorker := worker.NewDeliveryWorker(deliveryConsumer)
	go func() {
		if err := deliveryWorker.Start(feedCtx); err != nil {
			log.Printf("Delivery worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(catalogStore, adminService, checkoutService, carts, db, cfg.Business.NewArrivalsLimit)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	feedCancel()
	deliveryWorker.Stop()

	log.Println("Server exited")
}
