package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dukahub/storefront/internal/api"
	"github.com/dukahub/storefront/internal/cart"
	"github.com/dukahub/storefront/internal/checkout"
	"github.com/dukahub/storefront/internal/config"
	"github.com/dukahub/storefront/internal/gateway"
	"github.com/dukahub/storefront/internal/pos"
	"github.com/dukahub/storefront/internal/session"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Session state lives in redis when configured, otherwise in
	// process memory.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("Redis ping succeeded")
	}

	factory := func(sessionID string) (*gateway.Session, error) {
		var store session.Store
		if redisClient != nil {
			store = session.NewRedisStore(redisClient, sessionID)
		} else {
			store = session.NewMemoryStore()
		}

		client, err := api.New(cfg.APIBaseURL, store, api.WithTimeout(cfg.RequestTimeout))
		if err != nil {
			return nil, err
		}

		cartStore := cart.NewStore(client, store)
		return &gateway.Session{
			ID:       sessionID,
			Store:    store,
			Cart:     cartStore,
			POS:      pos.NewStore(client),
			Checkout: checkout.NewCoordinator(client, cartStore, checkout.WithPolling(cfg.PaymentPollInterval, cfg.PaymentPollAttempts)),
		}, nil
	}

	registry := gateway.NewRegistry(factory, cfg.SessionTTL)
	defer registry.Close()

	// Payment settlement callbacks arrive on kafka when brokers are
	// configured; polling covers the rest.
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if cfg.KafkaBrokers != "" {
		consumer := checkout.NewEventConsumer(registry.ApplyPaymentStatus, strings.Split(cfg.KafkaBrokers, ",")...)
		defer consumer.Close()
		go consumer.Run(consumerCtx)
		log.Printf("Payment event consumer started on %s", cfg.KafkaBrokers)
	}

	router := gateway.NewRouter(registry, cfg.RequestTimeout)
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Storefront gateway listening on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down storefront gateway...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Storefront gateway stopped")
}
