package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/modarent/rental-orders/internal/catalog"
	"github.com/modarent/rental-orders/internal/config"
	"github.com/modarent/rental-orders/internal/httpx"
	"github.com/modarent/rental-orders/internal/inventory"
	kafkax "github.com/modarent/rental-orders/internal/kafka"
	"github.com/modarent/rental-orders/internal/orders"
	"github.com/modarent/rental-orders/internal/payment"
	"github.com/modarent/rental-orders/internal/postgres"
	"github.com/modarent/rental-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		log.Fatal("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pubCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
	pubCreated.Start(ctx)
	pubConfirmed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderConfirmed, 1024, log)
	pubConfirmed.Start(ctx)
	pubReconcile := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicReconcile, 1024, log)
	pubReconcile.Start(ctx)

	// Payment gateway: constructed here, injected, never a package global.
	gateway := payment.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	svc := &orders.Service{
		Store:         &orders.PGStore{DB: db},
		Ledger:        &inventory.PGLedger{DB: db},
		Gateway:       gateway,
		Catalog:       &catalog.Repo{DB: db},
		Redis:         rdb,
		Log:           log,
		PubCreated:    pubCreated,
		PubConfirmed:  pubConfirmed,
		PubReconcile:  pubReconcile,
		GatewaySecret: cfg.RazorpayKeySecret,
		DeliveryFee:   cfg.DeliveryFee,
		Currency:      "INR",
		ServiceName:   cfg.ServiceName,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Service: svc, Log: log}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	pubCreated.Close()
	pubConfirmed.Close()
	pubReconcile.Close()
	cancel()
	pubCreated.WaitClosed()
	pubConfirmed.WaitClosed()
	pubReconcile.WaitClosed()
}
