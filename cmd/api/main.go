package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/paskalshop/paskal-shop/internal/auth"
	"github.com/paskalshop/paskal-shop/internal/blob"
	"github.com/paskalshop/paskal-shop/internal/config"
	"github.com/paskalshop/paskal-shop/internal/httpx"
	kafkax "github.com/paskalshop/paskal-shop/internal/kafka"
	"github.com/paskalshop/paskal-shop/internal/postgres"
	"github.com/paskalshop/paskal-shop/internal/redisx"
	"github.com/paskalshop/paskal-shop/internal/shop"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB + migrasi
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, log, 1024)
	prod.Start(ctx)

	// Wiring
	orders := &shop.OrderRepo{DB: db}
	products := &shop.ProductRepo{DB: db}
	admins := &shop.AdminRepo{DB: db}
	blobs := blob.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)

	svc := shop.NewService(log, orders, products, blobs, &kafkax.Publisher{P: prod}, cfg.ServiceName)
	authSvc := auth.NewService(log, admins, rdb)
	limiter := &httpx.Limiter{RDB: rdb, Log: log}

	router := httpx.NewRouter()
	httpx.ServeUploads(router, cfg.UploadDir)

	(&httpx.OrdersHandler{Svc: svc, Redis: rdb, Limiter: limiter, Log: log}).Register(router)
	(&httpx.ProductsHandler{Svc: svc, Log: log}).Register(router)
	(&httpx.AdminHandler{Svc: svc, Auth: authSvc, Limiter: limiter, Log: log, SecureCookie: os.Getenv("ENV") == "production"}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
