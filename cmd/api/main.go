package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kickslab/shoestore/internal/auth"
	"github.com/kickslab/shoestore/internal/catalog"
	"github.com/kickslab/shoestore/internal/config"
	"github.com/kickslab/shoestore/internal/httpx"
	"github.com/kickslab/shoestore/internal/inventory"
	kafkax "github.com/kickslab/shoestore/internal/kafka"
	"github.com/kickslab/shoestore/internal/orders"
	"github.com/kickslab/shoestore/internal/postgres"
	"github.com/kickslab/shoestore/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	pStatus.Start(ctx)

	// Services & handlers
	svc := &orders.Service{
		Store:   &orders.Repo{DB: db},
		Catalog: &catalog.Repo{DB: db},
		Ledger:  &inventory.PG{DB: db},
	}
	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Service:        svc,
		Auth:           auth.HeaderResolver{},
		PlacedProducer: pPlaced,
		StatusProducer: pStatus,
		Redis:          rdb,
		ServiceName:    cfg.ServiceName,
	}
	oh.Register(router)
	ch := &httpx.CatalogHandler{Repo: &catalog.Repo{DB: db}}
	ch.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close() // close inbox -> flush & close writer
	pStatus.Close()
	cancel() // stop producer loops
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
}
