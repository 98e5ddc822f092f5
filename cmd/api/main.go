package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"optica/internal/cart"
	"optica/internal/catalog"
	"optica/internal/config"
	"optica/internal/httpx"
	kafkax "optica/internal/kafka"
	"optica/internal/orders"
	"optica/internal/postgres"
	"optica/internal/redisx"
	"optica/internal/reviews"
	"optica/internal/users"
	"optica/internal/vision"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prodPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prodPlaced.Start(ctx)
	prodStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024)
	prodStatus.Start(ctx)

	secret := []byte(cfg.JWTSecret)

	usersH := &httpx.UsersHandler{Store: &users.Repo{DB: db}, Secret: secret, TokenTTL: cfg.TokenTTL}
	productsH := &httpx.ProductsHandler{Store: &catalog.Repo{DB: db}, UploadDir: cfg.UploadDir}
	reviewsH := &httpx.ReviewsHandler{Store: &reviews.Repo{DB: db}}
	cartH := &httpx.CartHandler{Store: &cart.Repo{DB: db}}
	ordersH := &httpx.OrdersHandler{
		Store:          &orders.Repo{DB: db},
		PlacedProducer: prodPlaced,
		StatusProducer: prodStatus,
		Redis:          rdb,
		Service:        cfg.ServiceName,
	}
	visionH := &httpx.VisionHandler{
		Runner: &vision.Runner{
			PythonBin:     cfg.PythonBin,
			AnalyzeScript: cfg.AnalyzeScript,
			TryOnScript:   cfg.TryOnScript,
			Timeout:       cfg.VisionTimeout,
		},
		UploadDir: cfg.UploadDir,
		Limiter:   rate.NewLimiter(rate.Limit(cfg.VisionRPS), cfg.VisionBurst),
	}

	router := httpx.NewRouter(cfg.CORSOrigins)

	// public surface
	usersH.Register(router)
	productsH.Register(router)
	reviewsH.RegisterPublic(router)
	visionH.Register(router)
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// authenticated surface
	router.Group(func(r chi.Router) {
		r.Use(httpx.Authenticate(secret))
		cartH.Register(r)
		ordersH.Register(r)
		reviewsH.Register(r)

		r.Group(func(ar chi.Router) {
			ar.Use(httpx.RequireAdmin)
			ordersH.RegisterAdmin(ar)
			productsH.RegisterAdmin(ar)
		})
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prodPlaced.Close()
	prodStatus.Close()
	cancel()
	prodPlaced.WaitClosed()
	prodStatus.WaitClosed()
}
