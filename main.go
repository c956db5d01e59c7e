package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/config"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/clock"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/consumer"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/handler"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/middleware"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository/memory"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/Eursukkul/booking-microservice/ticketing-service/pkg/database"
	"github.com/Eursukkul/booking-microservice/ticketing-service/pkg/rabbitmq"
	"github.com/Eursukkul/booking-microservice/ticketing-service/pkg/redislock"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos := openStore(cfg)
	clk := clock.System{}

	// Publisher and Locker stay nil interfaces when their backends are not configured.
	var publisher service.Publisher
	if cfg.RabbitURL != "" {
		mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect publisher to RabbitMQ: %v", err)
		}
		defer mqPublisher.Close()
		publisher = mqPublisher
	}

	var locker service.Locker
	if cfg.RedisURL != "" {
		rdb, err := redislock.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		locker = redislock.New(rdb, "")
	}

	// Services
	policy := service.NewHoldPolicy(cfg.HoldTTL)
	inventorySvc := service.NewInventoryService(repos, policy, clk)
	catalogSvc := service.NewCatalogService(repos, clk)
	reservationSvc := service.NewReservationService(repos, inventorySvc, publisher, clk)
	paymentSvc := service.NewPaymentService(repos, inventorySvc, publisher, clk)
	clientSvc := service.NewClientService(repos)
	scanSvc := service.NewScanService(repos, clk)
	sweeper := service.NewSweeper(inventorySvc, clk, cfg.SweepInterval, locker, publisher)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "ticketing-service"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewCatalogHandler(catalogSvc, inventorySvc).RegisterRoutes(e)
	handler.NewReservationHandler(reservationSvc).RegisterRoutes(e)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(e)
	handler.NewClientHandler(clientSvc).RegisterRoutes(e)
	handler.NewScanHandler(scanSvc).RegisterRoutes(e)

	// Catalog sync from the event service
	var msgs <-chan amqp.Delivery
	if cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect consumer to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err = mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Ticketing Service starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	if msgs != nil {
		eventConsumer := consumer.NewEventConsumer(catalogSvc)
		g.Go(func() error {
			return eventConsumer.Run(gctx, msgs)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Ticketing Service stopped: %v", err)
		os.Exit(1)
	}
	log.Println("Ticketing Service stopped")
}

func openStore(cfg *config.Config) *repository.Set {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("[Store] using in-memory repositories, data is lost on restart")
		repos, _ := memory.NewSet()
		return repos
	case config.StorePostgres:
		// NewPostgresDB also migrates the schema.
		db := database.NewPostgresDB(cfg.DSN(), database.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		return repository.NewGormSet(db)
	default:
		log.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
		return nil
	}
}
