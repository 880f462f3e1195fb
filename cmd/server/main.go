package main // Entry point package

import (
	"context"   // root context cancelled on shutdown
	"errors"    // errors matches http.ErrServerClosed
	"log"       // Logging library
	"net/http"  // http.ErrServerClosed
	"os"        // os.Interrupt
	"os/signal" // signal.NotifyContext
	"syscall"   // SIGTERM from the container runtime
	"time"      // shutdown grace period

	"github.com/joho/godotenv"                      // .env loader for local runs
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // request logger and panic recovery

	"github.com/iliyamo/tour-ops-dashboard/internal/config"     // Internal config loader
	"github.com/iliyamo/tour-ops-dashboard/internal/database"   // MySQL connection pool
	"github.com/iliyamo/tour-ops-dashboard/internal/debounce"   // collapses bursts of change events
	"github.com/iliyamo/tour-ops-dashboard/internal/handler"    // HTTP handlers
	"github.com/iliyamo/tour-ops-dashboard/internal/invoicing"  // partner invoicing client
	"github.com/iliyamo/tour-ops-dashboard/internal/middleware" // cache, rate limit, auth
	"github.com/iliyamo/tour-ops-dashboard/internal/queue"      // change feed consumer
	"github.com/iliyamo/tour-ops-dashboard/internal/recap"      // recap aggregation service
	"github.com/iliyamo/tour-ops-dashboard/internal/repository" // data access
	"github.com/iliyamo/tour-ops-dashboard/internal/router"     // Internal router setup
	publisher "github.com/iliyamo/tour-ops-dashboard/internal/service"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine outside local development

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb == nil {
		log.Printf("redis unavailable: recap cache and invoicing rate limit disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	policies, err := recap.LoadPolicies(cfg.CategoryPolicyFile)
	if err != nil {
		log.Fatalf("participant policies: %v", err)
	}

	invalidate := func(ctx context.Context) (int, error) {
		return middleware.InvalidatePrefix(ctx, rdb, cacheCfg.Prefix)
	}
	notifier := &publisher.Notifier{
		Publisher:  publisher.NewPublisher(cfg.AMQPURL),
		Invalidate: invalidate,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Writes made through other instances reach us through the change feed.
	// A burst of edits drops the cache once, after the feed goes quiet.
	deb := debounce.New(cfg.RecapDebounce, func() {
		ictx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n, err := invalidate(ictx)
		if err != nil {
			log.Printf("recap-cache: invalidate failed: %v", err)
			return
		}
		log.Printf("recap-cache: dropped %d cached responses", n)
	})
	defer deb.Stop()
	go func() {
		err := queue.StartRecapConsumer(ctx, cfg.AMQPURL, func(ev queue.RecapChanged) {
			deb.Trigger()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("recap-consumer: stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAPI(e, router.Handlers{
		Auth:        handler.NewAuthHandler(repository.NewUserRepo(db), cfg.JWTSecret, cfg.AccessTTLMin),
		Recap:       handler.NewRecapHandler(recap.NewService(repository.NewRecapRepo(db), policies)),
		Assignments: handler.NewAssignmentHandler(repository.NewAssignmentRepo(db), notifier),
		Mappings:    handler.NewMappingHandler(repository.NewMappingRepo(db), notifier),
		Webhooks:    handler.NewWebhookHandler(repository.NewWebhookRepo(db)),
		Invoicing:   handler.NewInvoicingHandler(invoicing.NewClient(cfg.InvoicingBaseURL, cfg.InvoicingAPIKey)),
	}, router.Middlewares{
		RecapCache:     middleware.NewRedisCache(cacheCfg, rdb),
		InvoicingLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
