package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/bot"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/command"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/intent"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/invoice"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/resolver"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/session"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	var sqlDB *sql.DB
	if cfg.NeedsDatabase() {
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DBDSN, log); err != nil {
				log.WithError(err).Fatal("db migrate")
			}
		}
		sqlDB = db.MustOpen(cfg.DBDSN)
		defer sqlDB.Close()
	}

	// --- catalog ---
	categories, err := loadCatalog(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("load catalog, continuing with an empty catalog")
		categories = nil
	}
	index := catalog.NewIndex(categories)
	log.WithFields(logrus.Fields{"source": cfg.CatalogSource, "categories": index.Len()}).Info("catalog loaded")

	responses := intent.NewResponses(intent.DefaultTable())
	if cfg.ResponsesPath != "" {
		loaded, err := intent.LoadResponses(cfg.ResponsesPath)
		if err != nil {
			log.WithError(err).Warn("responses file unusable, using built-in replies")
		} else {
			responses = loaded
		}
	}

	// --- stores ---
	carts := cart.NewManager(cartRepository(cfg, sqlDB), log)
	sessions := sessionStore(ctx, cfg, log)

	// --- checkout ---
	if err := os.MkdirAll(cfg.InvoiceDir, 0o755); err != nil {
		log.WithError(err).Warn("invoice dir unavailable, documents disabled")
		cfg.InvoiceDir = ""
	}
	invoices := invoice.NewGenerator(cfg.InvoiceDir, log)
	if cfg.InvoiceDir != "" {
		go invoices.RunCleanup(ctx, time.Hour, cfg.InvoiceMaxAge)
	}

	var flowOpts []checkout.Option
	if cfg.RabbitURL != "" {
		conn := events.MustDial(cfg.RabbitURL)
		defer conn.Close()

		var seq events.SequenceRepository = events.NewMemorySequence()
		if sqlDB != nil {
			seq = events.NewSequenceRepository(sqlDB)
		}
		publisher, err := events.NewPublisher(conn, seq, events.PublisherOptions{})
		if err != nil {
			log.WithError(err).Fatal("create publisher")
		}
		defer publisher.Close()
		flowOpts = append(flowOpts, checkout.WithEvents(publisher))
	}
	flow := checkout.NewFlow(carts, invoices, log, flowOpts...)

	// --- bot ---
	res := resolver.New(index)
	orchestrator := bot.New(bot.Deps{
		Index:     index,
		Resolver:  res,
		Sessions:  sessions,
		Carts:     carts,
		Router:    command.NewRouter(index, res, carts, flow, log),
		Checkout:  flow,
		Responses: responses,
		Images:    catalog.NewImageStore(cfg.ImagesDir),
		Log:       log,
	})

	// --- HTTP ---
	h := httpapi.NewHandler(orchestrator, carts, res)
	r := httpapi.NewRouter(h, log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.WithField("addr", httpServer.Addr).Info("http listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutdown signal")
	case err := <-errCh:
		log.WithError(err).Error("http server failed")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	log.Info("shutdown complete")
}

func loadCatalog(ctx context.Context, cfg config.Config) ([]catalog.Category, error) {
	if cfg.CatalogSource != config.SourcePostgres {
		return catalog.LoadFile(cfg.CatalogPath)
	}

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	return catalog.NewRepository(pool).LoadCatalog(ctx)
}

func cartRepository(cfg config.Config, sqlDB *sql.DB) cart.Repository {
	if cfg.CartStore == config.SourcePostgres && sqlDB != nil {
		return cart.NewPostgresRepository(sqlDB)
	}
	return cart.NewMemoryRepository()
}

func sessionStore(ctx context.Context, cfg config.Config, log logrus.FieldLogger) session.Store {
	if cfg.SessionStore == config.StoreRedis {
		client, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("connect redis")
		}
		return session.NewRedisStore(client, cfg.SessionIdleTTL)
	}

	store := session.NewMemoryStore(session.WithIdleTTL(cfg.SessionIdleTTL))
	if cfg.SessionIdleTTL > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SessionIdleTTL)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := store.Sweep(); n > 0 {
						log.WithField("expired", n).Debug("idle sessions swept")
					}
				}
			}
		}()
	}
	return store
}
