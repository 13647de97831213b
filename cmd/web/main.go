package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"finitefield.org/collectibles-web/internal/catalog"
	"finitefield.org/collectibles-web/internal/content"
	"finitefield.org/collectibles-web/internal/format"
	"finitefield.org/collectibles-web/internal/platform/config"
	"finitefield.org/collectibles-web/internal/platform/observability"
	"finitefield.org/collectibles-web/internal/storefront"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCtx := context.Background()

	cfg, err := config.Load(rootCtx)
	if err != nil {
		// Logger config is part of cfg; fall back to a production logger for this one message.
		zap.Must(zap.NewProduction()).Fatal("load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	formatter, err := format.New(cfg.Site.Locale, cfg.Site.Currency)
	if err != nil {
		logger.Fatal("site formatter", zap.Error(err))
	}

	svc, closeCache := buildCatalog(rootCtx, cfg, logger)
	defer closeCache()

	srv := storefront.New(storefront.Config{
		Address:      net.JoinHostPort("", cfg.Server.Port),
		SiteName:     cfg.Site.Name,
		Environment:  cfg.Logging.Environment,
		Catalog:      svc,
		Content:      content.NewEmbeddedStore(),
		Formatter:    formatter,
		Logger:       logger,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cached, ok := svc.(*catalog.CachedLookups); ok {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go invalidateOnSignal(ctx, hup, cached, logger)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("storefront listening",
		zap.String("addr", srv.Addr),
		zap.String("environment", cfg.Logging.Environment),
		zap.Bool("static_catalog", cfg.Catalog.BaseURL == ""),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}

// buildCatalog selects the REST client or the static catalog and wraps it with the lookup
// cache. The returned func releases the cache connection.
func buildCatalog(ctx context.Context, cfg config.Config, logger *zap.Logger) (catalog.Service, func()) {
	var next catalog.Service
	if cfg.Catalog.BaseURL == "" {
		logger.Warn("CATALOG_API_BASE_URL not set; serving the static sample catalog")
		next = catalog.NewStaticService()
	} else {
		client, err := catalog.NewClient(cfg.Catalog.BaseURL,
			catalog.WithTimeout(cfg.Catalog.Timeout),
			catalog.WithLookupLimit(cfg.Catalog.LookupLimit),
		)
		if err != nil {
			logger.Fatal("catalog client", zap.Error(err))
		}
		next = client
	}

	if cfg.Cache.LookupTTL == 0 {
		return next, func() {}
	}

	if cfg.Cache.RedisAddr == "" {
		return catalog.NewCachedLookups(next, catalog.NewMemoryStore(), cfg.Cache.LookupTTL), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable; using in-memory lookup cache", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return catalog.NewCachedLookups(next, catalog.NewMemoryStore(), cfg.Cache.LookupTTL), func() {}
	}
	logger.Info("lookup cache backed by redis", zap.String("addr", cfg.Cache.RedisAddr))
	return catalog.NewCachedLookups(next, catalog.NewRedisStore(rdb), cfg.Cache.LookupTTL), func() { _ = rdb.Close() }
}

// invalidateOnSignal drops the cached category and brand lookups each time sig fires
// (SIGHUP in production).
func invalidateOnSignal(ctx context.Context, sig <-chan os.Signal, cached *catalog.CachedLookups, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			if err := cached.Invalidate(ctx); err != nil {
				logger.Warn("lookup cache invalidation failed", zap.Error(err))
				continue
			}
			logger.Info("lookup cache invalidated")
		}
	}
}
