package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"serpd/api"
	"serpd/browser"
	"serpd/config"
	"serpd/engine"
	"serpd/search"
	"serpd/storage"
)

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.APIKey == "" {
		logger.Warn("API key is not set, authentication is disabled")
	}

	// =========
	// Engine rules
	// =========
	overrides := map[string]engine.Rules{}
	if cfg.EnginesFile != "" {
		overrides, err = engine.LoadRules(cfg.EnginesFile)
		if err != nil {
			logger.Fatal("failed to load engine rules", zap.Error(err))
		}
	}

	// =========
	// Result cache
	// =========
	var cache search.Cache
	if cfg.CachePath != "" {
		rc, err := storage.NewResultCache(cfg.CachePath, cfg.CacheTTL, logger)
		if err != nil {
			logger.Fatal("failed to open result cache", zap.Error(err))
		}
		defer rc.Close()
		cache = rc
	}

	// =========
	// Browser pool
	// =========
	chrome := browser.NewChrome(browser.ChromeConfig{
		Headless: cfg.Headless,
		ProxyURL: cfg.ProxyURL,
	}, logger)
	defer chrome.Close()

	pool, err := browser.NewPool(context.Background(), browser.PoolConfig{
		Size:           cfg.PoolSize,
		AcquireTimeout: cfg.AcquireTimeout,
	}, chrome.NewSession, logger)
	if err != nil {
		logger.Fatal("failed to start browser pool", zap.Error(err))
	}

	// =========
	// Engines
	// =========
	registry := search.NewRegistry(
		engine.NewDuckDuckGo(cfg.NavTimeout, overrides["duckduckgo"]),
		engine.NewBrave(cfg.NavTimeout, overrides["brave"]),
		engine.NewAsk(cfg.NavTimeout, overrides["ask"]),
		engine.NewYahoo(cfg.NavTimeout, overrides["yahoo"]),
	)

	// =========
	// Searcher
	// =========
	searcher := search.NewSearcher(registry, pool, cache, logger)

	// =========
	// HTTP
	// =========
	server := api.NewServer(api.ServerConfig{
		Port:      cfg.Port,
		APIPrefix: cfg.APIPrefix,
		APIKey:    cfg.APIKey,
	}, searcher, logger)

	errc := make(chan error, 1)
	go func() {
		errc <- server.Start()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errc:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.DrainTimeout)
	defer cancelDrain()
	if err := pool.Shutdown(drainCtx); err != nil {
		logger.Error("pool shutdown failed", zap.Error(err))
	}
}
