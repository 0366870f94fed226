// Command server runs the onboarding relay: a small HTTP service that checks
// domain availability against a registrar and provisions Slack channels for
// new clients.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"onboardly/internal/domaincheck"
	domaincheckcache "onboardly/internal/domaincheck/cache"
	domaincheckhandler "onboardly/internal/domaincheck/handler"
	domaincheckmetrics "onboardly/internal/domaincheck/metrics"
	"onboardly/internal/messaging"
	"onboardly/internal/platform/config"
	"onboardly/internal/platform/httpserver"
	"onboardly/internal/platform/logger"
	platformmetrics "onboardly/internal/platform/metrics"
	platformredis "onboardly/internal/platform/redis"
	"onboardly/internal/provision"
	provisionhandler "onboardly/internal/provision/handler"
	provisionmetrics "onboardly/internal/provision/metrics"
	"onboardly/internal/registrar"
	httptransport "onboardly/internal/transport/http"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration load failed", "error", err)
		os.Exit(1)
	}

	registrarClient := registrar.New(registrar.Config{
		BaseURL:   cfg.RegistrarBaseURL,
		APIKey:    cfg.RegistrarAPIKey,
		APISecret: cfg.RegistrarAPISecret,
		Timeout:   cfg.RegistrarTimeout,
		IPEchoURL: cfg.IPEchoURL,
	}, log)

	var cache domaincheck.CacheStore = domaincheckcache.NewMemory()
	redisClient, err := platformredis.New(context.Background(), cfg.RedisAddr)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = domaincheckcache.NewRedis(redisClient.Client)
		log.Info("availability cache backed by redis", "addr", cfg.RedisAddr)
	}

	checkService := domaincheck.New(registrarClient, cache, domaincheck.Options{
		PriceLimit: cfg.DomainPriceLimit,
		CacheTTL:   cfg.CacheTTL,
	}, log, domaincheckmetrics.New())

	slackClient := messaging.NewSlack(cfg.SlackBotToken, log)
	provisionService := provision.New(slackClient, cfg.Roster(), cfg.SlackHelpChannelID, log, provisionmetrics.New())

	router := httptransport.NewRouter(log, platformmetrics.New(), cfg.AllowedOrigin, registrarClient,
		domaincheckhandler.New(checkService, log),
		provisionhandler.New(provisionService, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("onboarding relay listening",
			"addr", cfg.Addr,
			"price_gating", cfg.PriceGatingEnabled(),
			"roster_size", len(cfg.Roster()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
