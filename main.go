package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/DeWolfRobin/tf2autobot/internal/api"
	"github.com/DeWolfRobin/tf2autobot/internal/config"
	"github.com/DeWolfRobin/tf2autobot/internal/database"
	"github.com/DeWolfRobin/tf2autobot/internal/logging"
	"github.com/DeWolfRobin/tf2autobot/internal/metrics"
	"github.com/DeWolfRobin/tf2autobot/internal/notify"
	"github.com/DeWolfRobin/tf2autobot/internal/pricer"
	"github.com/DeWolfRobin/tf2autobot/internal/pricer/stream"
	priceService "github.com/DeWolfRobin/tf2autobot/internal/services/price"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Environment, cfg.LogLevel, os.Stderr)
	if envErr != nil {
		logger.Debug("No .env file found")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pricerMetrics := metrics.NewPricer(reg)

	// Initialize services
	userAgent := pricer.UserAgent(cfg.BotVersion)
	client := pricer.NewClient(pricer.Config{
		URL:        cfg.PricerURL,
		APIToken:   cfg.PricerAPIToken,
		UserAgent:  userAgent,
		RetryCount: cfg.PricerRetries,
		Observer:   pricerMetrics,
		Logger:     logger,
	})

	prices := priceService.NewPriceService(db, client, logger)
	prices.SetObserver(pricerMetrics)

	if cfg.NATSURL != "" {
		publisher, err := notify.Connect(cfg.NATSURL, notify.DefaultSubject, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unavailable, price updates will not be published")
		} else {
			prices.SetPublisher(publisher)
			defer publisher.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		syncCtx, cancel := context.WithTimeout(ctx, 2*pricer.Timeout)
		defer cancel()
		if _, err := prices.SyncPricelist(syncCtx); err != nil {
			logger.WithError(err).Error("Initial pricelist sync failed")
		}
	}()

	if err := prices.Start(cfg.SyncSchedule); err != nil {
		logger.Fatalf("Failed to schedule pricelist sync: %v", err)
	}
	defer prices.Stop()

	if cfg.EnablePriceStream {
		listener := stream.NewListener(stream.Config{
			URL:       cfg.PricerWSURL,
			APIToken:  cfg.PricerAPIToken,
			UserAgent: userAgent,
			Logger:    logger,
		}, prices.HandlePriceEvent)
		listener.OnSale(func(ev pricer.SaleMessageEvent) {
			logger.WithFields(logrus.Fields{
				"sale":      ev.Data.ID,
				"automatic": ev.Data.Automatic,
				"intent":    ev.Data.Intent,
			}).Debug("Sale reported by price stream")
		})
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("Price stream stopped")
			}
		}()
	}

	// Initialize Gin router
	router := api.NewRouter(api.Options{
		Store:     prices,
		Pricer:    client,
		Gatherer:  reg,
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
	})
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set, the API is unauthenticated")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()
	logger.WithField("port", cfg.Port).Info("Server started")

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
