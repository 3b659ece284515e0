package main

import (
	"context"
	"time"

	"tollgate/internal/collaborator"
	appconfig "tollgate/internal/config"
	"tollgate/internal/gateway"
	"tollgate/internal/handlers"
	"tollgate/internal/payment"
	"tollgate/internal/pricing"
	"tollgate/internal/ratelimit"
	"tollgate/pkg/config"
	"tollgate/pkg/logging"
	"tollgate/pkg/middleware"
	"tollgate/pkg/monitoring"
	"tollgate/pkg/server"
	"tollgate/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("harbormaster")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Harbormaster (Payment Gateway)")

	cfg, err := appconfig.Load()
	if err != nil {
		logger.WithError(err).Fatal("Configuration load failed")
	}

	table, err := pricing.NewTable(cfg.Endpoints)
	if err != nil {
		logger.WithError(err).Fatal("Invalid endpoint price table")
	}

	validator := payment.NewValidator(cfg.Network, cfg.PaymentToken, cfg.PayTo)
	if validator.PayTo() == "" {
		logger.Warn("No pay-to address configured, recipient check disabled")
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("harbormaster", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("harbormaster", version.Version, version.GitCommit)

	healthChecker.AddCheck("queries", monitoring.DirectoryHealthCheck("queries", cfg.CollaboratorDir))
	if cfg.CollaboratorHealthURL != "" {
		healthChecker.AddCheck("collaborator", monitoring.HTTPServiceHealthCheck("collaborator", cfg.CollaboratorHealthURL))
	}

	// Rate limiter with background sweep
	limiter := ratelimit.NewLimiter(cfg.RateLimit)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go limiter.Run(ctx)

	// Collaborator: script-backed, behind a circuit breaker unless disabled
	var runner collaborator.Runner = collaborator.NewScriptRunner(cfg.CollaboratorDir)
	if cfg.CollaboratorBreaker {
		runner = collaborator.NewBreakerRunner(runner, logger)
	}

	gw := gateway.New(table, validator, limiter, logger)
	gw.SetMetrics(&gateway.Metrics{
		Validations:    metricsCollector.NewCounter("payment_validations_total", "Payment gate outcomes by endpoint", []string{"endpoint", "outcome"}),
		RateLimited:    metricsCollector.NewCounter("rate_limited_total", "Rate-limited requests by path", []string{"path"}),
		TrackedClients: metricsCollector.NewGauge("rate_limit_tracked_clients", "Client windows currently held by the limiter", []string{}),
	})
	metrics := handlers.NewMetrics(metricsCollector)
	dataHandler := handlers.NewDataHandler(runner, cfg.CollaboratorTimeout, logger, metrics)

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "harbormaster", healthChecker, metricsCollector)
	router.Use(gw.RateLimit())
	router.Use(gw.PaymentGate())

	// Free routes
	router.GET("/", handlers.Index("harbormaster", cfg.Network))
	router.GET("/endpoints", handlers.ListEndpoints(table, validator))

	// Priced routes, each under an outer request deadline slightly past
	// the collaborator timeout so a wedged handler cannot hold the
	// connection open
	requestDeadline := middleware.TimeoutMiddleware(cfg.CollaboratorTimeout + 5*time.Second)
	for _, ep := range table.Endpoints() {
		router.GET(ep.Pattern, requestDeadline, dataHandler.Serve(ep))

		logger.WithFields(logging.Fields{
			"pattern": ep.Pattern,
			"price":   ep.Price.String(),
			"query":   ep.Query,
		}).Info("Registered priced endpoint")
	}

	logger.WithFields(logging.Fields{
		"network": cfg.Network.Name,
		"chainId": cfg.Network.ChainID,
		"token":   validator.Token(),
	}).Info("Payment gate configured")

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("harbormaster", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
