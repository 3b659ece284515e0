// Package config loads the gateway's runtime configuration from the
// environment and an optional pricing file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tollgate/internal/payment"
	"tollgate/internal/pricing"
	"tollgate/internal/ratelimit"
	"tollgate/pkg/config"
)

// Config is the gateway's startup configuration. Loaded once; immutable
// afterwards.
type Config struct {
	Port    string
	Network payment.NetworkConfig

	// PaymentToken overrides the network's canonical token contract when
	// set. PayTo is the required payment recipient; empty disables the
	// recipient check.
	PaymentToken string
	PayTo        string

	RateLimit ratelimit.Config

	CollaboratorDir       string
	CollaboratorTimeout   time.Duration
	CollaboratorBreaker   bool
	CollaboratorHealthURL string

	Endpoints []pricing.EndpointSpec
}

// Load reads configuration from the environment. A pricing file named by
// PRICING_FILE replaces the built-in endpoint table. CHAIN_ID selects the
// network by chain id and wins over NETWORK when both are set; in release
// mode PAY_TO is mandatory since open/dev mode accepts any recipient.
func Load() (*Config, error) {
	networkName := config.GetEnv("NETWORK", "pharos-devnet")
	network, ok := payment.ByName(networkName)
	if !ok {
		return nil, fmt.Errorf("unknown network %q", networkName)
	}

	if chainID := config.GetEnvInt("CHAIN_ID", 0); chainID != 0 {
		network, ok = payment.ByChainID(int64(chainID))
		if !ok {
			return nil, fmt.Errorf("unknown chain id %d", chainID)
		}
	}

	cfg := &Config{
		Port:         config.GetEnv("PORT", "4021"),
		Network:      network,
		PaymentToken: config.GetEnv("PAYMENT_TOKEN", ""),
		PayTo:        config.GetEnv("PAY_TO", ""),
		RateLimit: ratelimit.Config{
			Max:           config.GetEnvInt("RATE_LIMIT_MAX", 100),
			Window:        config.GetEnvDuration("RATE_LIMIT_WINDOW", 60*time.Second),
			SweepInterval: config.GetEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		},
		CollaboratorDir:       config.GetEnv("COLLABORATOR_DIR", "./queries"),
		CollaboratorTimeout:   config.GetEnvDuration("COLLABORATOR_TIMEOUT", 30*time.Second),
		CollaboratorBreaker:   config.GetEnvBool("COLLABORATOR_BREAKER", true),
		CollaboratorHealthURL: config.GetEnv("COLLABORATOR_HEALTH_URL", ""),
		Endpoints:             DefaultEndpoints(),
	}

	if config.GetEnv("GIN_MODE", "debug") == "release" {
		cfg.PayTo = config.RequireEnv("PAY_TO")
	}

	if pricingFile := config.GetEnv("PRICING_FILE", ""); pricingFile != "" {
		endpoints, err := loadPricingFile(pricingFile)
		if err != nil {
			return nil, err
		}
		cfg.Endpoints = endpoints
	}

	return cfg, nil
}

// DefaultEndpoints returns the built-in priced endpoint table. Prices are
// in the payment token's smallest unit.
func DefaultEndpoints() []pricing.EndpointSpec {
	return []pricing.EndpointSpec{
		{Pattern: "/yield/apy", Price: "1000", Description: "Current APY across tracked pools", Query: "yield.apy"},
		{Pattern: "/yield/pools", Price: "2000", Description: "Per-pool yield breakdown", Query: "yield.pools"},
		{Pattern: "/wallet/:address/balance", Price: "500", Description: "Token balances for a wallet", Query: "wallet.balance"},
		{Pattern: "/reports/daily", Price: "5000", Description: "Daily yield summary report", Query: "reports.daily"},
	}
}

func loadPricingFile(path string) ([]pricing.EndpointSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pricing file: %w", err)
	}

	var specs []pricing.EndpointSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing pricing file %s: %w", path, err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("pricing file %s declares no endpoints", path)
	}
	return specs, nil
}
