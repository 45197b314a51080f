// Package config loads gateway configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all gateway configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// PublicURL is the externally reachable base URL of this gateway,
	// used in payment-requirements resource fields and the agent card.
	PublicURL string

	// GatewayPayTo is the wallet address that receives settled payments
	// on every enabled network.
	GatewayPayTo string

	// BackendServiceURL is the upstream service the screenshot executor
	// calls out to.
	BackendServiceURL string
	// BackendServiceKey authenticates calls to BackendServiceURL.
	BackendServiceKey string

	// AIProviderAPIKey authenticates the ai-analysis executor's upstream
	// call. Absence degrades gracefully per spec error-handling policy.
	AIProviderAPIKey string

	// StatsAPIKey gates the detailed /stats view. Empty disables the check
	// and the detailed view is always public.
	StatsAPIKey string

	// SessionJWTSecret signs optional session-auth bearer tokens.
	SessionJWTSecret []byte

	// FacilitatorMode selects the facilitator backend: "inprocess" (default,
	// test-mode id synthesis) or "local-evm" (real EIP-3009 verification and
	// settlement).
	FacilitatorMode string
	// GatewayPrivateKey is the hex-encoded relayer key used by the
	// local-evm facilitator to pay gas. Required only when
	// FacilitatorMode == "local-evm".
	GatewayPrivateKey string
	// SettlementRPCURL is the JSON-RPC endpoint the local-evm facilitator
	// submits settlement transactions to.
	SettlementRPCURL string

	// SnapshotPath is the on-disk location of the persisted snapshot file.
	SnapshotPath string
	// SnapshotInterval is how often the snapshot persister runs on a timer.
	SnapshotInterval time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first if present (dev convenience); it never
// overrides variables already set in the real environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // no-op if .env absent

	cfg := &Config{
		Port:              getEnvInt("PORT", 4002),
		PublicURL:         getEnv("PUBLIC_URL", "http://localhost:4002"),
		GatewayPayTo:      getEnv("GATEWAY_PAY_TO", ""),
		BackendServiceURL: getEnv("BACKEND_SERVICE_URL", ""),
		BackendServiceKey: getEnv("BACKEND_SERVICE_KEY", ""),
		AIProviderAPIKey:  getEnv("AI_PROVIDER_API_KEY", ""),
		StatsAPIKey:       getEnv("STATS_API_KEY", ""),
		FacilitatorMode:   getEnv("FACILITATOR_MODE", "inprocess"),
		GatewayPrivateKey: getEnv("GATEWAY_PRIVATE_KEY", ""),
		SettlementRPCURL:  getEnv("SETTLEMENT_RPC_URL", "https://sepolia.base.org"),
		SnapshotPath:      getEnv("SNAPSHOT_PATH", "gateway-snapshot.json"),
		SnapshotInterval:  time.Duration(getEnvInt("SNAPSHOT_INTERVAL_SECONDS", 60)) * time.Second,
	}

	secretHex := getEnv("SESSION_JWT_SECRET", "")
	if secretHex == "" {
		cfg.SessionJWTSecret = []byte("dev-only-insecure-session-secret")
	} else {
		cfg.SessionJWTSecret = []byte(secretHex)
	}

	if cfg.GatewayPayTo == "" {
		return nil, fmt.Errorf("GATEWAY_PAY_TO env var is required")
	}

	if cfg.FacilitatorMode == "local-evm" {
		if cfg.GatewayPrivateKey == "" {
			return nil, fmt.Errorf("GATEWAY_PRIVATE_KEY is required when FACILITATOR_MODE=local-evm")
		}
	} else if cfg.FacilitatorMode != "inprocess" {
		return nil, fmt.Errorf("unknown FACILITATOR_MODE %q (want inprocess or local-evm)", cfg.FacilitatorMode)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
