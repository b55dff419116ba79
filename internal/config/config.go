package config

import (
	"fmt"
	"os"
	"strings"
)

// Config is the explicit process configuration. It is built once at startup
// and passed into constructors; nothing reads the environment after boot.
type Config struct {
	Port    string
	GinMode string

	DatabaseURL string

	SolanaRPCURL string
	TokenMint    string
	// AirdropSecret is the base58-encoded airdrop owner keypair. Resolved
	// in main, either from AWS Secrets Manager or the environment.
	AirdropSecret string
	// Cluster names the Solana cluster for explorer links ("mainnet-beta",
	// "devnet", "testnet"). Empty means mainnet.
	Cluster string

	Auth0Domain   string
	Auth0Audience string

	CORSAllowedOrigins []string
}

// FromEnv loads the configuration from environment variables. The airdrop
// secret is intentionally not validated here; main resolves it separately
// so it can come from Secrets Manager.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getEnvWithDefault("API_PORT", "8080"),
		GinMode:       os.Getenv("GIN_MODE"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SolanaRPCURL:  os.Getenv("SOLANA_RPC"),
		TokenMint:     os.Getenv("TOKEN_MINT"),
		Cluster:       os.Getenv("SOLANA_CLUSTER"),
		Auth0Domain:   os.Getenv("AUTH0_DOMAIN"),
		Auth0Audience: os.Getenv("AUTH0_AUDIENCE"),
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, strings.TrimSpace(origin))
		}
	}

	required := map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"SOLANA_RPC":     cfg.SolanaRPCURL,
		"TOKEN_MINT":     cfg.TokenMint,
		"AUTH0_DOMAIN":   cfg.Auth0Domain,
		"AUTH0_AUDIENCE": cfg.Auth0Audience,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("%s environment variable is required", name)
		}
	}

	return cfg, nil
}

func getEnvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
