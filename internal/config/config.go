package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stellar/go/network"
)

// Config carries every setting the service needs. It is threaded through
// constructors explicitly; there is no mutable package-level default.
type Config struct {
	// Horizon server URL
	HorizonURL string

	// Network passphrase ( mainnet or testnet )
	NetworkPassphrase string

	// Per-operation fee in stroops
	BaseFee int64

	// Envelope validity window in minutes ( 0 means no expiry )
	TimeoutMinutes int

	// HTTP API port
	Port int

	// Postgres URL for submission history ( empty disables history )
	DatabaseURL string

	// SEP-0007 signing relay endpoint
	RelayURL string

	// Pinata upload endpoint and JWT ( empty JWT disables uploads )
	PinataEndpoint string
	PinataJWT      string

	// Log level: debug, info, warn, error
	LogLevel string
}

// Load builds the configuration from environment variables. The network
// selector follows the original deployment convention: anything other than
// TESTNET means the public network.
func Load() *Config {
	horizonURL := "https://horizon.stellar.org"
	passphrase := network.PublicNetworkPassphrase
	if strings.ToUpper(os.Getenv("STELLAR_NETWORK_TYPE")) == "TESTNET" {
		horizonURL = "https://horizon-testnet.stellar.org"
		passphrase = network.TestNetworkPassphrase
	}

	return &Config{
		HorizonURL:        getEnv("HORIZON_URL", horizonURL),
		NetworkPassphrase: getEnv("NETWORK_PASSPHRASE", passphrase),
		BaseFee:           int64(getEnvAsInt("BASE_FEE", 100)),
		TimeoutMinutes:    getEnvAsInt("TIMEOUT_MINUTES", 0),
		Port:              getEnvAsInt("PORT", 8080),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RelayURL:          getEnv("RELAY_URL", "https://eurmtl.me/remote/sep07/add"),
		PinataEndpoint:    getEnv("PINATA_ENDPOINT", "https://uploads.pinata.cloud/v3/files"),
		PinataJWT:         os.Getenv("PINATA_JWT"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HorizonURL == "" {
		return fmt.Errorf("HorizonURL is required")
	}
	if c.NetworkPassphrase == "" {
		return fmt.Errorf("NetworkPassphrase is required")
	}
	if c.BaseFee <= 0 {
		return fmt.Errorf("BaseFee must be positive")
	}
	if c.TimeoutMinutes < 0 {
		return fmt.Errorf("TimeoutMinutes must not be negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("Port %d is out of range", c.Port)
	}
	return nil
}

// Helper: get string from env
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Helper: get int from env
func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
