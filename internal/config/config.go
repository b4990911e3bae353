// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	RPCURL           string  `mapstructure:"rpc_url"`
	WebSocketURL     string  `mapstructure:"websocket_url"`
	Commitment       string  `mapstructure:"commitment"`
	RelayURL         string  `mapstructure:"relay_url"`
	TipLamports      uint64  `mapstructure:"tip_lamports"`
	SlippageBP       uint64  `mapstructure:"slippage_bp"`
	ComputeUnitLimit uint32  `mapstructure:"compute_unit_limit"`
	ComputeUnitPrice uint64  `mapstructure:"compute_unit_price"`
	BundleWaitMs     int     `mapstructure:"bundle_wait_ms"`
	FeeRate          float64 `mapstructure:"fee_rate"`
	FeeRecipient     string  `mapstructure:"fee_recipient"`
	DebugLogging     bool    `mapstructure:"debug_logging"`
	LogFile          string  `mapstructure:"log_file"`
}

const (
	DefaultCommitment       = "confirmed"
	DefaultRelayURL         = "https://mainnet.block-engine.jito.wtf/api/v1/bundles"
	DefaultTipLamports      = 1_000_000
	DefaultSlippageBP       = 500
	DefaultComputeUnitLimit = 200_000
	DefaultBundleWaitMs     = 30_000
)

// BundleWait returns the bundle confirmation window as a duration.
func (c *Config) BundleWait() time.Duration {
	return time.Duration(c.BundleWaitMs) * time.Millisecond
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"commitment":         DefaultCommitment,
		"relay_url":          DefaultRelayURL,
		"tip_lamports":       DefaultTipLamports,
		"slippage_bp":        DefaultSlippageBP,
		"compute_unit_limit": DefaultComputeUnitLimit,
		"bundle_wait_ms":     DefaultBundleWaitMs,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("missing rpc_url in configuration")
	}
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if cfg.WebSocketURL != "" {
		if err := validateURLWithCache(cfg.WebSocketURL, "ws"); err != nil {
			return errors.New("invalid WebSocket URL protocol")
		}
	}
	if err := validateURLWithCache(cfg.RelayURL, "http"); err != nil {
		return errors.New("invalid relay URL protocol")
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return errors.New("invalid commitment level")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.SlippageBP > 10_000 {
		return errors.New("slippage_bp exceeds 10000")
	}
	if cfg.BundleWaitMs <= 0 {
		return errors.New("invalid bundle_wait_ms")
	}
	if cfg.FeeRate < 0 || cfg.FeeRate >= 1 {
		return errors.New("fee_rate must be in [0, 1)")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	// Cache key includes the protocol: the same URL may be valid as an
	// RPC endpoint and invalid as a WebSocket one.
	key := protocol + "|" + rawURL
	if _, ok := urlCache.Load(key); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(key, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("PUMPFUNDLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envRPC := v.GetString("RPC_URL"); envRPC != "" {
		cfg.RPCURL = envRPC
	}
	if envRelay := v.GetString("RELAY_URL"); envRelay != "" {
		cfg.RelayURL = envRelay
	}
	return nil
}
