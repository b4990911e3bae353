// ======================================
// File: internal/config/config_test.go
// ======================================
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "rpc_url: https://api.mainnet-beta.solana.com\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCURL)
	assert.Equal(t, DefaultCommitment, cfg.Commitment)
	assert.Equal(t, DefaultRelayURL, cfg.RelayURL)
	assert.Equal(t, uint64(DefaultTipLamports), cfg.TipLamports)
	assert.Equal(t, uint64(DefaultSlippageBP), cfg.SlippageBP)
	assert.Equal(t, DefaultBundleWaitMs, cfg.BundleWaitMs)
}

func TestLoadConfigMissingRPC(t *testing.T) {
	path := writeConfig(t, "commitment: confirmed\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad rpc scheme", "rpc_url: ftp://example.com\n"},
		{"bad commitment", "rpc_url: https://example.com\ncommitment: fast\n"},
		{"slippage over max", "rpc_url: https://example.com\nslippage_bp: 10001\n"},
		{"negative wait", "rpc_url: https://example.com\nbundle_wait_ms: -1\n"},
		{"fee rate over 1", "rpc_url: https://example.com\nfee_rate: 1.5\n"},
		{"bad websocket scheme", "rpc_url: https://example.com\nwebsocket_url: https://example.com\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			require.Error(t, err)
		})
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PUMPFUNDLER_RPC_URL", "https://rpc.example.com")
	t.Setenv("PUMPFUNDLER_RELAY_URL", "https://relay.example.com")

	cfg, err := LoadConfig(writeConfig(t, "rpc_url: https://api.mainnet-beta.solana.com\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example.com", cfg.RPCURL)
	assert.Equal(t, "https://relay.example.com", cfg.RelayURL)
}

func TestBundleWaitDuration(t *testing.T) {
	cfg := Config{BundleWaitMs: 30_000}
	assert.Equal(t, "30s", cfg.BundleWait().String())
}
