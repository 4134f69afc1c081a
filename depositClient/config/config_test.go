package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
)

func uint8Ptr(v uint8) *uint8 { return &v }

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name        string
		config      *Config
		expectError bool
		errorMsg    string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "Valid config with defaults filled",
			config: &Config{
				LogLevel:  1,
				LogFormat: "json",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.QueryServerPort)
				assert.Equal(t, constant.MessageFrameSize, cfg.Gateway.MessageFrameSize)
				assert.Equal(t, constant.DefaultOperationTag, cfg.Gateway.OperationTag)
				assert.NotEmpty(t, cfg.Gateway.ProgramID)
				assert.NotEmpty(t, cfg.RPCURLs)
				require.NotNil(t, cfg.Assets.Native.Decimals)
				assert.Equal(t, constant.NativeDecimals, *cfg.Assets.Native.Decimals)
				require.NotNil(t, cfg.Assets.Fungible.Decimals)
				assert.Equal(t, constant.FungibleDecimals, *cfg.Assets.Fungible.Decimals)
			},
		},
		{
			name: "Invalid log level (too high)",
			config: &Config{
				LogLevel:  6,
				LogFormat: "json",
			},
			expectError: true,
			errorMsg:    "log level must be between 0 and 5",
		},
		{
			name: "Invalid log format",
			config: &Config{
				LogLevel:  1,
				LogFormat: "xml",
			},
			expectError: true,
			errorMsg:    "log format must be 'json' or 'console'",
		},
		{
			name: "Frame size not word aligned",
			config: &Config{
				LogFormat: "json",
				Gateway:   GatewaySettings{MessageFrameSize: 100},
			},
			expectError: true,
			errorMsg:    "multiple of 32",
		},
		{
			name: "Decimals above 18",
			config: &Config{
				LogFormat: "json",
				Assets:    AssetSettings{Native: AssetConfig{Decimals: uint8Ptr(19)}},
			},
			expectError: true,
			errorMsg:    "asset decimals",
		},
		{
			name: "Bad program id",
			config: &Config{
				LogFormat: "json",
				Gateway:   GatewaySettings{ProgramID: "not-base58-0OIl"},
			},
			expectError: true,
			errorMsg:    "invalid gateway program id",
		},
		{
			name: "Destination contract of 19 bytes",
			config: &Config{
				LogFormat: "json",
				Gateway:   GatewaySettings{DestinationContract: "0x1111111111111111111111111111111111111a"},
			},
			expectError: true,
			errorMsg:    "destination contract must be 20 bytes",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateConfig(tc.config)
			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorMsg)
				return
			}
			require.NoError(t, err)
			if tc.validate != nil {
				tc.validate(t, tc.config)
			}
		})
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadDefaultConfig()
	require.NoError(t, err)

	gw, err := cfg.ResolveGateway()
	require.NoError(t, err)

	assert.Equal(t, solana.MustPublicKeyFromBase58("CFVSincHYbETh2k7w6u1ENEkjbSLtveRCEBupKidw2VS"), gw.ProgramID)
	assert.Equal(t, 128, gw.MessageFrameSize)
	assert.Equal(t, constant.RevertOptionsNone, gw.RevertOptions)
	assert.Equal(t, uint8(9), gw.Native.Decimals)
	assert.True(t, gw.Native.Fee.Enabled)
	assert.Equal(t, constant.DefaultNativeFeeLamports, gw.Native.Fee.Amount)
	assert.True(t, gw.Native.Mint.IsZero())
	assert.Equal(t, uint8(6), gw.Fungible.Decimals)
	assert.False(t, gw.Fungible.Fee.Enabled)
	assert.False(t, gw.Fungible.Mint.IsZero())
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadDefaultConfig()
	require.NoError(t, err)
	cfg.LogFormat = "json"
	cfg.Gateway.VerifyAccounts = true
	cfg.Gateway.RevertOptions = 1

	require.NoError(t, Save(cfg, dir))

	path := filepath.Join(dir, constant.ConfigSubdir, constant.ConfigFileName)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var onDisk map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Contains(t, onDisk, "gateway")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "json", loaded.LogFormat)
	assert.True(t, loaded.Gateway.VerifyAccounts)
	assert.Equal(t, uint8(1), loaded.Gateway.RevertOptions)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
