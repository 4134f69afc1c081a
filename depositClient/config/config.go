package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	// Set defaults for query server
	if cfg.QueryServerPort == 0 {
		cfg.QueryServerPort = 8080
	}

	if cfg.NodeHome == "" {
		cfg.NodeHome = constant.DefaultNodeHome
	}

	// Fill gateway and asset defaults from the embedded config
	var defaultCfg Config
	if err := json.Unmarshal(defaultConfigJSON, &defaultCfg); err != nil {
		return fmt.Errorf("failed to unmarshal default config: %w", err)
	}

	if len(cfg.RPCURLs) == 0 {
		cfg.RPCURLs = defaultCfg.RPCURLs
	}
	if cfg.Gateway.ProgramID == "" {
		cfg.Gateway.ProgramID = defaultCfg.Gateway.ProgramID
	}
	if cfg.Gateway.DestinationContract == "" {
		cfg.Gateway.DestinationContract = defaultCfg.Gateway.DestinationContract
	}
	if cfg.Gateway.OperationTag == "" {
		cfg.Gateway.OperationTag = constant.DefaultOperationTag
	}
	if cfg.Gateway.MessageFrameSize == 0 {
		cfg.Gateway.MessageFrameSize = constant.MessageFrameSize
	}
	if cfg.Gateway.MessageFrameSize < 0 || cfg.Gateway.MessageFrameSize%32 != 0 {
		return fmt.Errorf("message frame size must be a positive multiple of 32")
	}

	if cfg.Assets.Native.Decimals == nil {
		d := constant.NativeDecimals
		cfg.Assets.Native.Decimals = &d
	}
	if cfg.Assets.Fungible.Decimals == nil {
		d := constant.FungibleDecimals
		cfg.Assets.Fungible.Decimals = &d
	}
	if *cfg.Assets.Native.Decimals > constant.MaxDecimals || *cfg.Assets.Fungible.Decimals > constant.MaxDecimals {
		return fmt.Errorf("asset decimals must be between 0 and %d", constant.MaxDecimals)
	}
	if cfg.Assets.Fungible.Mint == "" {
		cfg.Assets.Fungible.Mint = defaultCfg.Assets.Fungible.Mint
	}

	// Parse once so that a bad identifier fails at load time rather than per deposit
	if _, err := cfg.Gateway.resolve(cfg.Assets); err != nil {
		return err
	}

	return nil
}

// Save writes the given config to <NodeDir>/config/pdeposit_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, constant.ConfigSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, constant.ConfigFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads, validates and returns the config from <BasePath>/config/pdeposit_config.json.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, constant.ConfigSubdir, constant.ConfigFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid default config: %w", err)
	}
	return &cfg, nil
}

// Validate applies defaults and checks the config in place.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// ResolveGateway returns the parsed, immutable gateway configuration.
func (c *Config) ResolveGateway() (GatewayConfig, error) {
	return c.Gateway.resolve(c.Assets)
}
