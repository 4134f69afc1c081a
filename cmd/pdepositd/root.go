package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pushchain/svm-deposit-encoder/depositClient/config"
	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
)

const envPrefix = "PDEPOSIT"

// Persistent flag names. Each is also read from PDEPOSIT_<NAME> with dashes
// replaced by underscores.
const (
	flagHome           = "home"
	flagRPCURL         = "rpc-url"
	flagLogLevel       = "log-level"
	flagLogFormat      = "log-format"
	flagProgramID      = "program-id"
	flagVerifyAccounts = "verify-accounts"
)

func NewRootCmd() *cobra.Command {
	return newRootCmd(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pdepositd",
		Short:         "Solana gateway deposit encoder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagHome, constant.DefaultNodeHome, "node home directory")
	flags.StringSlice(flagRPCURL, nil, "Solana RPC endpoint (repeatable)")
	flags.Int(flagLogLevel, 1, "log level (0 debug .. 5 panic)")
	flags.String(flagLogFormat, "console", "log format: console or json")
	flags.String(flagProgramID, "", "gateway program id (base58)")
	flags.Bool(flagVerifyAccounts, false, "check resolved accounts exist on chain before building")
	_ = v.BindPFlags(flags)

	InitRootCmd(rootCmd, v) // add subcommands like `start` and `version`

	return rootCmd
}

// loadConfig reads the config under --home, falling back to the embedded
// default when none was written, then applies flag and env overrides.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	home := v.GetString(flagHome)

	var cfg *config.Config
	loaded, err := config.Load(home)
	switch {
	case err == nil:
		cfg = &loaded
	case errors.Is(err, os.ErrNotExist):
		if cfg, err = config.LoadDefaultConfig(); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	cfg.NodeHome = home

	if err := applyOverrides(cfg, v); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides layers explicitly set flags and PDEPOSIT_* variables over cfg.
func applyOverrides(cfg *config.Config, v *viper.Viper) error {
	if v.IsSet(flagRPCURL) {
		if urls := v.GetStringSlice(flagRPCURL); len(urls) > 0 {
			cfg.RPCURLs = urls
		}
	}
	if v.IsSet(flagLogLevel) {
		cfg.LogLevel = v.GetInt(flagLogLevel)
	}
	if v.IsSet(flagLogFormat) {
		cfg.LogFormat = v.GetString(flagLogFormat)
	}
	if v.IsSet(flagProgramID) && v.GetString(flagProgramID) != "" {
		cfg.Gateway.ProgramID = v.GetString(flagProgramID)
	}
	if v.IsSet(flagVerifyAccounts) {
		cfg.Gateway.VerifyAccounts = v.GetBool(flagVerifyAccounts)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
