package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pushchain/svm-deposit-encoder/depositClient/api"
	"github.com/pushchain/svm-deposit-encoder/depositClient/chains/svm"
	"github.com/pushchain/svm-deposit-encoder/depositClient/config"
	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
	"github.com/pushchain/svm-deposit-encoder/depositClient/logger"
)

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = ""
)

func InitRootCmd(rootCmd *cobra.Command, v *viper.Viper) {
	rootCmd.AddCommand(initCmd(v))
	rootCmd.AddCommand(startCmd(v))
	rootCmd.AddCommand(buildCmd(v))
	rootCmd.AddCommand(sendCmd(v))
	rootCmd.AddCommand(discriminatorCmd())
	rootCmd.AddCommand(encodeMessageCmd())
	rootCmd.AddCommand(versionCmd())
}

func initCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config to the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefaultConfig()
			if err != nil {
				return err
			}
			home := v.GetString(flagHome)
			cfg.NodeHome = home
			if err := applyOverrides(cfg, v); err != nil {
				return err
			}
			if err := config.Save(cfg, home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", filepath.Join(home, constant.ConfigSubdir, constant.ConfigFileName))
			return nil
		},
	}
}

func startCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Serve the deposit API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, encoder, err := newEncoder(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer client.Close()

			server := api.NewServer(log, cfg.QueryServerPort, encoder, client)
			if err := server.Start(); err != nil {
				return err
			}

			<-ctx.Done()
			log.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Stop(shutdownCtx)
		},
	}
}

// depositFlags are the request flags shared by build and send.
type depositFlags struct {
	asset       string
	amount      string
	decimals    int
	mint        string
	destination string
	signer      string
	retries     int
}

func (f *depositFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.asset, "asset", "native", "asset kind: native or fungible")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount in human units, e.g. 1.5")
	cmd.Flags().IntVar(&f.decimals, "decimals", -1, "asset decimals (default: configured value)")
	cmd.Flags().StringVar(&f.mint, "mint", "", "SPL mint (default: configured fungible mint)")
	cmd.Flags().StringVar(&f.destination, "destination", "", "20-byte beneficiary on the destination chain (0x...)")
	cmd.Flags().IntVar(&f.retries, "retries", 3, "attempts when the chain is unavailable")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("destination")
}

func (f *depositFlags) request(gw config.GatewayConfig, signer solana.PublicKey) (svm.DepositRequest, error) {
	kind, err := svm.ParseAssetKind(f.asset)
	if err != nil {
		return svm.DepositRequest{}, err
	}
	amount, err := svm.ParseAmount(f.amount)
	if err != nil {
		return svm.DepositRequest{}, err
	}

	params := gw.Native
	if kind == svm.AssetFungible {
		params = gw.Fungible
	}
	decimals := params.Decimals
	if f.decimals >= 0 {
		if f.decimals > int(constant.MaxDecimals) {
			return svm.DepositRequest{}, fmt.Errorf("decimals must be between 0 and %d", constant.MaxDecimals)
		}
		decimals = uint8(f.decimals)
	}
	mint := f.mint
	if kind == svm.AssetFungible && mint == "" && !params.Mint.IsZero() {
		mint = params.Mint.String()
	}

	return svm.DepositRequest{
		Asset:              kind,
		Mint:               mint,
		Amount:             amount,
		Decimals:           decimals,
		DestinationAddress: f.destination,
		Signer:             signer,
	}, nil
}

type buildOutput struct {
	Transaction     string `json:"transaction,omitempty"`
	Payload         string `json:"payload"`
	AmountBaseUnits uint64 `json:"amount_base_units"`
	Blockhash       string `json:"blockhash,omitempty"`
	Signature       string `json:"signature,omitempty"`
}

func buildCmd(v *viper.Viper) *cobra.Command {
	var (
		flags   depositFlags
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an unsigned deposit transaction and print it as base64",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)
			gw, err := cfg.ResolveGateway()
			if err != nil {
				return err
			}

			signer, err := solana.PublicKeyFromBase58(flags.signer)
			if err != nil {
				return fmt.Errorf("invalid signer %q: %w", flags.signer, err)
			}
			req, err := flags.request(gw, signer)
			if err != nil {
				return err
			}

			if offline {
				encoder := svm.NewDepositEncoder(gw, nil, nil, log)
				built, err := encoder.BuildInstruction(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printInstruction(cmd, built, nil)
			}

			client, encoder, err := newEncoder(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := buildWithRetry(cmd.Context(), encoder, req, flags.retries)
			if err != nil {
				return err
			}
			return printInstruction(cmd, &result.BuiltInstruction, result.Transaction)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&flags.signer, "signer", "", "depositor and fee payer public key (base58)")
	cmd.Flags().BoolVar(&offline, "offline", false, "print the instruction payload only, without fetching a blockhash")
	_ = cmd.MarkFlagRequired("signer")
	return cmd
}

func sendCmd(v *viper.Viper) *cobra.Command {
	var (
		flags   depositFlags
		keypair string
		wait    bool
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Build, sign with a local keypair and submit a deposit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)
			gw, err := cfg.ResolveGateway()
			if err != nil {
				return err
			}

			client, encoder, err := newEncoder(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer client.Close()

			if keypair == "" {
				keypair = filepath.Join(cfg.NodeHome, constant.KeysSubdir, "solana.json")
			}
			signer, err := svm.LoadKeypairSigner(keypair, client, log)
			if err != nil {
				return err
			}

			req, err := flags.request(gw, signer.PublicKey())
			if err != nil {
				return err
			}
			result, err := buildWithRetry(cmd.Context(), encoder, req, flags.retries)
			if err != nil {
				return err
			}

			sig, err := signer.SignAndSubmit(cmd.Context(), result.Transaction.Tx)
			if err != nil {
				return err
			}
			if wait {
				if err := client.WaitForConfirmation(cmd.Context(), sig, rpc.CommitmentConfirmed, time.Second); err != nil {
					return err
				}
			}

			payload, err := payloadHex(result.Instruction)
			if err != nil {
				return err
			}
			out := buildOutput{
				Payload:         payload,
				AmountBaseUnits: result.AmountBaseUnits,
				Blockhash:       result.Transaction.Blockhash.Hash.String(),
				Signature:       sig.String(),
			}
			return writeJSON(cmd, out)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&keypair, "keypair", "", "solana-keygen keypair file (default: <home>/keys/solana.json)")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the transaction to be confirmed")
	return cmd
}

func discriminatorCmd() *cobra.Command {
	var keccak bool
	cmd := &cobra.Command{
		Use:   "discriminator [instruction]",
		Short: "Print the 8-byte discriminator of a gateway instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var hasher svm.Hasher = svm.SHA256Hasher{}
			if keccak {
				hasher = svm.Keccak256Hasher{}
			}
			disc, err := svm.NewDiscriminatorResolver(hasher).Resolve(svm.InstructionName(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(disc[:]))
			return nil
		},
	}
	cmd.Flags().BoolVar(&keccak, "keccak", false, "derive with keccak256 instead of sha256")
	return cmd
}

func encodeMessageCmd() *cobra.Command {
	var (
		tag       string
		frameSize int
	)
	cmd := &cobra.Command{
		Use:   "encode-message [beneficiary]",
		Short: "ABI encode the (operation, beneficiary) message into its fixed frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := svm.NewMessageEncoder(frameSize).Encode(tag, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(frame))
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", constant.DefaultOperationTag, "operation tag")
	cmd.Flags().IntVar(&frameSize, "frame-size", constant.MessageFrameSize, "frame size in bytes")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print pdepositd version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version:    %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit:     %s\n", Commit)
		},
	}
}

func newEncoder(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*svm.RPCClient, *svm.DepositEncoder, error) {
	gw, err := cfg.ResolveGateway()
	if err != nil {
		return nil, nil, err
	}
	client, err := svm.NewRPCClient(ctx, cfg.RPCURLs, cfg.GenesisHash, log)
	if err != nil {
		return nil, nil, err
	}
	return client, svm.NewDepositEncoder(gw, nil, client, log), nil
}

// buildWithRetry retries builds that failed on the network. Encoding errors
// are returned on the first attempt.
func buildWithRetry(ctx context.Context, encoder *svm.DepositEncoder, req svm.DepositRequest, attempts int) (*svm.BuildResult, error) {
	retry := deperrors.DefaultRetryConfig()
	retry.MaxAttempts = attempts

	var result *svm.BuildResult
	err := deperrors.Retry(ctx, func() error {
		var buildErr error
		result, buildErr = encoder.Build(ctx, req)
		return buildErr
	}, retry)
	return result, err
}

func printInstruction(cmd *cobra.Command, built *svm.BuiltInstruction, unsigned *svm.UnsignedTransaction) error {
	payload, err := payloadHex(built.Instruction)
	if err != nil {
		return err
	}
	out := buildOutput{
		Payload:         payload,
		AmountBaseUnits: built.AmountBaseUnits,
	}
	if unsigned != nil {
		b64, err := unsigned.Base64()
		if err != nil {
			return err
		}
		out.Transaction = b64
		out.Blockhash = unsigned.Blockhash.Hash.String()
	}
	return writeJSON(cmd, out)
}

func payloadHex(ix *svm.Instruction) (string, error) {
	data, err := ix.Data()
	if err != nil {
		return "", err
	}
	return hexutil.Encode(data), nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
