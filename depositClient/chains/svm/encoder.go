package svm

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pushchain/svm-deposit-encoder/depositClient/config"
	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
	"github.com/pushchain/svm-deposit-encoder/depositClient/metrics"
)

// BuiltInstruction is the offline part of a deposit build.
type BuiltInstruction struct {
	Instruction     *Instruction
	Accounts        *ResolvedAccounts
	AmountBaseUnits uint64
	Beneficiary     common.Address
}

// BuildResult is a complete deposit: the instruction wrapped in an unsigned
// transaction.
type BuildResult struct {
	BuiltInstruction
	Transaction *UnsignedTransaction
}

// DepositEncoder turns a DepositRequest into a gateway deposit transaction.
// All state is fixed at construction, so concurrent builds need no locking.
type DepositEncoder struct {
	cfg           config.GatewayConfig
	discriminator *DiscriminatorResolver
	messages      *MessageEncoder
	resolver      *AccountResolver
	builder       *InstructionBuilder
	assembler     *TransactionAssembler
	logger        zerolog.Logger
}

// NewDepositEncoder wires the encoding pipeline. hasher may be nil for the
// Anchor default. reader is needed by Build and by account verification.
func NewDepositEncoder(cfg config.GatewayConfig, hasher Hasher, reader ChainReader, logger zerolog.Logger) *DepositEncoder {
	if cfg.MessageFrameSize <= 0 {
		cfg.MessageFrameSize = constant.MessageFrameSize
	}
	if cfg.OperationTag == "" {
		cfg.OperationTag = constant.DefaultOperationTag
	}

	return &DepositEncoder{
		cfg:           cfg,
		discriminator: NewDiscriminatorResolver(hasher),
		messages:      NewMessageEncoder(cfg.MessageFrameSize),
		resolver:      NewAccountResolver(cfg.ProgramID, reader, logger),
		builder:       NewInstructionBuilder(cfg.ProgramID, cfg.MessageFrameSize),
		assembler:     NewTransactionAssembler(reader, logger),
		logger:        logger.With().Str("component", "deposit_encoder").Logger(),
	}
}

// Config returns the gateway configuration the encoder was built with.
func (e *DepositEncoder) Config() config.GatewayConfig {
	return e.cfg
}

// Resolver exposes the account resolver for inspection commands.
func (e *DepositEncoder) Resolver() *AccountResolver {
	return e.resolver
}

// Build produces an unsigned deposit transaction. Any failure aborts the
// build; no partial result is returned.
func (e *DepositEncoder) Build(ctx context.Context, req DepositRequest) (*BuildResult, error) {
	start := time.Now()
	asset := req.Asset.String()

	built, err := e.buildInstruction(ctx, req)
	if err != nil {
		return nil, e.fail(asset, err)
	}

	unsigned, err := e.assembler.Assemble(ctx, built.Instruction, req.Signer)
	if err != nil {
		return nil, e.fail(asset, err)
	}

	metrics.DepositsBuilt.WithLabelValues(asset).Inc()
	metrics.DepositBuildDuration.WithLabelValues(asset).Observe(time.Since(start).Seconds())

	e.logger.Info().
		Str("asset", asset).
		Str("signer", req.Signer.String()).
		Uint64("amount_base_units", built.AmountBaseUnits).
		Str("beneficiary", built.Beneficiary.Hex()).
		Str("blockhash", unsigned.Blockhash.Hash.String()).
		Msg("built deposit transaction")

	return &BuildResult{BuiltInstruction: *built, Transaction: unsigned}, nil
}

// BuildInstruction runs every step except transaction assembly. It makes no
// network calls unless account verification is enabled.
func (e *DepositEncoder) BuildInstruction(ctx context.Context, req DepositRequest) (*BuiltInstruction, error) {
	built, err := e.buildInstruction(ctx, req)
	if err != nil {
		return nil, e.fail(req.Asset.String(), err)
	}
	return built, nil
}

func (e *DepositEncoder) buildInstruction(ctx context.Context, req DepositRequest) (*BuiltInstruction, error) {
	params, err := e.assetParams(req.Asset)
	if err != nil {
		return nil, err
	}
	mint, err := e.validate(req)
	if err != nil {
		return nil, err
	}
	beneficiary, err := ParseDestinationAddress("destination_address", req.DestinationAddress)
	if err != nil {
		return nil, err
	}

	name, err := InstructionForAsset(req.Asset)
	if err != nil {
		return nil, err
	}

	var (
		disc    [constant.DiscriminatorSize]byte
		message []byte
		amount  uint64
		g       errgroup.Group
	)
	g.Go(func() error {
		var err error
		disc, err = e.discriminator.Resolve(name)
		return err
	})
	g.Go(func() error {
		var err error
		message, err = e.messages.EncodeAddress(e.cfg.OperationTag, beneficiary)
		return err
	})
	g.Go(func() error {
		var err error
		amount, err = NormalizeAmount(req.Amount, req.Decimals, params.Fee)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	accounts, err := e.resolver.Resolve(req.Asset, req.Signer, mint)
	if err != nil {
		return nil, err
	}
	if e.cfg.VerifyAccounts {
		if err := e.resolver.Verify(ctx, req.Asset, accounts); err != nil {
			return nil, err
		}
	}

	ix, err := e.builder.Build(req.Asset, accounts, DepositParams{
		Discriminator: disc,
		Amount:        amount,
		Destination:   e.cfg.DestinationContract.Bytes(),
		Message:       message,
		RevertOptions: e.cfg.RevertOptions,
	})
	if err != nil {
		return nil, err
	}

	return &BuiltInstruction{
		Instruction:     ix,
		Accounts:        accounts,
		AmountBaseUnits: amount,
		Beneficiary:     beneficiary,
	}, nil
}

func (e *DepositEncoder) assetParams(kind AssetKind) (config.AssetParams, error) {
	switch kind {
	case AssetNative:
		return e.cfg.Native, nil
	case AssetFungible:
		return e.cfg.Fungible, nil
	default:
		return config.AssetParams{}, deperrors.NewValidationError("unknown asset kind " + kind.String())
	}
}

// validate checks the request shape and returns the parsed mint.
func (e *DepositEncoder) validate(req DepositRequest) (solana.PublicKey, error) {
	if req.Signer.IsZero() {
		return solana.PublicKey{}, deperrors.NewValidationError("signer is required")
	}
	if !req.Amount.IsPositive() {
		return solana.PublicKey{}, deperrors.NewValidationError(
			fmt.Sprintf("amount must be positive, got %s", req.Amount.String()))
	}
	if req.Decimals > constant.MaxDecimals {
		return solana.PublicKey{}, deperrors.NewValidationError(
			fmt.Sprintf("decimals must be between 0 and %d, got %d", constant.MaxDecimals, req.Decimals))
	}

	switch req.Asset {
	case AssetNative:
		if req.Mint != "" {
			return solana.PublicKey{}, deperrors.NewValidationError("native deposits take no mint")
		}
		return solana.PublicKey{}, nil
	default:
		if req.Mint == "" {
			return solana.PublicKey{}, deperrors.NewUnresolvedAccountError("fungible deposit requires a mint", nil)
		}
		return ParseMint(req.Mint)
	}
}

func (e *DepositEncoder) fail(asset string, err error) error {
	code := deperrors.CodeOf(err)
	metrics.DepositBuildFailures.WithLabelValues(asset, string(code)).Inc()
	e.logger.Warn().
		Str("asset", asset).
		Str("code", string(code)).
		Err(err).
		Msg("deposit build aborted")
	return err
}
