package svm

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// UnsignedTransaction is a deposit transaction ready for the wallet. It is
// never signed here; the signer attaches signatures.
type UnsignedTransaction struct {
	Tx        *solana.Transaction
	Blockhash Blockhash
	FeePayer  solana.PublicKey
}

// Base64 returns the wire encoding wallets accept, with one zeroed signature
// slot per required signer. Tx itself is left without signatures.
func (u *UnsignedTransaction) Base64() (string, error) {
	wire := *u.Tx
	wire.Signatures = make([]solana.Signature, u.Tx.Message.Header.NumRequiredSignatures)
	out, err := wire.ToBase64()
	if err != nil {
		return "", deperrors.NewInternalError("failed to serialize transaction", err)
	}
	return out, nil
}

// MessageBytes returns the serialized message, i.e. the bytes a signer signs.
func (u *UnsignedTransaction) MessageBytes() ([]byte, error) {
	out, err := u.Tx.Message.MarshalBinary()
	if err != nil {
		return nil, deperrors.NewInternalError("failed to serialize transaction message", err)
	}
	return out, nil
}

// DecodeTransaction parses a base64 wire transaction.
func DecodeTransaction(b64 string) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromBase64(b64)
	if err != nil {
		return nil, deperrors.NewValidationError(fmt.Sprintf("invalid transaction: %v", err))
	}
	return tx, nil
}

// TransactionAssembler wraps one instruction into an unsigned transaction
// anchored on a fresh blockhash.
type TransactionAssembler struct {
	reader ChainReader
	logger zerolog.Logger
}

// NewTransactionAssembler creates an assembler reading blockhashes from reader.
func NewTransactionAssembler(reader ChainReader, logger zerolog.Logger) *TransactionAssembler {
	return &TransactionAssembler{
		reader: reader,
		logger: logger.With().Str("component", "svm_tx_assembler").Logger(),
	}
}

// Assemble fetches a recent blockhash and builds the transaction with feePayer
// as the paying signer.
func (a *TransactionAssembler) Assemble(ctx context.Context, ix solana.Instruction, feePayer solana.PublicKey) (*UnsignedTransaction, error) {
	if feePayer.IsZero() {
		return nil, deperrors.NewValidationError("fee payer is required")
	}
	if a.reader == nil {
		return nil, deperrors.NewConfigError("transaction assembly requires a chain reader", nil)
	}

	blockhash, err := a.reader.GetRecentBlockhash(ctx)
	if err != nil {
		if deperrors.IsDepositError(err, deperrors.ErrCodeNetworkUnavailable) {
			return nil, err
		}
		return nil, deperrors.NewNetworkError("failed to get recent blockhash", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash.Hash,
		solana.TransactionPayer(feePayer),
	)
	if err != nil {
		return nil, deperrors.NewInternalError("failed to create transaction", err)
	}

	a.logger.Debug().
		Str("fee_payer", feePayer.String()).
		Str("blockhash", blockhash.Hash.String()).
		Uint64("last_valid_block_height", blockhash.LastValidBlockHeight).
		Msg("assembled unsigned transaction")

	return &UnsignedTransaction{
		Tx:        tx,
		Blockhash: blockhash,
		FeePayer:  feePayer,
	}, nil
}
