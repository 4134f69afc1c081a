package svm

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// KeypairSigner signs with a local keypair and submits through a Broadcaster.
type KeypairSigner struct {
	key         solana.PrivateKey
	broadcaster Broadcaster
	logger      zerolog.Logger
}

var _ Signer = (*KeypairSigner)(nil)

// NewKeypairSigner wraps an in-memory key.
func NewKeypairSigner(key solana.PrivateKey, broadcaster Broadcaster, logger zerolog.Logger) *KeypairSigner {
	return &KeypairSigner{
		key:         key,
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "svm_signer").Logger(),
	}
}

// LoadKeypairSigner reads a solana-keygen JSON keypair file.
func LoadKeypairSigner(path string, broadcaster Broadcaster, logger zerolog.Logger) (*KeypairSigner, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, deperrors.NewConfigError(fmt.Sprintf("failed to load keypair from %s", path), err)
	}
	return NewKeypairSigner(key, broadcaster, logger), nil
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// Sign attaches the signer's signature. Any other required signer fails.
func (s *KeypairSigner) Sign(tx *solana.Transaction) error {
	pub := s.key.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return deperrors.NewValidationError(fmt.Sprintf("failed to sign transaction: %v", err))
	}
	return nil
}

// SignAndSubmit signs tx and broadcasts it. The returned signature is the
// handle used to track confirmation.
func (s *KeypairSigner) SignAndSubmit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if s.broadcaster == nil {
		return solana.Signature{}, deperrors.NewConfigError("signer has no broadcaster", nil)
	}
	if err := s.Sign(tx); err != nil {
		return solana.Signature{}, err
	}

	sigStr, err := s.broadcaster.BroadcastTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := solana.SignatureFromBase58(sigStr)
	if err != nil {
		return solana.Signature{}, deperrors.NewInternalError("broadcaster returned an invalid signature", err)
	}

	s.logger.Info().Str("signature", sig.String()).Msg("deposit transaction submitted")
	return sig, nil
}
