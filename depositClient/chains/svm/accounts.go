package svm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"

	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// ResolvedAccounts holds every address a deposit instruction references.
// Token fields are zero for native deposits.
type ResolvedAccounts struct {
	Signer             solana.PublicKey
	Vault              solana.PublicKey
	Whitelist          solana.PublicKey
	Mint               solana.PublicKey
	SenderTokenAccount solana.PublicKey
	VaultTokenAccount  solana.PublicKey
}

// AccountResolver derives the gateway PDAs and associated token accounts.
// Derivation is pure; only Verify touches the network.
type AccountResolver struct {
	programID solana.PublicKey
	reader    ChainReader
	logger    zerolog.Logger
}

// NewAccountResolver creates a resolver for a gateway program. reader may be
// nil when Verify is never called.
func NewAccountResolver(programID solana.PublicKey, reader ChainReader, logger zerolog.Logger) *AccountResolver {
	return &AccountResolver{
		programID: programID,
		reader:    reader,
		logger:    logger.With().Str("component", "svm_account_resolver").Logger(),
	}
}

// VaultPDA derives the vault from seeds ["meta"].
func (r *AccountResolver) VaultPDA() (solana.PublicKey, error) {
	vault, _, err := solana.FindProgramAddress([][]byte{[]byte(constant.VaultSeed)}, r.programID)
	if err != nil {
		return solana.PublicKey{}, deperrors.NewUnresolvedAccountError("failed to derive vault PDA", err)
	}
	return vault, nil
}

// WhitelistPDA derives the per-mint whitelist entry from seeds ["whitelist", mint].
func (r *AccountResolver) WhitelistPDA(mint solana.PublicKey) (solana.PublicKey, error) {
	whitelist, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(constant.WhitelistSeed), mint.Bytes()},
		r.programID,
	)
	if err != nil {
		return solana.PublicKey{}, deperrors.NewUnresolvedAccountError("failed to derive whitelist PDA", err)
	}
	return whitelist, nil
}

// TokenAccount derives the associated token account of owner for mint.
// owner may be a PDA (off-curve); the derivation does not require a signer.
func (r *AccountResolver) TokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, deperrors.NewUnresolvedAccountError(
			fmt.Sprintf("failed to derive token account of %s for mint %s", owner, mint), err)
	}
	return ata, nil
}

// SenderTokenAccount is the depositor's associated token account for mint.
func (r *AccountResolver) SenderTokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	return r.TokenAccount(owner, mint)
}

// VaultTokenAccount is the vault PDA's associated token account for mint.
func (r *AccountResolver) VaultTokenAccount(mint solana.PublicKey) (solana.PublicKey, error) {
	vault, err := r.VaultPDA()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return r.TokenAccount(vault, mint)
}

// Resolve derives the accounts for one deposit.
func (r *AccountResolver) Resolve(kind AssetKind, signer, mint solana.PublicKey) (*ResolvedAccounts, error) {
	if signer.IsZero() {
		return nil, deperrors.NewValidationError("signer is required")
	}

	vault, err := r.VaultPDA()
	if err != nil {
		return nil, err
	}
	accounts := &ResolvedAccounts{Signer: signer, Vault: vault}

	switch kind {
	case AssetNative:
		return accounts, nil
	case AssetFungible:
	default:
		return nil, deperrors.NewInternalError("unknown asset kind "+kind.String(), nil)
	}

	if mint.IsZero() {
		return nil, deperrors.NewUnresolvedAccountError("fungible deposit requires a mint", nil)
	}
	accounts.Mint = mint

	if accounts.Whitelist, err = r.WhitelistPDA(mint); err != nil {
		return nil, err
	}
	if accounts.SenderTokenAccount, err = r.SenderTokenAccount(signer, mint); err != nil {
		return nil, err
	}
	if accounts.VaultTokenAccount, err = r.VaultTokenAccount(mint); err != nil {
		return nil, err
	}

	r.logger.Debug().
		Str("vault", vault.String()).
		Str("whitelist", accounts.Whitelist.String()).
		Str("sender_ata", accounts.SenderTokenAccount.String()).
		Str("vault_ata", accounts.VaultTokenAccount.String()).
		Msg("resolved fungible deposit accounts")

	return accounts, nil
}

type namedAccount struct {
	label string
	key   solana.PublicKey
}

// Verify checks that the accounts the gateway reads already exist on chain.
func (r *AccountResolver) Verify(ctx context.Context, kind AssetKind, accounts *ResolvedAccounts) error {
	if r.reader == nil {
		return deperrors.NewConfigError("account verification requires a chain reader", nil)
	}

	required := []namedAccount{{"vault", accounts.Vault}}
	if kind == AssetFungible {
		required = append(required,
			namedAccount{"whitelist", accounts.Whitelist},
			namedAccount{"mint", accounts.Mint},
			namedAccount{"sender token account", accounts.SenderTokenAccount},
			namedAccount{"vault token account", accounts.VaultTokenAccount},
		)
	}

	for _, acc := range required {
		info, err := r.reader.GetAccountInfo(ctx, acc.key)
		if err != nil {
			if deperrors.IsDepositError(err, deperrors.ErrCodeNetworkUnavailable) {
				return err
			}
			return deperrors.NewNetworkError(fmt.Sprintf("failed to read %s account %s", acc.label, acc.key), err)
		}
		if info == nil {
			return deperrors.NewUnresolvedAccountError(
				fmt.Sprintf("%s account %s does not exist", acc.label, acc.key), nil).
				WithContext("account", acc.key.String())
		}
	}
	return nil
}

// ParseMint accepts a base58 public key or 32-byte hex (with or without 0x).
func ParseMint(s string) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, deperrors.NewValidationError("mint is required")
	}

	if raw, err := base58.Decode(s); err == nil && len(raw) == solana.PublicKeyLength {
		return solana.PublicKeyFromBytes(raw), nil
	}

	hexStr := s
	if !strings.HasPrefix(hexStr, "0x") && !strings.HasPrefix(hexStr, "0X") {
		hexStr = "0x" + hexStr
	}
	raw, err := hexutil.Decode(hexStr)
	if err != nil || len(raw) != solana.PublicKeyLength {
		return solana.PublicKey{}, deperrors.NewValidationError(fmt.Sprintf("invalid mint address: %s", s))
	}
	return solana.PublicKeyFromBytes(raw), nil
}
