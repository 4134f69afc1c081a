package svm

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// AssetKind selects the deposit variant.
type AssetKind int

const (
	AssetNative AssetKind = iota
	AssetFungible
)

func (k AssetKind) String() string {
	switch k {
	case AssetNative:
		return "native"
	case AssetFungible:
		return "fungible"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseAssetKind accepts "native"/"sol" and "fungible"/"spl".
func ParseAssetKind(s string) (AssetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native", "sol":
		return AssetNative, nil
	case "fungible", "spl", "token":
		return AssetFungible, nil
	default:
		return 0, fmt.Errorf("unknown asset kind: %s", s)
	}
}

// DepositRequest is a single user deposit. It is built fresh per action and
// never shared between builds.
type DepositRequest struct {
	Asset AssetKind
	// Mint is required for fungible deposits (base58 or 32-byte hex).
	Mint string
	// Amount in human units, e.g. 1.5 SOL.
	Amount   decimal.Decimal
	Decimals uint8
	// DestinationAddress is the 20-byte beneficiary on the destination chain, 0x-prefixed hex.
	DestinationAddress string
	// Signer is the depositor and fee payer.
	Signer solana.PublicKey
}

// Blockhash is the freshness anchor of a transaction.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

// ChainReader is the read-only chain collaborator. GetAccountInfo returns a
// nil account and nil error when the account does not exist.
type ChainReader interface {
	GetRecentBlockhash(ctx context.Context) (Blockhash, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.Account, error)
}

// Broadcaster submits signed transactions.
type Broadcaster interface {
	BroadcastTransaction(ctx context.Context, tx *solana.Transaction) (string, error)
}

// Signer signs and submits a transaction, returning its signature as the
// confirmation handle.
type Signer interface {
	PublicKey() solana.PublicKey
	SignAndSubmit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}
