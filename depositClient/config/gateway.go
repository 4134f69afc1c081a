package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
)

// FeePolicy is the protocol fee added to a deposit, in the asset's base unit.
type FeePolicy struct {
	Enabled bool
	Amount  uint64
}

// AssetParams are the resolved settings for one asset kind.
type AssetParams struct {
	Decimals uint8
	Fee      FeePolicy
	// Mint is the zero key for the native asset.
	Mint solana.PublicKey
}

// GatewayConfig is the immutable protocol configuration injected into the
// encoder. It is passed by value; none of its fields alias mutable state.
type GatewayConfig struct {
	ProgramID           solana.PublicKey
	DestinationContract common.Address
	OperationTag        string
	MessageFrameSize    int
	RevertOptions       byte
	VerifyAccounts      bool
	Native              AssetParams
	Fungible            AssetParams
}

func (g GatewaySettings) resolve(assets AssetSettings) (GatewayConfig, error) {
	programID, err := solana.PublicKeyFromBase58(g.ProgramID)
	if err != nil {
		return GatewayConfig{}, fmt.Errorf("invalid gateway program id %q: %w", g.ProgramID, err)
	}

	contract, err := hexutil.Decode(ensureHexPrefix(g.DestinationContract))
	if err != nil {
		return GatewayConfig{}, fmt.Errorf("invalid destination contract %q: %w", g.DestinationContract, err)
	}
	if len(contract) != common.AddressLength {
		return GatewayConfig{}, fmt.Errorf("destination contract must be %d bytes, got %d", common.AddressLength, len(contract))
	}

	var mint solana.PublicKey
	if assets.Fungible.Mint != "" {
		mint, err = solana.PublicKeyFromBase58(assets.Fungible.Mint)
		if err != nil {
			return GatewayConfig{}, fmt.Errorf("invalid fungible mint %q: %w", assets.Fungible.Mint, err)
		}
	}

	return GatewayConfig{
		ProgramID:           programID,
		DestinationContract: common.BytesToAddress(contract),
		OperationTag:        g.OperationTag,
		MessageFrameSize:    g.MessageFrameSize,
		RevertOptions:       g.RevertOptions,
		VerifyAccounts:      g.VerifyAccounts,
		Native:              assets.Native.params(solana.PublicKey{}),
		Fungible:            assets.Fungible.params(mint),
	}, nil
}

func (a AssetConfig) params(mint solana.PublicKey) AssetParams {
	var decimals uint8
	if a.Decimals != nil {
		decimals = *a.Decimals
	}
	return AssetParams{
		Decimals: decimals,
		Fee:      FeePolicy{Enabled: a.FeeEnabled, Amount: a.FeeBaseUnits},
		Mint:     mint,
	}
}

func ensureHexPrefix(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return "0x" + s[2:]
	}
	return "0x" + s
}
