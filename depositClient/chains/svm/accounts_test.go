package svm

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

func TestAccountResolver_Deterministic(t *testing.T) {
	resolver := NewAccountResolver(testProgramID, nil, zerolog.Nop())
	signer := solana.NewWallet().PublicKey()

	first, err := resolver.Resolve(AssetFungible, signer, testMint)
	require.NoError(t, err)
	second, err := resolver.Resolve(AssetFungible, signer, testMint)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	vault, _, err := solana.FindProgramAddress([][]byte{[]byte("meta")}, testProgramID)
	require.NoError(t, err)
	assert.Equal(t, vault, first.Vault)

	whitelist, _, err := solana.FindProgramAddress([][]byte{[]byte("whitelist"), testMint.Bytes()}, testProgramID)
	require.NoError(t, err)
	assert.Equal(t, whitelist, first.Whitelist)

	senderATA, _, err := solana.FindAssociatedTokenAddress(signer, testMint)
	require.NoError(t, err)
	assert.Equal(t, senderATA, first.SenderTokenAccount)

	vaultATA, _, err := solana.FindAssociatedTokenAddress(vault, testMint)
	require.NoError(t, err)
	assert.Equal(t, vaultATA, first.VaultTokenAccount)
	assert.NotEqual(t, first.SenderTokenAccount, first.VaultTokenAccount)

	gotSender, err := resolver.SenderTokenAccount(signer, testMint)
	require.NoError(t, err)
	assert.Equal(t, senderATA, gotSender)
	gotVault, err := resolver.VaultTokenAccount(testMint)
	require.NoError(t, err)
	assert.Equal(t, vaultATA, gotVault)
}

func TestAccountResolver_PerMintWhitelist(t *testing.T) {
	resolver := NewAccountResolver(testProgramID, nil, zerolog.Nop())
	other := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	a, err := resolver.WhitelistPDA(testMint)
	require.NoError(t, err)
	b, err := resolver.WhitelistPDA(other)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	// the vault does not depend on the mint
	vault, err := resolver.VaultPDA()
	require.NoError(t, err)
	otherProgram := NewAccountResolver(solana.NewWallet().PublicKey(), nil, zerolog.Nop())
	otherVault, err := otherProgram.VaultPDA()
	require.NoError(t, err)
	assert.NotEqual(t, vault, otherVault)
}

func TestAccountResolver_NativeSkipsTokenAccounts(t *testing.T) {
	resolver := NewAccountResolver(testProgramID, nil, zerolog.Nop())
	accounts, err := resolver.Resolve(AssetNative, solana.NewWallet().PublicKey(), solana.PublicKey{})
	require.NoError(t, err)

	assert.False(t, accounts.Vault.IsZero())
	assert.True(t, accounts.Whitelist.IsZero())
	assert.True(t, accounts.SenderTokenAccount.IsZero())
	assert.True(t, accounts.VaultTokenAccount.IsZero())
}

func TestAccountResolver_ResolveErrors(t *testing.T) {
	resolver := NewAccountResolver(testProgramID, nil, zerolog.Nop())

	_, err := resolver.Resolve(AssetNative, solana.PublicKey{}, solana.PublicKey{})
	assert.ErrorIs(t, err, deperrors.ErrValidation)

	_, err = resolver.Resolve(AssetFungible, solana.NewWallet().PublicKey(), solana.PublicKey{})
	assert.ErrorIs(t, err, deperrors.ErrUnresolvedAccount)

	_, err = resolver.Resolve(AssetKind(5), solana.NewWallet().PublicKey(), testMint)
	assert.ErrorIs(t, err, deperrors.ErrInternal)
}

func TestAccountResolver_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("all accounts exist", func(t *testing.T) {
		reader := new(MockChainReader)
		reader.On("GetAccountInfo", ctx, mock.Anything).Return(existingAccount(), nil)

		resolver := NewAccountResolver(testProgramID, reader, zerolog.Nop())
		accounts, err := resolver.Resolve(AssetFungible, solana.NewWallet().PublicKey(), testMint)
		require.NoError(t, err)

		require.NoError(t, resolver.Verify(ctx, AssetFungible, accounts))
		reader.AssertNumberOfCalls(t, "GetAccountInfo", 5)
	})

	t.Run("native checks vault only", func(t *testing.T) {
		reader := new(MockChainReader)
		resolver := NewAccountResolver(testProgramID, reader, zerolog.Nop())
		accounts, err := resolver.Resolve(AssetNative, solana.NewWallet().PublicKey(), solana.PublicKey{})
		require.NoError(t, err)

		reader.On("GetAccountInfo", ctx, accounts.Vault).Return(existingAccount(), nil).Once()
		require.NoError(t, resolver.Verify(ctx, AssetNative, accounts))
		reader.AssertExpectations(t)
	})

	t.Run("missing vault token account", func(t *testing.T) {
		reader := new(MockChainReader)
		resolver := NewAccountResolver(testProgramID, reader, zerolog.Nop())
		accounts, err := resolver.Resolve(AssetFungible, solana.NewWallet().PublicKey(), testMint)
		require.NoError(t, err)

		reader.On("GetAccountInfo", ctx, accounts.VaultTokenAccount).Return(nil, nil)
		reader.On("GetAccountInfo", ctx, mock.Anything).Return(existingAccount(), nil)

		err = resolver.Verify(ctx, AssetFungible, accounts)
		require.Error(t, err)
		assert.ErrorIs(t, err, deperrors.ErrUnresolvedAccount)

		var depErr *deperrors.DepositError
		require.True(t, errors.As(err, &depErr))
		assert.Equal(t, accounts.VaultTokenAccount.String(), depErr.Context["account"])
	})

	t.Run("rpc failure", func(t *testing.T) {
		reader := new(MockChainReader)
		reader.On("GetAccountInfo", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

		resolver := NewAccountResolver(testProgramID, reader, zerolog.Nop())
		accounts, err := resolver.Resolve(AssetNative, solana.NewWallet().PublicKey(), solana.PublicKey{})
		require.NoError(t, err)

		err = resolver.Verify(ctx, AssetNative, accounts)
		assert.ErrorIs(t, err, deperrors.ErrNetworkUnavailable)
		assert.True(t, deperrors.IsRetryable(err))
	})

	t.Run("no reader", func(t *testing.T) {
		resolver := NewAccountResolver(testProgramID, nil, zerolog.Nop())
		err := resolver.Verify(ctx, AssetNative, &ResolvedAccounts{})
		assert.ErrorIs(t, err, deperrors.ErrConfig)
	})
}

func TestParseMint(t *testing.T) {
	got, err := ParseMint(" 4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU ")
	require.NoError(t, err)
	assert.Equal(t, testMint, got)

	fromHex, err := ParseMint("0x" + hex.EncodeToString(testMint[:]))
	require.NoError(t, err)
	assert.Equal(t, testMint, fromHex)

	bare, err := ParseMint(hex.EncodeToString(testMint[:]))
	require.NoError(t, err)
	assert.Equal(t, testMint, bare)

	for _, bad := range []string{"", "not-a-key", "0x1234", "11111", "0x"} {
		_, err := ParseMint(bad)
		assert.ErrorIs(t, err, deperrors.ErrValidation, bad)
	}
}

