package svm

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// fixedHasher returns the same digest for every input.
type fixedHasher struct{ digest []byte }

func (f fixedHasher) Sum([]byte) []byte { return f.digest }

func TestDiscriminatorResolver_AnchorVectors(t *testing.T) {
	r := NewDiscriminatorResolver(nil)

	tests := []struct {
		name InstructionName
		want string
	}{
		{DepositAndCall, "4121bac672df8539"},
		{DepositSPLTokenAndCall, "0eb51bbbab3ded93"},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got, err := r.Resolve(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(got[:]))

			full := sha256.Sum256([]byte("global:" + string(tt.name)))
			assert.Equal(t, full[:8], got[:])
		})
	}
}

func TestDiscriminatorResolver_DeterministicAndDistinct(t *testing.T) {
	r := NewDiscriminatorResolver(SHA256Hasher{})

	first, err := r.Resolve(DepositAndCall)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := r.Resolve(DepositAndCall)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	spl, err := r.Resolve(DepositSPLTokenAndCall)
	require.NoError(t, err)
	assert.NotEqual(t, first, spl)
}

func TestDiscriminatorResolver_InjectedHasher(t *testing.T) {
	digest := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	r := NewDiscriminatorResolver(fixedHasher{digest: digest})

	got, err := r.Resolve(DepositAndCall)
	require.NoError(t, err)
	assert.Equal(t, digest[:8], got[:])

	keccak := NewDiscriminatorResolver(Keccak256Hasher{})
	got, err = keccak.Resolve(DepositAndCall)
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256([]byte("global:deposit_and_call"))[:8], got[:])
}

func TestDiscriminatorResolver_Errors(t *testing.T) {
	_, err := NewDiscriminatorResolver(nil).Resolve("withdraw")
	require.Error(t, err)
	assert.ErrorIs(t, err, deperrors.ErrInternal)

	_, err = NewDiscriminatorResolver(fixedHasher{digest: []byte{1, 2}}).Resolve(DepositAndCall)
	assert.ErrorIs(t, err, deperrors.ErrInternal)
}

func TestInstructionForAsset(t *testing.T) {
	name, err := InstructionForAsset(AssetNative)
	require.NoError(t, err)
	assert.Equal(t, DepositAndCall, name)

	name, err = InstructionForAsset(AssetFungible)
	require.NoError(t, err)
	assert.Equal(t, DepositSPLTokenAndCall, name)

	_, err = InstructionForAsset(AssetKind(7))
	assert.ErrorIs(t, err, deperrors.ErrInternal)
}
