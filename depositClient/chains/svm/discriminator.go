package svm

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// Hasher is the hash backend used for instruction discriminators.
type Hasher interface {
	Sum(data []byte) []byte
}

// SHA256Hasher is the Anchor discriminator hash.
type SHA256Hasher struct{}

func (SHA256Hasher) Sum(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// Keccak256Hasher hashes with keccak256.
type Keccak256Hasher struct{}

func (Keccak256Hasher) Sum(data []byte) []byte {
	return crypto.Keccak256(data)
}

// InstructionName identifies a gateway instruction handler.
type InstructionName string

const (
	DepositAndCall         InstructionName = constant.InstructionDepositAndCall
	DepositSPLTokenAndCall InstructionName = constant.InstructionDepositSPLTokenAndCall
)

// InstructionForAsset returns the gateway handler for an asset kind.
func InstructionForAsset(kind AssetKind) (InstructionName, error) {
	switch kind {
	case AssetNative:
		return DepositAndCall, nil
	case AssetFungible:
		return DepositSPLTokenAndCall, nil
	default:
		return "", deperrors.NewInternalError("no instruction for asset kind "+kind.String(), nil)
	}
}

// DiscriminatorResolver derives the 8-byte selector the gateway expects.
type DiscriminatorResolver struct {
	hasher Hasher
}

// NewDiscriminatorResolver returns a resolver; a nil hasher means SHA256Hasher.
func NewDiscriminatorResolver(hasher Hasher) *DiscriminatorResolver {
	if hasher == nil {
		hasher = SHA256Hasher{}
	}
	return &DiscriminatorResolver{hasher: hasher}
}

// Resolve returns hash("global:" + name)[:8].
func (r *DiscriminatorResolver) Resolve(name InstructionName) ([constant.DiscriminatorSize]byte, error) {
	var out [constant.DiscriminatorSize]byte
	switch name {
	case DepositAndCall, DepositSPLTokenAndCall:
	default:
		return out, deperrors.NewInternalError("unknown instruction name "+string(name), nil)
	}

	sum := r.hasher.Sum([]byte(constant.DiscriminatorNamespace + string(name)))
	if len(sum) < constant.DiscriminatorSize {
		return out, deperrors.NewInternalError("hasher returned fewer than 8 bytes", nil)
	}
	copy(out[:], sum[:constant.DiscriminatorSize])
	return out, nil
}
