package svm

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/pushchain/svm-deposit-encoder/depositClient/config"
	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// ParseAmount parses a human-entered positive decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, deperrors.NewValidationError(fmt.Sprintf("invalid amount %q", s))
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, deperrors.NewValidationError(fmt.Sprintf("amount must be positive, got %s", amount.String()))
	}
	return amount, nil
}

// NormalizeAmount converts a human amount into base units:
// floor(amount * 10^decimals), plus the fee when the policy enables one.
// Results outside the u64 range are rejected, never wrapped.
func NormalizeAmount(amount decimal.Decimal, decimals uint8, fee config.FeePolicy) (uint64, error) {
	if decimals > constant.MaxDecimals {
		return 0, deperrors.NewValidationError(fmt.Sprintf("decimals must be between 0 and %d, got %d", constant.MaxDecimals, decimals))
	}
	if amount.IsNegative() {
		return 0, deperrors.NewValidationError("amount must not be negative")
	}

	scaled := amount.Mul(decimal.New(1, int32(decimals))).Floor()
	base, overflow := uint256.FromBig(scaled.BigInt())
	if overflow || !base.IsUint64() {
		return 0, deperrors.NewAmountOverflowError(
			fmt.Sprintf("%s with %d decimals does not fit in 64 bits", amount.String(), decimals))
	}

	if fee.Enabled && fee.Amount > 0 {
		total, carry := new(uint256.Int).AddOverflow(base, uint256.NewInt(fee.Amount))
		if carry || !total.IsUint64() {
			return 0, deperrors.NewAmountOverflowError(
				fmt.Sprintf("%s plus fee %d does not fit in 64 bits", scaled.String(), fee.Amount))
		}
		base = total
	}

	return base.Uint64(), nil
}

// EncodeAmountLE encodes a base-unit amount as one little-endian u64.
func EncodeAmountLE(v uint64) [constant.AmountSize]byte {
	var out [constant.AmountSize]byte
	binary.LittleEndian.PutUint64(out[:], v)
	return out
}

// DecodeAmountLE is the inverse of EncodeAmountLE.
func DecodeAmountLE(b [constant.AmountSize]byte) uint64 {
	return binary.LittleEndian.Uint64(b[:])
}
