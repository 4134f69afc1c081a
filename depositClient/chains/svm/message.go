package svm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// messageArguments is the (string operation, address beneficiary) tuple the
// receiving contract decodes with abi.decode.
var messageArguments = func() abi.Arguments {
	stringType, _ := abi.NewType("string", "", nil)
	addressType, _ := abi.NewType("address", "", nil)
	return abi.Arguments{
		{Name: "operation", Type: stringType},
		{Name: "beneficiary", Type: addressType},
	}
}()

// MessageEncoder ABI encodes the destination message into a fixed frame.
type MessageEncoder struct {
	frameSize int
}

// NewMessageEncoder returns an encoder for the given frame size (0 means 128).
func NewMessageEncoder(frameSize int) *MessageEncoder {
	if frameSize <= 0 {
		frameSize = constant.MessageFrameSize
	}
	return &MessageEncoder{frameSize: frameSize}
}

// FrameSize returns the fixed output length.
func (e *MessageEncoder) FrameSize() int {
	return e.frameSize
}

// Encode packs (tag, beneficiary) and right-pads the result with zeros to the
// frame size. A natural encoding longer than the frame is an EncodingOverflow.
func (e *MessageEncoder) Encode(tag string, beneficiary string) ([]byte, error) {
	addr, err := ParseDestinationAddress("beneficiary", beneficiary)
	if err != nil {
		return nil, err
	}
	return e.EncodeAddress(tag, addr)
}

// EncodeAddress is Encode for an already parsed beneficiary.
func (e *MessageEncoder) EncodeAddress(tag string, beneficiary common.Address) ([]byte, error) {
	packed, err := messageArguments.Pack(tag, beneficiary)
	if err != nil {
		return nil, deperrors.NewInternalError("failed to pack destination message", err)
	}

	if len(packed) > e.frameSize {
		return nil, deperrors.NewEncodingOverflowError(len(packed), e.frameSize)
	}
	if len(packed) == e.frameSize {
		return packed, nil
	}

	frame := make([]byte, e.frameSize)
	copy(frame, packed)
	return frame, nil
}

// Decode reverses Encode using the same ABI rules as the receiving contract.
func (e *MessageEncoder) Decode(frame []byte) (string, common.Address, error) {
	if len(frame) != e.frameSize {
		return "", common.Address{}, deperrors.NewValidationError(
			fmt.Sprintf("message frame must be %d bytes, got %d", e.frameSize, len(frame)))
	}
	return DecodeMessage(frame)
}

// DecodeMessage decodes an ABI (string, address) tuple, ignoring trailing padding.
func DecodeMessage(data []byte) (string, common.Address, error) {
	values, err := messageArguments.Unpack(data)
	if err != nil {
		return "", common.Address{}, deperrors.NewValidationError("failed to decode destination message: " + err.Error())
	}
	if len(values) != 2 {
		return "", common.Address{}, deperrors.NewValidationError(fmt.Sprintf("expected 2 message values, got %d", len(values)))
	}

	tag, ok := values[0].(string)
	if !ok {
		return "", common.Address{}, deperrors.NewValidationError("operation is not a string")
	}
	addr, ok := values[1].(common.Address)
	if !ok {
		return "", common.Address{}, deperrors.NewValidationError("beneficiary is not an address")
	}
	return tag, addr, nil
}

// ParseDestinationAddress decodes a hex identifier on the destination chain.
// Any decoded length other than 20 bytes is an InvalidDestinationLength.
func ParseDestinationAddress(field, s string) (common.Address, error) {
	normalized := strings.TrimSpace(s)
	if strings.HasPrefix(normalized, "0x") || strings.HasPrefix(normalized, "0X") {
		normalized = normalized[2:]
	}

	raw, err := hexutil.Decode("0x" + normalized)
	if err != nil {
		if errors.Is(err, hexutil.ErrOddLength) {
			return common.Address{}, deperrors.NewInvalidDestinationLengthError(field, len(normalized)/2)
		}
		return common.Address{}, deperrors.NewValidationError(fmt.Sprintf("%s is not valid hex: %s", field, s))
	}
	if len(raw) != common.AddressLength {
		return common.Address{}, deperrors.NewInvalidDestinationLengthError(field, len(raw))
	}
	return common.BytesToAddress(raw), nil
}
