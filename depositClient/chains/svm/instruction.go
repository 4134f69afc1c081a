package svm

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/pushchain/svm-deposit-encoder/depositClient/constant"
	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// InstructionPayload is the gateway instruction data:
//
//	discriminator(8) | amount u64 LE(8) | destination(20) | message len u32 LE(4) | message | revert options(1)
//
// The message is a Borsh Vec<u8>, which is why the length prefix is u32 LE.
type InstructionPayload struct {
	Discriminator [constant.DiscriminatorSize]byte
	Amount        uint64
	Destination   [constant.DestinationSize]byte
	Message       []byte
	RevertOptions byte
}

// Encode serializes the payload.
func (p *InstructionPayload) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(constant.PayloadSize(len(p.Message)))
	encoder := bin.NewBorshEncoder(buf)

	if err := encoder.WriteBytes(p.Discriminator[:], false); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint64(p.Amount, bin.LE); err != nil {
		return nil, err
	}
	if err := encoder.WriteBytes(p.Destination[:], false); err != nil {
		return nil, err
	}
	if err := encoder.WriteBytes(p.Message, true); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint8(p.RevertOptions); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodePayload parses instruction data produced by Encode.
func DecodePayload(data []byte) (*InstructionPayload, error) {
	decoder := bin.NewBorshDecoder(data)
	p := &InstructionPayload{}

	disc, err := decoder.ReadNBytes(constant.DiscriminatorSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read discriminator: %w", err)
	}
	copy(p.Discriminator[:], disc)

	if p.Amount, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, fmt.Errorf("failed to read amount: %w", err)
	}

	dest, err := decoder.ReadNBytes(constant.DestinationSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read destination: %w", err)
	}
	copy(p.Destination[:], dest)

	msgLen, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("failed to read message length: %w", err)
	}
	if p.Message, err = decoder.ReadNBytes(int(msgLen)); err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	if p.RevertOptions, err = decoder.ReadUint8(); err != nil {
		return nil, fmt.Errorf("failed to read revert options: %w", err)
	}
	if decoder.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after payload", decoder.Remaining())
	}
	return p, nil
}

// Instruction is a built gateway deposit instruction. It implements
// solana.Instruction.
type Instruction struct {
	Kind     AssetKind
	Program  solana.PublicKey
	Metas    solana.AccountMetaSlice
	Payload  InstructionPayload
	dataBuff []byte
}

var _ solana.Instruction = (*Instruction)(nil)

func (ix *Instruction) ProgramID() solana.PublicKey {
	return ix.Program
}

func (ix *Instruction) Accounts() []*solana.AccountMeta {
	return ix.Metas
}

func (ix *Instruction) Data() ([]byte, error) {
	out := make([]byte, len(ix.dataBuff))
	copy(out, ix.dataBuff)
	return out, nil
}

// DepositParams are the encoded pieces combined into one payload.
type DepositParams struct {
	Discriminator [constant.DiscriminatorSize]byte
	Amount        uint64
	// Destination is the 20-byte contract on the destination chain.
	Destination   []byte
	Message       []byte
	RevertOptions byte
}

// InstructionBuilder assembles deposit instructions. It holds no per-build state.
type InstructionBuilder struct {
	programID solana.PublicKey
	frameSize int
}

// NewInstructionBuilder creates a builder for a gateway program and message frame.
func NewInstructionBuilder(programID solana.PublicKey, frameSize int) *InstructionBuilder {
	if frameSize <= 0 {
		frameSize = constant.MessageFrameSize
	}
	return &InstructionBuilder{programID: programID, frameSize: frameSize}
}

// Build dispatches on the asset kind.
func (b *InstructionBuilder) Build(kind AssetKind, accounts *ResolvedAccounts, params DepositParams) (*Instruction, error) {
	switch kind {
	case AssetNative:
		return b.BuildNativeDeposit(accounts, params)
	case AssetFungible:
		return b.BuildFungibleDeposit(accounts, params)
	default:
		return nil, deperrors.NewInternalError("unknown asset kind "+kind.String(), nil)
	}
}

// BuildNativeDeposit builds deposit_and_call:
// [signer (w, s), vault (w), system program].
func (b *InstructionBuilder) BuildNativeDeposit(accounts *ResolvedAccounts, params DepositParams) (*Instruction, error) {
	if accounts == nil {
		return nil, deperrors.NewInternalError("accounts are required", nil)
	}
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Signer, true, true),
		solana.NewAccountMeta(accounts.Vault, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return b.assemble(AssetNative, metas, params)
}

// BuildFungibleDeposit builds deposit_spl_token_and_call:
// [signer (w, s), vault (w), whitelist, mint, token program,
// sender token account (w), vault token account (w), system program].
func (b *InstructionBuilder) BuildFungibleDeposit(accounts *ResolvedAccounts, params DepositParams) (*Instruction, error) {
	if accounts == nil {
		return nil, deperrors.NewInternalError("accounts are required", nil)
	}
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Signer, true, true),
		solana.NewAccountMeta(accounts.Vault, true, false),
		solana.NewAccountMeta(accounts.Whitelist, false, false),
		solana.NewAccountMeta(accounts.Mint, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(accounts.SenderTokenAccount, true, false),
		solana.NewAccountMeta(accounts.VaultTokenAccount, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return b.assemble(AssetFungible, metas, params)
}

func (b *InstructionBuilder) assemble(kind AssetKind, metas solana.AccountMetaSlice, params DepositParams) (*Instruction, error) {
	if len(params.Destination) != constant.DestinationSize {
		return nil, deperrors.NewInvalidDestinationLengthError("destination", len(params.Destination))
	}
	if len(params.Message) > b.frameSize {
		return nil, deperrors.NewEncodingOverflowError(len(params.Message), b.frameSize)
	}
	if len(params.Message) != b.frameSize {
		return nil, deperrors.NewInternalError(
			fmt.Sprintf("message is %d bytes, expected a %d byte frame", len(params.Message), b.frameSize), nil)
	}
	if err := ValidateAccountLayout(kind, metas); err != nil {
		return nil, err
	}

	payload := InstructionPayload{
		Discriminator: params.Discriminator,
		Amount:        params.Amount,
		Message:       params.Message,
		RevertOptions: params.RevertOptions,
	}
	copy(payload.Destination[:], params.Destination)

	data, err := payload.Encode()
	if err != nil {
		return nil, deperrors.NewInternalError("failed to encode instruction payload", err)
	}
	if len(data) != constant.PayloadSize(b.frameSize) {
		return nil, deperrors.NewInternalError(
			fmt.Sprintf("payload is %d bytes, expected %d", len(data), constant.PayloadSize(b.frameSize)), nil)
	}

	return &Instruction{
		Kind:     kind,
		Program:  b.programID,
		Metas:    metas,
		Payload:  payload,
		dataBuff: data,
	}, nil
}

// accountSlot describes one fixed position in a deposit account list.
type accountSlot struct {
	name     string
	writable bool
	signer   bool
	// fixed is set for program accounts whose key is part of the layout.
	fixed *solana.PublicKey
}

var (
	nativeLayout = []accountSlot{
		{name: "signer", writable: true, signer: true},
		{name: "vault", writable: true},
		{name: "system_program", fixed: &solana.SystemProgramID},
	}
	fungibleLayout = []accountSlot{
		{name: "signer", writable: true, signer: true},
		{name: "vault", writable: true},
		{name: "whitelist"},
		{name: "mint"},
		{name: "token_program", fixed: &solana.TokenProgramID},
		{name: "sender_token_account", writable: true},
		{name: "vault_token_account", writable: true},
		{name: "system_program", fixed: &solana.SystemProgramID},
	}
)

// ValidateAccountLayout checks an account list against the gateway's fixed
// ordering for the asset kind. The gateway rejects or misreads any deviation.
func ValidateAccountLayout(kind AssetKind, metas solana.AccountMetaSlice) error {
	var layout []accountSlot
	switch kind {
	case AssetNative:
		layout = nativeLayout
	case AssetFungible:
		layout = fungibleLayout
	default:
		return deperrors.NewInternalError("unknown asset kind "+kind.String(), nil)
	}

	if len(metas) != len(layout) {
		return deperrors.NewInternalError(
			fmt.Sprintf("%s deposit expects %d accounts, got %d", kind, len(layout), len(metas)), nil)
	}

	for i, slot := range layout {
		meta := metas[i]
		if meta == nil || (slot.fixed == nil && meta.PublicKey.IsZero()) {
			return deperrors.NewInternalError(fmt.Sprintf("account %d (%s) is not set", i, slot.name), nil)
		}
		if meta.IsWritable != slot.writable || meta.IsSigner != slot.signer {
			return deperrors.NewInternalError(
				fmt.Sprintf("account %d (%s) has writable=%t signer=%t, expected writable=%t signer=%t",
					i, slot.name, meta.IsWritable, meta.IsSigner, slot.writable, slot.signer), nil)
		}
		if slot.fixed != nil && !meta.PublicKey.Equals(*slot.fixed) {
			return deperrors.NewInternalError(
				fmt.Sprintf("account %d (%s) must be %s, got %s", i, slot.name, slot.fixed, meta.PublicKey), nil)
		}
	}
	return nil
}

// AccountLayoutNames returns the slot names of the account list for kind.
func AccountLayoutNames(kind AssetKind) []string {
	var layout []accountSlot
	switch kind {
	case AssetNative:
		layout = nativeLayout
	case AssetFungible:
		layout = fungibleLayout
	}
	names := make([]string, len(layout))
	for i, slot := range layout {
		names[i] = slot.name
	}
	return names
}
