package constant

import "os"

// <NodeDir>/                    (e.g., /home/depositor/.pdeposit)
// └── config/
//	└── pdeposit_config.json
// └── keys/
//	└── solana.json

const (
	NodeDir = ".pdeposit"

	ConfigSubdir   = "config"
	ConfigFileName = "pdeposit_config.json"

	KeysSubdir = "keys"
)

var DefaultNodeHome = os.ExpandEnv("$HOME/") + NodeDir

// Gateway instruction names. The gateway program selects its handler from
// sha256("global:" + name)[:8].
const (
	InstructionDepositAndCall         = "deposit_and_call"
	InstructionDepositSPLTokenAndCall = "deposit_spl_token_and_call"

	DiscriminatorNamespace = "global:"
	DiscriminatorSize      = 8
)

// PDA seed literals used by the gateway program.
const (
	VaultSeed     = "meta"
	WhitelistSeed = "whitelist"
)

// Fixed framing of the gateway payload.
const (
	// MessageFrameSize is the byte length the receiving contract expects for
	// the ABI encoded (string, address) message.
	MessageFrameSize = 128

	AmountSize        = 8
	DestinationSize   = 20
	MessageLengthSize = 4
	RevertOptionsSize = 1

	// RevertOptionsNone disables revert handling on the destination chain.
	RevertOptionsNone byte = 0x00
)

// Asset defaults.
const (
	NativeDecimals   uint8 = 9
	FungibleDecimals uint8 = 6
	MaxDecimals      uint8 = 18

	// DefaultNativeFeeLamports is the gateway fee added to native deposits (0.002 SOL).
	DefaultNativeFeeLamports uint64 = 2_000_000

	// DefaultOperationTag is the operation the receiving contract performs.
	DefaultOperationTag = "supply"
)

// PayloadSize returns the length of an instruction payload for a message frame.
func PayloadSize(frameSize int) int {
	return DiscriminatorSize + AmountSize + DestinationSize + MessageLengthSize + frameSize + RevertOptionsSize
}
