package config

// Config is the on-disk configuration of the deposit client.
type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Node Config
	NodeHome string `json:"node_home"` // Node home directory (default: ~/.pdeposit)

	// Query Server Config
	QueryServerPort int `json:"query_server_port"` // Port for HTTP API server (default: 8080)

	// Solana RPC configuration
	RPCURLs     []string `json:"rpc_urls"`               // Solana RPC endpoints, tried round-robin
	GenesisHash string   `json:"genesis_hash,omitempty"` // Optional full base58 genesis hash to pin the cluster

	// Gateway protocol configuration
	Gateway GatewaySettings `json:"gateway"`

	// Per-asset settings
	Assets AssetSettings `json:"assets"`
}

// GatewaySettings holds the process-wide protocol constants in their string form.
type GatewaySettings struct {
	ProgramID           string `json:"program_id"`           // Gateway program (base58)
	DestinationContract string `json:"destination_contract"` // Receiving contract on the destination chain (0x + 40 hex)
	OperationTag        string `json:"operation_tag"`        // Operation the receiving contract performs (default: supply)
	MessageFrameSize    int    `json:"message_frame_size"`   // Fixed ABI message frame (default: 128)
	RevertOptions       uint8  `json:"revert_options"`       // Revert options byte (default: 0, disabled)
	VerifyAccounts      bool   `json:"verify_accounts"`      // Check resolved accounts exist before building
}

// AssetSettings holds settings for the two supported assets.
type AssetSettings struct {
	Native   AssetConfig `json:"native"`
	Fungible AssetConfig `json:"fungible"`
}

// AssetConfig configures one asset kind.
type AssetConfig struct {
	Mint         string `json:"mint,omitempty"` // SPL mint (fungible only)
	Decimals     *uint8 `json:"decimals,omitempty"`
	FeeEnabled   bool   `json:"fee_enabled"`
	FeeBaseUnits uint64 `json:"fee_base_units"` // Fee in the asset's base unit
}
