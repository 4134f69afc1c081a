package api

import "github.com/shopspring/decimal"

// DepositRequest is the body of POST /api/v1/deposits. Amount accepts a JSON
// string or number. Decimals and, for fungible deposits, mint default to the
// configured asset settings.
type DepositRequest struct {
	Asset              string          `json:"asset"`
	Mint               string          `json:"mint,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Decimals           *uint8          `json:"decimals,omitempty"`
	DestinationAddress string          `json:"destination_address"`
	Signer             string          `json:"signer"`
}

// AccountResponse is one account reference of the built instruction.
type AccountResponse struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Writable bool   `json:"writable"`
	Signer   bool   `json:"signer"`
}

// DepositResponse carries the unsigned transaction for the wallet.
type DepositResponse struct {
	Asset                string            `json:"asset"`
	Instruction          string            `json:"instruction"`
	Transaction          string            `json:"transaction"`
	Payload              string            `json:"payload"`
	AmountBaseUnits      string            `json:"amount_base_units"`
	Beneficiary          string            `json:"beneficiary"`
	Blockhash            string            `json:"blockhash"`
	LastValidBlockHeight uint64            `json:"last_valid_block_height"`
	Accounts             []AccountResponse `json:"accounts"`
}

// DiscriminatorResponse is returned by GET /api/v1/discriminators/{name}.
type DiscriminatorResponse struct {
	Name          string `json:"name"`
	Discriminator string `json:"discriminator"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
