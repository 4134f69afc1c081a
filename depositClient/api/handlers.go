package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"

	"github.com/pushchain/svm-deposit-encoder/depositClient/chains/svm"
	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil && !s.health.IsHealthy(r.Context()) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("UNAVAILABLE"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleBuildDeposit handles POST /api/v1/deposits
func (s *Server) handleBuildDeposit(w http.ResponseWriter, r *http.Request) {
	var body DepositRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid request body: %v", err),
			Code:  string(deperrors.ErrCodeValidation),
		})
		return
	}

	req, err := s.toDepositRequest(body)
	if err != nil {
		s.writeDepositError(w, err)
		return
	}

	result, err := s.encoder.Build(r.Context(), req)
	if err != nil {
		s.writeDepositError(w, err)
		return
	}

	resp, err := toDepositResponse(req.Asset, result)
	if err != nil {
		s.writeDepositError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleDiscriminator handles GET /api/v1/discriminators/{name}
func (s *Server) handleDiscriminator(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	disc, err := s.discriminators.Resolve(svm.InstructionName(name))
	if err != nil {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("unknown instruction %s", name)})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DiscriminatorResponse{
		Name:          name,
		Discriminator: hexutil.Encode(disc[:]),
	})
}

func (s *Server) toDepositRequest(body DepositRequest) (svm.DepositRequest, error) {
	kind, err := svm.ParseAssetKind(body.Asset)
	if err != nil {
		return svm.DepositRequest{}, deperrors.NewValidationError(err.Error())
	}

	signer, err := solana.PublicKeyFromBase58(body.Signer)
	if err != nil {
		return svm.DepositRequest{}, deperrors.NewValidationError(fmt.Sprintf("invalid signer %q", body.Signer))
	}

	cfg := s.encoder.Config()
	params := cfg.Native
	if kind == svm.AssetFungible {
		params = cfg.Fungible
	}

	decimals := params.Decimals
	if body.Decimals != nil {
		decimals = *body.Decimals
	}

	mint := body.Mint
	if kind == svm.AssetFungible && mint == "" && !params.Mint.IsZero() {
		mint = params.Mint.String()
	}

	return svm.DepositRequest{
		Asset:              kind,
		Mint:               mint,
		Amount:             body.Amount,
		Decimals:           decimals,
		DestinationAddress: body.DestinationAddress,
		Signer:             signer,
	}, nil
}

func toDepositResponse(kind svm.AssetKind, result *svm.BuildResult) (*DepositResponse, error) {
	b64, err := result.Transaction.Base64()
	if err != nil {
		return nil, err
	}
	data, err := result.Instruction.Data()
	if err != nil {
		return nil, deperrors.NewInternalError("failed to read instruction data", err)
	}
	name, err := svm.InstructionForAsset(kind)
	if err != nil {
		return nil, err
	}

	names := svm.AccountLayoutNames(kind)
	metas := result.Instruction.Accounts()
	accounts := make([]AccountResponse, 0, len(metas))
	for i, meta := range metas {
		acc := AccountResponse{
			Address:  meta.PublicKey.String(),
			Writable: meta.IsWritable,
			Signer:   meta.IsSigner,
		}
		if i < len(names) {
			acc.Name = names[i]
		}
		accounts = append(accounts, acc)
	}

	return &DepositResponse{
		Asset:                kind.String(),
		Instruction:          string(name),
		Transaction:          b64,
		Payload:              hexutil.Encode(data),
		AmountBaseUnits:      strconv.FormatUint(result.AmountBaseUnits, 10),
		Beneficiary:          result.Beneficiary.Hex(),
		Blockhash:            result.Transaction.Blockhash.Hash.String(),
		LastValidBlockHeight: result.Transaction.Blockhash.LastValidBlockHeight,
		Accounts:             accounts,
	}, nil
}

// statusForCode maps a deposit error code to an HTTP status.
func statusForCode(code deperrors.ErrorCode) int {
	switch code {
	case deperrors.ErrCodeInvalidDestinationLength,
		deperrors.ErrCodeEncodingOverflow,
		deperrors.ErrCodeAmountOverflow,
		deperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case deperrors.ErrCodeUnresolvedAccount:
		return http.StatusUnprocessableEntity
	case deperrors.ErrCodeNetworkUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeDepositError(w http.ResponseWriter, err error) {
	code := deperrors.CodeOf(err)
	status := statusForCode(code)

	message := err.Error()
	var depErr *deperrors.DepositError
	if errors.As(err, &depErr) {
		message = depErr.Message
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("deposit build failed")
	}

	writeError(w, status, ErrorResponse{Error: message, Code: string(code)})
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
