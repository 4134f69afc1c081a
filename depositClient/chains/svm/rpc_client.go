package svm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
	"github.com/pushchain/svm-deposit-encoder/depositClient/metrics"
)

// RPCClient is a read/broadcast Solana client with round-robin failover over
// several endpoints. It implements ChainReader and Broadcaster.
type RPCClient struct {
	clients    []*rpc.Client
	index      uint64
	mu         sync.RWMutex
	commitment rpc.CommitmentType
	logger     zerolog.Logger
}

var (
	_ ChainReader = (*RPCClient)(nil)
	_ Broadcaster = (*RPCClient)(nil)
)

// NewRPCClient connects to every healthy endpoint and, when expectedGenesisHash
// is set, drops endpoints that serve another cluster.
func NewRPCClient(ctx context.Context, rpcURLs []string, expectedGenesisHash string, logger zerolog.Logger) (*RPCClient, error) {
	if len(rpcURLs) == 0 {
		return nil, deperrors.NewConfigError("no RPC URLs provided", nil)
	}

	log := logger.With().Str("component", "svm_rpc_client").Logger()
	clients := make([]*rpc.Client, 0, len(rpcURLs))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, url := range rpcURLs {
		client := rpc.New(url)

		health, err := client.GetHealth(ctx)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to connect to RPC endpoint, skipping")
			continue
		}
		if health != "ok" {
			log.Warn().Str("url", url).Str("health", health).Msg("node is not healthy, skipping")
			continue
		}

		if expectedGenesisHash != "" {
			genesisHash, err := client.GetGenesisHash(ctx)
			if err != nil {
				log.Warn().
					Err(err).
					Str("url", url).
					Msg("failed to verify genesis hash, skipping")
				continue
			}
			if genesisHash.String() != expectedGenesisHash {
				log.Warn().
					Str("url", url).
					Str("expected_genesis_hash", expectedGenesisHash).
					Str("actual_genesis_hash", genesisHash.String()).
					Msg("genesis hash mismatch, skipping")
				continue
			}
		}

		clients = append(clients, client)
		log.Info().Str("url", url).Msg("connected to RPC endpoint")
	}

	if len(clients) == 0 {
		return nil, deperrors.NewNetworkError("failed to connect to any valid RPC endpoints", nil)
	}

	return &RPCClient{
		clients:    clients,
		commitment: rpc.CommitmentFinalized,
		logger:     log,
	}, nil
}

// executeWithFailover runs fn against each endpoint in turn until one succeeds.
func (rc *RPCClient) executeWithFailover(ctx context.Context, operation string, fn func(*rpc.Client) error) error {
	rc.mu.RLock()
	clients := rc.clients
	rc.mu.RUnlock()

	if len(clients) == 0 {
		return deperrors.NewNetworkError(fmt.Sprintf("no RPC clients available for %s", operation), nil)
	}

	var lastErr error
	maxAttempts := len(clients)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			metrics.RPCRequests.WithLabelValues(operation, "canceled").Inc()
			return deperrors.NewNetworkError(fmt.Sprintf("%s canceled", operation), err)
		}

		index := atomic.AddUint64(&rc.index, 1) - 1
		client := clients[index%uint64(len(clients))]

		err := fn(client)
		if err == nil {
			metrics.RPCRequests.WithLabelValues(operation, "success").Inc()
			return nil
		}
		// not-found is an answer, not an endpoint failure
		if errors.Is(err, rpc.ErrNotFound) {
			metrics.RPCRequests.WithLabelValues(operation, "not_found").Inc()
			return err
		}
		lastErr = err

		rc.logger.Warn().
			Str("operation", operation).
			Int("attempt", attempt+1).
			Err(err).
			Msg("operation failed, trying next endpoint")
	}

	metrics.RPCRequests.WithLabelValues(operation, "failure").Inc()
	return deperrors.NewNetworkError(
		fmt.Sprintf("operation %s failed after trying %d endpoints", operation, maxAttempts), lastErr)
}

// IsHealthy reports whether any endpoint answers a slot query.
func (rc *RPCClient) IsHealthy(ctx context.Context) bool {
	rc.mu.RLock()
	hasClients := len(rc.clients) > 0
	rc.mu.RUnlock()

	if !hasClients {
		return false
	}

	_, err := rc.GetLatestSlot(ctx)
	return err == nil
}

// GetLatestSlot returns the latest finalized slot.
func (rc *RPCClient) GetLatestSlot(ctx context.Context) (uint64, error) {
	var slot uint64
	err := rc.executeWithFailover(ctx, "get_slot", func(client *rpc.Client) error {
		var innerErr error
		slot, innerErr = client.GetSlot(ctx, rc.commitment)
		return innerErr
	})
	return slot, err
}

// GetRecentBlockhash gets a recent blockhash for transaction building.
func (rc *RPCClient) GetRecentBlockhash(ctx context.Context) (Blockhash, error) {
	var out Blockhash
	err := rc.executeWithFailover(ctx, "get_recent_blockhash", func(client *rpc.Client) error {
		resp, innerErr := client.GetLatestBlockhash(ctx, rc.commitment)
		if innerErr != nil {
			return innerErr
		}
		if resp == nil || resp.Value == nil {
			return fmt.Errorf("empty blockhash response")
		}
		out = Blockhash{
			Hash:                 resp.Value.Blockhash,
			LastValidBlockHeight: resp.Value.LastValidBlockHeight,
		}
		return nil
	})
	return out, err
}

// GetAccountInfo returns the account, or nil when it does not exist.
func (rc *RPCClient) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.Account, error) {
	var out *rpc.Account
	err := rc.executeWithFailover(ctx, "get_account_info", func(client *rpc.Client) error {
		resp, innerErr := client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: rc.commitment,
		})
		if innerErr != nil {
			return innerErr
		}
		out = resp.Value
		return nil
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	return out, err
}

// GetBalance returns the lamport balance of an account.
func (rc *RPCClient) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var lamports uint64
	err := rc.executeWithFailover(ctx, "get_balance", func(client *rpc.Client) error {
		resp, innerErr := client.GetBalance(ctx, account, rc.commitment)
		if innerErr != nil {
			return innerErr
		}
		lamports = resp.Value
		return nil
	})
	return lamports, err
}

// BroadcastTransaction broadcasts a signed transaction and returns its signature.
func (rc *RPCClient) BroadcastTransaction(ctx context.Context, tx *solana.Transaction) (string, error) {
	if len(tx.Signatures) == 0 {
		return "", deperrors.NewValidationError("transaction has no signatures")
	}
	txHash := tx.Signatures[0].String()

	err := rc.executeWithFailover(ctx, "send_transaction", func(client *rpc.Client) error {
		_, innerErr := client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		return innerErr
	})
	return txHash, err
}

// GetSignatureStatus returns the confirmation status of a submitted
// transaction, or nil when the cluster has not seen it yet.
func (rc *RPCClient) GetSignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	var status *rpc.SignatureStatusesResult
	err := rc.executeWithFailover(ctx, "get_signature_statuses", func(client *rpc.Client) error {
		resp, innerErr := client.GetSignatureStatuses(ctx, true, sig)
		if innerErr != nil {
			return innerErr
		}
		if len(resp.Value) > 0 {
			status = resp.Value[0]
		}
		return nil
	})
	return status, err
}

var confirmationRank = map[rpc.ConfirmationStatusType]int{
	rpc.ConfirmationStatusProcessed: 1,
	rpc.ConfirmationStatusConfirmed: 2,
	rpc.ConfirmationStatusFinalized: 3,
}

var commitmentRank = map[rpc.CommitmentType]int{
	rpc.CommitmentProcessed: 1,
	rpc.CommitmentConfirmed: 2,
	rpc.CommitmentFinalized: 3,
}

// WaitForConfirmation polls until sig reaches the commitment level, fails on
// chain, or ctx ends.
func (rc *RPCClient) WaitForConfirmation(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := rc.GetSignatureStatus(ctx, sig)
		if err != nil {
			rc.logger.Debug().Err(err).Str("signature", sig.String()).Msg("error checking transaction status")
		} else if status != nil {
			if status.Err != nil {
				return deperrors.NewValidationError(fmt.Sprintf("transaction %s failed: %v", sig, status.Err))
			}
			if confirmationRank[status.ConfirmationStatus] >= commitmentRank[commitment] {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return deperrors.NewNetworkError(fmt.Sprintf("timed out waiting for %s", sig), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close drops every endpoint; solana RPC clients hold no connections to close.
func (rc *RPCClient) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.clients = nil
}
