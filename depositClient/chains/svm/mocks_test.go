package svm

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"
)

// MockChainReader is a mock implementation of ChainReader
type MockChainReader struct {
	mock.Mock
}

func (m *MockChainReader) GetRecentBlockhash(ctx context.Context) (Blockhash, error) {
	args := m.Called(ctx)
	return args.Get(0).(Blockhash), args.Error(1)
}

func (m *MockChainReader) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rpc.Account), args.Error(1)
}

// MockBroadcaster is a mock implementation of Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastTransaction(ctx context.Context, tx *solana.Transaction) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

// testProgramID is the devnet gateway program.
var testProgramID = solana.MustPublicKeyFromBase58("CFVSincHYbETh2k7w6u1ENEkjbSLtveRCEBupKidw2VS")

// testMint is the devnet USDC mint.
var testMint = solana.MustPublicKeyFromBase58("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU")

func existingAccount() *rpc.Account {
	return &rpc.Account{Lamports: 1, Owner: solana.SystemProgramID}
}
