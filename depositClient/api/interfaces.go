package api

import (
	"context"

	"github.com/pushchain/svm-deposit-encoder/depositClient/chains/svm"
	"github.com/pushchain/svm-deposit-encoder/depositClient/config"
)

// DepositBuilder defines the encoder methods needed by the API server
type DepositBuilder interface {
	Build(ctx context.Context, req svm.DepositRequest) (*svm.BuildResult, error)
	Config() config.GatewayConfig
}

// HealthChecker reports whether the chain connection is usable
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}
