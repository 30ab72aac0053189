package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fleshka4/sugar-plan/internal/infra/erc20"
	"github.com/fleshka4/sugar-plan/internal/infra/sugar"
	"github.com/fleshka4/sugar-plan/internal/service/dto"
)

// Service represents interface for business logic.
type Service interface {
	Plan(ctx context.Context, req dto.PlanRequest) (*dto.PlanResult, error)
}

// Options configures PlannerService.
type Options struct {
	// TokenIn and TokenOut are the registry addresses of the swapped pair.
	TokenIn  string
	TokenOut string
	// DefaultSlippage applies when neither the request nor the chain settings carry one.
	DefaultSlippage float64
	// DefaultDecimals applies when a token's decimals cannot be resolved.
	DefaultDecimals uint8
}

// PlannerService builds swap plans on top of the Sugar service.
type PlannerService struct {
	sugarClient sugar.Client
	tokenReader erc20.Client
	opts        Options
	logger      *zap.Logger
}

// NewPlannerService creates PlannerService. tokenReader may be nil, in which
// case unknown decimals fall back to opts.DefaultDecimals.
func NewPlannerService(cli sugar.Client, tokenReader erc20.Client, opts Options, logger *zap.Logger) *PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		sugarClient: cli,
		tokenReader: tokenReader,
		opts:        opts,
		logger:      logger,
	}
}
