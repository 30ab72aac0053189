package service

import (
	"context"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
	"github.com/fleshka4/sugar-plan/internal/dexmath"
	"github.com/fleshka4/sugar-plan/internal/infra/sugar"
	"github.com/fleshka4/sugar-plan/internal/service/dto"
	"github.com/fleshka4/sugar-plan/internal/service/validate"
)

// Plan performs the complete swap planning flow.
//
// It resolves both tokens from the registry snapshot, hands the input amount
// to the quoting service, normalizes the quote's output amount, asks the
// planner for router commands and encodes them into a router call. Every step
// runs sequentially; a step never starts before the previous one returned.
func (s *PlannerService) Plan(ctx context.Context, req dto.PlanRequest) (*dto.PlanResult, error) {
	if err := validate.PlanRequestValidate(req); err != nil {
		return nil, err
	}

	tokenIn, tokenOut, err := s.resolveTokens(ctx)
	if err != nil {
		return nil, err
	}
	decIn, decOut := s.resolveDecimals(ctx, tokenIn, tokenOut)

	// The quoter receives the amount after a trip through its human form so
	// that both sides agree on the scaled value.
	human := dexmath.ToHuman(req.AmountIn, decIn)
	amountIn, err := dexmath.ToBaseUnits(human.String(), decIn)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrBadAmount, err.Error())
	}
	s.logger.Debug("requesting quote",
		zap.String("from", tokenIn.Address),
		zap.String("to", tokenOut.Address),
		zap.String("amount_human", human.String()),
	)

	quote, err := s.sugarClient.GetQuote(ctx, tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrProvider, "s.sugarClient.GetQuote: %v", err)
	}
	if quote == nil {
		return nil, apperrors.ErrNoRoute
	}

	amountOut, err := ExtractOutputAmount(*quote, decOut)
	if err != nil {
		return nil, errors.Wrap(err, "ExtractOutputAmount")
	}

	settings, err := s.sugarClient.Settings(ctx)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrProvider, "s.sugarClient.Settings: %v", err)
	}
	router := strings.TrimSpace(settings.RouterAddress)
	if router == "" {
		return nil, errors.Wrap(apperrors.ErrProvider, "settings carry no router address")
	}
	slippage := s.resolveSlippage(req.Slippage, settings)

	plan, err := s.sugarClient.BuildPlan(ctx, *quote, slippage, req.Account, router)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrProvider, "s.sugarClient.BuildPlan: %v", err)
	}
	if plan == nil {
		plan = &sugar.Plan{}
	}

	from := quote.FromToken
	if from == nil {
		from = &tokenIn
	}
	native := ResolveNative(from, req.AmountIn)

	tx, err := AssemblePlan(*plan, router, native.Value)
	if err != nil {
		return nil, errors.Wrap(err, "AssemblePlan")
	}

	s.logger.Debug("plan assembled",
		zap.String("amount_out", amountOut.String()),
		zap.Float64("slippage", slippage),
		zap.Bool("native", native.IsNative),
		zap.Int("inputs", len(tx.Inputs)),
	)

	return &dto.PlanResult{AmountOut: amountOut, Plan: *tx}, nil
}

func (s *PlannerService) resolveTokens(ctx context.Context) (sugar.TokenRef, sugar.TokenRef, error) {
	tokens, err := s.sugarClient.ListTokens(ctx)
	if err != nil {
		return sugar.TokenRef{}, sugar.TokenRef{}, errors.Wrapf(apperrors.ErrProvider, "s.sugarClient.ListTokens: %v", err)
	}

	byAddr := make(map[string]sugar.TokenRef, len(tokens))
	for _, t := range tokens {
		byAddr[t.Key()] = t
	}

	tokenIn, okIn := byAddr[strings.ToLower(s.opts.TokenIn)]
	tokenOut, okOut := byAddr[strings.ToLower(s.opts.TokenOut)]
	if !okIn || !okOut {
		return sugar.TokenRef{}, sugar.TokenRef{}, errors.Wrapf(apperrors.ErrTokenMapMissing,
			"in=%t out=%t", okIn, okOut)
	}
	return tokenIn, tokenOut, nil
}

// resolveDecimals fills in decimals the registry did not report, first from
// the chain and then from the configured default.
func (s *PlannerService) resolveDecimals(ctx context.Context, tokenIn, tokenOut sugar.TokenRef) (uint8, uint8) {
	tokens := []sugar.TokenRef{tokenIn, tokenOut}
	decimals := make([]uint8, len(tokens))
	var (
		missing []common.Address
		slots   []int
	)
	for i, t := range tokens {
		if t.Decimals != nil {
			decimals[i] = *t.Decimals
			continue
		}
		decimals[i] = s.opts.DefaultDecimals
		if common.IsHexAddress(t.Address) {
			missing = append(missing, common.HexToAddress(t.Address))
			slots = append(slots, i)
		}
	}

	if len(missing) > 0 && s.tokenReader != nil {
		onChain, err := s.tokenReader.DecimalsOf(ctx, missing...)
		if err == nil && len(onChain) != len(missing) {
			err = errors.Errorf("got %d decimals for %d tokens", len(onChain), len(missing))
		}
		if err != nil {
			s.logger.Warn("falling back to default decimals",
				zap.Error(err),
				zap.Uint8("decimals", s.opts.DefaultDecimals),
			)
		} else {
			for j, idx := range slots {
				decimals[idx] = onChain[j]
			}
		}
	}

	return decimals[0], decimals[1]
}

func (s *PlannerService) resolveSlippage(requested *float64, settings sugar.Settings) float64 {
	if requested != nil {
		return *requested
	}
	if d := settings.DefaultSlippage; d != nil && !math.IsNaN(*d) && !math.IsInf(*d, 0) {
		return *d
	}
	return s.opts.DefaultSlippage
}
