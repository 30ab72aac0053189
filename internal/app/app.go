// Package app wires the planner from configuration.
package app

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/sugar-plan/internal/config"
	"github.com/fleshka4/sugar-plan/internal/infra/erc20"
	"github.com/fleshka4/sugar-plan/internal/infra/sugar"
	"github.com/fleshka4/sugar-plan/internal/service"
	"github.com/fleshka4/sugar-plan/internal/transport"
)

// NewController builds the request controller with its Sugar and RPC clients.
// A failing RPC dial is not fatal: decimals then fall back to the default.
func NewController(cfg config.Config, logger *zap.Logger) (*transport.Controller, error) {
	if cfg.SugarURL == "" {
		return nil, errors.New("sugar url is empty")
	}

	sugarClient := sugar.NewClient(cfg.SugarURL, cfg.RPCURL, cfg.RequestTimeout)

	var tokenReader erc20.Client
	reader, err := erc20.NewClient(cfg.RPCURL, cfg.CallTimeout)
	if err != nil {
		logger.Warn("on-chain decimals disabled", zap.String("rpc_url", cfg.RPCURL), zap.Error(err))
	} else {
		tokenReader = reader
	}

	svc := service.NewPlannerService(sugarClient, tokenReader, service.Options{
		TokenIn:         cfg.TokenIn,
		TokenOut:        cfg.TokenOut,
		DefaultSlippage: cfg.DefaultSlippage,
		DefaultDecimals: config.DefaultDecimals,
	}, logger)

	return transport.NewController(svc, logger), nil
}
