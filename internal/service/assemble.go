package service

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
	"github.com/fleshka4/sugar-plan/internal/hexbytes"
	"github.com/fleshka4/sugar-plan/internal/infra/sugar"
	"github.com/fleshka4/sugar-plan/internal/service/dto"
)

// AssemblePlan encodes the planner output into the router call. Missing
// commands encode as "0x" and missing inputs as an empty list.
func AssemblePlan(p sugar.Plan, router string, value *big.Int) (*dto.TxPlan, error) {
	commands, err := hexbytes.ToHex(p.Commands)
	if err != nil {
		return nil, errors.Wrap(err, "commands")
	}

	var items []any
	switch v := p.Inputs.(type) {
	case nil:
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		return nil, errors.Wrapf(apperrors.ErrEncoding, "inputs of type %T is not a sequence", p.Inputs)
	}

	inputs := make([]string, 0, len(items))
	for i, item := range items {
		h, err := hexbytes.ToHex(item)
		if err != nil {
			return nil, errors.Wrapf(err, "inputs[%d]", i)
		}
		inputs = append(inputs, h)
	}

	if value == nil {
		value = new(big.Int)
	}

	return &dto.TxPlan{
		To:       router,
		Commands: commands,
		Inputs:   inputs,
		Value:    value.String(),
	}, nil
}
