package service

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
	"github.com/fleshka4/sugar-plan/internal/service/dto"
)

const swapperABIJSON = `[
	{"inputs":[{"internalType":"bytes","name":"commands","type":"bytes"},{"internalType":"bytes[]","name":"inputs","type":"bytes[]"}],"name":"execute","outputs":[],"stateMutability":"payable","type":"function"}
]`

var swapperABI = mustParseABI(swapperABIJSON)

func mustParseABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}

// EncodeExecute ABI-encodes the router's execute(bytes,bytes[]) call for plan.
func EncodeExecute(plan dto.TxPlan) (string, error) {
	commands, err := hexutil.Decode(plan.Commands)
	if err != nil {
		return "", errors.Wrapf(apperrors.ErrEncoding, "commands: %v", err)
	}

	inputs := make([][]byte, len(plan.Inputs))
	for i, in := range plan.Inputs {
		b, err := hexutil.Decode(in)
		if err != nil {
			return "", errors.Wrapf(apperrors.ErrEncoding, "inputs[%d]: %v", i, err)
		}
		inputs[i] = b
	}

	data, err := swapperABI.Pack("execute", commands, inputs)
	if err != nil {
		return "", errors.Wrap(err, "swapperABI.Pack")
	}
	return hexutil.Encode(data), nil
}
