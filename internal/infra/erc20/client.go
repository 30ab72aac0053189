package erc20

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const erc20ABIJSON = `[
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// Client reads ERC-20 token metadata from the chain.
type Client interface {
	// Decimals returns the decimals() of a token contract.
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	// DecimalsOf reads decimals() of several tokens concurrently, in order.
	DecimalsOf(ctx context.Context, tokens ...common.Address) ([]uint8, error)
}

// EthCaller represents interface for calling contracts.
type EthCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type ethClientImpl struct {
	caller   EthCaller
	tokenABI abi.ABI

	callTimeout time.Duration
}

// NewClient creates a new ERC-20 Client backed by an Ethereum RPC connection.
func NewClient(rpcURL string, callTimeout time.Duration) (Client, error) {
	caller, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "ethclient.Dial")
	}

	return newClientWithCaller(caller, callTimeout)
}

func newClientWithCaller(caller EthCaller, callTimeout time.Duration) (Client, error) {
	tokenABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON")
	}

	return &ethClientImpl{
		caller:   caller,
		tokenABI: tokenABI,

		callTimeout: callTimeout,
	}, nil
}

func (c *ethClientImpl) call(ctx context.Context, to common.Address, method string) ([]interface{}, error) {
	data, err := c.tokenABI.Pack(method)
	if err != nil {
		return nil, errors.Wrap(err, "c.tokenABI.Pack")
	}

	res, err := c.caller.CallContract(
		ctx,
		ethereum.CallMsg{
			To:   &to,
			Data: data,
		},
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "c.caller.CallContract")
	}

	out, err := c.tokenABI.Unpack(method, res)
	if err != nil {
		return nil, errors.Wrap(err, "c.tokenABI.Unpack")
	}

	return out, nil
}

// Decimals returns the decimals() of a token contract.
func (c *ethClientImpl) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	out, err := c.call(ctx, token, "decimals")
	if err != nil {
		return 0, errors.Wrap(err, "c.call")
	}
	if len(out) == 0 {
		return 0, errors.New("empty decimals output")
	}

	dec, ok := out[0].(uint8)
	if !ok {
		return 0, errors.Errorf("failed to cast decimals result of %s to uint8", token.Hex())
	}
	return dec, nil
}

// DecimalsOf reads decimals() of several tokens concurrently, in order.
func (c *ethClientImpl) DecimalsOf(ctx context.Context, tokens ...common.Address) ([]uint8, error) {
	type decimalsResult struct {
		idx int
		dec uint8
		err error
	}

	var wg sync.WaitGroup
	ch := make(chan decimalsResult, len(tokens))

	getDecimals := func(idx int, token common.Address) {
		defer wg.Done()

		select {
		case <-ctx.Done():
			ch <- decimalsResult{idx: idx, err: errors.Wrap(ctx.Err(), "context cancelled before call")}
			return
		default:
		}

		dec, err := c.Decimals(ctx, token)
		if err != nil {
			ch <- decimalsResult{idx: idx, err: errors.Wrapf(err, "failed to read decimals of %s", token.Hex())}
			return
		}
		ch <- decimalsResult{idx: idx, dec: dec}
	}

	wg.Add(len(tokens))
	for i, token := range tokens {
		go getDecimals(i, token)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var (
		decimals    = make([]uint8, len(tokens))
		combinedErr error
	)

	for result := range ch {
		if result.err != nil {
			combinedErr = multierr.Append(combinedErr, result.err)
			continue
		}
		decimals[result.idx] = result.dec
	}

	if combinedErr != nil {
		return nil, errors.Wrap(combinedErr, "failed to get token decimals")
	}

	return decimals, nil
}
