package service

import (
	"math/big"
	"strings"

	"github.com/fleshka4/sugar-plan/internal/infra/sugar"
)

// Sentinel addresses standing in for the chain's native asset.
const (
	NativeSentinelEEEE = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
	NativeSentinelZero = "0x0000000000000000000000000000000000000000"
)

// NativeValue is the msg.value decision for the router call.
type NativeValue struct {
	IsNative bool
	Value    *big.Int
}

// ResolveNative reports whether from is the native asset. The router call
// carries amountIn as value only in that case.
func ResolveNative(from *sugar.TokenRef, amountIn *big.Int) NativeValue {
	if !isNative(from) || amountIn == nil {
		return NativeValue{Value: new(big.Int)}
	}
	return NativeValue{IsNative: true, Value: new(big.Int).Set(amountIn)}
}

func isNative(t *sugar.TokenRef) bool {
	if t == nil || strings.TrimSpace(t.WrappedTokenAddress) == "" {
		return false
	}
	addr := strings.TrimSpace(t.Address)
	return strings.EqualFold(addr, NativeSentinelEEEE) || strings.EqualFold(addr, NativeSentinelZero)
}
