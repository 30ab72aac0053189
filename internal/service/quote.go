package service

import (
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
	"github.com/fleshka4/sugar-plan/internal/dexmath"
	"github.com/fleshka4/sugar-plan/internal/infra/sugar"
)

// quoteAmounts lists the output amount fields a quote may carry.
type quoteAmounts struct {
	AmountOutWei json.RawMessage `json:"amount_out_wei"`
	AmountOut    json.RawMessage `json:"amount_out"`
}

// outputAmount is the decoded output leg of a quote. Exactly one of the two
// variants is set.
type outputAmount struct {
	// baseUnits comes from amount_out_wei.
	baseUnits *big.Int
	// human comes from amount_out and still needs the output decimals.
	human *decimal.Decimal
}

// ExtractOutputAmount returns the quote's output amount in base units.
//
// amount_out_wei wins when it holds a non-negative integer; otherwise
// amount_out is rescaled by outDecimals. A null or unusable amount_out_wei
// falls through to amount_out.
func ExtractOutputAmount(q sugar.Quote, outDecimals uint8) (*big.Int, error) {
	out, err := decodeOutputAmount(q.Raw)
	if err != nil {
		return nil, err
	}

	if out.baseUnits != nil {
		return out.baseUnits, nil
	}
	amount, err := dexmath.ToBaseUnitsDecimal(*out.human, outDecimals)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrBadQuoteShape, err.Error())
	}
	return amount, nil
}

func decodeOutputAmount(raw json.RawMessage) (outputAmount, error) {
	var fields quoteAmounts
	if err := json.Unmarshal(raw, &fields); err != nil {
		return outputAmount{}, errors.Wrapf(apperrors.ErrBadQuoteShape, "json.Unmarshal: %v", err)
	}

	if s, ok := scalarLiteral(fields.AmountOutWei); ok {
		if v, err := dexmath.ParseBaseUnits(s); err == nil {
			return outputAmount{baseUnits: v}, nil
		}
	}

	if s, ok := scalarLiteral(fields.AmountOut); ok {
		if d, err := decimal.NewFromString(s); err == nil && !d.IsNegative() {
			return outputAmount{human: &d}, nil
		}
	}

	return outputAmount{}, errors.Wrap(apperrors.ErrBadQuoteShape, "neither amount_out_wei nor amount_out is usable")
}

// scalarLiteral returns the text of a JSON number or string. Absent, null and
// composite values are not scalars.
func scalarLiteral(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[', 't', 'f':
		return "", false
	default:
		return string(raw), true
	}
}
