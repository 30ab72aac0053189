package dto

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PlanPayload represents a raw plan request as received over the wire.
// Fields stay undecoded so that validation can tell absent, null and
// mistyped values apart.
type PlanPayload struct {
	AmountInWei json.RawMessage `json:"amountInWei"`
	Account     json.RawMessage `json:"account"`
	Slippage    json.RawMessage `json:"slippage"`
}

// HasAmount reports whether amountInWei carries a truthy value. Absent,
// null, "", 0 and false are not.
func (p PlanPayload) HasAmount() bool {
	return truthy(p.AmountInWei)
}

// HasAccount reports whether account carries a truthy value.
func (p PlanPayload) HasAccount() bool {
	return truthy(p.Account)
}

func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return err != nil || !d.IsZero()
	default:
		return true
	}
}
