package sugar

import (
	"bytes"
	"encoding/json"
	"strings"
)

// TokenRef identifies a token in the registry snapshot.
type TokenRef struct {
	Address             string `json:"token_address"`
	Symbol              string `json:"symbol,omitempty"`
	Decimals            *uint8 `json:"decimals,omitempty"`
	WrappedTokenAddress string `json:"wrapped_token_address,omitempty"`
}

// Key is the registry lookup key (lowercased address).
func (t TokenRef) Key() string {
	return strings.ToLower(strings.TrimSpace(t.Address))
}

// Quote is an opaque quote object. Raw is sent back verbatim when building
// a plan; FromToken is decoded eagerly when present as an object.
type Quote struct {
	Raw       json.RawMessage
	FromToken *TokenRef
}

// UnmarshalJSON keeps the raw object and picks up from_token when it has the
// TokenRef shape. Other shapes of from_token are left alone.
func (q *Quote) UnmarshalJSON(b []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	q.Raw = append(json.RawMessage(nil), b...)
	q.FromToken = nil

	if raw, ok := probe["from_token"]; ok && !isNull(raw) {
		var ref TokenRef
		if err := json.Unmarshal(raw, &ref); err == nil {
			q.FromToken = &ref
		}
	}
	return nil
}

// MarshalJSON returns the raw quote.
func (q Quote) MarshalJSON() ([]byte, error) {
	if len(q.Raw) == 0 {
		return []byte("null"), nil
	}
	return q.Raw, nil
}

// Plan is the planner output. Commands and Inputs keep whatever JSON shape the
// planner produced (numbers decoded as json.Number).
type Plan struct {
	Commands any
	Inputs   any
}

// UnmarshalJSON decodes commands and inputs without committing to a shape.
func (p *Plan) UnmarshalJSON(b []byte) error {
	var body struct {
		Commands any `json:"commands"`
		Inputs   any `json:"inputs"`
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return err
	}
	p.Commands = body.Commands
	p.Inputs = body.Inputs
	return nil
}

// Settings exposes the chain settings the plan depends on.
type Settings struct {
	RouterAddress   string   `json:"swapper_contract_addr"`
	DefaultSlippage *float64 `json:"swap_slippage,omitempty"`
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
