package validate

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
	"github.com/fleshka4/sugar-plan/internal/dexmath"
	servicedto "github.com/fleshka4/sugar-plan/internal/service/dto"
	"github.com/fleshka4/sugar-plan/internal/transport/dto"
)

// DecodePlanPayload parses a plan request body. An empty body reads as {};
// anything else but a JSON object is rejected with ErrBadRequest.
func DecodePlanPayload(payload []byte) (*dto.PlanPayload, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return &dto.PlanPayload{}, nil
	}
	if payload[0] != '{' {
		return nil, errors.Wrap(apperrors.ErrBadRequest, "payload must be a JSON object")
	}

	var p dto.PlanPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.Wrapf(apperrors.ErrBadRequest, "json.Unmarshal: %v", err)
	}
	return &p, nil
}

// PlanPayloadValidate turns a decoded payload into a service request.
//
// The account is checked first. An absent amountInWei means zero; a present
// one must be a non-negative integer given as a JSON string or number.
// Slippage never fails: unusable values are dropped.
func PlanPayloadValidate(p *dto.PlanPayload) (*servicedto.PlanRequest, error) {
	if p == nil {
		return nil, errors.Wrap(apperrors.ErrBadRequest, "payload is nil")
	}

	account, err := parseAccount(p.Account)
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(p.AmountInWei)
	if err != nil {
		return nil, err
	}

	return &servicedto.PlanRequest{
		AmountIn: amount,
		Account:  account,
		Slippage: parseSlippage(p.Slippage),
	}, nil
}

func parseAccount(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", errors.Wrap(apperrors.ErrMissingAccount, "account is required")
	}

	var account string
	if err := json.Unmarshal(raw, &account); err != nil {
		return "", errors.Wrap(apperrors.ErrBadRequest, "account must be a string")
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return "", errors.Wrap(apperrors.ErrMissingAccount, "account is required")
	}
	return account, nil
}

func parseAmount(raw json.RawMessage) (*big.Int, error) {
	if isAbsent(raw) {
		return new(big.Int), nil
	}

	s, ok := scalar(raw)
	if !ok {
		return nil, errors.Wrap(apperrors.ErrBadAmount, "amountInWei must be a string or a number")
	}
	v, err := dexmath.ParseBaseUnits(s)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrBadAmount, err.Error())
	}
	return v, nil
}

func parseSlippage(raw json.RawMessage) *float64 {
	s, ok := scalar(raw)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// scalar returns the text of a JSON string or number.
func scalar(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if isAbsent(raw) {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw), true
	default:
		return "", false
	}
}
