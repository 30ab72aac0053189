package validate

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
	"github.com/fleshka4/sugar-plan/internal/service/dto"
)

// PlanRequestValidate validates business logic request.
func PlanRequestValidate(req dto.PlanRequest) error {
	if strings.TrimSpace(req.Account) == "" {
		return errors.Wrap(apperrors.ErrMissingAccount, "account cannot be empty")
	}

	if req.AmountIn == nil || req.AmountIn.Sign() < 0 {
		return errors.Wrap(apperrors.ErrBadAmount, "amount cannot be nil or negative")
	}

	if req.Slippage != nil && (math.IsNaN(*req.Slippage) || math.IsInf(*req.Slippage, 0)) {
		return errors.Wrap(apperrors.ErrBadRequest, "slippage must be finite")
	}

	return nil
}
