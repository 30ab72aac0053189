// Package transport turns raw plan requests into plan responses. The HTTP and
// stdio front ends share the same Controller.
package transport

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
	"github.com/fleshka4/sugar-plan/internal/service"
	"github.com/fleshka4/sugar-plan/internal/service/dto"
	transportdto "github.com/fleshka4/sugar-plan/internal/transport/dto"
	"github.com/fleshka4/sugar-plan/internal/transport/validate"
)

// Controller handles a single plan request end to end.
type Controller struct {
	svc    service.Service
	logger *zap.Logger
}

// NewController creates Controller.
func NewController(svc service.Service, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{svc: svc, logger: logger}
}

// Handle decodes payload, runs the planner and reports the outcome. It never
// returns an error: every failure is folded into {"ok": false, "error": code}.
func (c *Controller) Handle(ctx context.Context, payload []byte) dto.PlanResponse {
	p, err := validate.DecodePlanPayload(payload)
	if err != nil {
		return c.fail(err)
	}
	return c.HandlePayload(ctx, p)
}

// HandlePayload is Handle for an already decoded payload.
func (c *Controller) HandlePayload(ctx context.Context, p *transportdto.PlanPayload) (resp dto.PlanResponse) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("plan panicked", zap.String("panic", fmt.Sprint(r)), zap.Stack("stack"))
			resp = dto.NewErrorResponse(apperrors.CodeInternal)
		}
	}()

	req, err := validate.PlanPayloadValidate(p)
	if err != nil {
		return c.fail(err)
	}

	res, err := c.svc.Plan(ctx, *req)
	if err != nil {
		return c.fail(err)
	}
	return dto.NewSuccessResponse(res)
}

func (c *Controller) fail(err error) dto.PlanResponse {
	code := apperrors.Code(err)
	switch code {
	case apperrors.CodeProvider, apperrors.CodeEncoding, apperrors.CodeInternal:
		c.logger.Warn("plan failed", zap.String("code", code), zap.Error(err))
	default:
		c.logger.Debug("plan rejected", zap.String("code", code), zap.Error(err))
	}
	return dto.NewErrorResponse(code)
}
