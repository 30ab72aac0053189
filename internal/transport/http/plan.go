package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/fleshka4/sugar-plan/internal/apperrors"
	"github.com/fleshka4/sugar-plan/internal/service/dto"
	"github.com/fleshka4/sugar-plan/internal/transport/validate"
)

const maxBodyBytes = 1 << 20

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, dto.NewErrorResponse(apperrors.CodeBadRequest))
		return
	}

	// An unreadable body counts as an empty one.
	p, err := validate.DecodePlanPayload(body)
	if err != nil || !p.HasAmount() || !p.HasAccount() {
		s.writeJSON(w, http.StatusBadRequest, dto.NewErrorResponse(apperrors.CodeMissingAmountOrAccount))
		return
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	resp := s.ctrl.HandlePayload(ctx, p)
	s.writeJSON(w, statusFor(resp), resp)
}

// statusFor maps a plan outcome to its HTTP status. Domain rejections are
// reported in the body with 200.
func statusFor(resp dto.PlanResponse) int {
	switch resp.Error {
	case apperrors.CodeProvider:
		return http.StatusBadGateway
	case apperrors.CodeEncoding, apperrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response write error", zap.Error(err))
	}
}
