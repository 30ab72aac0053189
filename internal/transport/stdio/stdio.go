// Package stdio serves one plan request read from a stream.
package stdio

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/fleshka4/sugar-plan/internal/service/dto"
)

// Handler produces a plan response for a raw request payload.
type Handler interface {
	Handle(ctx context.Context, payload []byte) dto.PlanResponse
}

// Run reads the whole of in as one request and writes the response to out
// as a single JSON line. Plan failures are part of the response; only I/O
// errors are returned.
func Run(ctx context.Context, in io.Reader, out io.Writer, h Handler) (dto.PlanResponse, error) {
	payload, err := io.ReadAll(in)
	if err != nil {
		return dto.PlanResponse{}, errors.Wrap(err, "io.ReadAll")
	}

	resp := h.Handle(ctx, payload)
	if err := json.NewEncoder(out).Encode(resp); err != nil {
		return resp, errors.Wrap(err, "json.Encode")
	}
	return resp, nil
}
