package dto

import "math/big"

// PlanRequest is a validated swap plan request.
type PlanRequest struct {
	AmountIn *big.Int
	Account  string
	// Slippage is nil when the caller did not supply a usable value.
	Slippage *float64
}

// TxPlan is the router call ready to be signed by the caller.
type TxPlan struct {
	To       string   `json:"to"`
	Commands string   `json:"commands"`
	Inputs   []string `json:"inputs"`
	Value    string   `json:"value"`
}

// PlanResult is the outcome of a successful plan request.
type PlanResult struct {
	AmountOut *big.Int
	Plan      TxPlan
}

// PlanResponse is the wire form of a plan outcome.
type PlanResponse struct {
	OK        bool     `json:"ok"`
	AmountOut *big.Int `json:"amountOut,omitempty"`
	Plan      *TxPlan  `json:"plan,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// NewSuccessResponse wraps a result into {"ok": true, ...}.
func NewSuccessResponse(res *PlanResult) PlanResponse {
	plan := res.Plan
	if plan.Inputs == nil {
		plan.Inputs = []string{}
	}
	return PlanResponse{
		OK:        true,
		AmountOut: res.AmountOut,
		Plan:      &plan,
	}
}

// NewErrorResponse builds {"ok": false, "error": code}.
func NewErrorResponse(code string) PlanResponse {
	return PlanResponse{Error: code}
}
