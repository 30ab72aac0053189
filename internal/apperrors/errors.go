package apperrors

import "github.com/pkg/errors"

var (
	// ErrMissingAccount is returned when the request has no destination account.
	ErrMissingAccount = errors.New("missing account")

	// ErrBadAmount is returned when amountInWei is not a non-negative integer.
	ErrBadAmount = errors.New("bad amount")

	// ErrBadRequest is returned when the payload is not a JSON object.
	ErrBadRequest = errors.New("bad request")

	// ErrTokenMapMissing is returned when one of the configured tokens is absent
	// from the registry snapshot.
	ErrTokenMapMissing = errors.New("token map missing")

	// ErrNoRoute is returned when the quoting service has no usable quote.
	ErrNoRoute = errors.New("no route")

	// ErrBadQuoteShape is returned when a quote carries neither amount_out_wei
	// nor amount_out in a usable form.
	ErrBadQuoteShape = errors.New("bad quote shape")

	// ErrEncoding is returned when a value cannot be interpreted as bytes.
	ErrEncoding = errors.New("encoding failed")

	// ErrProvider is returned when the token, quote or plan provider fails.
	ErrProvider = errors.New("provider failed")
)

// Wire codes reported in {"ok": false, "error": <code>}.
const (
	CodeMissingAccount  = "missing_account"
	CodeBadAmount       = "bad_amount"
	CodeBadRequest      = "bad_request"
	CodeTokenMapMissing = "token_map_missing"
	CodeNoRoute         = "no_route"
	CodeBadQuoteShape   = "bad_quote_shape"
	CodeEncoding        = "encoding_failed"
	CodeProvider        = "provider_failed"
	CodeInternal        = "internal_error"

	// CodeMissingAmountOrAccount is the HTTP front end's rejection of a body
	// without a usable amountInWei or account.
	CodeMissingAmountOrAccount = "missing_amount_or_account"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrMissingAccount, CodeMissingAccount},
	{ErrBadAmount, CodeBadAmount},
	{ErrBadRequest, CodeBadRequest},
	{ErrTokenMapMissing, CodeTokenMapMissing},
	{ErrNoRoute, CodeNoRoute},
	{ErrBadQuoteShape, CodeBadQuoteShape},
	{ErrEncoding, CodeEncoding},
	{ErrProvider, CodeProvider},
}

// Code maps an error chain to its wire code. Unknown errors are internal.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}
