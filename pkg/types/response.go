package types

// Every endpoint answers with one of two envelopes so the storefront
// client can switch on the top-level key alone.

// SuccessEnvelope wraps any successful payload under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Details is populated only
// for codes whose metadata allows leaking field-level information
// (validation errors); everything else ships code and message alone.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under "error".
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewErrorEnvelope assembles the error envelope in one call.
func NewErrorEnvelope(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}
