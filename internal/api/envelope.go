package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the response wrapper changes shape.
const envelopeVersion = 1

// envelope is the wire wrapper around every typed API response.
// The version field is named exactly "v"; clients key on it.
type envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the {v, success, data}
// envelope. Errors carry a flat error string plus, when available, the
// machine-readable code/message/details triple.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	success := len(status) > 0 && status[0] == '2'
	return &envelope{
		V:       envelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}
