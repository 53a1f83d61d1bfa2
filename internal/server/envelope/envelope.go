package envelope

import "github.com/hivellm/synap/internal/core/domain"

// Envelope is the uniform request shape addressed to the core: {command, request_id, payload}.
type Envelope struct {
	Command   string         `json:"command"`
	RequestID string         `json:"request_id"`
	Payload   map[string]any `json:"payload"`
}

// Response is the uniform reply shape: {success, request_id, payload, error}.
type Response struct {
	Success   bool           `json:"success"`
	RequestID string         `json:"request_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	Error     *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail mirrors domain.DomainError's shape, without requiring callers
// on the wire to depend on the domain package.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func ok(requestID string, payload map[string]any) Response {
	return Response{Success: true, RequestID: requestID, Payload: payload}
}

func fail(requestID, code, message, details string) Response {
	return Response{
		Success:   false,
		RequestID: requestID,
		Error:     &ErrorDetail{Code: code, Message: message, Details: details},
	}
}

// errCode extracts a domain.DomainError's code, falling back to the
// generic internal-error code for anything the engines didn't tag.
func errCode(err error) string {
	if code := domain.GetErrorCode(err); code != "" {
		return code
	}
	return domain.ErrInternal.Code
}
