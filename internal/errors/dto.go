package errors

// ErrorResponse is the envelope every non-2xx API response uses.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the client-facing message and any reportable
// details attached to the error chain. InternalError is only populated
// outside production modes.
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the envelope for a display message.
func NewErrorResponse(display string, details map[string]any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Display: display,
			Details: details,
		},
	}
}
