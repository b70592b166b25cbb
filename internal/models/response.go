package models

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// NewValidationErrorResponse creates a validation error response listing every violation
func NewValidationErrorResponse(messages []string) ErrorResponse {
	return ErrorResponse{
		Error:  "validation failed",
		Errors: messages,
	}
}
