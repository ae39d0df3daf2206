package errors

// ErrorResponse is the JSON envelope services built on this vocabulary answer
// with. Clients can use it as the structured error shape of such services.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the payload inside ErrorResponse.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse renders e for the wire. Cause is not exposed.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// AppError rebuilds the error a peer service answered with. status is the
// HTTP status the envelope arrived with.
func (r ErrorResponse) AppError(status int) *AppError {
	return &AppError{
		Code:       r.Error.Code,
		Message:    r.Error.Message,
		Retryable:  r.Error.Retryable,
		HTTPStatus: status,
		Details:    r.Error.Details,
	}
}
