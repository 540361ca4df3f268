package dto

// Response is the success envelope shared by every endpoint
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// OK wraps data in a success envelope
func OK(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}
