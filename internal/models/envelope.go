package models

// Envelope is the response shape shared by remote VPN servers and this API
type Envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

const (
	EnvelopeSuccess = "success"
	EnvelopeError   = "error"
)

// Success builds a successful envelope
func Success[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Status: EnvelopeSuccess, Message: message, Data: data}
}

// Failure builds an error envelope without data
func Failure(message string) Envelope[any] {
	return Envelope[any]{Status: EnvelopeError, Message: message}
}
