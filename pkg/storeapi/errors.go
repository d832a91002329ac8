package storeapi

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid store api config")

	// ErrNetworkError is returned when the store api could not be reached
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the bearer token is rejected
	ErrUnauthorized = errors.New("unauthorized: store api rejected the token")

	// ErrUnexpectedResponse is returned when the response body is not a store api envelope
	ErrUnexpectedResponse = errors.New("unexpected store api response")
)
