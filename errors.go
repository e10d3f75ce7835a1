package stash

import "errors"

var (
	// ErrNotFound is returned when an item is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrAuthScheme is returned when the Authorization header does not
	// carry the expected bearer scheme
	ErrAuthScheme = errors.New("unsupported authorization scheme")
	// ErrInvalidToken is returned when a bearer token fails signature
	// verification or payload parsing
	ErrInvalidToken = errors.New("invalid token")
	// ErrAdmissionDenied is returned when origin or client IP filtering
	// rejects a request
	ErrAdmissionDenied = errors.New("admission denied")
	// ErrNegotiation is returned when no supported content type matches
	// the request headers
	ErrNegotiation = errors.New("unsupported content type")
	// ErrMalformedPayload is returned when a request body cannot be
	// decoded as the negotiated content type
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrPayloadTooLarge is returned when a request body exceeds the
	// configured size limit for its kind
	ErrPayloadTooLarge = errors.New("payload too large")
)
