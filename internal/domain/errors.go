package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the foreseen failure kinds. The HTTP boundary maps
// these to status codes in a single pass; nothing downstream inspects
// status codes.
var (
	// ErrUnsupportedContentType rejects content categories other than
	// structured JSON and plain text.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrEmptyPayload rejects events whose text is empty or whitespace-only.
	// Accepted events never carry empty text.
	ErrEmptyPayload = errors.New("empty text payload")

	// ErrMalformedPayload rejects request bodies that fail JSON parsing.
	ErrMalformedPayload = errors.New("malformed request payload")

	// ErrMalformedEnvelope rejects push deliveries whose envelope shape,
	// transport encoding, or embedded JSON cannot be decoded. Non-retryable:
	// the payload cannot become valid on redelivery.
	ErrMalformedEnvelope = errors.New("malformed delivery envelope")

	// ErrPublishFailed signals that the queue send itself failed, as opposed
	// to a slow acknowledgment.
	ErrPublishFailed = errors.New("publish failed")

	// ErrStoreFailed signals that the record store was unavailable or
	// rejected the write.
	ErrStoreFailed = errors.New("record store write failed")
)

// MissingFieldError reports a required field absent from a request body or
// a decoded queue message.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// MissingHeaderError reports a required out-of-band header absent from a
// request.
type MissingHeaderError struct {
	Header string
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("missing required header: %s", e.Header)
}

// IsValidationError reports whether err is a client-side validation failure,
// i.e. one the client can fix and no amount of retrying will.
func IsValidationError(err error) bool {
	var mf *MissingFieldError
	var mh *MissingHeaderError
	return errors.As(err, &mf) ||
		errors.As(err, &mh) ||
		errors.Is(err, ErrEmptyPayload) ||
		errors.Is(err, ErrMalformedPayload)
}
