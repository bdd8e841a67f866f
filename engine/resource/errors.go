package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrPipelineClosed is returned by loads requested after Close.
	ErrPipelineClosed = errors.New("resource: pipeline closed")

	// ErrNoDecoder is wrapped in a DecodeError when no decoder is configured for the resource's type.
	ErrNoDecoder = errors.New("resource: no decoder for resource type")
)

// NotFoundError is returned when a load names an id that is not registered.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %q not found", e.ID)
}

// DecodeError wraps the error of a failed decode. errors.Is and errors.As reach the decoder's original error.
type DecodeError struct {
	ID   string
	Type ResourceType
	URL  string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s resource %q from %s: %v", e.Type, e.ID, e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TypeMismatchError is returned by the typed loads when the registered resource has a different type.
type TypeMismatchError struct {
	ID   string
	Want ResourceType
	Got  ResourceType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("resource %q is a %s, not a %s", e.ID, e.Got, e.Want)
}
