package assistant

import (
	"context"
	"errors"
	"fmt"
)

// ErrMalformedOutput is returned when the model answers with the wrong shape.
var ErrMalformedOutput = errors.New("generated output does not match the expected shape")

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("assistant is not configured")

// FieldType is the JSON type of an output field
type FieldType string

const (
	FieldString     FieldType = "string"
	FieldStringList FieldType = "string_list"
)

// Field describes one property of the structured output
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
}

// Shape is the structured output a flow expects back
type Shape struct {
	Fields []Field
}

// Request is a rendered prompt ready for a provider
type Request struct {
	Flow   string
	System string
	Prompt string
	Output Shape
}

// Provider calls a hosted model and returns its raw JSON answer.
type Provider interface {
	Generate(ctx context.Context, req *Request) ([]byte, error)
}

// ProviderError wraps failures raised by the hosted model.
type ProviderError struct {
	Provider string
	Flow     string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider failed for %s: %v", e.Provider, e.Flow, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
