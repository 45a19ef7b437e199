package generation

import "errors"

var (
	// ErrGeneration is returned when the model fails to produce an answer.
	ErrGeneration = errors.New("answer generation failed")
	// ErrMissingDependency is returned when a constructor lacks a retriever or model.
	ErrMissingDependency = errors.New("missing generation dependency")
	// ErrInvalidTemplate is returned when the context template does not parse.
	ErrInvalidTemplate = errors.New("invalid context template")
)
