package graphs

import "errors"

var (
	// ErrConnectivity is returned when the store is unreachable or rejects the credentials.
	ErrConnectivity = errors.New("graph store connectivity check failed")
	// ErrInvalidQuery is returned when the store rejects a query as syntactically or semantically invalid.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnknownSchemaReference is returned in strict mode when a query references
	// a label, relationship type or property key the store does not know.
	ErrUnknownSchemaReference = errors.New("query references unknown schema elements")
	// ErrWriteNotAllowed is returned when a write statement is sent without write access.
	ErrWriteNotAllowed = errors.New("write statements require write access")
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("graph store closed")
)
