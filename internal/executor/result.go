package executor

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	schema "github.com/hanpama/bookgraph/internal/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error codes reported in GraphQLError.Extensions["code"].
const (
	CodeCoercion      = "COERCION_ERROR"
	CodeNullability   = "NULLABILITY_ERROR"
	CodeFieldNotFound = "FIELD_NOT_FOUND"
	CodeResolver      = "RESOLVER_ERROR"
	CodeRequest       = "REQUEST_ERROR"
	CodeSelection     = "SELECTION_ERROR"
)

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// Code returns the error code from the extensions, or "".
func (e GraphQLError) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// ExecutionResult represents the result of executing a GraphQL query.
// Data is an Object, or nil when execution did not start or a non-null
// violation reached the root.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// Object is a completed object value. Entries keep the order in which the
// fields were requested, and MarshalJSON writes them in that order.
type Object []ObjectEntry

type ObjectEntry struct {
	Key   string
	Value any
}

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the response keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, e := range o {
		keys[i] = e.Key
	}
	return keys
}

func (o Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, e := range o {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(e.Key)
		stream.WriteVal(e.Value)
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

// locatedError converts err into a GraphQLError at path. The code is derived
// from the error kind, falling back to fallback.
func locatedError(err error, path Path, fallback string) GraphQLError {
	code := fallback
	var (
		ce *schema.CoercionError
		ne *schema.NullabilityError
		fe *schema.FieldNotFoundError
		ge GraphQLError
	)
	switch {
	case errors.As(err, &ge):
		return GraphQLError{Message: ge.Message, Path: path, Extensions: ge.Extensions}
	case errors.As(err, &ce):
		code = CodeCoercion
	case errors.As(err, &ne):
		code = CodeNullability
	case errors.As(err, &fe):
		code = CodeFieldNotFound
	}
	return GraphQLError{Message: err.Error(), Path: path, Extensions: map[string]any{"code": code}}
}

func requestError(format string, args ...any) *ExecutionResult {
	return &ExecutionResult{Errors: []GraphQLError{{
		Message:    fmt.Sprintf(format, args...),
		Extensions: map[string]any{"code": CodeRequest},
	}}}
}
