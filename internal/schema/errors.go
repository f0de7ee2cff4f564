package schema

import (
	"fmt"
	"strings"
)

// CoercionError reports a value whose shape does not match a scalar or enum.
// Index holds the list positions leading to the offending element, outermost
// first, when the value was nested in lists.
type CoercionError struct {
	TypeName string
	Value    any
	Index    []int
	Reason   string
}

func (e *CoercionError) Error() string {
	var b strings.Builder
	for _, i := range e.Index {
		fmt.Fprintf(&b, "[%d]", i)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	if e.Value == nil {
		fmt.Fprintf(&b, "cannot coerce null to %s", e.TypeName)
	} else {
		fmt.Fprintf(&b, "cannot coerce %s (%T) to %s", formatValue(e.Value), e.Value, e.TypeName)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// atIndex returns a copy of e located under list position i.
func (e *CoercionError) atIndex(i int) *CoercionError {
	out := *e
	out.Index = append([]int{i}, e.Index...)
	return &out
}

// NullabilityError reports absence of a value where a non-null type was
// declared. Field is set for result values ("Book.name"); Type is set for
// inputs.
type NullabilityError struct {
	Field string
	Type  *TypeRef
	Index []int
}

func (e *NullabilityError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("Cannot return null for non-nullable field %s.", e.Field)
	}
	var b strings.Builder
	for _, i := range e.Index {
		fmt.Fprintf(&b, "[%d]", i)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "cannot provide null for non-null type %s", e.Type)
	return b.String()
}

func (e *NullabilityError) atIndex(i int) *NullabilityError {
	out := *e
	out.Index = append([]int{i}, e.Index...)
	return &out
}

// FieldNotFoundError reports a selection of a field the type does not define.
type FieldNotFoundError struct {
	TypeName  string
	FieldName string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("Cannot query field %q on type %q.", e.FieldName, e.TypeName)
}

// Problem is a single schema defect located by a dotted path such as
// "Book.author" or "Query.book(id)".
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// ValidationError is returned by Builder.Build when the type graph is not
// well formed. It lists every problem found, in declaration order.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "invalid schema: " + strings.Join(parts, "; ")
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
