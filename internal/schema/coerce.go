package schema

import (
	"errors"
	"fmt"
	"reflect"
)

// CoerceInput coerces an external input value (a variable or an argument
// literal already converted to Go) to the internal representation of ref.
//
//   - Non-Null rejects nil with *NullabilityError.
//   - List coerces each element; a non-list value becomes a list of one.
//     Element failures carry the element index.
//   - Named leaf types defer to their ParseValue function; failures are
//     *CoercionError.
func CoerceInput(s *Schema, value any, ref *TypeRef) (any, error) {
	if ref == nil {
		return nil, fmt.Errorf("missing type reference")
	}
	if ref.IsNonNull() {
		if value == nil {
			return nil, &NullabilityError{Type: ref}
		}
		return CoerceInput(s, value, ref.OfType)
	}
	if value == nil {
		return nil, nil
	}
	if ref.Kind == TypeRefKindList {
		return coerceInputList(s, value, ref)
	}

	t := s.Types[ref.Named]
	if t == nil {
		return nil, fmt.Errorf("unknown type %q", ref.Named)
	}
	if !t.Kind.IsLeaf() || t.ParseValue == nil {
		return nil, fmt.Errorf("type %q is not an input type", t.Name)
	}
	return t.ParseValue(value)
}

func coerceInputList(s *Schema, value any, ref *TypeRef) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		item, err := CoerceInput(s, value, ref.OfType)
		if err != nil {
			return nil, err
		}
		return []any{item}, nil
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := CoerceInput(s, rv.Index(i).Interface(), ref.OfType)
		if err != nil {
			return nil, locateAtIndex(err, i)
		}
		out[i] = item
	}
	return out, nil
}

func locateAtIndex(err error, i int) error {
	var ce *CoercionError
	if errors.As(err, &ce) {
		return ce.atIndex(i)
	}
	var ne *NullabilityError
	if errors.As(err, &ne) {
		return ne.atIndex(i)
	}
	return fmt.Errorf("[%d]: %w", i, err)
}

// SerializeLeaf coerces a resolved value of the named leaf type t for output.
func SerializeLeaf(t *Type, value any) (any, error) {
	if t.Serialize == nil {
		return value, nil
	}
	return t.Serialize(value)
}
