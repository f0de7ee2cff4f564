package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Builtin scalar names.
const (
	IntName     = "Int"
	FloatName   = "Float"
	StringName  = "String"
	BooleanName = "Boolean"
	IDName      = "ID"
)

// Builtin scalars. Builder registers all of them.
var (
	Int = &Type{
		Name:        IntName,
		Kind:        TypeKindScalar,
		Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
		ParseValue:  parseInt,
		Serialize:   serializeInt,
	}
	Float = &Type{
		Name:        FloatName,
		Kind:        TypeKindScalar,
		Description: "The `Float` scalar type represents signed double-precision fractional values.",
		ParseValue:  coerceFloat,
		Serialize:   coerceFloat,
	}
	String = &Type{
		Name:        StringName,
		Kind:        TypeKindScalar,
		Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
		ParseValue:  parseString,
		Serialize:   serializeString,
	}
	Boolean = &Type{
		Name:        BooleanName,
		Kind:        TypeKindScalar,
		Description: "The `Boolean` scalar type represents `true` or `false`.",
		ParseValue:  coerceBoolean,
		Serialize:   coerceBoolean,
	}
	ID = &Type{
		Name:        IDName,
		Kind:        TypeKindScalar,
		Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
		ParseValue:  coerceID,
		Serialize:   coerceID,
	}
)

var builtinScalars = []*Type{Int, Float, String, Boolean, ID}

// IsBuiltin reports whether t is one of the builtin scalars.
func IsBuiltin(t *Type) bool {
	for _, b := range builtinScalars {
		if t == b {
			return true
		}
	}
	return false
}

var includeDirective = &Directive{
	Name:        "include",
	Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Included when true.",
			Type:        NonNullType(NamedType(BooleanName)),
		},
	},
	Locations:    []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	IsRepeatable: false,
}

var skipDirective = &Directive{
	Name:        "skip",
	Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Skipped when true.",
			Type:        NonNullType(NamedType(BooleanName)),
		},
	},
	Locations:    []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	IsRepeatable: false,
}

// toInt64 extracts an integral value from Go numeric kinds, JSON numbers
// and integral floats.
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return toInt64(f)
	case float32:
		return toInt64(float64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false
		}
		if v > math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func coerceInt(value any) (any, error) {
	i, ok := toInt64(value)
	if !ok {
		return nil, &CoercionError{TypeName: IntName, Value: value}
	}
	if i > math.MaxInt32 || i < math.MinInt32 {
		return nil, &CoercionError{TypeName: IntName, Value: value, Reason: "out of 32-bit range"}
	}
	return int(i), nil
}

// Int inputs must already be numbers; strings are rejected even when numeric.
func parseInt(value any) (any, error) {
	if _, ok := value.(bool); ok {
		return nil, &CoercionError{TypeName: IntName, Value: value}
	}
	return coerceInt(value)
}

func serializeInt(value any) (any, error) {
	if b, ok := value.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &CoercionError{TypeName: IntName, Value: value}
		}
		if _, err := coerceInt(f); err != nil {
			return nil, &CoercionError{TypeName: IntName, Value: value}
		}
		return int(f), nil
	}
	return coerceInt(value)
}

func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, &CoercionError{TypeName: FloatName, Value: value}
		}
		return f, nil
	}
	if i, ok := toInt64(value); ok {
		return float64(i), nil
	}
	return nil, &CoercionError{TypeName: FloatName, Value: value}
}

func parseString(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return nil, &CoercionError{TypeName: StringName, Value: value}
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
	if i, ok := toInt64(value); ok {
		return strconv.FormatInt(i, 10), nil
	}
	return nil, &CoercionError{TypeName: StringName, Value: value}
}

func coerceBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, &CoercionError{TypeName: BooleanName, Value: value}
}

func coerceID(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	if i, ok := toInt64(value); ok {
		return strconv.FormatInt(i, 10), nil
	}
	return nil, &CoercionError{TypeName: IDName, Value: value}
}

// enumCoercers returns ParseValue/Serialize funcs accepting only the names of
// t's values.
func enumCoercers(t *Type) (func(any) (any, error), func(any) (any, error)) {
	coerce := func(value any) (any, error) {
		var name string
		switch v := value.(type) {
		case string:
			name = v
		case fmt.Stringer:
			name = v.String()
		default:
			return nil, &CoercionError{TypeName: t.Name, Value: value}
		}
		for _, ev := range t.EnumValues {
			if ev.Name == name {
				return name, nil
			}
		}
		return nil, &CoercionError{TypeName: t.Name, Value: value, Reason: "not a value of the enum"}
	}
	return coerce, coerce
}
