package schema

import "context"

// Schema represents the complete GraphQL schema. A Schema is produced by
// Builder.Build and must not be modified afterwards.
type Schema struct {
	QueryType    string
	MutationType string
	Types        map[string]*Type // All named types keyed by name
	Directives   map[string]*Directive
	Description  string

	// typeOrder keeps declaration order for rendering and introspection.
	typeOrder []string
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// TypeNames returns all type names in declaration order, builtins first.
func (s *Schema) TypeNames() []string {
	out := make([]string, len(s.typeOrder))
	copy(out, s.typeOrder)
	return out
}

// Type is a named GraphQL type (object, scalar or enum)
type Type struct {
	Name        string
	Kind        TypeKind
	Description string
	Fields      []*Field     // For OBJECT
	EnumValues  []*EnumValue // For ENUM

	// ParseValue coerces an input value (argument or variable) for SCALAR
	// and ENUM types. Serialize coerces a resolved leaf value for output.
	ParseValue func(value any) (any, error)
	Serialize  func(value any) (any, error)
}

// Field represents a field on an object type
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Resolver          Resolver
	IsDeprecated      bool
	DeprecationReason string
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar TypeKind = "SCALAR"
	TypeKindObject TypeKind = "OBJECT"
	TypeKindEnum   TypeKind = "ENUM"
)

// IsLeaf reports whether values of this kind are serialized rather than
// completed through a selection set.
func (k TypeKind) IsLeaf() bool { return k == TypeKindScalar || k == TypeKindEnum }

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

// Helper functions for TypeRef
func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

// String renders the reference in SDL notation, e.g. "[Book!]!".
func (t *TypeRef) String() string { return renderTypeRef(t) }

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type InputValue struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue any
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

// Resolver computes the value of a field from its parent value and coerced
// arguments. A nil value with a nil error is GraphQL null.
type Resolver interface {
	Resolve(ctx context.Context, source any, args map[string]any) (any, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, source any, args map[string]any) (any, error)

func (f ResolverFunc) Resolve(ctx context.Context, source any, args map[string]any) (any, error) {
	return f(ctx, source, args)
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }

// NewType returns an empty named type of the given kind.
func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

// NewObject is shorthand for NewType(name, TypeKindObject, description).
func NewObject(name, description string) *Type {
	return NewType(name, TypeKindObject, description)
}

// AddField appends a field. Duplicate names are reported by Builder.Build.
func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

// AddEnumValue appends an enum value.
func (t *Type) AddEnumValue(v *EnumValue) *Type {
	t.EnumValues = append(t.EnumValues, v)
	return t
}

// Field returns the field named name, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// NewField returns a field without a resolver; such fields project the
// same-named property of the parent value.
func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) AddArgument(arg *InputValue) *Field {
	f.Arguments = append(f.Arguments, arg)
	return f
}

func (f *Field) SetResolver(r Resolver) *Field {
	f.Resolver = r
	return f
}

// SetResolveFunc is SetResolver(ResolverFunc(fn)).
func (f *Field) SetResolveFunc(fn func(ctx context.Context, source any, args map[string]any) (any, error)) *Field {
	return f.SetResolver(ResolverFunc(fn))
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

// Argument returns the argument definition named name, or nil.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue {
	v.DefaultValue = value
	return v
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}
