package schema

import (
	"fmt"
)

// Builder assembles a Schema in two passes. Types are first declared by name
// with AddType, in any order; their fields may reference types declared later.
// Build then binds every reference by name and validates the graph.
type Builder struct {
	description  string
	queryType    string
	mutationType string
	types        []*Type
	directives   []*Directive
}

// NewBuilder returns a Builder with the builtin scalars and directives
// already declared.
func NewBuilder(description string) *Builder {
	b := &Builder{description: description}
	for _, t := range builtinScalars {
		b.AddType(t)
	}
	b.AddDirective(includeDirective).
		AddDirective(skipDirective)
	return b
}

func (b *Builder) SetQueryType(name string) *Builder {
	b.queryType = name
	return b
}

func (b *Builder) SetMutationType(name string) *Builder {
	b.mutationType = name
	return b
}

// AddType declares a named type. Later passes bind references to it by name.
func (b *Builder) AddType(t *Type) *Builder {
	b.types = append(b.types, t)
	return b
}

func (b *Builder) AddDirective(d *Directive) *Builder {
	b.directives = append(b.directives, d)
	return b
}

// Build binds all type references and returns the immutable schema, or a
// *ValidationError listing every problem found.
func (b *Builder) Build() (*Schema, error) {
	s := &Schema{
		QueryType:    b.queryType,
		MutationType: b.mutationType,
		Types:        make(map[string]*Type, len(b.types)),
		Directives:   make(map[string]*Directive, len(b.directives)),
		Description:  b.description,
	}
	var problems []Problem
	addProblem := func(path, format string, args ...any) {
		problems = append(problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	// Pass 1: declare names.
	for _, t := range b.types {
		if t == nil || t.Name == "" {
			addProblem("", "type without a name")
			continue
		}
		if _, dup := s.Types[t.Name]; dup {
			addProblem(t.Name, "type declared more than once")
			continue
		}
		if t.Kind == TypeKindEnum && (t.ParseValue == nil || t.Serialize == nil) {
			parse, serialize := enumCoercers(t)
			if t.ParseValue == nil {
				t.ParseValue = parse
			}
			if t.Serialize == nil {
				t.Serialize = serialize
			}
		}
		s.Types[t.Name] = t
		s.typeOrder = append(s.typeOrder, t.Name)
	}
	for _, d := range b.directives {
		s.Directives[d.Name] = d
	}

	// Pass 2: bind references.
	for _, name := range s.typeOrder {
		t := s.Types[name]
		switch t.Kind {
		case TypeKindObject:
			if len(t.Fields) == 0 {
				addProblem(t.Name, "object type must define at least one field")
			}
			seen := make(map[string]bool, len(t.Fields))
			for _, f := range t.Fields {
				path := t.Name + "." + f.Name
				if seen[f.Name] {
					addProblem(path, "field declared more than once")
					continue
				}
				seen[f.Name] = true
				if msg := checkOutputRef(s, f.Type); msg != "" {
					addProblem(path, "%s", msg)
				}
				seenArgs := make(map[string]bool, len(f.Arguments))
				for _, a := range f.Arguments {
					argPath := fmt.Sprintf("%s(%s)", path, a.Name)
					if seenArgs[a.Name] {
						addProblem(argPath, "argument declared more than once")
						continue
					}
					seenArgs[a.Name] = true
					if msg := checkInputRef(s, a.Type); msg != "" {
						addProblem(argPath, "%s", msg)
					}
				}
			}
		case TypeKindScalar:
			if t.ParseValue == nil || t.Serialize == nil {
				addProblem(t.Name, "scalar must define ParseValue and Serialize")
			}
		case TypeKindEnum:
			if len(t.EnumValues) == 0 {
				addProblem(t.Name, "enum type must define at least one value")
			}
		default:
			addProblem(t.Name, "unsupported type kind %q", t.Kind)
		}
	}

	checkRoot := func(label, name string, required bool) {
		if name == "" {
			if required {
				addProblem("schema", "%s root type is not set", label)
			}
			return
		}
		t := s.Types[name]
		if t == nil {
			addProblem("schema", "%s root type %q is not declared", label, name)
		} else if t.Kind != TypeKindObject {
			addProblem("schema", "%s root type %q must be an object type", label, name)
		}
	}
	checkRoot("query", s.QueryType, true)
	checkRoot("mutation", s.MutationType, false)

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return s, nil
}

func checkOutputRef(s *Schema, ref *TypeRef) string {
	name, msg := checkRef(ref)
	if msg != "" {
		return msg
	}
	if s.Types[name] == nil {
		return fmt.Sprintf("unknown type %q", name)
	}
	return ""
}

func checkInputRef(s *Schema, ref *TypeRef) string {
	name, msg := checkRef(ref)
	if msg != "" {
		return msg
	}
	t := s.Types[name]
	if t == nil {
		return fmt.Sprintf("unknown type %q", name)
	}
	if !t.Kind.IsLeaf() {
		return fmt.Sprintf("type %q is not an input type", name)
	}
	return ""
}

// checkRef walks wrappers and returns the innermost name.
func checkRef(ref *TypeRef) (string, string) {
	for ref != nil {
		switch ref.Kind {
		case TypeRefKindNamed:
			if ref.Named == "" {
				return "", "type reference without a name"
			}
			return ref.Named, ""
		case TypeRefKindNonNull:
			if ref.OfType != nil && ref.OfType.Kind == TypeRefKindNonNull {
				return "", "non-null of non-null type"
			}
			ref = ref.OfType
		case TypeRefKindList:
			ref = ref.OfType
		default:
			return "", fmt.Sprintf("unknown type reference kind %q", ref.Kind)
		}
	}
	return "", "missing type"
}
