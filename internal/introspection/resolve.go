package introspection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	schema "github.com/hanpama/bookgraph/internal/schema"
)

// resolver answers meta fields from schema, the extended schema. It is set
// once Extend has built it.
type resolver struct {
	schema *schema.Schema
}

// field returns the resolver of objectType.field. Sources are the schema
// package's own definition values.
func (r *resolver) field(objectType, field string) schema.Resolver {
	return schema.ResolverFunc(func(_ context.Context, source any, args map[string]any) (any, error) {
		var (
			v  any
			ok bool
		)
		switch src := source.(type) {
		case *schema.Schema:
			v, ok = schemaMeta(src, field)
		case *schema.Type:
			v, ok = typeMeta(src, field, args)
		case *schema.TypeRef:
			v, ok = typeRefMeta(r.schema, src, field, args)
		case *schema.Field:
			v, ok = fieldMeta(src, field, args)
		case *schema.InputValue:
			v, ok = inputValueMeta(src, field)
		case *schema.EnumValue:
			v, ok = enumValueMeta(src, field)
		case *schema.Directive:
			v, ok = directiveMeta(src, field)
		}
		if !ok {
			return nil, fmt.Errorf("%s.%s: unexpected source %T", objectType, field, source)
		}
		return v, nil
	})
}


func schemaTypes(sch *schema.Schema) []*schema.Type {
	names := sch.TypeNames()
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		out = append(out, sch.Types[name])
	}
	return out
}

func schemaDirectives(sch *schema.Schema) []*schema.Directive {
	dirs := make([]*schema.Directive, 0, len(sch.Directives))
	for _, name := range []string{"include", "skip"} {
		if d := sch.Directives[name]; d != nil {
			dirs = append(dirs, d)
		}
	}
	var rest []string
	for name := range sch.Directives {
		if name != "include" && name != "skip" {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		dirs = append(dirs, sch.Directives[name])
	}
	return dirs
}

func visibleFields(t *schema.Type, args map[string]any) []*schema.Field {
	if t.Kind != schema.TypeKindObject {
		return nil
	}
	includeDeprecated := flagArg(args, "includeDeprecated", false)
	out := []*schema.Field{}
	for _, f := range t.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		if !includeDeprecated && f.IsDeprecated {
			continue
		}
		out = append(out, f)
	}
	return out
}

func visibleEnumValues(t *schema.Type, args map[string]any) []*schema.EnumValue {
	if t.Kind != schema.TypeKindEnum {
		return nil
	}
	includeDeprecated := flagArg(args, "includeDeprecated", false)
	out := []*schema.EnumValue{}
	for _, ev := range t.EnumValues {
		if !includeDeprecated && ev.IsDeprecated {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func defaultValueSDL(a *schema.InputValue) any {
	if a.DefaultValue != nil {
		return schema.RenderValue(a.DefaultValue)
	}
	return nil
}

func deprecationReason(deprecated bool, reason string) any {
	if deprecated {
		return reason
	}
	return nil
}

// optional maps an empty description to null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func schemaMeta(sch *schema.Schema, field string) (any, bool) {
	switch field {
	case "types":
		return schemaTypes(sch), true
	case "queryType":
		return sch.GetQueryType(), true
	case "mutationType":
		return sch.GetMutationType(), true
	case "subscriptionType":
		return nil, true
	case "directives":
		return schemaDirectives(sch), true
	case "description":
		return optional(sch.Description), true
	}
	return nil, false
}

func typeMeta(t *schema.Type, field string, args map[string]any) (any, bool) {
	switch field {
	case "kind":
		return string(t.Kind), true
	case "name":
		return t.Name, true
	case "description":
		return optional(t.Description), true
	case "fields":
		return visibleFields(t, args), true
	case "interfaces":
		if t.Kind == schema.TypeKindObject {
			return []*schema.Type{}, true
		}
		return nil, true
	case "enumValues":
		return visibleEnumValues(t, args), true
	case "specifiedByURL", "possibleTypes", "inputFields", "ofType", "isOneOf":
		// Named types never wrap another type; interfaces, unions and input
		// objects do not exist in this schema.
		return nil, true
	}
	return nil, false
}

func typeRefMeta(sch *schema.Schema, tr *schema.TypeRef, field string, args map[string]any) (any, bool) {
	if tr.Kind == schema.TypeRefKindNonNull || tr.Kind == schema.TypeRefKindList {
		switch field {
		case "kind":
			return string(tr.Kind), true
		case "ofType":
			return tr.OfType, true
		default:
			return nil, true
		}
	}
	def := sch.Types[tr.Named]
	if def == nil {
		return nil, false
	}
	return typeMeta(def, field, args)
}

func fieldMeta(f *schema.Field, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return f.Name, true
	case "description":
		return optional(f.Description), true
	case "args":
		return append([]*schema.InputValue{}, f.Arguments...), true
	case "type":
		return f.Type, true
	case "isDeprecated":
		return f.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), true
	}
	return nil, false
}

func inputValueMeta(a *schema.InputValue, field string) (any, bool) {
	switch field {
	case "name":
		return a.Name, true
	case "description":
		return optional(a.Description), true
	case "type":
		return a.Type, true
	case "defaultValue":
		return defaultValueSDL(a), true
	case "isDeprecated":
		return false, true
	case "deprecationReason":
		return nil, true
	}
	return nil, false
}

func enumValueMeta(ev *schema.EnumValue, field string) (any, bool) {
	switch field {
	case "name":
		return ev.Name, true
	case "description":
		return optional(ev.Description), true
	case "isDeprecated":
		return ev.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(ev.IsDeprecated, ev.DeprecationReason), true
	}
	return nil, false
}

func directiveMeta(d *schema.Directive, field string) (any, bool) {
	switch field {
	case "name":
		return d.Name, true
	case "description":
		return optional(d.Description), true
	case "isRepeatable":
		return d.IsRepeatable, true
	case "locations":
		return append([]string{}, d.Locations...), true
	case "args":
		return append([]*schema.InputValue{}, d.Arguments...), true
	}
	return nil, false
}

func flagArg(args map[string]any, name string, def bool) bool {
	if args == nil {
		return def
	}
	if v, ok := args[name]; ok {
		if b, ok2 := v.(bool); ok2 {
			return b
		}
	}
	return def
}
