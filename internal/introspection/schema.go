// Package introspection adds the __schema and __type meta fields, and the
// types they return, to a schema.
package introspection

import (
	"context"
	"fmt"

	schema "github.com/hanpama/bookgraph/internal/schema"
)

// Extend returns a copy of sch whose query root also has __schema and
// __type(name:). The original schema is not modified. Introspection
// answers describe the extended schema, including its __ types.
func Extend(sch *schema.Schema) (*schema.Schema, error) {
	r := &resolver{}

	b := schema.NewBuilder(sch.Description).
		SetQueryType(sch.QueryType).
		SetMutationType(sch.MutationType)
	for _, name := range sch.TypeNames() {
		t := sch.Types[name]
		if schema.IsBuiltin(t) {
			continue
		}
		if name == sch.QueryType {
			t = extendQueryType(t, r)
		}
		b.AddType(t)
	}
	for _, d := range sch.Directives {
		b.AddDirective(d)
	}
	for _, t := range introspectionTypes(r) {
		b.AddType(t)
	}

	extended, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("introspection: %w", err)
	}
	r.schema = extended
	return extended, nil
}

// extendQueryType copies the query root and appends the meta fields.
func extendQueryType(query *schema.Type, r *resolver) *schema.Type {
	typeCopy := *query
	typeCopy.Fields = append(append([]*schema.Field(nil), query.Fields...),
		schema.NewField("__schema", "Access the current type schema of this server.",
			schema.NonNullType(schema.NamedType("__Schema"))).
			SetResolveFunc(func(context.Context, any, map[string]any) (any, error) {
				return r.schema, nil
			}),
		schema.NewField("__type", "Request the type information of a single type.",
			schema.NamedType("__Type")).
			AddArgument(schema.NewInputValue("name", "The name of the type to look up.",
				schema.NonNullType(schema.NamedType(schema.StringName)))).
			SetResolveFunc(func(_ context.Context, _ any, args map[string]any) (any, error) {
				name, _ := args["name"].(string)
				if t := r.schema.Types[name]; t != nil {
					return t, nil
				}
				return nil, nil
			}),
	)
	return &typeCopy
}

func introspectionTypes(r *resolver) []*schema.Type {
	types := []*schema.Type{
		schemaType(),
		typeType(),
		fieldType(),
		inputValueType(),
		enumValueType(),
		directiveType(),
		typeKindEnum(),
		directiveLocationEnum(),
	}
	for _, t := range types {
		for _, f := range t.Fields {
			f.SetResolver(r.field(t.Name, f.Name))
		}
	}
	return types
}

func nonNull(name string) *schema.TypeRef { return schema.NonNullType(schema.NamedType(name)) }

// nonNullList returns [name!]!.
func nonNullList(name string) *schema.TypeRef {
	return schema.NonNullType(schema.ListType(nonNull(name)))
}

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", schema.NamedType(schema.BooleanName)).SetDefault(false)
}

// schemaType returns the __Schema introspection type definition
func schemaType() *schema.Type {
	return schema.NewObject("__Schema", "A GraphQL Schema defines the capabilities of a GraphQL server.").
		AddField(schema.NewField("description", "A description of the schema.", schema.NamedType(schema.StringName))).
		AddField(schema.NewField("types", "A list of all types supported by this server.", nonNullList("__Type"))).
		AddField(schema.NewField("queryType", "The type that query operations will be rooted at.", nonNull("__Type"))).
		AddField(schema.NewField("mutationType", "If this server supports mutation, the type that mutation operations will be rooted at.", schema.NamedType("__Type"))).
		AddField(schema.NewField("subscriptionType", "If this server support subscription, the type that subscription operations will be rooted at.", schema.NamedType("__Type"))).
		AddField(schema.NewField("directives", "A list of all directives supported by this server.", nonNullList("__Directive")))
}

// typeType returns the __Type introspection type definition
func typeType() *schema.Type {
	str := schema.NamedType(schema.StringName)
	return schema.NewObject("__Type", "The fundamental unit of any GraphQL Schema is the type.").
		AddField(schema.NewField("kind", "", nonNull("__TypeKind"))).
		AddField(schema.NewField("name", "", str)).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("specifiedByURL", "", str)).
		AddField(schema.NewField("fields", "", schema.ListType(nonNull("__Field"))).AddArgument(includeDeprecated())).
		AddField(schema.NewField("interfaces", "", schema.ListType(nonNull("__Type")))).
		AddField(schema.NewField("possibleTypes", "", schema.ListType(nonNull("__Type")))).
		AddField(schema.NewField("enumValues", "", schema.ListType(nonNull("__EnumValue"))).AddArgument(includeDeprecated())).
		AddField(schema.NewField("inputFields", "", schema.ListType(nonNull("__InputValue"))).AddArgument(includeDeprecated())).
		AddField(schema.NewField("ofType", "", schema.NamedType("__Type"))).
		AddField(schema.NewField("isOneOf", "", schema.NamedType(schema.BooleanName)))
}

// fieldType returns the __Field introspection type definition
func fieldType() *schema.Type {
	return schema.NewObject("__Field", "").
		AddField(schema.NewField("name", "", nonNull(schema.StringName))).
		AddField(schema.NewField("description", "", schema.NamedType(schema.StringName))).
		AddField(schema.NewField("args", "", nonNullList("__InputValue")).AddArgument(includeDeprecated())).
		AddField(schema.NewField("type", "", nonNull("__Type"))).
		AddField(schema.NewField("isDeprecated", "", nonNull(schema.BooleanName))).
		AddField(schema.NewField("deprecationReason", "", schema.NamedType(schema.StringName)))
}

// inputValueType returns the __InputValue introspection type definition
func inputValueType() *schema.Type {
	return schema.NewObject("__InputValue", "").
		AddField(schema.NewField("name", "", nonNull(schema.StringName))).
		AddField(schema.NewField("description", "", schema.NamedType(schema.StringName))).
		AddField(schema.NewField("type", "", nonNull("__Type"))).
		AddField(schema.NewField("defaultValue", "", schema.NamedType(schema.StringName))).
		AddField(schema.NewField("isDeprecated", "", nonNull(schema.BooleanName))).
		AddField(schema.NewField("deprecationReason", "", schema.NamedType(schema.StringName)))
}

// enumValueType returns the __EnumValue introspection type definition
func enumValueType() *schema.Type {
	return schema.NewObject("__EnumValue", "").
		AddField(schema.NewField("name", "", nonNull(schema.StringName))).
		AddField(schema.NewField("description", "", schema.NamedType(schema.StringName))).
		AddField(schema.NewField("isDeprecated", "", nonNull(schema.BooleanName))).
		AddField(schema.NewField("deprecationReason", "", schema.NamedType(schema.StringName)))
}

// directiveType returns the __Directive introspection type definition
func directiveType() *schema.Type {
	return schema.NewObject("__Directive", "").
		AddField(schema.NewField("name", "", nonNull(schema.StringName))).
		AddField(schema.NewField("description", "", schema.NamedType(schema.StringName))).
		AddField(schema.NewField("isRepeatable", "", nonNull(schema.BooleanName))).
		AddField(schema.NewField("locations", "", nonNullList("__DirectiveLocation"))).
		AddField(schema.NewField("args", "", nonNullList("__InputValue")).AddArgument(includeDeprecated()))
}

func enumOf(name string, values ...string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, "")
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}

// typeKindEnum returns the __TypeKind enum type definition
func typeKindEnum() *schema.Type {
	return enumOf("__TypeKind",
		"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL")
}

// directiveLocationEnum returns the __DirectiveLocation enum type definition
func directiveLocationEnum() *schema.Type {
	return enumOf("__DirectiveLocation",
		"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
		"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
		"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
		"INPUT_FIELD_DEFINITION")
}
