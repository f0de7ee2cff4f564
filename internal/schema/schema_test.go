package schema_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

// Pet and Owner reference each other; Pet is declared first.
func buildPets(t *testing.T) *schema.Schema {
	t.Helper()
	pet := schema.NewObject("Pet", "A pet.").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("owner", "", schema.NamedType("Owner")))
	owner := schema.NewObject("Owner", "").
		AddField(schema.NewField("name", "", schema.NamedType("String"))).
		AddField(schema.NewField("pets", "", schema.ListType(schema.NamedType("Pet"))))
	query := schema.NewObject("Query", "").
		AddField(schema.NewField("pet", "", schema.NamedType("Pet")).
			AddArgument(schema.NewInputValue("id", "", schema.NamedType("Int"))))

	sch, err := schema.NewBuilder("").
		SetQueryType("Query").
		AddType(pet).
		AddType(owner).
		AddType(query).
		Build()
	require.NoError(t, err)
	return sch
}

func TestBuild_ForwardReferences(t *testing.T) {
	sch := buildPets(t)
	require.Equal(t, "Query", sch.GetQueryType().Name)
	require.Nil(t, sch.GetMutationType())
	require.Equal(t, "Owner", sch.Types["Pet"].Field("owner").Type.GetNamedType())
	require.Equal(t, []string{"Int", "Float", "String", "Boolean", "ID", "Pet", "Owner", "Query"}, sch.TypeNames())
}

func TestBuild_ValidationErrors(t *testing.T) {
	book := schema.NewObject("Book", "").
		AddField(schema.NewField("id", "", schema.NonNullType(schema.NamedType("Int")))).
		AddField(schema.NewField("id", "", schema.NamedType("Int"))).
		AddField(schema.NewField("author", "", schema.NamedType("Auther"))).
		AddField(schema.NewField("tags", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("Tag"))))))
	query := schema.NewObject("Query", "").
		AddField(schema.NewField("book", "", schema.NamedType("Book")).
			AddArgument(schema.NewInputValue("filter", "", schema.NamedType("Book"))))

	_, err := schema.NewBuilder("").
		SetQueryType("Query").
		SetMutationType("Mutation").
		AddType(book).
		AddType(query).
		Build()

	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	want := []schema.Problem{
		{Path: "Book.id", Message: "field declared more than once"},
		{Path: "Book.author", Message: `unknown type "Auther"`},
		{Path: "Book.tags", Message: `unknown type "Tag"`},
		{Path: "Query.book(filter)", Message: `type "Book" is not an input type`},
		{Path: "schema", Message: `mutation root type "Mutation" is not declared`},
	}
	if diff := cmp.Diff(want, ve.Problems); diff != "" {
		t.Fatalf("problems mismatch (-want +got):\n%s", diff)
	}
	require.Contains(t, err.Error(), `Book.author: unknown type "Auther"`)
}

func TestBuild_MissingQueryRoot(t *testing.T) {
	_, err := schema.NewBuilder("").Build()
	require.EqualError(t, err, "invalid schema: schema: query root type is not set")
}

func TestBuild_DuplicateType(t *testing.T) {
	q := schema.NewObject("Query", "").AddField(schema.NewField("a", "", schema.NamedType("String")))
	_, err := schema.NewBuilder("").SetQueryType("Query").AddType(q).AddType(schema.NewObject("String", "")).Build()
	require.EqualError(t, err, "invalid schema: String: type declared more than once")
}

func TestCoerceInput(t *testing.T) {
	sch := buildPets(t)
	intT := schema.NamedType("Int")

	tests := []struct {
		name    string
		value   any
		ref     *schema.TypeRef
		want    any
		wantErr string
	}{
		{name: "int", value: 7, ref: intT, want: 7},
		{name: "json float", value: float64(7), ref: intT, want: 7},
		{name: "json number", value: json.Number("12"), ref: intT, want: 12},
		{name: "non-numeric string", value: "abc", ref: intT, wantErr: `cannot coerce "abc" (string) to Int`},
		{name: "numeric string", value: "42", ref: intT, wantErr: `cannot coerce "42" (string) to Int`},
		{name: "fraction", value: 1.5, ref: intT, wantErr: "cannot coerce 1.5 (float64) to Int"},
		{name: "out of range", value: int64(1) << 40, ref: intT, wantErr: "out of 32-bit range"},
		{name: "null nullable", value: nil, ref: intT, want: nil},
		{name: "null non-null", value: nil, ref: schema.NonNullType(intT), wantErr: "cannot provide null for non-null type Int!"},
		{name: "string", value: "x", ref: schema.NamedType("String"), want: "x"},
		{name: "string from int", value: 3, ref: schema.NamedType("String"), wantErr: "cannot coerce 3 (int) to String"},
		{name: "list", value: []any{1, 2}, ref: schema.ListType(intT), want: []any{1, 2}},
		{name: "list of one", value: 3, ref: schema.ListType(intT), want: []any{3}},
		{name: "list element", value: []any{1, 2, "x"}, ref: schema.ListType(intT), wantErr: `[2]: cannot coerce "x" (string) to Int`},
		{name: "nested list element", value: []any{[]any{1}, []any{2, nil}}, ref: schema.ListType(schema.ListType(schema.NonNullType(intT))), wantErr: "[1][1]: cannot provide null for non-null type Int!"},
		{name: "object type", value: 1, ref: schema.NamedType("Pet"), wantErr: `type "Pet" is not an input type`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schema.CoerceInput(sch, tt.value, tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoerceInput_ErrorKinds(t *testing.T) {
	sch := buildPets(t)

	_, err := schema.CoerceInput(sch, []any{1, "x"}, schema.ListType(schema.NamedType("Int")))
	var ce *schema.CoercionError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "Int", ce.TypeName)
	require.Equal(t, []int{1}, ce.Index)

	_, err = schema.CoerceInput(sch, nil, schema.NonNullType(schema.NamedType("String")))
	var ne *schema.NullabilityError
	require.True(t, errors.As(err, &ne))
}

func TestSerializeLeaf(t *testing.T) {
	v, err := schema.SerializeLeaf(schema.Int, 3.0)
	require.NoError(t, err)
	require.Equal(t, 3, v)

	_, err = schema.SerializeLeaf(schema.Int, "Hemingway")
	require.Error(t, err)

	v, err = schema.SerializeLeaf(schema.String, 12)
	require.NoError(t, err)
	require.Equal(t, "12", v)

	status := schema.NewType("Status", schema.TypeKindEnum, "").
		AddEnumValue(schema.NewEnumValue("OPEN", "")).
		AddEnumValue(schema.NewEnumValue("CLOSED", ""))
	q := schema.NewObject("Query", "").AddField(schema.NewField("status", "", schema.NamedType("Status")))
	_, err = schema.NewBuilder("").SetQueryType("Query").AddType(status).AddType(q).Build()
	require.NoError(t, err)

	v, err = schema.SerializeLeaf(status, "OPEN")
	require.NoError(t, err)
	require.Equal(t, "OPEN", v)
	_, err = schema.SerializeLeaf(status, "PENDING")
	require.Error(t, err)
}

type record struct {
	ID       int    `json:"id"`
	AuthorID int    `json:"authorId"`
	Title    string // no tag
	hidden   string
}

func TestPropertyResolver(t *testing.T) {
	ctx := context.Background()
	src := &record{ID: 1, AuthorID: 2, Title: "t", hidden: "h"}

	for name, want := range map[string]any{"id": 1, "authorId": 2, "title": "t", "Title": "t", "hidden": nil, "missing": nil} {
		got, err := schema.PropertyResolver(name).Resolve(ctx, src, nil)
		require.NoError(t, err)
		require.Equal(t, want, got, name)
	}

	got, err := schema.PropertyResolver("a").Resolve(ctx, map[string]any{"a": "A"}, nil)
	require.NoError(t, err)
	require.Equal(t, "A", got)

	got, err = schema.PropertyResolver("a").Resolve(ctx, (*record)(nil), nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRender(t *testing.T) {
	sch := buildPets(t)
	sdl := schema.Render(sch)

	want := `schema {
  query: Query
}

type Owner {
  name: String
  pets: [Pet]
}

"""
A pet.
"""
type Pet {
  name: String!
  owner: Owner
}

type Query {
  pet(id: Int): Pet
}
`
	if diff := cmp.Diff(want, sdl); diff != "" {
		t.Fatalf("SDL mismatch (-want +got):\n%s", diff)
	}

	_, err := language.ParseSchema("pets.graphql", sdl)
	require.NoError(t, err)
}
