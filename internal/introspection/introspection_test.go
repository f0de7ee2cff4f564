package introspection_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/bookgraph/internal/books"
	"github.com/hanpama/bookgraph/internal/executor"
	"github.com/hanpama/bookgraph/internal/introspection"
	language "github.com/hanpama/bookgraph/internal/language"
	"github.com/hanpama/bookgraph/internal/store"
)

func newExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	sch, err := books.NewSchema(store.NewDefault())
	require.NoError(t, err)
	extended, err := introspection.Extend(sch)
	require.NoError(t, err)
	return executor.NewExecutor(extended)
}

func do(t *testing.T, exec *executor.Executor, q string) (string, *executor.ExecutionResult) {
	t.Helper()
	doc, err := language.ParseQuery(q)
	require.NoError(t, err)
	res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(res)
	require.NoError(t, err)
	return string(out), res
}

func requireJSON(t *testing.T, want, got string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestType(t *testing.T) {
	exec := newExecutor(t)
	got, _ := do(t, exec, `{ __type(name: "Book") { name kind description fields { name type { kind name ofType { kind name } } } } }`)
	requireJSON(t, `{"data":{"__type":{"name":"Book","kind":"OBJECT","description":"This represents a book written by an author.","fields":[`+
		`{"name":"id","type":{"kind":"NON_NULL","name":null,"ofType":{"kind":"SCALAR","name":"Int"}}},`+
		`{"name":"name","type":{"kind":"NON_NULL","name":null,"ofType":{"kind":"SCALAR","name":"String"}}},`+
		`{"name":"authorId","type":{"kind":"NON_NULL","name":null,"ofType":{"kind":"SCALAR","name":"Int"}}},`+
		`{"name":"author","type":{"kind":"OBJECT","name":"Author","ofType":null}}]}}}`, got)

	got, _ = do(t, exec, `{ __type(name: "Nope") { name } }`)
	requireJSON(t, `{"data":{"__type":null}}`, got)
}

func TestType_Arguments(t *testing.T) {
	exec := newExecutor(t)
	got, _ := do(t, exec, `{ __type(name: "Mutation") { fields { name description args { name defaultValue type { kind ofType { name } } } } } }`)
	requireJSON(t, `{"data":{"__type":{"fields":[`+
		`{"name":"addBook","description":"Add a Book","args":[{"name":"name","defaultValue":null,"type":{"kind":"NON_NULL","ofType":{"name":"String"}}},{"name":"authorId","defaultValue":null,"type":{"kind":"NON_NULL","ofType":{"name":"Int"}}}]},`+
		`{"name":"addAuthor","description":"Add an Author","args":[{"name":"name","defaultValue":null,"type":{"kind":"NON_NULL","ofType":{"name":"String"}}}]}]}}}`, got)
}

func TestSchema(t *testing.T) {
	exec := newExecutor(t)
	got, _ := do(t, exec, `{ __schema { queryType { name } mutationType { name } subscriptionType { name } types { name } directives { name locations args { name } } } }`)
	requireJSON(t, `{"data":{"__schema":{"queryType":{"name":"Query"},"mutationType":{"name":"Mutation"},"subscriptionType":null,"types":[`+
		`{"name":"Int"},{"name":"Float"},{"name":"String"},{"name":"Boolean"},{"name":"ID"},`+
		`{"name":"Book"},{"name":"Author"},{"name":"Query"},{"name":"Mutation"},`+
		`{"name":"__Schema"},{"name":"__Type"},{"name":"__Field"},{"name":"__InputValue"},{"name":"__EnumValue"},{"name":"__Directive"},{"name":"__TypeKind"},{"name":"__DirectiveLocation"}],`+
		`"directives":[{"name":"include","locations":["FIELD","FRAGMENT_SPREAD","INLINE_FRAGMENT"],"args":[{"name":"if"}]},`+
		`{"name":"skip","locations":["FIELD","FRAGMENT_SPREAD","INLINE_FRAGMENT"],"args":[{"name":"if"}]}]}}}`, got)
}

func TestEnumValues(t *testing.T) {
	exec := newExecutor(t)
	got, _ := do(t, exec, `{ __type(name: "__TypeKind") { kind enumValues { name } fields { name } } }`)
	requireJSON(t, `{"data":{"__type":{"kind":"ENUM","enumValues":[{"name":"SCALAR"},{"name":"OBJECT"},{"name":"INTERFACE"},{"name":"UNION"},{"name":"ENUM"},{"name":"INPUT_OBJECT"},{"name":"LIST"},{"name":"NON_NULL"}],"fields":null}}}`, got)
}

func TestQueryFieldsStillResolve(t *testing.T) {
	exec := newExecutor(t)
	got, _ := do(t, exec, `{ book(id: 1) { name } __typename }`)
	requireJSON(t, `{"data":{"book":{"name":"The Sun Also Rises"},"__typename":"Query"}}`, got)
}

func TestExtend_LeavesOriginalUntouched(t *testing.T) {
	sch, err := books.NewSchema(store.NewDefault())
	require.NoError(t, err)
	extended, err := introspection.Extend(sch)
	require.NoError(t, err)

	require.Nil(t, sch.Types["Query"].Field("__schema"))
	require.Nil(t, sch.Types["__Schema"])
	require.NotNil(t, extended.Types["Query"].Field("__schema"))

	got, _ := do(t, executor.NewExecutor(extended), `{ __type(name: "Query") { fields { name } } }`)
	requireJSON(t, `{"data":{"__type":{"fields":[{"name":"book"},{"name":"books"},{"name":"authors"},{"name":"author"}]}}}`, got)
}

// The query GraphiQL sends to build its documentation explorer.
const introspectionQuery = `
query IntrospectionQuery {
  __schema {
    description
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types { ...FullType }
    directives {
      name
      description
      isRepeatable
      locations
      args(includeDeprecated: true) { ...InputValue }
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  specifiedByURL
  isOneOf
  fields(includeDeprecated: true) {
    name
    description
    args(includeDeprecated: true) { ...InputValue }
    type { ...TypeRef }
    isDeprecated
    deprecationReason
  }
  inputFields(includeDeprecated: true) { ...InputValue }
  interfaces { ...TypeRef }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes { ...TypeRef }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
  isDeprecated
  deprecationReason
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType { kind name }
    }
  }
}
`

func TestFullIntrospectionQuery(t *testing.T) {
	exec := newExecutor(t)
	_, res := do(t, exec, introspectionQuery)
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Data)

	schemaObj, _ := res.Data.(executor.Object).Get("__schema")
	types, _ := schemaObj.(executor.Object).Get("types")
	require.Len(t, types, 17)
}
