package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func run(t *testing.T, sch *schema.Schema, q string, vars map[string]any) *ExecutionResult {
	t.Helper()
	return NewExecutor(sch).ExecuteRequest(context.Background(), mustParseQuery(t, q), "", vars, nil)
}

func requireResult(t *testing.T, want, got *ExecutionResult) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func gqlErr(msg, code string, path ...PathElement) GraphQLError {
	e := GraphQLError{Message: msg, Extensions: map[string]any{"code": code}}
	if len(path) > 0 {
		e.Path = Path(path)
	}
	return e
}

var (
	ann      = map[string]any{"name": "Ann", "nick": "a"}
	nameless = map[string]any{"name": nil, "nick": "ghost"}
)

func value(v any) schema.ResolverFunc {
	return func(context.Context, any, map[string]any) (any, error) { return v, nil }
}

// testSchema has a Person type whose name is non-null, and query fields that
// return well-formed and malformed persons in different wrappers.
func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	str := schema.NamedType("String")
	person := schema.NewObject("Person", "").
		AddField(schema.NewField("name", "", schema.NonNullType(str))).
		AddField(schema.NewField("nick", "", str)).
		AddField(schema.NewField("friend", "", schema.NamedType("Person")).SetResolver(value(nameless)))

	query := schema.NewObject("Query", "").
		AddField(schema.NewField("person", "", schema.NamedType("Person")).SetResolver(value(ann))).
		AddField(schema.NewField("people", "", schema.ListType(schema.NonNullType(schema.NamedType("Person")))).
			SetResolver(value([]any{ann, nameless}))).
		AddField(schema.NewField("maybe", "", schema.ListType(schema.NamedType("Person"))).
			SetResolver(value([]map[string]any{ann, nameless}))).
		AddField(schema.NewField("required", "", schema.NonNullType(schema.NamedType("Person"))).
			SetResolver(value(nameless))).
		AddField(schema.NewField("fail", "", str).SetResolveFunc(func(context.Context, any, map[string]any) (any, error) {
			return nil, errors.New("boom")
		})).
		AddField(schema.NewField("double", "", schema.NamedType("Int")).
			AddArgument(schema.NewInputValue("n", "", schema.NonNullType(schema.NamedType("Int")))).
			SetResolveFunc(func(_ context.Context, _ any, args map[string]any) (any, error) {
				return args["n"].(int) * 2, nil
			})).
		AddField(schema.NewField("echo", "", str).
			AddArgument(schema.NewInputValue("s", "", str).SetDefault("dflt")).
			SetResolveFunc(func(_ context.Context, _ any, args map[string]any) (any, error) {
				return args["s"], nil
			})).
		AddField(schema.NewField("sum", "", schema.NamedType("Int")).
			AddArgument(schema.NewInputValue("ns", "", schema.ListType(schema.NamedType("Int")))).
			SetResolveFunc(func(_ context.Context, _ any, args map[string]any) (any, error) {
				total := 0
				for _, n := range args["ns"].([]any) {
					total += n.(int)
				}
				return total, nil
			})).
		AddField(schema.NewField("badInt", "", schema.NamedType("Int")).SetResolver(value("Hemingway")))

	var log []string
	mutation := schema.NewObject("Mutation", "").
		AddField(schema.NewField("append", "", schema.ListType(str)).
			AddArgument(schema.NewInputValue("v", "", schema.NonNullType(str))).
			SetResolveFunc(func(_ context.Context, _ any, args map[string]any) (any, error) {
				log = append(log, args["v"].(string))
				return append([]string(nil), log...), nil
			}))

	sch, err := schema.NewBuilder("").
		SetQueryType("Query").
		SetMutationType("Mutation").
		AddType(query).
		AddType(mutation).
		AddType(person).
		Build()
	require.NoError(t, err)
	return sch
}

func buildQueryOnly(t *testing.T) *schema.Schema {
	t.Helper()
	query := schema.NewObject("Query", "").
		AddField(schema.NewField("x", "", schema.NamedType("String")))
	sch, err := schema.NewBuilder("").SetQueryType("Query").AddType(query).Build()
	require.NoError(t, err)
	return sch
}
