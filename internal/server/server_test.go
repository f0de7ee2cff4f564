package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/bookgraph/internal/books"
	eventbus "github.com/hanpama/bookgraph/internal/eventbus"
	events "github.com/hanpama/bookgraph/internal/events"
	executor "github.com/hanpama/bookgraph/internal/executor"
	"github.com/hanpama/bookgraph/internal/introspection"
	reqid "github.com/hanpama/bookgraph/internal/reqid"
	"github.com/hanpama/bookgraph/internal/store"
)

func newTestHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	sch, err := books.NewSchema(store.NewDefault())
	require.NoError(t, err)
	sch, err = introspection.Extend(sch)
	require.NoError(t, err)
	return New(executor.NewExecutor(sch), opts...)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func requireBody(t *testing.T, want string, w *httptest.ResponseRecorder) {
	t.Helper()
	if diff := cmp.Diff(want, strings.TrimSpace(w.Body.String())); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestPost(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `{"query":"query ($id: Int) { book(id: $id) { name author { name } } }","variables":{"id":2}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	requireBody(t, `{"data":{"book":{"name":"A Farewell to Arms","author":{"name":"Ernest Hemingway"}}}}`, w)
}

func TestPost_FieldErrorKeepsStatus(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `{"query":"{ book(id: 1) { title } }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	requireBody(t, `{"data":{"book":{"title":null}},"errors":[{"message":"Cannot query field \"title\" on type \"Book\".","path":["book","title"],"extensions":{"code":"FIELD_NOT_FOUND"}}]}`, w)
}

func TestGet(t *testing.T) {
	h := newTestHandler(t)
	q := url.Values{"query": {"{ author(id: 2) { name } }"}}
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	requireBody(t, `{"data":{"author":{"name":"F. Scott Fitzgerald"}}}`, w)
}

func TestGraphiQL(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), "GraphiQL.createFetcher")

	h = newTestHandler(t, WithGraphiQL(false))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseError(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `{"query":"{ book(id: 1) { name }"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `"data":null`)
	require.Contains(t, body, `"locations":[{"line":1,`)
	require.Contains(t, body, `"extensions":{"code":"REQUEST_ERROR"}`)
}

func TestBadRequests(t *testing.T) {
	h := newTestHandler(t, WithMaxBodyBytes(64))
	tests := []struct {
		name   string
		method string
		ctype  string
		body   string
		status int
		msg    string
	}{
		{name: "invalid json", method: http.MethodPost, body: `{"query":`, status: http.StatusBadRequest, msg: "invalid JSON"},
		{name: "missing query", method: http.MethodPost, body: `{}`, status: http.StatusBadRequest, msg: "missing 'query'"},
		{name: "empty batch", method: http.MethodPost, body: `[]`, status: http.StatusBadRequest, msg: "empty batch"},
		{name: "content type", method: http.MethodPost, ctype: "text/plain", body: `{ books { id } }`, status: http.StatusUnsupportedMediaType, msg: "unsupported Content-Type"},
		{name: "too large", method: http.MethodPost, body: `{"query":"{ books { id name authorId author { id name books { id } } } }"}`, status: http.StatusRequestEntityTooLarge, msg: "body too large"},
		{name: "method", method: http.MethodPut, body: `{}`, status: http.StatusMethodNotAllowed, msg: "method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/graphql", bytes.NewBufferString(tt.body))
			ctype := tt.ctype
			if ctype == "" {
				ctype = "application/json"
			}
			req.Header.Set("Content-Type", ctype)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			require.Equal(t, tt.status, w.Code)
			requireBody(t, `{"data":null,"errors":[{"message":"`+tt.msg+`","extensions":{"code":"REQUEST_ERROR"}}]}`, w)
		})
	}
}

func TestPostGraphQLBody(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{ book(id: 4) { name } }`))
	req.Header.Set("Content-Type", "application/graphql; charset=utf-8")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	requireBody(t, `{"data":{"book":{"name":"The Great Gatsby"}}}`, w)
}

func TestGetRejectsMutation(t *testing.T) {
	h := newTestHandler(t)
	q := url.Values{"query": {`mutation { addAuthor(name: "x") { id } }`}}
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, "POST", w.Header().Get("Allow"))
	requireBody(t, `{"data":null,"errors":[{"message":"Can only perform a mutation operation from a POST request.","extensions":{"code":"REQUEST_ERROR"}}]}`, w)

	// Nothing was written.
	w = post(t, h, `{"query":"{ authors { id } }"}`)
	requireBody(t, `{"data":{"authors":[{"id":1},{"id":2},{"id":3}]}}`, w)
}

func TestGetVariables(t *testing.T) {
	h := newTestHandler(t)
	q := url.Values{
		"query":     {"query One($id: Int) { book(id: $id) { name } }"},
		"variables": {`{"id": 9}`},
	}
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	requireBody(t, `{"data":{"book":{"name":"Light in August"}}}`, w)

	q.Set("variables", "{")
	req = httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	requireBody(t, `{"data":null,"errors":[{"message":"invalid 'variables' JSON","extensions":{"code":"REQUEST_ERROR"}}]}`, w)
}

func TestBatch(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `[{"query":"mutation { addAuthor(name: \"Zadie Smith\") { id } }"},{"query":"{"},{"query":"{ authors { id } }"}]`)
	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	require.Equal(t, map[string]any{"addAuthor": map[string]any{"id": float64(4)}}, got[0]["data"])
	require.Nil(t, got[1]["data"])
	require.Len(t, got[1]["errors"], 1)
	require.Equal(t, map[string]any{"authors": []any{
		map[string]any{"id": float64(1)}, map[string]any{"id": float64(2)},
		map[string]any{"id": float64(3)}, map[string]any{"id": float64(4)},
	}}, got[2]["data"])
}

func TestPretty(t *testing.T) {
	h := newTestHandler(t, WithPretty())
	w := post(t, h, `{"query":"{ book(id: 1) { id } }"}`)
	require.Equal(t, "{\n  \"data\": {\n    \"book\": {\n      \"id\": 1\n    }\n  }\n}\n", w.Body.String())
}

func TestRequestID(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	var ids []string
	var finish events.HTTPFinish
	eventbus.On(bus, func(ctx context.Context, _ events.GraphQLFinish) {
		id, _ := reqid.FromContext(ctx)
		ids = append(ids, id)
	})
	eventbus.On(bus, func(_ context.Context, e events.HTTPFinish) { finish = e })

	h := newTestHandler(t)
	w := post(t, h, `{"query":"{ books { id } }"}`)
	require.NotEmpty(t, w.Header().Get(reqid.Header))
	require.Equal(t, []string{w.Header().Get(reqid.Header)}, ids)
	require.Equal(t, http.StatusOK, finish.Status)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{"query":"{ books { id } }"}`))
	req.Header.Set(reqid.Header, "caller-id")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "caller-id", w.Header().Get(reqid.Header))
	require.Equal(t, "caller-id", ids[1])
}

func TestRequestScopeIgnoresCallerID(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	var scopes []any
	eventbus.On(bus, func(ctx context.Context, _ events.HTTPStart) {
		scope, ok := reqid.Scope(ctx)
		require.True(t, ok)
		scopes = append(scopes, scope)
	})

	h := newTestHandler(t)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{"query":"{ books { id } }"}`))
		req.Header.Set(reqid.Header, "shared")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	require.Len(t, scopes, 2)
	require.NotEqual(t, scopes[0], scopes[1])
}

func TestGraphQLEvents(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	var got events.GraphQLFinish
	eventbus.On(bus, func(_ context.Context, e events.GraphQLFinish) { got = e })

	h := newTestHandler(t)
	post(t, h, `{"query":"mutation Add { addBook(name: \"x\") { id } }","operationName":"Add"}`)

	got.Duration = 0
	want := events.GraphQLFinish{
		Query:         `mutation Add { addBook(name: "x") { id } }`,
		OperationName: "Add",
		OperationType: "mutation",
		Errors:        []string{`argument "authorId" of required type Int! was not provided`},
		Codes:         []string{executor.CodeCoercion},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("event mismatch (-want +got):\n%s", diff)
	}
}
