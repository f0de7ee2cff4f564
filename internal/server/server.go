// Package server exposes an executor over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	eventbus "github.com/hanpama/bookgraph/internal/eventbus"
	events "github.com/hanpama/bookgraph/internal/events"
	executor "github.com/hanpama/bookgraph/internal/executor"
	language "github.com/hanpama/bookgraph/internal/language"
	reqid "github.com/hanpama/bookgraph/internal/reqid"
)

// Handler serves GraphQL over HTTP: it decodes requests, runs them through
// an executor and writes the JSON results.
type Handler struct {
	exec *executor.Executor
	opt  Options
}

type Options struct {
	// Timeout bounds each request whose context has no deadline yet.
	// 0 disables it.
	Timeout time.Duration

	// Pretty indents JSON responses.
	Pretty bool

	// MaxBodyBytes caps POST bodies; larger ones get 413. 0 means unlimited.
	MaxBodyBytes int64

	// GraphiQL serves the explorer page to GET requests that accept HTML
	// and carry no query.
	GraphiQL bool
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithGraphiQL(enable bool) Option    { return func(o *Options) { o.GraphiQL = enable } }

// New returns a Handler running exec. Without options it times requests out
// after 10s and serves GraphiQL.
func New(exec *executor.Executor, opts ...Option) *Handler {
	o := Options{Timeout: 10 * time.Second, GraphiQL: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Handler{exec: exec, opt: o}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}
	rid := r.Header.Get(reqid.Header)
	if rid != "" {
		ctx = reqid.WithID(ctx, rid)
	} else {
		ctx, rid = reqid.NewContext(ctx)
	}
	w.Header().Set(reqid.Header, rid)
	r = r.WithContext(ctx)

	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	status := h.serve(ctx, w, r)
	eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
}

// serve writes the response and returns its status.
func (h *Handler) serve(ctx context.Context, w http.ResponseWriter, r *http.Request) int {
	switch {
	case r.Method == http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return http.StatusNoContent
	case r.Method == http.MethodGet && h.opt.GraphiQL &&
		r.URL.Query().Get("query") == "" && acceptsHTML(r.Header.Get("Accept")):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(graphiqlPage)
		return http.StatusOK
	}

	req, batch, err := decodeRequest(r, h.opt.MaxBodyBytes)
	if err != nil {
		status := statusCode(err)
		if status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", "GET, POST, OPTIONS")
		}
		var he *httpError
		if !errors.As(err, &he) {
			he = &httpError{err: &language.Error{Message: err.Error()}}
		}
		writeJSON(w, status, newFailure(he.err), h.opt.Pretty)
		return status
	}

	if batch != nil {
		// Entries run in order and fail independently.
		results := make([]any, len(batch))
		for i := range batch {
			results[i], _ = h.execute(ctx, r.Method, batch[i])
		}
		writeJSON(w, http.StatusOK, results, h.opt.Pretty)
		return http.StatusOK
	}

	result, status := h.execute(ctx, r.Method, req)
	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", "POST")
	}
	writeJSON(w, status, result, h.opt.Pretty)
	return status
}

// execute parses and runs one operation. The status is 400 for a syntax
// error and 405 for a mutation sent with GET.
func (h *Handler) execute(ctx context.Context, method string, req Request) (any, int) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		var le *language.Error
		if !errors.As(err, &le) {
			le = &language.Error{Message: err.Error()}
		}
		return newFailure(le), http.StatusBadRequest
	}

	var opType string
	if op := selectOperation(doc, req.OperationName); op != nil {
		opType = string(op.Operation)
	}
	if method == http.MethodGet && opType == string(language.Mutation) {
		return newFailure(&language.Error{
			Message: "Can only perform a mutation operation from a POST request.",
		}), http.StatusMethodNotAllowed
	}

	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	result := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, nil)

	messages := make([]string, 0, len(result.Errors))
	errCodes := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		messages = append(messages, e.Message)
		errCodes = append(errCodes, e.Code())
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Errors:        messages,
		Codes:         errCodes,
		Duration:      time.Since(start),
	})
	return result, http.StatusOK
}

// selectOperation finds the operation the executor will run, or nil when
// the choice is ambiguous or the name is unknown.
func selectOperation(doc *language.QueryDocument, name string) *language.OperationDefinition {
	if name == "" {
		if len(doc.Operations) == 1 {
			return doc.Operations[0]
		}
		return nil
	}
	return doc.Operations.ForName(name)
}
