package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	language "github.com/hanpama/bookgraph/internal/language"
)

// Request is one GraphQL operation as sent by a client.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// httpError is a request that cannot be executed. It is answered with
// status and a single REQUEST_ERROR.
type httpError struct {
	status int
	err    *language.Error
}

func (e *httpError) Error() string { return e.err.Message }

func badRequest(msg string) *httpError {
	return &httpError{status: http.StatusBadRequest, err: &language.Error{Message: msg}}
}

// statusCode returns the HTTP status an error from decodeRequest indicates.
func statusCode(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	return http.StatusInternalServerError
}

// decodeRequest reads the operations of r. batch is non-nil when the body
// was a JSON array; otherwise req holds the single operation.
//
// GET reads query, operationName and variables from the URL. POST accepts
// application/json (an object or a non-empty array) and application/graphql
// (the body is the query text).
func decodeRequest(r *http.Request, maxBody int64) (req Request, batch []Request, err error) {
	switch r.Method {
	case http.MethodGet:
		req, err = decodeQueryString(r)
		return req, nil, err
	case http.MethodPost:
	default:
		return Request{}, nil, &httpError{
			status: http.StatusMethodNotAllowed,
			err:    &language.Error{Message: "method not allowed"},
		}
	}

	contentType, _, perr := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if perr != nil || (contentType != "application/json" && contentType != "application/graphql") {
		return Request{}, nil, &httpError{
			status: http.StatusUnsupportedMediaType,
			err:    &language.Error{Message: "unsupported Content-Type"},
		}
	}

	body, err := readBody(r, maxBody)
	if err != nil {
		return Request{}, nil, err
	}

	if contentType == "application/graphql" {
		req = Request{Query: string(body)}
	} else if trimmed := strings.TrimSpace(string(body)); strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(body, &batch); err != nil {
			return Request{}, nil, badRequest("invalid JSON")
		}
		if len(batch) == 0 {
			return Request{}, nil, badRequest("empty batch")
		}
		return Request{}, batch, nil
	} else if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, nil, badRequest("invalid JSON")
	}
	if req.Query == "" {
		return Request{}, nil, badRequest("missing 'query'")
	}
	return req, nil, nil
}

func decodeQueryString(r *http.Request) (Request, error) {
	values := r.URL.Query()
	req := Request{Query: values.Get("query"), OperationName: values.Get("operationName")}
	if req.Query == "" {
		return Request{}, badRequest("missing 'query'")
	}
	if v := values.Get("variables"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
			return Request{}, badRequest("invalid 'variables' JSON")
		}
	}
	return req, nil
}

// readBody reads at most maxBody bytes. 0 means unlimited.
func readBody(r *http.Request, maxBody int64) ([]byte, error) {
	defer r.Body.Close()
	var reader io.Reader = r.Body
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, badRequest("failed to read body")
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return nil, &httpError{
			status: http.StatusRequestEntityTooLarge,
			err:    &language.Error{Message: "body too large"},
		}
	}
	return body, nil
}
