package server

import (
	"bytes"
	stdjson "encoding/json"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	executor "github.com/hanpama/bookgraph/internal/executor"
	language "github.com/hanpama/bookgraph/internal/language"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type requestError struct {
	Message    string         `json:"message"`
	Locations  []location     `json:"locations,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// failure is the body for an operation that never reached execution.
type failure struct {
	Data   any            `json:"data"`
	Errors []requestError `json:"errors"`
}

func newFailure(err *language.Error) failure {
	re := requestError{Message: err.Message, Extensions: map[string]any{"code": executor.CodeRequest}}
	for _, loc := range err.Locations {
		re.Locations = append(re.Locations, location{Line: loc.Line, Column: loc.Column})
	}
	return failure{Errors: []requestError{re}}
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	body, err := json.Marshal(v)
	if err == nil && pretty {
		// Objects marshal themselves compactly, so indent the whole document.
		var buf bytes.Buffer
		if err = stdjson.Indent(&buf, body, "", "  "); err == nil {
			body = buf.Bytes()
		}
	}
	if err != nil {
		http.Error(w, "GraphQL marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// acceptsHTML reports whether a browser is asking for a page.
func acceptsHTML(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if mediaType == "text/html" || mediaType == "*/*" {
			return true
		}
	}
	return false
}
