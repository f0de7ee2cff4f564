package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	reqid "github.com/hanpama/bookgraph/internal/reqid"
)

// RouterConfig configures the routes wrapped around a Handler.
type RouterConfig struct {
	// CORSOrigins enables CORS for the listed origins. "*" allows any origin.
	// Empty disables CORS.
	CORSOrigins []string

	// Logger receives recovered panics. Nil uses zap.NewNop.
	Logger *zap.Logger
}

// NewRouter serves graphql on /graphql and a health check on /healthz.
func NewRouter(graphql http.Handler, cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	router.Handle("/graphql", graphql)
	router.HandleFunc("/healthz", healthz).Methods(http.MethodGet, http.MethodHead)

	var handler http.Handler = router
	if len(cfg.CORSOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(cfg.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", reqid.Header}),
			handlers.ExposedHeaders([]string{reqid.Header}),
			handlers.OptionStatusCode(http.StatusNoContent),
		)(handler)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
		handlers.PrintRecoveryStack(false),
	)(handler)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type recoveryLogger struct{ l *zap.Logger }

func (r recoveryLogger) Println(v ...any) {
	r.l.Error("panic recovered", zap.String("panic", fmt.Sprint(v...)))
}
