package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hanpama/bookgraph/internal/books"
	"github.com/hanpama/bookgraph/internal/config"
	"github.com/hanpama/bookgraph/internal/eventbus"
	"github.com/hanpama/bookgraph/internal/executor"
	"github.com/hanpama/bookgraph/internal/introspection"
	"github.com/hanpama/bookgraph/internal/logging"
	"github.com/hanpama/bookgraph/internal/otel"
	"github.com/hanpama/bookgraph/internal/schema"
	"github.com/hanpama/bookgraph/internal/server"
	"github.com/hanpama/bookgraph/internal/store"
)

const rootUsage = `bookgraph: GraphQL server for books and their authors

USAGE:
  bookgraph <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL server
  print-schema     Print the schema as SDL
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>                   YAML config file. Flags override its values
  -server.addr <addr>              HTTP listen address (default: :8080)
  -server.timeout <duration>       Per-request timeout, e.g. 10s (default: 10s)
  -server.pretty                   Pretty-print JSON responses
  -server.max-body-bytes <n>       Maximum request body size (default: 1048576)
  -server.graphiql <bool>          Serve GraphiQL to browsers (default: true)
  -server.cors-origin <origin>     Allowed CORS origin. Repeatable; "*" allows any
  -graphql.introspection <bool>    Enable GraphQL introspection (default: true)
  -store.seed <file>               YAML seed file (default: built-in data)
  -log.level <level>               debug, info, warn or error (default: info)
  -log.development                 Human-readable console logs
  -otel.endpoint <addr>            OTLP collector endpoint
  -otel.service <name>             OpenTelemetry service name (default: bookgraph)
`

const printSchemaUsage = `print-schema FLAGS:
  -out <file>              Write SDL to file (default: stdout)
`

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("bookgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(ctx, cmdArgs)
	case "print-schema":
		return cmdPrintSchema(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "print-schema":
		fmt.Fprint(stdout, printSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdServe(ctx context.Context, args []string) error {
	cfg, err := config.Parse("serve", args)
	if err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	bus := eventbus.New()
	eventbus.Use(bus)
	defer eventbus.Use(nil)
	defer logging.Subscribe(bus, logger)()

	shutdownTracing, err := otel.Setup(ctx, bus, cfg.OTel.Endpoint, cfg.OTel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	handler, err := newHandler(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("GraphQL server listening", zap.String("addr", cfg.Server.Addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newHandler assembles the store, schema, executor and routes for cfg.
func newHandler(cfg config.Config, logger *zap.Logger) (http.Handler, error) {
	st, err := openStore(cfg.Store.Seed)
	if err != nil {
		return nil, err
	}
	sch, err := buildSchema(st, cfg.GraphQL.Introspection)
	if err != nil {
		return nil, err
	}

	sopts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithGraphiQL(cfg.Server.GraphiQL),
	}
	if cfg.Server.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	h := server.New(executor.NewExecutor(sch), sopts...)
	return server.NewRouter(h, server.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	}), nil
}

func openStore(seedPath string) (*store.Store, error) {
	if seedPath == "" {
		return store.NewDefault(), nil
	}
	seed, err := store.LoadSeed(seedPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	return store.New(seed.Authors, seed.Books), nil
}

func buildSchema(st *store.Store, withIntrospection bool) (*schema.Schema, error) {
	sch, err := books.NewSchema(st)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	if withIntrospection {
		if sch, err = introspection.Extend(sch); err != nil {
			return nil, fmt.Errorf("introspection: %w", err)
		}
	}
	return sch, nil
}

func cmdPrintSchema(args []string) error {
	outFile := ""
	fs := flag.NewFlagSet("print-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, printSchemaUsage)
		return err
	}

	sch, err := buildSchema(store.NewDefault(), false)
	if err != nil {
		return err
	}
	sdl := schema.Render(sch)
	if outFile == "" {
		fmt.Fprint(stdout, sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}
