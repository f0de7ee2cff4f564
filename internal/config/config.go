// Package config loads the serve configuration. Values come from defaults,
// then an optional YAML file, then command line flags, and the result is
// validated before use.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  Server  `yaml:"server"`
	GraphQL GraphQL `yaml:"graphql"`
	Store   Store   `yaml:"store"`
	Log     Log     `yaml:"log"`
	OTel    OTel    `yaml:"otel"`
}

type Server struct {
	Addr         string        `yaml:"addr" validate:"required"`
	Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
	Pretty       bool          `yaml:"pretty"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes" validate:"gte=0"`
	GraphiQL     bool          `yaml:"graphiql"`
	CORSOrigins  []string      `yaml:"corsOrigins" validate:"dive,required"`
}

type GraphQL struct {
	Introspection bool `yaml:"introspection"`
}

// Store names the YAML seed file. An empty Seed uses the built-in data.
type Store struct {
	Seed string `yaml:"seed"`
}

type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// OTel configures span export. Tracing is off while Endpoint is empty.
type OTel struct {
	Endpoint string `yaml:"endpoint" validate:"omitempty,hostname_port"`
	Service  string `yaml:"service" validate:"required_with=Endpoint"`
}

// Default returns the configuration used when neither a file nor flags set
// a value.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         ":8080",
			Timeout:      10 * time.Second,
			MaxBodyBytes: 1 << 20,
			GraphiQL:     true,
		},
		GraphQL: GraphQL{Introspection: true},
		Log:     Log{Level: "info"},
		OTel:    OTel{Service: "bookgraph"},
	}
}

// Decode reads YAML from r over a copy of base. Unknown keys are errors.
func Decode(r io.Reader, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := Decode(f, Default())
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Bind registers one flag per setting on fs, writing into c. The current
// values of c are the flag defaults.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Server.Addr, "server.addr", c.Server.Addr, "HTTP listen address")
	fs.DurationVar(&c.Server.Timeout, "server.timeout", c.Server.Timeout, "Per-request timeout")
	fs.BoolVar(&c.Server.Pretty, "server.pretty", c.Server.Pretty, "Pretty-print JSON responses")
	fs.Int64Var(&c.Server.MaxBodyBytes, "server.max-body-bytes", c.Server.MaxBodyBytes, "Maximum request body size")
	fs.BoolVar(&c.Server.GraphiQL, "server.graphiql", c.Server.GraphiQL, "Serve GraphiQL to browsers")
	fs.Var(&listFlag{values: &c.Server.CORSOrigins}, "server.cors-origin", "Allowed CORS origin. Repeatable")
	fs.BoolVar(&c.GraphQL.Introspection, "graphql.introspection", c.GraphQL.Introspection, "Enable GraphQL introspection")
	fs.StringVar(&c.Store.Seed, "store.seed", c.Store.Seed, "YAML seed file")
	fs.StringVar(&c.Log.Level, "log.level", c.Log.Level, "Log level: debug, info, warn or error")
	fs.BoolVar(&c.Log.Development, "log.development", c.Log.Development, "Human-readable development logs")
	fs.StringVar(&c.OTel.Endpoint, "otel.endpoint", c.OTel.Endpoint, "OTLP collector endpoint")
	fs.StringVar(&c.OTel.Service, "otel.service", c.OTel.Service, "OpenTelemetry service name")
}

// Parse builds a configuration from command line args. A -config file
// replaces the defaults, and flags given explicitly override the file.
func Parse(name string, args []string) (Config, error) {
	var path string
	cli := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&path, "config", "", "YAML config file")
	cli.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	overlay := flag.NewFlagSet(name, flag.ContinueOnError)
	overlay.SetOutput(new(bytes.Buffer))
	cfg.Bind(overlay)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || setErr != nil {
			return
		}
		setErr = overlay.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return Config{}, setErr
	}
	return cfg, cfg.Validate()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports every invalid setting in one error.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	// Namespace is "Config.server.addr"; drop the struct name.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_with":
		return fmt.Sprintf("%s is required when otel.endpoint is set", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", field)
	default:
		return fmt.Sprintf("%s failed validation for %q", field, fe.Tag())
	}
}

// listFlag collects repeated or comma separated values. The first Set
// replaces any preloaded values.
type listFlag struct {
	values *[]string
	set    bool
}

func (l *listFlag) String() string {
	if l == nil || l.values == nil {
		return ""
	}
	return strings.Join(*l.values, ",")
}

func (l *listFlag) Set(v string) error {
	if !l.set {
		*l.values = nil
		l.set = true
	}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*l.values = append(*l.values, s)
		}
	}
	return nil
}
