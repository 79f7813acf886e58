package web

import (
	"log"
	"net/http"
	"time"

	"github.com/jrazmi/artplanner/sdk/environment"
)

// WebServer is the planner API listener plus the config it was built from.
type WebServer struct {
	*http.Server
	Config ServerConfig
}

// ServerConfig is read from PREFIX_* variables by LoadServerConfig.
type ServerConfig struct {
	Port              string        `env:"PORT" default:":5000"`
	CORSOrigins       []string      `env:"CORS_ORIGINS" default:"http://localhost:3000" separator:","`
	EnableDebug       bool          `env:"ENABLE_DEBUG" default:"false"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" default:"30s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" default:"20s"`
	MaxHeaderBytes    int           `env:"MAX_HEADER_BYTES" default:"65536"`
}

func LoadServerConfig(prefix string) (ServerConfig, error) {
	var cfg ServerConfig
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

type serveroptions struct {
	handler  http.Handler
	errorLog *log.Logger
}

type ServerOption func(*serveroptions)

func WithHandler(handler http.Handler) ServerOption {
	return func(o *serveroptions) {
		o.handler = handler
	}
}

// WithErrorLog routes net/http's own errors (TLS, bad requests) to log.
func WithErrorLog(errorLog *log.Logger) ServerOption {
	return func(o *serveroptions) {
		o.errorLog = errorLog
	}
}

// NewServer builds the listener. ReadTimeout also bounds multipart uploads.
func NewServer(cfg ServerConfig, opts ...ServerOption) *WebServer {
	o := &serveroptions{}
	for _, opt := range opts {
		opt(o)
	}

	return &WebServer{
		Server: &http.Server{
			Addr:              cfg.Port,
			Handler:           o.handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
			ErrorLog:          o.errorLog,
		},
		Config: cfg,
	}
}
