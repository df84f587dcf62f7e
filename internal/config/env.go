package config

import (
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vango-dev/routetree/internal/errors"
)

// Env holds tool settings read from the environment.
type Env struct {
	// Routes is the route map: a file path or an s3:// URI.
	Routes string `env:"ROUTETREE_ROUTES" envDefault:"routes.json"`

	// Addr is the preview server listen address.
	Addr string `env:"ROUTETREE_ADDR" envDefault:"localhost:4040"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel slog.Level `env:"ROUTETREE_LOG_LEVEL" envDefault:"info"`

	// Metrics enables the /metrics endpoint of the preview server.
	Metrics bool `env:"ROUTETREE_METRICS" envDefault:"true"`

	S3Region    string `env:"ROUTETREE_S3_REGION"`
	S3Endpoint  string `env:"ROUTETREE_S3_ENDPOINT"`
	S3AccessKey string `env:"ROUTETREE_S3_ACCESS_KEY"`
	S3SecretKey string `env:"ROUTETREE_S3_SECRET_KEY"`
}

// LoadEnv loads the given .env files (".env" when none are given), then
// parses the environment. Missing .env files are not an error; variables
// already set take precedence over the files.
func LoadEnv(files ...string) (*Env, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, errors.New(errors.CodeConfigEnv).
			WithDetail("cannot read .env file").
			Wrap(err)
	}
	return parseEnv(env.Options{})
}

// ParseEnv reads settings from the given variables only.
func ParseEnv(environ map[string]string) (*Env, error) {
	return parseEnv(env.Options{Environment: environ})
}

func parseEnv(opts env.Options) (*Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return nil, errors.New(errors.CodeConfigEnv).
			WithDetail(err.Error()).
			Wrap(err)
	}
	return &e, nil
}

// RemoteOptions returns the S3 settings as LoadURI options.
func (e *Env) RemoteOptions() []RemoteOption {
	var opts []RemoteOption
	if e.S3Region != "" {
		opts = append(opts, WithRegion(e.S3Region))
	}
	if e.S3Endpoint != "" {
		opts = append(opts, WithEndpoint(e.S3Endpoint))
	}
	if e.S3AccessKey != "" {
		opts = append(opts, WithStaticCredentials(e.S3AccessKey, e.S3SecretKey))
	}
	return opts
}
