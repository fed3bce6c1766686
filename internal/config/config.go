// Package config loads the web front's runtime configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	CMS    CMSConfig
	Site   SiteConfig
	Paths  PathConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string        `env:"IMC_WEB_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"IMC_WEB_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"IMC_WEB_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"IMC_WEB_IDLE_TIMEOUT" envDefault:"120s"`
	// Dev reparses templates per request and disables asset caching.
	Dev bool `env:"IMC_DEV"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// CMSConfig points at the headless content API. An empty BaseURL serves content from
// PathConfig.ContentDir instead.
type CMSConfig struct {
	BaseURL string        `env:"CMS_BASE_URL"`
	Token   string        `env:"CMS_STATIC_TOKEN"`
	Timeout time.Duration `env:"CMS_TIMEOUT" envDefault:"5s"`
}

// SiteConfig lists the languages the site is built for.
type SiteConfig struct {
	Languages       []string `env:"SITE_LANGUAGES" envDefault:"en,de,ua" envSeparator:","`
	DefaultLanguage string   `env:"SITE_DEFAULT_LANGUAGE" envDefault:"en"`
	// BaseURL makes canonical and hreflang links absolute.
	BaseURL string `env:"SITE_BASE_URL"`
	// File is an optional YAML file with alias and flag tables.
	File string `env:"SITE_FILE"`
}

// PathConfig locates on-disk resources.
type PathConfig struct {
	Templates string `env:"TEMPLATES_DIR" envDefault:"templates"`
	Public    string `env:"PUBLIC_DIR" envDefault:"public"`
	Locales   string `env:"LOCALES_DIR" envDefault:"locales"`
	Content   string `env:"CONTENT_DIR" envDefault:"content"`
}

// fallbackKeys maps a key to the legacy name read when the key itself is unset.
var fallbackKeys = map[string]string{
	"IMC_WEB_PORT": "PORT",
	"CMS_BASE_URL": "NEXT_PUBLIC_DIRECTUS_URL",
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment, relying only on provided
// maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// EnvironmentValues returns the effective key/value environment after applying the same
// precedence rules as Load (dotenv < OS env < explicit env map).
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	merge := func(source map[string]string) {
		for key, value := range source {
			values[key] = value
		}
	}
	merge(dotEnvValues)
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			values[strings.TrimSpace(key)] = value
		}
	}
	merge(options.envMap)

	for key, legacy := range fallbackKeys {
		if _, ok := values[key]; ok {
			continue
		}
		if v, ok := values[legacy]; ok {
			values[key] = v
		}
	}
	return values, nil
}

// Load assembles the configuration from defaults, .env overrides, environment variables and
// the explicit env map, then validates it.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	values, err := EnvironmentValues(opts...)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: values}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	normalize(&cfg)

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func normalize(cfg *Config) {
	langs := make([]string, 0, len(cfg.Site.Languages))
	for _, code := range cfg.Site.Languages {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			langs = append(langs, code)
		}
	}
	cfg.Site.Languages = langs
	cfg.Site.DefaultLanguage = strings.ToLower(strings.TrimSpace(cfg.Site.DefaultLanguage))
	cfg.CMS.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.CMS.BaseURL), "/")
	cfg.Site.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Site.BaseURL), "/")
	cfg.Server.Port = strings.TrimSpace(cfg.Server.Port)
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	}
	if len(cfg.Site.Languages) == 0 {
		invalid = append(invalid, "Site.Languages")
	}
	found := false
	for _, code := range cfg.Site.Languages {
		if code == cfg.Site.DefaultLanguage {
			found = true
			break
		}
	}
	if !found {
		invalid = append(invalid, "Site.DefaultLanguage")
	}
	if cfg.CMS.BaseURL != "" && !isAbsoluteHTTP(cfg.CMS.BaseURL) {
		invalid = append(invalid, "CMS.BaseURL")
	}
	if cfg.Site.BaseURL != "" && !isAbsoluteHTTP(cfg.Site.BaseURL) {
		invalid = append(invalid, "Site.BaseURL")
	}
	if cfg.CMS.Timeout <= 0 {
		invalid = append(invalid, "CMS.Timeout")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}
