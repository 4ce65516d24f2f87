package config // package config loads application configuration from files and environment variables

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// DefaultAllowedOrigin is the only origin accepted by the login endpoint
// when ALLOWED_ORIGINS is not set.
const DefaultAllowedOrigin = "https://kossodo.estilovisual.com"

// DefaultConnectTimeout bounds establishing a connection to the store.
const DefaultConnectTimeout = 10 * time.Second

const defaultRequestTimeout = 5 * time.Second

// Config holds all runtime configuration values.  It is built once in
// main and handed to the components that need it; nothing else reads the
// environment.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Host           string        // HTTP bind host
	Port           string        // HTTP port to listen on
	Debug          bool          // echo debug mode and development logging
	LogLevel       string        // zap level name; empty uses the environment default
	LoginPath      string        // route of the login endpoint
	AllowedOrigins []string      // CORS origins allowed to call the login endpoint
	RequestTimeout time.Duration // budget for the store lookup of one request
	BcryptCost     int           // bcrypt cost for new hashes and the rehash hint
	MetricsEnabled bool          // expose /metrics

	DB      DBConfig
	Secrets SecretsConfig
	Audit   AuditConfig
}

// DBConfig describes how to reach the credential store.
type DBConfig struct {
	User            string
	Password        string
	Host            string
	Port            string
	Name            string
	Charset         string
	Collation       string
	TLS             string // go-sql-driver tls mode: "preferred", "true", "false", "skip-verify"
	ConnectTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SecretsConfig points at an optional AWS Secrets Manager entry holding
// the store credentials.  SecretID empty disables the lookup.
type SecretsConfig struct {
	SecretID string
	Region   string
}

// AuditConfig controls publishing and consuming of login attempt events.
type AuditConfig struct {
	AMQPURL         string
	Queue           string
	Buffer          int
	ConsumerEnabled bool
	LogDir          string
}

// Enabled reports whether login attempts should be published.
func (a AuditConfig) Enabled() bool { return a.AMQPURL != "" }

// Addr returns the host:port the HTTP server binds to.
func (c Config) Addr() string { return c.Host + ":" + c.Port }

// Load reads configuration from, in increasing precedence, the YAML file
// named by CONFIG_FILE, a .env file in the working directory and the
// process environment.  Missing required values are reported as an error.
// FLASK_HOST, FLASK_PORT and FLASK_DEBUG are accepted when the APP_ keys
// are unset.
func Load() (Config, error) {
	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return Config{}, errors.Wrap(err, "load .env")
	}
	return load(os.Getenv("CONFIG_FILE"))
}

func load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}
	}

	// Keys stay flat: DB_HOST -> db_host, matching the YAML file layout.
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(key), value
		},
	}), nil); err != nil {
		return Config{}, errors.Wrap(err, "load env variables")
	}

	r := reader{k: k}
	cfg := Config{
		Env:            r.str("app_env", "dev"),
		Host:           r.str("app_host", r.str("flask_host", "0.0.0.0")),
		Port:           r.str("app_port", r.str("flask_port", "5000")),
		Debug:          r.boolean("app_debug", r.boolean("flask_debug", false)),
		LogLevel:       r.str("log_level", ""),
		LoginPath:      r.str("login_path", "/login"),
		AllowedOrigins: r.list("allowed_origins", []string{DefaultAllowedOrigin}),
		RequestTimeout: r.duration("request_timeout", defaultRequestTimeout),
		BcryptCost:     r.integer("bcrypt_cost", 10),
		MetricsEnabled: r.boolean("metrics_enabled", true),
		DB: DBConfig{
			User:            r.required("db_user"),
			Password:        r.str("db_password", r.str("db_pass", "")),
			Host:            r.required("db_host"),
			Port:            r.str("db_port", "3306"),
			Name:            r.required("db_name"),
			Charset:         r.str("db_charset", "utf8mb4"),
			Collation:       r.str("db_collation", "utf8mb4_unicode_ci"),
			TLS:             r.str("db_tls", "preferred"),
			ConnectTimeout:  r.duration("db_connect_timeout", DefaultConnectTimeout),
			MaxOpenConns:    r.integer("db_max_open_conns", 25),
			MaxIdleConns:    r.integer("db_max_idle_conns", 25),
			ConnMaxLifetime: r.duration("db_conn_max_lifetime", 30*time.Minute),
		},
		Secrets: SecretsConfig{
			SecretID: r.str("db_secret_id", ""),
			Region:   r.str("aws_region", ""),
		},
		Audit: AuditConfig{
			AMQPURL:         r.str("audit_amqp_url", ""),
			Queue:           r.str("audit_queue", "auth.login"),
			Buffer:          r.integer("audit_buffer", 256),
			ConsumerEnabled: r.boolean("audit_consumer_enabled", false),
			LogDir:          r.str("audit_log_dir", "logs"),
		},
	}
	if len(r.missing) > 0 {
		return Config{}, errors.Errorf("missing required config: %s", strings.Join(r.missing, ", "))
	}
	if !strings.HasPrefix(cfg.LoginPath, "/") {
		cfg.LoginPath = "/" + cfg.LoginPath
	}
	// Both budgets must stay bounded.
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.DB.ConnectTimeout <= 0 {
		cfg.DB.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Audit.Buffer < 1 {
		cfg.Audit.Buffer = 1
	}
	return cfg, nil
}
