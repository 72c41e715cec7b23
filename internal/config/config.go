// Package config provides application configuration loaded from environment
// variables (optionally seeded from a local .env file) with defaults and
// validation. It centralizes server, logging, storage, push, matching,
// payment, scheduling and observability settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // HYGIENE_TIMEZONE validation on minimal images

	"github.com/joho/godotenv"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects the backing store.
type DBConfig struct {
	Driver string // sqlite|postgres
	DSN    string // file path for sqlite, connection string for postgres
}

// AuthConfig holds caller-identity settings for RPC and ingestion routes.
type AuthConfig struct {
	JWTSecret   string // HS256 secret used to verify bearer tokens
	EventsToken string // shared bearer for change-event ingestion; empty disables the check
}

// PushConfig configures the push gateway and fan-out.
type PushConfig struct {
	ProductName     string // default notification title
	CredentialsFile string // FCM service-account JSON; empty selects the log-only gateway
	ProjectID       string
	BatchSize       int // tokens per multicast, 1..500
}

// MatchConfig tunes the geo matcher.
type MatchConfig struct {
	MaxRadiusKm     float64
	DefaultRadiusKm float64
	TopN            int
}

// ChatConfig tunes the chat aggregator.
type ChatConfig struct {
	// AllowUnassigned lets a provider message reach the client before the
	// order has an assigned provider. Off by default.
	AllowUnassigned bool
}

// PaymentsConfig configures the payment processor integration.
type PaymentsConfig struct {
	StripeSecretKey     string
	StripeWebhookSecret string
	CommissionRate      float64 // platform fee fraction in [0,1]
	DefaultCurrency     string
	AppBaseURL          string // base for onboarding refresh/return URLs
}

// HygieneConfig configures scheduled endpoint-registry maintenance.
type HygieneConfig struct {
	Schedule    string        // cron expression
	Timezone    string        // IANA zone for Schedule
	EndpointTTL time.Duration // 0 keeps every endpoint (log-only run)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	DB DBConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	Auth     AuthConfig
	Push     PushConfig
	Match    MatchConfig
	Chat     ChatConfig
	Payments PaymentsConfig
	Hygiene  HygieneConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads an optional .env file, then configuration from environment
// variables, applies defaults, normalizes values, and validates the result.
// Variables already present in the environment take precedence over .env.
func Load() (Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			DSN:    getenv("DB_DSN", "chegaja.db"),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		Auth: AuthConfig{
			JWTSecret:   getenv("JWT_SECRET", ""),
			EventsToken: getenv("EVENTS_TOKEN", ""),
		},
		Push: PushConfig{
			ProductName:     getenv("PRODUCT_NAME", "ChegaJá"),
			CredentialsFile: getenv("FCM_CREDENTIALS_FILE", ""),
			ProjectID:       getenv("FCM_PROJECT_ID", ""),
			BatchSize:       getint("PUSH_BATCH_SIZE", 500),
		},
		Match: MatchConfig{
			MaxRadiusKm:     getfloat("MATCH_MAX_RADIUS_KM", 20),
			DefaultRadiusKm: getfloat("MATCH_DEFAULT_RADIUS_KM", 10),
			TopN:            getint("MATCH_TOP_N", 30),
		},
		Chat: ChatConfig{
			AllowUnassigned: getbool("CHAT_ALLOW_UNASSIGNED", false),
		},
		Payments: PaymentsConfig{
			StripeSecretKey:     getenv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret: getenv("STRIPE_WEBHOOK_SECRET", ""),
			CommissionRate:      getfloat("DEFAULT_COMMISSION_RATE", 0.15),
			DefaultCurrency:     strings.ToLower(getenv("DEFAULT_CURRENCY", "eur")),
			AppBaseURL:          strings.TrimRight(getenv("APP_BASE_URL", "http://localhost:5000"), "/"),
		},
		Hygiene: HygieneConfig{
			Schedule:    getenv("HYGIENE_SCHEDULE", "0 3 * * *"),
			Timezone:    getenv("HYGIENE_TIMEZONE", "Europe/Lisbon"),
			EndpointTTL: getdur("ENDPOINT_TTL", 0),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "chegaja-engine"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" {
		cfg.DB.Driver = "postgres"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite", "postgres":
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if strings.TrimSpace(cfg.DB.DSN) == "" {
		return cfg, errors.New("DB_DSN must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.GinMode == "release" && strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return cfg, errors.New("JWT_SECRET must be set in release mode")
	}
	if cfg.Push.BatchSize < 1 || cfg.Push.BatchSize > 500 {
		return cfg, errors.New("PUSH_BATCH_SIZE must be between 1 and 500")
	}
	if cfg.Match.MaxRadiusKm <= 0 || cfg.Match.DefaultRadiusKm <= 0 {
		return cfg, errors.New("MATCH_MAX_RADIUS_KM and MATCH_DEFAULT_RADIUS_KM must be > 0")
	}
	if cfg.Match.TopN < 1 {
		return cfg, errors.New("MATCH_TOP_N must be >= 1")
	}
	if cfg.Payments.CommissionRate < 0 || cfg.Payments.CommissionRate > 1 {
		return cfg, errors.New("DEFAULT_COMMISSION_RATE must be in [0,1]")
	}
	if cfg.Payments.DefaultCurrency == "" {
		return cfg, errors.New("DEFAULT_CURRENCY must not be empty")
	}
	if cfg.Hygiene.EndpointTTL < 0 {
		return cfg, errors.New("ENDPOINT_TTL must be >= 0")
	}
	if _, err := time.LoadLocation(cfg.Hygiene.Timezone); err != nil {
		return cfg, errors.New("HYGIENE_TIMEZONE must be a valid IANA time zone")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
