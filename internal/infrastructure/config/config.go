package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects who provides auth and row storage.
type Backend string

const (
	BackendSupabase Backend = "supabase"
	BackendPostgres Backend = "postgres"
)

type Config struct {
	HTTPAddr string
	// BaseURL is the public origin; confirmation links come back to BaseURL/auth/callback.
	BaseURL string
	Backend Backend

	SupabaseURL     string
	SupabaseAnonKey string

	DatabaseURL string
	JWTSecret   []byte

	SessionHashKey  []byte // base64
	SessionBlockKey []byte // base64
	CSRFKey         []byte // base64, 32 bytes

	ResendAPIKey string
	EmailFrom    string

	ClientIdle time.Duration
	LogLevel   slog.Level
	DevMode    bool
}

// Load reads an optional .env file, then the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:        envDefault("HTTP_ADDR", ":8080"),
		BaseURL:         strings.TrimRight(envDefault("BASE_URL", "http://localhost:8080"), "/"),
		Backend:         Backend(strings.ToLower(envDefault("BACKEND", string(BackendSupabase)))),
		SupabaseURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("SUPABASE_URL")), "/"),
		SupabaseAnonKey: strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:       []byte(strings.TrimSpace(os.Getenv("JWT_SECRET"))),
		ResendAPIKey:    strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		EmailFrom:       envDefault("EMAIL_FROM", "Salto Tennis Club <no-reply@saltoclub.local>"),
		DevMode:         strings.TrimSpace(os.Getenv("DEV_MODE")) == "1",
	}

	idle, err := strconv.Atoi(envDefault("CLIENT_IDLE_MINUTES", "30"))
	if err != nil || idle <= 0 {
		return cfg, fmt.Errorf("CLIENT_IDLE_MINUTES must be a positive integer")
	}
	cfg.ClientIdle = time.Duration(idle) * time.Minute

	if err := cfg.LogLevel.UnmarshalText([]byte(envDefault("LOG_LEVEL", "info"))); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch cfg.Backend {
	case BackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
			return cfg, fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		if len(cfg.JWTSecret) < 32 {
			return cfg, fmt.Errorf("JWT_SECRET must be at least 32 bytes for the postgres backend")
		}
	default:
		return cfg, fmt.Errorf("BACKEND must be %q or %q (got %q)", BackendSupabase, BackendPostgres, cfg.Backend)
	}

	if cfg.SessionHashKey, err = optionalB64("SESSION_HASH_KEY"); err != nil {
		return cfg, err
	}
	if cfg.SessionBlockKey, err = optionalB64("SESSION_BLOCK_KEY"); err != nil {
		return cfg, err
	}
	if cfg.CSRFKey, err = optionalB64("CSRF_KEY"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// RequireWebKeys checks the secrets only the web server needs.
func (c Config) RequireWebKeys() error {
	if len(c.SessionHashKey) == 0 {
		return fmt.Errorf("SESSION_HASH_KEY is required (base64)")
	}
	switch len(c.SessionBlockKey) {
	case 16, 24, 32:
	default:
		return fmt.Errorf("SESSION_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", len(c.SessionBlockKey))
	}
	if len(c.CSRFKey) == 0 && !c.DevMode {
		return fmt.Errorf("CSRF_KEY is required (base64) unless DEV_MODE=1")
	}
	if len(c.CSRFKey) != 0 && len(c.CSRFKey) != 32 {
		return fmt.Errorf("CSRF_KEY must decode to 32 bytes (got %d)", len(c.CSRFKey))
	}
	return nil
}

// CallbackURL is where confirmation e-mails send the member back to.
func (c Config) CallbackURL() string { return c.BaseURL + "/auth/callback" }

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func optionalB64(k string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil, nil
	}
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
