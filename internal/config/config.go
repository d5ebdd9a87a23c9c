package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values come from env (optionally seeded from a .env file by cmd/api).
// No business logic should depend on raw environment variables.
type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Exotel ExotelConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string

	// MaxOpenConns caps the pool; 0 keeps the pool default.
	MaxOpenConns int
}

type RedisConfig struct {
	Host string
	Port int

	// CallLockTTL bounds how long one webhook delivery may hold the per-call lock.
	CallLockTTL time.Duration
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// ExotelConfig seeds the Exotel settings record.
type ExotelConfig struct {
	Enabled    bool
	APIKey     string
	APIToken   string
	AccountSID string

	BaseURL     string
	HTTPTimeout time.Duration
}

const defaultExotelBaseURL = "https://api.exotel.com"

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))
	{
		n, err := optionalInt("DB_MAX_OPEN_CONNS")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.MaxOpenConns = n
	}

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}
	c.Redis.CallLockTTL = mustDuration("CALL_LOCK_TTL")

	c.Auth = readAuth()

	{
		b, err := optionalBool("EXOTEL_ENABLED")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Exotel.Enabled = b
	}
	c.Exotel.APIKey = strings.TrimSpace(os.Getenv("EXOTEL_API_KEY"))
	c.Exotel.APIToken = os.Getenv("EXOTEL_API_TOKEN")
	c.Exotel.AccountSID = strings.TrimSpace(os.Getenv("EXOTEL_ACCOUNT_SID"))
	c.Exotel.BaseURL = strings.TrimSpace(os.Getenv("EXOTEL_BASE_URL"))
	c.Exotel.HTTPTimeout = mustDuration("EXOTEL_HTTP_TIMEOUT")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks required values and fills defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}
	if c.Redis.CallLockTTL <= 0 {
		c.Redis.CallLockTTL = 10 * time.Second
	}

	errs = append(errs, c.Auth.validate(c.IsProduction())...)

	if c.Exotel.BaseURL == "" {
		c.Exotel.BaseURL = defaultExotelBaseURL
	}
	if u, err := url.Parse(c.Exotel.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("EXOTEL_BASE_URL must be an absolute URL, got %q", c.Exotel.BaseURL))
	}
	if c.Exotel.HTTPTimeout <= 0 {
		c.Exotel.HTTPTimeout = 30 * time.Second
	}
	// Credentials are only mandatory once the integration is switched on.
	if c.Exotel.Enabled {
		if c.Exotel.APIKey == "" {
			errs = append(errs, errors.New("EXOTEL_API_KEY is required when EXOTEL_ENABLED"))
		}
		if c.Exotel.APIToken == "" {
			errs = append(errs, errors.New("EXOTEL_API_TOKEN is required when EXOTEL_ENABLED"))
		}
		if c.Exotel.AccountSID == "" {
			errs = append(errs, errors.New("EXOTEL_ACCOUNT_SID is required when EXOTEL_ENABLED"))
		}
	}

	return joinErrors(errs)
}

// LoadAuth reads and validates only the JWT_* settings, for tools that mint or check tokens
// without running the API. APP_ENV=production enforces issuer and audience as Load does.
func LoadAuth() (AuthConfig, error) {
	a := readAuth()
	if err := joinErrors(a.validate(strings.TrimSpace(os.Getenv("APP_ENV")) == "production")); err != nil {
		return AuthConfig{}, err
	}
	return a, nil
}

func readAuth() AuthConfig {
	return AuthConfig{
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTIssuer:       strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		JWTAudience:     strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
		AccessTokenTTL:  mustDuration("JWT_ACCESS_TTL"),
		RefreshTokenTTL: mustDuration("JWT_REFRESH_TTL"),
	}
}

// validate fills TTL defaults in place and returns every problem found.
func (a *AuthConfig) validate(production bool) []error {
	var errs []error
	if a.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if production {
		if a.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if a.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}
	if a.AccessTokenTTL <= 0 {
		a.AccessTokenTTL = 15 * time.Minute
	}
	if a.RefreshTokenTTL <= 0 {
		a.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if a.RefreshTokenTTL <= a.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func optionalBool(key string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
