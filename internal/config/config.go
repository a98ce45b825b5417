// AngelaMos | 2026
// config.go

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Club      ClubConfig      `koanf:"club"`
	Cache     CacheConfig     `koanf:"cache"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
	KeyPrefix    string `koanf:"key_prefix"`
}

type JWTConfig struct {
	PrivateKeyPath     string        `koanf:"private_key_path"`
	PublicKeyPath      string        `koanf:"public_key_path"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

const (
	SlotPolicyClaim       = "claim"
	SlotPolicyIndependent = "independent"
)

type ClubConfig struct {
	Name       string `koanf:"name"`
	Timezone   string `koanf:"timezone"`
	MaxPlayers int    `koanf:"max_players"`
	SlotPolicy string `koanf:"slot_policy"`
}

type CacheConfig struct {
	CourseTTL time.Duration `koanf:"course_ttl"`
}

//go:embed defaults.yaml
var defaultsYAML []byte

// embedded serves the compiled-in defaults to koanf as the bottom layer.
type embedded []byte

func (e embedded) ReadBytes() ([]byte, error) { return e, nil }

func (e embedded) Read() (map[string]any, error) {
	return nil, errors.New("embedded provider only supports ReadBytes")
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// Load layers the built-in defaults, the YAML file at configPath (if any)
// and the environment, in that order. The result is cached for the life of
// the process.
func Load(configPath string) (*Config, error) {
	once.Do(func() {
		cfg, loadErr = load(configPath)
	})
	return cfg, loadErr
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	type layer struct {
		name     string
		provider koanf.Provider
		parser   koanf.Parser
	}

	layers := []layer{{"defaults", embedded(defaultsYAML), yaml.Parser()}}
	if configPath != "" {
		layers = append(layers, layer{"config file", file.Provider(configPath), yaml.Parser()})
	}
	layers = append(layers, layer{"env vars", env.Provider("", ".", envKeyReplacer), nil})

	for _, l := range layers {
		if err := k.Load(l.provider, l.parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", l.name, err)
		}
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// envKeyMap binds the deployment's environment variable names to config
// paths. Anything not listed here is ignored.
var envKeyMap = map[string]string{
	"ENVIRONMENT": "app.environment",
	"HOST":        "server.host",
	"PORT":        "server.port",
	"LOG_LEVEL":   "log.level",
	"LOG_FORMAT":  "log.format",

	"DATABASE_URL":     "database.url",
	"REDIS_URL":        "redis.url",
	"REDIS_KEY_PREFIX": "redis.key_prefix",

	"JWT_PRIVATE_KEY_PATH":     "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":      "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":  "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE": "jwt.refresh_token_expire",
	"JWT_ISSUER":               "jwt.issuer",
	"JWT_AUDIENCE":             "jwt.audience",

	"RATE_LIMIT_REQUESTS": "rate_limit.requests",
	"RATE_LIMIT_WINDOW":   "rate_limit.window",
	"RATE_LIMIT_BURST":    "rate_limit.burst",

	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"OTEL_SERVICE_NAME":           "otel.service_name",

	"CLUB_NAME":        "club.name",
	"CLUB_TIMEZONE":    "club.timezone",
	"CLUB_MAX_PLAYERS": "club.max_players",
	"CLUB_SLOT_POLICY": "club.slot_policy",
	"CACHE_COURSE_TTL": "cache.course_ttl",
}

func envKeyReplacer(s string) string {
	return envKeyMap[s]
}

// validate reports every problem at once so a bad deploy shows the whole
// list instead of one line per restart.
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Database.URL != "", "DATABASE_URL is required")
	check(c.Redis.URL != "", "REDIS_URL is required")
	check(c.JWT.PrivateKeyPath != "", "JWT_PRIVATE_KEY_PATH is required")
	check(c.JWT.PublicKeyPath != "", "JWT_PUBLIC_KEY_PATH is required")
	check(c.Server.ReadTimeout > 0, "server.read_timeout must be positive")
	check(c.Server.WriteTimeout > 0, "server.write_timeout must be positive")
	check(c.RateLimit.Requests > 0 && c.RateLimit.Burst > 0,
		"rate_limit.requests and rate_limit.burst must be positive")
	check(c.RateLimit.Window > 0, "rate_limit.window must be positive")
	check(!(c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*")),
		"CORS wildcard origin cannot be combined with credentials")
	check(!(c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure),
		"OTEL_INSECURE must be false in production")

	if _, err := time.LoadLocation(c.Club.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("club.timezone %q: %w", c.Club.Timezone, err))
	}
	check(c.Club.MaxPlayers >= 1, "club.max_players must be at least 1")
	check(c.Club.SlotPolicy == SlotPolicyClaim || c.Club.SlotPolicy == SlotPolicyIndependent,
		"club.slot_policy must be %q or %q", SlotPolicyClaim, SlotPolicyIndependent)

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Location returns the club's reference timezone. validate has already
// checked the name, so UTC is only reached for a zero-value config.
func (c *ClubConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *ClubConfig) ClaimsSlots() bool {
	return c.SlotPolicy == SlotPolicyClaim
}
