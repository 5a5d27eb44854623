package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DatastoreMongo    = "mongo"
	DatastorePostgres = "postgres"

	// SystemicGroupDisabled turns off the whole-group failure check
	SystemicGroupDisabled = "none"

	// MaxDashboardRetries bounds DASHBOARD_MAX_RETRIES; the backoff doubles per attempt
	MaxDashboardRetries = 10
)

type Config struct {
	AppEnv         string
	Port           string
	Datastore      string
	Mongo          MongoConfig
	Postgres       PostgresConfig
	JWT            JWTConfig
	Dashboard      DashboardConfig
	HTTP           HTTPConfig
	Log            LogConfig
	TracingEnabled bool
}

type MongoConfig struct {
	URI      string
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

type PostgresConfig struct {
	DSN     string
	Timeout time.Duration
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// DashboardConfig tunes the statistics aggregation
type DashboardConfig struct {
	MaxRetries       int
	QueryTimeout     time.Duration
	BackoffBase      time.Duration
	GroupConcurrency int
	SystemicGroup    string
}

type HTTPConfig struct {
	RequestTimeout    time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// TrustProxyHeaders keys rate limiting on X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

type LogConfig struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATASTORE", DatastoreMongo)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "tourism")
	v.SetDefault("MONGO_TIMEOUT", 10*time.Second)
	v.SetDefault("POSTGRES_TIMEOUT", 10*time.Second)

	v.SetDefault("JWT_ISSUER", "tourism-marketplace")
	v.SetDefault("JWT_TTL", 24*time.Hour)

	v.SetDefault("DASHBOARD_MAX_RETRIES", 3)
	v.SetDefault("DASHBOARD_QUERY_TIMEOUT", 8*time.Second)
	v.SetDefault("DASHBOARD_BACKOFF_BASE", time.Second)
	v.SetDefault("DASHBOARD_GROUP_CONCURRENCY", 0)
	v.SetDefault("DASHBOARD_SYSTEMIC_GROUP", "users")

	v.SetDefault("REQUEST_TIMEOUT", 6*time.Minute)
	v.SetDefault("RATE_LIMIT_REQUESTS", 60)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
	v.SetDefault("TRUST_PROXY_HEADERS", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("TRACING_ENABLED", false)
}

// Load reads envFile when it exists, then the process environment, which
// wins over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, errors.Wrapf(err, "load %s", envFile)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat %s", envFile)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppEnv:    v.GetString("APP_ENV"),
		Port:      v.GetString("PORT"),
		Datastore: strings.ToLower(v.GetString("DATASTORE")),
		Mongo: MongoConfig{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DATABASE"),
			Username: v.GetString("MONGO_USERNAME"),
			Password: v.GetString("MONGO_PASSWORD"),
			Timeout:  v.GetDuration("MONGO_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			DSN:     v.GetString("POSTGRES_DSN"),
			Timeout: v.GetDuration("POSTGRES_TIMEOUT"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Dashboard: DashboardConfig{
			MaxRetries:       v.GetInt("DASHBOARD_MAX_RETRIES"),
			QueryTimeout:     v.GetDuration("DASHBOARD_QUERY_TIMEOUT"),
			BackoffBase:      v.GetDuration("DASHBOARD_BACKOFF_BASE"),
			GroupConcurrency: v.GetInt("DASHBOARD_GROUP_CONCURRENCY"),
			SystemicGroup:    v.GetString("DASHBOARD_SYSTEMIC_GROUP"),
		},
		HTTP: HTTPConfig{
			RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
			RateLimitRequests: v.GetInt("RATE_LIMIT_REQUESTS"),
			RateLimitWindow:   v.GetDuration("RATE_LIMIT_WINDOW"),
			TrustProxyHeaders: v.GetBool("TRUST_PROXY_HEADERS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		TracingEnabled: v.GetBool("TRACING_ENABLED"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	switch c.Datastore {
	case DatastoreMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("MONGO_URI and MONGO_DATABASE are required for the mongo datastore")
		}
		if c.Mongo.Timeout <= 0 {
			return errors.New("MONGO_TIMEOUT must be positive")
		}
	case DatastorePostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres datastore")
		}
		if c.Postgres.Timeout <= 0 {
			return errors.New("POSTGRES_TIMEOUT must be positive")
		}
	default:
		return errors.Errorf("unknown DATASTORE %q", c.Datastore)
	}

	if c.Dashboard.MaxRetries <= 0 || c.Dashboard.MaxRetries > MaxDashboardRetries {
		return errors.Errorf("DASHBOARD_MAX_RETRIES must be between 1 and %d", MaxDashboardRetries)
	}
	if c.Dashboard.QueryTimeout <= 0 || c.Dashboard.BackoffBase <= 0 {
		return errors.New("DASHBOARD_QUERY_TIMEOUT and DASHBOARD_BACKOFF_BASE must be positive")
	}
	if c.Dashboard.GroupConcurrency < 0 {
		return errors.New("DASHBOARD_GROUP_CONCURRENCY must not be negative")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.HTTP.RateLimitRequests <= 0 || c.HTTP.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// SystemicGroupName returns the group name to hand to the aggregator, empty when disabled
func (d DashboardConfig) SystemicGroupName() string {
	if strings.EqualFold(d.SystemicGroup, SystemicGroupDisabled) {
		return ""
	}
	return d.SystemicGroup
}
