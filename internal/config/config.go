package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings trims and folds values
	"time"    // time parses duration settings

	"github.com/joho/godotenv" // godotenv loads an optional .env file into the environment
)

// Port is the HTTP port the server listens on.  It is deliberately not read
// from the environment.
const Port = "3000"

// Config holds all runtime configuration values.  Every value is optional:
// with an empty environment the server probes hosts and records nothing.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on, always Port
	LogLevel    string // minimum lager level (debug, info, error, fatal)
	ProbeBinary string // name or path of the ping executable
	ProbeLogDir string // directory the event consumer appends probe.log to
	AMQPURL     string // RabbitMQ URL; empty disables event publishing
	DB          DBConfig
	Redis       RedisConfig
	Recent      RecentConfig
}

// DBConfig selects the optional probe history store.  Driver is "mysql",
// "sqlite" or empty (disabled).
type DBConfig struct {
	Driver string
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	Path   string
}

// Enabled reports whether a history store was requested.
func (c DBConfig) Enabled() bool { return c.Driver != "" }

// RecentConfig controls the Redis list of recent probes.
type RecentConfig struct {
	Prefix string
	Max    int
	TTL    time.Duration
}

// Load reads an optional .env file and then the environment.  A missing
// .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:         getenv("APP_ENV", "dev"),
		Port:        Port,
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		ProbeBinary: getenv("PROBE_BINARY", "ping"),
		ProbeLogDir: getenv("PROBE_LOG_DIR", "logs"),
		AMQPURL:     amqpURL(),
		DB: DBConfig{
			Driver: strings.ToLower(os.Getenv("DB_DRIVER")),
			User:   os.Getenv("DB_USER"),
			Pass:   os.Getenv("DB_PASS"),
			Host:   getenv("DB_HOST", "localhost"),
			Port:   getenv("DB_PORT", "3306"),
			Name:   getenv("DB_NAME", "secure_ping"),
			Path:   getenv("DB_PATH", "probes.db"),
		},
		Redis: loadRedis(),
		Recent: RecentConfig{
			Prefix: getenv("RECENT_PROBES_PREFIX", "probes"),
			Max:    envInt("RECENT_PROBES_MAX", 50),
			TTL:    envDur("RECENT_PROBES_TTL", 24*time.Hour),
		},
	}
}

// amqpURL prefers RABBITMQ_URL and falls back to AMQP_URL.
func amqpURL() string {
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}
	return os.Getenv("AMQP_URL")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
