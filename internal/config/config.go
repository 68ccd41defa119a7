// Package config loads host settings for the goGuard reference server from
// an optional YAML file, an optional .env file and GOGUARD_* environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "GOGUARD"

var ErrInvalid = errors.New("invalid server config")

type Config struct {
	Env    string       `mapstructure:"env"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Guard  GuardConfig  `mapstructure:"guard"`
	Sinks  SinksConfig  `mapstructure:"sinks"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	// OperatorToken guards /api/security/*. Empty disables those routes.
	OperatorToken string `mapstructure:"operator_token"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type GuardConfig struct {
	RateLimit struct {
		Enabled          bool          `mapstructure:"enabled"`
		GeneralCapacity  int           `mapstructure:"general_capacity"`
		GeneralPeriod    time.Duration `mapstructure:"general_period"`
		AuthCapacity     int           `mapstructure:"auth_capacity"`
		AuthPeriod       time.Duration `mapstructure:"auth_period"`
		AuthPathPrefixes []string      `mapstructure:"auth_path_prefixes"`
	} `mapstructure:"rate_limit"`
	Monitor struct {
		MaxFailedLoginsPerIP   int           `mapstructure:"max_failed_logins_per_ip"`
		MaxFailedLoginsPerUser int           `mapstructure:"max_failed_logins_per_user"`
		MaxRegistrationsPerIP  int           `mapstructure:"max_registrations_per_ip"`
		Window                 time.Duration `mapstructure:"window"`
		DeduplicateAlerts      bool          `mapstructure:"deduplicate_alerts"`
		AlertCapacity          int           `mapstructure:"alert_capacity"`
	} `mapstructure:"monitor"`
	Codes struct {
		Digits      int           `mapstructure:"digits"`
		TTL         time.Duration `mapstructure:"ttl"`
		MaxAttempts int           `mapstructure:"max_attempts"`
	} `mapstructure:"codes"`
	Audit struct {
		Enabled     bool          `mapstructure:"enabled"`
		BufferSize  int           `mapstructure:"buffer_size"`
		DropIfFull  bool          `mapstructure:"drop_if_full"`
		EmitTimeout time.Duration `mapstructure:"emit_timeout"`
	} `mapstructure:"audit"`
	Metrics struct {
		Enabled          bool `mapstructure:"enabled"`
		LatencyHistogram bool `mapstructure:"latency_histogram"`
	} `mapstructure:"metrics"`
	Shards int `mapstructure:"shards"`
}

type SinksConfig struct {
	Log   bool `mapstructure:"log"`
	Redis struct {
		Addr   string `mapstructure:"addr"`
		Stream string `mapstructure:"stream"`
		MaxLen int64  `mapstructure:"max_len"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Breaker struct {
		MaxFailures uint32        `mapstructure:"max_failures"`
		OpenTimeout time.Duration `mapstructure:"open_timeout"`
	} `mapstructure:"breaker"`
}

func setDefaults(v *viper.Viper) {
	g := goGuard.DefaultConfig()

	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cleanup_interval", time.Minute)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.operator_token", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "goguard")
	v.SetDefault("jwt.audience", "")
	v.SetDefault("jwt.ttl", 15*time.Minute)

	v.SetDefault("guard.rate_limit.enabled", g.RateLimit.Enabled)
	v.SetDefault("guard.rate_limit.general_capacity", g.RateLimit.GeneralCapacity)
	v.SetDefault("guard.rate_limit.general_period", g.RateLimit.GeneralPeriod)
	v.SetDefault("guard.rate_limit.auth_capacity", g.RateLimit.AuthCapacity)
	v.SetDefault("guard.rate_limit.auth_period", g.RateLimit.AuthPeriod)
	v.SetDefault("guard.rate_limit.auth_path_prefixes", g.RateLimit.AuthPathPrefixes)
	v.SetDefault("guard.monitor.max_failed_logins_per_ip", g.Monitor.MaxFailedLoginsPerIP)
	v.SetDefault("guard.monitor.max_failed_logins_per_user", g.Monitor.MaxFailedLoginsPerUser)
	v.SetDefault("guard.monitor.max_registrations_per_ip", g.Monitor.MaxRegistrationsPerIP)
	v.SetDefault("guard.monitor.window", g.Monitor.Window)
	v.SetDefault("guard.monitor.deduplicate_alerts", g.Monitor.DeduplicateAlerts)
	v.SetDefault("guard.monitor.alert_capacity", g.Monitor.AlertCapacity)
	v.SetDefault("guard.codes.digits", g.OneTimeCode.Digits)
	v.SetDefault("guard.codes.ttl", g.OneTimeCode.TTL)
	v.SetDefault("guard.codes.max_attempts", g.OneTimeCode.MaxAttempts)
	v.SetDefault("guard.audit.enabled", g.Audit.Enabled)
	v.SetDefault("guard.audit.buffer_size", g.Audit.BufferSize)
	v.SetDefault("guard.audit.drop_if_full", g.Audit.DropIfFull)
	v.SetDefault("guard.audit.emit_timeout", g.Audit.EmitTimeout)
	v.SetDefault("guard.metrics.enabled", g.Metrics.Enabled)
	v.SetDefault("guard.metrics.latency_histogram", true)
	v.SetDefault("guard.shards", g.RateLimit.Shards)

	v.SetDefault("sinks.log", true)
	v.SetDefault("sinks.redis.addr", "")
	v.SetDefault("sinks.redis.stream", "goguard:security-events")
	v.SetDefault("sinks.redis.max_len", 10000)
	v.SetDefault("sinks.kafka.brokers", []string{})
	v.SetDefault("sinks.kafka.topic", "goguard.security-events")
	v.SetDefault("sinks.breaker.max_failures", 5)
	v.SetDefault("sinks.breaker.open_timeout", 30*time.Second)
}

// Load reads configuration. configFile may be empty, in which case
// goguard.yaml is looked up in . and ./config and skipped when absent.
// dotenv, when non-empty, names a .env file loaded before the environment
// is read; a missing file is not an error.
func Load(configFile, dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("goguard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks host settings. Guard policy is validated by the Builder.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	if c.Server.CleanupInterval <= 0 {
		return fmt.Errorf("%w: server.cleanup_interval must be > 0", ErrInvalid)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("%w: jwt.ttl must be > 0", ErrInvalid)
	}
	if c.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("%w: jwt.secret must be at least 32 bytes in production", ErrInvalid)
		}
		if c.Server.OperatorToken != "" && len(c.Server.OperatorToken) < 16 {
			return fmt.Errorf("%w: server.operator_token must be at least 16 bytes in production", ErrInvalid)
		}
	}
	return nil
}

// GuardConfig converts the guard section into a [goGuard.Config].
func (c *Config) GuardConfig() goGuard.Config {
	g := goGuard.DefaultConfig()
	s := c.Guard

	g.RateLimit.Enabled = s.RateLimit.Enabled
	g.RateLimit.GeneralCapacity = s.RateLimit.GeneralCapacity
	g.RateLimit.GeneralPeriod = s.RateLimit.GeneralPeriod
	g.RateLimit.AuthCapacity = s.RateLimit.AuthCapacity
	g.RateLimit.AuthPeriod = s.RateLimit.AuthPeriod
	g.RateLimit.AuthPathPrefixes = s.RateLimit.AuthPathPrefixes

	g.Monitor.MaxFailedLoginsPerIP = s.Monitor.MaxFailedLoginsPerIP
	g.Monitor.MaxFailedLoginsPerUser = s.Monitor.MaxFailedLoginsPerUser
	g.Monitor.MaxRegistrationsPerIP = s.Monitor.MaxRegistrationsPerIP
	g.Monitor.Window = s.Monitor.Window
	g.Monitor.DeduplicateAlerts = s.Monitor.DeduplicateAlerts
	g.Monitor.AlertCapacity = s.Monitor.AlertCapacity

	g.OneTimeCode.Digits = s.Codes.Digits
	g.OneTimeCode.TTL = s.Codes.TTL
	g.OneTimeCode.MaxAttempts = s.Codes.MaxAttempts

	g.Audit.Enabled = s.Audit.Enabled
	g.Audit.BufferSize = s.Audit.BufferSize
	g.Audit.DropIfFull = s.Audit.DropIfFull
	g.Audit.EmitTimeout = s.Audit.EmitTimeout

	g.Metrics.Enabled = s.Metrics.Enabled
	g.Metrics.EnableLatencyHistograms = s.Metrics.Enabled && s.Metrics.LatencyHistogram

	g.RateLimit.Shards = s.Shards
	g.Monitor.Shards = s.Shards
	g.Revocation.Shards = s.Shards
	g.OneTimeCode.Shards = s.Shards
	return g
}
