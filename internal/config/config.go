package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dairyflow/pkg/constraints"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	Client      ClientConfig    `mapstructure:"client"`
	Store       StoreConfig     `mapstructure:"store"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Etcd        EtcdConfig      `mapstructure:"etcd"`
	MySQL       MySQLConfig     `mapstructure:"mysql"`
	Server      ServerConfig    `mapstructure:"server"`
	Auth        AuthConfig      `mapstructure:"auth"`
	RateLimit   RateLimitConfig `mapstructure:"ratelimit"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
}

type ClientConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RefreshCoalescing bool          `mapstructure:"refresh_coalescing"`
}

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendEtcd   = "etcd"
	BackendMySQL  = "mysql"
)

type StoreConfig struct {
	Backend  string        `mapstructure:"backend"`
	FilePath string        `mapstructure:"file_path"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ServerConfig configures the development mock backend.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	// SessionBackend holds the refresh-token allow-list; one of the store
	// backends except file.
	SessionBackend string `mapstructure:"session_backend"`
}

type AuthConfig struct {
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	SigningKey      string        `mapstructure:"signing_key"`
	RotateRefresh   bool          `mapstructure:"rotate_refresh_tokens"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")

	v.SetDefault("client.base_url", "")
	v.SetDefault("client.timeout", constraints.DefaultTimeout)
	v.SetDefault("client.refresh_coalescing", false)

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.file_path", "")
	v.SetDefault("store.prefix", "")
	v.SetDefault("store.ttl", time.Duration(0))

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("etcd.endpoints", []string{"localhost:2379"})
	v.SetDefault("etcd.dial_timeout", 5*time.Second)

	v.SetDefault("mysql.dsn", "")

	v.SetDefault("server.port", ":3000")
	v.SetDefault("server.session_backend", BackendMemory)

	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.signing_key", "dairyflow-dev-signing-key")
	v.SetDefault("auth.rotate_refresh_tokens", false)

	v.SetDefault("ratelimit.requests_per_second", 20)

	v.SetDefault("metrics.addr", "")
}

// Load reads configFile (or config.yaml from . and ./config when empty) and
// DAIRY_* environment overrides, e.g. DAIRY_CLIENT_BASE_URL.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("DAIRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := c.validateBackend("store.backend", c.Store.Backend); err != nil {
		return err
	}
	if c.Server.SessionBackend == BackendFile {
		return errors.New("server.session_backend cannot be file")
	}
	if err := c.validateBackend("server.session_backend", c.Server.SessionBackend); err != nil {
		return err
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive, got %s", c.Client.Timeout)
	}
	return nil
}

func (c *Config) validateBackend(key, backend string) error {
	switch backend {
	case BackendMemory, BackendFile, BackendRedis, BackendEtcd:
		return nil
	case BackendMySQL:
		if c.MySQL.DSN == "" {
			return fmt.Errorf("%s mysql requires mysql.dsn", key)
		}
		return nil
	default:
		return fmt.Errorf("unknown %s %q", key, backend)
	}
}
