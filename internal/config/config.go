package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	NATS     NATSConfig
	Log      LogConfig
	Upstream UpstreamConfig
	Fallback FallbackConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type NATSConfig struct {
	Enabled bool
	URL     string
}

type LogConfig struct {
	Level string
	JSON  bool
}

// UpstreamConfig - бэкенд проверок, к которому обращается шлюз
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// FallbackConfig управляет резервными источниками при недоступности бэкенда
type FallbackConfig struct {
	Enabled bool
	Demo    bool
}

func defaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "verification")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("nats.enabled", true)
	v.SetDefault("nats.url", "nats://localhost:4222")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("upstream.base_url", "http://localhost:5000")
	v.SetDefault("upstream.timeout", "30s")

	v.SetDefault("fallback.enabled", false)
	v.SetDefault("fallback.demo", false)
}

// Load читает конфигурацию из окружения. Файл .env необязателен.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	serverPort, err := port(v, "server.port")
	if err != nil {
		return nil, err
	}
	databasePort, err := port(v, "database.port")
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(v.GetString("upstream.timeout"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q", v.GetString("upstream.timeout"))
	}

	baseURL := strings.TrimRight(v.GetString("upstream.base_url"), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	return &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("database.enabled"),
			Host:     v.GetString("database.host"),
			Port:     databasePort,
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		NATS: NATSConfig{
			Enabled: v.GetBool("nats.enabled"),
			URL:     v.GetString("nats.url"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			JSON:  v.GetBool("log.json"),
		},
		Upstream: UpstreamConfig{
			BaseURL: baseURL,
			Timeout: timeout,
		},
		Fallback: FallbackConfig{
			Enabled: v.GetBool("fallback.enabled"),
			Demo:    v.GetBool("fallback.demo"),
		},
	}, nil
}

func port(v *viper.Viper, key string) (int, error) {
	raw := v.GetString(key)
	p, err := strconv.Atoi(raw)
	if err != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("invalid %s %q", strings.ToUpper(strings.ReplaceAll(key, ".", "_")), raw)
	}
	return p, nil
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}
