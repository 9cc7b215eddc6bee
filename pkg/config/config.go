package config

import (
	"log"
	"strings"
	"time"

	"golang-news-signal/pkg/common"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// App holds application configuration.
type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// Logger holds logger configuration.
type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Database holds database configuration.
// Driver selects the dialect: "sqlite" (Path is used) or "postgres" (Host..SSLMode are used).
type Database struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	TimeZone        string        `mapstructure:"time_zone"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime string        `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
}

// Redis holds Redis configuration.
type Redis struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	Stream       string `mapstructure:"stream"`
	StreamMaxLen int64  `mapstructure:"stream_max_len"`
}

// API holds API server configuration.
type API struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SetDefaults registers fallback values for the shared sections.
func SetDefaults() {
	viper.SetDefault("app.name", "news-signal-pipeline")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "data/signals.db")
	viper.SetDefault("database.busy_timeout", "5s")
	viper.SetDefault("database.max_idle_conns", 2)
	viper.SetDefault("database.max_open_conns", 4)
	viper.SetDefault("database.conn_max_lifetime", "1h")
	viper.SetDefault("database.log_level", "silent")
	viper.SetDefault("database.retry_attempts", 5)
	viper.SetDefault("database.retry_backoff", "500ms")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.stream", common.RedisStreamSignalsPersisted)
	viper.SetDefault("redis.stream_max_len", 10000)
	viper.SetDefault("api.port", 8000)
}

// Load loads configuration from a file into the given config struct.
// A .env file next to the working directory is loaded first so credentials can live outside the YAML.
func Load(path string, config interface{}) error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Failed to read config file, falling back to environment variables and defaults")
	}

	return viper.Unmarshal(config)
}
