package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=mysql postgres sqlite"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database" validate:"required"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN renders the connection string for the configured driver. For sqlite, Database is the file path.
func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type BusinessConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type RenewalConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Cron       string        `mapstructure:"cron" validate:"required"`
	PageSize   int           `mapstructure:"page_size" validate:"min=1"`
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

type ReaperConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Cron       string        `mapstructure:"cron" validate:"required"`
	PageSize   int           `mapstructure:"page_size" validate:"min=1"`
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

type RabbitMQConfig struct {
	URL        string        `mapstructure:"url"`
	Exchange   string        `mapstructure:"exchange"`
	RoutingKey string        `mapstructure:"routing_key"`
	Queue      string        `mapstructure:"queue"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type NotificationConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	Cron         string         `mapstructure:"cron" validate:"required"`
	PageSize     int            `mapstructure:"page_size" validate:"min=1"`
	RunTimeout   time.Duration  `mapstructure:"run_timeout"`
	Transport    string         `mapstructure:"transport" validate:"oneof=rabbitmq redis log"`
	RedisChannel string         `mapstructure:"redis_channel"`
	RabbitMQ     RabbitMQConfig `mapstructure:"rabbitmq"`
}

// ReferenceCacheConfig holds the cache-aside TTL for each reference kind.
type ReferenceCacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Prefix      string        `mapstructure:"prefix"`
	PlanTTL     time.Duration `mapstructure:"plan_ttl"`
	BucketTTL   time.Duration `mapstructure:"bucket_ttl"`
	QOSTTL      time.Duration `mapstructure:"qos_ttl"`
	TemplateTTL time.Duration `mapstructure:"template_ttl"`
}

type SessionCacheConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Retries      int           `mapstructure:"retries"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
