package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
	// Enabled switches the booking guard to the distributed locker and
	// turns on event publishing; single-node deployments leave it off.
	Enabled bool          `mapstructure:"enabled"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type SchedulingConfig struct {
	// LeadHours is the offset before an appointment at which its
	// reminder becomes due.
	LeadHours        int           `mapstructure:"lead_hours"`
	ReminderTemplate string        `mapstructure:"reminder_template"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
}

type WorkerConfig struct {
	// Cron expressions for the two periodic passes.
	ReconcileSchedule string `mapstructure:"reconcile_schedule"`
	ReminderSchedule  string `mapstructure:"reminder_schedule"`
	MetricsPort       int    `mapstructure:"metrics_port"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1<<20)
	viper.SetDefault("scheduling.lead_hours", 24)
	viper.SetDefault("scheduling.reminder_template",
		"Hello {patient}, this is a reminder of your appointment on {date} at {time}.")
	viper.SetDefault("scheduling.cache_ttl", 5*time.Minute)
	viper.SetDefault("redis.lock_ttl", 5*time.Second)
	viper.SetDefault("worker.reconcile_schedule", "0 * * * *")
	viper.SetDefault("worker.reminder_schedule", "*/5 * * * *")
	viper.SetDefault("worker.metrics_port", 9090)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
