package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Webhook  WebhookConfig
	LogLevel string
}

type ServerConfig struct {
	Port string
	Host string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RabbitMQConfig configures the optional domain-event ingestion path.
// Leaving every field empty disables the consumer entirely.
type RabbitMQConfig struct {
	URL         string
	Host        string
	Port        string
	User        string
	Password    string
	VHost       string
	SourceQueue string
}

type WebhookConfig struct {
	TimeoutSeconds      int
	MaxResponseBodySize int
	QueueSize           int
	Workers             int
}

func Load() (*Config, error) {
	var missing []string

	get := func(key string) string {
		val := os.Getenv(key)
		if val == "" {
			missing = append(missing, key)
		}
		return val
	}

	getInt := func(key string, fallback int) int {
		val := os.Getenv(key)
		if val == "" {
			return fallback
		}
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return fallback
		}
		return n
	}

	config := &Config{
		Server: ServerConfig{
			Port: get("SERVER_PORT"),
			Host: get("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:     get("DB_HOST"),
			Port:     get("DB_PORT"),
			User:     get("DB_USER"),
			Password: get("DB_PASSWORD"),
			DBName:   get("DB_NAME"),
			SSLMode:  get("DB_SSLMODE"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:         os.Getenv("RABBITMQ_URL"),
			Host:        os.Getenv("RABBITMQ_HOST"),
			Port:        os.Getenv("RABBITMQ_PORT"),
			User:        os.Getenv("RABBITMQ_USER"),
			Password:    os.Getenv("RABBITMQ_PASSWORD"),
			VHost:       os.Getenv("RABBITMQ_VHOST"),
			SourceQueue: os.Getenv("RABBITMQ_SOURCE_QUEUE"),
		},
		Webhook: WebhookConfig{
			TimeoutSeconds:      getInt("WEBHOOK_TIMEOUT_SECONDS", 5),
			MaxResponseBodySize: getInt("WEBHOOK_MAX_RESPONSE_BODY", 500),
			QueueSize:           getInt("WEBHOOK_QUEUE_SIZE", 256),
			Workers:             getInt("WEBHOOK_WORKERS", 4),
		},
		LogLevel: os.Getenv("LOG_LEVEL"),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return config, nil
}

// Enabled reports whether enough RabbitMQ configuration is present to run
// the domain-event consumer
func (c *RabbitMQConfig) Enabled() bool {
	return (c.URL != "" || c.Host != "") && c.SourceQueue != ""
}

// ConnectionString returns a DSN string for GORM
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

func (c *RabbitMQConfig) ConnectionURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s%s",
		c.User, c.Password, c.Host, c.Port, c.VHost)
}
