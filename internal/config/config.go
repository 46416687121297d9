package config

import (
	"errors"
	"fmt"
	"os"

	"agendador/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Events     EventsConfig     `yaml:"events"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	Rooms      []models.Room    `yaml:"rooms"`
	DemoUsers  []DemoUser       `yaml:"demo_users"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port              int     `yaml:"port"`
	RateLimitRequests int     `yaml:"rate_limit_requests"`
	RateLimitWindow   int     `yaml:"rate_limit_window"`
	RateLimitRPS      float64 `yaml:"rate_limit_rps"`
	RateLimitBurst    int     `yaml:"rate_limit_burst"`
}

type StorageConfig struct {
	// Backend выбирает хранилище бронирований: sqlite, snapshot или memory
	Backend      string `yaml:"backend"`
	Path         string `yaml:"path"`
	AtomicCreate bool   `yaml:"atomic_create"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AuthConfig struct {
	SessionTTLSeconds int `yaml:"session_ttl_seconds"`
}

type EventsConfig struct {
	KafkaEnabled bool     `yaml:"kafka_enabled"`
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type DemoUser struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

const (
	BackendSQLite   = "sqlite"
	BackendSnapshot = "snapshot"
	BackendMemory   = "memory"
)

func Load(configPath string) (*Config, error) {
	// Загружаем .env файл если существует
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage path is required for sqlite backend")
		}
	case BackendSnapshot:
		if c.Redis.Address == "" {
			return errors.New("redis address is required for snapshot backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage.Backend)
	}

	if c.Events.KafkaEnabled {
		if len(c.Events.Brokers) == 0 {
			return errors.New("kafka brokers are required when kafka is enabled")
		}
		if c.Events.Topic == "" {
			return errors.New("kafka topic is required when kafka is enabled")
		}
	}

	return ValidateRooms(c.Rooms)
}

func ValidateRooms(rooms []models.Room) error {
	if len(rooms) == 0 {
		return errors.New("at least one room is required")
	}

	roomIDs := make(map[string]bool)
	for _, room := range rooms {
		if room.ID == "" {
			return fmt.Errorf("room %q has empty ID", room.Name)
		}
		if roomIDs[room.ID] {
			return fmt.Errorf("duplicate room ID found: %s", room.ID)
		}
		roomIDs[room.ID] = true

		if room.Capacity <= 0 {
			return fmt.Errorf("room %q has invalid capacity %d", room.ID, room.Capacity)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitRequests == 0 {
		c.Server.RateLimitRequests = models.RateLimitRequests
	}
	if c.Server.RateLimitWindow == 0 {
		c.Server.RateLimitWindow = models.RateLimitWindow
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = 10
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 20
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}

	if c.Auth.SessionTTLSeconds == 0 {
		c.Auth.SessionTTLSeconds = models.DefaultSessionTTL
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
