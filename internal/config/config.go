package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Remote   RemoteConfig
	MongoDB  MongoDBConfig
	Sync     SyncConfig
	Redis    RedisConfig
	Coins    CoinsConfig
	JWT      JWTConfig
	Admin    AdminConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// StorageConfig selects the system-of-record and how the fallback is handled
type StorageConfig struct {
	Primary         string // remote | mongodb
	ProbeTimeout    time.Duration
	ReprobeInterval time.Duration // 0 disables re-probing
}

// RemoteConfig holds the main site admin API settings
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// SyncConfig holds the main site coin sync settings
type SyncConfig struct {
	URL          string
	AdminKey     string
	Source       string
	Mode         string // outbox | direct
	Outbox       string // memory | redis
	Timeout      time.Duration
	PollInterval time.Duration
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	MaxAttempts  int
	BatchSize    int
}

// RedisConfig holds Redis connection settings for the durable outbox
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// CoinsConfig holds reward settings
type CoinsConfig struct {
	ApprovalReward int64
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// AdminConfig is the bootstrap moderator account. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Email        string
	Name         string
	PasswordHash string
}

// Storage primaries
const (
	PrimaryRemote  = "remote"
	PrimaryMongoDB = "mongodb"
)

// Sync modes and outbox stores
const (
	SyncModeOutbox = "outbox"
	SyncModeDirect = "direct"
	OutboxMemory   = "memory"
	OutboxRedis    = "redis"
)

// Load loads configuration from a .env file, config.yaml and environment variables.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load(GetEnv("ENV_FILE", ".env"))

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if path := GetEnv("CONFIG_FILE", ""); path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Primary {
	case PrimaryRemote, PrimaryMongoDB:
	default:
		return errors.New("storage.primary must be remote or mongodb")
	}
	switch c.Sync.Mode {
	case SyncModeOutbox, SyncModeDirect:
	default:
		return errors.New("sync.mode must be outbox or direct")
	}
	switch c.Sync.Outbox {
	case OutboxMemory, OutboxRedis:
	default:
		return errors.New("sync.outbox must be memory or redis")
	}
	if c.Coins.ApprovalReward <= 0 {
		return errors.New("coins.approvalreward must be positive")
	}
	if c.Sync.MaxAttempts <= 0 {
		return errors.New("sync.maxattempts must be positive")
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})

	v.SetDefault("Storage.Primary", PrimaryRemote)
	v.SetDefault("Storage.ProbeTimeout", 3*time.Second)
	v.SetDefault("Storage.ReprobeInterval", time.Duration(0))

	v.SetDefault("Remote.BaseURL", "http://127.0.0.1:8000/api/admin")
	v.SetDefault("Remote.APIKey", "")
	v.SetDefault("Remote.Timeout", 10*time.Second)

	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "masterstudent")

	v.SetDefault("Sync.URL", "http://localhost:8000/api/admin/sync-coins")
	v.SetDefault("Sync.AdminKey", "")
	v.SetDefault("Sync.Source", "moderation_service")
	v.SetDefault("Sync.Mode", SyncModeOutbox)
	v.SetDefault("Sync.Outbox", OutboxMemory)
	v.SetDefault("Sync.Timeout", 5*time.Second)
	v.SetDefault("Sync.PollInterval", 2*time.Second)
	v.SetDefault("Sync.BaseBackoff", time.Second)
	v.SetDefault("Sync.MaxBackoff", 5*time.Minute)
	v.SetDefault("Sync.MaxAttempts", 10)
	v.SetDefault("Sync.BatchSize", 50)

	v.SetDefault("Redis.Addr", "localhost:6379")
	v.SetDefault("Redis.Password", "")
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("Redis.Key", "moderation:sync")

	v.SetDefault("Coins.ApprovalReward", 20)

	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours

	v.SetDefault("Admin.Email", "admin@masterstudent.com")
	v.SetDefault("Admin.Name", "Admin User")
	v.SetDefault("Admin.PasswordHash", "")

	v.SetDefault("LogLevel", "info")
}
