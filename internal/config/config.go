package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

// Backend names accepted in BACKEND.
const (
	BackendFile      = "file"
	BackendSFTP      = "sftp"
	BackendSQL       = "sql"
	BackendGCS       = "gcs"
	BackendZooKeeper = "zookeeper"
	BackendMemory    = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	File      FileConfig
	SFTP      SFTPConfig
	Database  DatabaseConfig
	GCS       GCSConfig
	ZooKeeper ZooKeeperConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host   string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port   int    `env:"SERVER_PORT" envDefault:"8080"`
	APIKey string `env:"API_KEY"` // Empty disables bearer auth
}

// StoreConfig selects the backend and the document it holds.
type StoreConfig struct {
	Backend      string `env:"BACKEND" envDefault:"file"`
	Document     string `env:"DOCUMENT" envDefault:"addresses.json"`
	StrictDecode bool   `env:"STRICT_DECODE" envDefault:"false"`
}

// FileConfig holds local file backend configuration.
type FileConfig struct {
	Root string `env:"FILE_ROOT" envDefault:"data"`
}

// SFTPConfig holds the SSH session used by the sftp backend.
type SFTPConfig struct {
	Host                  string        `env:"SFTP_HOST"`
	Port                  int           `env:"SFTP_PORT" envDefault:"22"`
	User                  string        `env:"SFTP_USER"`
	Password              string        `env:"SFTP_PASSWORD"`
	KnownHosts            string        `env:"SFTP_KNOWN_HOSTS"`
	InsecureIgnoreHostKey bool          `env:"SFTP_INSECURE_IGNORE_HOST_KEY" envDefault:"false"`
	Timeout               time.Duration `env:"SFTP_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DSN    string `env:"DB_DSN" envDefault:"data/pairstore.db"`
}

// GCSConfig holds Google Cloud Storage configuration.
type GCSConfig struct {
	Bucket string `env:"GCS_BUCKET"`
}

// ZooKeeperConfig holds ZooKeeper ensemble configuration.
type ZooKeeperConfig struct {
	Servers        []string      `env:"ZK_SERVERS" envSeparator:","`
	SessionTimeout time.Duration `env:"ZK_SESSION_TIMEOUT" envDefault:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Store); err != nil {
		return nil, fmt.Errorf("parsing store config: %w", err)
	}
	if err := env.Parse(&cfg.File); err != nil {
		return nil, fmt.Errorf("parsing file config: %w", err)
	}
	if err := env.Parse(&cfg.SFTP); err != nil {
		return nil, fmt.Errorf("parsing sftp config: %w", err)
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if err := env.Parse(&cfg.GCS); err != nil {
		return nil, fmt.Errorf("parsing gcs config: %w", err)
	}
	if err := env.Parse(&cfg.ZooKeeper); err != nil {
		return nil, fmt.Errorf("parsing zookeeper config: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return nil, fmt.Errorf("parsing log config: %w", err)
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Document) == "" {
		return fmt.Errorf("DOCUMENT is required")
	}

	switch c.Store.Backend {
	case BackendFile:
		if c.File.Root == "" {
			return fmt.Errorf("FILE_ROOT is required for the file backend")
		}
	case BackendSFTP:
		if c.SFTP.Host == "" {
			return fmt.Errorf("SFTP_HOST is required for the sftp backend")
		}
		if c.SFTP.User == "" {
			return fmt.Errorf("SFTP_USER is required for the sftp backend")
		}
		if c.SFTP.KnownHosts == "" && !c.SFTP.InsecureIgnoreHostKey {
			return fmt.Errorf("SFTP_KNOWN_HOSTS is required (or set SFTP_INSECURE_IGNORE_HOST_KEY)")
		}
	case BackendSQL:
		if c.Database.Driver != "sqlite3" && c.Database.Driver != "postgres" {
			return fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.Database.Driver)
		}
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the sql backend")
		}
	case BackendGCS:
		if c.GCS.Bucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs backend")
		}
	case BackendZooKeeper:
		if len(c.ZooKeeper.Servers) == 0 {
			return fmt.Errorf("ZK_SERVERS is required for the zookeeper backend")
		}
		if !strings.HasPrefix(c.Store.Document, "/") {
			return fmt.Errorf("DOCUMENT must be an absolute znode path for the zookeeper backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown BACKEND %q", c.Store.Backend)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}
	return nil
}
