package standards

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the SQLite database file; ignored when InMemory is set.
	Path string `yaml:"path"`
	// InMemory selects an in-memory SQLite database.
	InMemory bool `yaml:"inMemory"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn"`
}

// Config is the explicit configuration for the standards engine. Database
// selection is passed in rather than read from ambient environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	// DefaultOwner names the organization that owns notations created
	// without an explicit owner.
	DefaultOwner string `yaml:"defaultOwner"`
}

// LoadConfig loads configuration from a YAML file.
// If the file does not exist, default configuration is returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	return &cfg, nil
}

// DefaultConfig returns the default configuration: a file-based SQLite
// database suitable for development.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "db/standards.sqlite",
		},
	}
}

// OpenDatabase opens a GORM connection for the configured backend. Error
// translation is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey across drivers.
func OpenDatabase(cfg *Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	switch cfg.Database.Driver {
	case "sqlite", "":
		dsn := cfg.Database.Path
		if cfg.Database.InMemory {
			dsn = ":memory:"
		}
		if dsn == "" {
			return nil, fmt.Errorf("open database: sqlite requires a path or inMemory")
		}
		db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		return db, nil
	case "postgres":
		if cfg.Database.DSN == "" {
			return nil, fmt.Errorf("open database: postgres requires a dsn")
		}
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("open database: unsupported driver %q", cfg.Database.Driver)
	}
}

// Migrate runs AutoMigrate for both stores against the given database.
func Migrate(db *gorm.DB) error {
	if err := NewNotationStore(db).AutoMigrate(); err != nil {
		return err
	}
	return NewAssignmentStore(db).AutoMigrate()
}
