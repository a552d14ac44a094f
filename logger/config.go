package logger

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds the credentials and pool tuning for the database
// sink. All four credential fields must be non-empty before the first
// database write; this is checked lazily, not at construction.
type DatabaseConfig struct {
	Server   string `yaml:"server"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Type selects the dialect: "mssql" or "mysql".
	Type string `yaml:"type"`

	// Connection pool tuning.
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// TableConfig identifies the log table. Not validated until a database
// write is attempted.
type TableConfig struct {
	TableName              string `yaml:"table_name"`
	CreateTableIfNotExists bool   `yaml:"create_table_if_not_exists"`
}

// Config is the logger configuration. It is immutable after the Logger is
// constructed.
type Config struct {
	LogFileName  string `yaml:"log_file_name"`
	LogDir       string `yaml:"log_dir"`
	LogToConsole bool   `yaml:"log_to_console"`

	Database DatabaseConfig `yaml:"database"`
	Table    TableConfig    `yaml:"table"`

	IncludeDuration     bool `yaml:"include_duration"`
	IncludeTraceback    bool `yaml:"include_traceback"`
	IncludeFunctionArgs bool `yaml:"include_function_args"`
	IncludeDatabase     bool `yaml:"include_database"`

	// MaxLogRate caps records per second; 0 disables throttling. Records
	// over the cap are dropped, not queued.
	MaxLogRate int `yaml:"max_log_rate"`
}

// DefaultConfig returns the configuration used when no config file is
// given: file-only logging under logs/System.log with duration, traceback
// and argument records enabled.
func DefaultConfig() Config {
	return Config{
		LogFileName:         "System",
		LogDir:              "logs",
		IncludeDuration:     true,
		IncludeTraceback:    true,
		IncludeFunctionArgs: true,
	}
}

// LoadConfig reads a YAML config file. Keys absent from the file keep
// their DefaultConfig values.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	file, err := os.Open(configPath)
	if err != nil {
		return config, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.LogFileName == "" {
		c.LogFileName = "System"
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
}
