package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"gastos/internal/core"
	"gastos/internal/log"
)

// Environment keys.
const (
	KeyDataBackend  = "DATA_BACKEND"
	KeyLedgerFile   = "LEDGER_FILE"
	KeySQLiteDBPath = "SQLITE_DB_PATH"
	KeyDateInput    = "DATE_INPUT"
	KeyLogLevel     = "LOG_LEVEL"
	KeyAMQPURL      = "AMQP_URL"
	KeyAMQPExchange = "AMQP_EXCHANGE"
	KeyAMQPQueue    = "AMQP_QUEUE"
)

type Config struct {
	// Backend selection
	DataBackend string `mapstructure:"DATA_BACKEND"`

	// Flat file
	LedgerFile string `mapstructure:"LEDGER_FILE"`

	// Database
	SQLiteDBPath string `mapstructure:"SQLITE_DB_PATH"`

	// Input
	DateInput string `mapstructure:"DATE_INPUT"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// AMQP (optional)
	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`
	AMQPQueue    string `mapstructure:"AMQP_QUEUE"`
}

var validBackends = []string{"csv", "sqlite", "memory"}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDataBackend, "csv")
	v.SetDefault(KeyLedgerFile, "gastos.csv")
	v.SetDefault(KeySQLiteDBPath, "./data/gastos.db")
	v.SetDefault(KeyDateInput, core.StrictDateName)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyAMQPURL, "")
	v.SetDefault(KeyAMQPExchange, "gastos")
	v.SetDefault(KeyAMQPQueue, "transactions_recorded")
	v.AutomaticEnv()
	return v
}

// LoadEnvFile loads a .env file for local use. A missing file is fine.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Load reads configuration from the environment and, when configFile is
// not empty, from that file (any format viper understands).
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = New()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.DataBackend = strings.ToLower(strings.TrimSpace(cfg.DataBackend))
	return &cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "csv" && strings.TrimSpace(c.LedgerFile) == "" {
		errors = append(errors, "ledger file path cannot be empty when using csv backend")
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if _, err := core.DateStrategyByName(c.DateInput); err != nil {
		errors = append(errors, fmt.Sprintf("invalid date input '%s': must be '%s' or '%s'", c.DateInput, core.StrictDateName, core.SplitDateName))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}
