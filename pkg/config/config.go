package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	// Execution policy
	DefaultTimeoutMs int      `mapstructure:"default_timeout_ms"`
	DefaultWorkdir   string   `mapstructure:"default_workdir"`
	AllowedCommands  []string `mapstructure:"allowed_commands"`
	BlockedPatterns  []string `mapstructure:"blocked_patterns"`
	MaxConcurrent    int      `mapstructure:"max_concurrent"`

	// Optional API settings
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`

	// Optional SSL settings
	SSLCert string `mapstructure:"ssl_cert"`
	SSLKey  string `mapstructure:"ssl_key"`

	// Optional CORS settings
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Optional logging settings
	LogLevel string `mapstructure:"log_level"`

	// JWT settings (required for the API server)
	JWTSecretKey string `mapstructure:"jwt_secret_key"`
	JWTAlgorithm string `mapstructure:"jwt_algorithm"`

	// Execution archive; empty disables archiving
	DBPath string `mapstructure:"db_path"`

	ConfigPath string
}

const (
	DefaultConfigPath    = "/etc/cmdgate/config.yml"
	DefaultDBPath        = "/var/lib/cmdgate/db.sqlite3"
	DefaultAPIHost       = "0.0.0.0"
	DefaultAPIPort       = 8440
	DefaultLogLevel      = "info"
	DefaultJWTAlgorithm  = "HS256"
	DefaultTimeoutMs     = 30000
	DefaultWorkdir       = "."
	DefaultMaxConcurrent = 5
)

// DefaultBlockedPatterns are substrings rejected anywhere in a command.
var DefaultBlockedPatterns = []string{"rm -rf", "sudo", "mkfs", "> /dev/"}

// Load reads configuration from the given path (or the default path when
// empty). A missing file is not an error; defaults and CMDGATE_*
// environment overrides still apply.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("default_timeout_ms", DefaultTimeoutMs)
	viper.SetDefault("default_workdir", DefaultWorkdir)
	viper.SetDefault("blocked_patterns", DefaultBlockedPatterns)
	viper.SetDefault("max_concurrent", DefaultMaxConcurrent)
	viper.SetDefault("api_host", DefaultAPIHost)
	viper.SetDefault("api_port", DefaultAPIPort)
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("jwt_algorithm", DefaultJWTAlgorithm)
	viper.SetDefault("db_path", DefaultDBPath)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CMDGATE")

	if err := viper.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigPath = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DefaultTimeoutMs <= 0 {
		return fmt.Errorf("default_timeout_ms must be positive")
	}

	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent must be positive")
	}

	if c.SSLCert != "" || c.SSLKey != "" {
		if c.SSLCert == "" || c.SSLKey == "" {
			return fmt.Errorf("both ssl_cert and ssl_key must be provided")
		}
		if _, err := os.Stat(c.SSLCert); os.IsNotExist(err) {
			return fmt.Errorf("ssl_cert file does not exist: %s", c.SSLCert)
		}
		if _, err := os.Stat(c.SSLKey); os.IsNotExist(err) {
			return fmt.Errorf("ssl_key file does not exist: %s", c.SSLKey)
		}
	}

	return nil
}

// ValidateServer checks the extra fields the API server requires.
func (c *Config) ValidateServer() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("jwt_secret_key is required to run the server")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required to run the server")
	}
	return nil
}

func (c *Config) IsDevMode() bool {
	return os.Getenv("CMDGATE_DEV_MODE") == "1"
}
