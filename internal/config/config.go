package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// ErrTargetUndefined means source patterns were configured without any
// destination directory.
var ErrTargetUndefined = errors.New("no target directory defined")

// Config represents the main configuration structure
type Config struct {
	// Sources are glob patterns or directories to discover images in.
	Sources []string `mapstructure:"sources"`

	// To is the destination directory for minified files.
	To string `mapstructure:"to"`

	// Base, when set, preserves the source subdirectory structure that
	// follows it under the destination.
	Base string `mapstructure:"base"`

	// Minifier overrides per-extension compressor selection for the run.
	Minifier string `mapstructure:"minifier"`

	// MinifierOptions are extra flags passed to the selected minifier;
	// an empty value means a bare flag.
	MinifierOptions map[string]string `mapstructure:"minifier_options"`

	// BinDir is where downloaded compressor binaries are kept. Empty
	// selects the default next to the running executable.
	BinDir string `mapstructure:"bin_dir"`

	// VendorDir is the local package directory checked for vendored
	// compressors before the bin directory.
	VendorDir string `mapstructure:"vendor_dir"`

	Processing ProcessingConfig `mapstructure:"processing"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ProcessingConfig contains execution settings
type ProcessingConfig struct {
	// CommandTimeout bounds each compressor invocation; 0 disables.
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
	Console    bool   `mapstructure:"console"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		MinifierOptions: map[string]string{},
		VendorDir:       "node_modules",
		Processing: ProcessingConfig{
			CommandTimeout: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			FilePath:   "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
			Console:    true,
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		// Look for config file in current directory and XDG config home
		viper.SetConfigName(".imgminify")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "imgminify"))
	}

	// Enable environment variable support
	viper.SetEnvPrefix("IMGMINIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Unmarshal config
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Sources) > 0 && c.To == "" {
		return fmt.Errorf("%w: set 'to' when sources are given", ErrTargetUndefined)
	}

	if c.Processing.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout must not be negative")
	}

	return nil
}
