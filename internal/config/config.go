// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/j-veylop/openai-cost-tui/internal/logger"
	"github.com/j-veylop/openai-cost-tui/internal/models"
)

// EnvPrefix prefixes every environment override, e.g. OCT_BASE_URL.
const EnvPrefix = "OCT"

// Config holds the application configuration.
type Config struct {
	DefaultMode            string        `mapstructure:"default_mode"`
	BaseURL                string        `mapstructure:"base_url"`
	DataDir                string        `mapstructure:"data_dir"`
	LogFile                string        `mapstructure:"log_file"`
	LogLevel               string        `mapstructure:"log_level"`
	RequestTimeout         time.Duration `mapstructure:"request_timeout"`
	RefreshIntervalMinutes int           `mapstructure:"refresh_interval_minutes"`
	PageLimit              int           `mapstructure:"page_limit"`
	MaxPages               int           `mapstructure:"max_pages"`
	FollowPages            bool          `mapstructure:"follow_pages"`
	DesktopNotifications   bool          `mapstructure:"desktop_notifications"`

	// File is the config file that was read, or the default location.
	File string `mapstructure:"-"`
}

// Default values
const (
	defaultRefreshIntervalMinutes = 60
	defaultMode                   = "month"
	defaultBaseURL                = "https://api.openai.com"
	defaultPageLimit              = 100
	defaultMaxPages               = 10
	defaultRequestTimeout         = 30 * time.Second
	defaultLogLevel               = "info"
)

// Load reads configuration from path (or the default location when empty),
// .env files and OCT_-prefixed environment variables. A missing config file
// is not an error.
func Load(path string) (*Config, error) {
	loadDotEnv()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	cfg.File = v.ConfigFileUsed()
	if cfg.File == "" {
		cfg.File = path
	}
	if cfg.File == "" {
		cfg.File = DefaultPath()
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	if err := ensureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("refresh_interval_minutes", defaultRefreshIntervalMinutes)
	v.SetDefault("default_mode", defaultMode)
	v.SetDefault("base_url", defaultBaseURL)
	v.SetDefault("page_limit", defaultPageLimit)
	v.SetDefault("follow_pages", false)
	v.SetDefault("max_pages", defaultMaxPages)
	v.SetDefault("request_timeout", defaultRequestTimeout)
	v.SetDefault("data_dir", DefaultDir())
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("desktop_notifications", true)
}

func (c *Config) normalize() error {
	if _, err := models.ParseDisplayMode(c.DefaultMode); err != nil {
		return fmt.Errorf("invalid default_mode: %w", err)
	}

	c.DataDir = expandHome(c.DataDir)
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "oct.log")
	}
	c.LogFile = expandHome(c.LogFile)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")

	if c.PageLimit <= 0 {
		c.PageLimit = defaultPageLimit
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.RequestTimeout < 0 {
		c.RequestTimeout = 0
	}
	return nil
}

// Mode returns the parsed default display mode.
func (c *Config) Mode() models.DisplayMode {
	m, _ := models.ParseDisplayMode(c.DefaultMode)
	return m
}

// DatabasePath returns the path of the SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "oct.db")
}

// MasterKeyPath returns the path of the credential encryption key.
func (c *Config) MasterKeyPath() string {
	return filepath.Join(c.DataDir, "master.key")
}

// fileConfig is the on-disk YAML layout written by Save.
type fileConfig struct {
	RefreshIntervalMinutes int    `yaml:"refresh_interval_minutes"`
	DefaultMode            string `yaml:"default_mode"`
	BaseURL                string `yaml:"base_url"`
	PageLimit              int    `yaml:"page_limit"`
	FollowPages            bool   `yaml:"follow_pages"`
	MaxPages               int    `yaml:"max_pages"`
	RequestTimeout         string `yaml:"request_timeout"`
	DataDir                string `yaml:"data_dir"`
	LogLevel               string `yaml:"log_level"`
	DesktopNotifications   bool   `yaml:"desktop_notifications"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		RefreshIntervalMinutes: defaultRefreshIntervalMinutes,
		DefaultMode:            defaultMode,
		BaseURL:                defaultBaseURL,
		PageLimit:              defaultPageLimit,
		MaxPages:               defaultMaxPages,
		RequestTimeout:         defaultRequestTimeout,
		DataDir:                DefaultDir(),
		LogLevel:               defaultLogLevel,
		DesktopNotifications:   true,
		File:                   DefaultPath(),
	}
	_ = cfg.normalize()
	return cfg
}

// Save writes cfg as YAML to path. An existing file is only replaced when
// overwrite is set.
func Save(cfg *Config, path string, overwrite bool) error {
	if path == "" {
		path = DefaultPath()
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := yaml.Marshal(fileConfig{
		RefreshIntervalMinutes: cfg.RefreshIntervalMinutes,
		DefaultMode:            cfg.DefaultMode,
		BaseURL:                cfg.BaseURL,
		PageLimit:              cfg.PageLimit,
		FollowPages:            cfg.FollowPages,
		MaxPages:               cfg.MaxPages,
		RequestTimeout:         cfg.RequestTimeout.String(),
		DataDir:                cfg.DataDir,
		LogLevel:               cfg.LogLevel,
		DesktopNotifications:   cfg.DesktopNotifications,
	})
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logger.Info("wrote config", "path", path)
	return nil
}

// loadDotEnv loads the first .env file found. Existing variables win.
func loadDotEnv() {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				logger.Warn("failed to load .env", "path", path, "error", err)
			}
			return
		}
	}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	paths = append(paths, filepath.Join(DefaultDir(), ".env"))

	return paths
}

// DefaultDir returns ~/.config/oct, or the working directory when the home
// directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "oct")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
