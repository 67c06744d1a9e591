package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppName names the config directory and keyring service
const AppName = "lazytable"

// Config holds all application configuration
type Config struct {
	UI          UIConfig        `mapstructure:"ui"`
	Filtering   FilteringConfig `mapstructure:"filtering"`
	Paging      PagingConfig    `mapstructure:"paging"`
	Breakpoints map[string]int  `mapstructure:"breakpoints"`
	Columns     ColumnsConfig   `mapstructure:"columns"`
	History     HistoryConfig   `mapstructure:"history"`
	Export      ExportConfig    `mapstructure:"export"`
	Log         LogConfig       `mapstructure:"log"`
	Source      SourceConfig    `mapstructure:"source"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
}

type FilteringConfig struct {
	MinLength  int    `mapstructure:"min_length"`
	DelayMs    int    `mapstructure:"delay_ms"`
	Space      string `mapstructure:"space"`
	Connectors bool   `mapstructure:"connectors"`
	IgnoreCase bool   `mapstructure:"ignore_case"`
}

// Delay returns the search debounce delay
func (f FilteringConfig) Delay() time.Duration {
	return time.Duration(f.DelayMs) * time.Millisecond
}

// ColumnsConfig maps column names to the breakpoints at which they are
// hidden, e.g. {"email": "xs sm", "notes": "all"}
type ColumnsConfig map[string]string

type PagingConfig struct {
	Size  int `mapstructure:"size"`
	Limit int `mapstructure:"limit"`
}

type HistoryConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxEntries int  `mapstructure:"max_entries"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// SourceConfig controls how tables are loaded
type SourceConfig struct {
	RowLimit     int    `mapstructure:"row_limit"`
	PoolSize     int    `mapstructure:"pool_size"`
	QueryTimeout int    `mapstructure:"query_timeout"` // milliseconds
	Delimiter    string `mapstructure:"delimiter"`
}

// Timeout returns the query timeout
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.QueryTimeout) * time.Millisecond
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
		},
		Filtering: FilteringConfig{
			MinLength:  1,
			DelayMs:    300,
			Space:      "AND",
			Connectors: true,
			IgnoreCase: true,
		},
		Paging: PagingConfig{
			Size:  50,
			Limit: 5,
		},
		Breakpoints: map[string]int{
			"xs": 60,
			"sm": 90,
			"md": 120,
			"lg": 160,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Log: LogConfig{
			Level: "info",
		},
		Source: SourceConfig{
			RowLimit:     10000,
			PoolSize:     4,
			QueryTimeout: 30000,
			Delimiter:    ",",
		},
	}
}

// flagKeys maps command line flags to the config keys they override
var flagKeys = map[string]string{
	"page-size": "paging.size",
	"log-level": "log.level",
	"theme":     "ui.theme",
	"limit":     "source.row_limit",
}

// Load loads configuration from file, then applies flags that were set.
// An empty path searches the default locations. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 1. User config directory
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		// 2. Current directory
		v.AddConfigPath(".")
		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()

	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("filtering.min_length", d.Filtering.MinLength)
	v.SetDefault("filtering.delay_ms", d.Filtering.DelayMs)
	v.SetDefault("filtering.space", d.Filtering.Space)
	v.SetDefault("filtering.connectors", d.Filtering.Connectors)
	v.SetDefault("filtering.ignore_case", d.Filtering.IgnoreCase)
	v.SetDefault("paging.size", d.Paging.Size)
	v.SetDefault("paging.limit", d.Paging.Limit)
	for name, width := range d.Breakpoints {
		v.SetDefault("breakpoints."+name, width)
	}
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("source.row_limit", d.Source.RowLimit)
	v.SetDefault("source.pool_size", d.Source.PoolSize)
	v.SetDefault("source.query_timeout", d.Source.QueryTimeout)
	v.SetDefault("source.delimiter", d.Source.Delimiter)
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// LogPath returns the configured log file, defaulting to the config directory
func (c *Config) LogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	dir, err := GetConfigPath()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName+".log")
	}
	return filepath.Join(dir, AppName+".log")
}
