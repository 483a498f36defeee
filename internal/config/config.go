// Package config loads nusconsole settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/moasq/nusconsole/internal/nus"
	"github.com/moasq/nusconsole/internal/terminal"
)

const (
	appName   = "nusconsole"
	envPrefix = "NUSCONSOLE"
)

// Config holds the CLI configuration.
type Config struct {
	// ScanTimeout is how long to scan for consoles.
	ScanTimeout time.Duration `mapstructure:"scan_timeout"`

	// Device selects a console by address or name, skipping the menu.
	Device string `mapstructure:"device"`

	Language string `mapstructure:"language"`
	LogLevel string `mapstructure:"log_level"`

	// LogFile defaults to <DataDir>/logs/nusconsole.log.
	LogFile string `mapstructure:"log_file"`

	// DataDir holds the log and the recent devices list.
	DataDir string `mapstructure:"data_dir"`

	FocusColor   string `mapstructure:"focus_color"`
	DefaultColor string `mapstructure:"default_color"`

	// InputDevice is an evdev node (e.g. /dev/input/event3) read for menu
	// keys instead of stdin.
	InputDevice string `mapstructure:"input_device"`

	// LineEnding is appended to every line sent: crlf, lf, cr or none.
	LineEnding string `mapstructure:"line_ending"`

	// ReadOnly disables sending typed lines to the console.
	ReadOnly bool `mapstructure:"read_only"`
}

// Defaults returns the default value of every key.
func Defaults() map[string]any {
	return map[string]any{
		"scan_timeout":  5 * time.Second,
		"device":        "",
		"language":      "en",
		"log_level":     "info",
		"log_file":      "",
		"data_dir":      DefaultDataDir(),
		"focus_color":   "green",
		"default_color": "default",
		"input_device":  "",
		"line_ending":   "crlf",
		"read_only":     false,
	}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"timeout":      "scan_timeout",
	"device":       "device",
	"lang":         "language",
	"log-level":    "log_level",
	"log-file":     "log_file",
	"data-dir":     "data_dir",
	"input-device": "input_device",
	"line-ending":  "line_ending",
	"read-only":    "read_only",
}

// DefaultDataDir returns the per-user nusconsole directory.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(dir, appName)
}

// DefaultPath returns the path of the per-user config file.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), appName+".yaml")
}

func systemDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("ProgramData"), appName)
	}
	return filepath.Join("/etc", appName)
}

// Load resolves the configuration. configFile, when set, is read instead of
// searching the standard locations and must exist. cmd may be nil.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(appName)
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(DefaultDataDir())
		v.AddConfigPath(systemDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for name, key := range flagKeys {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "logs", appName+".log")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.ScanTimeout <= 0 {
		return fmt.Errorf("scan_timeout must be positive, got %s", c.ScanTimeout)
	}
	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("invalid language %q: %w", c.Language, err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	if _, _, err := c.Colors(); err != nil {
		return err
	}
	if _, err := nus.ParseLineEnding(c.LineEnding); err != nil {
		return fmt.Errorf("invalid line_ending: %w", err)
	}
	return nil
}

// Colors returns the parsed focus and default colors.
func (c *Config) Colors() (focus, normal terminal.Color, err error) {
	if focus, err = terminal.ParseColor(c.FocusColor); err != nil {
		return terminal.Default, terminal.Default, fmt.Errorf("invalid focus_color: %w", err)
	}
	if normal, err = terminal.ParseColor(c.DefaultColor); err != nil {
		return terminal.Default, terminal.Default, fmt.Errorf("invalid default_color: %w", err)
	}
	return focus, normal, nil
}

// fileConfig is the on-disk layout written by WriteDefault.
type fileConfig struct {
	ScanTimeout  string `yaml:"scan_timeout"`
	Device       string `yaml:"device"`
	Language     string `yaml:"language"`
	LogLevel     string `yaml:"log_level"`
	DataDir      string `yaml:"data_dir"`
	FocusColor   string `yaml:"focus_color"`
	DefaultColor string `yaml:"default_color"`
	InputDevice  string `yaml:"input_device"`
	LineEnding   string `yaml:"line_ending"`
	ReadOnly     bool   `yaml:"read_only"`
}

// WriteDefault writes a config file holding the defaults to path, or to
// DefaultPath when path is empty. An existing file is only replaced when
// force is set. It returns the path written.
func WriteDefault(path string, force bool) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("config file %s already exists", path)
	}

	d := Defaults()
	data, err := yaml.Marshal(fileConfig{
		ScanTimeout:  d["scan_timeout"].(time.Duration).String(),
		Language:     d["language"].(string),
		LogLevel:     d["log_level"].(string),
		DataDir:      d["data_dir"].(string),
		FocusColor:   d["focus_color"].(string),
		DefaultColor: d["default_color"].(string),
		LineEnding:   d["line_ending"].(string),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
