// Package config loads the server configuration from compiled defaults, an
// optional YAML file and SIMON_ environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cbodonnell/simon/pkg/difficulty"
	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "SIMON_"

const (
	DriverGPIO     = "gpio"
	DriverMemory   = "memory"
	DriverTerminal = "terminal"
)

type Config struct {
	ListenAddr     string        `yaml:"listen_addr" env:"LISTEN_ADDR"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
	DatabaseURL    string        `yaml:"database_url" env:"DATABASE_URL"`
	ControlToken   string        `yaml:"control_token" env:"CONTROL_TOKEN"`
	NameTimeout    time.Duration `yaml:"name_timeout" env:"NAME_TIMEOUT"`
	HighscoreLimit int           `yaml:"highscore_limit" env:"HIGHSCORE_LIMIT"`
	// AllowedOrigins are host patterns of cross origin pages that may open the websocket
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	TLS            TLSConfig     `yaml:"tls" envPrefix:"TLS_"`

	Peripheral PeripheralConfig `yaml:"peripheral" envPrefix:"PERIPHERAL_"`
	Colors     []ColorConfig    `yaml:"colors"`
	BuzzerPin  int              `yaml:"buzzer_pin" env:"BUZZER_PIN"`
	Difficulty DifficultyConfig `yaml:"difficulty" envPrefix:"DIFFICULTY_"`
}

// TLSConfig enables HTTPS when both files are set
type TLSConfig struct {
	CertFile string `yaml:"cert_file" env:"CERT_FILE"`
	KeyFile  string `yaml:"key_file" env:"KEY_FILE"`
}

// Enabled reports whether a certificate and key are configured
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

type PeripheralConfig struct {
	// Driver is one of gpio, memory or terminal
	Driver string `yaml:"driver" env:"DRIVER"`
	Audio  bool   `yaml:"audio" env:"AUDIO"`
}

// ColorConfig assigns the BCM pins of one color
type ColorConfig struct {
	Name   string `yaml:"name"`
	LED    int    `yaml:"led"`
	Button int    `yaml:"button"`
}

type DifficultyConfig struct {
	Default string                             `yaml:"default" env:"DEFAULT"`
	Presets map[string]types.DifficultyProfile `yaml:"presets"`
}

// Default returns the built-in configuration: four colors on the original
// breadboard pins, the medium preset and a local SQLite database.
func Default() *Config {
	return &Config{
		ListenAddr:     ":8080",
		LogLevel:       "info",
		DatabaseURL:    "sqlite://simon.db",
		HighscoreLimit: 10,
		Peripheral: PeripheralConfig{
			Driver: DriverMemory,
		},
		Colors: []ColorConfig{
			{Name: "red", LED: 17, Button: 18},
			{Name: "green", LED: 27, Button: 22},
			{Name: "blue", LED: 23, Button: 24},
			{Name: "yellow", LED: 25, Button: 5},
		},
		BuzzerPin: 6,
		Difficulty: DifficultyConfig{
			Default: difficulty.LevelMedium,
			Presets: difficulty.DefaultPresets(),
		},
	}
}

// Load reads the configuration from path, if not empty, and the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnvironment(path, nil)
}

// LoadWithEnvironment is like Load but reads overrides from environ instead of
// the process environment when environ is not nil.
func LoadWithEnvironment(path string, environ map[string]string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %v", path, err)
		}
	}

	opts := env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(c.Colors) < 2 {
		errs = append(errs, fmt.Errorf("at least 2 colors are required, got %d", len(c.Colors)))
	}
	if _, err := c.Palette(); err != nil {
		errs = append(errs, err)
	}
	if c.NameTimeout < 0 {
		errs = append(errs, fmt.Errorf("name_timeout must be non-negative"))
	}
	if c.HighscoreLimit < 0 {
		errs = append(errs, fmt.Errorf("highscore_limit must be non-negative"))
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, fmt.Errorf("tls requires both cert_file and key_file"))
	}
	for _, pattern := range c.AllowedOrigins {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("invalid allowed origin %q: %v", pattern, err))
		}
	}

	switch c.Peripheral.Driver {
	case DriverGPIO, DriverMemory, DriverTerminal:
	default:
		errs = append(errs, fmt.Errorf("unknown peripheral driver %q", c.Peripheral.Driver))
	}

	if _, err := difficulty.NewController(difficulty.NewControllerOptions{
		Presets: c.Difficulty.Presets,
		Level:   c.Difficulty.Default,
	}); err != nil {
		errs = append(errs, fmt.Errorf("invalid difficulty: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Palette returns the configured colors in order.
func (c *Config) Palette() (*types.Palette, error) {
	colors := make([]types.Color, 0, len(c.Colors))
	for _, cc := range c.Colors {
		colors = append(colors, types.Color(strings.ToLower(strings.TrimSpace(cc.Name))))
	}
	return types.NewPalette(colors...)
}
