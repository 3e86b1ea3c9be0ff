package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SWITCHSCAN"

// Config holds application configuration.
type Config struct {
	Scan       ScanConfig       `mapstructure:"scan"`
	Device     DeviceConfig     `mapstructure:"device"`
	Input      InputConfig      `mapstructure:"input"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Log        LogConfig        `mapstructure:"log"`
	Journal    JournalConfig    `mapstructure:"journal"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
}

type ScanConfig struct {
	PeriodMS int `mapstructure:"period_ms"`
}

func (s ScanConfig) Period() time.Duration {
	return time.Duration(s.PeriodMS) * time.Millisecond
}

// DeviceConfig selects the sensor peripheral.
type DeviceConfig struct {
	NamePrefix         string `mapstructure:"name_prefix"`
	ServiceUUID        string `mapstructure:"service_uuid"`
	CharacteristicUUID string `mapstructure:"characteristic_uuid"`
	ConnectTimeoutMS   int    `mapstructure:"connect_timeout_ms"`
	ScanWindowMS       int    `mapstructure:"scan_window_ms"`
}

func (d DeviceConfig) ConnectTimeout() time.Duration {
	return time.Duration(d.ConnectTimeoutMS) * time.Millisecond
}

func (d DeviceConfig) ScanWindow() time.Duration {
	return time.Duration(d.ScanWindowMS) * time.Millisecond
}

// Switch modes for single-switch sensors.
const (
	SwitchModeTap    = "tap"
	SwitchModeDirect = "direct"
)

type InputConfig struct {
	SwitchMode string `mapstructure:"switch_mode"`
}

type NavigationConfig struct {
	Strict bool `mapstructure:"strict"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// HTTPConfig enables the local control API when Addr is set.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type VocabularyConfig struct {
	Path string `mapstructure:"path"`
}

// Path is $SWITCHSCAN_CONFIG or ~/.config/switchscan/config.toml.
func Path() string {
	if p := strings.TrimSpace(os.Getenv(envPrefix + "_CONFIG")); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "switchscan", "config.toml")
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "switchscan")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.period_ms", 1500)
	v.SetDefault("device.name_prefix", "ESP32-S3-Touch")
	v.SetDefault("device.service_uuid", "4fafc201-1d5a-459e-8fcc-c5c9c331914b")
	v.SetDefault("device.characteristic_uuid", "beb5483e-36e1-4688-b7f5-ea07361b26a8")
	v.SetDefault("device.connect_timeout_ms", 10_000)
	v.SetDefault("device.scan_window_ms", 8_000)
	v.SetDefault("input.switch_mode", SwitchModeTap)
	v.SetDefault("navigation.strict", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("journal.path", filepath.Join(dataDir(), "journal.db"))
	v.SetDefault("http.addr", "")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.dsn", "")
	v.SetDefault("vocabulary.path", "")
}

// Load reads configuration from Path() and env. Env var overrides use
// prefix SWITCHSCAN_.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the TOML file at path if it exists.
func LoadFrom(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")
	v.SetConfigFile(path)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return normalize(c), nil
}

// Save writes cfg to Path(), creating the directory if needed.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("scan.period_ms", cfg.Scan.PeriodMS)
	v.Set("device.name_prefix", cfg.Device.NamePrefix)
	v.Set("device.service_uuid", cfg.Device.ServiceUUID)
	v.Set("device.characteristic_uuid", cfg.Device.CharacteristicUUID)
	v.Set("device.connect_timeout_ms", cfg.Device.ConnectTimeoutMS)
	v.Set("device.scan_window_ms", cfg.Device.ScanWindowMS)
	v.Set("input.switch_mode", cfg.Input.SwitchMode)
	v.Set("navigation.strict", cfg.Navigation.Strict)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("journal.path", cfg.Journal.Path)
	v.Set("http.addr", cfg.HTTP.Addr)
	v.Set("telemetry.enabled", cfg.Telemetry.Enabled)
	v.Set("telemetry.dsn", cfg.Telemetry.DSN)
	v.Set("vocabulary.path", cfg.Vocabulary.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func normalize(cfg Config) Config {
	if cfg.Scan.PeriodMS < 100 {
		cfg.Scan.PeriodMS = 100
	}
	if cfg.Device.ConnectTimeoutMS < 1000 {
		cfg.Device.ConnectTimeoutMS = 1000
	}
	if cfg.Device.ScanWindowMS < 1000 {
		cfg.Device.ScanWindowMS = 1000
	}
	cfg.Device.NamePrefix = strings.TrimSpace(cfg.Device.NamePrefix)
	cfg.Input.SwitchMode = strings.ToLower(strings.TrimSpace(cfg.Input.SwitchMode))
	switch cfg.Input.SwitchMode {
	case SwitchModeTap, SwitchModeDirect:
	default:
		cfg.Input.SwitchMode = SwitchModeTap
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format != "json" {
		cfg.Log.Format = "text"
	}
	return cfg
}
