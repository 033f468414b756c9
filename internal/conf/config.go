// Package conf loads and exposes the VoxCode settings. Configuration lives in
// ~/.voxcode/config.yaml and every value can be overridden through VOXCODE_*
// environment variables or command line flags bound by the cmd packages.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// LogConfig holds settings for the daemon file log.
type LogConfig struct {
	Enabled    bool   // true to write a rotating JSON log file
	Path       string // log file path
	MaxSize    int    // rotate after this many megabytes
	MaxBackups int    // rotated files to keep
	MaxAge     int    // days to retain rotated files
}

// SilenceSettings controls the auto-stop decision of the capture engine.
type SilenceSettings struct {
	Threshold    float64       // amplitude RMS floor, 0..1 normalized
	Duration     float64       // seconds of continuous silence required to stop
	MinRecording float64       // seconds below which auto-stop is suppressed
	PollInterval time.Duration // monitor tick interval
}

// AudioSettings contains microphone capture parameters.
type AudioSettings struct {
	Source     string          // capture device name or ID, "sysdefault" for default
	SampleRate int             // capture sample rate in Hz
	Channels   int             // capture channel count
	Silence    SilenceSettings // auto-stop tuning
	Export     struct {
		Path string // directory for finished recordings, empty for system temp
	}
}

// ProviderSettings selects and configures the AI translation provider.
type ProviderSettings struct {
	Name         string // "gemini", "openai" or "claude"
	Model        string // provider model override, empty for provider default
	APIKey       string // provider API key, falls back to provider env var
	LanguageFrom string // spoken language
	LanguageTo   string // translation target language
}

// UISettings configures the WebSocket bridge the Electron overlay connects to.
type UISettings struct {
	Enabled bool
	Host    string
	Port    int
}

// InjectionSettings configures keystroke injection of translated text.
type InjectionSettings struct {
	Enabled   bool
	Tool      string        // injection tool override ("xdotool", "wtype", "osascript")
	ChunkSize int           // characters typed per burst
	Interval  time.Duration // pause between bursts
}

// TelemetrySettings configures the optional Prometheus endpoint.
type TelemetrySettings struct {
	Enabled bool
	Listen  string // listen address, e.g. "localhost:9090"
}

// Settings is the root configuration for the application.
type Settings struct {
	Debug bool // enables debug level logging

	Main struct {
		Name string    // instance name, shown in logs and UI
		Log  LogConfig // daemon file log
	}

	Audio     AudioSettings
	Provider  ProviderSettings
	UI        UISettings
	Injection InjectionSettings
	Telemetry TelemetrySettings
}

var (
	settingsInstance *Settings
	settingsOnce     sync.Once
	settingsMutex    sync.RWMutex
)

// ConfigDir returns the directory holding the user configuration, creating
// it on first use.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".voxcode")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// Load reads the configuration file, applies defaults and environment
// overrides, and returns the populated settings.
func Load() (*Settings, error) {
	setDefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if dir, err := ConfigDir(); err == nil {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("voxcode")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Missing file is fine, defaults apply.
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

// Setting returns the shared settings instance, loading it on first use.
// A load failure at this point is a programming error (commands call Load
// explicitly and handle its error before Setting is ever used).
func Setting() *Settings {
	settingsOnce.Do(func() {
		settingsMutex.RLock()
		loaded := settingsInstance != nil
		settingsMutex.RUnlock()
		if !loaded {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveDefault writes a config file populated with the current defaults if no
// config file exists yet. Used on first run so users have a file to edit.
func SaveDefault() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	setDefaultConfig()
	if err := viper.SafeWriteConfigAs(path); err != nil {
		return "", fmt.Errorf("error writing default config: %w", err)
	}
	return path, nil
}
