// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "DROIDBRIDGE_CONFIG"

// Config is the master configuration for droidbridge.
type Config struct {
	// Bridge configures the adb invoker.
	Bridge BridgeConfig `yaml:"bridge" json:"bridge"`

	// Screenshot configures the capture pipeline.
	Screenshot ScreenshotConfig `yaml:"screenshot" json:"screenshot"`

	// Clipboard configures clipboard delivery.
	Clipboard ClipboardConfig `yaml:"clipboard" json:"clipboard"`

	// Automation configures app lifecycle operations.
	Automation AutomationConfig `yaml:"automation" json:"automation"`

	// Log configures diagnostic output on stderr.
	Log LogConfig `yaml:"log" json:"log"`
}

// BridgeConfig configures the adb invoker.
type BridgeConfig struct {
	// Binary is the adb executable, a bare name resolved through PATH
	// or a path.
	// Default: adb
	Binary string `yaml:"binary" json:"binary"`

	// Timeout bounds each adb invocation, as a Go duration string. "0s"
	// disables the bound.
	// Default: 0s
	Timeout string `yaml:"timeout" json:"timeout"`

	// BenignStderr lists substrings that mark an adb stderr line as
	// non-fatal. Matching ignores case.
	// Default: ["warning", "* daemon "]
	BenignStderr []string `yaml:"benign_stderr" json:"benign_stderr"`
}

// ScreenshotConfig configures the capture pipeline.
type ScreenshotConfig struct {
	// Strategy is "stream" (exec-out) or "device-file" (capture, pull,
	// delete).
	// Default: stream
	Strategy string `yaml:"strategy" json:"strategy"`

	// DeviceDir is where device-file captures are written on the device.
	// Default: /sdcard
	DeviceDir string `yaml:"device_dir" json:"device_dir"`

	// TempDir holds staging files for clipboard delivery. Empty means
	// the OS temp directory.
	TempDir string `yaml:"temp_dir" json:"temp_dir"`

	// JPEGQuality is the JPEG encoder quality, 1..100.
	// Default: 90
	JPEGQuality int `yaml:"jpeg_quality" json:"jpeg_quality"`
}

// ClipboardConfig configures clipboard delivery.
type ClipboardConfig struct {
	// Platform overrides host detection ("darwin", "windows", "linux").
	// Empty means the running OS.
	Platform string `yaml:"platform" json:"platform"`
}

// AutomationConfig configures app lifecycle operations.
type AutomationConfig struct {
	// RestartDelay is the pause between stopping or clearing an app and
	// launching it again.
	// Default: 1s
	RestartDelay string `yaml:"restart_delay" json:"restart_delay"`
}

// LogConfig configures diagnostic output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	// Default: info
	Level string `yaml:"level" json:"level"`

	// Format is auto (text on a terminal, JSON otherwise), text or json.
	// Default: auto
	Format string `yaml:"format" json:"format"`
}

// Default returns the default configuration. These values apply to any
// field a config file leaves unset.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Binary:       "adb",
			Timeout:      "0s",
			BenignStderr: []string{"warning", "* daemon "},
		},
		Screenshot: ScreenshotConfig{
			Strategy:    "stream",
			DeviceDir:   "/sdcard",
			TempDir:     "",
			JPEGQuality: 90,
		},
		Automation: AutomationConfig{
			RestartDelay: "1s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from explicitPath if non-empty, then from
// the DROIDBRIDGE_CONFIG environment variable, and otherwise returns
// Default.
func Load(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return LoadFile(explicitPath)
	}
	if configPath := os.Getenv(EnvironmentVariable); configPath != "" {
		return LoadFile(configPath)
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from a specific file path, layered over
// Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile decodes one configuration file into c, selecting the decoder
// by extension.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return fmt.Errorf("unsupported config file extension %q (expected .yaml, .yml, .json or .jsonc)", filepath.Ext(path))
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Bridge.Binary = expandVars(c.Bridge.Binary, vars)
	c.Screenshot.TempDir = expandVars(c.Screenshot.TempDir, vars)
	c.Screenshot.DeviceDir = expandVars(c.Screenshot.DeviceDir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every invalid field is
// reported, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if c.Bridge.Binary == "" {
		errs = append(errs, fmt.Errorf("bridge.binary is required"))
	}
	if timeout, err := time.ParseDuration(c.Bridge.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("bridge.timeout: %w", err))
	} else if timeout < 0 {
		errs = append(errs, fmt.Errorf("bridge.timeout must not be negative"))
	}

	strategies := []string{"stream", "device-file"}
	if !slices.Contains(strategies, c.Screenshot.Strategy) {
		errs = append(errs, fmt.Errorf("screenshot.strategy must be one of: %v", strategies))
	}
	if c.Screenshot.DeviceDir == "" || !strings.HasPrefix(c.Screenshot.DeviceDir, "/") {
		errs = append(errs, fmt.Errorf("screenshot.device_dir must be an absolute device path"))
	}
	if c.Screenshot.JPEGQuality < 1 || c.Screenshot.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("screenshot.jpeg_quality must be between 1 and 100, got %d", c.Screenshot.JPEGQuality))
	}

	platforms := []string{"", "darwin", "windows", "linux"}
	if !slices.Contains(platforms, c.Clipboard.Platform) {
		errs = append(errs, fmt.Errorf("clipboard.platform must be empty or one of: darwin, windows, linux"))
	}

	if delay, err := time.ParseDuration(c.Automation.RestartDelay); err != nil {
		errs = append(errs, fmt.Errorf("automation.restart_delay: %w", err))
	} else if delay < 0 {
		errs = append(errs, fmt.Errorf("automation.restart_delay must not be negative"))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levels))
	}
	formats := []string{"auto", "text", "json"}
	if !slices.Contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// BridgeTimeout returns bridge.timeout parsed. Call after Validate.
func (c *Config) BridgeTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Bridge.Timeout)
	return timeout
}

// RestartDelay returns automation.restart_delay parsed. Call after
// Validate.
func (c *Config) RestartDelay() time.Duration {
	delay, _ := time.ParseDuration(c.Automation.RestartDelay)
	return delay
}
