// Package config loads and saves the layershell configuration file.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/graphics"
)

// Margin mirrors core.Margin with config file keys.
type Margin struct {
	Top    int32 `json:"top" mapstructure:"top"`
	Right  int32 `json:"right" mapstructure:"right"`
	Bottom int32 `json:"bottom" mapstructure:"bottom"`
	Left   int32 `json:"left" mapstructure:"left"`
}

// Config is the on-disk configuration.
type Config struct {
	Daemon                bool     `json:"daemon" mapstructure:"daemon"`
	Layer                 string   `json:"layer" mapstructure:"layer"`
	Namespace             string   `json:"namespace" mapstructure:"namespace"`
	Width                 uint32   `json:"width" mapstructure:"width"`
	Height                uint32   `json:"height" mapstructure:"height"`
	Anchor                string   `json:"anchor" mapstructure:"anchor"`
	ExclusiveZone         int32    `json:"exclusive_zone" mapstructure:"exclusive_zone"`
	Margin                Margin   `json:"margin" mapstructure:"margin"`
	KeyboardInteractivity string   `json:"keyboard_interactivity" mapstructure:"keyboard_interactivity"`
	Output                string   `json:"output,omitempty" mapstructure:"output"`
	TextSize              float64  `json:"text_size" mapstructure:"text_size"`
	Antialiasing          string   `json:"antialiasing" mapstructure:"antialiasing"`
	Fonts                 []string `json:"fonts,omitempty" mapstructure:"fonts"`
	ExecutorLimit         int      `json:"executor_limit" mapstructure:"executor_limit"`
	MarkdownStyle         string   `json:"markdown_style" mapstructure:"markdown_style"`
	LogLevel              string   `json:"log_level" mapstructure:"log_level"`
}

// Default returns the configuration used when no file exists. Sizes are
// sized for the terminal backend, where a pixel is one cell.
func Default() Config {
	layer := core.DefaultLayerSettings()
	return Config{
		Layer:                 layer.Layer.String(),
		Namespace:             "layershell",
		Width:                 48,
		Height:                12,
		Anchor:                "top",
		Margin:                Margin{Top: 1},
		KeyboardInteractivity: "on-demand",
		TextSize:              float64(graphics.DefaultSettings().DefaultTextSize),
		Antialiasing:          "none",
		MarkdownStyle:         "dark",
		LogLevel:              "info",
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "layershell", "config.json"), nil
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// contractHome replaces the home directory prefix with ~/ for display.
func contractHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+string(filepath.Separator)) {
		return "~" + path[len(home):]
	}
	return path
}

// Load reads the config at path, or at Path when path is empty. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := Default()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("daemon", cfg.Daemon)
	v.SetDefault("layer", cfg.Layer)
	v.SetDefault("namespace", cfg.Namespace)
	v.SetDefault("width", cfg.Width)
	v.SetDefault("height", cfg.Height)
	v.SetDefault("anchor", cfg.Anchor)
	v.SetDefault("exclusive_zone", cfg.ExclusiveZone)
	v.SetDefault("margin.top", cfg.Margin.Top)
	v.SetDefault("margin.right", cfg.Margin.Right)
	v.SetDefault("margin.bottom", cfg.Margin.Bottom)
	v.SetDefault("margin.left", cfg.Margin.Left)
	v.SetDefault("keyboard_interactivity", cfg.KeyboardInteractivity)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("text_size", cfg.TextSize)
	v.SetDefault("antialiasing", cfg.Antialiasing)
	v.SetDefault("fonts", cfg.Fonts)
	v.SetDefault("executor_limit", cfg.ExecutorLimit)
	v.SetDefault("markdown_style", cfg.MarkdownStyle)
	v.SetDefault("log_level", cfg.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", contractHome(path), err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", contractHome(path), err)
	}
	for i, font := range cfg.Fonts {
		cfg.Fonts[i] = expandHome(font)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Width == 0 || c.Height == 0:
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	case c.TextSize <= 0:
		return fmt.Errorf("text_size must be positive, got %g", c.TextSize)
	case c.ExecutorLimit < 0:
		return fmt.Errorf("executor_limit must not be negative, got %d", c.ExecutorLimit)
	}
	return nil
}

// Save writes cfg to path atomically, creating parent directories.
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	cfg.Fonts = slices.Clone(cfg.Fonts)
	for i, font := range cfg.Fonts {
		cfg.Fonts[i] = contractHome(font)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// LayerSettings returns the layer surface the config describes.
func (c Config) LayerSettings() core.LayerSettings {
	return core.LayerSettings{
		Layer:                 core.ParseLayer(c.Layer),
		Namespace:             c.Namespace,
		Size:                  core.PhysicalSize{Width: c.Width, Height: c.Height},
		Anchor:                core.ParseAnchor(c.Anchor),
		ExclusiveZone:         c.ExclusiveZone,
		Margin:                core.Margin(c.Margin),
		KeyboardInteractivity: core.ParseKeyboardInteractivity(c.KeyboardInteractivity),
		Output:                c.Output,
	}
}

// Settings returns the compositor settings, reading every configured font.
func (c Config) Settings() (graphics.Settings, error) {
	s := graphics.DefaultSettings()
	s.DefaultTextSize = float32(c.TextSize)
	s.Antialiasing = graphics.ParseAntialiasing(c.Antialiasing)
	for _, path := range c.Fonts {
		data, err := os.ReadFile(path)
		if err != nil {
			return graphics.Settings{}, fmt.Errorf("font: %w", err)
		}
		s.Fonts = append(s.Fonts, data)
	}
	return s, nil
}

// watchDebounce is how long Watch waits for a burst of writes to settle.
const watchDebounce = 100 * time.Millisecond

// Watch calls changed after the file at path is written, created, renamed
// into place or removed. Bursts within watchDebounce collapse into one call.
// The parent directory is watched so atomic saves are seen. Watch blocks
// until ctx ends.
func Watch(ctx context.Context, path string, changed func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", contractHome(filepath.Dir(path)), err)
	}

	name := filepath.Clean(path)
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				pending = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		case <-pending:
			pending = nil
			changed()
		}
	}
}
