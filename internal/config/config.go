// Package config loads the nosh application configuration.
// Configuration lives in ~/.config/nosh/config.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the app needs to talk to the nutrition
// service and lay out its local state.
type Config struct {
	APIBase         string
	AuthToken       string
	DataDir         string
	DefaultKcalGoal float64
	StaleAfter      time.Duration
	ProbeInterval   time.Duration
}

const (
	defaultConfigPath = "~/.config/nosh/config.toml"
	defaultDataDir    = "~/.local/share/nosh"
	defaultAPIBase    = "https://api.nosh.fit"
	defaultKcalGoal   = 2000
)

// Load locates and parses the config, falling back to defaults when the
// file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBase:         defaultAPIBase,
		DataDir:         mustExpand(defaultDataDir),
		DefaultKcalGoal: defaultKcalGoal,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase         string  `toml:"api_base"`
		AuthToken       string  `toml:"auth_token"`
		DataDir         string  `toml:"data_dir"`
		DefaultKcalGoal float64 `toml:"default_kcal_goal"`
		StaleAfterSecs  int     `toml:"stale_after_seconds"`
		ProbeEverySecs  int     `toml:"probe_every_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if base := strings.TrimSpace(raw.APIBase); base != "" {
		cfg.APIBase = base
	}
	cfg.AuthToken = strings.TrimSpace(raw.AuthToken)
	if dir := strings.TrimSpace(raw.DataDir); dir != "" {
		cfg.DataDir = mustExpand(dir)
	}
	if raw.DefaultKcalGoal > 0 {
		cfg.DefaultKcalGoal = raw.DefaultKcalGoal
	}
	if raw.StaleAfterSecs > 0 {
		cfg.StaleAfter = time.Duration(raw.StaleAfterSecs) * time.Second
	}
	if raw.ProbeEverySecs > 0 {
		cfg.ProbeInterval = time.Duration(raw.ProbeEverySecs) * time.Second
	}

	return cfg, nil
}

// QueuePath returns where the offline mutation queue is persisted.
func (c Config) QueuePath() string {
	return filepath.Join(c.DataDir, "pending.json")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
