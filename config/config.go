package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ProviderConfig struct {
	Type          string `toml:"type"`
	BaseURL       string `toml:"base_url,omitempty"`
	ChatModel     string `toml:"chat_model"`
	AnalysisModel string `toml:"analysis_model"`
}

type MemoryConfig struct {
	HistoryWindow  int `toml:"history_window"`
	AnalysisWindow int `toml:"analysis_window"`
}

type LimitsConfig struct {
	PrimaryMaxTokens    int64 `toml:"primary_max_tokens"`
	CommentaryMaxTokens int64 `toml:"commentary_max_tokens"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

type UserConfig struct {
	Provider ProviderConfig `toml:"provider"`
	Memory   MemoryConfig   `toml:"memory"`
	Limits   LimitsConfig   `toml:"limits"`
	Server   ServerConfig   `toml:"server"`
}

// Config is the merged runtime configuration: system settings resolve the
// data directory, user settings everything else.
type Config struct {
	DataDirectory       string
	ProviderType        string
	BaseURL             string
	ChatModel           string
	AnalysisModel       string
	HistoryWindow       int
	AnalysisWindow      int
	PrimaryMaxTokens    int64
	CommentaryMaxTokens int64
	Listen              string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("DESKMATE_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if provider := os.Getenv("DESKMATE_PROVIDER"); provider != "" {
		c.ProviderType = provider
	}
	if baseURL := os.Getenv("DESKMATE_BASE_URL"); baseURL != "" {
		c.BaseURL = baseURL
	}
	if model := os.Getenv("DESKMATE_CHAT_MODEL"); model != "" {
		c.ChatModel = model
	}
	if model := os.Getenv("DESKMATE_ANALYSIS_MODEL"); model != "" {
		c.AnalysisModel = model
	}
	if listen := os.Getenv("DESKMATE_LISTEN"); listen != "" {
		c.Listen = listen
	}
	if window := os.Getenv("DESKMATE_HISTORY_WINDOW"); window != "" {
		if n, err := strconv.Atoi(window); err == nil && n > 0 {
			c.HistoryWindow = n
		}
	}
}

func CheckDebug() bool {
	debug := os.Getenv("DESKMATE_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - the debug log can contain conversation content
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (DESKMATE_DEBUG=%s) ===", os.Getenv("DESKMATE_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func Load() (*Config, error) {
	defaults := DefaultUserConfig()
	cfg := &Config{
		DataDirectory:       "~/.local/share/deskmate",
		ProviderType:        defaults.Provider.Type,
		BaseURL:             defaults.Provider.BaseURL,
		ChatModel:           defaults.Provider.ChatModel,
		AnalysisModel:       defaults.Provider.AnalysisModel,
		HistoryWindow:       defaults.Memory.HistoryWindow,
		AnalysisWindow:      defaults.Memory.AnalysisWindow,
		PrimaryMaxTokens:    defaults.Limits.PrimaryMaxTokens,
		CommentaryMaxTokens: defaults.Limits.CommentaryMaxTokens,
		Listen:              defaults.Server.Listen,
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	userCfg, err := LoadUserConfig(cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.mergeUserConfig(userCfg)

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}

// mergeUserConfig overlays non-zero user settings onto the defaults already
// present in c. Zero values in the file keep the built-in defaults so a
// sparse config.toml stays valid.
func (c *Config) mergeUserConfig(u *UserConfig) {
	if u.Provider.Type != "" {
		c.ProviderType = u.Provider.Type
	}
	if u.Provider.BaseURL != "" {
		c.BaseURL = u.Provider.BaseURL
	}
	if u.Provider.ChatModel != "" {
		c.ChatModel = u.Provider.ChatModel
	}
	if u.Provider.AnalysisModel != "" {
		c.AnalysisModel = u.Provider.AnalysisModel
	}
	if u.Memory.HistoryWindow > 0 {
		c.HistoryWindow = u.Memory.HistoryWindow
	}
	if u.Memory.AnalysisWindow > 0 {
		c.AnalysisWindow = u.Memory.AnalysisWindow
	}
	if u.Limits.PrimaryMaxTokens > 0 {
		c.PrimaryMaxTokens = u.Limits.PrimaryMaxTokens
	}
	if u.Limits.CommentaryMaxTokens > 0 {
		c.CommentaryMaxTokens = u.Limits.CommentaryMaxTokens
	}
	if u.Server.Listen != "" {
		c.Listen = u.Server.Listen
	}
}
