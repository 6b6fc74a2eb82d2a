package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	AppName           = "Exospot"
	AppTagline        = "Terminal preview player"
	AppDescription    = "A terminal-based player that walks a local track catalog and streams previews"
	AppAuthor         = "Ilya Glebov"
	AppProjectURL     = "https://github.com/glebovdev/exospot"
	AppProjectShort   = "github.com/glebovdev/exospot"
	ConfigDir         = ".config/exospot"
	ConfigFileName    = "config.yml"
	DefaultDatabase   = "songs.db"
	DefaultCodec      = "mp3"
	DefaultReplay     = "restart"
	DefaultVolume     = 70
	DefaultInputQueue = 8
	DefaultBufferMs   = 250
	DefaultSearchURL  = "https://www.youtube.com/results?search_query=%s"
	MinVolume         = 0
	MaxVolume         = 100

	EnvDatabase = "EXOSPOT_DATABASE"
	EnvReplay   = "EXOSPOT_REPLAY"
	EnvCodec    = "EXOSPOT_CODEC"
)

// ClampVolume ensures volume is within the valid range [0, 100].
func ClampVolume(volume int) int {
	if volume < MinVolume {
		return MinVolume
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

// AppVersion can be overridden at build time using ldflags:
// go build -ldflags "-X github.com/glebovdev/exospot/internal/config.AppVersion=1.0.0"
var AppVersion = "dev"

type Theme struct {
	Background    string `yaml:"background"`
	Foreground    string `yaml:"foreground"`
	Borders       string `yaml:"borders"`
	Highlight     string `yaml:"highlight"`
	HighlightText string `yaml:"highlight_text"`
	Played        string `yaml:"played"`
	Notice        string `yaml:"notice"`
}

type Config struct {
	Database        string `yaml:"database"`
	Codec           string `yaml:"codec"`
	Volume          int    `yaml:"volume"`
	Replay          string `yaml:"replay"`
	InputQueue      int    `yaml:"input_queue"`
	SpeakerBufferMs int    `yaml:"speaker_buffer_ms"`
	SearchURL       string `yaml:"search_url"`
	Theme           Theme  `yaml:"theme"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(home, ConfigDir, ConfigFileName)
	return configPath, nil
}

// Exists reports whether the config file is present on disk.
func Exists() bool {
	configPath, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(configPath)
	return err == nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.normalize()

	return cfg, nil
}

// ApplyEnv loads an optional .env file from the working directory and lets
// EXOSPOT_* variables override the file-based settings.
func (c *Config) ApplyEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvReplay); v != "" {
		c.Replay = v
	}
	if v := os.Getenv(EnvCodec); v != "" {
		c.Codec = v
	}

	c.normalize()
	return nil
}

func (c *Config) normalize() {
	c.Volume = ClampVolume(c.Volume)
	c.Replay = strings.ToLower(strings.TrimSpace(c.Replay))
	c.Codec = strings.ToLower(strings.TrimSpace(c.Codec))
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Replay == "" {
		c.Replay = DefaultReplay
	}
	if c.InputQueue <= 0 {
		c.InputQueue = DefaultInputQueue
	}
	if c.SpeakerBufferMs <= 0 {
		c.SpeakerBufferMs = DefaultBufferMs
	}
	if c.SearchURL == "" {
		c.SearchURL = DefaultSearchURL
	}
}

// Save writes the configuration to disk atomically using temp file + rename.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	tmpPath = "" // Prevent defer from removing the final file
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Database:        DefaultDatabase,
		Codec:           DefaultCodec,
		Volume:          DefaultVolume,
		Replay:          DefaultReplay,
		InputQueue:      DefaultInputQueue,
		SpeakerBufferMs: DefaultBufferMs,
		SearchURL:       DefaultSearchURL,
		Theme: Theme{
			Background:    "#1a1b25",
			Foreground:    "#a3aacb",
			Borders:       "#40445b",
			Highlight:     "#90ee90",
			HighlightText: "#404040",
			Played:        "#50fa7b",
			Notice:        "#ff9d65",
		},
	}
}

func GetColor(colorStr string) tcell.Color {
	if colorStr == "" || colorStr == "default" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(colorStr)
}
