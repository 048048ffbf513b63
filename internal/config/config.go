package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/WhalePrompt/stiky-note-md/internal/note"
)

// Environment variables that override the config file
const (
	EnvNotesDir    = "STICKYNOTE_NOTES_DIR"
	EnvLogLevel    = "STICKYNOTE_LOG_LEVEL"
	EnvPreviewAddr = "STICKYNOTE_PREVIEW_ADDR"
)

// Config represents the stickynote configuration
type Config struct {
	NotesDir          string `json:"notes_dir" validate:"required"`
	LogFile           string `json:"log_file,omitempty"`
	LogLevel          string `json:"log_level" validate:"oneof=debug info warn error"`
	GlamourStyle      string `json:"glamour_style" validate:"oneof=auto dark light notty ascii dracula tokyo-night pink"`
	PreviewAddr       string `json:"preview_addr" validate:"required,hostname_port"`
	DefaultTitleColor string `json:"default_title_color" validate:"required,hexcolor"`
	DefaultBodyColor  string `json:"default_body_color" validate:"required,hexcolor"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		NotesDir:          filepath.Join(xdg.DataHome, "stickynote", "notes"),
		LogFile:           filepath.Join(xdg.StateHome, "stickynote", "stickynote.log"),
		LogLevel:          "info",
		GlamourStyle:      "auto",
		PreviewAddr:       "127.0.0.1:7777",
		DefaultTitleColor: note.DefaultTitleColor,
		DefaultBodyColor:  note.DefaultBodyColor,
	}
}

// ConfigPath returns the path to the config file
// Can be overridden for testing
var ConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "stickynote", "config.json")
}

// StateFilePath returns the path to the board state file
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "stickynote", "state.json")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads configuration from the XDG config directory. A .env file in
// the working directory and STICKYNOTE_* variables override file values.
func Load() (*Config, error) {
	// Optional; a missing .env is fine
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvNotesDir); v != "" {
		c.NotesDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPreviewAddr); v != "" {
		c.PreviewAddr = v
	}
}

// Save writes configuration to the XDG config directory
func (c *Config) Save() error {
	configPath := ConfigPath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s cannot be empty", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("invalid %s '%v': must be one of: %s", fe.Field(), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s '%v': expected %s", fe.Field(), fe.Value(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Theme returns the theme given to new notes
func (c *Config) Theme() note.Theme {
	return note.Theme{Title: c.DefaultTitleColor, Body: c.DefaultBodyColor}
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.NotesDir, err = expandPath(c.NotesDir)
	if err != nil {
		return fmt.Errorf("failed to expand notes_dir: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}
