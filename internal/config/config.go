package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/menta2k/passport-photo/pkg/cropeditor"
	"github.com/menta2k/passport-photo/pkg/passport"
	"github.com/menta2k/passport-photo/pkg/processing"
)

// Config holds the application configuration
type Config struct {
	Editor   EditorConfig      `json:"editor"`
	Document passport.Document `json:"document"`
	Output   OutputConfig      `json:"output"`
	Vision   VisionConfig      `json:"vision"`
}

// EditorConfig holds the crop editor settings
type EditorConfig struct {
	MaxDisplayWidth  float64 `json:"max_display_width"`
	MaxDisplayHeight float64 `json:"max_display_height"`
	MinSize          float64 `json:"min_size"`
	HandleTolerance  float64 `json:"handle_tolerance"`
	InitialMaxWidth  float64 `json:"initial_max_width"`
	InitialFill      float64 `json:"initial_fill"`
	Interpolator     string  `json:"interpolator"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format  string `json:"format"`
	Quality int    `json:"quality"`
	Dir     string `json:"dir"`
	Prefix  string `json:"prefix"`
	Suffix  string `json:"suffix"`
}

// VisionConfig selects the optional vision backend used to seed the crop
type VisionConfig struct {
	Backend       string  `json:"backend"`
	URL           string  `json:"url"`
	Model         string  `json:"model"`
	MaxDim        int     `json:"max_dim"`
	MinConfidence float64 `json:"min_confidence"`
	Padding       float64 `json:"padding"`
}

// Default returns a configuration with default values
func Default() *Config {
	ed := cropeditor.DefaultConfig()
	return &Config{
		Editor: EditorConfig{
			MaxDisplayWidth:  ed.MaxDisplayWidth,
			MaxDisplayHeight: ed.MaxDisplayHeight,
			MinSize:          ed.MinSize,
			HandleTolerance:  ed.HandleTolerance,
			InitialMaxWidth:  ed.InitialMaxWidth,
			InitialFill:      ed.InitialFill,
			Interpolator:     ed.Interpolator,
		},
		Document: passport.Passport,
		Output: OutputConfig{
			Format:  processing.FormatJPEG,
			Quality: 95,
			Dir:     "./output",
			Suffix:  "_passport",
		},
		Vision: VisionConfig{
			Backend:       "ollama",
			URL:           "http://localhost:11434",
			Model:         "llava",
			MaxDim:        1024,
			MinConfidence: 0.3,
			Padding:       0.35,
		},
	}
}

// EditorConfig returns the crop editor configuration for the document
func (c *Config) EditorConfig() cropeditor.Config {
	ed := cropeditor.DefaultConfig()
	ed.MaxDisplayWidth = c.Editor.MaxDisplayWidth
	ed.MaxDisplayHeight = c.Editor.MaxDisplayHeight
	ed.MinSize = c.Editor.MinSize
	ed.HandleTolerance = c.Editor.HandleTolerance
	ed.InitialMaxWidth = c.Editor.InitialMaxWidth
	ed.InitialFill = c.Editor.InitialFill
	ed.Interpolator = c.Editor.Interpolator
	ed.Aspect = c.Document.Aspect()
	return ed
}

// Load builds the configuration from defaults, then the JSON file at path
// when it exists, then a .env file and PASSPORT_* environment variables
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		switch {
		case err == nil:
			cfg = fileCfg
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	// A missing .env file is normal
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Vision.Backend = getEnv("PASSPORT_VISION_BACKEND", c.Vision.Backend)
	c.Vision.URL = getEnv("PASSPORT_VISION_URL", c.Vision.URL)
	c.Vision.Model = getEnv("PASSPORT_VISION_MODEL", c.Vision.Model)
	c.Output.Dir = getEnv("PASSPORT_OUTPUT_DIR", c.Output.Dir)
	c.Output.Format = getEnv("PASSPORT_OUTPUT_FORMAT", c.Output.Format)
	c.Output.Quality = getEnvAsInt("PASSPORT_OUTPUT_QUALITY", c.Output.Quality)
	c.Editor.MaxDisplayWidth = getEnvAsFloat("PASSPORT_MAX_DISPLAY_WIDTH", c.Editor.MaxDisplayWidth)
	c.Editor.MaxDisplayHeight = getEnvAsFloat("PASSPORT_MAX_DISPLAY_HEIGHT", c.Editor.MaxDisplayHeight)
	c.Editor.InitialMaxWidth = getEnvAsFloat("PASSPORT_INITIAL_MAX_WIDTH", c.Editor.InitialMaxWidth)
	c.Editor.InitialFill = getEnvAsFloat("PASSPORT_INITIAL_FILL", c.Editor.InitialFill)
}

// LoadFromFile loads a JSON configuration file over the defaults, so a file
// only needs the keys it changes
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Document.Width <= 0 || c.Document.Height <= 0 {
		return fmt.Errorf("document size must be positive, got %dx%d", c.Document.Width, c.Document.Height)
	}
	if err := c.EditorConfig().Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if _, err := processing.NormalizeFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}
	if c.Vision.MinConfidence < 0 || c.Vision.MinConfidence > 1 {
		return fmt.Errorf("vision.min_confidence must be between 0 and 1")
	}
	if c.Vision.Padding < 0 {
		return fmt.Errorf("vision.padding must not be negative")
	}
	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "passport-photo", "config.json")
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
