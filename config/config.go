package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ogimage/theme"
)

// Environment variables that override the config file
const (
	EnvContentDir = "OGIMAGE_CONTENT_DIR"
	EnvFontURL    = "OGIMAGE_FONT_URL"
	EnvAuthor     = "OGIMAGE_AUTHOR"
)

// DefaultFontURL is Noto Sans KR bold from the fontsource CDN
const DefaultFontURL = "https://cdn.jsdelivr.net/fontsource/fonts/noto-sans-kr@latest/korean-700-normal.woff"

// DefaultLatinFontURL covers the Latin glyphs the Korean subset lacks
const DefaultLatinFontURL = "https://cdn.jsdelivr.net/fontsource/fonts/noto-sans-kr@latest/latin-700-normal.woff"

// Config represents the application configuration
type Config struct {
	Content         ContentConfig            `yaml:"content"`
	Image           ImageConfig              `yaml:"image"`
	Font            FontConfig               `yaml:"font"`
	Themes          map[string]theme.Palette `yaml:"themes"`
	DefaultTheme    theme.Palette            `yaml:"default_theme"`
	ContinueOnError bool                     `yaml:"continue_on_error"`
}

type ContentConfig struct {
	Dir        string `yaml:"dir"`
	InputName  string `yaml:"input_name"`
	OutputName string `yaml:"output_name"`
}

type ImageConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Author         string  `yaml:"author"`
	FallbackLabel  string  `yaml:"fallback_label"`
	TitleThreshold int     `yaml:"title_threshold"`
	TitleSize      float64 `yaml:"title_size"`
	LongTitleSize  float64 `yaml:"long_title_size"`
}

type FontConfig struct {
	URL          string        `yaml:"url"`
	FallbackURLs []string      `yaml:"fallback_urls"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
	Cache        bool          `yaml:"cache"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Content: ContentConfig{
			Dir:        "./content/posts",
			InputName:  "index.md",
			OutputName: "featured.png",
		},
		Image: ImageConfig{
			Width:          900,
			Height:         300,
			Author:         "Jonghwa Baek",
			FallbackLabel:  "Blog",
			TitleThreshold: 30,
			TitleSize:      28,
			LongTitleSize:  22,
		},
		Font: FontConfig{
			URL:          DefaultFontURL,
			FallbackURLs: []string{DefaultLatinFontURL},
			Timeout:      30 * time.Second,
			Retries:      1,
		},
		Themes:       theme.Builtin(),
		DefaultTheme: theme.DefaultPalette,
	}
}

// Load reads and parses the configuration file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadOptional is Load, but a missing file yields the defaults
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process
// environment. Variables already set are kept; a missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from OGIMAGE_* environment variables
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvContentDir)); v != "" {
		c.Content.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontURL)); v != "" {
		c.Font.URL = v
	}
	if v := os.Getenv(EnvAuthor); v != "" {
		c.Image.Author = v
	}
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Content.Dir == "" {
		return fmt.Errorf("content.dir is required")
	}
	if c.Content.InputName == "" || c.Content.OutputName == "" {
		return fmt.Errorf("content.input_name and content.output_name are required")
	}
	if strings.ContainsAny(c.Content.InputName+c.Content.OutputName, `/\`) {
		return fmt.Errorf("content file names must not contain path separators")
	}
	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		return fmt.Errorf("image.width and image.height must be positive")
	}
	if c.Image.TitleSize <= 0 || c.Image.LongTitleSize <= 0 {
		return fmt.Errorf("image.title_size and image.long_title_size must be positive")
	}
	if c.Font.URL == "" {
		return fmt.Errorf("font.url is required")
	}
	if c.Font.Retries < 0 {
		return fmt.Errorf("font.retries must not be negative")
	}
	for name, p := range c.Themes {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("themes.%s: %w", name, err)
		}
	}
	if err := c.DefaultTheme.Validate(); err != nil {
		return fmt.Errorf("default_theme: %w", err)
	}
	return nil
}

// ThemeTable builds the immutable theme lookup
func (c *Config) ThemeTable() theme.Table {
	return theme.NewTable(c.Themes, c.DefaultTheme)
}
