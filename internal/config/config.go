package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Feed    FeedConfig    `mapstructure:"feed"`
	UI      UIConfig      `mapstructure:"ui"`
	Media   MediaConfig   `mapstructure:"media"`
	Keys    KeyConfig     `mapstructure:"keys"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type APIConfig struct {
	// Endpoint is a format string taking the language subdomain.
	Endpoint        string        `mapstructure:"endpoint"`
	ListingLanguage string        `mapstructure:"listing_language"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	ThumbSize       int           `mapstructure:"thumb_size"`
	// AllowLocalhost relaxes endpoint and link validation for local fakes.
	AllowLocalhost bool `mapstructure:"allow_localhost"`
}

type FeedConfig struct {
	Debounce     time.Duration `mapstructure:"debounce"`
	DefaultTopic string        `mapstructure:"default_topic"`
	Language     string        `mapstructure:"language"`
	DiscardStale bool          `mapstructure:"discard_stale"`
}

type UIConfig struct {
	Colors  UIColors      `mapstructure:"colors"`
	Article ArticleConfig `mapstructure:"article"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type ArticleConfig struct {
	MaxExtractLength int `mapstructure:"max_extract_length"`
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type MediaConfig struct {
	Browser       string   `mapstructure:"browser"`
	ImageViewers  []string `mapstructure:"image_viewers"`
	DefaultOpener string   `mapstructure:"default_opener"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit           string `mapstructure:"quit"`
	Search         string `mapstructure:"search"`
	Find           string `mapstructure:"find"`
	NextTopic      string `mapstructure:"next_topic"`
	PrevTopic      string `mapstructure:"prev_topic"`
	ToggleLanguage string `mapstructure:"toggle_language"`
	Reload         string `mapstructure:"reload"`
	OpenBrowser    string `mapstructure:"open_browser"`
	OpenImage      string `mapstructure:"open_image"`
	Back           string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type MetricsConfig struct {
	// Addr enables a Prometheus listener when non-empty, e.g. "127.0.0.1:9464".
	Addr string `mapstructure:"addr"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			Endpoint:        "https://%s.wikipedia.org/w/api.php",
			ListingLanguage: "en",
			HTTPTimeout:     15 * time.Second,
			UserAgent:       "wikr/1.0 (https://github.com/pders01/wikr)",
			ThumbSize:       400,
		},
		Feed: FeedConfig{
			Debounce:     500 * time.Millisecond,
			DefaultTopic: "onThisDay",
			Language:     "zh",
			DiscardStale: true,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#EF4444",
				Secondary:  "#4ECDC4",
				Accent:     "#F87171",
				Background: "#111827",
				Surface:    "#1F2937",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Article: ArticleConfig{
				MaxExtractLength: 160,
				WordWrapMaxWidth: 100,
				WordWrapMinWidth: 40,
			},
		},
		Media: MediaConfig{
			ImageViewers:  imageViewers(),
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:           "q",
				Search:         "/",
				Find:           "f",
				NextTopic:      "tab",
				PrevTopic:      "shift+tab",
				ToggleLanguage: "L",
				Reload:         "r",
				OpenBrowser:    "o",
				OpenImage:      "i",
				Back:           "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(homeDir, ".wikr", "wikr.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func imageViewers() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"start"}
	default:
		return []string{"sxiv", "feh", "eog", "xdg-open"}
	}
}

// Load reads the config file (explicit path, or config.toml in
// ~/.config/wikr or the working directory) over the defaults. WIKR_*
// environment variables override both.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("api", cfg.API)
	v.SetDefault("feed", cfg.Feed)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)
	v.SetDefault("log", cfg.Log)
	v.SetDefault("metrics", cfg.Metrics)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "wikr")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WIKR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Decode over the defaults so a partial section keeps the rest of its defaults
	config := defaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	config.Log.Path = expandPath(config.Log.Path)

	return config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings keep the TOML readable
	apiCfg := map[string]interface{}{
		"endpoint":         config.API.Endpoint,
		"listing_language": config.API.ListingLanguage,
		"http_timeout":     config.API.HTTPTimeout.String(),
		"user_agent":       config.API.UserAgent,
		"thumb_size":       config.API.ThumbSize,
		"allow_localhost":  config.API.AllowLocalhost,
	}

	feedCfg := map[string]interface{}{
		"debounce":      config.Feed.Debounce.String(),
		"default_topic": config.Feed.DefaultTopic,
		"language":      config.Feed.Language,
		"discard_stale": config.Feed.DiscardStale,
	}

	v.Set("api", apiCfg)
	v.Set("feed", feedCfg)
	for key, section := range map[string]any{
		"ui":      config.UI,
		"media":   config.Media,
		"keys":    config.Keys,
		"log":     config.Log,
		"metrics": config.Metrics,
	} {
		m, err := toMap(section)
		if err != nil {
			return fmt.Errorf("encoding %s section: %w", key, err)
		}
		v.Set(key, m)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

// toMap flattens a section struct into a map keyed by its mapstructure tags,
// so the written file uses the same keys Load reads.
func toMap(section any) (map[string]any, error) {
	var out map[string]any
	if err := mapstructure.Decode(section, &out); err != nil {
		return nil, err
	}
	for k, val := range out {
		if reflect.ValueOf(val).Kind() == reflect.Struct {
			m, err := toMap(val)
			if err != nil {
				return nil, err
			}
			out[k] = m
		}
	}
	return out, nil
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
