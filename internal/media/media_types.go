package media

import (
	_ "embed"
	"fmt"
	"net/url"
	"path"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed openers.toml
var openersTOML []byte

// Kind is what a link points at, which decides the program it opens in.
type Kind int

const (
	KindPage Kind = iota
	KindImage
)

func (k Kind) String() string {
	if k == KindImage {
		return "image"
	}
	return "page"
}

type kindConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

type platformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

type argsConfig struct {
	Args []string `toml:"args"`
}

type openerDefinition struct {
	Description string      `toml:"description"`
	Platforms   []string    `toml:"platforms"`
	Command     string      `toml:"command"`
	Page        *argsConfig `toml:"page"`
	Image       *argsConfig `toml:"image"`
}

type openersFile struct {
	Kinds     map[string]kindConfig       `toml:"kinds"`
	Platforms map[string]platformConfig   `toml:"platforms"`
	Openers   map[string]openerDefinition `toml:"openers"`
}

func loadOpeners() (*openersFile, error) {
	var f openersFile
	if err := toml.Unmarshal(openersTOML, &f); err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}
	return &f, nil
}

type TypeDetector struct {
	image     kindConfig
	platforms map[string]platformConfig
}

func newTypeDetector(f *openersFile) *TypeDetector {
	return &TypeDetector{image: f.Kinds["image"], platforms: f.Platforms}
}

// DetectKind classifies a link by the extension of its last path segment,
// ignoring query and fragment, then by known image hosts.
func (d *TypeDetector) DetectKind(rawURL string) Kind {
	lower := strings.ToLower(rawURL)

	p := lower
	if u, err := url.Parse(lower); err == nil {
		p = u.Path
	}
	if ext := strings.TrimPrefix(path.Ext(p), "."); ext != "" && slices.Contains(d.image.Extensions, ext) {
		return KindImage
	}

	for _, pattern := range d.image.URLPatterns {
		if strings.Contains(lower, pattern) {
			return KindImage
		}
	}
	return KindPage
}

// DefaultOpener is the platform's generic "open this" command.
func (d *TypeDetector) DefaultOpener() string {
	if pc, ok := d.platforms[runtime.GOOS]; ok && pc.DefaultOpener != "" {
		return pc.DefaultOpener
	}
	if pc, ok := d.platforms["fallback"]; ok && pc.DefaultOpener != "" {
		return pc.DefaultOpener
	}
	return "open"
}
