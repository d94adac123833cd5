// Package i18n holds the bilingual UI dictionary and the fixed topic set.
package i18n

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed translations.toml
var translationsTOML []byte

// ErrMissingKey is returned when a dotted key does not resolve to a string.
var ErrMissingKey = errors.New("missing translation key")

type Language string

const (
	Chinese Language = "zh"
	English Language = "en"
)

// Languages lists the supported languages, default first.
func Languages() []Language {
	return []Language{Chinese, English}
}

func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Chinese:
		return Chinese, nil
	case English:
		return English, nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}

// Toggle returns the other language.
func (l Language) Toggle() Language {
	if l == English {
		return Chinese
	}
	return English
}

// Code is the language code used for the API subdomain and permalinks.
func (l Language) Code() string { return string(l) }

// ToggleLabel is the short label shown on the language switch.
func (l Language) ToggleLabel() string {
	if l == Chinese {
		return "EN"
	}
	return "中"
}

var dictionary map[string]any

func init() {
	d, err := decode(translationsTOML)
	if err != nil {
		panic(fmt.Sprintf("i18n: decoding embedded translations: %v", err))
	}
	dictionary = d
}

func decode(data []byte) (map[string]any, error) {
	var d map[string]any
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// Resolve walks the dictionary of lang along the dot-separated key.
func Resolve(lang Language, key string) (string, error) {
	return resolveIn(dictionary, lang, key)
}

func resolveIn(dict map[string]any, lang Language, key string) (string, error) {
	node, ok := dict[string(lang)]
	if !ok {
		return "", fmt.Errorf("%w: language %q", ErrMissingKey, lang)
	}
	for _, segment := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", fmt.Errorf("%w: %s.%s", ErrMissingKey, lang, key)
		}
		if node, ok = m[segment]; !ok {
			return "", fmt.Errorf("%w: %s.%s", ErrMissingKey, lang, key)
		}
	}
	s, ok := node.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s is not a string", ErrMissingKey, lang, key)
	}
	return s, nil
}

// T is Resolve for render code. A missing key renders as the key itself.
func T(lang Language, key string) string {
	s, err := Resolve(lang, key)
	if err != nil {
		return key
	}
	return s
}
