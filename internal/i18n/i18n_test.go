package i18n

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		lang Language
		key  string
		want string
	}{
		{Chinese, "appTitle", "探索"},
		{English, "appTitle", "Explorer"},
		{Chinese, "topics.featured", "热门条目"},
		{English, "topics.onThisDay", "On This Day"},
		{English, "noResults", "No results found"},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang)+"/"+tt.key, func(t *testing.T) {
			got, err := Resolve(tt.lang, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMissing(t *testing.T) {
	for _, key := range []string{"nope", "topics.nope", "topics", "appTitle.extra", ""} {
		_, err := Resolve(English, key)
		assert.True(t, errors.Is(err, ErrMissingKey), "key %q should be missing", key)
	}

	_, err := Resolve(Language("fr"), "appTitle")
	assert.ErrorIs(t, err, ErrMissingKey)

	assert.Equal(t, "topics.nope", T(English, "topics.nope"))
}

func collectKeys(prefix string, node map[string]any, out *[]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			collectKeys(key, child, out)
			continue
		}
		*out = append(*out, key)
	}
}

func TestLanguagesShareKeySet(t *testing.T) {
	var zh, en []string
	collectKeys("", dictionary[string(Chinese)].(map[string]any), &zh)
	collectKeys("", dictionary[string(English)].(map[string]any), &en)
	sort.Strings(zh)
	sort.Strings(en)

	assert.Equal(t, zh, en)
	for _, key := range zh {
		_, err := Resolve(Chinese, key)
		assert.NoError(t, err)
	}
}

func TestLanguageHelpers(t *testing.T) {
	assert.Equal(t, English, Chinese.Toggle())
	assert.Equal(t, Chinese, English.Toggle())
	assert.Equal(t, "EN", Chinese.ToggleLabel())

	l, err := ParseLanguage(" EN ")
	require.NoError(t, err)
	assert.Equal(t, English, l)

	_, err = ParseLanguage("de")
	assert.Error(t, err)
}

func TestTopics(t *testing.T) {
	all := Topics()
	require.Len(t, all, 10)
	assert.Equal(t, TopicOnThisDay, all[0])

	for _, topic := range all {
		for _, lang := range Languages() {
			label := topic.Label(lang)
			assert.NotEqual(t, "topics."+string(topic), label)

			got, ok := TopicForLabel(label)
			assert.True(t, ok)
			assert.Equal(t, topic, got)
		}
	}

	_, ok := TopicForLabel("quantum chromodynamics")
	assert.False(t, ok)
	_, ok = TopicForLabel("")
	assert.False(t, ok)

	assert.Equal(t, TopicFeatured, TopicOnThisDay.Next(1))
	assert.Equal(t, TopicArchitecture, TopicOnThisDay.Next(-1))
	assert.Equal(t, TopicOnThisDay, TopicArchitecture.Next(1))

	p, ok := ParseTopic("sports")
	assert.True(t, ok)
	assert.Equal(t, TopicSports, p)
}
