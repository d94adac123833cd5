package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pders01/wikr/internal/i18n"
)

func TestNormalize(t *testing.T) {
	march5 := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name         string
		input        string
		continuation bool
		want         Normalized
	}{
		{
			name:  "featured first page uses most viewed listing",
			input: "热门条目",
			want:  Normalized{Mode: ModeMostViewed},
		},
		{
			name:  "english featured label is recognised",
			input: "Featured Articles",
			want:  Normalized{Mode: ModeMostViewed},
		},
		{
			name:         "featured continuation degrades to keyword search",
			input:        "热门条目",
			continuation: true,
			want:         Normalized{Mode: ModeSearch, Term: "featured article"},
		},
		{
			name:  "on this day first page builds date term",
			input: "那年今日",
			want:  Normalized{Mode: ModeDateSearch, Term: "On_3_5"},
		},
		{
			name:         "on this day continuation",
			input:        "On This Day",
			continuation: true,
			want:         Normalized{Mode: ModeSearch, Term: "historical events"},
		},
		{
			name:  "plain topic passes through",
			input: "科学技术",
			want:  Normalized{Mode: ModeSearch, Term: "科学技术"},
		},
		{
			name:         "raw query passes through",
			input:        "golang",
			continuation: true,
			want:         Normalized{Mode: ModeSearch, Term: "golang"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input, tt.continuation, march5)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCoversEveryTopicLabel(t *testing.T) {
	now := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	for _, topic := range i18n.Topics() {
		for _, lang := range i18n.Languages() {
			got := Normalize(topic.Label(lang), true, now)
			assert.Equal(t, ModeSearch, got.Mode, "continuations are always keyword searches")
			assert.NotEmpty(t, got.Term)
		}
	}
}

func TestDateTerm(t *testing.T) {
	assert.Equal(t, "On_12_31", DateTerm(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "On_1_1", DateTerm(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestModeListing(t *testing.T) {
	assert.False(t, ModeSearch.Listing())
	assert.True(t, ModeMostViewed.Listing())
	assert.True(t, ModeDateSearch.Listing())
	assert.Equal(t, "mostviewed", ModeMostViewed.String())
}
