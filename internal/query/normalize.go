// Package query maps what the user picked or typed to an API request shape.
package query

import (
	"fmt"
	"time"

	"github.com/pders01/wikr/internal/i18n"
)

type Mode int

const (
	// ModeSearch is an ordinary keyword search with offset pagination.
	ModeSearch Mode = iota
	// ModeMostViewed lists the most viewed pages. First page only.
	ModeMostViewed
	// ModeDateSearch searches for the current calendar day. First page only.
	ModeDateSearch
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeMostViewed:
		return "mostviewed"
	case ModeDateSearch:
		return "date"
	default:
		return "unknown"
	}
}

// Listing reports whether the mode bypasses offset pagination.
func (m Mode) Listing() bool {
	return m == ModeMostViewed || m == ModeDateSearch
}

const (
	FeaturedFallback  = "featured article"
	OnThisDayFallback = "historical events"
)

type Normalized struct {
	Mode Mode
	Term string
}

// Normalize resolves input (a topic label or raw query) for a first page
// or a continuation. Listing modes are only used for first pages; the
// continuations of those topics degrade to keyword search.
func Normalize(input string, continuation bool, now time.Time) Normalized {
	topic, _ := i18n.TopicForLabel(input)

	switch topic {
	case i18n.TopicFeatured:
		if !continuation {
			return Normalized{Mode: ModeMostViewed}
		}
		return Normalized{Mode: ModeSearch, Term: FeaturedFallback}
	case i18n.TopicOnThisDay:
		if !continuation {
			return Normalized{Mode: ModeDateSearch, Term: DateTerm(now)}
		}
		return Normalized{Mode: ModeSearch, Term: OnThisDayFallback}
	}

	return Normalized{Mode: ModeSearch, Term: input}
}

// DateTerm formats t as On_{month}_{day} without zero padding.
func DateTerm(t time.Time) string {
	return fmt.Sprintf("On_%d_%d", int(t.Month()), t.Day())
}
