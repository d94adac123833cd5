package tui

import (
	"github.com/pders01/wikr/internal/feed"
	"github.com/pders01/wikr/internal/search"
)

type View int

const (
	ViewFeed View = iota
	ViewReader
	ViewFind
)

func (v View) String() string {
	switch v {
	case ViewReader:
		return "reader"
	case ViewFind:
		return "find"
	default:
		return "feed"
	}
}

// feedLoadedMsg carries a finished fetch back to the UI loop.
type feedLoadedMsg struct {
	result feed.Result
}

// searchDebounceFireMsg fires after the debounce delay; only the latest
// seq triggers a search.
type searchDebounceFireMsg struct {
	seq int
}

type articleRenderedMsg struct {
	pageID  int64
	content string
}

type findResultsMsg struct {
	query   string
	results []*search.Result
}

type linkOpenedMsg struct {
	link string
}

type errorMsg struct {
	err error
}
