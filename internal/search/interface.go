package search

import "github.com/pders01/wikr/internal/feed"

// Finder is the search API used by the TUI.
type Finder interface {
	Find(query string, limit int) ([]*Result, error)
}

// Indexer is fed every page the feed loads.
type Indexer interface {
	Index(articles []feed.Article) error
	Reset() error
}

// DocCounter reports index size for the status bar and debugging.
type DocCounter interface {
	DocCount() (int, error)
}
