package feed

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pders01/wikr/internal/i18n"
)

// PageSize is the number of results requested per page.
const PageSize = 10

// Article is one page returned by the API. Immutable once decoded.
type Article struct {
	PageID    int64  `json:"pageid"`
	Title     string `json:"title"`
	Extract   string `json:"extract,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Permalink is the article URL on the given language's wiki.
func (a Article) Permalink(lang i18n.Language) string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", lang.Code(), url.PathEscape(strings.ReplaceAll(a.Title, " ", "_")))
}

func (a Article) HasThumbnail() bool { return a.Thumbnail != "" }
