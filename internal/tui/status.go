package tui

import (
	"fmt"

	"github.com/pders01/wikr/internal/feed"
	"github.com/pders01/wikr/internal/i18n"
)

// status is the transient message shown in the status bar.
type status struct {
	text string
	kind StatusKind
}

func (a *App) setStatus(kind StatusKind, text string) {
	a.status = status{text: text, kind: kind}
}

func (a *App) clearStatus() {
	a.status = status{}
}

// msgArticleCount renders "12 篇" or "12 articles".
func msgArticleCount(lang i18n.Language, n int) string {
	return fmt.Sprintf("%d %s", n, i18n.T(lang, "status.articles"))
}

// msgFetchFailed is the status text for a failed load.
func msgFetchFailed(lang i18n.Language, err error) string {
	reason := err.Error()
	if fe, ok := err.(*feed.FetchError); ok && fe.Status != 0 {
		reason = fmt.Sprintf("HTTP %d", fe.Status)
	}
	return fmt.Sprintf("%s: %s", i18n.T(lang, "status.error"), reason)
}

func msgFindResults(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}
