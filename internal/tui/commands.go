package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/wikr/internal/feed"
	"github.com/pders01/wikr/internal/i18n"
)

const findLimit = 50

// wrapErr prefixes err with the action that failed.
func wrapErr(action string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", action, err)
}

func (a *App) openReader(article feed.Article) tea.Cmd {
	a.current = &article
	a.loadingArticle = true
	a.view = ViewReader
	return a.renderArticle(article)
}

func (a *App) renderArticle(article feed.Article) tea.Cmd {
	lang := a.lang()
	r, rendererErr := a.getRenderer()
	return func() tea.Msg {
		var content strings.Builder
		fmt.Fprintf(&content, "# %s\n\n", article.Title)

		if article.Extract != "" {
			content.WriteString(article.Extract)
			content.WriteString("\n\n")
		} else {
			content.WriteString("*" + i18n.T(lang, "noResults") + "*\n\n")
		}

		content.WriteString("---\n\n")
		fmt.Fprintf(&content, "[%s](%s)\n", article.Title, article.Permalink(lang))
		if article.HasThumbnail() {
			fmt.Fprintf(&content, "\n![%s](%s)\n", article.Title, article.Thumbnail)
		}

		if rendererErr != nil {
			return articleRenderedMsg{pageID: article.PageID, content: "Error initializing renderer: " + rendererErr.Error()}
		}

		rendered, err := r.Render(content.String())
		if err != nil {
			// Still clear the loading flag.
			return articleRenderedMsg{pageID: article.PageID, content: content.String()}
		}
		return articleRenderedMsg{pageID: article.PageID, content: rendered}
	}
}

func (a *App) performFind(query string) tea.Cmd {
	idx := a.index
	return func() tea.Msg {
		if idx == nil {
			return errorMsg{err: errors.New("find is unavailable")}
		}
		results, err := idx.Find(query, findLimit)
		if err != nil {
			return errorMsg{err: wrapErr("find", err)}
		}
		return findResultsMsg{query: query, results: results}
	}
}

// jumpTo selects the article with pageID in the feed list and returns to
// the feed view.
func (a *App) jumpTo(pageID int64) tea.Cmd {
	for i, item := range a.feedList.Items() {
		if ai, ok := item.(articleItem); ok && ai.article.PageID == pageID {
			a.feedList.Select(i)
			break
		}
	}
	a.view = ViewFeed
	a.clearStatus()
	return a.checkSentinel()
}

func (a *App) openLink(link string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.Open(link); err != nil {
			return errorMsg{err: wrapErr("open", err)}
		}
		return linkOpenedMsg{link: link}
	}
}

func (a *App) openPermalink(article feed.Article) tea.Cmd {
	return a.openLink(article.Permalink(a.lang()))
}

func (a *App) openThumbnail(article feed.Article) tea.Cmd {
	if !article.HasThumbnail() {
		a.setStatus(StatusWarn, i18n.T(a.lang(), "status.noThumbnail"))
		return nil
	}
	return a.openLink(article.Thumbnail)
}
