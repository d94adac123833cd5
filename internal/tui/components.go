package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/wikr/internal/feed"
	"github.com/pders01/wikr/internal/i18n"
	"github.com/pders01/wikr/internal/search"
)

// articleItem is one card in the feed list.
type articleItem struct {
	article    feed.Article
	maxExtract int
}

func (i articleItem) Title() string {
	if i.article.HasThumbnail() {
		return i.article.Title + " ▣"
	}
	return i.article.Title
}

func (i articleItem) Description() string {
	extract := strings.Join(strings.Fields(i.article.Extract), " ")
	if i.maxExtract > 0 {
		if r := []rune(extract); len(r) > i.maxExtract {
			extract = string(r[:i.maxExtract]) + "…"
		}
	}
	return extract
}

func (i articleItem) FilterValue() string { return i.article.Title }

// findItem is one row in the find view.
type findItem struct {
	result *search.Result
}

func (i findItem) Title() string { return i.result.Article.Title }

func (i findItem) Description() string {
	for _, m := range i.result.Matches {
		if m.Field == "extract" {
			return m.Text
		}
	}
	return strings.Join(strings.Fields(i.result.Article.Extract), " ")
}

func (i findItem) FilterValue() string { return i.result.Article.Title }

// renderTopicBar draws the app title, the topic tabs with the active one
// highlighted, and the language switch on the right. When the tabs do not
// fit, inactive tabs before the active one are dropped first, then tabs
// after it. The title is left out when it would crowd out the active tab.
func renderTopicBar(lang i18n.Language, active i18n.Topic, width int) string {
	toggle := LanguageStyle.Render(lang.ToggleLabel())
	budget := width - lipgloss.Width(toggle)

	topics := i18n.Topics()
	tabs := make([]string, len(topics))
	activeIdx := -1
	for i, t := range topics {
		style := TabStyle
		if t == active {
			style = ActiveTabStyle
			activeIdx = i
		}
		tabs[i] = style.Render(t.Label(lang))
	}

	title := TitleStyle.Render(i18n.T(lang, "appTitle"))
	need := 0
	if activeIdx >= 0 {
		need = lipgloss.Width(tabs[activeIdx])
	}
	if budget-lipgloss.Width(title) >= need {
		budget -= lipgloss.Width(title)
	} else {
		title = ""
	}

	first := 0
	if activeIdx >= 0 {
		used := 0
		for i := 0; i <= activeIdx; i++ {
			used += lipgloss.Width(tabs[i])
		}
		for first < activeIdx && used > budget {
			used -= lipgloss.Width(tabs[first])
			first++
		}
		if used > budget {
			label := truncateEnd(active.Label(lang), budget-lipgloss.Width(ActiveTabStyle.Render("")))
			tabs[activeIdx] = ActiveTabStyle.Render(label)
		}
	}

	var shown []string
	if title != "" {
		shown = append(shown, title)
	}
	used := 0
	for i := first; i < len(tabs); i++ {
		w := lipgloss.Width(tabs[i])
		if used+w > budget && i != activeIdx {
			if i > activeIdx {
				break
			}
			continue
		}
		shown = append(shown, tabs[i])
		used += w
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, shown...)
	gap := max(width-lipgloss.Width(bar)-lipgloss.Width(toggle), 0)
	return lipgloss.JoinHorizontal(lipgloss.Top, bar, strings.Repeat(" ", gap), toggle)
}

// renderHeader returns a consistently styled header with an optional muted subtitle.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-2)
	rows := []string{HeaderStyle.Render(title)}
	if subtitle != "" {
		rows = append(rows, renderMuted(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

func renderSeparator(width int) string {
	return SeparatorStyle.Render(strings.Repeat("─", max(width, 0)))
}
