package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/wikr/internal/config"
	"github.com/pders01/wikr/internal/i18n"
)

type KeyHandler struct {
	app         *App
	keys        config.KeyBindings
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, keys: cfg.Keys.Bindings, modifierKey: cfg.Keys.Modifier + "+"}
}

func (kh *KeyHandler) findKey() string {
	return kh.modifierKey + kh.keys.Find
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return kh.app, tea.Quit
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewFeed:
		return kh.app.searchInput.Focused()
	case ViewFind:
		return kh.app.findInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case kh.keys.Back:
		if kh.app.view == ViewFind {
			return kh.navigateBack()
		}
		kh.app.searchInput.Blur()
		return kh.app, nil
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		if kh.app.view == ViewFind {
			if len(kh.app.findList.Items()) > 0 {
				kh.app.findInput.Blur()
				kh.app.findList.Select(0)
			}
			return kh.app, nil
		}
		kh.app.searchInput.Blur()
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewFeed:
		// Submit now and drop any pending debounce.
		kh.app.searchSeq++
		kh.app.searchInput.Blur()
		return kh.app, kh.app.submitQuery(kh.app.searchInput.Value())

	case ViewFind:
		if items := kh.app.findList.Items(); len(items) > 0 {
			if i, ok := items[0].(findItem); ok {
				return kh.app, kh.app.jumpTo(i.result.Article.PageID)
			}
		}
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

// delegateToTextInput passes the key to the focused text input
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewFeed:
		prev := sanitizeQuery(kh.app.searchInput.Value())
		newSearchInput, cmd := kh.app.searchInput.Update(msg)
		kh.app.searchInput = newSearchInput

		newVal := sanitizeQuery(kh.app.searchInput.Value())
		if newVal != prev {
			kh.app.pendingQuery = newVal
			kh.app.searchSeq++
			seq := kh.app.searchSeq
			return kh.app, tea.Batch(cmd, tea.Tick(kh.app.debounce, func(time.Time) tea.Msg {
				return searchDebounceFireMsg{seq: seq}
			}))
		}
		return kh.app, cmd

	case ViewFind:
		prev := sanitizeQuery(kh.app.findInput.Value())
		newFindInput, cmd := kh.app.findInput.Update(msg)
		kh.app.findInput = newFindInput

		newVal := sanitizeQuery(kh.app.findInput.Value())
		if newVal == prev {
			return kh.app, cmd
		}
		if newVal == "" {
			kh.app.clearStatus()
			return kh.app, tea.Batch(cmd, kh.app.findList.SetItems([]list.Item{}))
		}
		return kh.app, tea.Batch(cmd, kh.app.performFind(newVal))

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.keys.Quit:
		return kh.app, tea.Quit, true
	case kh.keys.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.findKey():
		if kh.app.view != ViewFind {
			model, cmd := kh.enterFindMode()
			return model, cmd, true
		}
	}

	switch kh.app.view {
	case ViewFeed:
		return kh.handleFeedCustomKeys(key)
	case ViewReader:
		return kh.handleReaderCustomKeys(key)
	case ViewFind:
		return kh.handleFindCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleFeedCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app

	switch key {
	case kh.keys.Search:
		app.searchInput.Focus()
		return app, nil, true
	case kh.keys.NextTopic:
		return app, app.selectTopic(kh.currentTopic().Next(1)), true
	case kh.keys.PrevTopic:
		return app, app.selectTopic(kh.currentTopic().Next(-1)), true
	case kh.keys.ToggleLanguage:
		return app, app.toggleLanguage(), true
	case kh.keys.Reload:
		return app, app.reload(), true
	case kh.keys.OpenBrowser:
		if article, ok := app.selectedArticle(); ok {
			return app, app.openPermalink(article), true
		}
		return app, nil, true
	case kh.keys.OpenImage:
		if article, ok := app.selectedArticle(); ok {
			return app, app.openThumbnail(article), true
		}
		return app, nil, true
	case "enter":
		if article, ok := app.selectedArticle(); ok {
			return app, app.openReader(article), true
		}
		return app, nil, true
	}
	return app, nil, false
}

func (kh *KeyHandler) handleReaderCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	if app.current == nil {
		return app, nil, false
	}

	switch key {
	case kh.keys.OpenBrowser:
		return app, app.openPermalink(*app.current), true
	case kh.keys.OpenImage:
		return app, app.openThumbnail(*app.current), true
	}
	return app, nil, false
}

func (kh *KeyHandler) handleFindCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app

	switch key {
	case kh.keys.Search, "tab", "shift+tab":
		app.findInput.Focus()
		return app, nil, true
	case "enter":
		if i, ok := app.findList.SelectedItem().(findItem); ok {
			return app, app.jumpTo(i.result.Article.PageID), true
		}
		return app, nil, true
	}
	return app, nil, false
}

// currentTopic is the topic tab cycling starts from. A typed query cycles
// from the first topic.
func (kh *KeyHandler) currentTopic() i18n.Topic {
	if kh.app.topic == "" {
		return i18n.Topics()[len(i18n.Topics())-1]
	}
	return kh.app.topic
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewFeed:
		kh.app.feedList, cmd = kh.app.feedList.Update(msg)
		return kh.app, tea.Batch(cmd, kh.app.checkSentinel())

	case ViewReader:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	case ViewFind:
		if msg.String() == "up" && kh.app.findList.Index() == 0 {
			kh.app.findInput.Focus()
			return kh.app, nil
		}
		kh.app.findList, cmd = kh.app.findList.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// navigateBack returns to the feed from the reader or the find view.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewReader:
		kh.app.view = ViewFeed
		kh.app.current = nil
		kh.app.loadingArticle = false
		return kh.app, kh.app.checkSentinel()

	case ViewFind:
		kh.app.view = ViewFeed
		kh.app.findInput.Reset()
		kh.app.findInput.Blur()
		kh.app.findList.SetItems([]list.Item{})
		kh.app.clearStatus()
		return kh.app, kh.app.checkSentinel()

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) enterFindMode() (tea.Model, tea.Cmd) {
	kh.app.view = ViewFind
	kh.app.findInput.Reset()
	kh.app.findInput.Focus()
	kh.app.findList.SetItems([]list.Item{})

	if kh.app.index != nil {
		if n, err := kh.app.index.DocCount(); err == nil {
			kh.app.setStatus(StatusInfo, msgArticleCount(kh.app.lang(), n))
		}
	}
	return kh.app, nil
}

// GetHelpForCurrentView returns the key hints for the status line.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	lang := kh.app.lang()
	hint := func(key, verb string) string {
		return key + ": " + i18n.T(lang, "help."+verb)
	}

	switch kh.app.view {
	case ViewFeed:
		if kh.app.searchInput.Focused() {
			return []string{hint("enter", "search"), hint(kh.keys.Back, "back")}
		}
		return []string{
			hint(kh.keys.NextTopic, "topics"),
			hint(kh.keys.Search, "search"),
			hint("enter", "read"),
			hint(kh.keys.OpenBrowser, "open"),
			hint(kh.keys.OpenImage, "image"),
			hint(kh.findKey(), "find"),
			hint(kh.keys.ToggleLanguage, "language"),
			hint(kh.keys.Reload, "reload"),
			hint(kh.keys.Quit, "quit"),
		}

	case ViewReader:
		return []string{
			hint(kh.keys.OpenBrowser, "open"),
			hint(kh.keys.OpenImage, "image"),
			hint(kh.findKey(), "find"),
			hint(kh.keys.Back, "back"),
		}

	case ViewFind:
		return []string{hint("enter", "jump"), hint(kh.keys.Back, "back")}

	default:
		return []string{}
	}
}
