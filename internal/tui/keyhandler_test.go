package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/wikr/internal/config"
	"github.com/pders01/wikr/internal/i18n"
)

func TestKeyHandler_ModifierKey(t *testing.T) {
	cfg := config.TestConfig()
	app := NewApp(cfg, &stubFetcher{})
	defer app.Close()

	assert.NotNil(t, app.keyHandler)
	assert.Equal(t, "ctrl+", app.keyHandler.modifierKey)
	assert.Equal(t, "ctrl+f", app.keyHandler.findKey())
}

func TestKeyHandler_CustomModifier(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Modifier = "alt"
	app := NewApp(cfg, &stubFetcher{})
	defer app.Close()

	assert.Equal(t, "alt+f", app.keyHandler.findKey())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f"), Alt: true})
	assert.Nil(t, cmd)
	assert.Equal(t, ViewFind, app.view)
}

func TestKeyHandler_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, 0)
			_, cmd := app.Update(tt.msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestKeyHandler_QuitKeyIsTextWhileTyping(t *testing.T) {
	app, _ := newTestApp(t, 0)
	resize(t, app, 100, 20)

	press(app, "/")
	press(app, "q")

	assert.Equal(t, "q", app.searchInput.Value())
	assert.Equal(t, "q", app.pendingQuery)
}

func TestKeyHandler_EscapeBlursSearch(t *testing.T) {
	app, _ := newTestApp(t, 0)
	resize(t, app, 100, 20)

	press(app, "/")
	require.True(t, app.searchInput.Focused())

	press(app, "esc")
	assert.False(t, app.searchInput.Focused())
	assert.Equal(t, ViewFeed, app.view)
}

func TestKeyHandler_ViewTransitions(t *testing.T) {
	tests := []struct {
		name         string
		initialView  View
		key          string
		expectedView View
	}{
		{"feed to find", ViewFeed, "ctrl+f", ViewFind},
		{"reader to find", ViewReader, "ctrl+f", ViewFind},
		{"find back to feed", ViewFind, "esc", ViewFeed},
		{"reader back to feed", ViewReader, "esc", ViewFeed},
		{"feed stays on escape", ViewFeed, "esc", ViewFeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, 0)
			resize(t, app, 100, 20)
			app.view = tt.initialView

			press(app, tt.key)
			assert.Equal(t, tt.expectedView, app.view)
		})
	}
}

func TestKeyHandler_FindFocusMovesToList(t *testing.T) {
	app, _ := newTestApp(t, 10)
	resize(t, app, 100, 40)
	drain(t, app, app.submitQuery("castle"))

	press(app, "ctrl+f")
	app.findInput.SetValue("Article")
	drain(t, app, app.performFind("Article"))
	require.NotEmpty(t, app.findList.Items())

	press(app, "down")
	assert.False(t, app.findInput.Focused())
	assert.Equal(t, 0, app.findList.Index())

	press(app, "up")
	assert.True(t, app.findInput.Focused())
}

func TestKeyHandler_CurrentTopicAfterQuery(t *testing.T) {
	app, _ := newTestApp(t, 0)
	app.topic = ""

	assert.Equal(t, i18n.Topics()[0], app.keyHandler.currentTopic().Next(1))
}

func TestKeyHandler_HelpFollowsLanguage(t *testing.T) {
	app, _ := newTestApp(t, 0)

	zh := strings.Join(app.keyHandler.GetHelpForCurrentView(), " ")
	assert.Contains(t, zh, "tab: 切换分类")
	assert.Contains(t, zh, "ctrl+f: 查找")
	assert.Contains(t, zh, "L: English")

	app.manager.SetLanguage(i18n.English)
	en := strings.Join(app.keyHandler.GetHelpForCurrentView(), " ")
	assert.Contains(t, en, "q: quit")
	assert.Contains(t, en, "L: 中文")
}

func TestKeyHandler_HelpPerView(t *testing.T) {
	app, _ := newTestApp(t, 0)

	app.view = ViewReader
	assert.Len(t, app.keyHandler.GetHelpForCurrentView(), 4)

	app.view = ViewFind
	assert.Equal(t, []string{"enter: 跳转", "esc: 返回"}, app.keyHandler.GetHelpForCurrentView())

	app.view = ViewFeed
	app.searchInput.Focus()
	assert.Equal(t, []string{"enter: 搜索", "esc: 返回"}, app.keyHandler.GetHelpForCurrentView())
}
