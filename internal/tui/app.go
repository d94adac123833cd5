package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/wikr/internal/config"
	"github.com/pders01/wikr/internal/debuglog"
	"github.com/pders01/wikr/internal/feed"
	"github.com/pders01/wikr/internal/i18n"
	"github.com/pders01/wikr/internal/media"
	"github.com/pders01/wikr/internal/metrics"
	"github.com/pders01/wikr/internal/search"
)

// chrome is the number of lines around the feed list: topic bar, bordered
// search box, separator, status line and help line.
const chrome = 7

type App struct {
	config     *config.Config
	manager    *feed.Manager
	index      *search.Index
	launcher   *media.Launcher
	keyHandler *KeyHandler

	feedList    list.Model
	findList    list.Model
	searchInput textinput.Model
	findInput   textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model

	view     View
	topic    i18n.Topic // empty while a typed query is shown
	sentinel feed.Sentinel
	current  *feed.Article

	searchSeq    int
	pendingQuery string
	debounce     time.Duration

	status status
	width  int
	height int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	loadingArticle  bool
}

func NewApp(cfg *config.Config, fetcher feed.ArticleFetcher) *App {
	feedList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	feedList.SetShowStatusBar(false)
	feedList.SetFilteringEnabled(false)
	feedList.SetShowHelp(false)

	findList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	findList.SetShowTitle(false)
	findList.SetShowStatusBar(false)
	findList.SetFilteringEnabled(false)
	findList.SetShowHelp(false)

	manager := feed.NewManager(fetcher, cfg)
	lang := manager.Language()

	si := textinput.New()
	si.Placeholder = i18n.T(lang, "searchPlaceholder")
	si.CharLimit = 256

	fi := textinput.New()
	fi.Placeholder = i18n.T(lang, "status.find")
	fi.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	topic, ok := i18n.ParseTopic(cfg.Feed.DefaultTopic)
	if !ok {
		topic = i18n.TopicOnThisDay
	}

	debounce := cfg.Feed.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	idx, err := search.NewIndex()
	if err != nil {
		debuglog.Warnf("find disabled: %v", err)
	}

	app := &App{
		config:      cfg,
		manager:     manager,
		index:       idx,
		launcher:    media.NewLauncher(cfg),
		feedList:    feedList,
		findList:    findList,
		searchInput: si,
		findInput:   fi,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		view:        ViewFeed,
		topic:       topic,
		debounce:    debounce,
	}
	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

// SetMetrics attaches collectors to the feed controller.
func (a *App) SetMetrics(m *metrics.Metrics) {
	a.manager.SetMetrics(m)
}

// Close releases the find index.
func (a *App) Close() error {
	if a.index == nil {
		return nil
	}
	return a.index.Close()
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Article.WordWrapMaxWidth
	minWidth := a.config.UI.Article.WordWrapMinWidth

	wordWrapWidth := (a.width * 9) / 10
	if maxWidth > 0 && wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		a.spinner.Tick,
		a.selectTopic(a.topic),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		cmds = append(cmds, a.checkSentinel())

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case feedLoadedMsg:
		cmds = append(cmds, a.applyResult(msg.result))

	case searchDebounceFireMsg:
		if msg.seq == a.searchSeq {
			cmds = append(cmds, a.submitQuery(a.pendingQuery))
		}

	case articleRenderedMsg:
		if a.view == ViewReader && a.current != nil && a.current.PageID == msg.pageID {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingArticle = false
		}

	case findResultsMsg:
		if a.view == ViewFind && msg.query == sanitizeQuery(a.findInput.Value()) {
			items := make([]list.Item, len(msg.results))
			for i, r := range msg.results {
				items[i] = findItem{result: r}
			}
			cmds = append(cmds, a.findList.SetItems(items))
			a.setStatus(StatusInfo, msgFindResults(len(msg.results)))
		}

	case linkOpenedMsg:
		a.setStatus(StatusSuccess, i18n.T(a.lang(), "status.opening")+" "+truncateMiddle(msg.link, 60))

	case errorMsg:
		a.setStatus(StatusError, msg.err.Error())

	case tea.MouseMsg:
		if a.view == ViewReader {
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	listHeight := max(height-chrome, 3)
	a.feedList.SetSize(width, listHeight)
	a.findList.SetSize(width, max(height-chrome-1, 3))
	a.viewport.Width = width
	a.viewport.Height = max(height-4, 1)

	inputWidth := max(width-8, 10)
	a.searchInput.Width = inputWidth
	a.findInput.Width = inputWidth
}

func (a *App) lang() i18n.Language {
	return a.manager.Language()
}

// selectTopic starts a new session for topic t in the current language.
func (a *App) selectTopic(t i18n.Topic) tea.Cmd {
	a.topic = t
	a.searchInput.SetValue("")
	a.pendingQuery = ""
	return a.startSession(t.Label(a.lang()))
}

// submitQuery runs a typed query. A query that is a topic label selects
// that topic.
func (a *App) submitQuery(q string) tea.Cmd {
	q = sanitizeQuery(q)
	if q == "" {
		return nil
	}
	if t, ok := i18n.TopicForLabel(q); ok {
		a.topic = t
		return a.startSession(t.Label(a.lang()))
	}
	// A failed or empty session is worth retrying.
	if st := a.manager.State(); a.topic == "" && q == st.Term && st.Err == nil && len(st.Articles) > 0 {
		return nil
	}
	a.topic = ""
	return a.startSession(q)
}

// startSession clears the feed and issues the first page for term.
func (a *App) startSession(term string) tea.Cmd {
	a.manager.Reset(term)
	if a.index != nil {
		if err := a.index.Reset(); err != nil {
			debuglog.Warnf("resetting find index: %v", err)
		}
	}
	a.sentinel.Observe(0, 0)
	a.feedList.ResetSelected()
	a.feedList.Title = term
	a.clearStatus()

	return tea.Batch(a.feedList.SetItems(nil), a.load(term, false))
}

// reload restarts the current session, e.g. after a failure.
func (a *App) reload() tea.Cmd {
	if a.topic != "" {
		return a.selectTopic(a.topic)
	}
	term := a.manager.State().Term
	if term == "" {
		return a.selectTopic(i18n.TopicOnThisDay)
	}
	return a.startSession(term)
}

// toggleLanguage relabels the UI, switches the API subdomain and reloads
// the current topic or query.
func (a *App) toggleLanguage() tea.Cmd {
	lang := a.lang().Toggle()
	a.manager.SetLanguage(lang)
	a.searchInput.Placeholder = i18n.T(lang, "searchPlaceholder")
	a.findInput.Placeholder = i18n.T(lang, "status.find")
	debuglog.Infof("language switched to %s", lang)
	return a.reload()
}

func (a *App) load(term string, continuation bool) tea.Cmd {
	req, ok := a.manager.Begin(term, continuation)
	if !ok {
		return nil
	}
	return a.fetchCmd(req)
}

func (a *App) fetchCmd(req feed.Request) tea.Cmd {
	m := a.manager
	return func() tea.Msg {
		return feedLoadedMsg{result: m.Fetch(context.Background(), req)}
	}
}

func (a *App) applyResult(res feed.Result) tea.Cmd {
	if !a.manager.Complete(res) {
		return nil
	}

	if res.Err != nil {
		a.setStatus(StatusError, msgFetchFailed(a.lang(), res.Err))
		return a.syncFeed()
	}

	if a.index != nil {
		if err := a.index.Index(res.Articles); err != nil {
			debuglog.Warnf("indexing articles: %v", err)
		}
	}
	a.clearStatus()
	return a.syncFeed()
}

// syncFeed mirrors the controller state into the list and re-checks the
// scroll sentinel.
func (a *App) syncFeed() tea.Cmd {
	st := a.manager.State()
	maxExtract := a.config.UI.Article.MaxExtractLength

	items := make([]list.Item, len(st.Articles))
	for i, art := range st.Articles {
		items[i] = articleItem{article: art, maxExtract: maxExtract}
	}
	cmd := a.feedList.SetItems(items)
	return tea.Batch(cmd, a.checkSentinel())
}

// lastCardVisible reports whether the last article is on the list page
// currently shown.
func (a *App) lastCardVisible() bool {
	n := len(a.feedList.Items())
	if n == 0 {
		return false
	}
	_, end := a.feedList.Paginator.GetSliceBounds(n)
	return end == n
}

// checkSentinel issues a continuation when the last card scrolls into view.
func (a *App) checkSentinel() tea.Cmd {
	st := a.manager.State()
	if n := len(st.Articles); n > 0 {
		a.sentinel.Observe(n, st.Articles[n-1].PageID)
	} else {
		a.sentinel.Observe(0, 0)
	}

	if a.view != ViewFeed {
		return nil
	}
	if !a.sentinel.Check(a.lastCardVisible(), a.manager.CanContinue()) {
		return nil
	}
	return a.load(st.Term, true)
}

func (a *App) selectedArticle() (feed.Article, bool) {
	item, ok := a.feedList.SelectedItem().(articleItem)
	if !ok {
		return feed.Article{}, false
	}
	return item.article, true
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewFeed:
		content = a.feedView()
	case ViewReader:
		content = a.readerView()
	case ViewFind:
		content = a.findView()
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		content,
		renderSeparator(a.width),
		a.statusBar(),
		renderHelp(truncateEnd(strings.Join(a.keyHandler.GetHelpForCurrentView(), " • "), a.width)),
	)
}

func (a *App) feedView() string {
	lang := a.lang()
	st := a.manager.State()

	bar := renderTopicBar(lang, a.topic, a.width)
	box := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)

	var body string
	listHeight := max(a.height-chrome, 3)
	switch {
	case len(st.Articles) > 0:
		body = a.feedList.View()
	case st.Loading:
		body = renderCentered(a.width, listHeight, a.spinner.View()+" "+i18n.T(lang, "status.loading"))
	case st.Err != nil:
		body = renderCentered(a.width, listHeight, GetCompactBanner(msgFetchFailed(lang, st.Err)))
	default:
		body = renderCentered(a.width, listHeight, GetCompactBanner(i18n.T(lang, "noResults")))
	}

	return lipgloss.JoinVertical(lipgloss.Top, bar, box, body)
}

func (a *App) readerView() string {
	title := ""
	subtitle := ""
	if a.current != nil {
		title = a.current.Title
		subtitle = a.current.Permalink(a.lang())
	}
	header := renderHeader(title, truncateMiddle(subtitle, a.width-2), a.width)

	if a.loadingArticle {
		return lipgloss.JoinVertical(lipgloss.Top, header,
			renderCentered(a.width, max(a.height-6, 1), a.spinner.View()+" "+i18n.T(a.lang(), "status.loading")))
	}
	return lipgloss.JoinVertical(lipgloss.Top, header, a.viewport.View())
}

func (a *App) findView() string {
	lang := a.lang()
	header := renderHeader("› "+i18n.T(lang, "status.find"), a.manager.State().Term, a.width)
	box := renderInputFrame(a.findInput.View(), a.findInput.Focused(), a.findInput.Width)

	body := a.findList.View()
	if len(a.findList.Items()) == 0 && sanitizeQuery(a.findInput.Value()) != "" {
		body = renderCentered(a.width, max(a.height-chrome-1, 3), renderMuted(i18n.T(lang, "noResults")))
	}
	return lipgloss.JoinVertical(lipgloss.Top, header, box, body)
}

func (a *App) statusBar() string {
	lang := a.lang()
	st := a.manager.State()

	left := a.status.text
	kind := a.status.kind
	if left == "" {
		left = msgArticleCount(lang, len(st.Articles))
		kind = StatusInfo
	}

	var right string
	switch {
	case st.Loading:
		right = a.spinner.View() + " " + i18n.T(lang, "status.loading")
	case !st.HasMore && len(st.Articles) > 0:
		right = i18n.T(lang, "status.end")
	}

	gap := max(a.width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	line := kind.style().Render(left) + strings.Repeat(" ", gap) + StatusInfoStyle.Render(right)
	return StatusBarStyle.Width(a.width).MaxWidth(a.width).Render(line)
}
