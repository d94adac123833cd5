package feed

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/wikr/internal/config"
	"github.com/pders01/wikr/internal/debuglog"
	"github.com/pders01/wikr/internal/i18n"
	"github.com/pders01/wikr/internal/metrics"
	"github.com/pders01/wikr/internal/query"
)

// State is the feed session as the rendering surface sees it.
type State struct {
	Term      string
	Articles  []Article
	Offset    int
	Loading   bool
	HasMore   bool
	Language  i18n.Language
	SessionID string
	// Err is the most recent fetch failure of this session, if any.
	Err error
}

// Result is the outcome of executing a Request.
type Result struct {
	Request  Request
	Articles []Article
	Err      error
}

// Manager is the feed controller. It owns the session state and is not
// safe for concurrent use: Begin and Complete run on one goroutine (the
// UI loop), only Fetch may run elsewhere.
type Manager struct {
	fetcher      ArticleFetcher
	state        State
	token        uint64
	discardStale bool
	now          func() time.Time
	metrics      *metrics.Metrics
}

func NewManager(fetcher ArticleFetcher, cfg *config.Config) *Manager {
	lang, err := i18n.ParseLanguage(cfg.Feed.Language)
	if err != nil {
		lang = i18n.Chinese
	}

	m := &Manager{
		fetcher:      fetcher,
		discardStale: cfg.Feed.DiscardStale,
		now:          time.Now,
	}
	m.state.Language = lang
	m.Reset("")
	return m
}

func (m *Manager) SetMetrics(mt *metrics.Metrics) {
	m.metrics = mt
}

// SetClock overrides the clock used for date-based listings.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// State returns a snapshot. The Articles slice must not be modified.
func (m *Manager) State() State {
	return m.state
}

func (m *Manager) Language() i18n.Language {
	return m.state.Language
}

// SetLanguage switches the API subdomain for subsequent searches. It does
// not reset the session; callers decide whether to.
func (m *Manager) SetLanguage(lang i18n.Language) {
	m.state.Language = lang
}

// Reset starts a new session for term: results cleared, offset 0, hasMore
// true. With stale discarding on, any in-flight request is abandoned and
// releases the loading flag. Otherwise the old request keeps the flag until
// it completes and its result lands on the new session.
func (m *Manager) Reset(term string) {
	if m.discardStale {
		m.token++
		m.state.Loading = false
	}
	m.state.Term = term
	m.state.Articles = nil
	m.state.Offset = 0
	m.state.HasMore = true
	m.state.Err = nil
	m.state.SessionID = uuid.NewString()
	m.metrics.ObserveReset()

	debuglog.WithFields(map[string]any{"session": m.state.SessionID}).Debugf("session reset: %q", term)
}

// CanContinue reports whether a continuation load would be issued.
func (m *Manager) CanContinue() bool {
	return m.state.Term != "" && m.state.HasMore && !m.state.Loading
}

// Begin is the synchronous half of a load. It returns false, changing
// nothing, for an empty term and for a continuation that has nothing more
// to load or is already loading. Otherwise it marks the session loading and
// returns the request to execute.
func (m *Manager) Begin(term string, continuation bool) (Request, bool) {
	if term == "" {
		return Request{}, false
	}
	if continuation && (!m.state.HasMore || m.state.Loading) {
		return Request{}, false
	}

	offset := 0
	if continuation {
		offset = m.state.Offset
	} else {
		m.state.Term = term
	}

	n := query.Normalize(term, continuation, m.now())

	m.token++
	m.state.Loading = true

	req := Request{
		Input:        term,
		Mode:         n.Mode,
		Term:         n.Term,
		Offset:       offset,
		Language:     m.state.Language,
		Continuation: continuation,
		Token:        m.token,
		Session:      m.state.SessionID,
	}

	debuglog.WithFields(map[string]any{
		"session": req.Session,
		"token":   req.Token,
		"mode":    req.Mode.String(),
	}).Infof("load %q (term %q, offset %d, continuation %v)", term, req.Term, offset, continuation)

	return req, true
}

// Fetch executes req. It does not touch the state, so it may run on any
// goroutine.
func (m *Manager) Fetch(ctx context.Context, req Request) Result {
	articles, err := m.fetcher.Fetch(ctx, req)
	return Result{Request: req, Articles: articles, Err: err}
}

// Complete applies a finished request. It reports whether the result was
// applied; a superseded result is dropped when stale discarding is on.
func (m *Manager) Complete(res Result) bool {
	log := debuglog.WithFields(map[string]any{
		"session": res.Request.Session,
		"token":   res.Request.Token,
	})

	if res.Request.Token != m.token && m.discardStale {
		m.metrics.ObserveStale()
		log.Debugf("discarding stale response (latest token %d)", m.token)
		return false
	}

	m.state.Loading = false

	if res.Err != nil {
		m.state.Err = res.Err
		log.Errorf("error fetching articles: %v", res.Err)
		return true
	}

	if res.Request.Continuation {
		m.state.Articles = append(m.state.Articles, res.Articles...)
		m.state.Offset += PageSize
	} else {
		m.state.Articles = res.Articles
		m.state.Offset = PageSize
	}
	m.state.HasMore = len(res.Articles) == PageSize
	m.state.Err = nil

	log.Infof("loaded %d articles (total %d, offset %d, hasMore %v)",
		len(res.Articles), len(m.state.Articles), m.state.Offset, m.state.HasMore)
	return true
}

// Load runs Begin, Fetch and Complete in one go. It returns the fetch error,
// which has already been recorded on the state; a no-op load returns nil.
func (m *Manager) Load(ctx context.Context, term string, continuation bool) error {
	req, ok := m.Begin(term, continuation)
	if !ok {
		return nil
	}
	res := m.Fetch(ctx, req)
	m.Complete(res)
	return res.Err
}
