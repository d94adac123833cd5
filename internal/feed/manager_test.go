package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/wikr/internal/config"
	"github.com/pders01/wikr/internal/i18n"
	"github.com/pders01/wikr/internal/metrics"
	"github.com/pders01/wikr/internal/query"
)

type fakeFetcher struct {
	mu       sync.Mutex
	requests []Request
	pages    int
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context, req Request) ([]Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return makeArticles(req.Offset, f.pages), nil
}

func (f *fakeFetcher) calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func makeArticles(start, n int) []Article {
	articles := make([]Article, n)
	for i := range articles {
		id := int64(start + i + 1)
		articles[i] = Article{PageID: id, Title: fmt.Sprintf("Article %d", id)}
	}
	return articles
}

func newTestManager(f ArticleFetcher) *Manager {
	m := NewManager(f, config.TestConfig())
	m.SetClock(func() time.Time { return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC) })
	return m
}

func TestManager_InitialState(t *testing.T) {
	m := newTestManager(&fakeFetcher{})
	s := m.State()

	assert.Empty(t, s.Term)
	assert.Empty(t, s.Articles)
	assert.Equal(t, 0, s.Offset)
	assert.True(t, s.HasMore)
	assert.False(t, s.Loading)
	assert.Equal(t, i18n.Chinese, s.Language)
	assert.NotEmpty(t, s.SessionID)
}

func TestManager_FullPageKeepsGoing(t *testing.T) {
	f := &fakeFetcher{pages: PageSize}
	m := newTestManager(f)

	require.NoError(t, m.Load(context.Background(), "Physics", false))
	s := m.State()
	assert.Len(t, s.Articles, PageSize)
	assert.Equal(t, PageSize, s.Offset)
	assert.True(t, s.HasMore)
	assert.False(t, s.Loading)

	require.NoError(t, m.Load(context.Background(), "Physics", true))
	s = m.State()
	assert.Len(t, s.Articles, 2*PageSize)
	assert.Equal(t, 2*PageSize, s.Offset)
	assert.Equal(t, int64(1), s.Articles[0].PageID)
	assert.Equal(t, int64(2*PageSize), s.Articles[2*PageSize-1].PageID)

	calls := f.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 0, calls[0].Offset)
	assert.Equal(t, PageSize, calls[1].Offset)
	assert.True(t, calls[1].Continuation)
}

func TestManager_ShortPageEndsFeed(t *testing.T) {
	f := &fakeFetcher{pages: 7}
	m := newTestManager(f)

	require.NoError(t, m.Load(context.Background(), "Physics", false))
	s := m.State()
	assert.Len(t, s.Articles, 7)
	assert.False(t, s.HasMore)
	assert.False(t, m.CanContinue())

	// A continuation at the end of the feed issues nothing.
	require.NoError(t, m.Load(context.Background(), "Physics", true))
	assert.Len(t, f.calls(), 1)
	assert.Len(t, m.State().Articles, 7)
}

func TestManager_EmptyResult(t *testing.T) {
	m := newTestManager(&fakeFetcher{pages: 0})

	require.NoError(t, m.Load(context.Background(), "xyzzy", false))
	s := m.State()
	assert.Empty(t, s.Articles)
	assert.False(t, s.HasMore)
	assert.Equal(t, PageSize, s.Offset)
}

func TestManager_EmptyTermIsNoop(t *testing.T) {
	f := &fakeFetcher{pages: PageSize}
	m := newTestManager(f)
	before := m.State()

	_, ok := m.Begin("", false)
	assert.False(t, ok)
	_, ok = m.Begin("", true)
	assert.False(t, ok)

	assert.Empty(t, f.calls())
	assert.Equal(t, before, m.State())
}

func TestManager_FailureKeepsState(t *testing.T) {
	f := &fakeFetcher{pages: PageSize}
	m := newTestManager(f)
	require.NoError(t, m.Load(context.Background(), "Physics", false))

	f.err = &FetchError{Op: "status", Status: 503, Err: errors.New("unavailable")}
	err := m.Load(context.Background(), "Physics", true)
	require.Error(t, err)

	s := m.State()
	assert.Len(t, s.Articles, PageSize)
	assert.Equal(t, PageSize, s.Offset)
	assert.True(t, s.HasMore)
	assert.False(t, s.Loading)
	assert.Equal(t, err, s.Err)

	// Recovery clears the error.
	f.err = nil
	require.NoError(t, m.Load(context.Background(), "Physics", true))
	s = m.State()
	assert.Len(t, s.Articles, 2*PageSize)
	assert.NoError(t, s.Err)
}

func TestManager_TopicSwitchResets(t *testing.T) {
	f := &fakeFetcher{pages: PageSize}
	m := newTestManager(f)
	require.NoError(t, m.Load(context.Background(), "科学技术", false))
	require.NoError(t, m.Load(context.Background(), "科学技术", true))
	oldSession := m.State().SessionID

	m.Reset("文化艺术")
	s := m.State()
	assert.Equal(t, "文化艺术", s.Term)
	assert.Empty(t, s.Articles)
	assert.Equal(t, 0, s.Offset)
	assert.True(t, s.HasMore)
	assert.NotEqual(t, oldSession, s.SessionID)

	require.NoError(t, m.Load(context.Background(), "文化艺术", false))
	calls := f.calls()
	last := calls[len(calls)-1]
	assert.Equal(t, 0, last.Offset)
	assert.Equal(t, "文化艺术", last.Term)
	assert.Len(t, m.State().Articles, PageSize)
}

func TestManager_TopicNormalization(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		continuation bool
		mode         query.Mode
		term         string
	}{
		{"on this day in chinese", "那年今日", false, query.ModeDateSearch, "On_3_5"},
		{"on this day in english", "On This Day", false, query.ModeDateSearch, "On_3_5"},
		{"on this day continuation", "那年今日", true, query.ModeSearch, "historical events"},
		{"featured", "热门条目", false, query.ModeMostViewed, ""},
		{"featured continuation", "Featured Articles", true, query.ModeSearch, "featured article"},
		{"free text", "量子力学", false, query.ModeSearch, "量子力学"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(&fakeFetcher{pages: PageSize})
			if tt.continuation {
				require.NoError(t, m.Load(context.Background(), tt.input, false))
			}

			req, ok := m.Begin(tt.input, tt.continuation)
			require.True(t, ok)
			assert.Equal(t, tt.mode, req.Mode)
			assert.Equal(t, tt.term, req.Term)
			assert.Equal(t, tt.input, req.Input)
		})
	}
}

func TestManager_ContinuationWhileLoadingIsNoop(t *testing.T) {
	m := newTestManager(&fakeFetcher{pages: PageSize})

	_, ok := m.Begin("Physics", false)
	require.True(t, ok)
	assert.True(t, m.State().Loading)
	assert.False(t, m.CanContinue())

	_, ok = m.Begin("Physics", true)
	assert.False(t, ok)
}

func TestManager_LanguageSelectsSubdomain(t *testing.T) {
	f := &fakeFetcher{pages: 1}
	m := newTestManager(f)

	m.SetLanguage(i18n.English)
	m.Reset("Geography")
	require.NoError(t, m.Load(context.Background(), "Geography", false))

	calls := f.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, i18n.English, calls[0].Language)
	assert.Equal(t, i18n.English, m.Language())
}

func TestManager_StaleResponseDiscarded(t *testing.T) {
	mt := metrics.New()
	m := newTestManager(&fakeFetcher{})
	m.SetMetrics(mt)

	old, ok := m.Begin("科学技术", false)
	require.True(t, ok)

	m.Reset("文化艺术")
	current, ok := m.Begin("文化艺术", false)
	require.True(t, ok)

	// Newer request finishes first, then the old one straggles in.
	assert.True(t, m.Complete(Result{Request: current, Articles: makeArticles(100, 3)}))
	assert.False(t, m.Complete(Result{Request: old, Articles: makeArticles(0, PageSize)}))

	s := m.State()
	assert.Equal(t, "文化艺术", s.Term)
	require.Len(t, s.Articles, 3)
	assert.Equal(t, int64(101), s.Articles[0].PageID)
	assert.False(t, s.HasMore)
}

func TestManager_ResetReleasesLoading(t *testing.T) {
	m := newTestManager(&fakeFetcher{})

	_, ok := m.Begin("科学技术", false)
	require.True(t, ok)
	m.Reset("文化艺术")

	assert.False(t, m.State().Loading)
}

func TestManager_LastWriteWinsWhenNotDiscarding(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Feed.DiscardStale = false
	m := NewManager(&fakeFetcher{}, cfg)

	old, ok := m.Begin("科学技术", false)
	require.True(t, ok)
	m.Reset("文化艺术")
	current, ok := m.Begin("文化艺术", false)
	require.True(t, ok)

	assert.True(t, m.Complete(Result{Request: current, Articles: makeArticles(100, 3)}))
	assert.True(t, m.Complete(Result{Request: old, Articles: makeArticles(0, PageSize)}))

	// The old response overwrote the newer one.
	s := m.State()
	require.Len(t, s.Articles, PageSize)
	assert.Equal(t, int64(1), s.Articles[0].PageID)
	assert.True(t, s.HasMore)
}
