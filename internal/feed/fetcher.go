package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pders01/wikr/internal/config"
	"github.com/pders01/wikr/internal/debuglog"
	"github.com/pders01/wikr/internal/i18n"
	"github.com/pders01/wikr/internal/metrics"
	"github.com/pders01/wikr/internal/query"
)

const (
	defaultUserAgent = "wikr/1.0 (Wikipedia explorer; github.com/pders01/wikr)"
	defaultTimeout   = 15 * time.Second
	defaultThumbSize = 400
)

// Request is one page load, produced by Manager.Begin.
type Request struct {
	Input        string // what the user picked or typed
	Mode         query.Mode
	Term         string
	Offset       int
	Language     i18n.Language
	Continuation bool
	Token        uint64
	Session      string
}

// ArticleFetcher is what the Manager needs from a Fetcher.
type ArticleFetcher interface {
	Fetch(ctx context.Context, req Request) ([]Article, error)
}

type Fetcher struct {
	client      *http.Client
	parser      *Parser
	endpoint    string
	listingLang i18n.Language
	userAgent   string
	thumbSize   int
	metrics     *metrics.Metrics
}

func NewFetcher(cfg *config.Config) *Fetcher {
	timeout := cfg.API.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.API.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	thumb := cfg.API.ThumbSize
	if thumb <= 0 {
		thumb = defaultThumbSize
	}
	listing, err := i18n.ParseLanguage(cfg.API.ListingLanguage)
	if err != nil {
		listing = i18n.English
	}

	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		parser:      NewParser(),
		endpoint:    cfg.API.Endpoint,
		listingLang: listing,
		userAgent:   ua,
		thumbSize:   thumb,
	}
}

// SetMetrics attaches collectors; nil disables them.
func (f *Fetcher) SetMetrics(m *metrics.Metrics) {
	f.metrics = m
}

// SetHTTPClient replaces the underlying client.
func (f *Fetcher) SetHTTPClient(c *http.Client) {
	f.client = c
}

// targetLanguage is the subdomain a request goes to. Listings always come
// from one fixed locale regardless of the UI language.
func (f *Fetcher) targetLanguage(req Request) i18n.Language {
	if req.Mode.Listing() {
		return f.listingLang
	}
	return req.Language
}

// BuildURL renders the API URL for req.
func (f *Fetcher) BuildURL(req Request) (string, error) {
	lang := f.targetLanguage(req)

	u, err := url.Parse(fmt.Sprintf(f.endpoint, lang.Code()))
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}

	q := u.Query()
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("prop", "extracts|pageimages")
	q.Set("exintro", "1")
	q.Set("explaintext", "1")
	q.Set("piprop", "thumbnail")
	q.Set("pithumbsize", strconv.Itoa(f.thumbSize))

	limit := strconv.Itoa(PageSize)
	switch req.Mode {
	case query.ModeMostViewed:
		q.Set("generator", "mostviewed")
		q.Set("gpvimlimit", limit)
	case query.ModeDateSearch:
		q.Set("generator", "search")
		q.Set("gsrlimit", limit)
		q.Set("gsrsearch", req.Term)
	default:
		q.Set("generator", "search")
		q.Set("gsrlimit", limit)
		q.Set("gsroffset", strconv.Itoa(req.Offset))
		q.Set("gsrsearch", req.Term)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch performs one GET and decodes the page list.
func (f *Fetcher) Fetch(ctx context.Context, req Request) ([]Article, error) {
	start := time.Now()
	articles, err := f.fetch(ctx, req)
	f.metrics.ObserveFetch(req.Mode.String(), f.targetLanguage(req).Code(), len(articles), time.Since(start), err)
	return articles, err
}

func (f *Fetcher) fetch(ctx context.Context, req Request) ([]Article, error) {
	rawURL, err := f.BuildURL(req)
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Op: "request", URL: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	debuglog.WithFields(map[string]any{
		"mode":   req.Mode.String(),
		"offset": req.Offset,
		"token":  req.Token,
	}).Debugf("GET %s", rawURL)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &FetchError{Op: "request", URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Op:     "status",
			URL:    rawURL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	articles, err := f.parser.Parse(resp.Body)
	if err != nil {
		if fe, ok := err.(*FetchError); ok {
			fe.URL = rawURL
			return nil, fe
		}
		return nil, &FetchError{Op: "decode", URL: rawURL, Err: err}
	}
	return articles, nil
}
