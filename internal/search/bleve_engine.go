package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/wikr/internal/debuglog"
	"github.com/pders01/wikr/internal/feed"
)

// Index is an in-memory full-text index over the articles loaded in the
// current feed session. It is safe for concurrent use.
type Index struct {
	mu       sync.RWMutex
	idx      bleve.Index
	articles map[int64]feed.Article
}

var (
	_ Finder     = (*Index)(nil)
	_ Indexer    = (*Index)(nil)
	_ DocCounter = (*Index)(nil)
)

func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &Index{idx: idx, articles: make(map[int64]feed.Article)}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = false
	title.IncludeTermVectors = true

	extract := bleve.NewTextFieldMapping()
	extract.Analyzer = standard.Name
	extract.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("extract", extract)

	im.DefaultMapping = dm
	return im
}

// Index adds articles; re-indexing a page id replaces it. Missing pages
// carry no id and are not indexed.
func (x *Index) Index(articles []feed.Article) error {
	if len(articles) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.idx.NewBatch()
	for _, a := range articles {
		if a.PageID == 0 {
			continue
		}
		if err := batch.Index(docID(a.PageID), map[string]any{
			"title":   a.Title,
			"extract": a.Extract,
		}); err != nil {
			return fmt.Errorf("indexing %q: %w", a.Title, err)
		}
		x.articles[a.PageID] = a
	}
	if err := x.idx.Batch(batch); err != nil {
		return err
	}

	debuglog.Debugf("indexed %d articles (%d total)", len(articles), len(x.articles))
	return nil
}

// Reset drops every document, typically when a new feed session starts.
func (x *Index) Reset() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("recreating index: %w", err)
	}
	old := x.idx
	x.idx = idx
	x.articles = make(map[int64]feed.Article)
	return old.Close()
}

// Find returns up to limit articles ranked by relevance.
func (x *Index) Find(query string, limit int) ([]*Result, error) {
	if tooShort(query) || limit <= 0 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	var qs []bleveQuery.Query
	for _, tok := range terms {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("title")
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)

		qe := bleve.NewMatchQuery(tok)
		qe.SetField("extract")
		qe.SetBoost(2.0)
		qs = append(qs, qe)
		qep := bleve.NewPrefixQuery(tok)
		qep.SetField("extract")
		qep.SetBoost(1.8)
		qs = append(qs, qep)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := x.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseInt(strings.TrimPrefix(h.ID, "page:"), 10, 64)
		if err != nil {
			continue
		}
		article, ok := x.articles[id]
		if !ok {
			continue
		}
		r := describe(article, terms)
		if r == nil {
			// Analyzer-level hit without a literal occurrence, e.g. a
			// single shared Han character.
			r = &Result{Article: article}
		}
		r.Score = h.Score
		out = append(out, r)
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (x *Index) DocCount() (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n, err := x.idx.DocCount()
	return int(n), err
}

// Close releases the index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.idx.Close()
}

func docID(pageID int64) string { return "page:" + strconv.FormatInt(pageID, 10) }
