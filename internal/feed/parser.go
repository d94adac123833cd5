package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Parser decodes the query envelope returned by the API:
//
//	{"query": {"pages": {"<pageid>": {"pageid", "title", "extract", "thumbnail": {"source"}}}}}
//
// The pages object is walked in document order, so results keep the order
// the API returned them in.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type envelope struct {
	Error *apiError `json:"error"`
	Query *struct {
		Pages orderedPages `json:"pages"`
	} `json:"query"`
}

type rawPage struct {
	PageID    int64  `json:"pageid"`
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

func (p rawPage) article() Article {
	a := Article{PageID: p.PageID, Title: p.Title, Extract: p.Extract}
	if p.Thumbnail != nil {
		a.Thumbnail = p.Thumbnail.Source
	}
	return a
}

type orderedPages []rawPage

// UnmarshalJSON accepts the keyed object form and, for formatversion=2
// responses, a plain array.
func (o *orderedPages) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}

	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return fmt.Errorf("pages: unexpected token %v", tok)
	}

	for dec.More() {
		if delim == '{' {
			if _, err := dec.Token(); err != nil {
				return err
			}
		}
		var page rawPage
		if err := dec.Decode(&page); err != nil {
			return err
		}
		*o = append(*o, page)
	}

	_, err = dec.Token()
	return err
}

// Parse returns every page in response order, including pages flagged as
// missing, so the result length always matches what the API sent. A
// response without query or pages is an empty result, not an error.
func (p *Parser) Parse(r io.Reader) ([]Article, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, &FetchError{Op: "decode", Err: err}
	}

	if env.Error != nil {
		return nil, &FetchError{Op: "api", Err: fmt.Errorf("%s: %s", env.Error.Code, env.Error.Info)}
	}

	if env.Query == nil {
		return []Article{}, nil
	}

	articles := make([]Article, 0, len(env.Query.Pages))
	for _, page := range env.Query.Pages {
		articles = append(articles, page.article())
	}
	return articles, nil
}
