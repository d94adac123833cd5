package search

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pders01/wikr/internal/feed"
)

// Result is one article matching a find query.
type Result struct {
	Article feed.Article
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title" or "extract"
	Text   string // matched text snippet
	Weight float64
}

const snippetLength = 120

// tooShort reports whether a query is too short to search for. A single
// Han character is a meaningful query, a single Latin letter is not.
func tooShort(query string) bool {
	q := strings.TrimSpace(query)
	switch utf8.RuneCountInString(q) {
	case 0:
		return true
	case 1:
		r, _ := utf8.DecodeRuneInString(q)
		return !unicode.Is(unicode.Han, r)
	}
	return false
}

// describe explains why article matched the query terms. It returns nil
// when no term occurs in the article at all.
func describe(article feed.Article, terms []string) *Result {
	var matches []Match
	var total float64

	if s := scoreField(article.Title, terms, 4.0); s > 0 {
		matches = append(matches, Match{Field: "title", Text: article.Title, Weight: s})
		total += s
	}
	if s := scoreField(article.Extract, terms, 2.0); s > 0 {
		matches = append(matches, Match{
			Field:  "extract",
			Text:   bestSnippet(article.Extract, terms, snippetLength),
			Weight: s,
		})
		total += s
	}

	if total == 0 {
		return nil
	}
	return &Result{Article: article, Score: total, Matches: matches}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)

	var score float64
	matched := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matched++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matched++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matched++
			case strings.Contains(word, term):
				score += 0.5
				matched++
			}
		}
	}

	if matched == 0 {
		return 0
	}
	if len(terms) > 1 && matched > 1 {
		score *= 1.0 + float64(matched)/float64(len(terms))
	}

	tf := float64(matched) / float64(max(len(words), 1))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// bestSnippet returns the window of text around the first term hit. Extracts
// in CJK scripts have no spaces, so windows are measured in runes.
func bestSnippet(text string, terms []string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	lower := []rune(strings.ToLower(text))
	at := -1
	for _, term := range terms {
		if i := runeIndex(lower, []rune(term)); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	if at < 0 {
		return truncate(text, maxLen)
	}

	start := max(at-maxLen/4, 0)
	end := min(start+maxLen, len(runes))
	start = max(end-maxLen, 0)

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(runes) {
		snippet += "…"
	}
	return snippet
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

// tokenize breaks text into lowercased search terms. Latin single letters
// are dropped; Han runs are kept whole.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if term := current.String(); !tooShort(term) {
			terms = append(terms, term)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return terms
}

// truncate limits text length in runes with an ellipsis.
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-1]) + "…"
}
