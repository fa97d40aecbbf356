package search

import (
	"context"
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"flowdocs/internal/extract"
	"flowdocs/pkg/logger"
)

// Matcher selects the documents relevant to a query by comparing keyword
// sets. A document matches when any query keyword is literally present in its
// keyword set, or when any query/document keyword pair scores above the fuzzy
// partial-ratio threshold.
type Matcher struct {
	log            *logger.Logger
	keywords       *extract.KeywordExtractor
	fuzzyThreshold int
	snippetLimit   int
}

// NewMatcher creates a Matcher.
func NewMatcher(log *logger.Logger, keywords *extract.KeywordExtractor, fuzzyThreshold, snippetLimit int) *Matcher {
	return &Matcher{
		log:            log,
		keywords:       keywords,
		fuzzyThreshold: fuzzyThreshold,
		snippetLimit:   snippetLimit,
	}
}

// Match scores each candidate against the query and returns the assembled
// context of every relevant document plus its reference metadata. Candidates
// whose text or keywords cannot be obtained are skipped, not fatal.
func (m *Matcher) Match(ctx context.Context, query string, candidates []Candidate) (string, []Reference) {
	queryKeywords := m.keywords.Extract(query)
	m.log.WithField("query_keywords", len(queryKeywords)).Debug("matching documents")

	var contexts []string
	var references []Reference

	for _, candidate := range candidates {
		ref := candidate.Reference()

		text, err := candidate.Text(ctx)
		if err != nil {
			m.log.WithError(err).Warn(fmt.Sprintf("failed to load text for %q", ref.Title))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		docKeywords, err := candidate.Keywords(ctx)
		if err != nil {
			m.log.WithError(err).Warn(fmt.Sprintf("failed to load keywords for %q", ref.Title))
			continue
		}

		if !m.relevant(queryKeywords, docKeywords) {
			continue
		}

		snippet := TruncateSnippet(text, m.snippetLimit)
		contexts = append(contexts, fmt.Sprintf("[From file: %s]\n%s", ref.Title, snippet))
		references = append(references, ref)
	}

	return strings.Join(contexts, "\n\n"), references
}

// relevant reports whether the query and document keyword sets overlap,
// either literally or by fuzzy partial ratio.
func (m *Matcher) relevant(queryKeywords, docKeywords []string) bool {
	if len(queryKeywords) == 0 || len(docKeywords) == 0 {
		return false
	}

	docSet := make(map[string]struct{}, len(docKeywords))
	for _, dk := range docKeywords {
		docSet[strings.ToLower(dk)] = struct{}{}
	}
	for _, qk := range queryKeywords {
		if _, ok := docSet[strings.ToLower(qk)]; ok {
			return true
		}
	}

	for _, qk := range queryKeywords {
		for _, dk := range docKeywords {
			if fuzzy.PartialRatio(strings.ToLower(qk), strings.ToLower(dk)) > m.fuzzyThreshold {
				return true
			}
		}
	}
	return false
}
