package extract

import (
	"fmt"
	"strings"

	rake "github.com/afjoseph/RAKE.Go"

	"flowdocs/pkg/logger"
)

// maxKeywordWords caps candidate phrases at bigrams. RAKE can emit longer
// phrases; anything above two words is discarded to keep the keyword sets
// comparable between short queries and long documents.
const maxKeywordWords = 2

// KeywordExtractor derives a bag of candidate phrases from free text using
// the RAKE statistical scorer. Only the phrase strings are kept; scores are
// discarded.
type KeywordExtractor struct {
	log      *logger.Logger
	detector *LanguageDetector
}

// NewKeywordExtractor creates a KeywordExtractor.
func NewKeywordExtractor(log *logger.Logger, detector *LanguageDetector) *KeywordExtractor {
	return &KeywordExtractor{log: log, detector: detector}
}

// Extract returns the deduplicated, lowercased keyword phrases of text.
// Empty or whitespace-only input returns nil without invoking the scorer.
func (k *KeywordExtractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lang := k.detector.Detect(text)
	k.log.WithField("language", lang).Debug("extracting keywords")

	candidates := rake.RunRake(text)

	seen := make(map[string]struct{}, len(candidates))
	keywords := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		phrase := strings.ToLower(strings.TrimSpace(candidate.Key))
		if phrase == "" {
			continue
		}
		if len(strings.Fields(phrase)) > maxKeywordWords {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		keywords = append(keywords, phrase)
	}

	k.log.Debug(fmt.Sprintf("extracted %d keywords", len(keywords)))
	return keywords
}
