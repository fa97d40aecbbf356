package extract

import (
	"strings"
	"testing"

	"flowdocs/pkg/logger"
)

func newTestExtractor() *KeywordExtractor {
	return NewKeywordExtractor(logger.New("test", ""), NewLanguageDetector())
}

func TestExtract_EmptyInput(t *testing.T) {
	k := newTestExtractor()

	if got := k.Extract(""); got != nil {
		t.Errorf("Extract(\"\") = %v, want nil", got)
	}
	if got := k.Extract("   \n\t  "); got != nil {
		t.Errorf("Extract(whitespace) = %v, want nil", got)
	}
}

func TestExtract_KeepsShortPhrases(t *testing.T) {
	k := newTestExtractor()

	keywords := k.Extract("The payroll deadline is approaching. Submit your timesheet before Friday.")
	if len(keywords) == 0 {
		t.Fatal("expected keywords from a normal sentence, got none")
	}

	found := false
	for _, kw := range keywords {
		if kw == "payroll deadline" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'payroll deadline' in %v", keywords)
	}
}

func TestExtract_DropsLongPhrases(t *testing.T) {
	k := newTestExtractor()

	// A single run of content words with no stopword split produces one long
	// candidate phrase, which must be discarded.
	keywords := k.Extract("annual employee performance review summary")
	if len(keywords) != 0 {
		t.Errorf("expected no keywords for a five-word phrase, got %v", keywords)
	}
}

func TestExtract_LowercasedAndUnique(t *testing.T) {
	k := newTestExtractor()

	keywords := k.Extract("Budget Report published. The budget report covers travel expenses. Travel Expenses grew.")

	seen := make(map[string]bool)
	for _, kw := range keywords {
		if kw != strings.ToLower(kw) {
			t.Errorf("keyword %q is not lowercased", kw)
		}
		if seen[kw] {
			t.Errorf("keyword %q appears more than once", kw)
		}
		seen[kw] = true
		if len(strings.Fields(kw)) > maxKeywordWords {
			t.Errorf("keyword %q exceeds %d words", kw, maxKeywordWords)
		}
	}
}
