package extract

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// DefaultLanguage is returned when detection fails or yields an unsupported
// language.
const DefaultLanguage = "en"

// LanguageDetector guesses the language of a text, restricted to the small
// set the portal supports.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

// NewLanguageDetector builds a detector limited to English and Marathi, the
// two languages documents and questions arrive in.
func NewLanguageDetector() *LanguageDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Marathi).
		Build()
	return &LanguageDetector{detector: detector}
}

// Detect returns the ISO 639-1 code of the text's most likely language.
// Short or ambiguous text falls back to DefaultLanguage.
func (d *LanguageDetector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return DefaultLanguage
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return DefaultLanguage
	}
	code := strings.ToLower(language.IsoCode639_1().String())
	switch code {
	case "en", "mr":
		return code
	default:
		return DefaultLanguage
	}
}
