package search

import (
	"context"
	"fmt"
	"strings"

	"flowdocs/internal/extract"
	"flowdocs/internal/llm"
	"flowdocs/pkg/logger"
)

// NoCredentialMessage is returned when no LLM credential is configured.
const NoCredentialMessage = "OpenAI API key not configured. Please set the OPENAI_API_KEY environment variable to enable AI-powered responses."

// Answerer builds a language-appropriate prompt from a question and its
// assembled document context and delegates to the LLM client. It never fails
// outward: every failure is converted to a descriptive answer string.
type Answerer struct {
	log      *logger.Logger
	client   llm.Client // nil when no credential is configured
	detector *extract.LanguageDetector
}

// NewAnswerer creates an Answerer. client may be nil, in which case every
// call returns NoCredentialMessage.
func NewAnswerer(log *logger.Logger, client llm.Client, detector *extract.LanguageDetector) *Answerer {
	return &Answerer{log: log, client: client, detector: detector}
}

// Answer generates a natural-language answer to the question using the given
// document context. The response language follows the question's language,
// one of English or Marathi. references, when present, are appended as a
// citation list for the model to use.
func (a *Answerer) Answer(ctx context.Context, question, docContext string, references []Reference) string {
	if a.client == nil {
		return NoCredentialMessage
	}

	lang := a.detector.Detect(question)

	var system, prompt string
	if lang == "mr" {
		system = "तू एक मदत करणारा सहाय्यक आहेस. प्रश्नाचे उत्तर फक्त मराठीत द्या."
		prompt = fmt.Sprintf(
			"खाली दिलेल्या PDF संदर्भांचा वापर करून प्रश्नाचे उत्तर द्या.\n\nप्रश्न: %s\n\nसंदर्भ:\n%s",
			question, docContext,
		)
	} else {
		system = "You are a helpful assistant. Answer in English only."
		prompt = fmt.Sprintf(
			"Using the following PDF references, answer the question in English.\n\nQuestion: %s\n\nReference:\n%s",
			question, docContext,
		)
	}

	if len(references) > 0 {
		var refLines []string
		for _, ref := range references {
			if ref.Title == "" {
				continue
			}
			refLines = append(refLines, fmt.Sprintf("- %s (%s)", ref.Title, ref.URL))
		}
		if len(refLines) > 0 {
			prompt += "\n\nAlso, cite these reference files where useful:\n" + strings.Join(refLines, "\n")
		}
	}

	answer, err := a.client.Generate(ctx, system, prompt)
	if err != nil {
		a.log.WithError(err).Error("LLM call failed")
		return fmt.Sprintf("[OpenAI Error] %v", err)
	}
	return answer
}
