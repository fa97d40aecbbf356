// Package search implements the query pipeline: document matching, folder
// routing, answer generation and response caching.
package search

import "context"

// Reference is the metadata of a matched document, returned alongside the
// generated answer.
type Reference struct {
	Title      string `json:"title"`
	Folder     string `json:"folder"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

// Result is the payload of one answered query.
type Result struct {
	Answer     string      `json:"answer"`
	References []Reference `json:"references"`
}

// Candidate is the narrow view of a stored document the matcher scores.
// Text and Keywords return cached values and are expected to backfill and
// persist them when missing, so repeated searches reuse the work.
type Candidate interface {
	Text(ctx context.Context) (string, error)
	Keywords(ctx context.Context) ([]string, error)
	Reference() Reference
}
