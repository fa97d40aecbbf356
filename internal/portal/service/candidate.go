package service

import (
	"context"

	"flowdocs/internal/models"
	"flowdocs/internal/search"
)

// documentCandidate adapts a stored document to the matcher's Candidate
// interface. Missing text or keywords are recomputed from the stored blob
// and persisted before scoring, so the work is done at most once.
type documentCandidate struct {
	svc *Service
	doc *models.Document
}

func (s *Service) newCandidates(docs []models.Document) []search.Candidate {
	candidates := make([]search.Candidate, 0, len(docs))
	for i := range docs {
		candidates = append(candidates, &documentCandidate{svc: s, doc: &docs[i]})
	}
	return candidates
}

// Text returns the cached extracted text, backfilling it from the blob store
// when empty.
func (c *documentCandidate) Text(ctx context.Context) (string, error) {
	if c.doc.TextContent != "" {
		return c.doc.TextContent, nil
	}

	path, cleanup, err := c.svc.storage.Fetch(ctx, c.doc.ObjectKey)
	if err != nil {
		return "", err
	}
	defer cleanup()

	text := c.svc.extractor.Text(ctx, path)
	if text == "" {
		return "", nil
	}

	c.doc.TextContent = text
	if err := c.svc.persistContent(ctx, c.doc); err != nil {
		return "", err
	}
	return text, nil
}

// Keywords returns the cached keyword set, backfilling it from the text when
// empty.
func (c *documentCandidate) Keywords(ctx context.Context) ([]string, error) {
	if len(c.doc.Keywords) > 0 {
		return c.doc.Keywords, nil
	}

	text, err := c.Text(ctx)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	keywords := c.svc.keywords.Extract(text)
	if len(keywords) == 0 {
		return nil, nil
	}

	c.doc.Keywords = keywords
	if err := c.svc.persistContent(ctx, c.doc); err != nil {
		return nil, err
	}
	return keywords, nil
}

// Reference returns the document's citation metadata.
func (c *documentCandidate) Reference() search.Reference {
	return search.Reference{
		Title:      c.doc.Title,
		Folder:     c.doc.FolderName(),
		URL:        c.doc.FileURL,
		UploadedAt: c.doc.CreatedAt.Format("2006-01-02"),
	}
}

func (s *Service) persistContent(ctx context.Context, doc *models.Document) error {
	return s.documents.UpdateContent(ctx, doc.ID, doc.TextContent, doc.Keywords)
}
