package service

import (
	"context"
	"fmt"
	"strings"

	"flowdocs/internal/models"
	"flowdocs/internal/search"
)

// QueryTooLongMessage is returned for queries above the word-count limit.
const QueryTooLongMessage = "Your question is too long. Please shorten it and try again."

// Search runs the full query pipeline: cache lookup, folder routing,
// document matching, answer generation and cache store.
func (s *Service) Search(ctx context.Context, userID uint, query string) (*search.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	// Over-long queries are rejected before any expensive work.
	if len(strings.Fields(query)) > s.cfg.Search.MaxQueryWords {
		return &search.Result{Answer: QueryTooLongMessage, References: []search.Reference{}}, nil
	}

	if cached, ok := s.cache.Get(ctx, userID, query); ok {
		s.log.Debug("cache hit")
		return cached, nil
	}

	route := s.router.Route(ctx, userID, query)

	// A category match answers with a clarifying follow-up instead of
	// searching this turn.
	if route.Clarify != "" {
		result := &search.Result{Answer: route.Clarify, References: []search.Reference{}}
		s.storeInCache(ctx, userID, query, result)
		return result, nil
	}

	var docs []models.Document
	var err error
	if route.ScopeFolderID != nil {
		docs, err = s.documents.ListByFolder(ctx, *route.ScopeFolderID)
	} else {
		docs, err = s.documents.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docContext, references := s.matcher.Match(ctx, query, s.newCandidates(docs))
	answer := s.answerer.Answer(ctx, query, docContext, references)

	if references == nil {
		references = []search.Reference{}
	}
	result := &search.Result{Answer: answer, References: references}
	s.storeInCache(ctx, userID, query, result)

	s.publishAudit(ctx, models.AuditQueryAnswered, userID, query)
	return result, nil
}

func (s *Service) storeInCache(ctx context.Context, userID uint, query string, result *search.Result) {
	if err := s.cache.Set(ctx, userID, query, result); err != nil {
		s.log.WithError(err).Warn("failed to cache query result")
	}
}
