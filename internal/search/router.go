package search

import (
	"context"
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"flowdocs/internal/models"
	"flowdocs/pkg/logger"
)

// FolderLister is the folder lookup the router needs.
type FolderLister interface {
	Categories(ctx context.Context) ([]models.Folder, error)
	Subfolders(ctx context.Context, parentID uint) ([]models.Folder, error)
}

// Route is the router's decision for one query.
type Route struct {
	// ScopeFolderID narrows the document scan to one subcategory when
	// non-nil.
	ScopeFolderID *uint
	// Clarify, when non-empty, is a follow-up answer listing the matched
	// category's subcategories; the search is not performed this turn.
	Clarify string
}

// FolderRouter decides the search scope of a query by fuzzy-matching it
// against category and subcategory names, carrying the selection across
// queries of the same session.
type FolderRouter struct {
	log                  *logger.Logger
	folders              FolderLister
	sessions             SessionStore
	categoryThreshold    int
	subcategoryThreshold int
}

// NewFolderRouter creates a FolderRouter.
func NewFolderRouter(log *logger.Logger, folders FolderLister, sessions SessionStore, categoryThreshold, subcategoryThreshold int) *FolderRouter {
	return &FolderRouter{
		log:                  log,
		folders:              folders,
		sessions:             sessions,
		categoryThreshold:    categoryThreshold,
		subcategoryThreshold: subcategoryThreshold,
	}
}

// Route runs the routing state machine for one query. Storage failures fall
// back to an unscoped search rather than failing the request.
func (r *FolderRouter) Route(ctx context.Context, userID uint, query string) Route {
	state, err := r.sessions.Routing(ctx, userID)
	if err != nil {
		r.log.WithError(err).Warn("failed to load routing state, searching unscoped")
		return Route{}
	}

	// A previously selected category narrows the next query to one of its
	// subcategories. First name above the threshold wins.
	if state.CategoryID != nil {
		subfolders, err := r.folders.Subfolders(ctx, *state.CategoryID)
		if err != nil {
			r.log.WithError(err).Warn("failed to list subfolders, searching unscoped")
			return Route{}
		}
		for i := range subfolders {
			sub := &subfolders[i]
			score := fuzzy.PartialRatio(strings.ToLower(query), strings.ToLower(sub.Name))
			if score >= r.subcategoryThreshold {
				state.SubcategoryID = &sub.ID
				if err := r.sessions.SetRouting(ctx, userID, state); err != nil {
					r.log.WithError(err).Warn("failed to store routing state")
				}
				r.log.Info(fmt.Sprintf("query scoped to subcategory %q", sub.Name))
				return Route{ScopeFolderID: &sub.ID}
			}
		}
	}

	categories, err := r.folders.Categories(ctx)
	if err != nil {
		r.log.WithError(err).Warn("failed to list categories, searching unscoped")
		return Route{}
	}
	for i := range categories {
		cat := &categories[i]
		score := fuzzy.PartialRatio(strings.ToLower(query), strings.ToLower(cat.Name))
		if score < r.categoryThreshold {
			continue
		}

		subfolders, err := r.folders.Subfolders(ctx, cat.ID)
		if err != nil {
			r.log.WithError(err).Warn("failed to list subfolders, searching unscoped")
			return Route{}
		}

		if err := r.sessions.SetRouting(ctx, userID, RoutingState{CategoryID: &cat.ID}); err != nil {
			r.log.WithError(err).Warn("failed to store routing state")
		}
		return Route{Clarify: clarifyMessage(cat, subfolders)}
	}

	// Nothing matched: reset the selection and search everything.
	if err := r.sessions.ClearRouting(ctx, userID); err != nil {
		r.log.WithError(err).Warn("failed to clear routing state")
	}
	return Route{}
}

// clarifyMessage asks the user to narrow a matched category down to one of
// its subcategories.
func clarifyMessage(category *models.Folder, subfolders []models.Folder) string {
	if len(subfolders) == 0 {
		return fmt.Sprintf("Got it! You asked about '%s', but it has no subcategories yet.", category.Name)
	}
	names := make([]string, 0, len(subfolders))
	for i := range subfolders {
		names = append(names, subfolders[i].Name)
	}
	return fmt.Sprintf(
		"Got it! You asked about '%s'. This is a large topic, can you narrow it down to one of: %s",
		category.Name, strings.Join(names, ", "),
	)
}
