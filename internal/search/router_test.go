package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"flowdocs/internal/models"
	"flowdocs/pkg/logger"
)

// memorySessionStore keeps routing state in a map.
type memorySessionStore struct {
	states map[uint]RoutingState
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{states: make(map[uint]RoutingState)}
}

func (m *memorySessionStore) Routing(ctx context.Context, userID uint) (RoutingState, error) {
	return m.states[userID], nil
}

func (m *memorySessionStore) SetRouting(ctx context.Context, userID uint, state RoutingState) error {
	m.states[userID] = state
	return nil
}

func (m *memorySessionStore) ClearRouting(ctx context.Context, userID uint) error {
	delete(m.states, userID)
	return nil
}

// fakeFolderLister serves a fixed two-level hierarchy.
type fakeFolderLister struct {
	categories []models.Folder
	subfolders map[uint][]models.Folder
	err        error
}

func (f *fakeFolderLister) Categories(ctx context.Context) ([]models.Folder, error) {
	return f.categories, f.err
}

func (f *fakeFolderLister) Subfolders(ctx context.Context, parentID uint) ([]models.Folder, error) {
	return f.subfolders[parentID], f.err
}

func folderWithID(id uint, name string) models.Folder {
	f := models.Folder{Name: name}
	f.ID = id
	return f
}

func newTestRouter(lister FolderLister, sessions SessionStore) *FolderRouter {
	return NewFolderRouter(logger.New("test", ""), lister, sessions, 70, 70)
}

func financeLister() *fakeFolderLister {
	return &fakeFolderLister{
		categories: []models.Folder{folderWithID(1, "Finance"), folderWithID(2, "Human Resources")},
		subfolders: map[uint][]models.Folder{
			1: {folderWithID(10, "Payroll"), folderWithID(11, "Budgets")},
			2: {folderWithID(20, "Leave Policy")},
		},
	}
}

func TestRoute_CategoryMatchAsksToClarify(t *testing.T) {
	sessions := newMemorySessionStore()
	r := newTestRouter(financeLister(), sessions)

	route := r.Route(context.Background(), 7, "tell me about finance")

	if route.ScopeFolderID != nil {
		t.Errorf("expected no scope yet, got folder %d", *route.ScopeFolderID)
	}
	if !strings.Contains(route.Clarify, "Finance") {
		t.Errorf("clarify message should name the category: %q", route.Clarify)
	}
	if !strings.Contains(route.Clarify, "Payroll") || !strings.Contains(route.Clarify, "Budgets") {
		t.Errorf("clarify message should list subcategories: %q", route.Clarify)
	}

	state := sessions.states[7]
	if state.CategoryID == nil || *state.CategoryID != 1 {
		t.Errorf("expected category 1 remembered, got %+v", state)
	}
}

func TestRoute_FollowUpScopesToSubcategory(t *testing.T) {
	sessions := newMemorySessionStore()
	r := newTestRouter(financeLister(), sessions)

	catID := uint(1)
	sessions.states[7] = RoutingState{CategoryID: &catID}

	route := r.Route(context.Background(), 7, "payroll")

	if route.Clarify != "" {
		t.Errorf("expected no clarification, got %q", route.Clarify)
	}
	if route.ScopeFolderID == nil || *route.ScopeFolderID != 10 {
		t.Fatalf("expected scope folder 10, got %v", route.ScopeFolderID)
	}

	state := sessions.states[7]
	if state.SubcategoryID == nil || *state.SubcategoryID != 10 {
		t.Errorf("expected subcategory 10 remembered, got %+v", state)
	}
}

func TestRoute_NoMatchResetsAndSearchesEverything(t *testing.T) {
	sessions := newMemorySessionStore()
	r := newTestRouter(financeLister(), sessions)

	catID := uint(1)
	sessions.states[7] = RoutingState{CategoryID: &catID}

	route := r.Route(context.Background(), 7, "wifi qqzz xyzy")

	if route.ScopeFolderID != nil || route.Clarify != "" {
		t.Errorf("expected unscoped route, got %+v", route)
	}
	if _, ok := sessions.states[7]; ok {
		t.Error("expected routing state to be cleared")
	}
}

func TestRoute_CategoryWithoutSubcategories(t *testing.T) {
	sessions := newMemorySessionStore()
	lister := &fakeFolderLister{
		categories: []models.Folder{folderWithID(3, "Notices")},
		subfolders: map[uint][]models.Folder{},
	}
	r := newTestRouter(lister, sessions)

	route := r.Route(context.Background(), 7, "show me the notices")

	if !strings.Contains(route.Clarify, "no subcategories") {
		t.Errorf("expected the empty-category message, got %q", route.Clarify)
	}
}

func TestRoute_StorageFailureFallsBackUnscoped(t *testing.T) {
	sessions := newMemorySessionStore()
	lister := &fakeFolderLister{err: errors.New("database down")}
	r := newTestRouter(lister, sessions)

	route := r.Route(context.Background(), 7, "finance")

	if route.ScopeFolderID != nil || route.Clarify != "" {
		t.Errorf("expected unscoped fallback, got %+v", route)
	}
}
