package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flowdocs/internal/models"
)

// CreateFolderPair gets or creates a category and a subcategory under it.
// Both names are required; existing folders are reused.
func (s *Service) CreateFolderPair(ctx context.Context, userID uint, categoryName, subcategoryName string) (*models.Folder, *models.Folder, error) {
	categoryName = strings.TrimSpace(categoryName)
	subcategoryName = strings.TrimSpace(subcategoryName)
	if categoryName == "" || subcategoryName == "" {
		return nil, nil, fmt.Errorf("both category and subcategory names are required")
	}

	category, err := s.folders.GetOrCreate(ctx, categoryName, nil, userID)
	if err != nil {
		return nil, nil, err
	}
	subcategory, err := s.folders.GetOrCreate(ctx, subcategoryName, &category.ID, userID)
	if err != nil {
		return nil, nil, err
	}
	return category, subcategory, nil
}

// AddSubcategory gets or creates a subcategory under an existing category.
// Only top-level folders may be parents.
func (s *Service) AddSubcategory(ctx context.Context, userID, parentID uint, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("subcategory name is required")
	}

	parent, err := s.folders.Get(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if !parent.IsCategory() {
		return nil, fmt.Errorf("folder %q is not a top-level category", parent.Name)
	}
	return s.folders.GetOrCreate(ctx, name, &parent.ID, userID)
}

// DeleteFolder removes a folder with its subfolders and documents, including
// the stored blobs. Restricted to content managers.
func (s *Service) DeleteFolder(ctx context.Context, operatorID uint, operatorRole models.Role, folderID uint) error {
	if !operatorRole.CanManageContent() {
		return ErrPermissionDenied
	}

	folder, err := s.folders.Get(ctx, folderID)
	if err != nil {
		return err
	}

	objectKeys, err := s.folders.Delete(ctx, folderID)
	if err != nil {
		return err
	}
	for _, key := range objectKeys {
		if err := s.storage.Remove(ctx, key); err != nil {
			// The record is already gone; an orphaned blob is the lesser evil.
			s.log.WithError(err).Warn(fmt.Sprintf("failed to remove blob %s", key))
		}
	}

	s.publishAudit(ctx, models.AuditFolderRemoved, operatorID, folder.Name)
	return nil
}

// Categories returns the folder tree's top level with subfolders preloaded.
func (s *Service) Categories(ctx context.Context) ([]models.Folder, error) {
	return s.folders.Categories(ctx)
}

// WelcomeMessage renders the greeting of the search page, enumerating the
// folder hierarchy.
func (s *Service) WelcomeMessage(ctx context.Context) (string, error) {
	categories, err := s.folders.Categories(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Hello! I am your AI assistant.\n\nYou can chat generally or ask questions by category:\n")
	for i := range categories {
		cat := &categories[i]
		b.WriteString(fmt.Sprintf("- %s\n", cat.Name))
		for j := range cat.Subfolders {
			b.WriteString(fmt.Sprintf("    - %s\n", cat.Subfolders[j].Name))
		}
	}
	return b.String(), nil
}

// publishAudit records an audit event, logging instead of failing when the
// stream is unavailable.
func (s *Service) publishAudit(ctx context.Context, event string, userID uint, detail string) {
	err := s.audit.Publish(ctx, &models.AuditEvent{
		Event:      event,
		UserID:     userID,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to publish audit event")
	}
}
