package store

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"flowdocs/internal/models"
)

// DocumentStore provides data access methods for uploaded documents.
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Create inserts a new document.
func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) error {
	return s.db.WithContext(ctx).Create(doc).Error
}

// Get returns the document with the given ID, folder preloaded.
func (s *DocumentStore) Get(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).Preload("Folder").First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByFolder returns the documents of one folder, newest first.
func (s *DocumentStore) ListByFolder(ctx context.Context, folderID uint) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("folder_id = ?", folderID).
		Preload("Folder").
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ListAll returns every document that belongs to a folder, newest first.
func (s *DocumentStore) ListAll(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("folder_id IS NOT NULL").
		Preload("Folder").
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateContent persists recomputed text and keywords for a document. Used
// by the lazy backfill path of the matcher.
func (s *DocumentStore) UpdateContent(ctx context.Context, id uint, text string, keywords []string) error {
	return s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"text_content": text,
			"keywords":     datatypes.NewJSONSlice(keywords),
		}).Error
}

// Delete removes a document record.
func (s *DocumentStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Document{}, id).Error
}
