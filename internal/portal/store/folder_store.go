package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"flowdocs/internal/models"
)

// FolderStore provides data access methods for the folder hierarchy.
type FolderStore struct {
	db *gorm.DB
}

// NewFolderStore creates a new FolderStore.
func NewFolderStore(db *gorm.DB) *FolderStore {
	return &FolderStore{db: db}
}

// GetOrCreate returns the folder with the given name under parentID,
// creating it when it does not exist. parentID nil means top level.
func (s *FolderStore) GetOrCreate(ctx context.Context, name string, parentID *uint, createdByID uint) (*models.Folder, error) {
	folder := models.Folder{
		Name:     name,
		ParentID: parentID,
	}
	query := s.db.WithContext(ctx).Where("name = ?", name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.
		Attrs(&models.Folder{CreatedByID: createdByID}).
		FirstOrCreate(&folder).Error
	if err != nil {
		return nil, fmt.Errorf("get or create folder %q: %w", name, err)
	}
	return &folder, nil
}

// Get returns the folder with the given ID.
func (s *FolderStore) Get(ctx context.Context, id uint) (*models.Folder, error) {
	var folder models.Folder
	if err := s.db.WithContext(ctx).First(&folder, id).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

// Categories returns all top-level folders with their subfolders preloaded,
// ordered by name.
func (s *FolderStore) Categories(ctx context.Context) ([]models.Folder, error) {
	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Preload("Subfolders").
		Order("name").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// Subfolders returns the children of parentID ordered by name.
func (s *FolderStore) Subfolders(ctx context.Context, parentID uint) ([]models.Folder, error) {
	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// Delete removes a folder, its subfolders and all their documents in one
// transaction, and returns the object keys of the removed documents so the
// caller can clean up the blob store.
func (s *FolderStore) Delete(ctx context.Context, id uint) ([]string, error) {
	var objectKeys []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		folderIDs := []uint{id}

		var subfolders []models.Folder
		if err := tx.Where("parent_id = ?", id).Find(&subfolders).Error; err != nil {
			return err
		}
		for i := range subfolders {
			folderIDs = append(folderIDs, subfolders[i].ID)
		}

		var documents []models.Document
		if err := tx.Where("folder_id IN ?", folderIDs).Find(&documents).Error; err != nil {
			return err
		}
		for i := range documents {
			objectKeys = append(objectKeys, documents[i].ObjectKey)
		}

		if err := tx.Where("folder_id IN ?", folderIDs).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&models.Folder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Folder{}, id).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete folder %d: %w", id, err)
	}

	return objectKeys, nil
}
