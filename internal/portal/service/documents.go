package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/google/uuid"

	"flowdocs/internal/models"
)

// UploadDocument stores an uploaded PDF: the blob goes to MinIO, text and
// keywords are extracted once and persisted with the record. Extraction
// failures degrade to an empty text/keyword set; the upload still succeeds.
func (s *Service) UploadDocument(ctx context.Context, userID, folderID uint, title string, file *multipart.FileHeader) (*models.Document, error) {
	folder, err := s.folders.Get(ctx, folderID)
	if err != nil {
		return nil, err
	}
	// PDFs live in subcategories; top-level categories only group them.
	if folder.IsCategory() {
		return nil, ErrCategoryUpload
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// The extractors work on local paths, so spool the upload to a temp
	// file first and stream it to the blob store from there.
	tmp, err := os.CreateTemp("", "flowdocs-upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	tmp.Close()

	text := s.extractor.Text(ctx, tmpPath)
	keywords := s.keywords.Extract(text)

	objectKey := fmt.Sprintf("pdfs/%s.pdf", uuid.NewString())
	blob, err := os.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("reopen temp file: %w", err)
	}
	defer blob.Close()
	if err := s.storage.Save(ctx, objectKey, blob, size, "application/pdf"); err != nil {
		return nil, err
	}

	doc := &models.Document{
		Title:        title,
		ObjectKey:    objectKey,
		FileURL:      s.storage.URL(objectKey),
		FolderID:     &folder.ID,
		UploadedByID: userID,
		TextContent:  text,
	}
	doc.Keywords = keywords
	if err := s.documents.Create(ctx, doc); err != nil {
		// Keep the store consistent with the database.
		if rmErr := s.storage.Remove(ctx, objectKey); rmErr != nil {
			s.log.WithError(rmErr).Warn(fmt.Sprintf("failed to remove blob %s", objectKey))
		}
		return nil, err
	}
	doc.Folder = folder

	s.publishAudit(ctx, models.AuditDocumentAdded, userID, title)
	return doc, nil
}

// DeleteDocument removes a document record and its backing blob. Restricted
// to content managers.
func (s *Service) DeleteDocument(ctx context.Context, operatorID uint, operatorRole models.Role, id uint) error {
	if !operatorRole.CanManageContent() {
		return ErrPermissionDenied
	}

	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Remove(ctx, doc.ObjectKey); err != nil {
		s.log.WithError(err).Warn(fmt.Sprintf("failed to remove blob %s", doc.ObjectKey))
	}

	s.publishAudit(ctx, models.AuditDocumentRemoved, operatorID, doc.Title)
	return nil
}
