package models

import "time"

// Audit event kinds published to the audit stream.
const (
	AuditQueryAnswered   = "query_answered"
	AuditDocumentAdded   = "document_uploaded"
	AuditDocumentRemoved = "document_deleted"
	AuditFolderRemoved   = "folder_deleted"
)

// AuditEvent is one entry of the portal audit trail.
type AuditEvent struct {
	Event      string    `json:"event"`
	UserID     uint      `json:"user_id"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}
