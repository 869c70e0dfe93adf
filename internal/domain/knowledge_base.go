package domain

import "time"

// KnowledgeBaseStatus is the import lifecycle state:
// pending -> processing -> ready | error
type KnowledgeBaseStatus string

const (
	KnowledgeBasePending    KnowledgeBaseStatus = "pending"
	KnowledgeBaseProcessing KnowledgeBaseStatus = "processing"
	KnowledgeBaseReady      KnowledgeBaseStatus = "ready"
	KnowledgeBaseError      KnowledgeBaseStatus = "error"
)

// IsTerminal reports whether no further transitions are expected
func (s KnowledgeBaseStatus) IsTerminal() bool {
	return s == KnowledgeBaseReady || s == KnowledgeBaseError
}

// KnowledgeBase represents a named import job over a source document path
type KnowledgeBase struct {
	ID                    string              `json:"id"`
	UserID                string              `json:"userId"`
	Name                  string              `json:"name"`
	Path                  string              `json:"path"`
	Status                KnowledgeBaseStatus `json:"status"`
	DocumentCount         int                 `json:"documentCount"`
	TotalChunks           int                 `json:"totalChunks"`
	ErrorDetails          *string             `json:"errorDetails,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
	ImportedAt            *time.Time          `json:"importedAt"`
	ProcessingStartedAt   *time.Time          `json:"processingStartedAt"`
	ProcessingCompletedAt *time.Time          `json:"processingCompletedAt"`
}

// KnowledgeBaseCreate represents knowledge base creation data
type KnowledgeBaseCreate struct {
	Name string `json:"name" validate:"required,max=255"`
	Path string `json:"path" validate:"required,max=1000,excludes=.."`
}

// KnowledgeBaseUpdate is a partial status update; nil fields are left untouched
type KnowledgeBaseUpdate struct {
	ID                    string               `json:"id,omitempty"`
	Name                  *string              `json:"name,omitempty"`
	Status                *KnowledgeBaseStatus `json:"status,omitempty"`
	DocumentCount         *int                 `json:"documentCount,omitempty"`
	TotalChunks           *int                 `json:"totalChunks,omitempty"`
	ErrorDetails          *string              `json:"errorDetails,omitempty"`
	UpdatedAt             *time.Time           `json:"updatedAt,omitempty"`
	ImportedAt            *time.Time           `json:"importedAt,omitempty"`
	ProcessingStartedAt   *time.Time           `json:"processingStartedAt,omitempty"`
	ProcessingCompletedAt *time.Time           `json:"processingCompletedAt,omitempty"`
}

// Merge applies u on top of kb and returns the result.
// ImportedAt only survives a ready status and ErrorDetails only an error status.
func (kb KnowledgeBase) Merge(u KnowledgeBaseUpdate) KnowledgeBase {
	if u.Name != nil {
		kb.Name = *u.Name
	}
	if u.Status != nil {
		kb.Status = *u.Status
	}
	if u.DocumentCount != nil {
		kb.DocumentCount = *u.DocumentCount
	}
	if u.TotalChunks != nil {
		kb.TotalChunks = *u.TotalChunks
	}
	if u.ErrorDetails != nil {
		kb.ErrorDetails = u.ErrorDetails
	}
	if u.UpdatedAt != nil {
		kb.UpdatedAt = *u.UpdatedAt
	}
	if u.ImportedAt != nil {
		kb.ImportedAt = u.ImportedAt
	}
	if u.ProcessingStartedAt != nil {
		kb.ProcessingStartedAt = u.ProcessingStartedAt
	}
	if u.ProcessingCompletedAt != nil {
		kb.ProcessingCompletedAt = u.ProcessingCompletedAt
	}

	if kb.Status != KnowledgeBaseReady {
		kb.ImportedAt = nil
	}
	if kb.Status != KnowledgeBaseError {
		kb.ErrorDetails = nil
	}
	return kb
}
