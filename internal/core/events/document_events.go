package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDocumentsSent     = "document.sent"
	EventTypeDocumentsReceived = "document.received"
	EventTypeDocumentsApproved = "document.approved"
)

// DocumentsSentEvent fires once per successful send batch.
type DocumentsSentEvent struct {
	BaseEvent
	DocumentIDs []int64 `json:"document_ids"`
	SenderID    int64   `json:"sender_id"`
	Count       int64   `json:"count"`
}

func NewDocumentsSentEvent(documentIDs []int64, senderID, count int64) *DocumentsSentEvent {
	return &DocumentsSentEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDocumentsSent,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"document_ids": documentIDs,
				"sender_id":    senderID,
				"count":        count,
			},
		},
		DocumentIDs: documentIDs,
		SenderID:    senderID,
		Count:       count,
	}
}

// DocumentsReceivedEvent fires when the admin group marks inbox documents as seen.
type DocumentsReceivedEvent struct {
	BaseEvent
	DocumentIDs []int64 `json:"document_ids"`
	MarkedBy    int64   `json:"marked_by"`
}

func NewDocumentsReceivedEvent(documentIDs []int64, markedBy int64) *DocumentsReceivedEvent {
	return &DocumentsReceivedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDocumentsReceived,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"document_ids": documentIDs,
				"marked_by":    markedBy,
			},
		},
		DocumentIDs: documentIDs,
		MarkedBy:    markedBy,
	}
}

// DocumentsApprovedEvent fires when the admin group releases documents to
// their destination groups.
type DocumentsApprovedEvent struct {
	BaseEvent
	DocumentIDs []int64 `json:"document_ids"`
	ApprovedBy  int64   `json:"approved_by"`
}

func NewDocumentsApprovedEvent(documentIDs []int64, approvedBy int64) *DocumentsApprovedEvent {
	return &DocumentsApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDocumentsApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"document_ids": documentIDs,
				"approved_by":  approvedBy,
			},
		},
		DocumentIDs: documentIDs,
		ApprovedBy:  approvedBy,
	}
}
