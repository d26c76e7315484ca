package document

import (
	"fmt"
	"time"
)

// A document moves through four monotone stages: draft, sent, received,
// admin-viewed. Flags only ever flip false to true; there is no un-send and
// no deletion. While is_sent is false only the owning sender may read or
// mutate the row.

// Draft is the single-document view returned to the owning sender, with the
// destination group ids and the attachment link when a file is present.
type Draft struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	DocNum         string     `json:"doc_num"`
	DocDate        time.Time  `json:"doc_date"`
	NumberPapers   int        `json:"number_papers"`
	SendPaper      bool       `json:"send_paper"`
	SendElectronic bool       `json:"send_electronic"`
	Remarks        string     `json:"remarks"`
	IsPersonal     bool       `json:"is_personal"`
	SenderID       int64      `json:"sender_id"`
	CreatedAt      time.Time  `json:"created_at"`
	IsSent         bool       `json:"is_sent"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	AdminView      bool       `json:"admin_view"`
	AdminViewDate  *time.Time `json:"admin_view_date,omitempty"`
	IsReceived     bool       `json:"is_received"`
	ReceivedDate   *time.Time `json:"received_date,omitempty"`
	HasFile        bool       `json:"has_file"`
	DocExt         *string    `json:"doc_ext,omitempty"`
	Destinations   []int64    `json:"destinations"`
	FileURL        *string    `json:"fileUrl"`
}

// File is an attachment read back from a draft.
type File struct {
	Data   []byte
	Ext    string
	DocNum string
}

// FileName derives the download name the same way the attachment is served:
// document number plus stored extension.
func (f *File) FileName() string {
	ext := f.Ext
	if ext == "" {
		ext = ".bin"
	}
	docNum := f.DocNum
	if docNum == "" {
		docNum = "document"
	}
	return docNum + ext
}

// DraftRow is one row of the drafts listing.
type DraftRow struct {
	ID             int64      `json:"id"`
	DocNum         string     `json:"doc_num"`
	DocDate        time.Time  `json:"doc_date"`
	NumberPapers   int        `json:"number_papers"`
	SendPaper      bool       `json:"send_paper"`
	SendElectronic bool       `json:"send_electronic"`
	Remarks        string     `json:"remarks"`
	IsPersonal     bool       `json:"is_personal"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	SenderID       int64      `json:"sender_id"`
	CreatedAt      time.Time  `json:"created_at"`
	IsSent         bool       `json:"is_sent"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	AdminView      bool       `json:"admin_view"`
	AdminViewDate  *time.Time `json:"admin_view_date,omitempty"`
	IsReceived     bool       `json:"is_received"`
	ReceivedDate   *time.Time `json:"received_date,omitempty"`
	Destinations   string     `json:"destinations"`
}

// SentRow is one row of the sent listing.
type SentRow struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	CreatedAt    time.Time  `json:"created_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	Destinations string     `json:"destinations"`
}

// InboxRow is one row of the inbox listing, joined with the sender's group.
type InboxRow struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	CreatedAt    time.Time  `json:"created_at"`
	SenderID     int64      `json:"sender_id"`
	SenderName   string     `json:"senderName"`
	Destinations string     `json:"destinations"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	IsReceived   bool       `json:"is_received"`
	IsAdminGroup bool       `json:"is_admin_group"`
}

// PendingRow is one row of the admin pending queue: received but not yet
// admin-viewed.
type PendingRow struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"senderName"`
}

// ReportRow feeds the sent-documents report renderer.
type ReportRow struct {
	ID           int64
	Title        string
	Content      string
	CreatedAt    time.Time
	SentAt       *time.Time
	Destinations string
}

// GroupName is a destination group name row.
type GroupName struct {
	Name string `json:"name"`
}

// Page is the envelope every listing endpoint returns.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// NewPage assembles the pagination envelope. Total comes from an independent
// count over the same predicate as the window query, never from the slice.
func NewPage[T any](data []T, page, perPage int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		totalPages++
	}
	return Page[T]{
		Data:       data,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// FileURLFor builds the attachment download path for a document.
func FileURLFor(documentID int64) string {
	return fmt.Sprintf("/api/documents/%d/file", documentID)
}
