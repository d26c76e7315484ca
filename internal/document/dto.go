package document

import (
	"strconv"
	"strings"
	"time"

	errors "github.com/haddadrachelle2-png/testdoc/internal"
	"github.com/haddadrachelle2-png/testdoc/internal/core/common/validation"
)

// DocDateLayout is the wire format for document dates.
const DocDateLayout = "2006-01-02"

// Meta carries the mutable metadata shared by create and save.
type Meta struct {
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	DocNum         string    `json:"doc_num"`
	DocDate        time.Time `json:"doc_date"`
	NumberPapers   int       `json:"number_papers"`
	SendPaper      bool      `json:"send_paper"`
	SendElectronic bool      `json:"send_electronic"`
	Remarks        string    `json:"remarks"`
	IsPersonal     bool      `json:"is_personal"`
}

// CreateDocumentDTO is the JSON payload for POST /documents/create.
type CreateDocumentDTO struct {
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	DocNum         string  `json:"doc_num"`
	DocDate        string  `json:"doc_date"`
	NumberPapers   int     `json:"number_papers"`
	SendPaper      bool    `json:"send_paper"`
	SendElectronic bool    `json:"send_electronic"`
	Remarks        string  `json:"remarks"`
	IsPersonal     bool    `json:"is_personal"`
	Destinations   []int64 `json:"destinations"`
}

// Validate checks required fields and parses the document date.
func (d CreateDocumentDTO) Validate() (Meta, *errors.AppError) {
	docDate, appErr := parseDocDate(d.DocDate)
	if appErr != nil {
		return Meta{}, appErr
	}

	if appErr := validation.ValidateDocumentMeta(d.Title, d.Content, d.DocNum, docDate, d.NumberPapers, d.Destinations); appErr != nil {
		return Meta{}, appErr
	}

	return Meta{
		Title:          d.Title,
		Content:        d.Content,
		DocNum:         d.DocNum,
		DocDate:        docDate,
		NumberPapers:   d.NumberPapers,
		SendPaper:      d.SendPaper,
		SendElectronic: d.SendElectronic,
		Remarks:        d.Remarks,
		IsPersonal:     d.IsPersonal,
	}, nil
}

// SaveDocumentDTO is the multipart form payload for POST /documents/save.
// An id selects the update-draft path; without one a new draft is created.
type SaveDocumentDTO struct {
	ID *int64
	CreateDocumentDTO
	Attachment *Attachment
}

// Attachment is an uploaded file part.
type Attachment struct {
	Data []byte
	Ext  string
}

// SendDraftsDTO is the payload for POST /documents/send.
type SendDraftsDTO struct {
	DraftIDs []int64 `json:"draftIds"`
}

func (d SendDraftsDTO) Validate() *errors.AppError {
	if len(d.DraftIDs) == 0 {
		return errors.NewValidationError("No drafts selected", errors.ErrCodeNoDocumentsSelected)
	}
	return nil
}

// MarkSeenDTO is the payload for POST /documents/markseen.
type MarkSeenDTO struct {
	InboxIDs []int64 `json:"inboxIds"`
}

func (d MarkSeenDTO) Validate() *errors.AppError {
	if len(d.InboxIDs) == 0 {
		return errors.NewValidationError("No inbox IDs provided", errors.ErrCodeNoDocumentsSelected)
	}
	return nil
}

// ApproveBulkDTO is the payload for POST /documents/approve-bulk.
type ApproveBulkDTO struct {
	IDs []int64 `json:"ids"`
}

func (d ApproveBulkDTO) Validate() *errors.AppError {
	if len(d.IDs) == 0 {
		return errors.NewValidationError("No document IDs provided", errors.ErrCodeNoDocumentsSelected)
	}
	return nil
}

// ListParams are the common listing inputs. Start and End are inclusive
// bounds on the date column specific to the view.
type ListParams struct {
	Start       *time.Time
	End         *time.Time
	Destination string
	Page        int
	PageSize    int
}

// Normalize clamps the page and applies the configured page size.
func (p *ListParams) Normalize(pageSize int) {
	if p.Page < 1 {
		p.Page = 1
	}
	p.PageSize = pageSize
}

// Offset is the number of rows skipped by the window.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ParseDestinationList accepts both a JSON array and the comma-separated
// form-data shape ("3,5,8") the frontend submits.
func ParseDestinationList(raw string) []int64 {
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func parseDocDate(raw string) (time.Time, *errors.AppError) {
	if raw == "" {
		return time.Time{}, nil
	}
	docDate, err := time.Parse(DocDateLayout, raw)
	if err != nil {
		return time.Time{}, errors.NewValidationFieldError("doc_date", "doc_date must be YYYY-MM-DD", errors.ErrCodeInvalidDate)
	}
	return docDate, nil
}

// ParseDateBound parses an optional YYYY-MM-DD query bound.
func ParseDateBound(raw string) (*time.Time, *errors.AppError) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DocDateLayout, raw)
	if err != nil {
		return nil, errors.NewValidationFieldError("date", "date bounds must be YYYY-MM-DD", errors.ErrCodeInvalidDate)
	}
	return &t, nil
}
