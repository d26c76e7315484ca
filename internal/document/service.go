package document

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	errors "github.com/haddadrachelle2-png/testdoc/internal"
	"github.com/haddadrachelle2-png/testdoc/internal/auth"
	"github.com/haddadrachelle2-png/testdoc/internal/core/events"
)

// Repository defines the data access methods for documents. Multi-statement
// sequences (create plus destination fan-out, update plus destination
// replacement) are atomic: a failure anywhere rolls the whole call back.
type Repository interface {
	Create(ctx context.Context, meta Meta, senderID int64, destinations []int64) (int64, error)
	UpdateDraft(ctx context.Context, id, senderID int64, meta Meta, destinations []int64) error
	AttachFile(ctx context.Context, id int64, data []byte, ext string) error
	GetDraft(ctx context.Context, id, senderID int64) (*Draft, error)
	GetDraftFile(ctx context.Context, id, senderID int64) (*File, error)
	SendDrafts(ctx context.Context, ids []int64, senderID int64, groupAdmin bool) (int64, error)
	MarkReceived(ctx context.Context, ids []int64) (int64, error)
	Approve(ctx context.Context, ids []int64) (int64, error)
	ListDrafts(ctx context.Context, senderID int64, p ListParams) ([]DraftRow, int64, error)
	ListSent(ctx context.Context, senderID int64, p ListParams) ([]SentRow, int64, error)
	ListInbox(ctx context.Context, groupID int64, isAdminGroup bool, p ListParams) ([]InboxRow, int64, error)
	ListPending(ctx context.Context) ([]PendingRow, error)
	GetDestinations(ctx context.Context, id int64) ([]GroupName, error)
	SentReportRows(ctx context.Context, senderID int64, p ListParams) ([]ReportRow, error)
}

// SettingsAPI supplies the server-wide paging number.
type SettingsAPI interface {
	PageSize() int
}

// Service owns the document lifecycle and the role-scoped listing views.
type Service struct {
	repo     Repository
	settings SettingsAPI
	events   *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, settings SettingsAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: settings,
		events:   bus,
		logger:   logger,
	}
}

// CreateDocument inserts a new draft with its destination fan-out.
func (s *Service) CreateDocument(ctx context.Context, identity *auth.Identity, dto CreateDocumentDTO) (int64, error) {
	meta, appErr := dto.Validate()
	if appErr != nil {
		s.logger.Error("document validation failed", "error", appErr, "user_id", identity.ID)
		return 0, appErr
	}

	id, err := s.repo.Create(ctx, meta, identity.ID, dto.Destinations)
	if err != nil {
		s.logger.Error("failed to create document", "error", err, "user_id", identity.ID)
		return 0, errors.NewInternalError("failed to create document", err)
	}

	s.logger.Info("document created",
		"document_id", id,
		"user_id", identity.ID,
		"destinations", len(dto.Destinations))

	return id, nil
}

// SaveDraft creates a new draft or updates an existing one, then stores the
// attachment when one was uploaded. Updating a draft fully replaces its
// destination set. Only the owning sender can update, and only while unsent.
func (s *Service) SaveDraft(ctx context.Context, identity *auth.Identity, dto SaveDocumentDTO) (int64, error) {
	meta, appErr := dto.Validate()
	if appErr != nil {
		s.logger.Error("draft validation failed", "error", appErr, "user_id", identity.ID)
		return 0, appErr
	}

	if dto.Attachment != nil {
		if appErr := validateAttachment(dto.Attachment); appErr != nil {
			return 0, appErr
		}
	}

	var docID int64
	if dto.ID != nil {
		docID = *dto.ID
		if err := s.repo.UpdateDraft(ctx, docID, identity.ID, meta, dto.Destinations); err != nil {
			if _, ok := errors.IsAppError(err); ok {
				return 0, err
			}
			s.logger.Error("failed to update draft", "error", err, "document_id", docID, "user_id", identity.ID)
			return 0, errors.NewInternalError("failed to update draft", err)
		}
		s.logger.Info("draft updated", "document_id", docID, "user_id", identity.ID)
	} else {
		var err error
		docID, err = s.repo.Create(ctx, meta, identity.ID, dto.Destinations)
		if err != nil {
			s.logger.Error("failed to create draft", "error", err, "user_id", identity.ID)
			return 0, errors.NewInternalError("failed to create draft", err)
		}
		s.logger.Info("draft created", "document_id", docID, "user_id", identity.ID)
	}

	if dto.Attachment != nil {
		if err := s.repo.AttachFile(ctx, docID, dto.Attachment.Data, dto.Attachment.Ext); err != nil {
			if _, ok := errors.IsAppError(err); ok {
				return 0, err
			}
			s.logger.Error("failed to store attachment", "error", err, "document_id", docID)
			return 0, errors.NewInternalError("failed to store attachment", err)
		}
	}

	return docID, nil
}

// SendDrafts flips the selected drafts to sent. Only drafts owned by the
// caller and still unsent are affected; anything else in the batch is
// silently excluded. Group-admin senders are auto-acknowledged in the same
// update.
func (s *Service) SendDrafts(ctx context.Context, identity *auth.Identity, dto SendDraftsDTO) (int64, error) {
	if appErr := dto.Validate(); appErr != nil {
		return 0, appErr
	}

	count, err := s.repo.SendDrafts(ctx, dto.DraftIDs, identity.ID, identity.IsGroupAdmin)
	if err != nil {
		s.logger.Error("failed to send drafts", "error", err, "user_id", identity.ID)
		return 0, errors.NewInternalError("failed to send drafts", err)
	}

	s.logger.Info("drafts sent",
		"user_id", identity.ID,
		"requested", len(dto.DraftIDs),
		"sent", count)

	if count > 0 && s.events != nil {
		s.events.Publish(ctx, events.NewDocumentsSentEvent(dto.DraftIDs, identity.ID, count))
	}

	return count, nil
}

// MarkReceived flags inbox documents as seen. Admin group only. Already
// received documents keep their original received_date.
func (s *Service) MarkReceived(ctx context.Context, identity *auth.Identity, dto MarkSeenDTO) (int64, error) {
	if !identity.IsAdminGroup {
		return 0, errors.ErrAdminGroupOnly
	}
	if appErr := dto.Validate(); appErr != nil {
		return 0, appErr
	}

	count, err := s.repo.MarkReceived(ctx, dto.InboxIDs)
	if err != nil {
		s.logger.Error("failed to mark documents received", "error", err, "user_id", identity.ID)
		return 0, errors.NewInternalError("failed to mark documents received", err)
	}

	if count > 0 && s.events != nil {
		s.events.Publish(ctx, events.NewDocumentsReceivedEvent(dto.InboxIDs, identity.ID))
	}

	return count, nil
}

// Approve releases documents to their destination groups. Admin group only.
// Re-approving is a no-op, never an error, and keeps the first approval date.
func (s *Service) Approve(ctx context.Context, identity *auth.Identity, dto ApproveBulkDTO) (int64, error) {
	if !identity.IsAdminGroup {
		return 0, errors.ErrAdminGroupOnly
	}
	if appErr := dto.Validate(); appErr != nil {
		return 0, appErr
	}

	count, err := s.repo.Approve(ctx, dto.IDs)
	if err != nil {
		s.logger.Error("failed to approve documents", "error", err, "user_id", identity.ID)
		return 0, errors.NewInternalError("failed to approve documents", err)
	}

	s.logger.Info("documents approved",
		"user_id", identity.ID,
		"requested", len(dto.IDs),
		"approved", count)

	if count > 0 && s.events != nil {
		s.events.Publish(ctx, events.NewDocumentsApprovedEvent(dto.IDs, identity.ID))
	}

	return count, nil
}

// ApproveOne approves a single document.
func (s *Service) ApproveOne(ctx context.Context, identity *auth.Identity, id int64) error {
	_, err := s.Approve(ctx, identity, ApproveBulkDTO{IDs: []int64{id}})
	return err
}

// GetDraft fetches a single draft for editing. Owner only, unsent only.
func (s *Service) GetDraft(ctx context.Context, identity *auth.Identity, id int64) (*Draft, error) {
	draft, err := s.repo.GetDraft(ctx, id, identity.ID)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to get draft", "error", err, "document_id", id, "user_id", identity.ID)
		return nil, errors.NewInternalError("failed to get draft", err)
	}

	if draft.HasFile {
		url := FileURLFor(draft.ID)
		draft.FileURL = &url
	}

	return draft, nil
}

// GetDraftFile fetches the attachment of an unsent draft. Owner only.
func (s *Service) GetDraftFile(ctx context.Context, identity *auth.Identity, id int64) (*File, error) {
	file, err := s.repo.GetDraftFile(ctx, id, identity.ID)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to get draft file", "error", err, "document_id", id, "user_id", identity.ID)
		return nil, errors.NewInternalError("failed to get draft file", err)
	}
	return file, nil
}

// Destinations lists the destination group names for a document.
func (s *Service) Destinations(ctx context.Context, id int64) ([]GroupName, error) {
	names, err := s.repo.GetDestinations(ctx, id)
	if err != nil {
		s.logger.Error("failed to get destinations", "error", err, "document_id", id)
		return nil, errors.NewInternalError("failed to get destinations", err)
	}
	return names, nil
}

// ListDrafts pages through the caller's unsent drafts, optionally bounded by
// creation date.
func (s *Service) ListDrafts(ctx context.Context, identity *auth.Identity, p ListParams) (Page[DraftRow], error) {
	p.Normalize(s.settings.PageSize())

	rows, total, err := s.repo.ListDrafts(ctx, identity.ID, p)
	if err != nil {
		s.logger.Error("failed to list drafts", "error", err, "user_id", identity.ID)
		return Page[DraftRow]{}, errors.NewInternalError("failed to list drafts", err)
	}

	return NewPage(rows, p.Page, p.PageSize, total), nil
}

// ListSent pages through the caller's sent documents, optionally bounded by
// sent date and filtered by destination group name.
func (s *Service) ListSent(ctx context.Context, identity *auth.Identity, p ListParams) (Page[SentRow], error) {
	p.Normalize(s.settings.PageSize())

	rows, total, err := s.repo.ListSent(ctx, identity.ID, p)
	if err != nil {
		s.logger.Error("failed to list sent documents", "error", err, "user_id", identity.ID)
		return Page[SentRow]{}, errors.NewInternalError("failed to list sent documents", err)
	}

	return NewPage(rows, p.Page, p.PageSize, total), nil
}

// ListInbox pages through sent documents visible to the caller's group. The
// admin group sees all sent mail except what group admins authored; other
// groups see only admin-released mail addressed to them.
func (s *Service) ListInbox(ctx context.Context, identity *auth.Identity, p ListParams) (Page[InboxRow], error) {
	p.Normalize(s.settings.PageSize())

	rows, total, err := s.repo.ListInbox(ctx, identity.GroupID, identity.IsAdminGroup, p)
	if err != nil {
		s.logger.Error("failed to list inbox", "error", err, "group_id", identity.GroupID)
		return Page[InboxRow]{}, errors.NewInternalError("failed to list inbox", err)
	}

	return NewPage(rows, p.Page, p.PageSize, total), nil
}

// ListPending returns the admin triage queue: received but not yet approved.
func (s *Service) ListPending(ctx context.Context, identity *auth.Identity) ([]PendingRow, error) {
	if !identity.IsAdminGroup {
		return nil, errors.ErrAdminGroupOnly
	}

	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.Error("failed to list pending documents", "error", err, "user_id", identity.ID)
		return nil, errors.NewInternalError("failed to list pending documents", err)
	}
	if rows == nil {
		rows = []PendingRow{}
	}
	return rows, nil
}

// SentReport renders the caller's sent documents into a PDF.
func (s *Service) SentReport(ctx context.Context, identity *auth.Identity, p ListParams) ([]byte, error) {
	rows, err := s.repo.SentReportRows(ctx, identity.ID, p)
	if err != nil {
		s.logger.Error("failed to load report rows", "error", err, "user_id", identity.ID)
		return nil, errors.NewInternalError("failed to load report rows", err)
	}

	pdf, err := RenderSentReport(rows, p.Start, p.End)
	if err != nil {
		s.logger.Error("failed to render report", "error", err, "user_id", identity.ID)
		return nil, errors.NewInternalError("failed to render report", err)
	}

	return pdf, nil
}

// validateAttachment rejects corrupt PDF uploads up front; other extensions
// are stored as-is.
func validateAttachment(a *Attachment) *errors.AppError {
	if !strings.EqualFold(a.Ext, ".pdf") {
		return nil
	}
	if _, err := api.PageCount(bytes.NewReader(a.Data), model.NewDefaultConfiguration()); err != nil {
		return errors.NewValidationFieldError("attachment", "attachment is not a readable PDF", errors.ErrCodeValidationFailed)
	}
	return nil
}
