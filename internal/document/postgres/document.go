package postgres

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	errors "github.com/haddadrachelle2-png/testdoc/internal"
	datamodel "github.com/haddadrachelle2-png/testdoc/internal/core/datamodel/document"
	"github.com/haddadrachelle2-png/testdoc/internal/document"
)

// DocumentRepository implements the document.Repository interface using GORM.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) document.Repository {
	return &DocumentRepository{db: db}
}

// Create inserts the document row and its destination fan-out in one
// transaction.
func (r *DocumentRepository) Create(ctx context.Context, meta document.Meta, senderID int64, destinations []int64) (int64, error) {
	doc := datamodel.Document{
		Title:          meta.Title,
		Content:        meta.Content,
		DocNum:         meta.DocNum,
		DocDate:        meta.DocDate,
		NumberPapers:   meta.NumberPapers,
		SendPaper:      meta.SendPaper,
		SendElectronic: meta.SendElectronic,
		Remarks:        meta.Remarks,
		IsPersonal:     meta.IsPersonal,
		SenderID:       senderID,
		CreatedAt:      time.Now(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		return insertDestinations(tx, doc.ID, destinations)
	})
	if err != nil {
		return 0, err
	}
	return doc.ID, nil
}

// UpdateDraft rewrites a draft's metadata and fully replaces its destination
// set. The predicate pins the row to the owning sender and the unsent state;
// zero rows affected means no such draft exists for this caller.
func (r *DocumentRepository) UpdateDraft(ctx context.Context, id, senderID int64, meta document.Meta, destinations []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&datamodel.Document{}).
			Where("id = ? AND sender_id = ? AND is_sent = ?", id, senderID, false).
			Updates(map[string]interface{}{
				"title":           meta.Title,
				"content":         meta.Content,
				"doc_num":         meta.DocNum,
				"doc_date":        meta.DocDate,
				"number_papers":   meta.NumberPapers,
				"send_paper":      meta.SendPaper,
				"send_electronic": meta.SendElectronic,
				"remarks":         meta.Remarks,
				"is_personal":     meta.IsPersonal,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrDraftNotFound
		}

		if err := tx.Where("document_id = ?", id).
			Delete(&datamodel.Destination{}).Error; err != nil {
			return err
		}
		return insertDestinations(tx, id, destinations)
	})
}

func insertDestinations(tx *gorm.DB, documentID int64, destinations []int64) error {
	if len(destinations) == 0 {
		return nil
	}
	rows := make([]datamodel.Destination, 0, len(destinations))
	seen := make(map[int64]bool, len(destinations))
	for _, groupID := range destinations {
		if seen[groupID] {
			continue
		}
		seen[groupID] = true
		rows = append(rows, datamodel.Destination{DocumentID: documentID, GroupID: groupID})
	}
	return tx.Create(&rows).Error
}

// AttachFile stores the attachment bytes on an unsent draft.
func (r *DocumentRepository) AttachFile(ctx context.Context, id int64, data []byte, ext string) error {
	res := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Where("id = ? AND is_sent = ?", id, false).
		Updates(map[string]interface{}{
			"doc_file": data,
			"doc_ext":  ext,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrDraftNotFound
	}
	return nil
}

// GetDraft loads a single unsent draft owned by the sender, without the
// attachment payload.
func (r *DocumentRepository) GetDraft(ctx context.Context, id, senderID int64) (*document.Draft, error) {
	var row struct {
		datamodel.Document
		HasFile bool
	}

	err := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Select("documents.*, doc_file IS NOT NULL AND length(doc_file) > 0 AS has_file").
		Where("id = ? AND sender_id = ? AND is_sent = ?", id, senderID, false).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrDraftNotFound
		}
		return nil, err
	}

	var dests []int64
	if err := r.db.WithContext(ctx).Model(&datamodel.Destination{}).
		Where("document_id = ?", id).
		Order("group_id").
		Pluck("group_id", &dests).Error; err != nil {
		return nil, err
	}
	if dests == nil {
		dests = []int64{}
	}

	return &document.Draft{
		ID:             row.ID,
		Title:          row.Title,
		Content:        row.Content,
		DocNum:         row.DocNum,
		DocDate:        row.DocDate,
		NumberPapers:   row.NumberPapers,
		SendPaper:      row.SendPaper,
		SendElectronic: row.SendElectronic,
		Remarks:        row.Remarks,
		IsPersonal:     row.IsPersonal,
		SenderID:       row.SenderID,
		CreatedAt:      row.CreatedAt,
		IsSent:         row.IsSent,
		SentAt:         row.SentAt,
		AdminView:      row.AdminView,
		AdminViewDate:  row.AdminViewDate,
		IsReceived:     row.IsReceived,
		ReceivedDate:   row.ReceivedDate,
		HasFile:        row.HasFile,
		DocExt:         row.DocExt,
		Destinations:   dests,
	}, nil
}

// GetDraftFile loads the attachment of an unsent draft owned by the sender.
func (r *DocumentRepository) GetDraftFile(ctx context.Context, id, senderID int64) (*document.File, error) {
	var row datamodel.Document
	err := r.db.WithContext(ctx).
		Select("doc_file", "doc_ext", "doc_num").
		Where("id = ? AND sender_id = ? AND is_sent = ?", id, senderID, false).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrDraftNotFound
		}
		return nil, err
	}
	if len(row.DocFile) == 0 {
		return nil, errors.ErrFileNotFound
	}

	ext := ""
	if row.DocExt != nil {
		ext = *row.DocExt
	}
	return &document.File{Data: row.DocFile, Ext: ext, DocNum: row.DocNum}, nil
}

// SendDrafts marks the caller's unsent drafts in the batch as sent. IDs the
// caller does not own, or already sent, simply fall out of the predicate.
// Group-admin senders skip admin triage, so their mail is released in the
// same statement.
func (r *DocumentRepository) SendDrafts(ctx context.Context, ids []int64, senderID int64, groupAdmin bool) (int64, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"is_sent": true,
		"sent_at": now,
	}
	if groupAdmin {
		updates["admin_view"] = true
		updates["admin_view_date"] = now
	}

	res := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Where("id IN ? AND sender_id = ? AND is_sent = ?", ids, senderID, false).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// MarkReceived flags the documents as received. Already received rows are
// excluded so a repeat call cannot move received_date.
func (r *DocumentRepository) MarkReceived(ctx context.Context, ids []int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Where("id IN ? AND is_sent = ? AND is_received = ?", ids, true, false).
		Updates(map[string]interface{}{
			"is_received":   true,
			"received_date": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// Approve releases the documents to their destination groups. Already
// approved rows are excluded, keeping the first approval date.
func (r *DocumentRepository) Approve(ctx context.Context, ids []int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Where("id IN ? AND is_sent = ? AND admin_view = ?", ids, true, false).
		Updates(map[string]interface{}{
			"admin_view":      true,
			"admin_view_date": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// ListDrafts pages the sender's unsent drafts, newest first.
func (r *DocumentRepository) ListDrafts(ctx context.Context, senderID int64, p document.ListParams) ([]document.DraftRow, int64, error) {
	q := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Where("sender_id = ? AND is_sent = ?", senderID, false)
	q = applyDateRange(q, "created_at", p.Start, p.End)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []datamodel.Document
	if err := q.Order("id DESC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Omit("doc_file").
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]document.DraftRow, len(docs))
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		rows[i] = document.DraftRow{
			ID:             d.ID,
			DocNum:         d.DocNum,
			DocDate:        d.DocDate,
			NumberPapers:   d.NumberPapers,
			SendPaper:      d.SendPaper,
			SendElectronic: d.SendElectronic,
			Remarks:        d.Remarks,
			IsPersonal:     d.IsPersonal,
			Title:          d.Title,
			Content:        d.Content,
			SenderID:       d.SenderID,
			CreatedAt:      d.CreatedAt,
			IsSent:         d.IsSent,
			SentAt:         d.SentAt,
			AdminView:      d.AdminView,
			AdminViewDate:  d.AdminViewDate,
			IsReceived:     d.IsReceived,
			ReceivedDate:   d.ReceivedDate,
		}
	}

	names, err := r.destinationNames(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range rows {
		rows[i].Destinations = names[rows[i].ID]
	}

	return rows, total, nil
}

// ListSent pages the sender's sent documents, most recently sent first, with
// an optional destination-group-name filter.
func (r *DocumentRepository) ListSent(ctx context.Context, senderID int64, p document.ListParams) ([]document.SentRow, int64, error) {
	q := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Where("sender_id = ? AND is_sent = ?", senderID, true)
	q = applyDateRange(q, "sent_at", p.Start, p.End)

	if p.Destination != "" {
		q = q.Where(`EXISTS (
			SELECT 1 FROM document_destinations dd
			JOIN groups g ON g.id = dd.group_id
			WHERE dd.document_id = documents.id AND g.name = ?)`,
			p.Destination)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []datamodel.Document
	if err := q.Order("sent_at DESC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Omit("doc_file").
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]document.SentRow, len(docs))
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		rows[i] = document.SentRow{
			ID:        d.ID,
			Title:     d.Title,
			CreatedAt: d.CreatedAt,
			SentAt:    d.SentAt,
		}
	}

	names, err := r.destinationNames(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range rows {
		rows[i].Destinations = names[rows[i].ID]
	}

	return rows, total, nil
}

type inboxScan struct {
	datamodel.Document
	SenderName   string
	IsAdminGroup bool
}

// ListInbox pages the sent documents visible to the caller's group. The
// admin group triages everything sent by non-group-admins; every other group
// sees only admin-released documents addressed to it.
func (r *DocumentRepository) ListInbox(ctx context.Context, groupID int64, isAdminGroup bool, p document.ListParams) ([]document.InboxRow, int64, error) {
	q := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Joins("JOIN users u ON u.id = documents.sender_id").
		Joins("JOIN groups sg ON sg.id = u.group_id").
		Where("documents.is_sent = ?", true)

	if isAdminGroup {
		q = q.Where("u.is_group_admin = ?", false)
	} else {
		q = q.Where("documents.admin_view = ?", true).
			Where(`EXISTS (
				SELECT 1 FROM document_destinations dd
				WHERE dd.document_id = documents.id AND dd.group_id = ?)`, groupID)
	}
	q = applyDateRange(q, "documents.created_at", p.Start, p.End)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var scans []inboxScan
	if err := q.Select("documents.*, sg.name AS sender_name, sg.is_admin_group AS is_admin_group").
		Order("documents.created_at DESC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Omit("doc_file").
		Find(&scans).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]document.InboxRow, len(scans))
	ids := make([]int64, len(scans))
	for i, s := range scans {
		ids[i] = s.ID
		rows[i] = document.InboxRow{
			ID:           s.ID,
			Title:        s.Title,
			Content:      s.Content,
			CreatedAt:    s.CreatedAt,
			SenderID:     s.SenderID,
			SenderName:   s.SenderName,
			SentAt:       s.SentAt,
			IsReceived:   s.IsReceived,
			IsAdminGroup: s.IsAdminGroup,
		}
	}

	names, err := r.destinationNames(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range rows {
		rows[i].Destinations = names[rows[i].ID]
	}

	return rows, total, nil
}

type pendingScan struct {
	datamodel.Document
	SenderName string
}

// ListPending returns the admin triage queue, unpaginated: received but not
// yet released.
func (r *DocumentRepository) ListPending(ctx context.Context) ([]document.PendingRow, error) {
	var scans []pendingScan
	err := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Select("documents.id, documents.title, documents.content, documents.created_at, documents.sender_id, sg.name AS sender_name").
		Joins("JOIN users u ON u.id = documents.sender_id").
		Joins("JOIN groups sg ON sg.id = u.group_id").
		Where("documents.is_received = ? AND documents.admin_view = ?", true, false).
		Order("documents.created_at DESC").
		Find(&scans).Error
	if err != nil {
		return nil, err
	}

	rows := make([]document.PendingRow, len(scans))
	for i, s := range scans {
		rows[i] = document.PendingRow{
			ID:         s.ID,
			Title:      s.Title,
			Content:    s.Content,
			CreatedAt:  s.CreatedAt,
			SenderID:   s.SenderID,
			SenderName: s.SenderName,
		}
	}
	return rows, nil
}

// GetDestinations lists the destination group names of a document, sorted.
func (r *DocumentRepository) GetDestinations(ctx context.Context, id int64) ([]document.GroupName, error) {
	var names []string
	err := r.db.WithContext(ctx).Table("document_destinations dd").
		Joins("JOIN groups g ON g.id = dd.group_id").
		Where("dd.document_id = ?", id).
		Order("g.name").
		Pluck("g.name", &names).Error
	if err != nil {
		return nil, err
	}

	out := make([]document.GroupName, len(names))
	for i, n := range names {
		out[i] = document.GroupName{Name: n}
	}
	return out, nil
}

// SentReportRows loads every sent document of the sender in the range, no
// paging, for the PDF report.
func (r *DocumentRepository) SentReportRows(ctx context.Context, senderID int64, p document.ListParams) ([]document.ReportRow, error) {
	q := r.db.WithContext(ctx).Model(&datamodel.Document{}).
		Where("sender_id = ? AND is_sent = ?", senderID, true)
	q = applyDateRange(q, "sent_at", p.Start, p.End)

	var docs []datamodel.Document
	if err := q.Order("sent_at DESC").
		Omit("doc_file").
		Find(&docs).Error; err != nil {
		return nil, err
	}

	rows := make([]document.ReportRow, len(docs))
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		rows[i] = document.ReportRow{
			ID:        d.ID,
			Title:     d.Title,
			Content:   d.Content,
			CreatedAt: d.CreatedAt,
			SentAt:    d.SentAt,
		}
	}

	names, err := r.destinationNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Destinations = names[rows[i].ID]
	}

	return rows, nil
}

type destinationNameRow struct {
	DocumentID int64
	Name       string
}

// destinationNames aggregates destination group names per document for one
// page of ids. The join is done in Go so the listing SQL stays portable
// across postgres and the sqlite test store.
func (r *DocumentRepository) destinationNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []destinationNameRow
	err := r.db.WithContext(ctx).Table("document_destinations dd").
		Select("dd.document_id AS document_id, g.name AS name").
		Joins("JOIN groups g ON g.id = dd.group_id").
		Where("dd.document_id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]string, len(ids))
	for _, row := range rows {
		grouped[row.DocumentID] = append(grouped[row.DocumentID], row.Name)
	}
	for id, names := range grouped {
		sort.Strings(names)
		out[id] = strings.Join(names, ", ")
	}
	return out, nil
}

func applyDateRange(q *gorm.DB, column string, start, end *time.Time) *gorm.DB {
	if start != nil {
		q = q.Where(column+" >= ?", *start)
	}
	if end != nil {
		q = q.Where(column+" < ?", end.AddDate(0, 0, 1))
	}
	return q
}
