package document

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	errors "github.com/haddadrachelle2-png/testdoc/internal"
	"github.com/haddadrachelle2-png/testdoc/internal/auth"
	"github.com/haddadrachelle2-png/testdoc/internal/transport"
)

// Handler exposes the document lifecycle and listing endpoints.
type Handler struct {
	*transport.BaseHandler
	service      *Service
	maxFileBytes int64
}

func NewHandler(service *Service, maxFileBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(logger),
		service:      service,
		maxFileBytes: maxFileBytes,
	}
}

// Create handles POST /api/documents/create
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.CreateDocument(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      id,
		"message": "Document created",
	})
}

// Save handles POST /api/documents/save. The body is multipart form data so
// the metadata and the optional attachment travel in one request.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileBytes)
	if err := r.ParseMultipartForm(h.maxFileBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	dto, appErr := h.saveDTOFromForm(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	id, err := h.service.SaveDraft(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if dto.ID != nil {
		status = http.StatusOK
	}
	h.WriteJSON(w, status, map[string]interface{}{
		"id":      id,
		"message": "Draft saved",
	})
}

func (h *Handler) saveDTOFromForm(r *http.Request) (SaveDocumentDTO, *errors.AppError) {
	numberPapers, _ := strconv.Atoi(r.FormValue("number_papers"))

	dto := SaveDocumentDTO{
		CreateDocumentDTO: CreateDocumentDTO{
			Title:          r.FormValue("title"),
			Content:        r.FormValue("content"),
			DocNum:         r.FormValue("doc_num"),
			DocDate:        r.FormValue("doc_date"),
			NumberPapers:   numberPapers,
			SendPaper:      parseFormBool(r.FormValue("send_paper")),
			SendElectronic: parseFormBool(r.FormValue("send_electronic")),
			Remarks:        r.FormValue("remarks"),
			IsPersonal:     parseFormBool(r.FormValue("is_personal")),
			Destinations:   ParseDestinationList(r.FormValue("destinations")),
		},
	}

	if raw := r.FormValue("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return dto, errors.NewValidationFieldError("id", "id must be a positive integer", errors.ErrCodeValidationFailed)
		}
		dto.ID = &id
	}

	file, header, err := r.FormFile("attachment")
	if err == http.ErrMissingFile {
		return dto, nil
	}
	if err != nil {
		return dto, errors.NewValidationFieldError("attachment", "could not read attachment", errors.ErrCodeValidationFailed)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return dto, errors.NewValidationFieldError("attachment", "could not read attachment", errors.ErrCodeValidationFailed)
	}

	dto.Attachment = &Attachment{
		Data: data,
		Ext:  strings.ToLower(filepath.Ext(header.Filename)),
	}
	return dto, nil
}

func parseFormBool(raw string) bool {
	v, _ := strconv.ParseBool(raw)
	return v
}

// Send handles POST /api/documents/send
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto SendDraftsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count, err := h.service.SendDrafts(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sent":    count,
		"message": fmt.Sprintf("%d document(s) sent", count),
	})
}

// MarkSeen handles POST /api/documents/markseen
func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto MarkSeenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count, err := h.service.MarkReceived(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"received": count,
		"message":  fmt.Sprintf("%d document(s) marked as received", count),
	})
}

// ApproveBulk handles POST /api/documents/approve-bulk
func (h *Handler) ApproveBulk(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto ApproveBulkDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count, err := h.service.Approve(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"approved": count,
		"message":  fmt.Sprintf("%d document(s) approved", count),
	})
}

// Approve handles POST /api/documents/approve/{id}
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, appErr := h.pathID(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	if err := h.service.ApproveOne(r.Context(), identity, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Document approved",
	})
}

// GetDraft handles GET /api/documents/{id}
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, appErr := h.pathID(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	draft, err := h.service.GetDraft(r.Context(), identity, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, draft)
}

// GetFile handles GET /api/documents/{id}/file and streams the stored
// attachment back inline under its derived file name.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, appErr := h.pathID(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	file, err := h.service.GetDraftFile(r.Context(), identity, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(file))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		h.Logger.Error("failed to write attachment", "error", err, "document_id", id)
	}
}

func contentTypeFor(f *File) string {
	switch strings.ToLower(f.Ext) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return http.DetectContentType(f.Data)
}

// Destinations handles GET /api/documents/{id}/destinations
func (h *Handler) Destinations(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.pathID(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	names, err := h.service.Destinations(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, names)
}

// ListDrafts handles GET /api/documents/drafts
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	params, appErr := listParamsFromQuery(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	page, err := h.service.ListDrafts(r.Context(), identity, params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

// ListSent handles GET /api/documents/sent
func (h *Handler) ListSent(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	params, appErr := listParamsFromQuery(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	page, err := h.service.ListSent(r.Context(), identity, params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

// ListInbox handles GET /api/documents/inbox
func (h *Handler) ListInbox(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	params, appErr := listParamsFromQuery(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	page, err := h.service.ListInbox(r.Context(), identity, params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

// ListPending handles GET /api/documents/pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	rows, err := h.service.ListPending(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rows)
}

// SentReport handles GET /api/documents/sent/report
func (h *Handler) SentReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	params, appErr := listParamsFromQuery(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	pdf, err := h.service.SentReport(r.Context(), identity, params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="sent-report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.Logger.Error("failed to write report", "error", err)
	}
}

func (h *Handler) pathID(r *http.Request) (int64, *errors.AppError) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationFieldError("id", "id must be a positive integer", errors.ErrCodeValidationFailed)
	}
	return id, nil
}

func listParamsFromQuery(r *http.Request) (ListParams, *errors.AppError) {
	q := r.URL.Query()

	start, appErr := ParseDateBound(q.Get("start"))
	if appErr != nil {
		return ListParams{}, appErr
	}
	end, appErr := ParseDateBound(q.Get("end"))
	if appErr != nil {
		return ListParams{}, appErr
	}

	page, _ := strconv.Atoi(q.Get("page"))

	return ListParams{
		Start:       start,
		End:         end,
		Destination: q.Get("destination"),
		Page:        page,
	}, nil
}
