package paysliphandler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"flexipayslip/internal/domain/draft"
	"flexipayslip/internal/domain/payslip"
	"flexipayslip/internal/domain/render"
	"flexipayslip/internal/domain/workbook"
	"flexipayslip/internal/transport/http/api"
	"flexipayslip/internal/transport/http/middleware"
	"flexipayslip/internal/transport/http/shared"
)

const multipartMemory = 8 << 20

var dispositions = map[string]string{
	"download": api.Attachment,
	"preview":  api.Inline,
	"print":    api.Inline,
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	disposition, ok := dispositions[chi.URLParam(r, "mode")]
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "payslip mode must be download, preview or print", reqID)
		return
	}
	d, err := h.Drafts.Get(r.Context(), draftID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !payslip.IsComplete(d.Document) {
		h.fail(w, r, payslip.ErrIncomplete)
		return
	}

	theme := d.Theme
	if override := strings.TrimSpace(r.URL.Query().Get("theme")); override != "" {
		v := shared.NewValidator()
		v.Struct(themeRequest{Theme: override})
		if v.Reject(w, reqID) {
			return
		}
		theme = override
	}

	start := time.Now()
	doc, err := h.Engine.Render(d.Document, theme, d.Logo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sections := make([]string, 0, len(doc.Degradations))
	for _, deg := range doc.Degradations {
		sections = append(sections, deg.Section)
	}
	h.Metrics.RecordRender(doc.Theme, sections, time.Since(start))
	if doc.Degraded() {
		w.Header().Set("X-Payslip-Degraded", strings.Join(sections, ","))
	}
	api.WriteFile(w, render.ContentType, disposition, doc.FileName(), doc.Bytes())
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := workbook.ExportTemplate()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.WriteFile(w, workbook.TemplateContentType, api.Attachment, workbook.TemplateFileName, data)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	name, data, ok := h.upload(w, r, "file", h.MaxUpload)
	if !ok {
		return
	}
	report, err := workbook.Import(name, data)
	if err != nil {
		if errors.Is(err, workbook.ErrUnsupportedFile) {
			h.Metrics.RecordImport("unsupported")
		} else {
			h.Metrics.RecordImport("parse_error")
		}
		h.Logger.Warn("workbook import rejected", "file", name, "err", err)
		h.fail(w, r, err)
		return
	}

	outcome := "ok"
	if len(report.Skipped) > 0 {
		outcome = "partial"
		for _, skipped := range report.Skipped {
			h.Logger.Warn("workbook row skipped", "file", name, "sheet", skipped.Sheet, "row", skipped.Row, "reason", skipped.Reason)
		}
	}

	d, err := h.Drafts.ApplyImport(r.Context(), draftID(r), report)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Metrics.RecordImport(outcome)
	api.Success(w, importResponse{Draft: newDraftResponse(d), Report: report}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetLogo(w http.ResponseWriter, r *http.Request) {
	_, data, ok := h.upload(w, r, "logo", draft.MaxLogoBytes)
	if !ok {
		return
	}
	d, err := h.Drafts.SetLogo(r.Context(), draftID(r), data)
	h.respond(w, r, d, err)
}

func (h *Handler) handleClearLogo(w http.ResponseWriter, r *http.Request) {
	d, err := h.Drafts.ClearLogo(r.Context(), draftID(r))
	h.respond(w, r, d, err)
}

// upload reads one multipart file field, refusing anything over limit bytes.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request, field string, limit int64) (string, []byte, bool) {
	reqID := middleware.GetRequestID(r.Context())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.fail(w, r, err)
			return "", nil, false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "expected a multipart form upload", reqID)
		return "", nil, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: field, Reason: "is required"}})
		return "", nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := readLimited(file, limit)
	if err != nil {
		h.fail(w, r, err)
		return "", nil, false
	}
	return header.Filename, data, true
}

func readLimited(file multipart.File, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(file)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &http.MaxBytesError{Limit: limit}
	}
	return data, nil
}
