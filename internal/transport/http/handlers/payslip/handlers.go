package paysliphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"flexipayslip/internal/domain/draft"
	"flexipayslip/internal/domain/payslip"
	"flexipayslip/internal/domain/render"
	"flexipayslip/internal/transport/http/api"
	"flexipayslip/internal/transport/http/middleware"
	"flexipayslip/internal/transport/http/shared"
)

// Recorder receives render and import outcomes; the metrics collector
// satisfies it.
type Recorder interface {
	RecordRender(theme string, degradedSections []string, duration time.Duration)
	RecordImport(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordRender(string, []string, time.Duration) {}
func (noopRecorder) RecordImport(string) {}

type Handler struct {
	Drafts    *draft.Service
	Engine    *render.Engine
	Metrics   Recorder
	Logger    *slog.Logger
	MaxUpload int64
}

func NewHandler(drafts *draft.Service, engine *render.Engine, metrics Recorder, logger *slog.Logger, maxUpload int64) *Handler {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Drafts: drafts, Engine: engine, Metrics: metrics, Logger: logger, MaxUpload: maxUpload}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/themes", h.handleThemes)
	r.Get("/templates/workbook", h.handleTemplate)

	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDelete)
			r.Put("/company", h.handleCompany)
			r.Put("/employee", h.handleEmployee)
			r.Post("/reset", h.handleReset)
			r.Put("/theme", h.handleTheme)
			r.Put("/logo", h.handleSetLogo)
			r.Delete("/logo", h.handleClearLogo)
			r.Post("/import", h.handleImport)
			r.Get("/summary", h.handleSummary)
			r.Get("/payslip/{mode}", h.handlePayslip)
			r.Put("/{kind}", h.handleSetItems)
			r.Post("/{kind}", h.handleAppendItem)
			r.Put("/{kind}/{index}", h.handleReplaceItem)
			r.Delete("/{kind}/{index}", h.handleRemoveItem)
		})
	})
}

func (h *Handler) handleThemes(w http.ResponseWriter, r *http.Request) {
	api.Success(w, render.Themes(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	d, err := h.Drafts.Create(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, newDraftResponse(d), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.Drafts.Get(r.Context(), draftID(r))
	h.respond(w, r, d, err)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Drafts.Delete(r.Context(), draftID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCompany(w http.ResponseWriter, r *http.Request) {
	var payload companyRequest
	if !h.decode(w, r, &payload) {
		return
	}
	d, err := h.Drafts.SetCompanyInfo(r.Context(), draftID(r), payload.info())
	h.respond(w, r, d, err)
}

func (h *Handler) handleEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeeRequest
	if !h.decode(w, r, &payload) {
		return
	}
	d, err := h.Drafts.SetEmployeeInfo(r.Context(), draftID(r), payload.info())
	h.respond(w, r, d, err)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	d, err := h.Drafts.Reset(r.Context(), draftID(r))
	h.respond(w, r, d, err)
}

func (h *Handler) handleTheme(w http.ResponseWriter, r *http.Request) {
	var payload themeRequest
	if !h.decode(w, r, &payload) {
		return
	}
	d, err := h.Drafts.SetTheme(r.Context(), draftID(r), payload.Theme)
	h.respond(w, r, d, err)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	d, err := h.Drafts.Get(r.Context(), draftID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, payslip.Summarize(d.Document), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetItems(w http.ResponseWriter, r *http.Request) {
	kind, err := payslip.ParseItemKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var payload itemsRequest
	if !h.decode(w, r, &payload) {
		return
	}
	d, err := h.Drafts.SetItems(r.Context(), draftID(r), kind, payload.items())
	h.respond(w, r, d, err)
}

func (h *Handler) handleAppendItem(w http.ResponseWriter, r *http.Request) {
	kind, err := payslip.ParseItemKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var payload lineItemRequest
	if !h.decode(w, r, &payload) {
		return
	}
	d, err := h.Drafts.AppendLineItem(r.Context(), draftID(r), kind, payload.item())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, newDraftResponse(d), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReplaceItem(w http.ResponseWriter, r *http.Request) {
	kind, index, ok := h.itemTarget(w, r)
	if !ok {
		return
	}
	var payload lineItemRequest
	if !h.decode(w, r, &payload) {
		return
	}
	d, err := h.Drafts.ReplaceLineItem(r.Context(), draftID(r), kind, index, payload.item())
	h.respond(w, r, d, err)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	kind, index, ok := h.itemTarget(w, r)
	if !ok {
		return
	}
	d, err := h.Drafts.RemoveLineItem(r.Context(), draftID(r), kind, index)
	h.respond(w, r, d, err)
}

func (h *Handler) itemTarget(w http.ResponseWriter, r *http.Request) (payslip.ItemKind, int, bool) {
	kind, err := payslip.ParseItemKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, r, err)
		return "", 0, false
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{
			{Field: "index", Reason: "must be a whole number"},
		})
		return "", 0, false
	}
	return kind, index, true
}

// decode reads a JSON body into payload and runs its validation tags.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	reqID := middleware.GetRequestID(r.Context())
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.fail(w, r, err)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return false
	}
	v := shared.NewValidator()
	v.Struct(payload)
	return !v.Reject(w, reqID)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, d draft.Draft, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, newDraftResponse(d), middleware.GetRequestID(r.Context()))
}

func draftID(r *http.Request) string {
	return chi.URLParam(r, "draftID")
}
