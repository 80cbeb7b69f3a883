package paysliphandler

import (
	"errors"
	"net/http"

	"flexipayslip/internal/domain/draft"
	"flexipayslip/internal/domain/payslip"
	"flexipayslip/internal/domain/workbook"
	"flexipayslip/internal/transport/http/api"
	"flexipayslip/internal/transport/http/middleware"
)

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, draft.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "draft not found", reqID)
	case errors.Is(err, payslip.ErrUnknownKind):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, payslip.ErrIndexOutOfRange):
		api.Fail(w, http.StatusNotFound, "item_not_found", err.Error(), reqID)
	case errors.Is(err, payslip.ErrIncomplete):
		api.Fail(w, http.StatusUnprocessableEntity, "incomplete_document", err.Error(), reqID)
	case errors.Is(err, workbook.ErrUnsupportedFile):
		api.Fail(w, http.StatusBadRequest, "unsupported_file", err.Error(), reqID)
	case errors.Is(err, workbook.ErrParse):
		api.Fail(w, http.StatusBadRequest, "parse_error", err.Error(), reqID)
	case errors.Is(err, draft.ErrInvalidLogo):
		api.Fail(w, http.StatusBadRequest, "invalid_logo", err.Error(), reqID)
	case errors.Is(err, draft.ErrLogoTooLarge), errors.As(err, &maxErr):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "upload is too large", reqID)
	case errors.Is(err, draft.ErrUnknownTheme):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", reqID)
	}
}
