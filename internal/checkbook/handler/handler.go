package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"chequeprint/internal/checkbook/models"
	"chequeprint/internal/checkbook/service"
	dErrors "chequeprint/pkg/domain-errors"
	"chequeprint/pkg/platform/httputil"
	request "chequeprint/pkg/platform/middleware/request"
)

const (
	HeaderPrintLogID = "X-Print-Log-Id"
	HeaderPageCount  = "X-Page-Count"
)

// Service defines the checkbook operations exposed over HTTP.
type Service interface {
	Query(ctx context.Context, accountNumber string) (*service.QueryView, error)
	Preview(ctx context.Context, req service.PrintRequest) (*service.PreviewView, error)
	Print(ctx context.Context, req service.PrintRequest) (*service.PrintResult, error)
	History(ctx context.Context, accountNumber string) ([]*models.PrintLogEntry, error)
}

// Handler handles checkbook endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: svc,
	}
}

// Register mounts the checkbook routes. Authentication middleware is applied
// by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/checkbooks/{account}", func(r chi.Router) {
		r.Get("/", h.handleQuery)
		r.Post("/preview", h.handlePreview)
		r.Post("/print", h.handlePrint)
		r.Get("/history", h.handleHistory)
	})
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.Query(ctx, chi.URLParam(r, "account"))
	if err != nil {
		h.fail(ctx, w, "checkbook query failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toQueryResponse(view))
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[PrintRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.Preview(ctx, req.toService(chi.URLParam(r, "account")))
	if err != nil {
		h.fail(ctx, w, "checkbook preview failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handlePrint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[PrintRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.Print(ctx, req.toService(chi.URLParam(r, "account")))
	if err != nil {
		h.fail(ctx, w, "checkbook print failed", err)
		return
	}
	w.Header().Set("Content-Type", res.Document.ContentType)
	w.Header().Set(HeaderPrintLogID, res.Log.ID.String())
	w.Header().Set(HeaderPageCount, strconv.Itoa(res.Document.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Document.Body); err != nil {
		h.logger.ErrorContext(ctx, "failed to write print document",
			"request_id", request.GetRequestID(ctx),
			"log_id", res.Log.ID.String(),
			"error", err,
		)
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.service.History(ctx, chi.URLParam(r, "account"))
	if err != nil {
		h.fail(ctx, w, "checkbook history failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := httputil.StatusFor(dErrors.CodeOf(err))
	attrs := []any{"request_id", request.GetRequestID(ctx), "error", err}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
