package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chequeprint/internal/certified/models"
	"chequeprint/internal/certified/service"
	cbmodels "chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
	"chequeprint/pkg/platform/httputil"
	"chequeprint/pkg/platform/middleware/permission"
	request "chequeprint/pkg/platform/middleware/request"
	"chequeprint/pkg/requestcontext"
)

const (
	HeaderCertifiedLogID = "X-Certified-Log-Id"
	HeaderPageCount      = "X-Page-Count"
)

// Service defines the certified serial operations exposed over HTTP.
type Service interface {
	PreviewRange(ctx context.Context, branchID string, opts service.PreviewOptions) (*models.Preview, error)
	CommitRange(ctx context.Context, req models.CommitRequest) (*models.CheckLog, error)
	History(ctx context.Context, branchID string, limit int) ([]*models.CheckLog, error)
	StockLevel(ctx context.Context) (int64, error)
	AddStock(ctx context.Context, quantity int64) (int64, error)
	PrintBatch(ctx context.Context, logID uuid.UUID) (*models.CheckLog, *cbmodels.RenderableDocument, error)
}

// Handler handles certified cheque endpoints.
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

// Register mounts the certified routes. Receiving stock needs the certified
// permission; everything else needs only an operator.
func (h *Handler) Register(r chi.Router) {
	r.Route("/certified", func(r chi.Router) {
		r.Route("/branches/{branch}", func(r chi.Router) {
			r.Post("/preview", h.handlePreview)
			r.Post("/commit", h.handleCommit)
			r.Get("/history", h.handleHistory)
		})
		r.Get("/logs/{id}/print", h.handlePrint)
		r.Get("/stock", h.handleStock)
		r.With(permission.Require(requestcontext.PermissionCertified, h.logger)).Post("/stock", h.handleAddStock)
	})
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[PreviewRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	preview, err := h.service.PreviewRange(ctx, chi.URLParam(r, "branch"), service.PreviewOptions{
		CustomStartSerial: req.CustomStartSerial,
		NumberOfBooks:     req.NumberOfBooks,
	})
	if err != nil {
		h.fail(ctx, w, "certified preview failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPreviewResponse(preview))
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CommitRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	log, err := h.service.CommitRange(ctx, req.toModel(chi.URLParam(r, "branch")))
	if err != nil {
		h.fail(ctx, w, "certified commit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, log)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	logs, err := h.service.History(ctx, chi.URLParam(r, "branch"), limit)
	if err != nil {
		h.fail(ctx, w, "certified history failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{Logs: logs})
}

func (h *Handler) handlePrint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "log id must be a UUID"))
		return
	}
	log, doc, err := h.service.PrintBatch(ctx, id)
	if err != nil {
		h.fail(ctx, w, "certified print failed", err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set(HeaderCertifiedLogID, log.ID.String())
	w.Header().Set(HeaderPageCount, strconv.Itoa(doc.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		h.logger.ErrorContext(ctx, "failed to write certified document",
			"request_id", request.GetRequestID(ctx),
			"log_id", log.ID.String(),
			"error", err,
		)
	}
}

func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	level, err := h.service.StockLevel(ctx)
	if err != nil {
		h.fail(ctx, w, "certified stock read failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StockResponse{Available: level})
}

func (h *Handler) handleAddStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AddStockRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	level, err := h.service.AddStock(ctx, req.Quantity)
	if err != nil {
		h.fail(ctx, w, "certified stock add failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StockResponse{Available: level})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{"request_id", request.GetRequestID(ctx), "error", err}
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
