// Package service owns certified serial allocation. The branch high-water
// mark is written only inside CommitRange's atomic unit.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"chequeprint/internal/certified/metrics"
	"chequeprint/internal/certified/models"
	cbmodels "chequeprint/internal/checkbook/models"
	"chequeprint/internal/checkbook/printmodel"
	"chequeprint/internal/outbox"
	dErrors "chequeprint/pkg/domain-errors"
	"chequeprint/pkg/platform/sentinel"
	"chequeprint/pkg/requestcontext"
)

// SerialStore holds each branch's high-water mark.
type SerialStore interface {
	LastSerial(ctx context.Context, branchID string) (int64, error)
	// LockLastSerial reads the mark and excludes concurrent writers until
	// the surrounding unit ends.
	LockLastSerial(ctx context.Context, branchID string) (int64, error)
	Advance(ctx context.Context, branchID string, lastSerial int64) error
}

// StockStore is the certified leaf inventory.
type StockStore interface {
	Available(ctx context.Context) (int64, error)
	Deduct(ctx context.Context, quantity int64) error
	Add(ctx context.Context, quantity int64) error
}

type LogStore interface {
	Append(ctx context.Context, log *models.CheckLog) error
	Get(ctx context.Context, id uuid.UUID) (*models.CheckLog, error)
	// MarkServed returns sentinel.ErrConflict when the log was already served.
	MarkServed(ctx context.Context, id uuid.UUID, by string, at time.Time) error
	LastCommitted(ctx context.Context, branchID string) (*models.CheckLog, error)
	ListByBranch(ctx context.Context, branchID string, limit int) ([]*models.CheckLog, error)
}

type OutboxAppender interface {
	Append(ctx context.Context, event outbox.Event) error
}

// Stores groups the collaborators that take part in a commit.
type Stores struct {
	Serials SerialStore
	Stock   StockStore
	Logs    LogStore
	Outbox  OutboxAppender
}

type BranchReader interface {
	Get(ctx context.Context, id string) (*cbmodels.Branch, error)
}

// BatchPrinter lays out and renders a certified batch.
type BatchPrinter interface {
	PrintCertified(ctx context.Context, batch printmodel.CertifiedBatch, branch *cbmodels.Branch) (*cbmodels.CheckbookPrintModel, *cbmodels.RenderableDocument, error)
}

const (
	tracerName          = "chequeprint/certified"
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type Service struct {
	stores   Stores
	tx       StoreTx
	branches BranchReader
	printer  BatchPrinter
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(stores Stores, tx StoreTx, branches BranchReader, printer BatchPrinter, opts ...Option) *Service {
	s := &Service{
		stores:   stores,
		tx:       tx,
		branches: branches,
		printer:  printer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewOptions are the operator's live inputs. CustomStartSerial <= 0 means
// continue from the branch's last committed serial.
type PreviewOptions struct {
	CustomStartSerial int64
	NumberOfBooks     int
}

// PreviewRange proposes the next range without writing anything, so it can
// be called on every keystroke.
func (s *Service) PreviewRange(ctx context.Context, branchID string, opts PreviewOptions) (*models.Preview, error) {
	if _, err := s.requireBranch(ctx, branchID); err != nil {
		return nil, err
	}
	hwm, err := s.stores.Serials.LastSerial(ctx, branchID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read branch serial")
	}

	first := hwm + 1
	overridden := opts.CustomStartSerial > 0
	if overridden {
		first = opts.CustomStartSerial
	}
	rng, err := models.NewSerialRange(branchID, first, opts.NumberOfBooks)
	if err != nil {
		return nil, err
	}

	preview := &models.Preview{Range: rng, Overridden: overridden}

	last, err := s.stores.Logs.LastCommitted(ctx, branchID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read last committed range")
	default:
		lr := last.Range()
		preview.LastCommitted = &lr
		preview.OverlapsLast = rng.Overlaps(lr)
	}

	available, err := s.stores.Stock.Available(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read certified stock")
	}
	preview.StockAvailable = available

	if preview.OverlapsLast {
		preview.Warnings = append(preview.Warnings, fmt.Sprintf(
			"serials %d-%d overlap the last committed range %d-%d",
			rng.FirstSerial, rng.LastSerial, preview.LastCommitted.FirstSerial, preview.LastCommitted.LastSerial))
	} else if overridden && first <= hwm {
		preview.Warnings = append(preview.Warnings, fmt.Sprintf(
			"custom start %d is at or below the branch's last issued serial %d", first, hwm))
	}
	if available < rng.TotalChecks() {
		preview.Warnings = append(preview.Warnings, fmt.Sprintf(
			"only %d certified leaves in stock, %d needed", available, rng.TotalChecks()))
	}
	return preview, nil
}

type committedEvent struct {
	LogID         string    `json:"log_id"`
	BranchID      string    `json:"branch_id"`
	FirstSerial   int64     `json:"first_serial"`
	LastSerial    int64     `json:"last_serial"`
	NumberOfBooks int       `json:"number_of_books"`
	Operation     string    `json:"operation_type"`
	Overridden    bool      `json:"overridden"`
	PrintedBy     string    `json:"printed_by"`
	PrintDate     time.Time `json:"print_date"`
}

// CommitRange makes a previewed range permanent. Stock deduction, the log
// row, the high-water mark and the outbox event commit as one unit.
//
// Without an override the range must start exactly at the branch's next
// serial; otherwise another commit got there first and the caller gets
// CodeSerialConflict. Overrides are trusted and may overlap earlier ranges,
// but never move the high-water mark backwards.
func (s *Service) CommitRange(ctx context.Context, req models.CommitRequest) (*models.CheckLog, error) {
	operator := requestcontext.OperatorID(ctx)
	if operator == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "an authenticated operator is required to commit certified serials")
	}
	op := req.OperationType
	if op == "" {
		op = cbmodels.OperationPrint
	}
	if op == cbmodels.OperationReprint {
		if !requestcontext.HasPermission(ctx, requestcontext.PermissionReprint) {
			return nil, dErrors.New(dErrors.CodeForbidden, "reprinting certified serials requires the cheque:reprint permission")
		}
		if !req.Override || req.Notes == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "a certified reprint needs the original start serial and a reason in notes")
		}
	}
	rng, err := models.NewSerialRange(req.BranchID, req.FirstSerial, req.NumberOfBooks)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireBranch(ctx, req.BranchID); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "certified.CommitRange")
	defer span.End()
	span.SetAttributes(
		attribute.String("branch_id", rng.BranchID),
		attribute.Int64("first_serial", rng.FirstSerial),
		attribute.Int("number_of_books", rng.NumberOfBooks),
		attribute.Bool("override", req.Override),
	)

	start := time.Now()
	log := &models.CheckLog{
		ID:            uuid.New(),
		BranchID:      rng.BranchID,
		FirstSerial:   rng.FirstSerial,
		LastSerial:    rng.LastSerial,
		TotalChecks:   rng.TotalChecks(),
		NumberOfBooks: rng.NumberOfBooks,
		OperationType: op,
		PrintedBy:     operator,
		PrintDate:     requestcontext.Now(ctx),
		Notes:         req.Notes,
	}
	if req.Override {
		custom := rng.FirstSerial
		log.CustomStartSerial = &custom
	}

	err = s.tx.RunInTx(withTxBranch(ctx, rng.BranchID), func(ctx context.Context, st Stores) error {
		hwm, err := st.Serials.LockLastSerial(ctx, rng.BranchID)
		if err != nil {
			return err
		}
		if !req.Override && rng.FirstSerial != hwm+1 {
			return dErrors.New(dErrors.CodeSerialConflict, fmt.Sprintf(
				"serial %d is no longer next for this branch (next is %d); range already allocated, refresh the preview and retry",
				rng.FirstSerial, hwm+1))
		}
		if err := st.Stock.Deduct(ctx, rng.TotalChecks()); err != nil {
			if errors.Is(err, sentinel.ErrInsufficient) {
				return dErrors.New(dErrors.CodeInsufficientStock, fmt.Sprintf(
					"insufficient certified cheque stock for %d leaves, add inventory first", rng.TotalChecks()))
			}
			return err
		}
		if err := st.Logs.Append(ctx, log); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeSerialConflict, fmt.Sprintf(
					"a batch starting at serial %d was already committed for this branch; refresh the preview and retry",
					rng.FirstSerial))
			}
			return err
		}
		if op == cbmodels.OperationPrint && rng.LastSerial > hwm {
			if err := st.Serials.Advance(ctx, rng.BranchID, rng.LastSerial); err != nil {
				return err
			}
		}
		event, err := outbox.NewEvent(outbox.AggregateBranch, rng.BranchID, outbox.EventCertifiedCommitted, committedEvent{
			LogID:         log.ID.String(),
			BranchID:      log.BranchID,
			FirstSerial:   log.FirstSerial,
			LastSerial:    log.LastSerial,
			NumberOfBooks: log.NumberOfBooks,
			Operation:     string(op),
			Overridden:    req.Override,
			PrintedBy:     operator,
			PrintDate:     log.PrintDate,
		}, log.PrintDate)
		if err != nil {
			return err
		}
		return st.Outbox.Append(ctx, event)
	})
	s.metrics.ObserveCommitDuration(time.Since(start))
	if err != nil {
		err = s.commitError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		switch dErrors.CodeOf(err) {
		case dErrors.CodeSerialConflict:
			s.metrics.IncSerialConflict()
		case dErrors.CodeInsufficientStock:
			s.metrics.IncInsufficientStock()
		}
		s.logger.WarnContext(ctx, "certified commit refused",
			"branch_id", rng.BranchID,
			"first_serial", rng.FirstSerial,
			"number_of_books", rng.NumberOfBooks,
			"code", string(dErrors.CodeOf(err)),
			"error", err,
		)
		return nil, err
	}

	s.metrics.AddBooksCommitted(string(op), rng.NumberOfBooks)
	s.logger.InfoContext(ctx, "certified range committed",
		"log_id", log.ID.String(),
		"branch_id", log.BranchID,
		"first_serial", log.FirstSerial,
		"last_serial", log.LastSerial,
		"number_of_books", log.NumberOfBooks,
		"operation_type", string(op),
		"override", req.Override,
		"printed_by", operator,
	)
	return log, nil
}

// commitError keeps domain errors and turns store conflicts (lost
// serialization races) into serial conflicts.
func (s *Service) commitError(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeSerialConflict,
			"another commit for this branch finished first; refresh the preview and retry")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit certified range")
}

// History lists the branch's logs, newest first.
func (s *Service) History(ctx context.Context, branchID string, limit int) ([]*models.CheckLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	logs, err := s.stores.Logs.ListByBranch(ctx, branchID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certified logs")
	}
	return logs, nil
}

func (s *Service) StockLevel(ctx context.Context) (int64, error) {
	q, err := s.stores.Stock.Available(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read certified stock")
	}
	return q, nil
}

// AddStock records received certified leaves and returns the new level.
func (s *Service) AddStock(ctx context.Context, quantity int64) (int64, error) {
	if requestcontext.OperatorID(ctx) == "" {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "an authenticated operator is required to add stock")
	}
	if quantity <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	if err := s.stores.Stock.Add(ctx, quantity); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add certified stock")
	}
	s.logger.InfoContext(ctx, "certified stock added",
		"quantity", quantity,
		"operator_id", requestcontext.OperatorID(ctx),
	)
	return s.StockLevel(ctx)
}

type servedEvent struct {
	LogID       string    `json:"log_id"`
	BranchID    string    `json:"branch_id"`
	FirstSerial int64     `json:"first_serial"`
	LastSerial  int64     `json:"last_serial"`
	Operation   string    `json:"operation_type"`
	ServedBy    string    `json:"served_by"`
	ServedAt    time.Time `json:"served_at"`
}

// PrintBatch renders the committed log's serials, one page per leaf. Each
// log is served once; printing the same serials again takes a REPRINT commit,
// which yields a new log to serve.
func (s *Service) PrintBatch(ctx context.Context, logID uuid.UUID) (*models.CheckLog, *cbmodels.RenderableDocument, error) {
	operator := requestcontext.OperatorID(ctx)
	if operator == "" {
		return nil, nil, dErrors.New(dErrors.CodeUnauthorized, "an authenticated operator is required to print certified cheques")
	}
	log, err := s.stores.Logs.Get(ctx, logID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "certified log not found")
	}
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certified log")
	}
	if log.Served() {
		return nil, nil, alreadyServed(log)
	}
	branch, err := s.requireBranch(ctx, log.BranchID)
	if err != nil {
		return nil, nil, err
	}
	_, doc, err := s.printer.PrintCertified(ctx, printmodel.CertifiedBatch{
		AccountNumber: branch.AccountingNumber,
		HolderName:    branch.Name,
		FirstSerial:   log.FirstSerial,
		LastSerial:    log.LastSerial,
	}, branch)
	if err != nil {
		return nil, nil, err
	}

	servedAt := requestcontext.Now(ctx)
	err = s.tx.RunInTx(withTxBranch(ctx, log.BranchID), func(ctx context.Context, st Stores) error {
		if err := st.Logs.MarkServed(ctx, log.ID, operator, servedAt); err != nil {
			return err
		}
		event, err := outbox.NewEvent(outbox.AggregateBranch, log.BranchID, outbox.EventCertifiedServed, servedEvent{
			LogID:       log.ID.String(),
			BranchID:    log.BranchID,
			FirstSerial: log.FirstSerial,
			LastSerial:  log.LastSerial,
			Operation:   string(log.OperationType),
			ServedBy:    operator,
			ServedAt:    servedAt,
		}, servedAt)
		if err != nil {
			return err
		}
		return st.Outbox.Append(ctx, event)
	})
	if errors.Is(err, sentinel.ErrConflict) {
		return nil, nil, alreadyServed(log)
	}
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record certified print")
	}
	log.ServedAt = &servedAt
	log.ServedBy = operator

	s.logger.InfoContext(ctx, "certified batch printed",
		"log_id", log.ID.String(),
		"branch_id", log.BranchID,
		"first_serial", log.FirstSerial,
		"last_serial", log.LastSerial,
		"operation_type", string(log.OperationType),
		"operator_id", operator,
	)
	return log, doc, nil
}

func alreadyServed(log *models.CheckLog) error {
	return dErrors.New(dErrors.CodePrintBlocked, fmt.Sprintf(
		"certified serials %d-%d were already printed; commit a REPRINT with a reason to print them again",
		log.FirstSerial, log.LastSerial))
}

func (s *Service) requireBranch(ctx context.Context, branchID string) (*cbmodels.Branch, error) {
	if branchID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "branch is required")
	}
	b, err := s.branches.Get(ctx, branchID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("branch %q not found", branchID))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load branch")
	}
	return b, nil
}
