// Package service orchestrates checkbook query, preview and print.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"chequeprint/internal/checkbook/metrics"
	"chequeprint/internal/checkbook/models"
	"chequeprint/internal/checkbook/normalizer"
	"chequeprint/internal/checkbook/reconcile"
	"chequeprint/internal/outbox"
	dErrors "chequeprint/pkg/domain-errors"
	"chequeprint/pkg/platform/sentinel"
	"chequeprint/pkg/requestcontext"
)

// CoreBanking is the external checkbook query.
type CoreBanking interface {
	QueryCheckbook(ctx context.Context, accountNumber string) (*models.ExternalCheckbookResult, error)
}

type PrintLogStore interface {
	Append(ctx context.Context, entry *models.PrintLogEntry) error
	FindByAccount(ctx context.Context, accountNumber string) ([]*models.PrintLogEntry, error)
}

type BranchReader interface {
	FindByCode(ctx context.Context, code string) (*models.Branch, error)
}

type StatusChecker interface {
	CheckStatus(ctx context.Context, accountNumber string, leaves []int64, reprintReason string) ([]models.LeafStatusReport, error)
}

type Printer interface {
	Model(ctx context.Context, query *models.CheckbookQueryResult, branch *models.Branch) (*models.CheckbookPrintModel, error)
	Print(ctx context.Context, query *models.CheckbookQueryResult, branch *models.Branch) (*models.CheckbookPrintModel, *models.RenderableDocument, error)
}

type OutboxAppender interface {
	Append(ctx context.Context, event outbox.Event) error
}

// TxRunner makes the print log row and its outbox event commit together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	core     CoreBanking
	logs     PrintLogStore
	branches BranchReader
	status   StatusChecker
	printer  Printer
	outbox   OutboxAppender
	tx       TxRunner
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

func New(
	core CoreBanking,
	logs PrintLogStore,
	branches BranchReader,
	status StatusChecker,
	printer Printer,
	outbox OutboxAppender,
	tx TxRunner,
	opts ...Option,
) *Service {
	s := &Service{
		core:     core,
		logs:     logs,
		branches: branches,
		status:   status,
		printer:  printer,
		outbox:   outbox,
		tx:       tx,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LeafView is a normalized leaf with its locally reconciled printed state.
type LeafView struct {
	models.ChequeLeaf
	IsPrinted bool `json:"is_printed"`
}

// QueryView is what an operator sees before choosing what to print.
type QueryView struct {
	Checkbook        *models.CheckbookQueryResult `json:"checkbook"`
	Branch           *models.Branch               `json:"branch,omitempty"`
	Leaves           []LeafView                   `json:"leaves"`
	ReprintPermitted bool                         `json:"reprint_permitted"`
}

// PrintRequest selects what to print. A zero DocumentType keeps the derived
// type; zero leaf bounds are open.
type PrintRequest struct {
	AccountNumber string
	DocumentType  models.DocumentType
	Operation     models.OperationType
	ReprintReason string
	LeafFrom      int64
	LeafTo        int64
}

// PreviewView is a print model plus the reconciliation that would gate it.
type PreviewView struct {
	Model   *models.CheckbookPrintModel `json:"model"`
	Status  []models.LeafStatusReport   `json:"status"`
	Blocked []int64                     `json:"blocked_leaves,omitempty"`
}

// PrintResult is a rendered batch and the log row recording it.
type PrintResult struct {
	Log      *models.PrintLogEntry
	Model    *models.CheckbookPrintModel
	Document *models.RenderableDocument
}

type printedEvent struct {
	LogID         string    `json:"log_id"`
	AccountNumber string    `json:"account_number"`
	AccountBranch string    `json:"account_branch"`
	DocumentType  string    `json:"document_type"`
	Operation     string    `json:"operation_type"`
	FirstLeaf     int64     `json:"first_leaf_number"`
	LastLeaf      int64     `json:"last_leaf_number"`
	TotalLeaves   int       `json:"total_leaves"`
	PrintedBy     string    `json:"printed_by"`
	PrintDate     time.Time `json:"print_date"`
}

// Query fetches and normalizes the checkbook and marks leaves already
// printed according to the local print log.
func (s *Service) Query(ctx context.Context, accountNumber string) (*QueryView, error) {
	result, branch, err := s.load(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	reports, err := s.status.CheckStatus(ctx, result.AccountNumber, result.LeafNumbers(), "")
	if err != nil {
		return nil, err
	}
	view := &QueryView{
		Checkbook:        result,
		Branch:           branch,
		Leaves:           make([]LeafView, len(result.Leaves)),
		ReprintPermitted: requestcontext.HasPermission(ctx, requestcontext.PermissionReprint),
	}
	for i, l := range result.Leaves {
		view.Leaves[i] = LeafView{ChequeLeaf: l, IsPrinted: reports[i].IsPrinted}
	}
	return view, nil
}

// Preview builds the print model without rendering or logging anything.
func (s *Service) Preview(ctx context.Context, req PrintRequest) (*PreviewView, error) {
	_, reason, err := validateOperation(req)
	if err != nil {
		return nil, err
	}
	result, branch, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	reports, err := s.status.CheckStatus(ctx, result.AccountNumber, result.LeafNumbers(), reason)
	if err != nil {
		return nil, err
	}
	model, err := s.printer.Model(ctx, result, branch)
	if err != nil {
		return nil, err
	}
	return &PreviewView{Model: model, Status: reports, Blocked: reconcile.Blocked(reports)}, nil
}

// Print refuses the whole batch if any leaf is blocked, then renders it and
// records one log entry with its outbox event.
func (s *Service) Print(ctx context.Context, req PrintRequest) (*PrintResult, error) {
	operator := requestcontext.OperatorID(ctx)
	if operator == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "an authenticated operator is required to print")
	}
	op, reason, err := validateOperation(req)
	if err != nil {
		return nil, err
	}
	result, branch, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	reports, err := s.status.CheckStatus(ctx, result.AccountNumber, result.LeafNumbers(), reason)
	if err != nil {
		return nil, err
	}
	if err := reconcile.Guard(reports); err != nil {
		s.metrics.IncPrintBlocked()
		s.logger.WarnContext(ctx, "print batch refused",
			"account_number", result.AccountNumber,
			"operation_type", string(op),
			"blocked_leaves", reconcile.Blocked(reports),
			"operator_id", operator,
		)
		return nil, err
	}

	model, doc, err := s.printer.Print(ctx, result, branch)
	if err != nil {
		return nil, err
	}
	if branch == nil || len(branch.MissingMICRIdentifiers()) > 0 {
		s.metrics.IncMICRWarning()
	}

	leaves := make([]int64, len(model.Leaves))
	for i, l := range model.Leaves {
		leaves[i] = l.LeafNumber
	}
	entry, err := models.NewPrintLogEntry(result.AccountNumber, result.BranchCode, model.DocumentType, op, reason, operator,
		leaves, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	eventType := outbox.EventChequesPrinted
	if op == models.OperationReprint {
		eventType = outbox.EventChequesReprinted
	}
	event, err := outbox.NewEvent(outbox.AggregateAccount, entry.AccountNumber, eventType, printedEvent{
		LogID:         entry.ID.String(),
		AccountNumber: entry.AccountNumber,
		AccountBranch: entry.AccountBranch,
		DocumentType:  entry.DocumentType.String(),
		Operation:     string(op),
		FirstLeaf:     entry.FirstLeafNumber,
		LastLeaf:      entry.LastLeafNumber,
		TotalLeaves:   entry.TotalLeaves,
		PrintedBy:     operator,
		PrintDate:     entry.PrintDate,
	}, entry.PrintDate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record print")
	}

	if err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.logs.Append(ctx, entry); err != nil {
			return err
		}
		return s.outbox.Append(ctx, event)
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record print")
	}

	s.metrics.AddLeavesPrinted(entry.DocumentType.String(), string(op), entry.TotalLeaves)
	s.logger.InfoContext(ctx, "cheque batch printed",
		"log_id", entry.ID.String(),
		"account_number", entry.AccountNumber,
		"document_type", entry.DocumentType.String(),
		"operation_type", string(op),
		"first_leaf_number", entry.FirstLeafNumber,
		"last_leaf_number", entry.LastLeafNumber,
		"total_leaves", entry.TotalLeaves,
		"operator_id", operator,
	)
	return &PrintResult{Log: entry, Model: model, Document: doc}, nil
}

// History returns the account's print log, newest first.
func (s *Service) History(ctx context.Context, accountNumber string) ([]*models.PrintLogEntry, error) {
	account, err := normalizeAccount(accountNumber)
	if err != nil {
		return nil, err
	}
	entries, err := s.logs.FindByAccount(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read print log")
	}
	return entries, nil
}

// prepare loads the checkbook, applies the operator's document type and
// narrows it to the requested leaves.
func (s *Service) prepare(ctx context.Context, req PrintRequest) (*models.CheckbookQueryResult, *models.Branch, error) {
	if req.LeafFrom < 0 || req.LeafTo < 0 || (req.LeafTo > 0 && req.LeafFrom > req.LeafTo) {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "leaf range is invalid")
	}
	if req.DocumentType != models.DocumentTypeUnknown {
		if !req.DocumentType.IsValid() || req.DocumentType == models.DocumentTypeCertified {
			return nil, nil, dErrors.New(dErrors.CodeValidation, "document type must be individual, corporate or employee")
		}
	}
	result, branch, err := s.load(ctx, req.AccountNumber)
	if err != nil {
		return nil, nil, err
	}
	if req.DocumentType != models.DocumentTypeUnknown {
		result.DocumentType = models.DocumentTypeResolution{Type: req.DocumentType, Source: models.TypeSourceOperator}
	}
	if req.LeafFrom > 0 || req.LeafTo > 0 {
		result = result.Narrow(req.LeafFrom, req.LeafTo)
		if len(result.Leaves) == 0 {
			return nil, nil, dErrors.New(dErrors.CodeNoPrintableLeaves, "no leaves of this checkbook fall in the requested range")
		}
	}
	return result, branch, nil
}

func (s *Service) load(ctx context.Context, accountNumber string) (*models.CheckbookQueryResult, *models.Branch, error) {
	account, err := normalizeAccount(accountNumber)
	if err != nil {
		return nil, nil, err
	}
	raw, err := s.core.QueryCheckbook(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	result, err := normalizer.Normalize(*raw)
	if err != nil {
		return nil, nil, err
	}
	if result.AccountNumber != account {
		s.logger.WarnContext(ctx, "core banking answered for a different account",
			"requested_account", account,
			"account_number", result.AccountNumber,
		)
		return nil, nil, dErrors.New(dErrors.CodeUpstreamData, "core banking answered for a different account")
	}
	branch, err := s.branch(ctx, result.BranchCode)
	if err != nil {
		return nil, nil, err
	}
	return result, branch, nil
}

// branch resolves the account's branch. An unknown branch is not fatal: the
// print model carries a warning instead of MICR identifiers. A failing store
// is, since printing then would burn leaves with unreadable MICR lines.
func (s *Service) branch(ctx context.Context, code string) (*models.Branch, error) {
	if code == "" {
		return nil, nil
	}
	b, err := s.branches.FindByCode(ctx, code)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load branch")
	}
	return b, nil
}

func validateOperation(req PrintRequest) (models.OperationType, string, error) {
	op, err := models.ParseOperationType(string(req.Operation))
	if err != nil {
		return "", "", err
	}
	reason := strings.TrimSpace(req.ReprintReason)
	if op == models.OperationReprint && reason == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "a reprint requires a reason")
	}
	// A PRINT over an already printed leaf is always blocked, so only a
	// REPRINT carries a reason into reconciliation.
	if op == models.OperationPrint {
		reason = ""
	}
	return op, reason, nil
}

func normalizeAccount(accountNumber string) (string, error) {
	account := strings.TrimSpace(accountNumber)
	if account == "" {
		return "", dErrors.New(dErrors.CodeValidation, "account number is required")
	}
	return account, nil
}
