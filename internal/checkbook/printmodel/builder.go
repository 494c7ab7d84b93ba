// Package printmodel assembles positioned, per-leaf print models from a
// normalized checkbook, branch identity and layout configuration.
package printmodel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"chequeprint/internal/checkbook/layout"
	"chequeprint/internal/checkbook/micr"
	"chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
)

// Builder is stateless apart from its read-only layout configuration.
type Builder struct {
	cfg    *layout.Config
	logger *slog.Logger
}

type Option func(*Builder)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

func New(cfg *layout.Config, opts ...Option) *Builder {
	if cfg == nil {
		cfg = layout.Defaults()
	}
	b := &Builder{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build maps every leaf of query to a positioned print leaf. overrides may be
// nil or partial; missing placements come from the built-in layout. The
// query's document type is used unless it is unknown, in which case the build
// fails so the operator can choose one explicitly.
func (b *Builder) Build(
	ctx context.Context,
	query *models.CheckbookQueryResult,
	overrides models.LayoutOverrides,
	branch *models.Branch,
) (*models.CheckbookPrintModel, error) {
	if query == nil || len(query.Leaves) == 0 {
		return nil, dErrors.New(dErrors.CodeNoPrintableLeaves, "no printable leaves remain for this checkbook")
	}
	docType := query.DocumentType.Type
	if !docType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation,
			"document type could not be determined for this account, choose individual, corporate or employee")
	}

	var warnings []string
	if query.DocumentType.IsHeuristic() {
		warnings = append(warnings, fmt.Sprintf(
			"document type %s was inferred from the account number, not from a known leaf count; confirm before printing",
			docType))
	}
	if query.LeafCountMismatch() {
		warnings = append(warnings, fmt.Sprintf(
			"core banking reported %d leaves but returned %d valid leaves", query.LeafCount, len(query.Leaves)))
	}
	if query.DiscardedLeaves > 0 {
		warnings = append(warnings, fmt.Sprintf("%d malformed leaf rows were ignored", query.DiscardedLeaves))
	}
	used := 0
	for _, l := range query.Leaves {
		if l.Status == models.LeafStatusUsed {
			used++
		}
	}
	if used > 0 {
		warnings = append(warnings, fmt.Sprintf("%d leaves are marked used by core banking", used))
	}

	return b.assemble(ctx, input{
		accountNumber: query.AccountNumber,
		holderName:    query.CustomerName,
		branchCode:    query.BranchCode,
		docType:       docType,
		leaves:        query.LeafNumbers(),
		branch:        branch,
		overrides:     overrides,
		warnings:      warnings,
	})
}

// CertifiedBatch describes a committed certified serial range to print.
type CertifiedBatch struct {
	AccountNumber string
	HolderName    string
	FirstSerial   int64
	LastSerial    int64
}

// BuildCertified builds a certified book print model covering every serial
// in the batch. The MICR type code is the certified instrument class.
func (b *Builder) BuildCertified(
	ctx context.Context,
	batch CertifiedBatch,
	overrides models.LayoutOverrides,
	branch *models.Branch,
) (*models.CheckbookPrintModel, error) {
	if batch.FirstSerial < 1 || batch.LastSerial < batch.FirstSerial {
		return nil, dErrors.New(dErrors.CodeNoPrintableLeaves, "certified batch has no serials to print")
	}
	leaves := make([]int64, 0, batch.LastSerial-batch.FirstSerial+1)
	for s := batch.FirstSerial; s <= batch.LastSerial; s++ {
		leaves = append(leaves, s)
	}
	return b.assemble(ctx, input{
		accountNumber: batch.AccountNumber,
		holderName:    batch.HolderName,
		docType:       models.DocumentTypeCertified,
		leaves:        leaves,
		branch:        branch,
		overrides:     overrides,
	})
}

type input struct {
	accountNumber string
	holderName    string
	branchCode    string
	docType       models.DocumentType
	leaves        []int64
	branch        *models.Branch
	overrides     models.LayoutOverrides
	warnings      []string
}

func (b *Builder) assemble(ctx context.Context, in input) (*models.CheckbookPrintModel, error) {
	if len(in.leaves) == 0 {
		return nil, dErrors.New(dErrors.CodeNoPrintableLeaves, "no printable leaves remain for this checkbook")
	}

	l := layout.NewBuilder(b.cfg.Base(in.docType)).Apply(in.overrides).Build()

	var branch models.Branch
	if in.branch != nil {
		branch = *in.branch
	}
	branchName := branch.Name
	if branchName == "" {
		branchName = in.branchCode
	}
	if missing := branch.MissingMICRIdentifiers(); len(missing) > 0 {
		b.logger.WarnContext(ctx, "branch is missing MICR identifiers, MICR line will carry zeros",
			"branch_id", branch.ID,
			"account_number", in.accountNumber,
			"missing", strings.Join(missing, ","),
		)
		in.warnings = append(in.warnings, fmt.Sprintf(
			"branch %q has no %s configured; the MICR line will not be scannable until it is set",
			branchName, strings.Join(missing, " or ")))
	}

	typeCode := in.docType.MICRTypeCode()
	model := &models.CheckbookPrintModel{
		AccountNumber: in.accountNumber,
		HolderName:    in.holderName,
		BranchID:      branch.ID,
		BranchName:    branchName,
		DocumentType:  in.docType,
		SerialFrom:    in.leaves[0],
		SerialTo:      in.leaves[0],
		Leaves:        make([]models.PrintLeaf, 0, len(in.leaves)),
		Warnings:      in.warnings,
	}

	for i, leaf := range in.leaves {
		if leaf < model.SerialFrom {
			model.SerialFrom = leaf
		}
		if leaf > model.SerialTo {
			model.SerialTo = leaf
		}
		seq := i + 1
		serial := micr.PadSerial(leaf)
		line := micr.Encode(leaf, branch.AccountingNumber, branch.RoutingNumber, typeCode)
		texts := map[models.Field]string{
			models.FieldBranchName:    branchName,
			models.FieldAccountNumber: in.accountNumber,
			models.FieldSerial:        serial,
			models.FieldSequence:      strconv.Itoa(seq),
			models.FieldHolderName:    in.holderName,
			models.FieldMICR:          line,
		}
		fields := make([]models.PlacedField, 0, len(models.Fields))
		for _, f := range models.Fields {
			fields = append(fields, models.PlacedField{Field: f, Text: texts[f], Position: l.Position(f)})
		}
		model.Leaves = append(model.Leaves, models.PrintLeaf{
			Sequence:   seq,
			LeafNumber: leaf,
			Serial:     serial,
			MICRLine:   line,
			Fields:     fields,
		})
	}
	return model, nil
}
