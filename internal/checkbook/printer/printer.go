// Package printer runs the layout, build and render steps for one batch.
package printer

import (
	"context"

	"chequeprint/internal/checkbook/layout"
	"chequeprint/internal/checkbook/models"
	"chequeprint/internal/checkbook/printmodel"
	"chequeprint/internal/checkbook/render"
	dErrors "chequeprint/pkg/domain-errors"
)

type Printer struct {
	layouts  *layout.Resolver
	builder  *printmodel.Builder
	renderer *render.Renderer
}

func New(layouts *layout.Resolver, builder *printmodel.Builder, renderer *render.Renderer) *Printer {
	return &Printer{layouts: layouts, builder: builder, renderer: renderer}
}

// Model builds the positioned print model with stored layout overrides applied.
func (p *Printer) Model(ctx context.Context, query *models.CheckbookQueryResult, branch *models.Branch) (*models.CheckbookPrintModel, error) {
	overrides, err := p.overrides(ctx, query.DocumentType.Type)
	if err != nil {
		return nil, err
	}
	return p.builder.Build(ctx, query, overrides, branch)
}

// Print builds and renders a checkbook batch.
func (p *Printer) Print(ctx context.Context, query *models.CheckbookQueryResult, branch *models.Branch) (*models.CheckbookPrintModel, *models.RenderableDocument, error) {
	model, err := p.Model(ctx, query, branch)
	if err != nil {
		return nil, nil, err
	}
	doc, err := p.render(model)
	if err != nil {
		return nil, nil, err
	}
	return model, doc, nil
}

// PrintCertified builds and renders a committed certified range.
func (p *Printer) PrintCertified(ctx context.Context, batch printmodel.CertifiedBatch, branch *models.Branch) (*models.CheckbookPrintModel, *models.RenderableDocument, error) {
	overrides, err := p.overrides(ctx, models.DocumentTypeCertified)
	if err != nil {
		return nil, nil, err
	}
	model, err := p.builder.BuildCertified(ctx, batch, overrides, branch)
	if err != nil {
		return nil, nil, err
	}
	doc, err := p.render(model)
	if err != nil {
		return nil, nil, err
	}
	return model, doc, nil
}

func (p *Printer) overrides(ctx context.Context, docType models.DocumentType) (models.LayoutOverrides, error) {
	if !docType.IsValid() {
		return nil, nil
	}
	overrides, err := p.layouts.Overrides(ctx, docType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load print layout")
	}
	return overrides, nil
}

func (p *Printer) render(model *models.CheckbookPrintModel) (*models.RenderableDocument, error) {
	paper, err := p.layouts.Geometry(model.DocumentType)
	if err != nil {
		return nil, err
	}
	return p.renderer.Render(model, paper)
}
