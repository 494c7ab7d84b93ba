package layout

import (
	"chequeprint/internal/checkbook/models"
)

// Builder merges partial overrides onto a complete base layout.
//
//	l := layout.NewBuilder(cfg.Base(docType)).Apply(stored).Apply(request).Build()
type Builder struct {
	layout models.Layout
}

func NewBuilder(base models.Layout) *Builder {
	positions := make(map[models.Field]models.Position, len(base.Positions))
	for f, p := range base.Positions {
		positions[f] = p
	}
	return &Builder{layout: models.Layout{DocumentType: base.DocumentType, Positions: positions}}
}

// Apply layers overrides on the current layout. Unknown fields are ignored.
func (b *Builder) Apply(overrides models.LayoutOverrides) *Builder {
	for f, o := range overrides {
		base, ok := b.layout.Positions[f]
		if !ok {
			continue
		}
		b.layout.Positions[f] = o.Apply(base)
	}
	return b
}

func (b *Builder) Build() models.Layout {
	return b.layout
}
