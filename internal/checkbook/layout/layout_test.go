package layout

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	t.Run("every document type has a complete layout", func(t *testing.T) {
		for _, docType := range []models.DocumentType{
			models.DocumentTypeIndividual,
			models.DocumentTypeCorporate,
			models.DocumentTypeEmployee,
			models.DocumentTypeCertified,
		} {
			l := cfg.Base(docType)
			for _, f := range models.Fields {
				p, ok := l.Positions[f]
				require.True(t, ok, "%s missing %s", docType, f)
				assert.Positive(t, p.FontSize, "%s %s font size", docType, f)
				assert.NotEmpty(t, p.Align)
			}
		}
	})

	t.Run("paper geometry per document type", func(t *testing.T) {
		g, err := cfg.Geometry(models.DocumentTypeIndividual)
		require.NoError(t, err)
		assert.Equal(t, models.PaperGeometry{WidthMM: 235, HeightMM: 86}, g)

		g, err = cfg.Geometry(models.DocumentTypeCertified)
		require.NoError(t, err)
		assert.Equal(t, models.PaperGeometry{WidthMM: 240, HeightMM: 86}, g)
	})

	t.Run("unknown document type has no geometry", func(t *testing.T) {
		_, err := cfg.Geometry(models.DocumentTypeUnknown)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestLoad(t *testing.T) {
	t.Run("file overrides merge onto defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "layout.yaml")
		doc := `
micr_font: "E13B Custom"
documents:
  corporate:
    paper: {width_mm: 241, height_mm: 87}
    fields:
      serial: {x: 200, y: 9, font_size: 11, align: left}
`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "E13B Custom", cfg.MICRFont)
		assert.Equal(t, "Arial", cfg.TextFont)

		g, err := cfg.Geometry(models.DocumentTypeCorporate)
		require.NoError(t, err)
		assert.Equal(t, 241.0, g.WidthMM)

		l := cfg.Base(models.DocumentTypeCorporate)
		assert.Equal(t, models.Position{X: 200, Y: 9, FontSize: 11, Align: models.AlignLeft}, l.Position(models.FieldSerial))
		assert.Equal(t, 120.0, l.Position(models.FieldMICR).X, "untouched fields keep defaults")
	})

	t.Run("invalid alignment is rejected", func(t *testing.T) {
		_, err := Parse([]byte("documents:\n  individual:\n    fields:\n      serial: {x: 1, y: 1, font_size: 9, align: JUSTIFY}\n"))
		require.Error(t, err)
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "MICR E13B", cfg.MICRFont)
	})
}

func TestBuilder(t *testing.T) {
	base := Defaults().Base(models.DocumentTypeIndividual)
	x := 42.0
	right := models.AlignRight

	l := NewBuilder(base).
		Apply(models.LayoutOverrides{
			models.FieldHolderName: {X: &x},
			models.FieldMICR:       {Align: &right},
			models.Field("stamp"):  {X: &x},
		}).
		Build()

	holder := l.Position(models.FieldHolderName)
	assert.Equal(t, 42.0, holder.X)
	assert.Equal(t, base.Position(models.FieldHolderName).Y, holder.Y, "unset override fields keep the default")
	assert.Equal(t, models.AlignRight, l.Position(models.FieldMICR).Align)
	_, hasStamp := l.Positions[models.Field("stamp")]
	assert.False(t, hasStamp, "unknown fields are ignored")
	assert.Equal(t, base.Position(models.FieldHolderName).X, 10.0, "base layout is not mutated")
}

func TestResolver(t *testing.T) {
	store := NewInMemoryStore()
	size := 14.0
	store.Set(models.DocumentTypeEmployee, models.FieldSerial, models.PositionOverride{FontSize: &size})

	cfg := Defaults()
	r := NewResolver(cfg, store)
	overrides, err := r.Overrides(context.Background(), models.DocumentTypeEmployee)
	require.NoError(t, err)
	l := NewBuilder(cfg.Base(models.DocumentTypeEmployee)).Apply(overrides).Build()
	assert.Equal(t, 14.0, l.Position(models.FieldSerial).FontSize)

	other, err := r.Overrides(context.Background(), models.DocumentTypeIndividual)
	require.NoError(t, err)
	assert.Empty(t, other)
	l = NewBuilder(cfg.Base(models.DocumentTypeIndividual)).Apply(other).Build()
	assert.Equal(t, 10.0, l.Position(models.FieldSerial).FontSize)

	none, err := NewResolver(nil, nil).Overrides(context.Background(), models.DocumentTypeEmployee)
	require.NoError(t, err)
	assert.Nil(t, none)
}
