package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chequeprint/internal/checkbook/micr"
	"chequeprint/internal/checkbook/models"
	"chequeprint/internal/checkbook/printmodel"
	dErrors "chequeprint/pkg/domain-errors"
)

var corporatePaper = models.PaperGeometry{WidthMM: 240, HeightMM: 86}

func twoLeafModel() *models.CheckbookPrintModel {
	model := &models.CheckbookPrintModel{
		AccountNumber: "2001002003",
		HolderName:    "Smith & Sons",
		DocumentType:  models.DocumentTypeCorporate,
		SerialFrom:    7,
		SerialTo:      8,
	}
	for i, n := range []int64{7, 8} {
		line := micr.Encode(n, "1234567", "4521", "02")
		model.Leaves = append(model.Leaves, models.PrintLeaf{
			Sequence:   i + 1,
			LeafNumber: n,
			Serial:     micr.PadSerial(n),
			MICRLine:   line,
			Fields: []models.PlacedField{
				{Field: models.FieldSerial, Text: micr.PadSerial(n), Position: models.Position{X: 230, Y: 8, FontSize: 10, Align: models.AlignRight}},
				{Field: models.FieldHolderName, Text: "Smith & Sons", Position: models.Position{X: 10, Y: 54, FontSize: 10, Align: models.AlignLeft}},
				{Field: models.FieldMICR, Text: line, Position: models.Position{X: 120, Y: 78, FontSize: 12, Align: models.AlignCenter}},
			},
		})
	}
	return model
}

func TestRenderGolden(t *testing.T) {
	doc, err := New("", "").Render(twoLeafModel(), corporatePaper)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, ContentTypeHTML, doc.ContentType)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "two_leaf_corporate", doc.Body)
}

func TestRenderPageBreaks(t *testing.T) {
	q := &models.CheckbookQueryResult{
		AccountNumber: "1100200300",
		LeafCount:     50,
		DocumentType:  models.DocumentTypeResolution{Type: models.DocumentTypeCorporate, Source: models.TypeSourceLeafCount},
	}
	for n := int64(1001); n <= 1050; n++ {
		q.Leaves = append(q.Leaves, models.ChequeLeaf{BookNumber: "B1", LeafNumber: n, Status: models.LeafStatusNew})
	}
	model, err := printmodel.New(nil).Build(context.Background(), q, nil, &models.Branch{Name: "Main", RoutingNumber: "1", AccountingNumber: "2"})
	require.NoError(t, err)

	doc, err := New("", "").Render(model, corporatePaper)
	require.NoError(t, err)

	body := string(doc.Body)
	assert.Equal(t, 50, doc.Pages)
	assert.Equal(t, 50, strings.Count(body, `<div class="leaf"`))
	assert.Equal(t, 49, strings.Count(body, "page-break-after: always"), "every leaf but the last breaks")
	assert.NotContains(t, body, "page-break-before")

	lastLeaf := body[strings.LastIndex(body, `<div class="leaf"`):]
	assert.NotContains(t, lastLeaf, "page-break", "no trailing blank page")
	assert.True(t, bytes.HasSuffix(doc.Body, []byte("</div>\n</body>\n</html>\n")))
}

func TestRenderSingleLeafHasNoBreak(t *testing.T) {
	model := twoLeafModel()
	model.Leaves = model.Leaves[:1]
	doc, err := New("", "").Render(model, corporatePaper)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)
	assert.NotContains(t, string(doc.Body), "page-break")
}

func TestRenderRejectsEmptyInput(t *testing.T) {
	_, err := New("", "").Render(&models.CheckbookPrintModel{}, corporatePaper)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNoPrintableLeaves))

	_, err = New("", "").Render(twoLeafModel(), models.PaperGeometry{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
