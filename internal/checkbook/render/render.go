// Package render paints a print model onto an HTML print surface, one page
// per leaf at the configured paper size. It makes no layout decisions: every
// field is painted at the absolute coordinates carried by the model.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"

	"chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
)

const ContentTypeHTML = "text/html; charset=utf-8"

// Renderer is safe for concurrent use.
type Renderer struct {
	micrFont string
	textFont string
}

func New(micrFont, textFont string) *Renderer {
	if micrFont == "" {
		micrFont = "MICR E13B"
	}
	if textFont == "" {
		textFont = "Arial"
	}
	return &Renderer{micrFont: micrFont, textFont: textFont}
}

// Render produces the document. Only leaves before the last carry a page
// break, so the output never ends with a blank page and never starts with one.
func (r *Renderer) Render(model *models.CheckbookPrintModel, paper models.PaperGeometry) (*models.RenderableDocument, error) {
	if model == nil || len(model.Leaves) == 0 {
		return nil, dErrors.New(dErrors.CodeNoPrintableLeaves, "nothing to render")
	}
	if err := paper.Validate(); err != nil {
		return nil, err
	}

	w, h := mm(paper.WidthMM), mm(paper.HeightMM)
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s %s-%s</title>\n",
		html.EscapeString(model.AccountNumber), strconv.FormatInt(model.SerialFrom, 10), strconv.FormatInt(model.SerialTo, 10))
	buf.WriteString("<style>\n")
	fmt.Fprintf(&buf, "@page { size: %s %s; margin: 0; }\n", w, h)
	fmt.Fprintf(&buf, "body { margin: 0; font-family: %q; }\n", r.textFont)
	fmt.Fprintf(&buf, ".leaf { position: relative; width: %s; height: %s; overflow: hidden; }\n", w, h)
	buf.WriteString(".f { position: absolute; white-space: nowrap; }\n")
	fmt.Fprintf(&buf, ".f-micr { font-family: %q; }\n", r.micrFont)
	buf.WriteString("</style>\n</head>\n<body>\n")

	last := len(model.Leaves) - 1
	for i, leaf := range model.Leaves {
		if i < last {
			fmt.Fprintf(&buf, "<div class=\"leaf\" data-seq=\"%d\" style=\"page-break-after: always;\">\n", leaf.Sequence)
		} else {
			fmt.Fprintf(&buf, "<div class=\"leaf\" data-seq=\"%d\">\n", leaf.Sequence)
		}
		for _, f := range leaf.Fields {
			fmt.Fprintf(&buf, "<span class=\"f f-%s\" style=\"left: %s; top: %s; font-size: %spt;%s\">%s</span>\n",
				f.Field, mm(f.Position.X), mm(f.Position.Y), num(f.Position.FontSize), anchor(f.Position.Align),
				html.EscapeString(f.Text))
		}
		buf.WriteString("</div>\n")
	}
	buf.WriteString("</body>\n</html>\n")

	return &models.RenderableDocument{
		ContentType: ContentTypeHTML,
		Pages:       len(model.Leaves),
		Body:        buf.Bytes(),
	}, nil
}

// anchor shifts the element so X is its left edge, centre or right edge.
func anchor(a models.Align) string {
	switch a {
	case models.AlignCenter:
		return " transform: translateX(-50%);"
	case models.AlignRight:
		return " transform: translateX(-100%);"
	default:
		return ""
	}
}

func mm(v float64) string {
	return num(v) + "mm"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
