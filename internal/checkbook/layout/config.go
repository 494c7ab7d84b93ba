// Package layout resolves field placements and paper geometry per document
// type: built-in YAML defaults, optionally replaced by a file, with persisted
// per-field overrides merged on top at read time.
package layout

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the decoded layout document.
type Config struct {
	MICRFont  string
	TextFont  string
	documents map[models.DocumentType]documentConfig
}

type documentConfig struct {
	Paper  models.PaperGeometry
	Fields map[models.Field]models.Position
}

type fileConfig struct {
	MICRFont  string `yaml:"micr_font"`
	TextFont  string `yaml:"text_font"`
	Documents map[string]struct {
		Paper  models.PaperGeometry             `yaml:"paper"`
		Fields map[models.Field]models.Position `yaml:"fields"`
	} `yaml:"documents"`
}

// Defaults returns the embedded built-in configuration.
func Defaults() *Config {
	cfg, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded layout defaults are invalid: %v", err))
	}
	return cfg
}

// Load reads a layout document from path. An empty path yields Defaults.
// Document types or fields missing from the file keep their built-in values.
func Load(path string) (*Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Defaults().merge(override), nil
}

// Parse decodes and validates a layout document.
func Parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "layout document is not valid YAML")
	}
	cfg := &Config{
		MICRFont:  fc.MICRFont,
		TextFont:  fc.TextFont,
		documents: make(map[models.DocumentType]documentConfig, len(fc.Documents)),
	}
	for name, doc := range fc.Documents {
		docType, err := models.ParseDocumentType(name)
		if err != nil {
			return nil, err
		}
		for field, pos := range doc.Fields {
			if pos.Align == "" {
				pos.Align = models.AlignLeft
			}
			align, err := models.ParseAlign(string(pos.Align))
			if err != nil {
				return nil, err
			}
			pos.Align = align
			doc.Fields[field] = pos
		}
		cfg.documents[docType] = documentConfig{Paper: doc.Paper, Fields: doc.Fields}
	}
	return cfg, nil
}

func (c *Config) merge(o *Config) *Config {
	if o.MICRFont != "" {
		c.MICRFont = o.MICRFont
	}
	if o.TextFont != "" {
		c.TextFont = o.TextFont
	}
	for docType, doc := range o.documents {
		base := c.documents[docType]
		if doc.Paper.WidthMM > 0 && doc.Paper.HeightMM > 0 {
			base.Paper = doc.Paper
		}
		if base.Fields == nil {
			base.Fields = make(map[models.Field]models.Position)
		}
		for f, p := range doc.Fields {
			base.Fields[f] = p
		}
		c.documents[docType] = base
	}
	return c
}

// Geometry returns the paper size for docType.
func (c *Config) Geometry(docType models.DocumentType) (models.PaperGeometry, error) {
	doc, ok := c.documents[docType]
	if !ok {
		return models.PaperGeometry{}, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("no paper geometry configured for %s documents", docType))
	}
	if err := doc.Paper.Validate(); err != nil {
		return models.PaperGeometry{}, err
	}
	return doc.Paper, nil
}

// Base returns the configured layout for docType. Fields the document omits
// are taken from the individual layout, so the result is always complete.
func (c *Config) Base(docType models.DocumentType) models.Layout {
	positions := make(map[models.Field]models.Position, len(models.Fields))
	fallback := c.documents[models.DocumentTypeIndividual].Fields
	own := c.documents[docType].Fields
	for _, f := range models.Fields {
		if p, ok := own[f]; ok {
			positions[f] = p
			continue
		}
		positions[f] = fallback[f]
	}
	return models.Layout{DocumentType: docType, Positions: positions}
}
