package models

// PlacedField is one painted text element on a leaf.
type PlacedField struct {
	Field    Field    `json:"field"`
	Text     string   `json:"text"`
	Position Position `json:"position"`
}

// PrintLeaf is a single renderable leaf.
type PrintLeaf struct {
	// Sequence is 1-based within the batch and independent of LeafNumber.
	Sequence   int           `json:"sequence"`
	LeafNumber int64         `json:"leaf_number"`
	Serial     string        `json:"serial"`
	MICRLine   string        `json:"micr_line"`
	Fields     []PlacedField `json:"fields"`
}

// CheckbookPrintModel is the positioned print model consumed by renderers.
// SerialFrom and SerialTo are the min and max of the leaves actually included.
type CheckbookPrintModel struct {
	AccountNumber string       `json:"account_number"`
	HolderName    string       `json:"holder_name,omitempty"`
	BranchID      string       `json:"branch_id,omitempty"`
	BranchName    string       `json:"branch_name"`
	DocumentType  DocumentType `json:"document_type"`
	SerialFrom    int64        `json:"serial_from"`
	SerialTo      int64        `json:"serial_to"`
	Leaves        []PrintLeaf  `json:"leaves"`
	Warnings      []string     `json:"warnings,omitempty"`
}

// RenderableDocument is a finished print surface.
type RenderableDocument struct {
	ContentType string `json:"content_type"`
	Pages       int    `json:"pages"`
	Body        []byte `json:"-"`
}
