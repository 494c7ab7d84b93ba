package models

// Branch is the branch identity owned by branch management. This system only
// reads it. RoutingNumber and AccountingNumber are embedded verbatim in MICR
// lines and may be empty; builders must warn rather than invent values.
type Branch struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Location         string `json:"location"`
	RoutingNumber    string `json:"routing_number"`
	BranchCode       string `json:"branch_code,omitempty"`
	AccountingNumber string `json:"accounting_number,omitempty"`
}

// MissingMICRIdentifiers lists the MICR identifiers the branch lacks.
func (b *Branch) MissingMICRIdentifiers() []string {
	var missing []string
	if b.RoutingNumber == "" {
		missing = append(missing, "routing_number")
	}
	if b.AccountingNumber == "" {
		missing = append(missing, "accounting_number")
	}
	return missing
}
