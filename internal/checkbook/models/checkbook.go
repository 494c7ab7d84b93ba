package models

// ExternalChequeStatus is one leaf row as reported by core banking.
// All fields are raw strings; nothing here is trusted.
type ExternalChequeStatus struct {
	ChequeBookNumber string
	ChequeNumber     string
	Status           string
}

// ExternalCheckbookResult is the checkbook query response after wire decoding.
type ExternalCheckbookResult struct {
	AccountNumber     string
	AccountBranch     string
	CustomerName      string
	FirstChequeNumber string
	ChequeLeaves      string
	RequestStatus     string
	CheckBookType     string
	DeliveryMode      string
	LanguageCode      string
	ChequeStatuses    []ExternalChequeStatus
}

// LeafStatus is the bank-side state of a single leaf.
type LeafStatus string

const (
	LeafStatusNew  LeafStatus = "NEW"
	LeafStatusUsed LeafStatus = "USED"
)

// ParseLeafStatus maps the bank's status flag. Anything other than an explicit
// "new" marker is treated as used so it is never presented as fresh stock.
func ParseLeafStatus(raw string) LeafStatus {
	switch raw {
	case "N", "n", "NEW", "new":
		return LeafStatusNew
	default:
		return LeafStatusUsed
	}
}

// ChequeLeaf is a single normalized leaf. Identity is (account, LeafNumber).
type ChequeLeaf struct {
	BookNumber string     `json:"book_number"`
	LeafNumber int64      `json:"leaf_number"`
	Status     LeafStatus `json:"status"`
}

// CheckbookQueryResult is the canonical checkbook returned by the normalizer.
//
// Invariants:
//   - Leaves are sorted ascending by LeafNumber and every LeafNumber is > 0
//   - Leaves is never empty
//   - LeafCount is the count reported upstream and may disagree with len(Leaves)
type CheckbookQueryResult struct {
	AccountNumber   string                 `json:"account_number"`
	BranchCode      string                 `json:"branch_code"`
	CustomerName    string                 `json:"customer_name,omitempty"`
	FirstLeafNumber int64                  `json:"first_leaf_number,omitempty"`
	LeafCount       int                    `json:"leaf_count"`
	DocumentType    DocumentTypeResolution `json:"document_type"`
	BookType        string                 `json:"book_type,omitempty"`
	DeliveryMode    string                 `json:"delivery_mode,omitempty"`
	LanguageCode    string                 `json:"language_code,omitempty"`
	RequestStatus   string                 `json:"request_status,omitempty"`
	Leaves          []ChequeLeaf           `json:"leaves"`
	DiscardedLeaves int                    `json:"discarded_leaves"`
}

// LeafCountMismatch reports whether the upstream leaf count disagrees with the
// number of valid leaves actually returned.
func (r *CheckbookQueryResult) LeafCountMismatch() bool {
	return r.LeafCount != 0 && r.LeafCount != len(r.Leaves)
}

// LeafNumbers returns the leaf numbers in order.
func (r *CheckbookQueryResult) LeafNumbers() []int64 {
	out := make([]int64, len(r.Leaves))
	for i, l := range r.Leaves {
		out[i] = l.LeafNumber
	}
	return out
}

// Narrow returns a copy keeping only leaves within [from, to]. Zero bounds are open.
func (r *CheckbookQueryResult) Narrow(from, to int64) *CheckbookQueryResult {
	cp := *r
	cp.Leaves = make([]ChequeLeaf, 0, len(r.Leaves))
	for _, l := range r.Leaves {
		if from > 0 && l.LeafNumber < from {
			continue
		}
		if to > 0 && l.LeafNumber > to {
			continue
		}
		cp.Leaves = append(cp.Leaves, l)
	}
	return &cp
}
