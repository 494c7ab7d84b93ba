// Package normalizer converts core-banking checkbook responses into the
// canonical CheckbookQueryResult.
//
// Upstream data is not trusted: malformed leaves are dropped individually and
// only an empty result fails the whole normalization.
package normalizer

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
)

// Book sizes with a known product mapping.
const (
	EmployeeLeafCount   = 10
	IndividualLeafCount = 25
	CorporateLeafCount  = 50
)

// Normalize maps raw into a CheckbookQueryResult. It fails with
// CodeUpstreamData when no valid leaf survives filtering.
func Normalize(raw models.ExternalCheckbookResult) (*models.CheckbookQueryResult, error) {
	account := strings.TrimSpace(raw.AccountNumber)
	if account == "" {
		return nil, dErrors.New(dErrors.CodeUpstreamData, "core banking response has no account number")
	}

	leaves, discarded := filterLeaves(raw.ChequeStatuses)
	if len(leaves) == 0 {
		return nil, dErrors.New(dErrors.CodeUpstreamData,
			fmt.Sprintf("core banking returned no valid cheque leaves for account %s", account))
	}

	leafCount := parsePositiveInt(raw.ChequeLeaves)
	return &models.CheckbookQueryResult{
		AccountNumber:   account,
		BranchCode:      strings.TrimSpace(raw.AccountBranch),
		CustomerName:    strings.TrimSpace(raw.CustomerName),
		FirstLeafNumber: int64(parsePositiveInt(raw.FirstChequeNumber)),
		LeafCount:       leafCount,
		DocumentType:    ResolveDocumentType(leafCount, account),
		BookType:        strings.TrimSpace(raw.CheckBookType),
		DeliveryMode:    strings.TrimSpace(raw.DeliveryMode),
		LanguageCode:    strings.TrimSpace(raw.LanguageCode),
		RequestStatus:   strings.TrimSpace(raw.RequestStatus),
		Leaves:          leaves,
		DiscardedLeaves: discarded,
	}, nil
}

// ResolveDocumentType derives the document type from the book's leaf count.
// When the count is not a known size it falls back to the account-number
// prefix rule: accounts starting with '2' are corporate, other digits are
// individual. The prefix rule is a bank-specific placeholder and is always
// reported as such through the Source tag.
func ResolveDocumentType(leafCount int, accountNumber string) models.DocumentTypeResolution {
	switch leafCount {
	case EmployeeLeafCount:
		return models.DocumentTypeResolution{Type: models.DocumentTypeEmployee, Source: models.TypeSourceLeafCount}
	case IndividualLeafCount:
		return models.DocumentTypeResolution{Type: models.DocumentTypeIndividual, Source: models.TypeSourceLeafCount}
	case CorporateLeafCount:
		return models.DocumentTypeResolution{Type: models.DocumentTypeCorporate, Source: models.TypeSourceLeafCount}
	}

	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" || accountNumber[0] < '0' || accountNumber[0] > '9' {
		return models.DocumentTypeResolution{Type: models.DocumentTypeUnknown, Source: models.TypeSourceUnknown}
	}
	if accountNumber[0] == '2' {
		return models.DocumentTypeResolution{Type: models.DocumentTypeCorporate, Source: models.TypeSourceAccountPrefix}
	}
	return models.DocumentTypeResolution{Type: models.DocumentTypeIndividual, Source: models.TypeSourceAccountPrefix}
}

// filterLeaves keeps rows with a positive leaf number and a book reference,
// drops repeated leaf numbers, and sorts ascending.
func filterLeaves(rows []models.ExternalChequeStatus) ([]models.ChequeLeaf, int) {
	leaves := make([]models.ChequeLeaf, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	discarded := 0
	for _, row := range rows {
		book := strings.TrimSpace(row.ChequeBookNumber)
		number, err := strconv.ParseInt(strings.TrimSpace(row.ChequeNumber), 10, 64)
		if err != nil || number <= 0 || book == "" {
			discarded++
			continue
		}
		if _, dup := seen[number]; dup {
			discarded++
			continue
		}
		seen[number] = struct{}{}
		leaves = append(leaves, models.ChequeLeaf{
			BookNumber: book,
			LeafNumber: number,
			Status:     models.ParseLeafStatus(strings.TrimSpace(row.Status)),
		})
	}
	slices.SortFunc(leaves, func(a, b models.ChequeLeaf) int {
		switch {
		case a.LeafNumber < b.LeafNumber:
			return -1
		case a.LeafNumber > b.LeafNumber:
			return 1
		}
		return 0
	})
	return leaves, discarded
}

func parsePositiveInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
