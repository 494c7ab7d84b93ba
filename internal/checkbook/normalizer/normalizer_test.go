package normalizer

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
)

func rawWithLeaves(account string, leafCount string, numbers ...string) models.ExternalCheckbookResult {
	raw := models.ExternalCheckbookResult{
		AccountNumber: account,
		AccountBranch: "017",
		ChequeLeaves:  leafCount,
	}
	for _, n := range numbers {
		raw.ChequeStatuses = append(raw.ChequeStatuses, models.ExternalChequeStatus{
			ChequeBookNumber: "BK-1",
			ChequeNumber:     n,
			Status:           "N",
		})
	}
	return raw
}

func TestNormalize(t *testing.T) {
	t.Run("sorts leaves ascending", func(t *testing.T) {
		res, err := Normalize(rawWithLeaves("1100200300", "5", "5", "3", "1", "4", "2"))
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, res.LeafNumbers())
		assert.False(t, res.LeafCountMismatch())
	})

	t.Run("drops zero, negative and malformed leaf numbers", func(t *testing.T) {
		res, err := Normalize(rawWithLeaves("1100200300", "4", "3", "0", "-2", "x", "1"))
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3}, res.LeafNumbers())
		assert.Equal(t, 3, res.DiscardedLeaves)
		assert.True(t, res.LeafCountMismatch(), "reported count no longer matches valid leaves")
	})

	t.Run("drops leaves without a book reference", func(t *testing.T) {
		raw := rawWithLeaves("1100200300", "", "7")
		raw.ChequeStatuses = append(raw.ChequeStatuses, models.ExternalChequeStatus{ChequeNumber: "8", Status: "N"})
		res, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, []int64{7}, res.LeafNumbers())
	})

	t.Run("drops repeated leaf numbers", func(t *testing.T) {
		res, err := Normalize(rawWithLeaves("1100200300", "", "9", "9", "10"))
		require.NoError(t, err)
		assert.Equal(t, []int64{9, 10}, res.LeafNumbers())
		assert.Equal(t, 1, res.DiscardedLeaves)
	})

	t.Run("no valid leaves is an upstream data error", func(t *testing.T) {
		_, err := Normalize(rawWithLeaves("1100200300", "25", "0", "abc"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamData))
	})

	t.Run("missing account number is an upstream data error", func(t *testing.T) {
		_, err := Normalize(rawWithLeaves("  ", "25", "1"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamData))
	})

	t.Run("maps bank status flags", func(t *testing.T) {
		raw := rawWithLeaves("1100200300", "", "1")
		raw.ChequeStatuses = append(raw.ChequeStatuses, models.ExternalChequeStatus{ChequeBookNumber: "BK-1", ChequeNumber: "2", Status: "U"})
		res, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, models.LeafStatusNew, res.Leaves[0].Status)
		assert.Equal(t, models.LeafStatusUsed, res.Leaves[1].Status)
	})

	t.Run("corporate book of fifty leaves", func(t *testing.T) {
		numbers := make([]string, 0, 50)
		for n := 1050; n >= 1001; n-- {
			numbers = append(numbers, strconv.Itoa(n))
		}
		raw := rawWithLeaves("1100200300", "50", numbers...)
		raw.FirstChequeNumber = "1001"
		res, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, models.DocumentTypeCorporate, res.DocumentType.Type)
		assert.Equal(t, models.TypeSourceLeafCount, res.DocumentType.Source)
		assert.Len(t, res.Leaves, 50)
		assert.Equal(t, int64(1001), res.Leaves[0].LeafNumber)
		assert.Equal(t, int64(1050), res.Leaves[49].LeafNumber)
		assert.Equal(t, int64(1001), res.FirstLeafNumber)
	})
}

func TestResolveDocumentType(t *testing.T) {
	cases := []struct {
		name      string
		leafCount int
		account   string
		want      models.DocumentType
		source    models.TypeSource
	}{
		{"employee book", 10, "1000", models.DocumentTypeEmployee, models.TypeSourceLeafCount},
		{"individual book", 25, "2000", models.DocumentTypeIndividual, models.TypeSourceLeafCount},
		{"corporate book", 50, "1000", models.DocumentTypeCorporate, models.TypeSourceLeafCount},
		{"prefix two is corporate", 0, "2001002003", models.DocumentTypeCorporate, models.TypeSourceAccountPrefix},
		{"other prefix is individual", 30, "1001002003", models.DocumentTypeIndividual, models.TypeSourceAccountPrefix},
		{"non-numeric account is unknown", 0, "AB12", models.DocumentTypeUnknown, models.TypeSourceUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveDocumentType(tc.leafCount, tc.account)
			assert.Equal(t, tc.want, got.Type)
			assert.Equal(t, tc.source, got.Source)
			assert.Equal(t, tc.source != models.TypeSourceLeafCount, got.IsHeuristic())
		})
	}
}
