package receipt

import (
	"context"
	"testing"
	"time"

	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func storedReceipt(userID uuid.UUID, data domain.ExtractionResult) *entities.Receipt {
	return &entities.Receipt{
		ID:           uuid.New(),
		UserID:       userID,
		MerchantName: CanonicalMerchantName(data.MerchantName),
		PurchaseDate: data.PurchaseDate,
		Amount:       data.TotalAmount,
		Currency:     data.Currency,
		ContentHash:  Fingerprint(data),
	}
}

func TestFindDuplicateExact(t *testing.T) {
	t.Parallel()

	repo := newFakeReceiptRepository()
	detector := NewDuplicateDetector(repo)
	userID := uuid.New()

	data := extractionFixture()
	existing := storedReceipt(userID, data)
	require.NoError(t, repo.CreateReceipt(context.Background(), existing))

	check, err := detector.FindDuplicate(context.Background(), userID.String(), data)
	require.NoError(t, err)
	require.True(t, check.IsDuplicate)
	require.Equal(t, domain.DuplicateTypeExact, check.Type)
	require.NotNil(t, check.Existing)
	require.Equal(t, existing.ID.String(), check.Existing.ID)
	require.Equal(t, Fingerprint(data), check.ContentHash)
}

func TestFindDuplicateScopedToUser(t *testing.T) {
	t.Parallel()

	repo := newFakeReceiptRepository()
	detector := NewDuplicateDetector(repo)

	data := extractionFixture()
	require.NoError(t, repo.CreateReceipt(context.Background(), storedReceipt(uuid.New(), data)))

	// Same content under a different owner is not a duplicate.
	check, err := detector.FindDuplicate(context.Background(), uuid.New().String(), data)
	require.NoError(t, err)
	require.False(t, check.IsDuplicate)
}

func TestFindDuplicateSimilarWithinTolerance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		stored      string
		submitted   string
		isDuplicate bool
	}{
		{"inside two percent", "100.00", "101.50", true},
		{"exactly at boundary", "100.00", "102.00", true},
		{"just outside boundary", "100.00", "102.05", false},
		{"small amount inside floor", "0.40", "0.41", true},
		{"small amount outside floor", "0.40", "0.42", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeReceiptRepository()
			detector := NewDuplicateDetector(repo)
			userID := uuid.New()

			stored := extractionFixture()
			stored.TotalAmount = decimal.RequireFromString(tt.stored)
			require.NoError(t, repo.CreateReceipt(context.Background(), storedReceipt(userID, stored)))

			submitted := extractionFixture()
			submitted.TotalAmount = decimal.RequireFromString(tt.submitted)

			check, err := detector.FindDuplicate(context.Background(), userID.String(), submitted)
			require.NoError(t, err)
			require.Equal(t, tt.isDuplicate, check.IsDuplicate)
			if tt.isDuplicate {
				require.Equal(t, domain.DuplicateTypeSimilar, check.Type)
				require.NotNil(t, check.Existing)
			}
		})
	}
}

func TestFindDuplicateSkipsFuzzyOnIncompleteData(t *testing.T) {
	t.Parallel()

	repo := newFakeReceiptRepository()
	detector := NewDuplicateDetector(repo)
	userID := uuid.New()

	stored := extractionFixture()
	require.NoError(t, repo.CreateReceipt(context.Background(), storedReceipt(userID, stored)))

	tests := []struct {
		name   string
		mutate func(*domain.ExtractionResult)
	}{
		{"missing merchant", func(d *domain.ExtractionResult) { d.MerchantName = "" }},
		{"missing date", func(d *domain.ExtractionResult) { d.PurchaseDate = time.Time{} }},
		{"zero amount", func(d *domain.ExtractionResult) { d.TotalAmount = decimal.Zero }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := extractionFixture()
			// Shift the amount slightly so the exact digest never matches and
			// only the fuzzy path could flag it.
			data.TotalAmount = data.TotalAmount.Add(decimal.RequireFromString("0.10"))
			tt.mutate(&data)

			check, err := detector.FindDuplicate(context.Background(), userID.String(), data)
			require.NoError(t, err)
			require.False(t, check.IsDuplicate)
			require.NotEmpty(t, check.ContentHash)
		})
	}
}

func TestFindDuplicateDifferentDayNotSimilar(t *testing.T) {
	t.Parallel()

	repo := newFakeReceiptRepository()
	detector := NewDuplicateDetector(repo)
	userID := uuid.New()

	stored := extractionFixture()
	require.NoError(t, repo.CreateReceipt(context.Background(), storedReceipt(userID, stored)))

	data := extractionFixture()
	data.PurchaseDate = data.PurchaseDate.AddDate(0, 0, 1)

	check, err := detector.FindDuplicate(context.Background(), userID.String(), data)
	require.NoError(t, err)
	require.False(t, check.IsDuplicate)
}

func TestFuzzyTolerance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount string
		want   string
	}{
		{"100.00", "2.00"},
		{"50.00", "1.00"},
		{"0.40", "0.01"},
		{"0.00", "0.01"},
		{"-100.00", "2.00"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.amount, func(t *testing.T) {
			t.Parallel()
			got := FuzzyTolerance(decimal.RequireFromString(tt.amount))
			require.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"tolerance for %s: got %s want %s", tt.amount, got, tt.want)
		})
	}
}
