package receipt

import (
	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/entities"
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fuzzyTolerance is the amount window for the similar-duplicate check:
// 2% relative with an absolute floor of one cent so tiny amounts still match.
var (
	fuzzyToleranceRate  = decimal.NewFromFloat(0.02)
	fuzzyToleranceFloor = decimal.NewFromFloat(0.01)
)

type (
	DuplicateDetector interface {
		FindDuplicate(ctx context.Context, userID string, data domain.ExtractionResult) (domain.DuplicateCheck, error)
	}

	duplicateDetector struct {
		receiptRepository ReceiptRepository
	}
)

func NewDuplicateDetector(receiptRepository ReceiptRepository) DuplicateDetector {
	return &duplicateDetector{receiptRepository: receiptRepository}
}

// FindDuplicate classifies freshly extracted data against the owner's
// existing receipts. The exact check is a unique-index lookup on the content
// digest; the fuzzy check only runs when that finds nothing and merchant,
// date and amount are all present, catching re-submissions where OCR drifted
// slightly on the extracted total.
func (d *duplicateDetector) FindDuplicate(ctx context.Context, userID string, data domain.ExtractionResult) (domain.DuplicateCheck, error) {
	contentHash := Fingerprint(data)

	existing, err := d.receiptRepository.GetReceiptByContentHash(ctx, userID, contentHash)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DuplicateCheck{}, err
	}
	if existing != nil {
		return domain.DuplicateCheck{
			IsDuplicate: true,
			Type:        domain.DuplicateTypeExact,
			Reason:      "a receipt with identical content already exists",
			Existing:    summarizeReceipt(existing),
			ContentHash: contentHash,
		}, nil
	}

	if data.MerchantName == "" || data.PurchaseDate.IsZero() || data.TotalAmount.IsZero() {
		return domain.DuplicateCheck{ContentHash: contentHash}, nil
	}

	tolerance := FuzzyTolerance(data.TotalAmount)
	similar, err := d.receiptRepository.FindSimilarReceipt(
		ctx,
		userID,
		CanonicalMerchantName(data.MerchantName),
		data.PurchaseDate,
		data.TotalAmount.Sub(tolerance),
		data.TotalAmount.Add(tolerance),
	)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DuplicateCheck{}, err
	}
	if similar != nil {
		return domain.DuplicateCheck{
			IsDuplicate: true,
			Type:        domain.DuplicateTypeSimilar,
			Reason: fmt.Sprintf(
				"a receipt from %s on %s with a similar amount already exists",
				similar.MerchantName, similar.PurchaseDate.Format("2006-01-02"),
			),
			Existing:    summarizeReceipt(similar),
			ContentHash: contentHash,
		}, nil
	}

	return domain.DuplicateCheck{ContentHash: contentHash}, nil
}

// FuzzyTolerance returns max(0.01, amount * 0.02).
func FuzzyTolerance(amount decimal.Decimal) decimal.Decimal {
	tolerance := amount.Abs().Mul(fuzzyToleranceRate)
	if tolerance.LessThan(fuzzyToleranceFloor) {
		return fuzzyToleranceFloor
	}
	return tolerance
}

func summarizeReceipt(receipt *entities.Receipt) *domain.ReceiptSummary {
	return &domain.ReceiptSummary{
		ID:           receipt.ID.String(),
		MerchantName: receipt.MerchantName,
		PurchaseDate: receipt.PurchaseDate,
		Amount:       receipt.Amount,
		Currency:     receipt.Currency,
		CreatedAt:    receipt.CreatedAt,
	}
}
