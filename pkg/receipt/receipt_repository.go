package receipt

import (
	"Go-Receipt-Vault/entities"
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	ReceiptRepository interface {
		CreateReceipt(ctx context.Context, receipt *entities.Receipt) error
		GetReceiptByID(ctx context.Context, id string) (*entities.Receipt, error)
		GetReceiptByContentHash(ctx context.Context, userID string, contentHash string) (*entities.Receipt, error)
		FindSimilarReceipt(ctx context.Context, userID string, merchantName string, purchaseDate time.Time, amountLow, amountHigh decimal.Decimal) (*entities.Receipt, error)
		GetReceipts(ctx context.Context, userID string, category string, status string, page, limit int) ([]*entities.Receipt, int64, error)
		UpdateReceipt(ctx context.Context, receipt *entities.Receipt) error
		DeleteReceipt(ctx context.Context, id string) error

		CreateReceiptItem(ctx context.Context, item *entities.ReceiptItem) error

		// Product resolution lives here so item persistence and product
		// statistics share the receipt transaction.
		GetProductByNormalizedName(ctx context.Context, userID string, normalizedName string) (*entities.Product, error)
		CreateProduct(ctx context.Context, product *entities.Product) error
		SaveProduct(ctx context.Context, product *entities.Product) error

		// WithTransaction runs fn against a repository bound to one
		// database transaction; any error rolls the whole unit back.
		WithTransaction(ctx context.Context, fn func(txRepo ReceiptRepository) error) error
	}

	receiptRepository struct {
		db *gorm.DB
	}
)

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) WithTransaction(ctx context.Context, fn func(txRepo ReceiptRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&receiptRepository{db: tx})
	})
}

func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *entities.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *receiptRepository) GetReceiptByID(ctx context.Context, id string) (*entities.Receipt, error) {
	var receipt entities.Receipt
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("receipt_items.position asc")
		}).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) GetReceiptByContentHash(ctx context.Context, userID string, contentHash string) (*entities.Receipt, error) {
	var receipt entities.Receipt
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_hash = ?", userID, contentHash).
		First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) FindSimilarReceipt(ctx context.Context, userID string, merchantName string, purchaseDate time.Time, amountLow, amountHigh decimal.Decimal) (*entities.Receipt, error) {
	var receipt entities.Receipt
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("DATE(purchase_date) = ?", purchaseDate.Format("2006-01-02")).
		Where("amount BETWEEN ? AND ?", amountLow, amountHigh).
		Where("merchant_name ILIKE ? OR ? ILIKE '%' || merchant_name || '%'",
			"%"+merchantName+"%", merchantName).
		Order("created_at desc").
		First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) GetReceipts(ctx context.Context, userID string, category string, status string, page, limit int) ([]*entities.Receipt, int64, error) {
	var receipts []*entities.Receipt
	var count int64

	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if category != "all" && category != "" {
		query = query.Where("category = ?", category)
	}
	if status != "all" && status != "" {
		query = query.Where("processing_status = ?", status)
	}

	if err := query.Model(&entities.Receipt{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Order("purchase_date desc").Find(&receipts).Error; err != nil {
		return nil, 0, err
	}

	return receipts, count, nil
}

func (r *receiptRepository) UpdateReceipt(ctx context.Context, receipt *entities.Receipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

func (r *receiptRepository) DeleteReceipt(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&entities.Receipt{}, "id = ?", id).Error
}

func (r *receiptRepository) CreateReceiptItem(ctx context.Context, item *entities.ReceiptItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *receiptRepository) GetProductByNormalizedName(ctx context.Context, userID string, normalizedName string) (*entities.Product, error) {
	var product entities.Product
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND normalized_name = ?", userID, normalizedName).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *receiptRepository) CreateProduct(ctx context.Context, product *entities.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *receiptRepository) SaveProduct(ctx context.Context, product *entities.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}
