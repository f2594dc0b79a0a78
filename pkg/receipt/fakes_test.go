package receipt

import (
	"context"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeReceiptRepository is an in-memory ReceiptRepository. It enforces the
// same per-user content-hash uniqueness the real index does and rolls state
// back when a transactional unit fails.
type fakeReceiptRepository struct {
	mu       sync.Mutex
	receipts map[string]*entities.Receipt
	items    []*entities.ReceiptItem
	products map[string]*entities.Product

	createItemErr error
	failItemAfter int // fail CreateReceiptItem once this many items exist
}

func newFakeReceiptRepository() *fakeReceiptRepository {
	return &fakeReceiptRepository{
		receipts:      make(map[string]*entities.Receipt),
		products:      make(map[string]*entities.Product),
		failItemAfter: -1,
	}
}

func productKey(userID, normalizedName string) string {
	return userID + "|" + normalizedName
}

func (f *fakeReceiptRepository) WithTransaction(_ context.Context, fn func(txRepo ReceiptRepository) error) error {
	f.mu.Lock()
	savedReceipts := make(map[string]*entities.Receipt, len(f.receipts))
	for k, v := range f.receipts {
		savedReceipts[k] = v
	}
	savedItems := append([]*entities.ReceiptItem(nil), f.items...)
	savedProducts := make(map[string]*entities.Product, len(f.products))
	for k, v := range f.products {
		savedProducts[k] = v
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.receipts = savedReceipts
		f.items = savedItems
		f.products = savedProducts
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeReceiptRepository) CreateReceipt(_ context.Context, receipt *entities.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.receipts {
		if existing.UserID == receipt.UserID && existing.ContentHash == receipt.ContentHash {
			return gorm.ErrDuplicatedKey
		}
	}
	f.receipts[receipt.ID.String()] = receipt
	return nil
}

func (f *fakeReceiptRepository) GetReceiptByID(_ context.Context, id string) (*entities.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	receipt, ok := f.receipts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return receipt, nil
}

func (f *fakeReceiptRepository) GetReceiptByContentHash(_ context.Context, userID string, contentHash string) (*entities.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, receipt := range f.receipts {
		if receipt.UserID.String() == userID && receipt.ContentHash == contentHash {
			return receipt, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReceiptRepository) FindSimilarReceipt(_ context.Context, userID string, merchantName string, purchaseDate time.Time, amountLow, amountHigh decimal.Decimal) (*entities.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	day := purchaseDate.Format("2006-01-02")
	for _, receipt := range f.receipts {
		if receipt.UserID.String() != userID {
			continue
		}
		if receipt.PurchaseDate.Format("2006-01-02") != day {
			continue
		}
		if receipt.Amount.LessThan(amountLow) || receipt.Amount.GreaterThan(amountHigh) {
			continue
		}
		stored := strings.ToUpper(receipt.MerchantName)
		query := strings.ToUpper(merchantName)
		if strings.Contains(stored, query) || strings.Contains(query, stored) {
			return receipt, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReceiptRepository) GetReceipts(_ context.Context, userID string, category string, status string, page, limit int) ([]*entities.Receipt, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*entities.Receipt
	for _, receipt := range f.receipts {
		if receipt.UserID.String() != userID {
			continue
		}
		if category != "all" && category != "" && receipt.Category != category {
			continue
		}
		if status != "all" && status != "" && receipt.ProcessingStatus != status {
			continue
		}
		matched = append(matched, receipt)
	}

	count := int64(len(matched))
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return nil, count, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], count, nil
}

func (f *fakeReceiptRepository) UpdateReceipt(_ context.Context, receipt *entities.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.receipts[receipt.ID.String()] = receipt
	return nil
}

func (f *fakeReceiptRepository) DeleteReceipt(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.receipts, id)
	kept := f.items[:0]
	for _, item := range f.items {
		if item.ReceiptID.String() != id {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeReceiptRepository) CreateReceiptItem(_ context.Context, item *entities.ReceiptItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createItemErr != nil && f.failItemAfter >= 0 && len(f.items) >= f.failItemAfter {
		return f.createItemErr
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeReceiptRepository) GetProductByNormalizedName(_ context.Context, userID string, normalizedName string) (*entities.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[productKey(userID, normalizedName)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (f *fakeReceiptRepository) CreateProduct(_ context.Context, product *entities.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.products[productKey(product.UserID.String(), product.NormalizedName)] = product
	return nil
}

func (f *fakeReceiptRepository) SaveProduct(_ context.Context, product *entities.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.products[productKey(product.UserID.String(), product.NormalizedName)] = product
	return nil
}

type fakeExtractionClient struct {
	result *domain.ExtractionResult
	err    error

	calls      int
	lastKey    string
	lastLocale string
}

func (f *fakeExtractionClient) Extract(_ context.Context, objectKey string, locale string) (*domain.ExtractionResult, error) {
	f.calls++
	f.lastKey = objectKey
	f.lastLocale = locale
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.result
	return &copied, nil
}

type fakeS3 struct {
	deleted []string
}

func (f *fakeS3) UploadFile(fileName string, _ *multipart.FileHeader, dir string, _ ...string) (string, error) {
	return dir + "/" + fileName, nil
}

func (f *fakeS3) UpdateFile(objectKey string, _ *multipart.FileHeader, _ ...string) (string, error) {
	return objectKey, nil
}

func (f *fakeS3) DeleteFile(objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://bucket.s3.test.amazonaws.com/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(strings.TrimPrefix(link, "https://bucket.s3.test.amazonaws.com/"), "/")
}
