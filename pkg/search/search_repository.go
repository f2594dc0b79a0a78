package search

import (
	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/entities"
	"context"
	"time"

	"gorm.io/gorm"
)

// searchVector is the indexed text combination queries run against; it must
// stay in sync with the GIN index created by the migration.
const searchVector = "to_tsvector('english', coalesce(raw_text,'') || ' ' || coalesce(merchant_name,'') || ' ' || coalesce(notes,'') || ' ' || coalesce(tags,''))"

type (
	SearchRepository interface {
		SearchReceipts(ctx context.Context, userID string, query string, filters domain.SearchFilters, limit, offset int) ([]*entities.Receipt, int64, error)
		SuggestMerchants(ctx context.Context, userID string, query string, limit int) ([]domain.Suggestion, error)
		SuggestCategories(ctx context.Context, userID string, query string, limit int) ([]domain.Suggestion, error)
		GetMatchingTags(ctx context.Context, userID string, query string) ([]string, error)

		GetRecentSearch(ctx context.Context, userID string, query string, since time.Time) (*entities.SearchHistory, error)
		CreateSearchHistory(ctx context.Context, history *entities.SearchHistory) error
		UpdateSearchHistory(ctx context.Context, history *entities.SearchHistory) error
		GetSearchHistory(ctx context.Context, userID string, limit int) ([]*entities.SearchHistory, error)
	}

	searchRepository struct {
		db *gorm.DB
	}
)

func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) SearchReceipts(ctx context.Context, userID string, query string, filters domain.SearchFilters, limit, offset int) ([]*entities.Receipt, int64, error) {
	var receipts []*entities.Receipt
	var count int64

	base := r.db.WithContext(ctx).
		Model(&entities.Receipt{}).
		Where("user_id = ?", userID).
		Where(searchVector+" @@ plainto_tsquery('english', ?)", query)

	if filters.Category != "" {
		base = base.Where("category = ?", filters.Category)
	}
	if filters.DateFrom != nil {
		base = base.Where("purchase_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		base = base.Where("purchase_date <= ?", *filters.DateTo)
	}
	if filters.AmountMin != nil {
		base = base.Where("amount >= ?", *filters.AmountMin)
	}
	if filters.AmountMax != nil {
		base = base.Where("amount <= ?", *filters.AmountMax)
	}

	if err := base.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := base.
		Select("receipts.*, ts_rank("+searchVector+", plainto_tsquery('english', ?)) AS search_rank", query).
		Order("search_rank DESC, purchase_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&receipts).Error; err != nil {
		return nil, 0, err
	}

	return receipts, count, nil
}

func (r *searchRepository) SuggestMerchants(ctx context.Context, userID string, query string, limit int) ([]domain.Suggestion, error) {
	var suggestions []domain.Suggestion
	err := r.db.WithContext(ctx).
		Model(&entities.Receipt{}).
		Select("merchant_name AS text, ? AS kind, COUNT(*) AS frequency", domain.SuggestionKindMerchant).
		Where("user_id = ? AND merchant_name ILIKE ?", userID, "%"+query+"%").
		Group("merchant_name").
		Order("frequency DESC, merchant_name ASC").
		Limit(limit).
		Scan(&suggestions).Error
	return suggestions, err
}

func (r *searchRepository) SuggestCategories(ctx context.Context, userID string, query string, limit int) ([]domain.Suggestion, error) {
	var suggestions []domain.Suggestion
	err := r.db.WithContext(ctx).
		Model(&entities.Receipt{}).
		Select("category AS text, ? AS kind, COUNT(*) AS frequency", domain.SuggestionKindCategory).
		Where("user_id = ? AND category <> '' AND category ILIKE ?", userID, "%"+query+"%").
		Group("category").
		Order("frequency DESC, category ASC").
		Limit(limit).
		Scan(&suggestions).Error
	return suggestions, err
}

// GetMatchingTags returns the raw comma-joined tag strings of receipts whose
// tags contain the query; splitting and counting happens in the service.
func (r *searchRepository) GetMatchingTags(ctx context.Context, userID string, query string) ([]string, error) {
	var tagStrings []string
	err := r.db.WithContext(ctx).
		Model(&entities.Receipt{}).
		Where("user_id = ? AND tags <> '' AND tags ILIKE ?", userID, "%"+query+"%").
		Pluck("tags", &tagStrings).Error
	return tagStrings, err
}

func (r *searchRepository) GetRecentSearch(ctx context.Context, userID string, query string, since time.Time) (*entities.SearchHistory, error) {
	var history entities.SearchHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND query = ? AND last_searched_at >= ?", userID, query, since).
		Order("last_searched_at desc").
		First(&history).Error; err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *searchRepository) CreateSearchHistory(ctx context.Context, history *entities.SearchHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *searchRepository) UpdateSearchHistory(ctx context.Context, history *entities.SearchHistory) error {
	return r.db.WithContext(ctx).Save(history).Error
}

func (r *searchRepository) GetSearchHistory(ctx context.Context, userID string, limit int) ([]*entities.SearchHistory, error) {
	var entries []*entities.SearchHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_searched_at desc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
