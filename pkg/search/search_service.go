package search

import (
	"Go-Receipt-Vault/domain"
	"Go-Receipt-Vault/entities"
	"Go-Receipt-Vault/internal/utils/cache"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	suggestionCacheTTL = time.Minute
)

type (
	SearchService interface {
		Search(ctx context.Context, req domain.SearchReceiptsRequest, userID string) (domain.SearchReceiptsResponse, error)
		Suggest(ctx context.Context, userID string, query string, limit int) ([]domain.Suggestion, error)
		GetSearchHistory(ctx context.Context, userID string, limit int) ([]domain.SearchHistoryEntry, error)
	}

	searchService struct {
		searchRepository SearchRepository
		cache            cache.Cache
	}
)

func NewSearchService(searchRepository SearchRepository, cache cache.Cache) SearchService {
	return &searchService{
		searchRepository: searchRepository,
		cache:            cache,
	}
}

// Search executes a ranked full-text query scoped to the owner, applies the
// optional structured filters, and records the query to the owner's search
// history. Relevance ranking and the recency tie-break run in Postgres.
func (s *searchService) Search(ctx context.Context, req domain.SearchReceiptsRequest, userID string) (domain.SearchReceiptsResponse, error) {
	query := strings.TrimSpace(req.Query)
	if len([]rune(query)) < domain.MinQueryLength {
		return domain.SearchReceiptsResponse{}, domain.ErrQueryTooShort
	}

	filters, err := parseFilters(req)
	if err != nil {
		return domain.SearchReceiptsResponse{}, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	receipts, total, err := s.searchRepository.SearchReceipts(ctx, userID, query, filters, limit, offset)
	if err != nil {
		return domain.SearchReceiptsResponse{}, err
	}

	results := make([]domain.ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		results = append(results, toReceiptResponse(receipt))
	}

	s.recordSearch(ctx, userID, query, req, len(results))

	return domain.SearchReceiptsResponse{
		Results: results,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

func parseFilters(req domain.SearchReceiptsRequest) (domain.SearchFilters, error) {
	var filters domain.SearchFilters

	if req.Category != "" {
		if !domain.ValidCategory(req.Category) {
			return filters, domain.ErrInvalidCategory
		}
		filters.Category = req.Category
	}
	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return filters, domain.ErrInvalidPurchaseDate
		}
		filters.DateFrom = &from
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return filters, domain.ErrInvalidPurchaseDate
		}
		// Inclusive upper bound for the whole calendar day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		filters.DateTo = &end
	}
	if req.AmountMin != "" {
		min, err := decimal.NewFromString(req.AmountMin)
		if err != nil {
			return filters, domain.ErrInvalidAmount
		}
		filters.AmountMin = &min
	}
	if req.AmountMax != "" {
		max, err := decimal.NewFromString(req.AmountMax)
		if err != nil {
			return filters, domain.ErrInvalidAmount
		}
		filters.AmountMax = &max
	}
	return filters, nil
}

// recordSearch logs the query to the owner's history. An identical query
// inside the coalescing window bumps the existing row instead of inserting a
// new one. History failures never fail the search itself.
func (s *searchService) recordSearch(ctx context.Context, userID string, query string, req domain.SearchReceiptsRequest, resultCount int) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return
	}

	since := time.Now().Add(-domain.HistoryCoalesceWindow)
	recent, err := s.searchRepository.GetRecentSearch(ctx, userID, query, since)
	if err == nil {
		recent.SearchCount++
		recent.ResultCount = resultCount
		recent.LastSearchedAt = time.Now()
		if err := s.searchRepository.UpdateSearchHistory(ctx, recent); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to bump search history")
		}
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to read search history")
		return
	}

	filters, _ := json.Marshal(map[string]string{
		"category":   req.Category,
		"date_from":  req.DateFrom,
		"date_to":    req.DateTo,
		"amount_min": req.AmountMin,
		"amount_max": req.AmountMax,
	})
	history := &entities.SearchHistory{
		ID:             uuid.New(),
		UserID:         userUUID,
		Query:          query,
		Filters:        string(filters),
		ResultCount:    resultCount,
		SearchCount:    1,
		LastSearchedAt: time.Now(),
	}
	if err := s.searchRepository.CreateSearchHistory(ctx, history); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to record search history")
	}
}

// Suggest aggregates typeahead values across merchant names, categories and
// tags, deduplicated by text keeping the highest observed frequency, ranked
// by frequency then alphabetically. Queries under two characters return
// empty without touching storage.
func (s *searchService) Suggest(ctx context.Context, userID string, query string, limit int) ([]domain.Suggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < domain.MinQueryLength {
		return []domain.Suggestion{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("suggest:%s:%s:%d", userID, strings.ToLower(query), limit)
	var cached []domain.Suggestion
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	merchants, err := s.searchRepository.SuggestMerchants(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}
	categories, err := s.searchRepository.SuggestCategories(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}
	tagStrings, err := s.searchRepository.GetMatchingTags(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	suggestions := MergeSuggestions(query, limit, merchants, categories, CountTags(tagStrings, query))

	s.cache.Set(ctx, cacheKey, suggestions, suggestionCacheTTL)
	return suggestions, nil
}

// CountTags splits comma-joined tag strings and counts the tags containing
// the query, case-insensitively.
func CountTags(tagStrings []string, query string) []domain.Suggestion {
	lowered := strings.ToLower(query)
	counts := make(map[string]int64)
	for _, joined := range tagStrings {
		for _, tag := range strings.Split(joined, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" || !strings.Contains(strings.ToLower(tag), lowered) {
				continue
			}
			counts[tag]++
		}
	}

	suggestions := make([]domain.Suggestion, 0, len(counts))
	for text, frequency := range counts {
		suggestions = append(suggestions, domain.Suggestion{
			Text:      text,
			Kind:      domain.SuggestionKindTag,
			Frequency: frequency,
		})
	}
	return suggestions
}

// MergeSuggestions deduplicates across sources by suggestion text
// (case-insensitive, the higher-frequency entry wins) and orders by
// frequency descending, then alphabetically.
func MergeSuggestions(query string, limit int, sources ...[]domain.Suggestion) []domain.Suggestion {
	best := make(map[string]domain.Suggestion)
	for _, source := range sources {
		for _, suggestion := range source {
			key := strings.ToLower(suggestion.Text)
			if existing, ok := best[key]; !ok || suggestion.Frequency > existing.Frequency {
				best[key] = suggestion
			}
		}
	}

	merged := make([]domain.Suggestion, 0, len(best))
	for _, suggestion := range best {
		merged = append(merged, suggestion)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Frequency != merged[j].Frequency {
			return merged[i].Frequency > merged[j].Frequency
		}
		return merged[i].Text < merged[j].Text
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func (s *searchService) GetSearchHistory(ctx context.Context, userID string, limit int) ([]domain.SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := s.searchRepository.GetSearchHistory(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	response := make([]domain.SearchHistoryEntry, 0, len(entries))
	for _, entry := range entries {
		response = append(response, domain.SearchHistoryEntry{
			Query:          entry.Query,
			ResultCount:    entry.ResultCount,
			SearchCount:    entry.SearchCount,
			LastSearchedAt: entry.LastSearchedAt,
		})
	}
	return response, nil
}

func toReceiptResponse(receipt *entities.Receipt) domain.ReceiptResponse {
	response := domain.ReceiptResponse{
		ID:               receipt.ID.String(),
		Category:         receipt.Category,
		Amount:           receipt.Amount,
		Currency:         receipt.Currency,
		MerchantName:     receipt.MerchantName,
		PurchaseDate:     receipt.PurchaseDate,
		Notes:            receipt.Notes,
		ContentHash:      receipt.ContentHash,
		ProcessingStatus: receipt.ProcessingStatus,
		PaymentMethod:    receipt.PaymentMethod,
		CardBrand:        receipt.CardBrand,
		TaxAmount:        receipt.TaxAmount,
		DiscountAmount:   receipt.DiscountAmount,
		CountryCode:      receipt.CountryCode,
		ImageURL:         receipt.ImageURL,
		CreatedAt:        receipt.CreatedAt,
	}
	if receipt.Tags != "" {
		response.Tags = strings.Split(receipt.Tags, ",")
	}
	return response
}
