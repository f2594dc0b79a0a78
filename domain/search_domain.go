package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SuggestionKindMerchant = "merchant"
	SuggestionKindCategory = "category"
	SuggestionKindTag      = "tag"

	// MinQueryLength is the shortest query searched or suggested for;
	// anything shorter returns empty without touching storage.
	MinQueryLength = 2

	// HistoryCoalesceWindow bounds how recently an identical query must
	// have run to bump its history row instead of inserting a new one.
	HistoryCoalesceWindow = 5 * time.Minute
)

var (
	MessageSuccessSearchReceipts    = "receipts search completed"
	MessageSuccessGetSuggestions    = "suggestions retrieved successfully"
	MessageSuccessGetSearchHistory  = "search history retrieved successfully"
	MessageFailedSearchReceipts     = "failed to search receipts"
	MessageFailedGetSuggestions     = "failed to retrieve suggestions"
	MessageFailedGetSearchHistory   = "failed to retrieve search history"
	MessageFailedQueryTooShort      = "search query must be at least 2 characters"
	ErrQueryTooShort                = errors.New("search query too short")
)

type (
	SearchReceiptsRequest struct {
		Query      string `json:"query" query:"q" validate:"required,min=2"`
		Category   string `json:"category" query:"category" validate:"omitempty"`
		DateFrom   string `json:"date_from" query:"date_from" validate:"omitempty,datetime=2006-01-02"`
		DateTo     string `json:"date_to" query:"date_to" validate:"omitempty,datetime=2006-01-02"`
		AmountMin  string `json:"amount_min" query:"amount_min" validate:"omitempty"`
		AmountMax  string `json:"amount_max" query:"amount_max" validate:"omitempty"`
		Limit      int    `json:"limit" query:"limit"`
		Offset     int    `json:"offset" query:"offset"`
	}

	// SearchFilters is the parsed, typed form of the optional filters.
	SearchFilters struct {
		Category  string
		DateFrom  *time.Time
		DateTo    *time.Time
		AmountMin *decimal.Decimal
		AmountMax *decimal.Decimal
	}

	SearchReceiptsResponse struct {
		Results []ReceiptResponse `json:"results"`
		Total   int64             `json:"total"`
		Limit   int               `json:"limit"`
		Offset  int               `json:"offset"`
	}

	Suggestion struct {
		Text      string `json:"text"`
		Kind      string `json:"kind"`
		Frequency int64  `json:"frequency"`
	}

	SearchHistoryEntry struct {
		Query          string    `json:"query"`
		ResultCount    int       `json:"result_count"`
		SearchCount    int       `json:"search_count"`
		LastSearchedAt time.Time `json:"last_searched_at"`
	}
)
