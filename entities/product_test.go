package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRecordPrice(t *testing.T) {
	t.Parallel()

	product := &Product{}
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	product.RecordPrice(decimal.RequireFromString("2.00"), day)
	require.Equal(t, 1, product.PurchaseCount)
	require.True(t, product.LowestPrice.Equal(decimal.RequireFromString("2.00")))
	require.True(t, product.HighestPrice.Equal(decimal.RequireFromString("2.00")))
	require.True(t, product.AveragePrice.Equal(decimal.RequireFromString("2.00")))

	product.RecordPrice(decimal.RequireFromString("4.00"), day.AddDate(0, 0, 7))
	require.Equal(t, 2, product.PurchaseCount)
	require.True(t, product.LowestPrice.Equal(decimal.RequireFromString("2.00")))
	require.True(t, product.HighestPrice.Equal(decimal.RequireFromString("4.00")))
	require.True(t, product.AveragePrice.Equal(decimal.RequireFromString("3.00")))

	product.RecordPrice(decimal.RequireFromString("1.50"), day.AddDate(0, 0, 14))
	require.Equal(t, 3, product.PurchaseCount)
	require.True(t, product.LowestPrice.Equal(decimal.RequireFromString("1.50")))
	require.True(t, product.LastSeenPrice.Equal(decimal.RequireFromString("1.50")))
	require.Equal(t, day.AddDate(0, 0, 14), product.LastSeenAt)
	// 2.00 + 4.00 + 1.50 over three observations.
	require.True(t, product.AveragePrice.Equal(decimal.RequireFromString("2.50")))
}

func TestRecordPriceZeroObservation(t *testing.T) {
	t.Parallel()

	product := &Product{}
	product.RecordPrice(decimal.Zero, time.Now())

	require.Equal(t, 1, product.PurchaseCount)
	require.True(t, product.LowestPrice.IsZero())
	require.True(t, product.AveragePrice.IsZero())
}
