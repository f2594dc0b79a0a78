package receipt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"Go-Receipt-Vault/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func extractionServer(t *testing.T, handler http.HandlerFunc) *httpExtractionClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &httpExtractionClient{
		baseURL: server.URL,
		client:  server.Client(),
	}
}

func TestExtractDecodesResponse(t *testing.T) {
	t.Parallel()

	client := extractionServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extract", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "receipts/receipt-abc123", body["image_path"])
		require.Equal(t, "en-US", body["locale"])

		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"merchant_name": "Whole Foods Market",
				"purchase_date": "2026-03-14",
				"total_amount": "42.49",
				"tax_amount": "2.49",
				"currency": "USD",
				"raw_text": "WHOLE FOODS MARKET",
				"suggested_category": "grocery",
				"confidence": 0.93,
				"items": [
					{"name": "Bananas", "quantity": "1", "unit_price": "1.99"}
				]
			}
		}`))
	})

	result, err := client.Extract(context.Background(), "receipts/receipt-abc123", "en-US")
	require.NoError(t, err)

	require.Equal(t, "Whole Foods Market", result.MerchantName)
	require.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), result.PurchaseDate)
	require.True(t, result.TotalAmount.Equal(decimal.RequireFromString("42.49")))
	require.NotNil(t, result.TaxAmount)
	require.True(t, result.TaxAmount.Equal(decimal.RequireFromString("2.49")))
	// Absent in the payload, so it stays nil rather than zero.
	require.Nil(t, result.SubtotalAmount)
	require.Equal(t, "grocery", result.SuggestedCategory)
	require.Len(t, result.Items, 1)
	require.Equal(t, "Bananas", result.Items[0].Name)
}

func TestExtractFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"service error flag", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success": false, "error": "image unreadable"}`))
		}},
		{"non-200 status", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success": tru`))
		}},
		{"bad purchase date", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success": true, "data": {"purchase_date": "03/14/2026", "total_amount": "1.00"}}`))
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := extractionServer(t, tt.handler)
			_, err := client.Extract(context.Background(), "receipts/x", "")
			require.ErrorIs(t, err, domain.ErrExtractionFailed)
		})
	}
}

func TestExtractUnconfiguredURL(t *testing.T) {
	t.Parallel()

	client := &httpExtractionClient{client: http.DefaultClient}
	_, err := client.Extract(context.Background(), "receipts/x", "")
	require.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractCoalescesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	release := make(chan struct{})

	client := extractionServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"success": true, "data": {"total_amount": "1.00"}}`))
	})

	const callers = 4
	var wg sync.WaitGroup
	results := make([]*domain.ExtractionResult, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := client.Extract(context.Background(), "receipts/same-key", "")
			require.NoError(t, err)
			results[i] = result
		}()
	}

	// Give every goroutine time to join the in-flight call, then let the
	// single request finish.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), hits.Load())
	for i := 1; i < callers; i++ {
		// Shared flight, but each caller owns its copy.
		require.NotSame(t, results[0], results[i])
		require.True(t, results[0].TotalAmount.Equal(results[i].TotalAmount))
	}
}
