package receipt

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"Go-Receipt-Vault/domain"
)

var fingerprintStrip = regexp.MustCompile(`[^A-Z0-9]`)

// Fingerprint derives the canonical content digest for extracted receipt
// data. Identical normalized fields always produce an identical digest, so
// the digest doubles as the per-user uniqueness key for deduplication.
//
// Normalization: merchant upper-cased, trimmed and stripped of everything
// non-alphanumeric; purchase date truncated to the calendar day; amounts
// fixed to two decimals; subtotal and tax omitted entirely when absent; item
// count defaults to zero. Time-of-day is intentionally excluded so the same
// paper receipt photographed twice in one day still collides.
func Fingerprint(data domain.ExtractionResult) string {
	parts := make([]string, 0, 6)

	if merchant := normalizeFingerprintMerchant(data.MerchantName); merchant != "" {
		parts = append(parts, merchant)
	}
	if !data.PurchaseDate.IsZero() {
		parts = append(parts, data.PurchaseDate.Format("2006-01-02"))
	}
	parts = append(parts, data.TotalAmount.StringFixed(2))
	if data.SubtotalAmount != nil {
		parts = append(parts, data.SubtotalAmount.StringFixed(2))
	}
	if data.TaxAmount != nil {
		parts = append(parts, data.TaxAmount.StringFixed(2))
	}
	parts = append(parts, strconv.Itoa(len(data.Items)))

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func normalizeFingerprintMerchant(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	return fingerprintStrip.ReplaceAllString(upper, "")
}
