package receipt

import "strings"

// CanonicalMerchantName is the stored form of a merchant name. Called
// explicitly before every write instead of hiding the rule in a GORM hook.
func CanonicalMerchantName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeProductName is the per-user identity key for products referenced
// by receipt items.
func NormalizeProductName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
