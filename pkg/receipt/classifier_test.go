package receipt

import (
	"testing"

	"Go-Receipt-Vault/domain"

	"github.com/stretchr/testify/require"
)

func TestClassifyText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"grocery store", "WALMART SUPERCENTER\nproduce dept\ngrocery total", domain.CategoryGrocery},
		{"restaurant", "Blue Bottle Coffee\ncafe latte 4.50", domain.CategoryRestaurant},
		{"fuel", "SHELL\nunleaded gasoline 12.4 gal", domain.CategoryFuel},
		{"pharmacy", "CVS PHARMACY\nprescription pickup", domain.CategoryPharmacy},
		{"case insensitive", "ikea WAREHOUSE garden section", domain.CategoryHousehold},
		{"no signal", "thank you for your purchase 12.00", ""},
		{"empty text", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ClassifyText(tt.text))
		})
	}
}

func TestClassifyTextHighestScoreWins(t *testing.T) {
	t.Parallel()

	// One fuel keyword against two grocery keywords.
	text := "shell station next to the supermarket grocery aisle"
	require.Equal(t, domain.CategoryGrocery, ClassifyText(text))
}

func TestCanonicalMerchantName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  Whole Foods Market ", "WHOLE FOODS MARKET"},
		{"trader joe's", "TRADER JOE'S"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CanonicalMerchantName(tt.in))
	}
}

func TestNormalizeProductName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Organic  Bananas", "organic bananas"},
		{"  OAT\tMILK  ", "oat milk"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeProductName(tt.in))
	}
}
