package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "4.35 EUR/mo", EUR(4.35).String())
	assert.Equal(t, "6.00 USD/mo", USD(6).String())
	assert.Equal(t, "unknown", Money{}.String())
	assert.True(t, Money{}.IsZero())
	assert.False(t, USD(0).IsZero(), "a free instance has a known cost")
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"4.3500", 4.35, false},
		{"0", 0, false},
		{"29.59", 29.59, false},
		{"", 0, true},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePrice(tt.input, CurrencyEUR)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.Amount, 0.001)
			assert.Equal(t, CurrencyEUR, got.Currency)
		})
	}
}

func TestGCPMonthlyCost(t *testing.T) {
	tests := []struct {
		name        string
		machineType string
		zone        string
		want        Money
		known       bool
	}{
		{"standard", "e2-small", "europe-west1-b", USD(12.23), true},
		{"free tier", "e2-micro", "us-central1-a", USD(0), true},
		{"micro outside free tier", "e2-micro", "asia-east1-a", USD(6.11), true},
		{"unknown", "a3-megagpu-8g", "us-central1-a", Money{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GCPMonthlyCost(tt.machineType, tt.zone)
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegionOfZone(t *testing.T) {
	assert.Equal(t, "us-central1", RegionOfZone("us-central1-b"))
	assert.Equal(t, "europe-west4", RegionOfZone("europe-west4-a"))
	assert.Equal(t, "global", RegionOfZone("global"))
}

func TestHetznerMonthlyTransferBytes(t *testing.T) {
	assert.Equal(t, 20*TiB, HetznerMonthlyTransferBytes("fsn1"))
	assert.Equal(t, 1*TiB, HetznerMonthlyTransferBytes("ash"))
	assert.Equal(t, 20*TiB, HetznerMonthlyTransferBytes("new-location"))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "none", FormatBytes(0))
	assert.Equal(t, "1.0 GiB", FormatBytes(GiB))
	assert.Equal(t, "20.0 TiB", FormatBytes(20*TiB))
	assert.Equal(t, "512.0 GiB", FormatBytes(TiB/2))
}
