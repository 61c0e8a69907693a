package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

func TestParseOrderSpec(t *testing.T) {
	tests := []struct {
		name         string
		spec         string
		wantErr      bool
		wantMarket   string
		wantSide     types.Side
		wantAmount   float64
		wantMaxPrice *float64
	}{
		{
			name:       "three-part-spec",
			spec:       "market-rain:YES:25",
			wantMarket: "market-rain",
			wantSide:   types.SideYes,
			wantAmount: 25,
		},
		{
			name:         "four-part-spec-with-max-price",
			spec:         "market-rain:NO:25:0.45",
			wantMarket:   "market-rain",
			wantSide:     types.SideNo,
			wantAmount:   25,
			wantMaxPrice: floatPtr(0.45),
		},
		{
			name:       "lowercase-side-normalized",
			spec:       "market-rain:yes:10",
			wantMarket: "market-rain",
			wantSide:   types.SideYes,
			wantAmount: 10,
		},
		{
			name:       "fractional-amount",
			spec:       "market-rain:NO:0.5",
			wantMarket: "market-rain",
			wantSide:   types.SideNo,
			wantAmount: 0.5,
		},
		{
			name:    "too-few-parts",
			spec:    "market-rain:YES",
			wantErr: true,
		},
		{
			name:    "too-many-parts",
			spec:    "market-rain:YES:25:0.5:extra",
			wantErr: true,
		},
		{
			name:    "unknown-side",
			spec:    "market-rain:MAYBE:25",
			wantErr: true,
		},
		{
			name:    "unparseable-amount",
			spec:    "market-rain:YES:lots",
			wantErr: true,
		},
		{
			name:    "zero-amount",
			spec:    "market-rain:YES:0",
			wantErr: true,
		},
		{
			name:    "negative-amount",
			spec:    "market-rain:YES:-5",
			wantErr: true,
		},
		{
			name:    "unparseable-max-price",
			spec:    "market-rain:YES:25:cheap",
			wantErr: true,
		},
		{
			name:    "max-price-above-one",
			spec:    "market-rain:YES:25:1.5",
			wantErr: true,
		},
		{
			name:    "empty-market",
			spec:    ":YES:25",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := parseOrderSpec(tt.spec)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantMarket, order.MarketID)
			assert.Equal(t, tt.wantSide, order.Side)
			assert.Equal(t, tt.wantAmount, order.Amount)

			if tt.wantMaxPrice == nil {
				assert.Nil(t, order.MaxPrice)
			} else {
				require.NotNil(t, order.MaxPrice)
				assert.Equal(t, *tt.wantMaxPrice, *order.MaxPrice)
			}
		})
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
