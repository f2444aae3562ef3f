package experimenting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoProportionZTest(t *testing.T) {
	tests := []struct {
		name            string
		conversions1    float64
		impressions1    float64
		conversions2    float64
		impressions2    float64
		wantSignificant bool
		wantZeroZ       bool
	}{
		{
			name: "Diferença grande em amostra grande deve ser significativa",
			conversions1: 50, impressions1: 1000,
			conversions2: 250, impressions2: 1000,
			wantSignificant: true,
		},
		{
			name: "Diferença pequena em amostra pequena não deve ser significativa",
			conversions1: 10, impressions1: 100,
			conversions2: 11, impressions2: 100,
			wantSignificant: false,
		},
		{
			name: "Taxas idênticas devem dar z zero",
			conversions1: 10, impressions1: 100,
			conversions2: 10, impressions2: 100,
			wantSignificant: false,
			wantZeroZ:       true,
		},
		{
			name: "Variante sem impressões não deve quebrar o teste",
			conversions1: 0, impressions1: 0,
			conversions2: 10, impressions2: 100,
			wantSignificant: false,
			wantZeroZ:       true,
		},
		{
			name: "Nenhuma conversão em nenhum braço deve dar erro padrão zero",
			conversions1: 0, impressions1: 100,
			conversions2: 0, impressions2: 100,
			wantSignificant: false,
			wantZeroZ:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := twoProportionZTest(tt.conversions1, tt.impressions1, tt.conversions2, tt.impressions2)

			require.NotNil(t, result)
			assert.Equal(t, tt.wantSignificant, result.IsSignificant)
			assert.Equal(t, 0.95, result.ConfidenceLevel)

			if tt.wantZeroZ {
				assert.Equal(t, 0.0, result.ZScore)
				assert.Equal(t, 1.0, result.PValue)
			}

			if tt.wantSignificant {
				assert.Greater(t, result.ZScore, zThreshold95)
				assert.Less(t, result.PValue, 0.05)
			}
		})
	}
}

func TestTwoTailedPValue(t *testing.T) {
	// z = 1.96 é o limiar clássico de 95%: p deve ficar em torno de 0.05
	assert.InDelta(t, 0.05, twoTailedPValue(1.96), 0.001)

	// z = 0 significa nenhuma diferença observada
	assert.InDelta(t, 1.0, twoTailedPValue(0), 0.0001)

	// z muito alto deve levar o p-valor a praticamente zero
	assert.InDelta(t, 0.0, twoTailedPValue(10), 0.0001)
}
