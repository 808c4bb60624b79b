package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarginPolicySplit(t *testing.T) {
	tests := []struct {
		name   string
		pct    float64
		total  float64
		margin float64
		payout float64
	}{
		{"zero margin passes everything through", 0, 200, 0, 200},
		{"ten percent", 10, 200, 20, 180},
		{"rounds to cents", 12.5, 149.95, 18.74, 131.21},
		{"full margin", 100, 80, 80, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			margin, payout := MarginPolicy{Pct: tt.pct}.Split(tt.total)
			assert.Equal(t, tt.margin, margin)
			assert.Equal(t, tt.payout, payout)
		})
	}
}
