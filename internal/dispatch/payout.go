package dispatch

import "math"

// PayoutPolicy decides how a booking's total is split between the
// platform margin and the partner payout.
type PayoutPolicy interface {
	// Split returns the platform margin and the partner payout for a
	// booking total. The two always sum to the total.
	Split(total float64) (marginAmount, payoutAmount float64)
	MarginPct() float64
}

// MarginPolicy keeps a flat percentage of every booking as platform
// margin. A zero percentage passes the full amount to the partner.
type MarginPolicy struct {
	Pct float64
}

func (p MarginPolicy) Split(total float64) (float64, float64) {
	margin := math.Round(total*p.Pct) / 100
	return margin, math.Round((total-margin)*100) / 100
}

func (p MarginPolicy) MarginPct() float64 {
	return p.Pct
}
