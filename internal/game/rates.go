package game

import "math"

// EarningRate returns the study earning rate in CE per minute for the given
// balance tier. An active vow adds a flat boost on top of whatever tier
// applies.
func EarningRate(balance float64, vowActive bool) float64 {
	var base float64
	switch {
	case balance >= 0:
		base = EarningRateBase
	case balance > DebtThresholdMild:
		base = EarningRateBase
	case balance > DebtThresholdSevere:
		base = EarningRateDebt
	default:
		base = EarningRateSevereDebt
	}
	if vowActive {
		return base + VowEarningBoost
	}
	return base
}

// Round4 rounds CE and NCE amounts to 4 decimal places. Applied immediately
// after every mutation so drift cannot accumulate across ticks.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Round2 rounds grace and safe-break second banks to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
