package game

import "time"

// Tuning constants for the cursed energy economy. Rates are CE per minute
// unless noted; per-second amounts are derived at the point of use.
const (
	EarningRateBase       = 1.0
	EarningRateDebt       = 0.5
	EarningRateSevereDebt = 0.25

	DebtThresholdMild   = -5.0
	DebtThresholdSevere = -10.0

	ConsumptionRatePerMin = 1.0

	VowEarningBoost    = 0.5
	VowGraceEarnRate   = 0.2 // grace seconds per study second
	VowDuration        = 24 * time.Hour
	VowPenaltyCooldown = 6 * time.Hour

	NCEEarningRatePerMin = 0.5

	RCTStreakDaysRequired = 3
	RCTMinNCERequired     = 0.1

	SafeBreakEarnRatio      = 5 // study seconds per banked break second
	SafeBreakMaxSeconds     = 3600.0
	SafeBreakWarningSeconds = 3

	SleepRewardShort = 10.0 // 1-5h
	SleepRewardIdeal = 20.0 // 6-8h
	SleepRewardLong  = 15.0 // 9h+

	MaxLogEntries = 100
)

const DateLayout = "2006-01-02"
