package game

import (
	"fmt"
	"math"
)

// SignBindingVow freezes the current debt into a 24h contract. Returns false
// without mutating anything when a penalty cooldown is running, a vow was
// already signed today, or there is no debt to vow against.
func (e *Engine) SignBindingVow() bool {
	s := e.State
	if e.InPenaltyCooldown() || e.HasUsedVowToday() || s.Balance >= 0 {
		return false
	}
	now := e.clock.Now().UnixMilli()
	s.Vow = VowState{
		IsActive:       true,
		StartedAt:      &now,
		LastVowDate:    e.clock.Today(),
		DebtAtVowStart: math.Abs(s.Balance),
	}
	s.AppendLog(newVowLog(now, "Binding Vow Signed - Sacred contract activated", nil))
	return true
}

// UseRCT converts banked NCE into debt relief: heal the smaller of the debt
// and the NCE balance, spending one credit. Returns the healed amount.
func (e *Engine) UseRCT() (float64, bool) {
	s := e.State
	if s.Balance >= 0 || s.RCTCredits < 1 || s.NCEBalance < RCTMinNCERequired {
		return 0, false
	}
	heal := math.Min(math.Abs(s.Balance), s.NCEBalance)
	s.Balance = Round4(s.Balance + heal)
	s.NCEBalance = Round4(s.NCEBalance - heal)
	s.RCTCredits--
	msg := fmt.Sprintf("Reverse Cursed Technique - Purified %.2f units of debt", heal)
	s.AppendLog(newRCTLog(e.clock.Now().UnixMilli(), msg, heal))
	return heal, true
}

// LogSleep records last night's sleep once per trusted-clock day and pays a
// tiered CE reward.
func (e *Engine) LogSleep(hours float64) (float64, bool) {
	s := e.State
	today := e.clock.Today()
	if s.LastSleepDate == today {
		return 0, false
	}
	var reward float64
	var msg string
	switch {
	case hours >= 1 && hours <= 5:
		reward = SleepRewardShort
		msg = "Sleep recorded (+10 CE)"
	case hours >= 6 && hours <= 8:
		reward = SleepRewardIdeal
		msg = "Restored Cursed Energy (+20 CE)"
	default:
		reward = SleepRewardLong
		msg = "Overrested (+15 CE)"
	}
	s.Balance = Round4(s.Balance + reward)
	s.LastSleepDate = today
	s.AppendLog(newRewardLog(e.clock.Now().UnixMilli(), msg, reward))
	return reward, true
}

// Reset restores the all-zero default state. Durable storage is cleared by
// the caller.
func (e *Engine) Reset() {
	*e.State = *DefaultState()
	e.sessionSeconds = 0
	e.sessionCE = 0
	e.safeBreakNotified = false
}
