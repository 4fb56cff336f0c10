package game

import (
	"fmt"
	"math"
	"time"
)

// Reconcile settles everything that happened while the process was not
// running. Order matters: streak settlement first, then daily resets, then
// expired-vow settlement, then background-time replay.
func (e *Engine) Reconcile() []Event {
	e.settleDayBoundary()
	e.rollDailyCounters(e.clock.Today())
	events := []Event{}
	if ev, ok := e.settleExpiredVow(); ok {
		events = append(events, ev)
	}
	events = append(events, e.replayBackgroundTime()...)
	return events
}

// settleDayBoundary evaluates the streak against the balance snapshot taken
// at the previous day boundary. An improvement over exactly-yesterday's
// snapshot extends the streak; every RCTStreakDaysRequired-th day grants a
// credit. Any gap or regression resets the streak.
func (e *Engine) settleDayBoundary() {
	s := e.State
	today := e.clock.Today()
	if s.LastBalanceDate == "" {
		s.LastBalanceDate = today
		s.LastBalance = s.Balance
		return
	}
	if s.LastBalanceDate == today {
		return
	}
	yesterday := e.clock.Now().AddDate(0, 0, -1).UTC().Format(DateLayout)
	if s.LastBalanceDate == yesterday && s.Balance > s.LastBalance {
		s.StreakDays++
		if s.StreakDays%RCTStreakDaysRequired == 0 {
			s.RCTCredits++
		}
	} else {
		s.StreakDays = 0
	}
	s.LastBalance = s.Balance
	s.LastBalanceDate = today
}

// settleExpiredVow covers the case where the 24h window lapsed while the app
// was closed, before any tick could fire.
func (e *Engine) settleExpiredVow() (Event, bool) {
	s := e.State
	if !s.Vow.IsActive || s.Vow.StartedAt == nil || s.Balance >= 0 {
		return Event{}, false
	}
	if e.clock.Now().Sub(time.UnixMilli(*s.Vow.StartedAt)) < VowDuration {
		return Event{}, false
	}
	return e.failVow(), true
}

// replayBackgroundTime applies the whole interval since the persisted
// session marker in one batch, using the same per-second formulas as the
// tick but rounding once at the end. It deliberately does not revisit
// day-boundary or tier crossings inside the batch.
func (e *Engine) replayBackgroundTime() []Event {
	s := e.State
	mode := s.ActiveSessionMode
	start := s.ActiveSessionStart
	s.ActiveSessionMode = ModeIdle
	s.ActiveSessionStart = nil
	if (mode != ModeStudy && mode != ModeGaming) || start == nil {
		return nil
	}
	elapsed := int64(e.clock.Now().Sub(time.UnixMilli(*start)).Seconds())
	if elapsed < 1 {
		return nil
	}

	var events []Event
	var delta float64
	switch mode {
	case ModeStudy:
		delta, events = e.replayStudy(elapsed)
	case ModeGaming:
		delta = e.replayGaming(elapsed)
	}

	msg := fmt.Sprintf("Recovered %s session from background time", mode)
	s.AppendLog(newSystemLog(e.clock.Now().UnixMilli(), msg, Round4(delta), elapsed))
	s.SessionSafeBreakSecondsUsed = 0
	return events
}

func (e *Engine) replayStudy(elapsed int64) (float64, []Event) {
	s := e.State
	secs := float64(elapsed)
	earned := EarningRate(s.Balance, s.Vow.IsActive) * secs / 60
	s.Balance = Round4(s.Balance + earned)
	s.TotalStudySeconds += elapsed
	s.DailyStudySeconds += elapsed
	if s.StreakDays > 0 {
		s.NCEBalance = Round4(s.NCEBalance + NCEEarningRatePerMin*secs/60)
	}

	if s.Vow.IsActive {
		s.Vow.StudySecondsWhileVow += elapsed
		s.Vow.GraceTimeSeconds = Round2(s.Vow.GraceTimeSeconds + VowGraceEarnRate*secs)
		if s.Balance >= 0 {
			ev := e.fulfillVow()
			return earned + ev.Amount, []Event{ev}
		}
		return earned, nil
	}

	if s.Balance >= 0 {
		bank := s.SafeBreakSeconds + secs/SafeBreakEarnRatio
		if bank > SafeBreakMaxSeconds {
			bank = SafeBreakMaxSeconds
		}
		s.SafeBreakSeconds = Round2(bank)
	}
	return earned, nil
}

func (e *Engine) replayGaming(elapsed int64) float64 {
	s := e.State
	remaining := float64(elapsed)
	s.TotalGamingSeconds += elapsed
	s.DailyGamingSeconds += elapsed

	if s.Vow.IsActive {
		avail := s.Vow.GraceTimeSeconds - s.Vow.UsedGraceSeconds
		if avail > 0 {
			used := math.Min(avail, remaining)
			s.Vow.UsedGraceSeconds = Round2(s.Vow.UsedGraceSeconds + used)
			remaining -= used
		}
	} else if s.SafeBreakSeconds > 0 {
		used := math.Min(s.SafeBreakSeconds, remaining)
		s.SafeBreakSeconds = Round2(s.SafeBreakSeconds - used)
		s.SessionSafeBreakSecondsUsed = Round2(s.SessionSafeBreakSecondsUsed + used)
		remaining -= used
	}

	if remaining <= 0 {
		return 0
	}
	spent := remaining * ConsumptionRatePerMin / 60
	s.Balance = Round4(s.Balance - spent)
	return -spent
}
