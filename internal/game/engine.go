package game

import (
	"fmt"
	"math"
	"time"
)

// Clock is the trusted time source. All date-boundary decisions go through
// it, never through the raw system clock.
type Clock interface {
	Now() time.Time
	Today() string
}

// Engine owns every mutation of the persisted State. It performs no I/O:
// callers persist the state and dispatch returned events.
type Engine struct {
	State *State
	clock Clock

	sessionSeconds    int64
	sessionCE         float64 // signed CE applied to balance this session
	safeBreakNotified bool
}

func NewEngine(clock Clock, st *State) *Engine {
	if st == nil {
		st = DefaultState()
	}
	if st.ActiveSessionMode == "" {
		st.ActiveSessionMode = ModeIdle
	}
	return &Engine{State: st, clock: clock}
}

func (e *Engine) Mode() Mode {
	m := e.State.ActiveSessionMode
	if m != ModeStudy && m != ModeGaming {
		return ModeIdle
	}
	return m
}

func (e *Engine) SessionSeconds() int64 { return e.sessionSeconds }

func (e *Engine) StartStudy()  { e.startSession(ModeStudy) }
func (e *Engine) StartGaming() { e.startSession(ModeGaming) }

func (e *Engine) startSession(m Mode) {
	if e.Mode() == m {
		return
	}
	s := e.State
	ts := e.clock.Now().UnixMilli()
	s.ActiveSessionMode = m
	s.ActiveSessionStart = &ts
	s.SessionSafeBreakSecondsUsed = 0
	e.sessionSeconds = 0
	e.sessionCE = 0
	e.safeBreakNotified = false
}

// StopTimer ends the active session, appending a summary log entry when the
// session ran for at least one tick. Calling it while idle is a no-op.
func (e *Engine) StopTimer() {
	s := e.State
	mode := e.Mode()
	if mode != ModeIdle && e.sessionSeconds >= 1 {
		ts := e.clock.Now().UnixMilli()
		value := Round4(e.sessionCE)
		switch mode {
		case ModeStudy:
			s.AppendLog(newSessionLog(ts, "Cursed Energy Gained From Focus Session", value, e.sessionSeconds, 0))
		case ModeGaming:
			s.AppendLog(newSessionLog(ts, "Spent Cursed Energy on Leisure Session", value, e.sessionSeconds, s.SessionSafeBreakSecondsUsed))
		}
	}
	s.ActiveSessionMode = ModeIdle
	s.ActiveSessionStart = nil
	s.SessionSafeBreakSecondsUsed = 0
	e.sessionSeconds = 0
	e.sessionCE = 0
	e.safeBreakNotified = false
}

// Tick advances the active session by one second. It is the only autonomous
// mutation path; everything else is user-initiated.
func (e *Engine) Tick() []Event {
	mode := e.Mode()
	if mode == ModeIdle {
		return nil
	}
	e.rollDailyCounters(e.clock.Today())
	e.sessionSeconds++
	switch mode {
	case ModeStudy:
		return e.tickStudy()
	case ModeGaming:
		return e.tickGaming()
	}
	return nil
}

func (e *Engine) rollDailyCounters(today string) {
	s := e.State
	if s.LastDailyResetDate != today {
		s.DailyStudySeconds = 0
		s.DailyGamingSeconds = 0
		s.LastDailyResetDate = today
	}
	if s.LastSafeBreakResetDate != today {
		s.SafeBreakSeconds = 0
		s.LastSafeBreakResetDate = today
	}
}

func (e *Engine) tickStudy() []Event {
	s := e.State
	earn := EarningRate(s.Balance, s.Vow.IsActive) / 60
	s.Balance = Round4(s.Balance + earn)
	e.sessionCE += earn
	s.TotalStudySeconds++
	s.DailyStudySeconds++

	// NCE comes from the streak only, never from the vow boost.
	if s.StreakDays > 0 {
		s.NCEBalance = Round4(s.NCEBalance + NCEEarningRatePerMin/60)
	}

	if s.Vow.IsActive {
		if s.Vow.StartedAt != nil && s.Balance < 0 {
			elapsed := e.clock.Now().Sub(time.UnixMilli(*s.Vow.StartedAt))
			if elapsed >= VowDuration {
				return []Event{e.failVow()}
			}
		}
		s.Vow.StudySecondsWhileVow++
		s.Vow.GraceTimeSeconds = Round2(s.Vow.GraceTimeSeconds + VowGraceEarnRate)
		if s.Balance >= 0 {
			return []Event{e.fulfillVow()}
		}
		return nil
	}

	if s.Balance >= 0 {
		bank := s.SafeBreakSeconds + 1.0/SafeBreakEarnRatio
		if bank > SafeBreakMaxSeconds {
			bank = SafeBreakMaxSeconds
		}
		s.SafeBreakSeconds = Round2(bank)
	}
	return nil
}

func (e *Engine) tickGaming() []Event {
	s := e.State
	s.TotalGamingSeconds++
	s.DailyGamingSeconds++
	debit := ConsumptionRatePerMin / 60

	// Exactly one of grace, safe break, or balance absorbs the second.
	if s.Vow.IsActive {
		if s.Vow.GraceTimeSeconds-s.Vow.UsedGraceSeconds > 0 {
			s.Vow.UsedGraceSeconds = Round2(s.Vow.UsedGraceSeconds + 1)
			return nil
		}
		s.Balance = Round4(s.Balance - debit)
		e.sessionCE -= debit
		return nil
	}

	if s.SafeBreakSeconds > 0 {
		bank := Round2(s.SafeBreakSeconds - 1)
		if bank < 0 {
			bank = 0
		}
		s.SafeBreakSeconds = bank
		s.SessionSafeBreakSecondsUsed = Round2(s.SessionSafeBreakSecondsUsed + 1)
		if bank == 0 && !e.safeBreakNotified {
			e.safeBreakNotified = true
			return []Event{{Type: EventSafeBreakDepleted}}
		}
		return nil
	}

	s.Balance = Round4(s.Balance - debit)
	e.sessionCE -= debit
	return nil
}

// failVow applies the broken-vow penalty: the larger of the frozen debt and
// the current debt, a cooldown, and a log entry. LastVowDate survives so the
// one-per-day rule still holds.
func (e *Engine) failVow() Event {
	s := e.State
	penalty := math.Max(s.Vow.DebtAtVowStart, math.Abs(s.Balance))
	s.Balance = Round4(s.Balance - penalty)

	lastVowDate := s.Vow.LastVowDate
	until := e.clock.Now().Add(VowPenaltyCooldown).UnixMilli()
	s.Vow = VowState{LastVowDate: lastVowDate, VowPenaltyUntil: &until}

	value := -penalty
	msg := fmt.Sprintf("Binding Vow Failed - Debt increased by %.1f CE", penalty)
	s.AppendLog(newVowLog(e.clock.Now().UnixMilli(), msg, &value))
	return Event{Type: EventVowFailed, Amount: penalty}
}

// fulfillVow pays out the unspent grace bank as bonus CE and clears the vow,
// preserving LastVowDate.
func (e *Engine) fulfillVow() Event {
	s := e.State
	bonus := (s.Vow.GraceTimeSeconds - s.Vow.UsedGraceSeconds) / 60
	s.Balance = Round4(s.Balance + bonus)
	e.sessionCE += bonus
	s.Vow = VowState{LastVowDate: s.Vow.LastVowDate}
	return Event{Type: EventVowFulfilled, Amount: bonus}
}

// Derived read-only values consumed by the UI.

func (e *Engine) EarningRatePerMin() float64 {
	return EarningRate(e.State.Balance, e.State.Vow.IsActive)
}

func (e *Engine) AvailableGraceSeconds() float64 {
	g := e.State.Vow.GraceTimeSeconds - e.State.Vow.UsedGraceSeconds
	if g < 0 {
		return 0
	}
	return g
}

func (e *Engine) InPenaltyCooldown() bool {
	until := e.State.Vow.VowPenaltyUntil
	return until != nil && e.clock.Now().UnixMilli() < *until
}

func (e *Engine) HasUsedVowToday() bool {
	return e.State.Vow.LastVowDate == e.clock.Today()
}

func (e *Engine) CanSignVow() bool {
	return e.State.Balance < 0 && !e.HasUsedVowToday() && !e.InPenaltyCooldown()
}

func (e *Engine) ShouldPromptSleep() bool {
	return e.State.LastSleepDate != e.clock.Today()
}

// UsingSafeBreak reports whether the current leisure second would be covered
// by the safe-break bank rather than the balance.
func (e *Engine) UsingSafeBreak() bool {
	return e.Mode() == ModeGaming && !e.State.Vow.IsActive && e.State.SafeBreakSeconds > 0
}
