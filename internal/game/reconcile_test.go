package game

import (
	"testing"
	"time"
)

func TestStreakSettlement(t *testing.T) {
	cases := []struct {
		name        string
		lastDate    string
		lastBalance float64
		balance     float64
		streak      int
		wantStreak  int
		wantCredits int
	}{
		{"improvement extends streak", "2026-08-29", 1, 2, 1, 2, 0},
		{"third day grants credit", "2026-08-29", 1, 2, 2, 3, 1},
		{"sixth day grants credit", "2026-08-29", 1, 2, 5, 6, 1},
		{"no improvement resets", "2026-08-29", 2, 2, 4, 0, 0},
		{"regression resets", "2026-08-29", 2, 1, 4, 0, 0},
		{"gap day resets", "2026-08-27", 1, 5, 4, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := DefaultState()
			st.LastBalanceDate = tc.lastDate
			st.LastBalance = tc.lastBalance
			st.Balance = tc.balance
			st.StreakDays = tc.streak
			e, clk := newTestEngine(t, st)
			e.Reconcile()

			if st.StreakDays != tc.wantStreak {
				t.Fatalf("streak = %d, want %d", st.StreakDays, tc.wantStreak)
			}
			if st.RCTCredits != tc.wantCredits {
				t.Fatalf("credits = %d, want %d", st.RCTCredits, tc.wantCredits)
			}
			if st.LastBalanceDate != clk.Today() {
				t.Fatalf("snapshot date = %s, want today", st.LastBalanceDate)
			}
			if st.LastBalance != tc.balance {
				t.Fatalf("snapshot balance = %v, want %v", st.LastBalance, tc.balance)
			}
		})
	}
}

func TestStreakFirstLaunchInitializesSnapshot(t *testing.T) {
	st := DefaultState()
	st.Balance = 3
	e, clk := newTestEngine(t, st)
	e.Reconcile()
	if st.LastBalanceDate != clk.Today() || st.LastBalance != 3 {
		t.Fatalf("snapshot = %s/%v, want today/3", st.LastBalanceDate, st.LastBalance)
	}
	if st.StreakDays != 0 {
		t.Fatalf("streak = %d, want 0 on first launch", st.StreakDays)
	}
}

func TestStreakSameDayReconcileIsStable(t *testing.T) {
	st := DefaultState()
	st.Balance = 2
	st.LastBalance = 1
	st.LastBalanceDate = "2026-08-29"
	st.StreakDays = 2
	e, _ := newTestEngine(t, st)
	e.Reconcile()
	e.Reconcile()
	if st.StreakDays != 3 || st.RCTCredits != 1 {
		t.Fatalf("streak/credits = %d/%d, double settle on one day", st.StreakDays, st.RCTCredits)
	}
}

func TestReconcileSettlesExpiredVow(t *testing.T) {
	st := DefaultState()
	st.Balance = -6
	e, clk := newTestEngine(t, st)
	started := clk.now.Add(-30 * time.Hour).UnixMilli()
	st.Vow = VowState{
		IsActive:       true,
		StartedAt:      &started,
		DebtAtVowStart: 8,
		LastVowDate:    "2026-08-29",
	}
	events := e.Reconcile()

	if len(events) != 1 || events[0].Type != EventVowFailed {
		t.Fatalf("events = %v, want one vow_failed", events)
	}
	if st.Balance != -14 {
		t.Fatalf("balance = %v, want -14", st.Balance)
	}
	if st.Vow.IsActive {
		t.Fatal("vow still active")
	}
	if st.Vow.VowPenaltyUntil == nil {
		t.Fatal("cooldown not armed")
	}
	wantUntil := clk.now.Add(VowPenaltyCooldown).UnixMilli()
	if *st.Vow.VowPenaltyUntil != wantUntil {
		t.Fatalf("cooldown until = %d, want %d", *st.Vow.VowPenaltyUntil, wantUntil)
	}
}

func TestReconcileKeepsRunningVow(t *testing.T) {
	st := DefaultState()
	st.Balance = -6
	e, clk := newTestEngine(t, st)
	started := clk.now.Add(-2 * time.Hour).UnixMilli()
	st.Vow = VowState{IsActive: true, StartedAt: &started, DebtAtVowStart: 6}
	events := e.Reconcile()
	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
	if !st.Vow.IsActive {
		t.Fatal("running vow was settled early")
	}
}

func TestReplayBackgroundStudy(t *testing.T) {
	st := DefaultState()
	st.StreakDays = 1
	e, clk := newTestEngine(t, st)
	started := clk.now.Add(-10 * time.Minute).UnixMilli()
	st.ActiveSessionMode = ModeStudy
	st.ActiveSessionStart = &started
	e.Reconcile()

	if st.Balance != 10 {
		t.Fatalf("balance = %v, want 10 for 600s at 1 CE/min", st.Balance)
	}
	if st.NCEBalance != 5 {
		t.Fatalf("nce = %v, want 5", st.NCEBalance)
	}
	if st.SafeBreakSeconds != 120 {
		t.Fatalf("safe break bank = %v, want 120", st.SafeBreakSeconds)
	}
	if st.TotalStudySeconds != 600 || st.DailyStudySeconds != 600 {
		t.Fatalf("study seconds = %d/%d, want 600/600", st.TotalStudySeconds, st.DailyStudySeconds)
	}
	if st.ActiveSessionMode != ModeIdle || st.ActiveSessionStart != nil {
		t.Fatal("session marker survived replay")
	}
	entry := st.Logs[0]
	if entry.Type != LogSystem {
		t.Fatalf("log type = %s, want system", entry.Type)
	}
	if entry.Value == nil || *entry.Value != 10 {
		t.Fatalf("recovered value = %v, want 10", entry.Value)
	}
	if entry.Duration == nil || *entry.Duration != 600 {
		t.Fatalf("recovered duration = %v, want 600", entry.Duration)
	}
}

func TestReplayBackgroundGaming(t *testing.T) {
	st := DefaultState()
	st.Balance = 2
	st.SafeBreakSeconds = 100
	e, clk := newTestEngine(t, st)
	started := clk.now.Add(-5 * time.Minute).UnixMilli()
	st.ActiveSessionMode = ModeGaming
	st.ActiveSessionStart = &started
	e.Reconcile()

	if st.SafeBreakSeconds != 0 {
		t.Fatalf("safe break bank = %v, want drained", st.SafeBreakSeconds)
	}
	// 100s covered by the bank, the remaining 200s billed at 1 CE/min.
	if st.Balance != -1.3333 {
		t.Fatalf("balance = %v, want -1.3333", st.Balance)
	}
	if st.TotalGamingSeconds != 300 {
		t.Fatalf("gaming seconds = %d, want 300", st.TotalGamingSeconds)
	}
	if st.SessionSafeBreakSecondsUsed != 0 {
		t.Fatal("session counter must be cleared after replay")
	}
}

func TestReplayIgnoresStaleIdleMarker(t *testing.T) {
	st := DefaultState()
	e, _ := newTestEngine(t, st)
	events := e.Reconcile()
	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
	if len(st.Logs) != 0 {
		t.Fatalf("idle reconcile wrote %d logs", len(st.Logs))
	}
}

func TestReplayFulfillsVow(t *testing.T) {
	st := DefaultState()
	st.Balance = -1
	e, clk := newTestEngine(t, st)
	vowStart := clk.now.Add(-3 * time.Hour).UnixMilli()
	st.Vow = VowState{IsActive: true, StartedAt: &vowStart, DebtAtVowStart: 1, LastVowDate: "2026-08-29"}
	sessionStart := clk.now.Add(-2 * time.Minute).UnixMilli()
	st.ActiveSessionMode = ModeStudy
	st.ActiveSessionStart = &sessionStart
	events := e.Reconcile()

	if len(events) != 1 || events[0].Type != EventVowFulfilled {
		t.Fatalf("events = %v, want one vow_fulfilled", events)
	}
	if st.Vow.IsActive {
		t.Fatal("vow still active after replay crossed zero")
	}
	// 120s at 1.5 CE/min clears the debt, then the 24s grace bank pays out.
	if st.Balance != 2.4 {
		t.Fatalf("balance = %v, want 2.4", st.Balance)
	}
}
