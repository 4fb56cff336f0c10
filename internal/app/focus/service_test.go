package focus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cursed-focus/internal/game"
	"cursed-focus/internal/store"
)

type memGateway struct {
	snapshot *game.State
	saves    int
	loadErr  error
	saveErr  error
}

func (g *memGateway) LoadState(ctx context.Context) (*game.State, error) {
	if g.loadErr != nil {
		return nil, g.loadErr
	}
	if g.snapshot == nil {
		return nil, store.ErrNotFound
	}
	clone := *g.snapshot
	return &clone, nil
}

func (g *memGateway) SaveState(ctx context.Context, st *game.State) error {
	if g.saveErr != nil {
		return g.saveErr
	}
	clone := *st
	g.snapshot = &clone
	g.saves++
	return nil
}

func (g *memGateway) ClearState(ctx context.Context) error {
	g.snapshot = nil
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time        { return c.now }
func (c *fixedClock) Today() string         { return c.now.UTC().Format(game.DateLayout) }
func (c *fixedClock) Synced() bool          { return true }
func (c *fixedClock) Offset() time.Duration { return 250 * time.Millisecond }

func newTestService(t *testing.T, gw *memGateway) (*Service, *fixedClock) {
	t.Helper()
	if gw == nil {
		gw = &memGateway{}
	}
	clk := &fixedClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	svc := NewService(gw, clk, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc, clk
}

func TestLoadFirstLaunchUsesDefaults(t *testing.T) {
	gw := &memGateway{}
	svc, _ := newTestService(t, gw)
	status := svc.Status()
	if status.State.Balance != 0 || status.Mode != game.ModeIdle {
		t.Fatalf("unexpected first-launch status: %+v", status)
	}
	// Load persists the reconciled snapshot right away.
	if gw.saves == 0 {
		t.Fatal("load did not persist the reconciled state")
	}
}

func TestLoadFailureFallsBackToDefaults(t *testing.T) {
	gw := &memGateway{loadErr: errors.New("connection refused")}
	clk := &fixedClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	svc := NewService(gw, clk, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load must not fail hard: %v", err)
	}
	if svc.Status().State.Balance != 0 {
		t.Fatal("expected default state after load failure")
	}
}

func TestLoadReconcilesPersistedSession(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	started := clk.now.Add(-time.Minute).UnixMilli()
	st := game.DefaultState()
	st.LastDailyResetDate = clk.Today()
	st.LastSafeBreakResetDate = clk.Today()
	st.ActiveSessionMode = game.ModeStudy
	st.ActiveSessionStart = &started
	gw := &memGateway{snapshot: st}

	svc := NewService(gw, clk, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	status := svc.Status()
	if status.Mode != game.ModeIdle {
		t.Fatalf("mode = %s, want idle after replay", status.Mode)
	}
	if status.State.Balance != 1 {
		t.Fatalf("balance = %v, want 1 for 60s of replayed study", status.State.Balance)
	}
}

func TestSessionCommandsPersist(t *testing.T) {
	gw := &memGateway{}
	svc, _ := newTestService(t, gw)
	before := gw.saves

	svc.StartStudy(context.Background())
	if gw.saves != before+1 {
		t.Fatalf("saves = %d, want %d", gw.saves, before+1)
	}
	if svc.Status().Mode != game.ModeStudy {
		t.Fatalf("mode = %s, want study", svc.Status().Mode)
	}

	svc.StopTimer(context.Background())
	if svc.Status().Mode != game.ModeIdle {
		t.Fatal("stop did not return to idle")
	}
	if gw.snapshot.ActiveSessionMode != game.ModeIdle {
		t.Fatal("persisted snapshot kept the session marker")
	}
}

func TestSignBindingVowRejected(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if err := svc.SignBindingVow(context.Background()); !errors.Is(err, ErrVowUnavailable) {
		t.Fatalf("err = %v, want ErrVowUnavailable with zero balance", err)
	}
}

func TestSignBindingVowWithDebt(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if err := svc.DebugPatch(context.Background(), json.RawMessage(`{"balance": -4}`)); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if err := svc.SignBindingVow(context.Background()); err != nil {
		t.Fatalf("sign: %v", err)
	}
	status := svc.Status()
	if !status.State.Vow.IsActive {
		t.Fatal("vow not active")
	}
	if !status.HasUsedVowToday || status.CanSignVow {
		t.Fatalf("derived vow flags wrong: %+v", status)
	}
}

func TestUseRCTRejected(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if _, err := svc.UseRCT(context.Background()); !errors.Is(err, ErrRCTUnavailable) {
		t.Fatalf("err = %v, want ErrRCTUnavailable", err)
	}
}

func TestLogSleep(t *testing.T) {
	svc, _ := newTestService(t, nil)

	if _, err := svc.LogSleep(context.Background(), 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest for zero hours", err)
	}
	reward, err := svc.LogSleep(context.Background(), 7)
	if err != nil {
		t.Fatalf("sleep: %v", err)
	}
	if reward != game.SleepRewardIdeal {
		t.Fatalf("reward = %v, want %v", reward, game.SleepRewardIdeal)
	}
	if _, err := svc.LogSleep(context.Background(), 7); !errors.Is(err, ErrSleepAlreadyLogged) {
		t.Fatalf("err = %v, want ErrSleepAlreadyLogged", err)
	}
	if svc.Status().ShouldPromptSleep {
		t.Fatal("sleep prompt still set after logging")
	}
}

func TestResetAllClearsGateway(t *testing.T) {
	gw := &memGateway{}
	svc, _ := newTestService(t, gw)
	if _, err := svc.LogSleep(context.Background(), 7); err != nil {
		t.Fatalf("sleep: %v", err)
	}
	if err := svc.ResetAll(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if gw.snapshot != nil {
		t.Fatal("durable snapshot survived reset")
	}
	if svc.Status().State.Balance != 0 {
		t.Fatal("in-memory state survived reset")
	}
}

func TestSaveFailureIsNonFatal(t *testing.T) {
	gw := &memGateway{saveErr: errors.New("disk full")}
	clk := &fixedClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	svc := NewService(gw, clk, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := svc.LogSleep(context.Background(), 7); err != nil {
		t.Fatalf("command must succeed when only the save fails: %v", err)
	}
	if svc.Status().State.Balance != game.SleepRewardIdeal {
		t.Fatal("in-memory state lost on save failure")
	}
}

func TestStatusDerivedFields(t *testing.T) {
	svc, _ := newTestService(t, nil)
	status := svc.Status()
	if !status.ClockSynced {
		t.Fatal("clock synced flag not surfaced")
	}
	if status.ClockOffsetMS != 250 {
		t.Fatalf("offset = %d, want 250", status.ClockOffsetMS)
	}
	if status.EarningRate != 1.0 {
		t.Fatalf("earning rate = %v, want 1.0 at zero balance", status.EarningRate)
	}
	if !status.ShouldPromptSleep {
		t.Fatal("fresh state should prompt for sleep")
	}
}

func TestLogsLimit(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if _, err := svc.LogSleep(context.Background(), 7); err != nil {
		t.Fatalf("sleep: %v", err)
	}
	resp := svc.Logs(1)
	if len(resp.Items) != 1 || resp.Limit != 1 {
		t.Fatalf("logs = %d/%d, want 1/1", len(resp.Items), resp.Limit)
	}
	resp = svc.Logs(0)
	if resp.Limit != game.MaxLogEntries {
		t.Fatalf("limit = %d, want clamped to %d", resp.Limit, game.MaxLogEntries)
	}
}

func TestDebugPatchRejectsMalformed(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if err := svc.DebugPatch(context.Background(), json.RawMessage(`{"balance": "oops"}`)); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}
