package focus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"cursed-focus/internal/game"
	"cursed-focus/internal/notify"
	"cursed-focus/internal/store"

	"github.com/rs/zerolog/log"
)

const saveTimeout = 2 * time.Second

// Gateway is the durable home of the single state snapshot.
type Gateway interface {
	LoadState(ctx context.Context) (*game.State, error)
	SaveState(ctx context.Context, st *game.State) error
	ClearState(ctx context.Context) error
}

// TrustedClock is the tamper-resistant time source plus its introspection.
type TrustedClock interface {
	Now() time.Time
	Today() string
	Synced() bool
	Offset() time.Duration
}

// Service owns the in-memory snapshot. Every command and the one-second tick
// take the same mutex, so mutations are strictly serialized. Persistence is
// write-after-mutation and non-fatal on failure.
type Service struct {
	mu     sync.Mutex
	engine *game.Engine
	gw     Gateway
	clock  TrustedClock
	sink   notify.Sink
}

func NewService(gw Gateway, clk TrustedClock, sink notify.Sink) *Service {
	if sink == nil {
		sink = notify.LogSink{}
	}
	return &Service{
		engine: game.NewEngine(clk, game.DefaultState()),
		gw:     gw,
		clock:  clk,
		sink:   sink,
	}
}

// Load pulls the snapshot from the gateway (first launch gets defaults) and
// runs reconciliation exactly once before the ticker starts.
func (s *Service) Load(ctx context.Context) error {
	st, err := s.gw.LoadState(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		st = game.DefaultState()
	case err != nil:
		log.Error().Err(err).Msg("load state failed, starting from defaults")
		st = game.DefaultState()
	}

	s.mu.Lock()
	s.engine = game.NewEngine(s.clock, st)
	events := s.engine.Reconcile()
	s.saveLocked(ctx)
	s.mu.Unlock()

	s.dispatch(ctx, events)
	return nil
}

// Run drives the per-second tick until the context is cancelled. Ticks while
// idle are no-ops.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	s.mu.Lock()
	if s.engine.Mode() == game.ModeIdle {
		s.mu.Unlock()
		return
	}
	events := s.engine.Tick()
	s.saveLocked(ctx)
	s.mu.Unlock()
	s.dispatch(ctx, events)
}

func (s *Service) StartStudy(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.StartStudy()
	s.saveLocked(ctx)
}

func (s *Service) StartGaming(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.StartGaming()
	s.saveLocked(ctx)
}

func (s *Service) StopTimer(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.StopTimer()
	s.saveLocked(ctx)
}

func (s *Service) SignBindingVow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.SignBindingVow() {
		return ErrVowUnavailable
	}
	s.saveLocked(ctx)
	return nil
}

func (s *Service) UseRCT(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	heal, ok := s.engine.UseRCT()
	if !ok {
		return 0, ErrRCTUnavailable
	}
	s.saveLocked(ctx)
	return heal, nil
}

func (s *Service) LogSleep(ctx context.Context, hours float64) (float64, error) {
	if hours <= 0 {
		return 0, ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reward, ok := s.engine.LogSleep(hours)
	if !ok {
		return 0, ErrSleepAlreadyLogged
	}
	s.saveLocked(ctx)
	return reward, nil
}

// ResetAll wipes both the in-memory state and the durable snapshot.
func (s *Service) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset()
	if err := s.gw.ClearState(ctx); err != nil {
		log.Error().Err(err).Msg("clear state failed")
		return err
	}
	return nil
}

// DebugPatch merges a partial snapshot over the current state. Guarded by
// the admin key at the transport layer; meant for manual testing only.
func (s *Service) DebugPatch(ctx context.Context, raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := json.Unmarshal(raw, s.engine.State); err != nil {
		return ErrInvalidRequest
	}
	s.saveLocked(ctx)
	return nil
}

func (s *Service) Status() StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *s.engine.State
	st.Logs = append([]game.LogEntry(nil), s.engine.State.Logs...)
	return StatusResponse{
		State:                 st,
		Mode:                  s.engine.Mode(),
		SessionSeconds:        s.engine.SessionSeconds(),
		EarningRate:           s.engine.EarningRatePerMin(),
		AvailableGraceSeconds: s.engine.AvailableGraceSeconds(),
		CanSignVow:            s.engine.CanSignVow(),
		HasUsedVowToday:       s.engine.HasUsedVowToday(),
		ShouldPromptSleep:     s.engine.ShouldPromptSleep(),
		UsingSafeBreak:        s.engine.UsingSafeBreak(),
		SafeBreakWarning:      s.engine.UsingSafeBreak() && st.SafeBreakSeconds <= game.SafeBreakWarningSeconds,
		ClockSynced:           s.clock.Synced(),
		ClockOffsetMS:         s.clock.Offset().Milliseconds(),
	}
}

func (s *Service) Logs(limit int) LogsResponse {
	if limit < 1 || limit > game.MaxLogEntries {
		limit = game.MaxLogEntries
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := s.engine.State.Logs
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return LogsResponse{Items: append([]game.LogEntry(nil), logs...), Limit: limit}
}

// saveLocked persists under the held mutex. A failed save is logged and the
// in-memory state stays authoritative; the next mutation retries.
func (s *Service) saveLocked(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	if err := s.gw.SaveState(ctx, s.engine.State); err != nil {
		log.Error().Err(err).Msg("save state failed")
	}
}

func (s *Service) dispatch(ctx context.Context, events []game.Event) {
	for _, ev := range events {
		s.sink.Notify(ctx, ev)
	}
}
