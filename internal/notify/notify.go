// Package notify delivers engine events (vow outcomes, safe-break
// depletion) to a feedback sink. The engine never calls this directly; the
// service layer forwards the events a mutation returned.
package notify

import (
	"context"
	"fmt"

	"cursed-focus/internal/game"

	"github.com/rs/zerolog/log"
)

type Sink interface {
	Notify(ctx context.Context, ev game.Event)
}

// LogSink writes events to the application log. It is the default sink.
type LogSink struct{}

func (LogSink) Notify(_ context.Context, ev game.Event) {
	log.Info().Str("event", string(ev.Type)).Float64("amount", ev.Amount).Msg("engine event")
}

// Fanout forwards each event to every sink.
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, ev game.Event) {
	for _, s := range f {
		s.Notify(ctx, ev)
	}
}

func describe(ev game.Event) (title, body string) {
	switch ev.Type {
	case game.EventVowFulfilled:
		return "Binding Vow Fulfilled", fmt.Sprintf("Debt cleared. Grace bonus: %.2f CE", ev.Amount)
	case game.EventVowFailed:
		return "Binding Vow Failed", fmt.Sprintf("Debt increased by %.1f CE", ev.Amount)
	case game.EventSafeBreakDepleted:
		return "Safe Break Depleted", "Leisure time now burns cursed energy"
	default:
		return string(ev.Type), ""
	}
}
