package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"cursed-focus/internal/app/focus"
	"cursed-focus/internal/clock"
	"cursed-focus/internal/config"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Pinger is the health-check view of the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(svc *focus.Service, clk *clock.Service, db Pinger, cfg config.ServerConfig) *chi.Mux {
	h := NewFocusHandlers(svc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", healthHandler(db))

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/state", h.State())
		r.Get("/logs", h.Logs())

		r.Post("/session/study", h.StartStudy())
		r.Post("/session/gaming", h.StartGaming())
		r.Post("/session/stop", h.Stop())

		r.Post("/vow", h.SignVow())
		r.Post("/rct", h.UseRCT())
		r.Post("/sleep", h.LogSleep())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Post("/reset", h.Reset())
			r.Post("/debug/state", h.DebugPatch())
			r.Post("/debug/timesync", timesyncHandler(clk))
		})
	})
	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func timesyncHandler(clk *clock.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := clk.ForceSync(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":       ok,
			"synced":   clk.Synced(),
			"offsetMs": clk.Offset().Milliseconds(),
		})
	}
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
