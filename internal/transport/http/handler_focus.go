package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cursed-focus/internal/app/focus"
	"cursed-focus/internal/game"
)

type FocusHandlers struct {
	svc *focus.Service
}

func NewFocusHandlers(svc *focus.Service) *FocusHandlers {
	return &FocusHandlers{svc: svc}
}

func (h *FocusHandlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(h.svc.Status())
	}
}

func (h *FocusHandlers) Logs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := ParseLimit(r, game.MaxLogEntries, game.MaxLogEntries)
		_ = json.NewEncoder(w).Encode(h.svc.Logs(limit))
	}
}

func (h *FocusHandlers) StartStudy() http.HandlerFunc {
	return h.sessionCommand(func(ctx context.Context) { h.svc.StartStudy(ctx) })
}

func (h *FocusHandlers) StartGaming() http.HandlerFunc {
	return h.sessionCommand(func(ctx context.Context) { h.svc.StartGaming(ctx) })
}

func (h *FocusHandlers) Stop() http.HandlerFunc {
	return h.sessionCommand(func(ctx context.Context) { h.svc.StopTimer(ctx) })
}

func (h *FocusHandlers) sessionCommand(run func(ctx context.Context)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run(r.Context())
		_ = json.NewEncoder(w).Encode(h.svc.Status())
	}
}

func (h *FocusHandlers) SignVow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.SignBindingVow(r.Context()); err != nil {
			WriteHTTPError(w, http.StatusConflict, "vow_unavailable")
			return
		}
		_ = json.NewEncoder(w).Encode(h.svc.Status())
	}
}

func (h *FocusHandlers) UseRCT() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		heal, err := h.svc.UseRCT(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusConflict, "rct_unavailable")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "healed": heal})
	}
}

func (h *FocusHandlers) LogSleep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Hours float64 `json:"hours"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		reward, err := h.svc.LogSleep(r.Context(), body.Hours)
		if err != nil {
			switch {
			case errors.Is(err, focus.ErrInvalidRequest):
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			case errors.Is(err, focus.ErrSleepAlreadyLogged):
				WriteHTTPError(w, http.StatusConflict, "sleep_already_logged")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "reward": reward})
	}
}

func (h *FocusHandlers) Reset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.ResetAll(r.Context()); err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func (h *FocusHandlers) DebugPatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if err := h.svc.DebugPatch(r.Context(), raw); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		_ = json.NewEncoder(w).Encode(h.svc.Status())
	}
}
