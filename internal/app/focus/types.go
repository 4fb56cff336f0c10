package focus

import "cursed-focus/internal/game"

// StatusResponse is the full snapshot plus the derived values the UI renders
// from. The UI never mutates state directly; it posts commands.
type StatusResponse struct {
	State                 game.State `json:"state"`
	Mode                  game.Mode  `json:"mode"`
	SessionSeconds        int64      `json:"sessionSeconds"`
	EarningRate           float64    `json:"earningRate"`
	AvailableGraceSeconds float64    `json:"availableGraceSeconds"`
	CanSignVow            bool       `json:"canSignVow"`
	HasUsedVowToday       bool       `json:"hasUsedVowToday"`
	ShouldPromptSleep     bool       `json:"shouldPromptSleep"`
	UsingSafeBreak        bool       `json:"usingSafeBreak"`
	SafeBreakWarning      bool       `json:"safeBreakWarning"`
	ClockSynced           bool       `json:"clockSynced"`
	ClockOffsetMS         int64      `json:"clockOffsetMs"`
}

type LogsResponse struct {
	Items []game.LogEntry `json:"items"`
	Limit int             `json:"limit"`
}
