package game

type EventType string

const (
	EventVowFulfilled      EventType = "vow_fulfilled"
	EventVowFailed         EventType = "vow_failed"
	EventSafeBreakDepleted EventType = "safe_break_depleted"
)

// Event is an outcome the engine hands back to the caller instead of firing
// side effects itself. The service layer decides how to surface it.
type Event struct {
	Type   EventType
	Amount float64
}
