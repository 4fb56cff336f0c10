package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Mode string

const (
	ModeIdle   Mode = "idle"
	ModeStudy  Mode = "study"
	ModeGaming Mode = "gaming"
)

type LogType string

const (
	LogSession LogType = "session"
	LogSleep   LogType = "sleep"
	LogSystem  LogType = "system"
	LogReward  LogType = "reward"
	LogVow     LogType = "vow"
	LogRCT     LogType = "rct"
)

// LogEntry is one row of the in-state history feed. Which optional fields
// are set depends on the type; the newLog constructors below are the only
// places entries are built, so each type carries exactly its own payload.
type LogEntry struct {
	ID            string   `json:"id,omitempty"`
	Timestamp     int64    `json:"timestamp"` // ms since epoch
	Message       string   `json:"message"`
	Type          LogType  `json:"type"`
	Value         *float64 `json:"value,omitempty"`         // signed CE delta
	Duration      *int64   `json:"duration,omitempty"`      // seconds
	SafeBreakUsed *float64 `json:"safeBreakUsed,omitempty"` // seconds
}

type VowState struct {
	IsActive             bool    `json:"isActive"`
	StartedAt            *int64  `json:"startedAt"` // ms since epoch
	StudySecondsWhileVow int64   `json:"studySecondsWhileVow"`
	GraceTimeSeconds     float64 `json:"graceTimeSeconds"`
	UsedGraceSeconds     float64 `json:"usedGraceSeconds"`
	LastVowDate          string  `json:"lastVowDate,omitempty"`
	DebtAtVowStart       float64 `json:"debtAtVowStart"`
	VowPenaltyUntil      *int64  `json:"vowPenaltyUntil,omitempty"` // ms since epoch
}

// State is the single persisted aggregate. JSON tags match the snapshot
// format the legacy mobile client wrote, so an old snapshot loads unchanged.
type State struct {
	Balance            float64  `json:"balance"`
	NCEBalance         float64  `json:"nceBalance"`
	StreakDays         int      `json:"streakDays"`
	RCTCredits         int      `json:"rctCredits"`
	LastBalanceDate    string   `json:"lastBalanceDate,omitempty"`
	LastBalance        float64  `json:"lastBalance"`
	Vow                VowState `json:"vowState"`
	TotalStudySeconds  int64    `json:"totalStudySeconds"`
	TotalGamingSeconds int64    `json:"totalGamingSeconds"`
	DailyStudySeconds  int64    `json:"dailyStudySeconds"`
	DailyGamingSeconds int64    `json:"dailyGamingSeconds"`
	LastDailyResetDate string   `json:"lastDailyResetDate,omitempty"`
	LastSleepDate      string   `json:"lastSleepDate,omitempty"`

	Logs []LogEntry `json:"logs"`

	// Durable marker of an in-progress session, used to replay elapsed time
	// after the process was killed mid-session.
	ActiveSessionMode  Mode   `json:"activeSessionMode,omitempty"`
	ActiveSessionStart *int64 `json:"activeSessionStartTime,omitempty"`

	SafeBreakSeconds            float64 `json:"safeBreakSeconds"`
	LastSafeBreakResetDate      string  `json:"lastSafeBreakResetDate,omitempty"`
	SessionSafeBreakSecondsUsed float64 `json:"sessionSafeBreakSecondsUsed"`
}

func DefaultState() *State {
	return &State{
		Vow:               VowState{},
		Logs:              []LogEntry{},
		ActiveSessionMode: ModeIdle,
	}
}

// AppendLog prepends an entry (feed is newest first) and drops the oldest
// beyond MaxLogEntries.
func (s *State) AppendLog(e LogEntry) {
	logs := make([]LogEntry, 0, len(s.Logs)+1)
	logs = append(logs, e)
	logs = append(logs, s.Logs...)
	if len(logs) > MaxLogEntries {
		logs = logs[:MaxLogEntries]
	}
	s.Logs = logs
}

var (
	logEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	logEntropyMu sync.Mutex
)

func NewLogID() string {
	logEntropyMu.Lock()
	defer logEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), logEntropy).String()
}

func newSessionLog(ts int64, msg string, value float64, duration int64, safeBreakUsed float64) LogEntry {
	e := LogEntry{ID: NewLogID(), Timestamp: ts, Message: msg, Type: LogSession, Value: &value, Duration: &duration}
	if safeBreakUsed > 0 {
		e.SafeBreakUsed = &safeBreakUsed
	}
	return e
}

func newVowLog(ts int64, msg string, value *float64) LogEntry {
	return LogEntry{ID: NewLogID(), Timestamp: ts, Message: msg, Type: LogVow, Value: value}
}

func newRewardLog(ts int64, msg string, value float64) LogEntry {
	return LogEntry{ID: NewLogID(), Timestamp: ts, Message: msg, Type: LogReward, Value: &value}
}

func newRCTLog(ts int64, msg string, value float64) LogEntry {
	return LogEntry{ID: NewLogID(), Timestamp: ts, Message: msg, Type: LogRCT, Value: &value}
}

func newSystemLog(ts int64, msg string, value float64, duration int64) LogEntry {
	return LogEntry{ID: NewLogID(), Timestamp: ts, Message: msg, Type: LogSystem, Value: &value, Duration: &duration}
}
