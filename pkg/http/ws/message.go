package ws

import "encoding/json"

// MessageType constants for the quiz WebSocket protocol.
const (
	// Client -> Server
	TypeStartSession     = "start_session"
	TypeSelectAnswer     = "select_answer"
	TypeCheckAnswer      = "check_answer"
	TypeNextQuestion     = "next_question"
	TypePreviousQuestion = "previous_question"
	TypeJumpToQuestion   = "jump_to_question"
	TypeToggleFlag       = "toggle_flag"
	TypeRestartSession   = "restart_session"
	TypeRequestSnapshot  = "request_snapshot"

	// Server -> Client
	TypeSessionSnapshot = "session_snapshot"
	TypeSessionResults  = "session_results"
	TypeError           = "error"
	TypePing            = "ping"
	TypePong            = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type StartSessionPayload struct {
	Category string `json:"category,omitempty"`
}

type SelectAnswerPayload struct {
	SessionID string `json:"session_id"`
	Choice    string `json:"choice"` // "A".."D", empty string deselects
}

type CheckAnswerPayload struct {
	SessionID string `json:"session_id"`
}

type NavigatePayload struct {
	SessionID string `json:"session_id"`
}

type JumpToQuestionPayload struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
}

type ToggleFlagPayload struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
}

// Server Messages (outgoing)

// SessionSnapshotPayload carries the full renderable session view. The
// snapshot body is produced by the quiz package and passed through as-is.
type SessionSnapshotPayload struct {
	SessionID string          `json:"session_id"`
	Snapshot  json.RawMessage `json:"snapshot"`
}

type SessionResultsPayload struct {
	SessionID  string `json:"session_id"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
