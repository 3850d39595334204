package domain

// Message is a single entry in a session's conversation log.
// Immutable once created; owned by the memory that holds it.
type Message struct {
	Role      Role
	Content   string
	Timestamp Timestamp
}

// MemorySummary carries per-session counters for diagnostics.
// It is never used for correctness decisions.
type MemorySummary struct {
	SessionID         SessionID `json:"session_id"`
	TotalMessages     int       `json:"total_messages"`
	UserMessages      int       `json:"user_messages"`
	AssistantMessages int       `json:"assistant_messages"`
	CreatedAt         Timestamp `json:"created_at"`
	LastAccessed      Timestamp `json:"last_accessed"`
}

// ManagerStats aggregates counters across all live sessions.
type ManagerStats struct {
	ActiveSessions int `json:"active_sessions"`
	MaxSessions    int `json:"max_sessions"`
	TotalMessages  int `json:"total_messages"`
}
