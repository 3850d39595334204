package domain

import (
	"errors"
	"time"
)

type SessionID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Timestamp = time.Time

// ErrSessionNotFound is returned when a session id has no live memory.
var ErrSessionNotFound = errors.New("session not found")
