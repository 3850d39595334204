// Package memory holds the volatile conversational state: one bounded
// message log per session, plus the capacity-bounded session registry.
// Nothing here touches disk or network.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/jfernandezp/agente-ia-uni/internal/domain"
)

// Conversation is the in-RAM message log for one session. It keeps at
// most 2*maxTurns messages; appending past capacity drops the oldest
// entry and never errors.
type Conversation struct {
	mu sync.Mutex

	sessionID    domain.SessionID
	maxMessages  int
	messages     []domain.Message
	createdAt    time.Time
	lastAccessed time.Time

	now func() time.Time
}

// NewConversation creates an empty log bounded to maxTurns exchanges
// (one user plus one assistant message each).
func NewConversation(sessionID domain.SessionID, maxTurns int) *Conversation {
	return newConversation(sessionID, maxTurns, time.Now)
}

func newConversation(sessionID domain.SessionID, maxTurns int, now func() time.Time) *Conversation {
	if maxTurns < 1 {
		maxTurns = 1
	}
	t := now()
	return &Conversation{
		sessionID:    sessionID,
		maxMessages:  maxTurns * 2,
		messages:     make([]domain.Message, 0, maxTurns*2),
		createdAt:    t,
		lastAccessed: t,
		now:          now,
	}
}

// AddUserMessage appends a user entry stamped with the current time.
func (c *Conversation) AddUserMessage(content string) {
	c.append(domain.RoleUser, content)
}

// AddAIMessage appends an assistant entry stamped with the current time.
func (c *Conversation) AddAIMessage(content string) {
	c.append(domain.RoleAssistant, content)
}

func (c *Conversation) append(role domain.Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	c.messages = append(c.messages, domain.Message{
		Role:      role,
		Content:   content,
		Timestamp: t,
	})
	if len(c.messages) > c.maxMessages {
		c.messages = c.messages[len(c.messages)-c.maxMessages:]
	}
	c.lastAccessed = t
}

// Recent returns the last n turns (up to 2n messages) in chronological
// order. Fewer exist, all are returned; n <= 0 returns nothing. Only
// lastAccessed is mutated.
func (c *Conversation) Recent(n int) []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastAccessed = c.now()

	if n <= 0 {
		return nil
	}

	limit := n * 2
	msgs := c.messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}

// ContextString renders the last n turns as alternating "User:" /
// "Assistant:" lines for inclusion in a prompt.
func (c *Conversation) ContextString(n int) string {
	recent := c.Recent(n)
	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		prefix := "User:"
		if msg.Role == domain.RoleAssistant {
			prefix = "Assistant:"
		}
		lines = append(lines, prefix+" "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// Summary returns message counters and the two lifecycle timestamps.
func (c *Conversation) Summary() domain.MemorySummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := domain.MemorySummary{
		SessionID:     c.sessionID,
		TotalMessages: len(c.messages),
		CreatedAt:     c.createdAt,
		LastAccessed:  c.lastAccessed,
	}
	for _, msg := range c.messages {
		if msg.Role == domain.RoleUser {
			s.UserMessages++
		} else {
			s.AssistantMessages++
		}
	}
	return s
}

// Clear empties the log but keeps the session alive.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = c.messages[:0]
	c.lastAccessed = c.now()
}

// Len reports the number of retained messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// LastAccessed reports when the session was last touched. The manager
// uses the same clock for LRU eviction that appends update.
func (c *Conversation) LastAccessed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAccessed
}
