package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jfernandezp/agente-ia-uni/internal/adapters/llm"
	memquota "github.com/jfernandezp/agente-ia-uni/internal/adapters/quotastore/memory"
	"github.com/jfernandezp/agente-ia-uni/internal/agent"
	"github.com/jfernandezp/agente-ia-uni/internal/memory"
	"github.com/jfernandezp/agente-ia-uni/internal/quota"
)

// countingImage records calls so tests can assert the backend is not
// reached once the quota denies a request.
type countingImage struct {
	calls int
	err   error
}

func (c *countingImage) GenerateImage(_ context.Context, _ string) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []byte("png-bytes"), nil
}

func newTestAgent(text *llm.MockText, image *countingImage, maxPerDay int) *agent.Agent {
	gate := quota.NewGate(memquota.NewStore(), maxPerDay)
	memories := memory.NewManager(10, 5)
	return agent.New(text, image, gate, memories, time.Second)
}

func TestChatTurn(t *testing.T) {
	text := &llm.MockText{Reply: "¡Hola! Me gustan los perros 😀"}
	ag := newTestAgent(text, &countingImage{}, 5)

	res := ag.ProcessMessage(context.Background(), "ip-1", "hola, cuéntame de perros")

	if res.ToolUsed != "" {
		t.Errorf("expected no tool for plain chat, got %q", res.ToolUsed)
	}
	if strings.ContainsAny(res.Response, "¡¿") || strings.Contains(res.Response, "😀") {
		t.Errorf("expected formatted response, got %q", res.Response)
	}
	if res.MemoryStats.TotalMessages != 2 || res.MemoryStats.UserMessages != 1 {
		t.Errorf("expected one stored exchange, got %+v", res.MemoryStats)
	}
}

func TestImageTurn(t *testing.T) {
	image := &countingImage{}
	ag := newTestAgent(llm.NewMockText(), image, 5)

	res := ag.ProcessMessage(context.Background(), "ip-1", "dibuja un gato")

	if res.ToolUsed != agent.ToolGenerateImage {
		t.Fatalf("expected tool %q, got %q", agent.ToolGenerateImage, res.ToolUsed)
	}
	if res.Image == nil || !res.Image.Success {
		t.Fatalf("expected a successful image result, got %+v", res.Image)
	}
	if !strings.HasPrefix(res.Image.EnhancedPrompt, "un gato, digital art") {
		t.Errorf("unexpected enhanced prompt %q", res.Image.EnhancedPrompt)
	}
	if res.Image.Remaining != 4 {
		t.Errorf("expected 4 remaining, got %d", res.Image.Remaining)
	}
	if len(res.Image.ImageData) == 0 {
		t.Errorf("expected image bytes in the result")
	}
	if image.calls != 1 {
		t.Errorf("expected exactly one backend call, got %d", image.calls)
	}

	// Memory holds a note, never the bytes.
	if res.MemoryStats.AssistantMessages != 1 {
		t.Errorf("expected an assistant note in memory, got %+v", res.MemoryStats)
	}
}

func TestImageTurnDeniedByQuota(t *testing.T) {
	image := &countingImage{}
	ag := newTestAgent(llm.NewMockText(), image, 1)

	first := ag.ProcessMessage(context.Background(), "ip-1", "dibuja un gato")
	if !first.Image.Success {
		t.Fatalf("expected the first image to pass the gate")
	}

	second := ag.ProcessMessage(context.Background(), "ip-1", "dibuja un perro")
	if second.Image.Success {
		t.Fatalf("expected the second image to be denied")
	}
	if second.Image.Remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", second.Image.Remaining)
	}
	if image.calls != 1 {
		t.Errorf("the backend must not be called once the quota denies: %d calls", image.calls)
	}
}

func TestImageBackendFailureCompletesTheTurn(t *testing.T) {
	image := &countingImage{err: errors.New("service unavailable")}
	ag := newTestAgent(llm.NewMockText(), image, 5)

	res := ag.ProcessMessage(context.Background(), "ip-1", "dibuja un gato")

	if res.Image == nil || res.Image.Success {
		t.Fatalf("expected a failed image result, got %+v", res.Image)
	}
	if res.Image.Err == "" {
		t.Errorf("expected the internal error field to be set")
	}
	if res.Response == "" {
		t.Errorf("the turn must still produce a user-facing message")
	}
}

func TestTextBackendFailureProducesApology(t *testing.T) {
	text := &llm.MockText{Err: errors.New("timeout")}
	ag := newTestAgent(text, &countingImage{}, 5)

	res := ag.ProcessMessage(context.Background(), "ip-1", "hola")

	if res.Err == "" {
		t.Errorf("expected the internal error field to be set")
	}
	if !strings.Contains(res.Response, "Lo siento") {
		t.Errorf("expected the fixed apology, got %q", res.Response)
	}
	if res.MemoryStats.TotalMessages != 2 {
		t.Errorf("the turn must still append to memory, got %+v", res.MemoryStats)
	}
}

func TestExpandTurnAppendsExplanation(t *testing.T) {
	text := &llm.MockText{Reply: "1. Primer paso"}
	ag := newTestAgent(text, &countingImage{}, 5)

	res := ag.ProcessMessage(context.Background(), "ip-1", "dame más detalles")

	if res.ToolUsed != agent.ToolExpandExplanation {
		t.Fatalf("expected tool %q, got %q", agent.ToolExpandExplanation, res.ToolUsed)
	}
	if !strings.Contains(res.Response, "\n\n") {
		t.Errorf("expected the expansion appended after the chat response, got %q", res.Response)
	}
	// The memory keeps the chat response only, not the expansion.
	if res.MemoryStats.AssistantMessages != 1 {
		t.Errorf("expected one assistant message in memory, got %+v", res.MemoryStats)
	}
}

// scriptedText plays back one outcome per call, in order.
type scriptedText struct {
	calls   int
	replies []string
	errs    []error
}

func (s *scriptedText) GenerateText(_ context.Context, _ string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func TestExpandFailureSurfacesFallback(t *testing.T) {
	// The expansion call runs before the chat call; fail only the first.
	text := &scriptedText{
		errs:    []error{errors.New("timeout"), nil},
		replies: []string{"", "Respuesta normal."},
	}
	gate := quota.NewGate(memquota.NewStore(), 5)
	memories := memory.NewManager(10, 5)
	ag := agent.New(text, &countingImage{}, gate, memories, time.Second)

	res := ag.ProcessMessage(context.Background(), "ip-1", "dame más detalles")

	if res.Err == "" {
		t.Errorf("expected the internal error field to be set")
	}
	if !strings.Contains(res.Response, "Respuesta normal") {
		t.Errorf("expected the chat reply kept, got %q", res.Response)
	}
	if !strings.Contains(res.Response, "No pude generar una explicación paso a paso") {
		t.Errorf("expected the expansion fallback appended, got %q", res.Response)
	}
	// Memory keeps the chat reply only, never the fallback note.
	if res.MemoryStats.AssistantMessages != 1 {
		t.Errorf("expected one assistant message in memory, got %+v", res.MemoryStats)
	}
}

func TestSessionHelpers(t *testing.T) {
	ag := newTestAgent(llm.NewMockText(), &countingImage{}, 5)
	ctx := context.Background()

	ag.ProcessMessage(ctx, "ip-1", "hola")

	if _, err := ag.SessionSummary("ip-1"); err != nil {
		t.Fatalf("expected a summary for an active session: %v", err)
	}
	if got := ag.RemainingToday(ctx, "ip-1"); got != 5 {
		t.Errorf("expected the full allowance before any image, got %d", got)
	}
	if !ag.ResetSession("ip-1") {
		t.Fatalf("expected reset to report the session existed")
	}
	if _, err := ag.SessionSummary("ip-1"); err == nil {
		t.Fatalf("expected an error after reset")
	}
	if ag.ResetSession("ip-1") {
		t.Fatalf("reset must be idempotent")
	}

	if got := ag.Stats().ActiveSessions; got != 0 {
		t.Errorf("expected 0 active sessions, got %d", got)
	}
}
