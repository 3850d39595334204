// Package agent drives one request/response turn: append the user
// message, classify intent, call the matching inference collaborator,
// post-format and append the assistant output.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/jfernandezp/agente-ia-uni/internal/domain"
	"github.com/jfernandezp/agente-ia-uni/internal/memory"
	"github.com/jfernandezp/agente-ia-uni/internal/observability"
	"github.com/jfernandezp/agente-ia-uni/internal/quota"
)

const (
	ToolGenerateImage     = "generate_image"
	ToolExpandExplanation = "expand_explanation"

	chatContextTurns   = 5
	expandContextTurns = 3

	// Fixed style suffix appended to every image prompt.
	imageStyleSuffix = ", digital art, high quality, detailed, 4k resolution, professional composition"

	apologyText       = "Lo siento, no pude generar una respuesta en este momento. Por favor intenta de nuevo."
	imageFailureText  = "No se pudo generar la imagen. Por favor intenta de nuevo."
	expandFailureText = "No pude generar una explicación paso a paso. Por favor intenta de nuevo."
)

// Agent orchestrates turns. Stateless across turns except through the
// session memories; all collaborators are injected.
type Agent struct {
	text     domain.TextGenerator
	image    domain.ImageGenerator
	gate     *quota.Gate
	memories *memory.Manager

	timeout time.Duration
	now     func() time.Time
}

func New(
	text domain.TextGenerator,
	image domain.ImageGenerator,
	gate *quota.Gate,
	memories *memory.Manager,
	timeout time.Duration,
) *Agent {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Agent{
		text:     text,
		image:    image,
		gate:     gate,
		memories: memories,
		timeout:  timeout,
		now:      time.Now,
	}
}

// ImageResult is the structured outcome of an image request. ImageData
// stays out of the conversation memory; only a short note is stored.
type ImageResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ImageData      []byte `json:"image_data,omitempty"`
	EnhancedPrompt string `json:"enhanced_prompt,omitempty"`
	Remaining      int    `json:"remaining"`
	Err            string `json:"error,omitempty"`
}

// TurnResult is what a completed turn hands back to the caller. A turn
// always completes with some result; collaborator failures surface as
// apology text plus the internal Err field, never as an error return.
type TurnResult struct {
	Response    string
	ToolUsed    string
	Image       *ImageResult
	MemoryStats domain.MemorySummary
	Err         string
}

// ProcessMessage runs one turn for the session.
func (a *Agent) ProcessMessage(ctx context.Context, sessionID domain.SessionID, message string) TurnResult {
	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)

	conv := a.memories.GetOrCreate(sessionID)
	conv.AddUserMessage(message)

	intent := ClassifyIntent(message)

	switch intent.Kind {
	case IntentImage:
		log.Info("image generation requested", "prompt", intent.Prompt)
		res := a.generateImage(ctx, sessionID, intent.Prompt)
		if res.Success {
			conv.AddAIMessage("Imagen generada: " + res.EnhancedPrompt)
		} else {
			conv.AddAIMessage("Error: " + res.Message)
		}
		return TurnResult{
			Response:    res.Message,
			ToolUsed:    ToolGenerateImage,
			Image:       res,
			MemoryStats: conv.Summary(),
			Err:         res.Err,
		}

	case IntentExpand:
		log.Info("expansion requested")
		expansion, expErr := a.generateExpansion(ctx, conv)

		response, errText := a.generateChat(ctx, conv, message)
		conv.AddAIMessage(response)

		switch {
		case expErr != nil:
			response += "\n\n" + expandFailureText
			if errText == "" {
				errText = expErr.Error()
			}
		case expansion != "":
			response += "\n\n" + expansion
		}
		return TurnResult{
			Response:    response,
			ToolUsed:    ToolExpandExplanation,
			MemoryStats: conv.Summary(),
			Err:         errText,
		}

	default:
		response, errText := a.generateChat(ctx, conv, message)
		conv.AddAIMessage(response)
		return TurnResult{
			Response:    response,
			MemoryStats: conv.Summary(),
			Err:         errText,
		}
	}
}

// generateChat calls the text backend with persona + bounded context.
// Failures come back as the fixed apology plus an internal error text.
func (a *Agent) generateChat(ctx context.Context, conv *memory.Conversation, message string) (string, string) {
	prompt := buildChatPrompt(conv.ContextString(chatContextTurns), message)

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.text.GenerateText(callCtx, prompt)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("text generation failed",
			"backend", "text",
			"error", err)
		return apologyText, err.Error()
	}
	return FormatTEA(text), ""
}

// generateExpansion asks for a numbered step-by-step follow-up based on
// the last turns of context.
func (a *Agent) generateExpansion(ctx context.Context, conv *memory.Conversation) (string, error) {
	prompt := buildExpandPrompt(conv.ContextString(expandContextTurns))

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.text.GenerateText(callCtx, prompt)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("expansion generation failed",
			"backend", "text",
			"error", err)
		return "", err
	}
	return text, nil
}

// generateImage runs the quota gate and, when allowed, the image
// backend. The counter is not refunded when generation fails.
func (a *Agent) generateImage(ctx context.Context, sessionID domain.SessionID, prompt string) *ImageResult {
	day := a.now().Format("2006-01-02")

	allowed, remaining := a.gate.CheckAndIncrement(ctx, string(sessionID), day)
	if !allowed {
		return &ImageResult{
			Success: false,
			Message: fmt.Sprintf("No puedes generar más imágenes hoy. Límite: %d. Intenta mañana.", a.gate.MaxPerDay()),
		}
	}

	enhanced := prompt + imageStyleSuffix

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	data, err := a.image.GenerateImage(callCtx, enhanced)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("image generation failed",
			"backend", "image",
			"session_id", sessionID,
			"error", err)
		return &ImageResult{
			Success: false,
			Message: imageFailureText,
			Err:     err.Error(),
		}
	}

	return &ImageResult{
		Success:        true,
		Message:        "Imagen generada.",
		ImageData:      data,
		EnhancedPrompt: enhanced,
		Remaining:      remaining,
	}
}

// ResetSession drops a session's memory. Idempotent.
func (a *Agent) ResetSession(sessionID domain.SessionID) bool {
	return a.memories.Delete(sessionID)
}

// SessionSummary reports a session's counters, or ErrSessionNotFound.
func (a *Agent) SessionSummary(sessionID domain.SessionID) (domain.MemorySummary, error) {
	conv, ok := a.memories.Get(sessionID)
	if !ok {
		return domain.MemorySummary{}, domain.ErrSessionNotFound
	}
	return conv.Summary(), nil
}

// Stats reports the manager-wide counters.
func (a *Agent) Stats() domain.ManagerStats {
	return a.memories.Stats()
}

// RemainingToday peeks at the image allowance left for the session's
// quota day without spending any of it.
func (a *Agent) RemainingToday(ctx context.Context, sessionID domain.SessionID) int {
	day := a.now().Format("2006-01-02")
	return a.gate.PeekRemaining(ctx, string(sessionID), day)
}
