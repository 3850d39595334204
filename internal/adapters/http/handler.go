package httpadapter

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jfernandezp/agente-ia-uni/internal/agent"
	"github.com/jfernandezp/agente-ia-uni/internal/domain"
)

type Server struct {
	agent    *agent.Agent
	identity domain.IdentityResolver
}

func NewServer(ag *agent.Agent, identity domain.IdentityResolver) http.Handler {
	s := &Server{agent: ag, identity: identity}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /chat → one conversation turn (POST)
	mux.HandleFunc("/chat", s.handleChat)

	// /stats → manager-wide counters (GET)
	mux.HandleFunc("/stats", s.handleStats)

	// /sessions/{id}        → GET: summary, DELETE: reset
	// /sessions/{id}/quota  → GET: remaining images today
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

type imageResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ImageData      string `json:"image_data,omitempty"` // base64
	EnhancedPrompt string `json:"enhanced_prompt,omitempty"`
	Remaining      int    `json:"remaining"`
}

type chatResponse struct {
	SessionID   string               `json:"session_id"`
	Response    string               `json:"response"`
	ToolUsed    string               `json:"tool_used,omitempty"`
	Image       *imageResponse       `json:"image,omitempty"`
	MemoryStats domain.MemorySummary `json:"memory_stats"`
}

type quotaResponse struct {
	SessionID string `json:"session_id"`
	Remaining int    `json:"remaining"`
}

type deleteSessionResponse struct {
	SessionID string `json:"session_id"`
	Deleted   bool   `json:"deleted"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.identity.Resolve(r.Context(), r.Header.Get("X-Forwarded-For"))
	}

	result := s.agent.ProcessMessage(r.Context(), domain.SessionID(sessionID), req.Text)

	resp := chatResponse{
		SessionID:   sessionID,
		Response:    result.Response,
		ToolUsed:    result.ToolUsed,
		MemoryStats: result.MemoryStats,
	}
	if result.Image != nil {
		resp.Image = &imageResponse{
			Success:        result.Image.Success,
			Message:        result.Image.Message,
			EnhancedPrompt: result.Image.EnhancedPrompt,
			Remaining:      result.Image.Remaining,
		}
		if len(result.Image.ImageData) > 0 {
			resp.Image.ImageData = base64.StdEncoding.EncodeToString(result.Image.ImageData)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Stats())
}

// /sessions/{id} or /sessions/{id}/quota
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := domain.SessionID(parts[0])
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, id)
		case http.MethodDelete:
			s.handleDeleteSession(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "quota" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetQuota(w, r, id)
		return
	}

	http.NotFound(w, r)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	summary, err := s.agent.SessionSummary(id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, _ *http.Request, id domain.SessionID) {
	deleted := s.agent.ResetSession(id)
	writeJSON(w, http.StatusOK, deleteSessionResponse{
		SessionID: string(id),
		Deleted:   deleted,
	})
}

func (s *Server) handleGetQuota(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	writeJSON(w, http.StatusOK, quotaResponse{
		SessionID: string(id),
		Remaining: s.agent.RemainingToday(r.Context(), id),
	})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, _ error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
