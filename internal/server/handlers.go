package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hrdesk/hrdesk/internal/agent"
	"github.com/hrdesk/hrdesk/internal/hr"
	"github.com/hrdesk/hrdesk/internal/session"
	"github.com/hrdesk/hrdesk/internal/telemetry"
)

const maxMessageLen = 4000

// chatMessageRequest is the body for POST /api/chat/message and
// POST /api/chat/stream.
type chatMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	AgentType string `json:"agentType"`
	UserID    string `json:"userId,omitempty"`
}

// validate returns field-level errors, or nil when the request is usable.
// Agent type validity is checked separately so it produces the dedicated
// error message rather than a field map.
func (r *chatMessageRequest) validate() map[string][]string {
	errs := make(map[string][]string)
	if strings.TrimSpace(r.Message) == "" {
		errs["message"] = append(errs["message"], "Message is required")
	} else if len(r.Message) > maxMessageLen {
		errs["message"] = append(errs["message"], "Message must be between 1 and 4000 characters")
	}
	if r.SessionID == "" {
		errs["sessionId"] = append(errs["sessionId"], "SessionId is required")
	}
	if r.AgentType == "" {
		errs["agentType"] = append(errs["agentType"], "AgentType is required")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type chatMessageResponse struct {
	Response  string    `json:"response"`
	SessionID string    `json:"sessionId"`
	AgentType string    `json:"agentType"`
	Timestamp time.Time `json:"timestamp"`
}

type chatHistoryResponse struct {
	SessionID      string         `json:"sessionId"`
	UserID         string         `json:"userId"`
	Messages       []session.Turn `json:"messages"`
	CreatedAt      time.Time      `json:"createdAt"`
	LastActivityAt time.Time      `json:"lastActivityAt"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := req.validate(); errs != nil {
		validationError(w, errs)
		return
	}
	agentType, err := agent.ParseType(req.AgentType)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid agent type. Must be 'vacation', 'procedure', or 'timesheet'")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}
	s.sessions.GetOrCreate(req.SessionID, userID)

	agentName := s.router.Lookup(agentType).Name()
	logger := telemetry.RequestLogger(r.Context(), s.logger, agentName)

	start := time.Now()
	response, err := s.router.Route(r.Context(), req.AgentType, req.Message, req.SessionID)
	if err != nil {
		s.recordChat(agentName, "error", time.Since(start))
		logger.Error("chat request failed", "session_id", req.SessionID, "error", err)
		fail(w, http.StatusInternalServerError, "Failed to process message")
		return
	}
	s.recordChat(agentName, "ok", time.Since(start))
	logger.Info("chat request handled",
		"session_id", req.SessionID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	ok(w, chatMessageResponse{
		Response:  response,
		SessionID: req.SessionID,
		AgentType: req.AgentType,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	sess, found := s.sessions.Get(sessionID)
	if !found {
		fail(w, http.StatusNotFound, "Session not found")
		return
	}
	ok(w, chatHistoryResponse{
		SessionID:      sess.ID,
		UserID:         sess.UserID,
		Messages:       sess.Turns,
		CreatedAt:      sess.CreatedAt,
		LastActivityAt: sess.LastActivityAt,
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.streamResponse(w, r, req)
}

// handleStreamGet serves the same stream over a GET request with query
// parameters. Browser EventSource clients cannot send a POST body.
func (s *Server) handleStreamGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := chatMessageRequest{
		Message:   q.Get("message"),
		SessionID: q.Get("sessionId"),
		AgentType: q.Get("agentType"),
		UserID:    q.Get("userId"),
	}
	s.streamResponse(w, r, req)
}

func (s *Server) streamResponse(w http.ResponseWriter, r *http.Request, req chatMessageRequest) {
	if errs := req.validate(); errs != nil {
		validationError(w, errs)
		return
	}
	agentType, err := agent.ParseType(req.AgentType)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid agent type. Must be 'vacation', 'procedure', or 'timesheet'")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}
	s.sessions.GetOrCreate(req.SessionID, userID)

	agentName := s.router.Lookup(agentType).Name()
	logger := telemetry.RequestLogger(r.Context(), s.logger, agentName)

	chunks, err := s.router.Stream(r.Context(), req.AgentType, req.Message, req.SessionID)
	if err != nil {
		logger.Error("stream request failed", "session_id", req.SessionID, "error", err)
		fail(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	start := time.Now()
	for chunk := range chunks {
		if chunk.Err != nil {
			// The stream broke mid-response. The SSE headers are already
			// out, so log and end the stream without the done sentinel;
			// the client treats a missing sentinel as an aborted response.
			s.recordChat(agentName, "error", time.Since(start))
			logger.Error("stream failed mid-response", "session_id", req.SessionID, "error", chunk.Err)
			return
		}
		if err := sse.WriteChunk(chunk.Text); err != nil {
			logger.Warn("client disconnected mid-stream", "session_id", req.SessionID)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordStreamChunk(agentName)
		}
	}
	_ = sse.WriteDone()
	s.recordChat(agentName, "ok", time.Since(start))
	logger.Info("stream completed",
		"session_id", req.SessionID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if !s.sessions.Remove(sessionID) {
		fail(w, http.StatusNotFound, "Session not found")
		return
	}
	ok(w, map[string]string{"sessionId": sessionID})
}

func (s *Server) handleListVacations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var out []hr.VacationRequest
	switch {
	case q.Get("employeeId") != "":
		out = s.stores.Vacations.ByEmployee(q.Get("employeeId"))
	case q.Get("status") != "":
		out = s.stores.Vacations.ByStatus(hr.VacationStatus(q.Get("status")))
	default:
		out = s.stores.Vacations.All()
	}
	ok(w, out)
}

func (s *Server) handleListTimesheets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var out []hr.TimesheetEntry
	switch {
	case q.Get("employeeId") != "":
		out = s.stores.Timesheets.ByEmployee(q.Get("employeeId"))
	case q.Get("status") != "":
		out = s.stores.Timesheets.ByStatus(hr.TimesheetStatus(q.Get("status")))
	default:
		out = s.stores.Timesheets.All()
	}
	ok(w, out)
}

func (s *Server) handleListProcedures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var out []hr.Procedure
	switch {
	case q.Get("category") != "":
		out = s.stores.Procedures.ByCategory(q.Get("category"))
	case q.Get("q") != "":
		out = s.stores.Procedures.Search(q.Get("q"))
	default:
		out = s.stores.Procedures.All()
	}
	ok(w, out)
}

func (s *Server) recordChat(agentName, status string, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordChat(agentName, status, duration)
	}
}
