// internal/api/handlers.go
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/content"
	apperrors "github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/services"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/simulation"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

// Command names shared by the REST and websocket surfaces
const (
	CommandStart    = "start"
	CommandAdvance  = "advance"
	CommandRetreat  = "retreat"
	CommandBranch   = "branch"
	CommandDecision = "decision"
	CommandSubmit   = "submit"
	CommandRestart  = "restart"
	CommandSound    = "sound"
	CommandSnapshot = "snapshot"
)

// Handler serves the session API
type Handler struct {
	Sessions *services.SessionService
	Library  *content.Library
	Hub      *WebSocketManager
	Response *ResponseHelper
	Metrics  *utils.MetricsCollector

	logger   *utils.Logger
	upgrader websocket.Upgrader
}

// NewHandler wires the handler. allowedOrigins gates websocket upgrades;
// "*" accepts any origin.
func NewHandler(sessions *services.SessionService, library *content.Library, hub *WebSocketManager, metrics *utils.MetricsCollector, allowedOrigins []string, verbose bool) *Handler {
	return &Handler{
		Sessions: sessions,
		Library:  library,
		Hub:      hub,
		Response: NewResponseHelper(verbose),
		Metrics:  metrics,
		logger:   utils.GetLogger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// Command is one player action
type Command struct {
	Type     string `json:"type"`
	OptionID string `json:"option_id,omitempty"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value,omitempty"`
}

// CommandResult is returned by every command endpoint
type CommandResult struct {
	Command  string              `json:"command"`
	Changed  bool                `json:"changed"`
	Snapshot simulation.Snapshot `json:"snapshot"`
}

// applyCommand runs cmd against session. changed is false when the
// action was not allowed in the current state.
func applyCommand(session *simulation.Session, cmd Command) (CommandResult, error) {
	var (
		changed bool
		err     error
	)

	switch cmd.Type {
	case CommandStart:
		changed = session.Start()
	case CommandAdvance:
		changed = session.Advance()
	case CommandRetreat:
		changed = session.Retreat()
	case CommandBranch:
		if cmd.OptionID == "" {
			return CommandResult{}, apperrors.NewValidationError("option_id is required", nil)
		}
		changed, err = session.SelectBranch(cmd.OptionID)
	case CommandDecision:
		if cmd.Field == "" {
			return CommandResult{}, apperrors.NewValidationError("field is required", nil)
		}
		changed, err = session.SetDecisionField(models.DecisionField(cmd.Field), cmd.Value)
	case CommandSubmit:
		changed = session.Submit()
	case CommandRestart:
		changed = session.Restart()
	case CommandSound:
		session.ToggleSound()
		changed = true
	case CommandSnapshot:
	default:
		return CommandResult{}, apperrors.NewValidationError(fmt.Sprintf("unknown command %q", cmd.Type), nil).WithCode(ErrorUnknownCommand)
	}
	if err != nil {
		return CommandResult{}, err
	}

	return CommandResult{
		Command:  cmd.Type,
		Changed:  changed,
		Snapshot: session.Snapshot(),
	}, nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	errType := apperrors.TypeOf(err)
	if errType == "" {
		errType = apperrors.ErrorTypeError
	}
	if h.Metrics != nil {
		h.Metrics.RecordError(string(errType), "api")
	}
	fields := map[string]interface{}{
		"path":       c.Request.URL.Path,
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
	}
	if errType == apperrors.ErrorTypeConfiguration || errType == apperrors.ErrorTypeError {
		h.logger.Error("request error", fields)
	} else {
		h.logger.Debug("request error", fields)
	}
	h.Response.FromError(c, err)
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.Sessions.Count(),
	})
}

// ListScenarios lists loaded scenarios
func (h *Handler) ListScenarios(c *gin.Context) {
	h.Response.Success(c, h.Library.List())
}

// GetScenario returns a full content graph
func (h *Handler) GetScenario(c *gin.Context) {
	graph, err := h.Library.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Response.Success(c, graph)
}

// ReloadScenarios re-reads the scenario directory. Live sessions keep
// the graph they started with.
func (h *Handler) ReloadScenarios(c *gin.Context) {
	if err := h.Library.Reload(); err != nil {
		h.fail(c, err)
		return
	}
	h.Response.Success(c, h.Library.List(), "scenarios reloaded")
}

// GetDecisionOptions returns the selectable values of the decision form
func (h *Handler) GetDecisionOptions(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"required": models.RequiredFields,
		"options":  models.DecisionCatalog,
	})
}

type createSessionRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// CreateSession starts a session in the intro phase
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Response.BadRequest(c, "invalid request body", err.Error())
			return
		}
	}

	session, err := h.Sessions.Create(req.ScenarioID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Response.Created(c, session.Snapshot())
}

// ListSessions lists live sessions
func (h *Handler) ListSessions(c *gin.Context) {
	h.Response.Success(c, h.Sessions.List())
}

// GetSession returns the snapshot of a session
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Response.Success(c, session.Snapshot())
}

// DeleteSession closes a session and its sockets
func (h *Handler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.Sessions.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	h.Hub.CloseSession(id)
	h.Response.Success(c, gin.H{"session_id": id}, "session deleted")
}

// SessionCommand serves the body-less commands
func (h *Handler) SessionCommand(command string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.runCommand(c, Command{Type: command})
	}
}

type branchRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}

// SelectBranch follows a transition option
func (h *Handler) SelectBranch(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "option_id is required", err.Error())
		return
	}
	h.runCommand(c, Command{Type: CommandBranch, OptionID: req.OptionID})
}

type decisionRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// SetDecision updates one field of the decision form
func (h *Handler) SetDecision(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "field is required", err.Error())
		return
	}
	h.runCommand(c, Command{Type: CommandDecision, Field: req.Field, Value: req.Value})
}

func (h *Handler) runCommand(c *gin.Context, cmd Command) {
	session, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	result, err := applyCommand(session, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Response.Success(c, result)
}

// GetWebSocketStatus reports hub statistics
func (h *Handler) GetWebSocketStatus(c *gin.Context) {
	h.Response.Success(c, h.Hub.GetStatus())
}
