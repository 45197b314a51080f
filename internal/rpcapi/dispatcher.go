package rpcapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/a2a402/gateway/internal/engine"
)

// Dispatcher handles the JSON-RPC 2.0 envelope on behalf of internal/gateway,
// which mounts it at both "/" and "/a2a".
type Dispatcher struct {
	Engine *engine.Engine
	Log    *slog.Logger
}

// New creates a Dispatcher around an engine.
func New(e *engine.Engine, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{Engine: e, Log: log}
}

// Handle is the gin handler for the JSON-RPC endpoint.
func (d *Dispatcher) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		d.writeError(c, nil, CodeInvalidRequest, "could not read request body")
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		d.writeError(c, nil, CodeInvalidRequest, "malformed JSON-RPC envelope")
		return
	}
	if req.JSONRPC != "2.0" {
		d.writeError(c, req.ID, CodeInvalidRequest, `jsonrpc must be "2.0"`)
		return
	}

	switch req.Method {
	case "message/send", "tasks/send":
		d.handleSend(c, req)
	case "tasks/get":
		d.handleGet(c, req)
	case "tasks/cancel":
		d.handleCancel(c, req)
	default:
		d.writeError(c, req.ID, CodeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method))
	}
}

func (d *Dispatcher) handleSend(c *gin.Context, req Request) {
	var params sendParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		d.writeError(c, req.ID, CodeInvalidParams, "params.message is required")
		return
	}

	t, err := d.Engine.Handle(c.Request.Context(), params.Message)
	if err != nil {
		d.writeEngineError(c, req.ID, err)
		return
	}
	d.writeResult(c, req.ID, taskToWire(t))
}

func (d *Dispatcher) handleGet(c *gin.Context, req Request) {
	var params taskIDParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.ID == "" {
		d.writeError(c, req.ID, CodeInvalidParams, "params.id is required")
		return
	}
	t, ok := d.Engine.Tasks.Get(params.ID)
	if !ok {
		d.writeError(c, req.ID, CodeTaskNotFound, fmt.Sprintf("task %q not found", params.ID))
		return
	}
	d.writeResult(c, req.ID, taskToWire(t))
}

func (d *Dispatcher) handleCancel(c *gin.Context, req Request) {
	var params taskIDParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.ID == "" {
		d.writeError(c, req.ID, CodeInvalidParams, "params.id is required")
		return
	}
	t, ok := d.Engine.Tasks.Cancel(params.ID)
	if !ok {
		d.writeError(c, req.ID, CodeTaskNotFound, fmt.Sprintf("task %q not found", params.ID))
		return
	}
	d.writeResult(c, req.ID, taskToWire(t))
}

func (d *Dispatcher) writeEngineError(c *gin.Context, id json.RawMessage, err error) {
	switch {
	case errors.Is(err, engine.ErrTaskNotFound):
		d.writeError(c, id, CodeTaskNotFound, err.Error())
	case errors.Is(err, engine.ErrMissingTextPart), errors.Is(err, engine.ErrUnknownSkill):
		d.writeError(c, id, CodeInvalidParams, err.Error())
	default:
		d.Log.Error("engine handle failed", "error", err)
		d.writeError(c, id, CodeInvalidParams, err.Error())
	}
}

func (d *Dispatcher) writeResult(c *gin.Context, id json.RawMessage, result interface{}) {
	c.JSON(200, Response{JSONRPC: "2.0", ID: id, Result: result})
}

func (d *Dispatcher) writeError(c *gin.Context, id json.RawMessage, code int, message string) {
	c.JSON(200, Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: message}})
}
