package rpcapi

import (
	"encoding/json"
	"time"

	"github.com/a2a402/gateway/internal/message"
	"github.com/a2a402/gateway/internal/task"
)

// wireTask is the Task schema spec.md §6.2 names: id, contextId, a status
// envelope, history, an (always empty, for this gateway) artifacts list,
// and metadata.
type wireTask struct {
	ID        string                     `json:"id"`
	ContextID string                     `json:"contextId"`
	Status    wireStatus                 `json:"status"`
	History   []message.Message          `json:"history"`
	Artifacts []interface{}              `json:"artifacts"`
	Metadata  map[string]json.RawMessage `json:"metadata"`
}

type wireStatus struct {
	State     string           `json:"state"`
	Timestamp time.Time        `json:"timestamp"`
	Message   *message.Message `json:"message,omitempty"`
}

// taskToWire projects an internal task record into its wire shape. The
// status message is the task's most recent history entry, if any.
func taskToWire(t *task.Task) wireTask {
	var last *message.Message
	if n := len(t.History); n > 0 {
		m := t.History[n-1]
		last = &m
	}
	return wireTask{
		ID:        t.ID,
		ContextID: t.ContextID,
		Status: wireStatus{
			State:     string(t.State),
			Timestamp: t.UpdatedAt,
			Message:   last,
		},
		History:   t.History,
		Artifacts: []interface{}{},
		Metadata:  t.Metadata,
	}
}
