package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/a2a402/gateway/internal/engine"
	"github.com/a2a402/gateway/internal/eventlog"
	"github.com/a2a402/gateway/internal/facilitator"
	"github.com/a2a402/gateway/internal/executor"
	"github.com/a2a402/gateway/internal/session"
	"github.com/a2a402/gateway/internal/task"
)

func TestHandlerExposesGatewayMetrics(t *testing.T) {
	tasks := task.New()
	tasks.Create("t1", "", task.StateCompleted, nil)

	events := eventlog.New()
	events.Append(eventlog.Event{Kind: eventlog.KindPaymentSettled, TaskID: "t1"})

	sessions := session.New()
	sessions.Record("0xabc", "screenshot", time.Now())

	e := &engine.Engine{
		Tasks:       tasks,
		Sessions:    sessions,
		Events:      events,
		Facilitator: facilitator.NewInProcess(),
		Executors:   executor.Registry{},
	}

	c := New(e)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"gateway_tasks_total",
		"gateway_tasks_by_state",
		"gateway_payment_events_total",
		"gateway_sessions_total",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}
