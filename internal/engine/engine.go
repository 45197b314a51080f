// Package engine implements the gateway's core payment state machine: the
// Handle (JSON-RPC) and HandleSkill (REST x402) entry points the wire
// surfaces call into after translating their own request shape into a
// message.Message.
//
// Grounded on the teacher's x402/middleware.go handlePayment, which
// sequences verify -> settle -> issue-credential around a single proxied
// call; here the same sequencing drives a task through the payment
// lifecycle states instead, and "issue a credential" becomes "record a
// receipt and advance the task to completed".
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/a2a402/gateway/internal/catalog"
	"github.com/a2a402/gateway/internal/eventlog"
	"github.com/a2a402/gateway/internal/executor"
	"github.com/a2a402/gateway/internal/facilitator"
	"github.com/a2a402/gateway/internal/message"
	"github.com/a2a402/gateway/internal/parser"
	"github.com/a2a402/gateway/internal/payment"
	"github.com/a2a402/gateway/internal/session"
	"github.com/a2a402/gateway/internal/task"
)

// inputRequiredRetention is how long a task sits in input-required before
// internal/task's eviction sweep is allowed to reclaim it (spec §9's
// resolution of the task-store eviction open question).
const inputRequiredRetention = 600 * time.Second

// Engine owns the stores and collaborators the state machine drives, and
// exposes the single entry point both wire surfaces call through. It holds
// no global state of its own — spec.md §9's re-architecture note replaces
// the teacher's package-level globals with a value the caller constructs
// and owns.
type Engine struct {
	Tasks       *task.Store
	Sessions    *session.Store
	Events      *eventlog.Log
	Facilitator facilitator.Client
	Executors   executor.Registry
	PayTo       string
	// Tokens validates optional session-auth bearer tokens. May be nil, in
	// which case that bypass path is simply never taken.
	Tokens *session.TokenManager

	// Now and NewID are overridable for deterministic tests; both default
	// to time.Now and uuid.New().String() respectively.
	Now   func() time.Time
	NewID func() string
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.New().String()
}

// Handle runs one message through the payment state machine and returns the
// resulting task. rpcapi's message/send calls it with the client's message;
// restapi enters through HandleSkill instead, and tasks/cancel goes straight
// to the task store's Cancel.
func (e *Engine) Handle(ctx context.Context, msg message.Message) (*task.Task, error) {
	text, hasText := msg.Text()
	if !hasText {
		return nil, ErrMissingTextPart
	}
	meta := msg.Metadata
	if meta == nil {
		meta = &message.Metadata{}
	}

	if msg.TaskID != "" {
		return e.handleExistingTask(ctx, msg, meta)
	}
	return e.handleNewInteraction(ctx, text, msg, meta)
}

// handleExistingTask covers every case where the client's message names a
// taskId: explicit payment rejection, and correlated resubmission carrying
// a payment payload.
func (e *Engine) handleExistingTask(ctx context.Context, msg message.Message, meta *message.Metadata) (*task.Task, error) {
	existing, ok := e.Tasks.Get(msg.TaskID)
	if !ok {
		return nil, ErrTaskNotFound
	}

	if meta.PaymentStatus == message.PaymentRejected {
		e.Events.Append(eventlog.Event{
			Kind:      eventlog.KindPaymentRejected,
			TaskID:    existing.ID,
			Skill:     skillOf(existing),
			Timestamp: e.now(),
		})
		e.Tasks.Update(existing.ID, task.StateCanceled, message.PaymentRejected, &msg, nil)
		updated, _ := e.Tasks.Get(existing.ID)
		return updated, nil
	}

	if payload := resolvePaymentPayload(meta); payload != nil {
		req, ok := cachedRequestFrom(existing)
		if !ok {
			req = parser.Request{SkillID: skillOf(existing)}
		}
		return e.runPaidExecution(ctx, existing, *payload, req)
	}

	// Referenced an existing task without a payment payload or rejection —
	// nothing to transition; hand back the task as-is.
	return existing, nil
}

// handleNewInteraction covers every case where a JSON-RPC message/send
// starts a fresh task, routing the free-form text through the keyword
// parser (C1) to pick the skill and its arguments.
func (e *Engine) handleNewInteraction(ctx context.Context, text string, msg message.Message, meta *message.Metadata) (*task.Task, error) {
	req := parser.Parse(text)
	skill, ok := catalog.Lookup(req.SkillID)
	if !ok {
		return nil, ErrUnknownSkill
	}
	return e.routeNewTask(ctx, msg, meta, skill, req)
}

// HandleSkill starts a fresh task for a skill the caller has already
// selected — used by the REST x402 surface, where the skill is named
// directly in the route and the keyword parser never runs.
func (e *Engine) HandleSkill(ctx context.Context, msg message.Message, skill catalog.Skill, req parser.Request) (*task.Task, error) {
	meta := msg.Metadata
	if meta == nil {
		meta = &message.Metadata{}
	}
	return e.routeNewTask(ctx, msg, meta, skill, req)
}

// routeNewTask is the shared tail of new-task dispatch: direct payment
// attached up front, wallet-session bypass, the payment-required
// challenge, and outright free execution.
func (e *Engine) routeNewTask(ctx context.Context, msg message.Message, meta *message.Metadata, skill catalog.Skill, req parser.Request) (*task.Task, error) {
	taskID := e.newID()
	contextID := msg.ContextID
	if contextID == "" {
		contextID = e.newID()
	}
	msg.TaskID = taskID
	msg.ContextID = contextID

	created := e.Tasks.Create(taskID, contextID, task.StateSubmitted, &msg)
	e.cacheRequest(created.ID, req)

	if payload := resolvePaymentPayload(meta); payload != nil {
		return e.runPaidExecution(ctx, created, *payload, req)
	}

	if skill.RequiresPayment() {
		if wallet := e.resolveWallet(meta); wallet != "" && e.Sessions.Has(wallet, skill.ID) {
			e.Events.Append(eventlog.Event{
				Kind:      eventlog.KindSIWXAccess,
				TaskID:    taskID,
				Skill:     skill.ID,
				Wallet:    wallet,
				Timestamp: e.now(),
			})
			return e.runFreeExecution(ctx, taskID, skill, req)
		}
		return e.runPaymentRequired(taskID, skill, req)
	}

	return e.runFreeExecution(ctx, taskID, skill, req)
}

// runPaymentRequired challenges the client for payment: it records the
// payment-required event, attaches the canonical requirements object to the
// task's metadata, and parks the task in input-required until either a
// correlated resubmission or the input-required deadline arrives.
func (e *Engine) runPaymentRequired(taskID string, skill catalog.Skill, req parser.Request) (*task.Task, error) {
	reqs := payment.Build(skill, e.PayTo)
	e.Events.Append(eventlog.Event{
		Kind:      eventlog.KindPaymentRequired,
		TaskID:    taskID,
		Skill:     skill.ID,
		Timestamp: e.now(),
	})
	e.Tasks.Update(taskID, task.StateInputRequired, message.PaymentRequired, nil, nil)
	e.Tasks.Mutate(taskID, func(t *task.Task) {
		t.SetMetadata("x402PaymentRequired", reqs)
		t.InputRequiredDeadline = e.now().Add(inputRequiredRetention)
	})
	t, _ := e.Tasks.Get(taskID)
	return t, nil
}

// runFreeExecution runs an unpriced skill, or a priced skill a wallet has
// already settled for in a prior interaction, straight through to
// completion with no payment bookkeeping at all.
func (e *Engine) runFreeExecution(ctx context.Context, taskID string, skill catalog.Skill, req parser.Request) (*task.Task, error) {
	e.Tasks.Update(taskID, task.StateWorking, "", nil, nil)

	res, err := e.Executors.Run(ctx, skill.ID, req)

	cur, ok := e.Tasks.Get(taskID)
	if !ok || cur.State == task.StateCanceled {
		return cur, nil
	}
	if err != nil {
		e.Tasks.Update(taskID, task.StateFailed, "", nil, errorMetaPatch(err))
	} else {
		e.Tasks.Update(taskID, task.StateCompleted, "", nil, resultMetaPatch(res))
	}
	t, _ := e.Tasks.Get(taskID)
	return t, nil
}

// runPaidExecution drives a task through the paid path: claim, record
// payment-received, call the facilitator, record payment-verified, run the
// executor, then branch on its outcome. A payment-settled event — and the
// wallet's session-store entry — are only ever recorded after the executor
// itself succeeds (spec's resolution of the payment-settled timing open
// question, and the invariant that a session-store entry implies a
// payment-settled event exists for it).
//
// Concurrent correlated resubmissions for the same task race on the claim
// step below; only one proceeds past it; the other observes the task's
// current (possibly still in-flight, possibly already final) state.
func (e *Engine) runPaidExecution(ctx context.Context, t *task.Task, payload message.PaymentPayload, req parser.Request) (*task.Task, error) {
	skill, ok := catalog.Lookup(req.SkillID)
	if !ok {
		return nil, ErrUnknownSkill
	}

	claimed := false
	e.Tasks.Mutate(t.ID, func(tt *task.Task) {
		if tt.State != task.StateSubmitted && tt.State != task.StateInputRequired {
			return
		}
		tt.State = task.StateWorking
		tt.PaymentStatus = message.PaymentSubmitted
		claimed = true
	})
	if !claimed {
		cur, _ := e.Tasks.Get(t.ID)
		return cur, nil
	}

	e.Events.Append(eventlog.Event{
		Kind:      eventlog.KindPaymentReceived,
		TaskID:    t.ID,
		Skill:     skill.ID,
		Wallet:    payload.From,
		Network:   payload.Network,
		Timestamp: e.now(),
	})

	requirements := payment.Build(skill, e.PayTo)
	txID, err := e.Facilitator.VerifyAndSettle(ctx, payload, requirements)

	if cur, ok := e.Tasks.Get(t.ID); !ok || cur.State == task.StateCanceled {
		return cur, nil
	}
	if err != nil {
		return e.failPaidTask(t.ID, payload, "", err)
	}

	e.Events.Append(eventlog.Event{
		Kind:      eventlog.KindPaymentVerified,
		TaskID:    t.ID,
		Skill:     skill.ID,
		Wallet:    payload.From,
		Network:   payload.Network,
		Timestamp: e.now(),
	})
	e.Tasks.Mutate(t.ID, func(tt *task.Task) { tt.PaymentStatus = message.PaymentVerified })

	if cur, ok := e.Tasks.Get(t.ID); !ok || cur.State == task.StateCanceled {
		return cur, nil
	}

	res, execErr := e.Executors.Run(ctx, skill.ID, req)

	// Re-check cancellation after the executor returns: a concurrent
	// tasks/cancel must never be overwritten by a late completion or
	// failure transition (spec §5).
	cur, ok := e.Tasks.Get(t.ID)
	if !ok || cur.State == task.StateCanceled {
		return cur, nil
	}

	if execErr != nil {
		return e.failPaidTask(t.ID, payload, txID, execErr)
	}

	e.Events.Append(eventlog.Event{
		Kind:      eventlog.KindPaymentSettled,
		TaskID:    t.ID,
		Skill:     skill.ID,
		Wallet:    payload.From,
		Network:   payload.Network,
		Timestamp: e.now(),
	})
	if payload.From != "" {
		e.Sessions.Record(payload.From, skill.ID, e.now())
	}
	e.appendReceipt(t.ID, payment.Receipt{
		Success:     true,
		Transaction: txID,
		Network:     payload.Network,
		Payer:       payload.From,
	})
	e.Tasks.Update(t.ID, task.StateCompleted, message.PaymentCompleted, nil, resultMetaPatch(res))
	out, _ := e.Tasks.Get(t.ID)
	return out, nil
}

// failPaidTask records a failure receipt and transitions the task to
// failed, whether the failure came from the facilitator call or the
// executor itself.
func (e *Engine) failPaidTask(taskID string, payload message.PaymentPayload, txID string, cause error) (*task.Task, error) {
	e.appendReceipt(taskID, payment.Receipt{
		Success:     false,
		Transaction: txID,
		Network:     payload.Network,
		Payer:       payload.From,
		ErrorReason: cause.Error(),
	})
	e.Tasks.Update(taskID, task.StateFailed, message.PaymentFailed, nil, errorMetaPatch(cause))
	t, _ := e.Tasks.Get(taskID)
	return t, nil
}

func skillOf(t *task.Task) string {
	if req, ok := cachedRequestFrom(t); ok {
		return req.SkillID
	}
	return ""
}
