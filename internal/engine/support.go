package engine

import (
	"encoding/json"

	"github.com/a2a402/gateway/internal/executor"
	"github.com/a2a402/gateway/internal/message"
	"github.com/a2a402/gateway/internal/parser"
	"github.com/a2a402/gateway/internal/payment"
	"github.com/a2a402/gateway/internal/task"
)

const cachedRequestKey = "cachedRequest"
const resultKey = "result"

// resolvePaymentPayload returns the payment payload attached to a message's
// metadata, or nil. A client may attach payment either as a structured
// x402.payment.payload object or as a bare metadata.paymentSignature
// string (spec.md §4.6 decision rule 5 treats both as equally valid
// attachment points); the latter is synthesized into the same shape here,
// carrying whatever payer identity the message supplies (x402.payer, falling
// back to x402.siwx.wallet), so the rest of the engine only ever deals with
// one shape regardless of which form the client used.
func resolvePaymentPayload(meta *message.Metadata) *message.PaymentPayload {
	if meta == nil {
		return nil
	}
	if meta.PaymentPayload != nil {
		return meta.PaymentPayload
	}
	if meta.PaymentSignature == "" {
		return nil
	}
	from := meta.Payer
	if from == "" {
		from = meta.SIWXWallet
	}
	return &message.PaymentPayload{
		Signature: meta.PaymentSignature,
		From:      from,
	}
}

// resolveWallet extracts the wallet a request is acting as, either directly
// (x402.siwx.wallet) or via a session-auth bearer token. Returns "" if
// neither is present or the token fails validation.
func (e *Engine) resolveWallet(meta *message.Metadata) string {
	if meta == nil {
		return ""
	}
	if meta.SIWXWallet != "" {
		return meta.SIWXWallet
	}
	if meta.SessionToken != "" && e.Tokens != nil {
		if wallet, err := e.Tokens.WalletFromToken(meta.SessionToken); err == nil {
			return wallet
		}
	}
	return ""
}

// cacheRequest stashes the parsed (skill, args) tuple in the task's
// metadata, so a later correlated resubmission (which carries a payment
// payload but not necessarily re-parseable text) can recover it without
// re-running the parser against a different message.
func (e *Engine) cacheRequest(taskID string, req parser.Request) {
	e.Tasks.Mutate(taskID, func(t *task.Task) {
		t.SetMetadata(cachedRequestKey, req)
	})
}

func cachedRequestFrom(t *task.Task) (parser.Request, bool) {
	raw, ok := t.Metadata[cachedRequestKey]
	if !ok {
		return parser.Request{}, false
	}
	var req parser.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return parser.Request{}, false
	}
	return req, true
}

// appendReceipt adds r to the task's receipt list under the store lock.
func (e *Engine) appendReceipt(taskID string, r payment.Receipt) {
	e.Tasks.Mutate(taskID, func(t *task.Task) {
		list := append(t.Receipts(), r)
		t.SetMetadata("receipts", list)
	})
}

// resultMetaPatch wraps an executor result into the metadata patch applied
// on task completion.
func resultMetaPatch(res executor.Result) map[string]json.RawMessage {
	b, err := json.Marshal(res)
	if err != nil {
		return nil
	}
	return map[string]json.RawMessage{resultKey: b}
}

// errorMetaPatch records a plain-text failure reason on a failed task.
func errorMetaPatch(err error) map[string]json.RawMessage {
	b, marshalErr := json.Marshal(err.Error())
	if marshalErr != nil {
		return nil
	}
	return map[string]json.RawMessage{"error": b}
}
