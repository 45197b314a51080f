package restapi

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/a2a402/gateway/internal/catalog"
	"github.com/a2a402/gateway/internal/message"
	"github.com/a2a402/gateway/internal/payment"
	"github.com/a2a402/gateway/internal/task"
)

// handleGet always returns the payment-requirements challenge for a priced
// skill — spec.md §4.8.
func (a *API) handleGet(s catalog.Skill) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(402, payment.Build(s, a.PayTo))
	}
}

// handlePost returns the same 402 challenge as handleGet for a priced skill
// when neither a payment header nor a session wallet/token is present;
// otherwise (and always for a free skill) it hands the request to the
// engine, which takes the paid path when a payment header is present.
func (a *API) handlePost(s catalog.Skill) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body requestBody
		if raw, err := io.ReadAll(c.Request.Body); err == nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				c.JSON(400, gin.H{"error": "malformed JSON body"})
				return
			}
		}

		req, err := requestFor(s, body)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		header := paymentHeader(c.GetHeader)
		hasBypass := body.SessionWallet != "" || body.SessionToken != ""
		if s.RequiresPayment() && header == "" && !hasBypass {
			c.JSON(402, payment.Build(s, a.PayTo))
			return
		}

		msg := message.Message{
			MessageID: uuid.New().String(),
			Role:      "user",
			Kind:      "message",
			Parts:     partsFor(req),
		}
		meta := &message.Metadata{}
		if header != "" {
			meta.PaymentPayload = &message.PaymentPayload{
				Network: body.Network,
				Scheme:  "exact",
				Payload: header,
				From:    body.From,
			}
		}
		meta.SIWXWallet = body.SessionWallet
		meta.SessionToken = body.SessionToken
		msg.Metadata = meta

		t, err := a.Engine.HandleSkill(c.Request.Context(), msg, s, req)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		a.writeTaskResult(c, s, t)
	}
}

// wireResult mirrors internal/executor.Result's field names for reading an
// executor outcome back out of a completed task's metadata.
type wireResult struct {
	ContentType string
	Data        []byte
	Text        string
	Degraded    bool
}

// writeTaskResult renders a just-handled task as the REST response the
// client expects: 402 if payment is still required, 500 if the task failed
// (executor error, or a payment the facilitator refused), or the raw
// executor output.
func (a *API) writeTaskResult(c *gin.Context, s catalog.Skill, t *task.Task) {
	switch t.State {
	case task.StateInputRequired:
		var reqs payment.Requirements
		if raw, ok := t.Metadata["x402PaymentRequired"]; ok {
			_ = json.Unmarshal(raw, &reqs)
		}
		c.JSON(402, reqs)
	case task.StateFailed:
		reason := "skill execution failed"
		if receipts := t.Receipts(); len(receipts) > 0 {
			reason = receipts[len(receipts)-1].ErrorReason
		} else if raw, ok := t.Metadata["error"]; ok {
			_ = json.Unmarshal(raw, &reason)
		}
		c.JSON(500, gin.H{"error": reason})
	case task.StateCompleted:
		var res wireResult
		if raw, ok := t.Metadata["result"]; ok {
			_ = json.Unmarshal(raw, &res)
		}
		if s.RequiresPayment() {
			txID := ""
			if receipts := t.Receipts(); len(receipts) > 0 {
				txID = receipts[len(receipts)-1].Transaction
			}
			resp, _ := json.Marshal(map[string]interface{}{"settled": true, "txHash": txID})
			c.Header("X-Payment-Response", string(resp))
		}
		contentType := res.ContentType
		if contentType == "" {
			contentType = "text/plain"
		}
		data := res.Data
		if len(data) == 0 {
			data = []byte(res.Text)
		}
		c.Data(200, contentType, data)
	default:
		c.JSON(500, gin.H{"error": "unexpected task state"})
	}
}
