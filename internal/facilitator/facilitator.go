// Package facilitator implements the narrow verify-and-settle interface the
// engine calls to turn a client-supplied payment payload into a settlement
// outcome.
//
// Grounded on the teacher's x402.FacilitatorClient interface
// (x402/facilitator.go): this package keeps the same verify/settle shape but
// collapses it to a single call, VerifyAndSettle, since the core's
// contract (spec §4.10) treats verification and settlement as one atomic
// external call synthesising a transaction id — not the teacher's two-phase
// verify-then-settle REST exchange.
package facilitator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/a2a402/gateway/internal/message"
	"github.com/a2a402/gateway/internal/payment"
)

// Client is the facilitator adapter interface. The default in-process
// implementation is test-mode only (spec §4.10); production deployments may
// swap in LocalEVM or a remote facilitator satisfying the same interface.
type Client interface {
	// VerifyAndSettle checks payload against requirements and, if valid,
	// settles the payment, returning an opaque settlement transaction id.
	VerifyAndSettle(ctx context.Context, payload message.PaymentPayload, requirements *payment.Requirements) (txID string, err error)
}

// InProcess is the default facilitator: it accepts any well-formed payload
// and synthesises a fresh opaque transaction id. Real verification is
// delegated to an external facilitator behind this same interface; this
// implementation exists so the gateway is runnable standalone (spec §1,
// "explicit non-goals — not a payment facilitator").
type InProcess struct{}

// NewInProcess creates the default in-process facilitator.
func NewInProcess() *InProcess { return &InProcess{} }

// VerifyAndSettle implements Client.
func (f *InProcess) VerifyAndSettle(_ context.Context, payload message.PaymentPayload, requirements *payment.Requirements) (string, error) {
	if payload.From == "" {
		return "", fmt.Errorf("payment payload missing payer address")
	}
	if requirements != nil && !requirements.AcceptsNetwork(payload.Network) {
		return "", fmt.Errorf("network %q not in accepted requirements", payload.Network)
	}
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generating transaction id: %w", err)
	}
	return "0x" + hex.EncodeToString(buf[:]), nil
}
