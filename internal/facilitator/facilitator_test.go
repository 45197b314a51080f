package facilitator

import (
	"context"
	"testing"

	"github.com/a2a402/gateway/internal/catalog"
	"github.com/a2a402/gateway/internal/message"
	"github.com/a2a402/gateway/internal/payment"
)

func TestInProcessRejectsMissingPayer(t *testing.T) {
	f := NewInProcess()
	_, err := f.VerifyAndSettle(context.Background(), message.PaymentPayload{Network: "eip155:8453"}, nil)
	if err == nil {
		t.Fatalf("expected an error for a payload with no payer address")
	}
}

func TestInProcessRejectsUnacceptedNetwork(t *testing.T) {
	f := NewInProcess()
	s, _ := catalog.Lookup(catalog.SkillScreenshot)
	reqs := payment.Build(s, "0xpayee")
	_, err := f.VerifyAndSettle(context.Background(), message.PaymentPayload{Network: "eip155:999999", From: "0xwallet"}, reqs)
	if err == nil {
		t.Fatalf("expected an error for a network outside requirements.Accepts")
	}
}

func TestInProcessSettlesValidPayload(t *testing.T) {
	f := NewInProcess()
	s, _ := catalog.Lookup(catalog.SkillScreenshot)
	reqs := payment.Build(s, "0xpayee")
	txID, err := f.VerifyAndSettle(context.Background(), message.PaymentPayload{Network: reqs.Accepts[0].Network, From: "0xwallet"}, reqs)
	if err != nil {
		t.Fatalf("VerifyAndSettle: %v", err)
	}
	if txID == "" {
		t.Fatalf("expected a non-empty transaction id")
	}
}

func TestInProcessProducesDistinctTransactionIDs(t *testing.T) {
	f := NewInProcess()
	tx1, _ := f.VerifyAndSettle(context.Background(), message.PaymentPayload{From: "0xwallet"}, nil)
	tx2, _ := f.VerifyAndSettle(context.Background(), message.PaymentPayload{From: "0xwallet"}, nil)
	if tx1 == tx2 {
		t.Fatalf("expected distinct transaction ids across calls")
	}
}
