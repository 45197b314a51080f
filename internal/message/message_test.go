package message

import (
	"encoding/json"
	"testing"
)

func TestMessageTextConcatenatesTextParts(t *testing.T) {
	m := Message{Parts: []Part{
		{Kind: PartKindText, Text: "hello "},
		{Kind: PartKindData, Data: json.RawMessage(`{"x":1}`)},
		{Kind: PartKindText, Text: "world"},
	}}
	text, ok := m.Text()
	if !ok || text != "hello world" {
		t.Fatalf("Text() = %q, %v; want %q, true", text, ok, "hello world")
	}
}

func TestMessageTextNoTextParts(t *testing.T) {
	m := Message{Parts: []Part{{Kind: PartKindData, Data: json.RawMessage(`{}`)}}}
	if _, ok := m.Text(); ok {
		t.Fatalf("expected ok=false when no text part is present")
	}
}

func TestMetadataRoundTripPreservesUnknownKeys(t *testing.T) {
	raw := []byte(`{"x402.siwx.wallet":"0xabc","x402.payment.status":"payment-verified","clientCustomField":"keep-me"}`)
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.SIWXWallet != "0xabc" {
		t.Fatalf("SIWXWallet = %q, want 0xabc", m.SIWXWallet)
	}
	if m.PaymentStatus != PaymentVerified {
		t.Fatalf("PaymentStatus = %q, want payment-verified", m.PaymentStatus)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var roundTripped map[string]interface{}
	json.Unmarshal(out, &roundTripped)
	if roundTripped["clientCustomField"] != "keep-me" {
		t.Fatalf("unknown metadata key did not survive round-trip: %s", out)
	}
	if roundTripped["x402.siwx.wallet"] != "0xabc" {
		t.Fatalf("typed field did not survive round-trip: %s", out)
	}
}

func TestMetadataMarshalOmitsEmptyFields(t *testing.T) {
	m := Metadata{}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "{}" {
		t.Fatalf("Marshal(empty Metadata) = %s, want {}", out)
	}
}
