// Package message defines the wire types shared by the JSON-RPC and REST
// surfaces: message parts, messages, and payment-metadata fields.
//
// Per the re-architecture notes in spec.md §9, message parts are modeled as
// an explicit tagged union rather than an untyped interface{} bag, while
// still serializing to the same flat {kind, ...} JSON shape the wire schema
// names. Unknown metadata keys round-trip through a pass-through map so a
// client's forward-compatible fields survive a tasks/get round-trip.
package message

import "encoding/json"

// PartKind identifies the variant of a Part.
type PartKind string

const (
	PartKindText PartKind = "text"
	PartKindData PartKind = "data"
	PartKindFile PartKind = "file"
)

// FilePart is the payload of a "file" part.
type FilePart struct {
	Name  string `json:"name"`
	Mime  string `json:"mimeType"`
	Bytes []byte `json:"bytes"`
}

// Part is one unit of a message's content, tagged by Kind.
type Part struct {
	Kind PartKind        `json:"kind"`
	Text string          `json:"text,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
	File *FilePart       `json:"file,omitempty"`
}

// PaymentStatus is one of the x402 payment-lifecycle substates.
type PaymentStatus string

const (
	PaymentRequired  PaymentStatus = "payment-required"
	PaymentSubmitted PaymentStatus = "payment-submitted"
	PaymentVerified  PaymentStatus = "payment-verified"
	PaymentCompleted PaymentStatus = "payment-completed"
	PaymentFailed    PaymentStatus = "payment-failed"
	PaymentRejected  PaymentStatus = "payment-rejected"
)

// PaymentPayload is the client-supplied payment artifact attached to a
// correlated resubmission.
type PaymentPayload struct {
	Network   string `json:"network"`
	Scheme    string `json:"scheme"`
	Signature string `json:"signature,omitempty"`
	Payload   string `json:"payload,omitempty"`
	From      string `json:"from"`
}

// Metadata is the typed projection of a message's payment-related metadata
// fields. Any other keys present on the wire are preserved in Extra and
// re-emitted verbatim.
type Metadata struct {
	PaymentStatus   PaymentStatus   `json:"x402.payment.status,omitempty"`
	PaymentPayload  *PaymentPayload `json:"x402.payment.payload,omitempty"`
	SIWXWallet      string          `json:"x402.siwx.wallet,omitempty"`
	Payer           string          `json:"x402.payer,omitempty"`
	PaymentSignature string         `json:"paymentSignature,omitempty"`
	SessionToken    string          `json:"x402.session.token,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON flattens Metadata's typed fields together with Extra into a
// single JSON object, so unknown keys a client sent survive round-trips.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	for k, v := range m.Extra {
		out[k] = v
	}
	set := func(key string, v interface{}) {
		if v == nil {
			return
		}
		b, err := json.Marshal(v)
		if err != nil || string(b) == "null" || string(b) == `""` {
			return
		}
		out[key] = b
	}
	if m.PaymentStatus != "" {
		set("x402.payment.status", m.PaymentStatus)
	}
	if m.PaymentPayload != nil {
		set("x402.payment.payload", m.PaymentPayload)
	}
	if m.SIWXWallet != "" {
		set("x402.siwx.wallet", m.SIWXWallet)
	}
	if m.Payer != "" {
		set("x402.payer", m.Payer)
	}
	if m.PaymentSignature != "" {
		set("paymentSignature", m.PaymentSignature)
	}
	if m.SessionToken != "" {
		set("x402.session.token", m.SessionToken)
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits a flat metadata object into typed fields plus Extra.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Extra = map[string]json.RawMessage{}
	for k, v := range raw {
		switch k {
		case "x402.payment.status":
			_ = json.Unmarshal(v, &m.PaymentStatus)
		case "x402.payment.payload":
			var p PaymentPayload
			if json.Unmarshal(v, &p) == nil {
				m.PaymentPayload = &p
			}
		case "x402.siwx.wallet":
			_ = json.Unmarshal(v, &m.SIWXWallet)
		case "x402.payer":
			_ = json.Unmarshal(v, &m.Payer)
		case "paymentSignature":
			_ = json.Unmarshal(v, &m.PaymentSignature)
		case "x402.session.token":
			_ = json.Unmarshal(v, &m.SessionToken)
		default:
			m.Extra[k] = v
		}
	}
	return nil
}

// Message is one element of a task's history, or the single message carried
// in a message/send request.
type Message struct {
	MessageID string    `json:"messageId"`
	Role      string    `json:"role"`
	Kind      string    `json:"kind"`
	Parts     []Part    `json:"parts"`
	TaskID    string    `json:"taskId,omitempty"`
	ContextID string    `json:"contextId,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// Text returns the concatenation of all text parts, and whether any were
// present.
func (m Message) Text() (string, bool) {
	found := false
	out := ""
	for _, p := range m.Parts {
		if p.Kind == PartKindText {
			out += p.Text
			found = true
		}
	}
	return out, found
}
