// Package payment builds the canonical payment-requirements object for a
// priced skill and defines the receipt type emitted on settlement.
//
// The struct shape is grounded on the teacher's x402/middleware.go, which
// builds one paymentRequirementsV2 entry per middleware instance at
// construction time; here the same shape is repeated once per enabled
// network for a given skill.
package payment

import (
	"fmt"

	"github.com/a2a402/gateway/internal/catalog"
)

// Extensions is the fixed capability descriptor attached to every
// payment-requirements object.
type Extensions struct {
	SessionAuth       bool `json:"sessionAuth"`
	IdempotentPayment bool `json:"idempotentPayment"`
}

var fixedExtensions = Extensions{SessionAuth: true, IdempotentPayment: true}

// Accept is one entry in a PaymentRequirements' Accepts list: the terms for
// settling on one particular network.
type Accept struct {
	Scheme            string `json:"scheme"`
	Network           string `json:"network"`
	Asset             string `json:"asset"`
	PayTo             string `json:"payTo"`
	MaxAmountRequired string `json:"maxAmountRequired"`
	MaxTimeoutSeconds int    `json:"maxTimeoutSeconds"`
	Gasless           bool   `json:"gasless,omitempty"`
}

// Requirements is the canonical payment-requirements object for one skill.
type Requirements struct {
	Version    string     `json:"version"`
	Accepts    []Accept   `json:"accepts"`
	Resource   string     `json:"resource"`
	Extensions Extensions `json:"extensions"`
}

const maxTimeoutSeconds = 600

// Build returns the payment-requirements object for skill s across every
// enabled network, or nil if s is free (the caller takes the
// free-execution path in that case).
func Build(s catalog.Skill, payTo string) *Requirements {
	if !s.RequiresPayment() {
		return nil
	}
	accepts := make([]Accept, 0, len(catalog.Networks))
	for _, n := range catalog.Networks {
		a := Accept{
			Scheme:            "exact",
			Network:           n.CAIP2ID,
			Asset:             n.AssetAddress,
			PayTo:             payTo,
			MaxAmountRequired: fmt.Sprintf("%d", s.PriceSmallestUnit),
			MaxTimeoutSeconds: maxTimeoutSeconds,
		}
		if n.Gasless {
			a.Gasless = true
		}
		accepts = append(accepts, a)
	}
	return &Requirements{
		Version:    "2.0",
		Accepts:    accepts,
		Resource:   "/" + s.ID,
		Extensions: fixedExtensions,
	}
}

// AcceptsNetwork reports whether network caip2 is one of r's accepted
// networks. A nil *Requirements accepts no network.
func (r *Requirements) AcceptsNetwork(caip2 string) bool {
	if r == nil {
		return false
	}
	for _, a := range r.Accepts {
		if a.Network == caip2 {
			return true
		}
	}
	return false
}

// Receipt records the outcome of a settlement attempt.
type Receipt struct {
	Success     bool   `json:"success"`
	Transaction string `json:"transaction,omitempty"`
	Network     string `json:"network"`
	Payer       string `json:"payer"`
	ErrorReason string `json:"errorReason,omitempty"`
}
