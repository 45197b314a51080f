package payment

import (
	"testing"

	"github.com/a2a402/gateway/internal/catalog"
)

func TestBuildReturnsNilForFreeSkill(t *testing.T) {
	free, ok := catalog.Lookup(catalog.SkillMarkdownToHTML)
	if !ok {
		t.Fatalf("catalog missing markdown-to-html")
	}
	if got := Build(free, "0xpayee"); got != nil {
		t.Fatalf("Build(free skill) = %+v, want nil", got)
	}
}

func TestBuildProducesOneAcceptPerNetwork(t *testing.T) {
	priced, ok := catalog.Lookup(catalog.SkillScreenshot)
	if !ok {
		t.Fatalf("catalog missing screenshot")
	}
	reqs := Build(priced, "0xpayee")
	if reqs == nil {
		t.Fatalf("Build(priced skill) = nil")
	}
	if len(reqs.Accepts) != len(catalog.Networks) {
		t.Fatalf("len(Accepts) = %d, want %d", len(reqs.Accepts), len(catalog.Networks))
	}
	for _, a := range reqs.Accepts {
		if a.Scheme == "" || a.Network == "" || a.Asset == "" || a.PayTo != "0xpayee" || a.MaxAmountRequired == "" {
			t.Fatalf("incomplete accept entry: %+v", a)
		}
	}
}

func TestRequirementsAcceptsNetwork(t *testing.T) {
	priced, _ := catalog.Lookup(catalog.SkillScreenshot)
	reqs := Build(priced, "0xpayee")
	if !reqs.AcceptsNetwork(reqs.Accepts[0].Network) {
		t.Fatalf("AcceptsNetwork should be true for a network in Accepts")
	}
	if reqs.AcceptsNetwork("eip155:999999") {
		t.Fatalf("AcceptsNetwork should be false for an unlisted network")
	}
}

func TestRequirementsAcceptsNetworkNilSafe(t *testing.T) {
	var reqs *Requirements
	if reqs.AcceptsNetwork("eip155:1") {
		t.Fatalf("nil *Requirements must report no accepted networks")
	}
}
