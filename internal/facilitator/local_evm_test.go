package facilitator

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestPad32PadsSmallValues(t *testing.T) {
	got := pad32(big.NewInt(1))
	if len(got) != 32 {
		t.Fatalf("len = %d, want 32", len(got))
	}
	for _, b := range got[:31] {
		if b != 0 {
			t.Fatalf("expected leading zero padding, got %x", got)
		}
	}
	if got[31] != 1 {
		t.Fatalf("last byte = %d, want 1", got[31])
	}
}

func TestPad32PassesThroughFull32ByteValues(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(1), 255)
	got := pad32(n)
	if len(got) != 32 {
		t.Fatalf("len = %d, want 32", len(got))
	}
}

func TestAddrPadLeftPadsTo32Bytes(t *testing.T) {
	addr := common.HexToAddress("0x000000000000000000000000000000000000aa")
	got := addrPad(addr)
	if len(got) != 32 {
		t.Fatalf("len = %d, want 32", len(got))
	}
	for _, b := range got[:12] {
		if b != 0 {
			t.Fatalf("expected 12 leading zero bytes, got %x", got)
		}
	}
}

func TestDomainSeparatorIsDeterministic(t *testing.T) {
	contract := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	d1 := domainSeparator("USDC", "2", big.NewInt(8453), contract)
	d2 := domainSeparator("USDC", "2", big.NewInt(8453), contract)
	if d1 != d2 {
		t.Fatalf("domainSeparator is not deterministic for identical inputs")
	}
	d3 := domainSeparator("USDC", "2", big.NewInt(84532), contract)
	if d1 == d3 {
		t.Fatalf("expected different chain ids to produce different domain separators")
	}
}

func TestAuthHashChangesWithValue(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111a")
	to := common.HexToAddress("0x2222222222222222222222222222222222222b")
	var nonce [32]byte
	h1 := authHash(from, to, big.NewInt(100), big.NewInt(0), big.NewInt(9999999999), nonce)
	h2 := authHash(from, to, big.NewInt(200), big.NewInt(0), big.NewInt(9999999999), nonce)
	if h1 == h2 {
		t.Fatalf("expected authHash to vary with the authorized value")
	}
}

func TestMustBIParsesDecimalString(t *testing.T) {
	n := mustBI("12345")
	if n.Int64() != 12345 {
		t.Fatalf("mustBI(\"12345\") = %s, want 12345", n.String())
	}
}

func TestChainIDFromCAIP2(t *testing.T) {
	id, err := chainIDFromCAIP2("eip155:8453")
	if err != nil {
		t.Fatalf("chainIDFromCAIP2: %v", err)
	}
	if id.Int64() != 8453 {
		t.Fatalf("chainID = %s, want 8453", id.String())
	}
}

func TestChainIDFromCAIP2RejectsMalformedInput(t *testing.T) {
	if _, err := chainIDFromCAIP2("not-a-caip2-id"); err == nil {
		t.Fatalf("expected an error for a malformed CAIP-2 identifier")
	}
	if _, err := chainIDFromCAIP2("eip155:not-a-number"); err == nil {
		t.Fatalf("expected an error for a non-numeric chain id")
	}
}

func TestParseAuthorizationRoundTrip(t *testing.T) {
	raw := `{"signature":"0xsig","from":"0xfrom","to":"0xto","value":"100","validAfter":"0","validBefore":"9999999999","nonce":"0x01","domainName":"USDC","domainVersion":"2"}`
	auth, err := parseAuthorization(raw)
	if err != nil {
		t.Fatalf("parseAuthorization: %v", err)
	}
	if auth.From != "0xfrom" || auth.Value != "100" {
		t.Fatalf("unexpected authorization: %+v", auth)
	}
}

func TestParseAuthorizationRejectsMalformedJSON(t *testing.T) {
	if _, err := parseAuthorization("{not json"); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}

func TestPackTransferWithAuthProducesExpectedLength(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111a")
	to := common.HexToAddress("0x2222222222222222222222222222222222222b")
	var nonce, r, s [32]byte
	data := packTransferWithAuth(from, to, big.NewInt(100), big.NewInt(0), big.NewInt(9999999999), nonce, 27, r, s)
	if len(data) != 4+9*32 {
		t.Fatalf("len(data) = %d, want %d", len(data), 4+9*32)
	}
	for i, b := range transferWithAuthSig {
		if data[i] != b {
			t.Fatalf("function selector mismatch at byte %d", i)
		}
	}
}
