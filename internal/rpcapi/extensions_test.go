package rpcapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func runEcho(t *testing.T, incoming string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		c.Request.Header.Set("X-A2A-Extensions", incoming)
	}
	EchoExtensionHeader(c)
	return rec.Header().Get("X-A2A-Extensions")
}

func TestEchoExtensionHeaderDefaultsToV02(t *testing.T) {
	if got := runEcho(t, "https://github.com/a2a402/gateway/extensions/payment"); got != ExtensionV02 {
		t.Fatalf("echoed = %q, want v0.2 default", got)
	}
}

func TestEchoExtensionHeaderHonoursV01(t *testing.T) {
	if got := runEcho(t, ExtensionV01); got != ExtensionV01 {
		t.Fatalf("echoed = %q, want %q", got, ExtensionV01)
	}
}

func TestEchoExtensionHeaderIgnoresUnrelatedExtensions(t *testing.T) {
	if got := runEcho(t, "https://example.com/some/other/extension"); got != "" {
		t.Fatalf("echoed = %q, want no echo for an unrecognised extension", got)
	}
}

func TestEchoExtensionHeaderNoHeaderSentNoEcho(t *testing.T) {
	if got := runEcho(t, ""); got != "" {
		t.Fatalf("echoed = %q, want no echo when no header was sent", got)
	}
}
