package rpcapi

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const extensionHeader = "X-A2A-Extensions"

// Recognised payment-extension URIs. V02 is the default echoed back when a
// client's header names the extension family without pinning a version.
const (
	ExtensionV01 = "https://github.com/a2a402/gateway/extensions/payment/v0.1"
	ExtensionV02 = "https://github.com/a2a402/gateway/extensions/payment/v0.2"
)

const extensionFamily = "extensions/payment"

// EchoExtensionHeader implements the extension-activation handshake: if the
// request names a recognised extension URI, echo it (or the v0.2 default)
// back on the response. A request naming nothing recognised gets no echo.
// Called once per request by internal/gateway's shared CORS/extension
// middleware (spec.md §4.12), ahead of both the JSON-RPC and REST surfaces.
func EchoExtensionHeader(c *gin.Context) {
	incoming := c.GetHeader(extensionHeader)
	if incoming == "" || !strings.Contains(incoming, extensionFamily) {
		return
	}
	if strings.Contains(incoming, "v0.1") {
		c.Header(extensionHeader, ExtensionV01)
		return
	}
	c.Header(extensionHeader, ExtensionV02)
}
