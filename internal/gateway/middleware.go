package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a2a402/gateway/internal/rpcapi"
)

// corsAndExtensions implements spec.md §6.1's permissive CORS policy and
// the extension-activation echo from §4.7/§4.12 as one shared middleware,
// so both the JSON-RPC and REST surfaces get the same header handling.
func corsAndExtensions() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers",
			"Content-Type, Authorization, X-Payment, X-Payment-Response, Payment-Signature, Payment-Required, X-A2A-Extensions")
		c.Header("Access-Control-Expose-Headers",
			"X-Payment-Response, Payment-Response, Payment-Required, X-A2A-Extensions")

		rpcapi.EchoExtensionHeader(c)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
