package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// routeAttributes maps path parameters to New Relic attribute names.
var routeAttributes = map[string]string{
	"id":  "fleetflow.resourceId",
	"mc":  "fleetflow.mcNumber",
	"dot": "fleetflow.dotNumber",
}

// NewRelicAttributes tags the current New Relic transaction with the
// route's resource identifiers. It must run after nrgin.Middleware and
// is a no-op when no transaction is present.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		for param, attr := range routeAttributes {
			if v := c.Param(param); v != "" {
				txn.AddAttribute(attr, v)
			}
		}
		if c.GetHeader(idempotencyHeader) != "" {
			txn.AddAttribute("fleetflow.idempotent", true)
		}

		c.Next()

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
