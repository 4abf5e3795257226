// Package middleware holds the gin middleware shared by all routes.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gryroach/ugc-service/internal/observability/logger"
)

// RequestIDHeader is the HTTP header name for request ID.
const RequestIDHeader = "X-Request-Id"

// RequestID preserves an incoming X-Request-Id, generates a UUID when the
// header is absent, echoes it on the response and stores it in the request
// context so the logger can pick it up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header(RequestIDHeader, requestID)
		ctx := logger.ContextWithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
