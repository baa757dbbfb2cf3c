package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/axonect/quotacycle/internal/shared/constants"
)

const requestIDKey = "request_id"

// RequestID propagates X-Request-ID, generating one when the caller did not send it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(constants.HeaderXRequestID, id)
		c.Next()
	}
}
