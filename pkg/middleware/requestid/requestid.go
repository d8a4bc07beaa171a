package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header carries the request ID between client, proxy, and server.
	Header = "X-Request-ID"

	contextKey = "request_id"
)

// Middleware tags every request with an ID. An inbound X-Request-ID is
// trusted and propagated; otherwise a fresh UUID is minted. The ID is
// echoed on the response so clients can quote it when reporting problems.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request ID for the current request, or "" when the
// middleware is not installed.
func Value(c *gin.Context) string {
	id, _ := c.Value(contextKey).(string)
	return id
}
