package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/membermatters/memberportal/internal/types"
)

var corsHeaders = strings.Join([]string{
	"Content-Type",
	"Authorization",
	types.HeaderRequestID,
	types.HeaderMemberID,
}, ", ")

// CORSMiddleware handles CORS headers. The portal frontend is served
// from a different origin than the API.
func CORSMiddleware(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", corsHeaders)
	h.Set("Access-Control-Max-Age", "86400")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}
