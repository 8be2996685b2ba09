package response

import "github.com/gin-gonic/gin"

// JSON body shapes are part of the documented contract: success bodies are
// endpoint-specific, error bodies carry a short message only and never
// storage-engine detail.

// Message writes a {"message": ...} body.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// Error writes an {"error": ...} body.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// ErrorDetails writes an {"error": ..., "details": ...} body, used for
// request-shape validation failures.
func ErrorDetails(c *gin.Context, status int, msg string, details any) {
	if details == nil {
		Error(c, status, msg)
		return
	}
	c.JSON(status, gin.H{"error": msg, "details": details})
}
