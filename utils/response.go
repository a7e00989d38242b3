package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes data as the JSON body with 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error writes {"error": message}.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// ErrorWithData writes {"error": message, "data": data}.
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, gin.H{"error": message, "data": data})
}

// WithMessage merges a message field into a JSON-serializable record.
func WithMessage(record interface{}, message string) gin.H {
	out := gin.H{}
	if m, ok := toMap(record); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	out["message"] = message
	return out
}
