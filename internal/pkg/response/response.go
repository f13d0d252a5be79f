package response

import "github.com/gin-gonic/gin"

// The polling web client expects flat JSON bodies: success payloads carry
// their fields at the top level and failures are {"error": "..."} with a
// meaningful HTTP status.

func Success(c *gin.Context, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["success"] = true
	c.JSON(200, data)
}

func JSON(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
