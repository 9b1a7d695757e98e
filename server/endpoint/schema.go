package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/schema"
)

// Schema serves the JSON Schema of the error envelope.
func Schema() gin.HandlerFunc {
	doc := schema.Document()
	return func(c *gin.Context) {
		c.Header("Content-Type", "application/schema+json")
		c.JSON(http.StatusOK, doc)
	}
}
