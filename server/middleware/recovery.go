package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/logger"
	"github.com/kbukum/carmarket/server/boundary"
)

// Recovery turns a panic in a later handler into an INTERNAL_ERROR
// envelope. It must run inside the boundary handler.
//
// An *errors.UnregisteredEntryError is a coding defect, not a request
// failure: it is logged and re-raised so it never becomes a response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if defect, ok := rec.(*errors.UnregisteredEntryError); ok {
				logger.Error("Unregistered error entry", map[string]interface{}{
					"error":  defect.Error(),
					"stack":  string(debug.Stack()),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				panic(defect)
			}
			logger.Error("Panic recovered", map[string]interface{}{
				"error":     fmt.Sprintf("%v", rec),
				"stack":     string(debug.Stack()),
				"path":      c.Request.URL.Path,
				"method":    c.Request.Method,
				"client_ip": c.ClientIP(),
			})
			cause, ok := rec.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", rec)
			}
			boundary.Abort(c, errors.New(errors.Errors.Internal, errors.WithCause(cause)))
		}()
		c.Next()
	}
}
