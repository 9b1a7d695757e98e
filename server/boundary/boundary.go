// Package boundary renders errors as JSON error envelopes at the HTTP edge.
//
// Handlers either call RespondWithError directly or record the error with
// Abort and let the Handler middleware render it once the chain unwinds:
//
//	engine.Use(boundary.NewResponder(log, metrics, false).Handler())
//	engine.GET("/cars/:id", func(c *gin.Context) {
//	    boundary.Abort(c, errors.New(errors.Errors.CarNotFound))
//	})
//
// The transport status always equals the envelope's statusCode.
package boundary

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/logger"
	"github.com/kbukum/carmarket/observability"
)

// Response headers set alongside an error envelope.
const (
	HeaderErrorID    = "X-Error-Id"
	HeaderErrorCause = "X-Error-Cause"
	HeaderRetryAfter = "Retry-After"
)

const responderKey = "carmarket.responder"

// Responder maps errors to envelopes, logs them and counts them.
type Responder struct {
	log         *logger.Logger
	metrics     *observability.ErrorMetrics
	exposeCause bool
}

// NewResponder creates a Responder. A nil log falls back to the global
// logger and nil metrics disables counting. exposeCause adds the cause text
// as an X-Error-Cause header and must only be set in development.
func NewResponder(log *logger.Logger, metrics *observability.ErrorMetrics, exposeCause bool) *Responder {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Responder{
		log:         log.WithComponent("boundary"),
		metrics:     metrics,
		exposeCause: exposeCause,
	}
}

// Respond writes err as an error envelope.
func (r *Responder) Respond(c *gin.Context, err error) {
	appErr := toAppError(err)
	ctx := c.Request.Context()

	log := r.log.WithContext(ctx).WithAppError(appErr).WithFields(logger.Fields(
		logger.FieldMethod, c.Request.Method,
		logger.FieldPath, c.Request.URL.Path,
	))
	if appErr.IsServerError() {
		log.Error(appErr.Message())
	} else {
		log.Warn(appErr.Message())
	}

	r.metrics.Record(ctx, appErr)

	c.Header(HeaderErrorID, appErr.ID())
	if r.exposeCause {
		if cause := appErr.Unwrap(); cause != nil {
			c.Header(HeaderErrorCause, cause.Error())
		}
	}
	c.AbortWithStatusJSON(appErr.Status(), appErr.Public())
}

// Handler returns middleware that renders the last error recorded on the
// context once the rest of the chain has run, unless a body was already
// written.
func (r *Responder) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responderKey, r)
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		r.Respond(c, c.Errors.Last().Err)
	}
}

// RespondWithError writes err as an error envelope using the Responder
// installed on the context, or a default one without metrics.
func RespondWithError(c *gin.Context, err error) {
	responderFrom(c).Respond(c, err)
}

// Abort records err for the Handler middleware and stops the chain.
func Abort(c *gin.Context, err error) {
	if err == nil {
		err = errors.New(errors.Errors.Internal)
	}
	_ = c.Error(err)
	c.Abort()
}

// NoRoute answers unmatched paths with ROUTE_NOT_FOUND.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		Abort(c, errors.New(errors.Errors.RouteNotFound, errors.WithMeta(errors.Meta{
			"path": c.Request.URL.Path,
		})))
	}
}

// NoMethod answers unsupported methods with METHOD_NOT_ALLOWED.
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		Abort(c, errors.New(errors.Errors.MethodNotAllowed, errors.WithMeta(errors.Meta{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})))
	}
}

func responderFrom(c *gin.Context) *Responder {
	if v, ok := c.Get(responderKey); ok {
		if r, ok := v.(*Responder); ok {
			return r
		}
	}
	return NewResponder(nil, nil, false)
}

// toAppError extends errors.Wrap with the transport errors only the HTTP
// edge produces.
func toAppError(err error) *errors.AppError {
	if err == nil {
		return errors.New(errors.Errors.Internal)
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.New(errors.Errors.PayloadTooLarge, errors.WithCause(err))
	}
	return errors.Wrap(err)
}
