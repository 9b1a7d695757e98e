package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/server/boundary"
	"github.com/kbukum/carmarket/validation"
)

const codePattern = `^[A-Z][A-Z0-9_]*$`

// CatalogEntry documents one registered error.
type CatalogEntry struct {
	ErrorCode  errors.Key `json:"errorCode" yaml:"errorCode"`
	StatusCode int        `json:"statusCode" yaml:"statusCode"`
	Message    string     `json:"message" yaml:"message"`
	Retryable  bool       `json:"retryable" yaml:"retryable"`
}

// CatalogEntries describes every error of reg, sorted by code.
func CatalogEntries(reg *errors.Registry) []CatalogEntry {
	keys := reg.Keys()
	out := make([]CatalogEntry, 0, len(keys))
	for _, key := range keys {
		entry, _ := reg.Entry(key)
		out = append(out, catalogEntry(key, entry))
	}
	return out
}

// Catalog lists every error of reg, sorted by code.
func Catalog(reg *errors.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"errors": CatalogEntries(reg)})
	}
}

// CatalogItem describes the error named by the :code path parameter and
// answers ROUTE_NOT_FOUND for unknown codes. A parameter that cannot be an
// error code at all answers VALIDATION_FAILED.
func CatalogItem(reg *errors.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		if appErr := validation.New().
			MaxLength("code", code, 64).
			Pattern("code", code, codePattern).
			Validate(); appErr != nil {
			boundary.Abort(c, appErr)
			return
		}
		key := errors.Key(code)
		entry, ok := reg.Entry(key)
		if !ok {
			boundary.Abort(c, errors.New(errors.Errors.RouteNotFound,
				errors.WithMessage("Unknown error code "+string(key))))
			return
		}
		c.JSON(http.StatusOK, catalogEntry(key, entry))
	}
}

func catalogEntry(key errors.Key, entry *errors.Entry) CatalogEntry {
	return CatalogEntry{
		ErrorCode:  key,
		StatusCode: entry.Status(),
		Message:    entry.Message(),
		Retryable:  entry.Retryable(),
	}
}
