package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/server/boundary"
)

// DefaultMaxBodySize is used when no limit is configured.
const DefaultMaxBodySize int64 = 10 << 20

// BodySizeLimit rejects requests whose declared Content-Length exceeds
// maxBytes with PAYLOAD_TOO_LARGE and caps the body reader for the rest.
// A read past the cap fails with *http.MaxBytesError, which the boundary
// maps to the same envelope.
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			boundary.Abort(c, errors.New(errors.Errors.PayloadTooLarge, errors.WithMeta(errors.Meta{
				"limit":          maxBytes,
				"content_length": c.Request.ContentLength,
			})))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// ParseSize parses sizes such as "10MB", "512KB", "1GB" or a plain byte
// count. An empty string yields DefaultMaxBodySize.
func ParseSize(raw string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return DefaultMaxBodySize, nil
	}

	multiplier := int64(1)
	for _, unit := range []struct {
		suffix string
		factor int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid size %q", raw)
	}
	return n * multiplier, nil
}
