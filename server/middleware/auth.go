package middleware

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/logger"
	"github.com/kbukum/carmarket/server/boundary"
)

const claimsKey = "carmarket.claims"

// Claims is the access token payload issued by the auth service.
type Claims struct {
	gojwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// AuthConfig configures bearer token authentication.
type AuthConfig struct {
	// Secret is the HS256 signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Issuer, when set, must match the "iss" claim.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string `yaml:"skip_paths" mapstructure:"skip_paths"`
}

// Auth validates "Authorization: Bearer <jwt>" headers. A missing header
// yields UNAUTHORIZED, an expired token TOKEN_EXPIRED and any other failure
// INVALID_TOKEN. Valid claims are stored on the context.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	parser := gojwt.NewParser(parserOptions(cfg)...)
	keyFunc := func(*gojwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			boundary.Abort(c, errors.New(errors.Errors.Unauthorized))
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			boundary.Abort(c, errors.New(errors.Errors.InvalidToken,
				errors.WithCause(fmt.Errorf("malformed authorization header"))))
			return
		}

		claims := &Claims{}
		if _, err := parser.ParseWithClaims(strings.TrimSpace(token), claims, keyFunc); err != nil {
			entry := errors.Errors.InvalidToken
			if stderrors.Is(err, gojwt.ErrTokenExpired) {
				entry = errors.Errors.TokenExpired
			}
			boundary.Abort(c, errors.New(entry, errors.WithCause(err)))
			return
		}

		c.Set(claimsKey, claims)
		c.Set(logger.FieldUserID, claims.Subject)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// RequireRole answers FORBIDDEN unless the authenticated caller has one of
// the given roles. It must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			boundary.Abort(c, errors.New(errors.Errors.Unauthorized))
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		boundary.Abort(c, errors.New(errors.Errors.Forbidden, errors.WithMeta(errors.Meta{
			"role":     claims.Role,
			"required": roles,
		})))
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// SignToken issues an HS256 token for subject, valid for ttl.
func SignToken(cfg AuthConfig, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func parserOptions(cfg AuthConfig) []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(cfg.Issuer))
	}
	return opts
}
