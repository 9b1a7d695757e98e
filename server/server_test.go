package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/logger"
	"github.com/kbukum/carmarket/observability"
	"github.com/kbukum/carmarket/schema"
	"github.com/kbukum/carmarket/server"
	"github.com/kbukum/carmarket/server/boundary"
	"github.com/kbukum/carmarket/server/middleware"
	"github.com/kbukum/carmarket/validation"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type createListing struct {
	Title string `json:"title" validate:"required,min=3"`
	Price int    `json:"price" validate:"gte=0"`
	Owner struct {
		Email string `json:"email" validate:"required,email"`
	} `json:"owner"`
}

func newTestServer(t *testing.T, cfg server.Config) (*server.Server, *sdkmetric.ManualReader) {
	t.Helper()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observability.NewErrorMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	s := server.New(cfg, logger.NewDefault("test"), metrics)
	gin.SetMode(gin.TestMode)
	s.ApplyDefaults("carmarket-api", "1.0.0", errors.Default)

	api := s.Protected("/api")
	api.POST("/cars", func(c *gin.Context) {
		var req createListing
		if err := boundary.Bind(c, &req); err != nil {
			boundary.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"title": req.Title})
	})
	api.GET("/cars/:id", func(c *gin.Context) {
		boundary.Abort(c, errors.New(errors.Errors.CarNotFound))
	})
	api.GET("/panic", func(*gin.Context) { panic("nil map write") })
	api.GET("/defect", func(*gin.Context) {
		errors.New(errors.NewEntry(http.StatusConflict, "unregistered"))
	})
	return s, reader
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := middleware.SignToken(middleware.AuthConfig{Secret: testSecret}, "user-1", "seller", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + token
}

func call(s *server.Server, method, path, body, auth string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func envelope(t *testing.T, rr *httptest.ResponseRecorder) errors.Envelope {
	t.Helper()
	if err := schema.ValidateJSON(rr.Body.Bytes()); err != nil {
		t.Fatalf("body is not a valid envelope: %v\n%s", err, rr.Body.String())
	}
	var env errors.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.StatusCode != rr.Code {
		t.Errorf("transport status %d differs from statusCode %d", rr.Code, env.StatusCode)
	}
	return env
}

func TestServer_ErrorResponses(t *testing.T) {
	s, _ := newTestServer(t, server.Config{
		MaxBodySize: "1KB",
		Auth:        middleware.AuthConfig{Secret: testSecret},
	})
	auth := bearer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		auth   string
		code   errors.Key
	}{
		{"car not found", http.MethodGet, "/api/cars/7", "", auth, "CAR_NOT_FOUND"},
		{"missing token", http.MethodGet, "/api/cars/7", "", "", "UNAUTHORIZED"},
		{"bad token", http.MethodGet, "/api/cars/7", "", "Bearer nope", "INVALID_TOKEN"},
		{"panic", http.MethodGet, "/api/panic", "", auth, "INTERNAL_ERROR"},
		{"unknown route", http.MethodGet, "/api/trucks", "", auth, "ROUTE_NOT_FOUND"},
		{"wrong method", http.MethodPut, "/errors", "", "", "METHOD_NOT_ALLOWED"},
		{"malformed json", http.MethodPost, "/api/cars", "{", auth, "VALIDATION_FAILED"},
		{"too large", http.MethodPost, "/api/cars", `{"title":"` + strings.Repeat("x", 2048) + `"}`, auth, "PAYLOAD_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := call(s, tt.method, tt.path, tt.body, tt.auth)
			env := envelope(t, rr)
			if env.ErrorCode != tt.code {
				t.Errorf("expected %s, got %s (%s)", tt.code, env.ErrorCode, rr.Body.String())
			}
			if rr.Header().Get(boundary.HeaderErrorID) != env.ID {
				t.Error("expected X-Error-Id to match the envelope id")
			}
			if rr.Header().Get(middleware.HeaderRequestID) == "" {
				t.Error("expected X-Request-Id on error responses")
			}
		})
	}
}

func TestServer_ValidationFailed(t *testing.T) {
	s, _ := newTestServer(t, server.Config{Auth: middleware.AuthConfig{Secret: testSecret}})

	rr := call(s, http.MethodPost, "/api/cars", `{"title":"VW","price":-1,"owner":{"email":"nope"}}`, bearer(t))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	env := envelope(t, rr)
	if env.ErrorCode != "VALIDATION_FAILED" || env.Message != "Invalid request body" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	want := []errors.FieldIssue{
		{Field: "title", Code: validation.RuleTooSmall},
		{Field: "price", Code: validation.RuleTooSmall},
		{Field: "owner.email", Code: validation.RuleInvalidString},
	}
	if len(env.Errors) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), env.Errors)
	}
	for i, w := range want {
		if env.Errors[i].Field != w.Field || env.Errors[i].Code != w.Code {
			t.Errorf("issue %d: expected %s/%s, got %+v", i, w.Field, w.Code, env.Errors[i])
		}
	}
}

func TestServer_Success(t *testing.T) {
	s, _ := newTestServer(t, server.Config{Auth: middleware.AuthConfig{Secret: testSecret}})

	rr := call(s, http.MethodPost, "/api/cars", `{"title":"Golf GTI","price":18000,"owner":{"email":"a@b.co"}}`, bearer(t))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get(boundary.HeaderErrorID) != "" {
		t.Error("success responses must not carry an error id")
	}
}

func TestServer_DefaultEndpoints(t *testing.T) {
	s, _ := newTestServer(t, server.Config{Auth: middleware.AuthConfig{Secret: testSecret}})

	for _, path := range []string{"/health", "/errors", "/errors/CAR_NOT_FOUND", "/schemas/error"} {
		if rr := call(s, http.MethodGet, path, "", ""); rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
	}
}

func TestServer_RegisterMetrics(t *testing.T) {
	s, _ := newTestServer(t, server.Config{Auth: middleware.AuthConfig{Secret: testSecret}})

	if rr := call(s, http.MethodGet, "/metrics", "", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before registration, got %d", rr.Code)
	}

	s.RegisterMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("errors_total 1\n"))
	}))
	rr := call(s, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "errors_total") {
		t.Errorf("unexpected scrape response %d: %s", rr.Code, rr.Body.String())
	}

	s.RegisterMetrics(nil)
}

func TestServer_RateLimited(t *testing.T) {
	s, _ := newTestServer(t, server.Config{RateLimit: 1, Auth: middleware.AuthConfig{Secret: testSecret}})

	call(s, http.MethodGet, "/errors", "", "")
	rr := call(s, http.MethodGet, "/errors", "", "")

	if env := envelope(t, rr); env.ErrorCode != "RATE_LIMITED" {
		t.Errorf("expected RATE_LIMITED, got %s", env.ErrorCode)
	}
	if rr.Header().Get(boundary.HeaderRetryAfter) == "" {
		t.Error("expected Retry-After header")
	}
}

func TestServer_RecordsMetrics(t *testing.T) {
	s, reader := newTestServer(t, server.Config{Auth: middleware.AuthConfig{Secret: testSecret}})

	call(s, http.MethodGet, "/api/cars/1", "", bearer(t))
	call(s, http.MethodGet, "/api/cars/2", "", bearer(t))
	call(s, http.MethodGet, "/api/cars/3", "", "")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != observability.MetricErrorsTotal {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				code, _ := dp.Attributes.Value(observability.AttrErrorCode)
				counts[code.AsString()] += dp.Value
			}
		}
	}
	if counts["CAR_NOT_FOUND"] != 2 || counts["UNAUTHORIZED"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestServer_UnregisteredEntryIsNotAResponse(t *testing.T) {
	s, _ := newTestServer(t, server.Config{Auth: middleware.AuthConfig{Secret: testSecret}})

	defer func() {
		if _, ok := recover().(*errors.UnregisteredEntryError); !ok {
			t.Fatal("expected the unregistered entry panic to reach the caller")
		}
	}()
	call(s, http.MethodGet, "/api/defect", "", bearer(t))
	t.Fatal("request must not complete with a response")
}

func TestServer_ExposeCause(t *testing.T) {
	s, _ := newTestServer(t, server.Config{ExposeCause: true, Auth: middleware.AuthConfig{Secret: testSecret}})

	rr := call(s, http.MethodGet, "/api/panic", "", bearer(t))
	if got := rr.Header().Get(boundary.HeaderErrorCause); !strings.Contains(got, "nil map write") {
		t.Errorf("expected panic cause in header, got %q", got)
	}
}

func TestServer_StartStop(t *testing.T) {
	cfg := server.Config{Host: "127.0.0.1", Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := server.New(cfg, logger.NewDefault("test"), nil)
	s.ApplyDefaults("carmarket-api", "1.0.0", errors.Default)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*server.Config)
		wantErr bool
	}{
		{"defaults", func(*server.Config) {}, false},
		{"port out of range", func(c *server.Config) { c.Port = 70000 }, true},
		{"negative timeout", func(c *server.Config) { c.ReadTimeout = -1 }, true},
		{"negative rate limit", func(c *server.Config) { c.RateLimit = -1 }, true},
		{"bad body size", func(c *server.Config) { c.MaxBodySize = "lots" }, true},
		{"short secret", func(c *server.Config) { c.Auth.Secret = "short" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := server.Config{}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := server.Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.MaxBodySize != "10MB" || cfg.ReadTimeout != 15 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
