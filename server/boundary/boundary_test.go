package boundary

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/logger"
	"github.com/kbukum/carmarket/schema"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestResponder(buf *bytes.Buffer, exposeCause bool) *Responder {
	log := logger.NewWithWriter(buf, &logger.Config{Level: "debug", Format: "json"}, "test")
	return NewResponder(log, nil, exposeCause)
}

func newEngine(r *Responder) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(r.Handler())
	engine.NoRoute(NoRoute())
	engine.NoMethod(NoMethod())
	return engine
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) errors.Envelope {
	t.Helper()
	if err := schema.ValidateJSON(rr.Body.Bytes()); err != nil {
		t.Fatalf("response is not a valid envelope: %v\n%s", err, rr.Body.String())
	}
	var env errors.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.StatusCode != rr.Code {
		t.Errorf("transport status %d differs from statusCode %d", rr.Code, env.StatusCode)
	}
	return env
}

func TestRespond_AppError(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(newTestResponder(&buf, false))
	engine.GET("/cars/:id", func(c *gin.Context) {
		RespondWithError(c, errors.New(errors.Errors.CarNotFound))
	})

	rr := serve(engine, http.MethodGet, "/cars/42")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if env.ErrorCode != "CAR_NOT_FOUND" || env.Message != "Car not found" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if got := rr.Header().Get(HeaderErrorID); got != env.ID {
		t.Errorf("expected %s header %q, got %q", HeaderErrorID, env.ID, got)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("expected 4xx to be logged at warn, got %s", buf.String())
	}
}

func TestRespond_PlainErrorIsInternal(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(newTestResponder(&buf, false))
	engine.GET("/boom", func(c *gin.Context) {
		Abort(c, stderrors.New("pq: connection reset"))
	})

	rr := serve(engine, http.MethodGet, "/boom")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if env.ErrorCode != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", env.ErrorCode)
	}
	if strings.Contains(rr.Body.String(), "pq:") {
		t.Errorf("cause leaked into body: %s", rr.Body.String())
	}
	if rr.Header().Get(HeaderErrorCause) != "" {
		t.Error("cause header must not be set outside development")
	}
	logged := buf.String()
	if !strings.Contains(logged, `"level":"error"`) || !strings.Contains(logged, "pq: connection reset") {
		t.Errorf("expected 5xx logged at error with cause, got %s", logged)
	}
}

func TestRespond_ExposeCause(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(newTestResponder(&buf, true))
	engine.GET("/boom", func(c *gin.Context) {
		Abort(c, stderrors.New("pq: connection reset"))
	})

	rr := serve(engine, http.MethodGet, "/boom")

	if got := rr.Header().Get(HeaderErrorCause); got != "pq: connection reset" {
		t.Errorf("expected cause header, got %q", got)
	}
	if strings.Contains(rr.Body.String(), "pq:") {
		t.Errorf("cause leaked into body: %s", rr.Body.String())
	}
}

func TestRespond_ServerMessageOverrideHidden(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(newTestResponder(&buf, false))
	engine.GET("/boom", func(c *gin.Context) {
		Abort(c, errors.New(errors.Errors.Internal, errors.WithMessage("table cars is locked")))
	})

	env := decodeEnvelope(t, serve(engine, http.MethodGet, "/boom"))
	if env.Message != errors.Errors.Internal.Message() {
		t.Errorf("expected default message, got %q", env.Message)
	}
}

func TestRespond_MaxBytesError(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(newTestResponder(&buf, false))
	engine.POST("/cars", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 4)
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			Abort(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/cars", strings.NewReader("0123456789")))

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.ErrorCode != "PAYLOAD_TOO_LARGE" {
		t.Errorf("expected PAYLOAD_TOO_LARGE, got %s", env.ErrorCode)
	}
}

func TestHandler_SkipsWrittenResponse(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(newTestResponder(&buf, false))
	engine.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusAccepted, "accepted")
		_ = c.Error(stderrors.New("late failure"))
	})

	rr := serve(engine, http.MethodGet, "/partial")

	if rr.Code != http.StatusAccepted || rr.Body.String() != "accepted" {
		t.Errorf("expected the handler's response untouched, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestAbort_NilError(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(newTestResponder(&buf, false))
	engine.GET("/nil", func(c *gin.Context) {
		Abort(c, nil)
	})

	rr := serve(engine, http.MethodGet, "/nil")
	if env := decodeEnvelope(t, rr); env.ErrorCode != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", env.ErrorCode)
	}
}

func TestRespondWithError_WithoutHandler(t *testing.T) {
	engine := gin.New()
	engine.GET("/cars/:id", func(c *gin.Context) {
		RespondWithError(c, errors.New(errors.Errors.CarNotFound))
	})

	rr := serve(engine, http.MethodGet, "/cars/1")
	if env := decodeEnvelope(t, rr); env.ErrorCode != "CAR_NOT_FOUND" {
		t.Errorf("expected CAR_NOT_FOUND, got %s", env.ErrorCode)
	}
}

func TestNoRouteAndNoMethod(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(newTestResponder(&buf, false))
	engine.GET("/cars", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		method string
		path   string
		status int
		code   errors.Key
	}{
		{"unknown path", http.MethodGet, "/trucks", http.StatusNotFound, "ROUTE_NOT_FOUND"},
		{"wrong method", http.MethodDelete, "/cars", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(engine, tt.method, tt.path)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			if env := decodeEnvelope(t, rr); env.ErrorCode != tt.code {
				t.Errorf("expected %s, got %s", tt.code, env.ErrorCode)
			}
		})
	}
}

type listingRequest struct {
	Title string `json:"title" validate:"required,min=3"`
	Price int    `json:"price" validate:"gte=0"`
}

func TestBind(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(newTestResponder(&buf, false))
	engine.POST("/cars", func(c *gin.Context) {
		var req listingRequest
		if err := Bind(c, &req); err != nil {
			Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, req)
	})

	tests := []struct {
		name    string
		body    string
		status  int
		code    errors.Key
		message string
		fields  []string
	}{
		{"valid", `{"title":"Golf GTI","price":18000}`, http.StatusCreated, "", "", nil},
		{"rule violations", `{"title":"VW","price":-5}`, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body", []string{"title", "price"}},
		{"type mismatch", `{"title":"Golf GTI","price":"cheap"}`, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request body", []string{"price"}},
		{"malformed", `{"title":`, http.StatusBadRequest, "VALIDATION_FAILED", MessageMalformedBody, nil},
		{"empty", ``, http.StatusBadRequest, "VALIDATION_FAILED", MessageMalformedBody, nil},
		{"array body", `[1,2]`, http.StatusBadRequest, "VALIDATION_FAILED", "Expected object, received array", nil},
		{"string body", `"car"`, http.StatusBadRequest, "VALIDATION_FAILED", "Expected object, received string", nil},
		{"number body", `42`, http.StatusBadRequest, "VALIDATION_FAILED", "Expected object, received number", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/cars", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			engine.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, rr.Code, rr.Body.String())
			}
			if tt.code == "" {
				return
			}
			env := decodeEnvelope(t, rr)
			if env.ErrorCode != tt.code || env.Message != tt.message {
				t.Errorf("unexpected envelope: %+v", env)
			}
			if len(env.Errors) != len(tt.fields) {
				t.Fatalf("expected issues on %v, got %+v", tt.fields, env.Errors)
			}
			for i, f := range tt.fields {
				if env.Errors[i].Field != f {
					t.Errorf("issue %d: expected field %s, got %s", i, f, env.Errors[i].Field)
				}
			}
		})
	}
}
