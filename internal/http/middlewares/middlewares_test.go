package middlewares_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/quizvote/internal/actorctx"
	"github.com/geocoder89/quizvote/internal/auth"
	"github.com/geocoder89/quizvote/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func protectedRouter(verifier middlewares.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/private", middlewares.RequireAuth(verifier), func(ctx *gin.Context) {
		fromGin, _ := middlewares.UserIDFromContext(ctx)
		fromCtx, _ := actorctx.UserIDFrom(ctx.Request.Context())
		ctx.JSON(http.StatusOK, gin.H{"gin": fromGin, "ctx": fromCtx})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	m := auth.NewManager("test-secret")
	good, err := m.GenerateAccessToken("user-42")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "missing", header: "", wantStatus: http.StatusForbidden, wantMsg: "missing token"},
		{name: "garbage", header: "abc", wantStatus: http.StatusUnauthorized, wantMsg: "invalid token"},
		{name: "bearer_scheme", header: "Bearer " + good, wantStatus: http.StatusUnauthorized, wantMsg: "invalid token"},
		{name: "raw_token", header: good, wantStatus: http.StatusOK},
	}

	r := protectedRouter(m)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if tt.wantStatus != http.StatusOK {
				if body["message"] != tt.wantMsg {
					t.Fatalf("message: got %v want %q", body["message"], tt.wantMsg)
				}
				if int(body["status"].(float64)) != tt.wantStatus {
					t.Fatalf("status field: got %v", body["status"])
				}
				return
			}

			if body["gin"] != "user-42" || body["ctx"] != "user-42" {
				t.Fatalf("user id not propagated: %v", body)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantStatus int
		wantOrigin string
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "http://quiz.local", method: http.MethodGet, wantStatus: http.StatusOK, wantOrigin: "*"},
		{name: "listed", allowed: []string{"http://quiz.local"}, origin: "http://quiz.local", method: http.MethodGet, wantStatus: http.StatusOK, wantOrigin: "http://quiz.local"},
		{name: "unlisted", allowed: []string{"http://quiz.local"}, origin: "http://evil.local", method: http.MethodGet, wantStatus: http.StatusOK, wantOrigin: ""},
		{name: "preflight", allowed: []string{"*"}, origin: "http://quiz.local", method: http.MethodOptions, wantStatus: http.StatusNoContent, wantOrigin: "*"},
		{name: "listed_beats_wildcard", allowed: []string{"*", "http://quiz.local/"}, origin: "http://quiz.local", method: http.MethodGet, wantStatus: http.StatusOK, wantOrigin: "http://quiz.local"},
		{name: "unlisted_preflight", allowed: []string{"http://quiz.local"}, origin: "http://evil.local", method: http.MethodOptions, wantStatus: http.StatusForbidden, wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.CORSMiddleware(tt.allowed))
			r.GET("/x", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("allow-origin: got %q want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestRequestID_EchoesClientHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/x", func(ctx *gin.Context) {
		id, _ := ctx.Get(middlewares.CtxRequestID)
		ctx.String(http.StatusOK, "%v", id)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "req-1" || w.Header().Get("X-Request-Id") != "req-1" {
		t.Fatalf("request id not echoed: body=%q header=%q", w.Body.String(), w.Header().Get("X-Request-Id"))
	}
}

func TestMaxBodyBytes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(8))
	r.POST("/x", func(ctx *gin.Context) {
		var body map[string]interface{}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.Status(http.StatusBadRequest)
			return
		}
		ctx.Status(http.StatusOK)
	})

	tests := []struct {
		name       string
		body       string
		hideLength bool
		want       int
	}{
		{name: "small", body: `{}`, want: http.StatusOK},
		{name: "announced_too_large", body: `{"questionOne":"A"}`, want: http.StatusRequestEntityTooLarge},
		{name: "unannounced_too_large", body: `{"questionOne":"A"}`, hideLength: true, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			if tt.hideLength {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("got %d want %d", w.Code, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middlewares.SecurityHeaders())
	r.GET("/x", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	r.GET("/cached", func(ctx *gin.Context) {
		ctx.Header("Cache-Control", "no-cache")
		ctx.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("missing defaults: %v", w.Header())
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("expected HSTS behind https proxy")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cached", nil))
	if w.Header().Get("Cache-Control") != "no-cache" {
		t.Fatalf("handler must be able to override Cache-Control, got %q", w.Header().Get("Cache-Control"))
	}
}
