package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/quizvote/internal/domain/question"
	"github.com/geocoder89/quizvote/internal/domain/vote"
	"github.com/geocoder89/quizvote/internal/http/handlers"
	"github.com/geocoder89/quizvote/internal/validation"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Details struct {
		JSON   string                  `json:"json"`
		Field  string                  `json:"field"`
		Fields []validation.FieldError `json:"fields"`
	} `json:"details"`
}

func bindRouter(out func() interface{}) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/bind", func(ctx *gin.Context) {
		req := out()
		if !handlers.BindJSON(ctx, req) {
			return
		}
		ctx.JSON(http.StatusOK, req)
	})
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	r := bindRouter(func() interface{} { return &vote.Answers{} })

	w := postJSON(r, "/bind", `{"questionOne":"A","questionThree":7}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected status field 400, got %d", resp.Status)
	}
	if resp.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Details.JSON)
	}
	if resp.Details.Field != "questionThree" {
		t.Fatalf("expected detail field questionThree, got %q", resp.Details.Field)
	}
	if len(resp.Details.Fields) != 1 || resp.Details.Fields[0].Rule != "type" {
		t.Fatalf("unexpected fields: %+v", resp.Details.Fields)
	}
}

func TestBindJSON_SyntaxError(t *testing.T) {
	r := bindRouter(func() interface{} { return &question.CreateTwoOptionRequest{} })

	w := postJSON(r, "/bind", `{"question": }`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("expected a json detail, body=%s", w.Body.String())
	}
}

func TestBindJSON_EmptyBodyDecodesAsEmptyObject(t *testing.T) {
	r := bindRouter(func() interface{} { return &vote.Answers{} })

	w := postJSON(r, "/bind", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "{}" {
		t.Fatalf("expected empty answers, got %s", w.Body.String())
	}
}

func TestBindJSON_TruncatedBody(t *testing.T) {
	r := bindRouter(func() interface{} { return &vote.Answers{} })

	w := postJSON(r, "/bind", `{"questionOne":"A"`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Details.JSON != "truncated_json" {
		t.Fatalf("expected truncated_json, body=%s", w.Body.String())
	}
}
