package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkguid"
)

type countResponse struct {
	Count int `json:"count"`
}

func (countResponse) StatusCode() int { return http.StatusCreated }

func (countResponse) Message() string { return "counted" }

func (c countResponse) Meta() map[string]any { return map[string]any{"total": c.Count} }

func newTestRouter() *Router {
	return NewRouter(pkguid.StringFunc(func() string { return "cid-test" }))
}

func TestRouterSuccessEnvelope(t *testing.T) {
	r := newTestRouter()
	r.GET("/count/:n", func(ctx context.Context, _ *http.Request) (any, error) {
		if GetParam(ctx, "n") != "3" {
			return nil, pkgerror.NewInvalidInput(errors.New("bad n"))
		}
		return countResponse{Count: 3}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/count/3", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := rec.Header().Get(HeaderCorrelationID); got != "cid-test" {
		t.Fatalf("expected correlation id header, got %q", got)
	}

	var body struct {
		Message string         `json:"message"`
		Data    countResponse  `json:"data"`
		Meta    map[string]any `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "counted" || body.Data.Count != 3 || body.Meta["total"] != float64(3) {
		t.Fatalf("unexpected envelope: %+v", body)
	}
}

func TestRouterErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		code       int
		retryAfter string
	}{
		{name: "not found", err: pkgerror.NewBusiness("record not found", pkgerror.CodeNotFound), code: http.StatusNotFound},
		{name: "busy", err: pkgerror.NewBusy(errors.New("lock")), code: http.StatusServiceUnavailable, retryAfter: "1"},
		{name: "plain error", err: errors.New("disk gone"), code: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter()
			r.DELETE("/things/:id", func(context.Context, *http.Request) (any, error) {
				return nil, tc.err
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/things/1", nil))

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if got := rec.Header().Get("Retry-After"); got != tc.retryAfter {
				t.Fatalf("expected Retry-After %q, got %q", tc.retryAfter, got)
			}
		})
	}
}

func TestRouterRecoversPanic(t *testing.T) {
	r := newTestRouter()
	r.GET("/panic", func(context.Context, *http.Request) (any, error) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestInternalFrames(t *testing.T) {
	stack := "goroutine 1 [running]:\n" +
		"main.handler()\n" +
		"\t/src/app/internal/record/inbound/http_endpoint.go:42 +0x1d\n" +
		"net/http.HandlerFunc.ServeHTTP()\n" +
		"\t/usr/local/go/src/net/http/server.go:2166 +0x29\n"

	frames := internalFrames(stack)
	if len(frames) != 1 || frames[0] != "internal/record/inbound/http_endpoint.go:42" {
		t.Fatalf("unexpected frames: %v", frames)
	}
}
