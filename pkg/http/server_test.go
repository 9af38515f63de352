package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/ok", func(c echo.Context) error { return SuccessResponse(c, map[string]string{"k": "v"}) })
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
	e.GET("/missing", func(c echo.Context) error { return AppErrorResponse(c, NotFoundError("no such symbol")) })
	e.GET("/opaque", func(c echo.Context) error { return AppErrorResponse(c, errors.New("db down")) })
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServerRoutes(t *testing.T) {
	s := NewServer(routes{})

	t.Run("success envelope", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/ok")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":200,"message":"OK","data":{"k":"v"}}`, rec.Body.String())
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("app error keeps its status", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "ERR_NOT_FOUND")
	})

	t.Run("unknown error is a 500", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/opaque")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})

	t.Run("panic is recovered", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/boom")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		rec := serve(s, http.MethodOptions, "/ok")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http_requests_total")
	})
}

func TestClientSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"agent":"` + r.Header.Get("User-Agent") + `","q":"` + r.URL.Query().Get("q") + `"}`))
	}))
	defer srv.Close()

	c := NewClient(WithHeader("User-Agent", "stockcast-test"))

	var out struct {
		Agent string `json:"agent"`
		Q     string `json:"q"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL + "/ok",
		QueryParams: map[string][]string{"q": {"x"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "stockcast-test", out.Agent)
	assert.Equal(t, "x", out.Q)

	err = c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL + "/missing"}, &out)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}
