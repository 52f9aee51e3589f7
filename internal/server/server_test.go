package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nameparse/internal/config"
	"github.com/sells-group/nameparse/internal/model"
	"github.com/sells-group/nameparse/internal/nameparse"
	"github.com/sells-group/nameparse/internal/store"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:        8080,
		MaxBatch:    3,
		CORSOrigins: []string{"https://app.example.com"},
	}
}

func newTestServer(t *testing.T, st store.Store, cfg config.ServerConfig) (*Server, *nameparse.Parser) {
	t.Helper()
	p := nameparse.New(nameparse.WithCaseMode(nameparse.CaseProper))
	return New(p, st, cfg), p
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil, testConfig())
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestParseOne(t *testing.T) {
	s, _ := newTestServer(t, nil, testConfig())
	rec := do(t, s, http.MethodGet, "/v1/parse?name=dr.+ryan+m+mcdonald+jr.", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[nameparse.Result](t, rec)
	assert.True(t, got.Parsed)
	assert.Equal(t, 6, got.ParseType)
	assert.Equal(t, "dr.", got.Title)
	assert.Equal(t, "jr.", got.Suffix)
	assert.Equal(t, "Ryan", got.First)
	assert.Equal(t, "M", got.Middle)
	assert.Equal(t, "McDonald", got.Last)
}

func TestParseOne_NoLastName(t *testing.T) {
	s, _ := newTestServer(t, nil, testConfig())
	rec := do(t, s, http.MethodGet, "/v1/parse?name=Ryan+Michael&no_last_name=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[nameparse.Result](t, rec)
	assert.Equal(t, "Michael", got.Middle)
	assert.Empty(t, got.Last)
}

func TestParseOne_MissingName(t *testing.T) {
	s, _ := newTestServer(t, nil, testConfig())
	rec := do(t, s, http.MethodGet, "/v1/parse", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseMany(t *testing.T) {
	s, p := newTestServer(t, nil, testConfig())
	rec := do(t, s, http.MethodPost, "/v1/parse", `{"names":["Ryan Nagle","Ryan","R.M. Nagle"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[parseResponse](t, rec)
	require.Len(t, got.Results, 3)
	assert.Equal(t, "Nagle", got.Results[0].Last)
	assert.False(t, got.Results[1].Parsed)
	assert.Equal(t, 3, got.Results[2].ParseType)
	assert.Equal(t, nameparse.Stats{Seen: 3, Parsed: 2}, p.Stats())
}

func TestParseMany_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"names":`, http.StatusBadRequest},
		{"wrong type", `{"names":"Ryan"}`, http.StatusBadRequest},
		{"unknown field", `{"names":[],"extra":1}`, http.StatusBadRequest},
		{"missing names", `{}`, http.StatusBadRequest},
		{"over max batch", `{"names":["a","b","c","d"]}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, nil, testConfig())
			rec := do(t, s, http.MethodPost, "/v1/parse", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestParseMany_EmptyList(t *testing.T) {
	s, _ := newTestServer(t, nil, testConfig())
	rec := do(t, s, http.MethodPost, "/v1/parse", `{"names":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestProper(t *testing.T) {
	s, _ := newTestServer(t, nil, testConfig())
	rec := do(t, s, http.MethodGet, "/v1/proper?name=ryan+mcdonald", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"ryan mcdonald","proper":"Ryan McDonald"}`, rec.Body.String())
}

func TestStats(t *testing.T) {
	s, p := newTestServer(t, nil, testConfig())
	p.Parse("Ryan Nagle")
	p.Parse("Ryan")

	rec := do(t, s, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"seen":2,"parsed":1}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 2
	s, _ := newTestServer(t, nil, cfg)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/v1/stats", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/v1/stats", "").Code)

	rec := do(t, s, http.MethodGet, "/v1/stats", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Health is outside the limited group.
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, nil, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/v1/parse", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRuns_NoStore(t *testing.T) {
	s, _ := newTestServer(t, nil, testConfig())
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/v1/runs", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/v1/runs/abc", "").Code)
}

func TestRuns_WithStore(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))
	run, err := st.CreateRun(ctx, "names.csv")
	require.NoError(t, err)

	p := nameparse.New()
	require.NoError(t, st.SaveResults(ctx, []model.NameRecord{
		{RunID: run.ID, Row: 1, Result: p.Parse("Ryan Nagle")},
		{RunID: run.ID, Row: 2, Result: p.Parse("Ryan")},
	}))
	require.NoError(t, st.CompleteRun(ctx, run.ID, 2, 1))

	s, _ := newTestServer(t, st, testConfig())

	rec := do(t, s, http.MethodGet, "/v1/runs?status=complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]model.Run](t, rec)
	require.Len(t, list["runs"], 1)
	assert.Equal(t, run.ID, list["runs"][0].ID)

	rec = do(t, s, http.MethodGet, "/v1/runs/"+run.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[runResponse](t, rec)
	assert.Equal(t, model.RunStatusComplete, got.Run.Status)
	require.Len(t, got.Unparsed, 1)
	assert.Equal(t, "Ryan", got.Unparsed[0].Original)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/v1/runs/missing", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/v1/runs?limit=x", "").Code)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := testConfig()
	cfg.Port = port
	s, _ := newTestServer(t, nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
		if err != nil {
			return false
		}
		resp.Body.Close() //nolint:errcheck
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
