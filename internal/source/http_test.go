package source

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/nameparse/internal/resilience"
)

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func TestHTTPFetcher_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nameparse/1.0", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, "name\nRyan Nagle\n")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	rc, err := f.Download(context.Background(), srv.URL+"/names.csv")
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "name\nRyan Nagle\n", string(data))
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Retry: fastRetry(), Limiter: rate.NewLimiter(rate.Inf, 1)})
	rc, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	rc.Close() //nolint:errcheck
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_RateLimitedThenExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Retry: fastRetry(), Limiter: rate.NewLimiter(rate.Inf, 1)})
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 429")
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Retry: fastRetry()})
	_, err := f.Download(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_DownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello")
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out.csv")
	n, err := NewHTTPFetcher(HTTPOptions{}).DownloadToFile(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestHTTPFetcher_DownloadToFile_CreateFileError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello")
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(HTTPOptions{}).DownloadToFile(context.Background(), srv.URL, filepath.Join(t.TempDir(), "no", "dir", "f"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create file")
}
