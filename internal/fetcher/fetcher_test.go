package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body, status and sends user agent", func(t *testing.T) {
		t.Parallel()

		agents := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agents <- r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><head><title>Test</title></head></html>"))
		}))
		defer server.Close()

		page, err := New("test-agent/1.0", time.Second).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, page.StatusCode)
		assert.Equal(t, "<html><head><title>Test</title></head></html>", page.Body)
		assert.Equal(t, "test-agent/1.0", <-agents)
	})

	t.Run("does not treat error statuses as failures", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte("<p>oops</p>"))
			}))

			page, err := New("ua", time.Second).Fetch(context.Background(), server.URL)
			server.Close()

			require.NoError(t, err)
			assert.Equal(t, status, page.StatusCode)
			assert.Equal(t, "<p>oops</p>", page.Body)
		}
	})

	t.Run("follows redirects and reports final response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/old" {
				http.Redirect(w, r, "/new", http.StatusMovedPermanently)
				return
			}
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("moved here"))
		}))
		defer server.Close()

		page, err := New("ua", time.Second).Fetch(context.Background(), server.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, page.StatusCode)
		assert.Equal(t, "moved here", page.Body)
	})

	t.Run("decodes declared charset", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("caf\xe9"))
		}))
		defer server.Close()

		page, err := New("ua", time.Second).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "café", page.Body)
	})

	t.Run("keeps undeclared UTF-8 beyond the sniffed prefix", func(t *testing.T) {
		t.Parallel()

		body := "<html><head>" + strings.Repeat("a", 1100) + "</head><body>café</body></html>"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(body))
		}))
		defer server.Close()

		page, err := New("ua", time.Second).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, body, page.Body)
	})

	t.Run("decodes meta charset", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<meta charset="iso-8859-1"><p>caf` + "\xe9</p>"))
		}))
		defer server.Close()

		page, err := New("ua", time.Second).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Contains(t, page.Body, "café")
	})

	t.Run("classifies timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()

		_, err := New("ua", 50*time.Millisecond).Fetch(context.Background(), server.URL)
		require.Error(t, err)

		var fetchErr *Error
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, KindTimeout, fetchErr.Kind)
	})

	t.Run("classifies connection refused as transport", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := New("ua", time.Second).Fetch(context.Background(), url)
		require.Error(t, err)

		var fetchErr *Error
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, KindTransport, fetchErr.Kind)
		assert.NotEmpty(t, fetchErr.Error())
	})

	t.Run("classifies malformed URL as transport", func(t *testing.T) {
		t.Parallel()

		_, err := New("ua", time.Second).Fetch(context.Background(), "://missing-scheme")
		require.Error(t, err)

		var fetchErr *Error
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, KindTransport, fetchErr.Kind)
	})

	t.Run("unsupported scheme is transport", func(t *testing.T) {
		t.Parallel()

		_, err := New("ua", time.Second).Fetch(context.Background(), "ftp://example.com/file")
		require.Error(t, err)

		var fetchErr *Error
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, KindTransport, fetchErr.Kind)
	})
}

func TestWithClient_LeavesCallerClientUnchanged(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	f := New("ua", time.Second, WithClient(shared))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, time.Second, f.client.Timeout)
	assert.NotSame(t, shared, f.client)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "transport", KindTransport.String())
}
