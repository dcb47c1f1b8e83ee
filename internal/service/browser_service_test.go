package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"webbrowser/internal/config"
	"webbrowser/internal/fetcher"
	"webbrowser/internal/log"
	"webbrowser/internal/model"
)

const testHTML = `<html><head><title>Test Page</title></head><body><a href="https://test.com">Test Link</a><div class="content">Test Content</div></body></html>`

type stubFetcher struct {
	page  *fetcher.Page
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (*fetcher.Page, error) {
	s.calls++
	return s.page, s.err
}

func TestExtract(t *testing.T) {
	log.Logger, _ = zap.NewDevelopment()
	defer log.Logger.Sync()

	tests := []struct {
		name           string
		serverResponse func(w http.ResponseWriter, r *http.Request)
		selectors      map[string]string
		expectKind     Kind
		expectError    bool
		check          func(t *testing.T, err error)
	}{
		{
			name: "Successful extraction",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, testHTML)
			},
			selectors: map[string]string{"content": ".content"},
		},
		{
			name: "404 response",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, testHTML)
			},
			expectError: true,
			expectKind:  KindHTTPError,
			check: func(t *testing.T, err error) {
				var svcErr *Error
				require.True(t, errors.As(err, &svcErr))
				assert.Equal(t, http.StatusNotFound, svcErr.Status)
				assert.Equal(t, "HTTP 404: Failed to fetch webpage", svcErr.Error())
			},
		},
		{
			name: "500 response",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectError: true,
			expectKind:  KindHTTPError,
		},
		{
			name: "Invalid selector",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, testHTML)
			},
			selectors:   map[string]string{"broken": "div[["},
			expectError: true,
			expectKind:  KindInvalidSelector,
			check: func(t *testing.T, err error) {
				var svcErr *Error
				require.True(t, errors.As(err, &svcErr))
				assert.Equal(t, "broken", svcErr.Field)
				assert.Contains(t, svcErr.Error(), "broken")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResponse))
			defer server.Close()

			svc := NewBrowserService(fetcher.New("test-agent", time.Second))
			result, err := svc.Extract(context.Background(), model.ExtractionRequest{
				URL:       server.URL,
				Selectors: tt.selectors,
			})

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, result)
				assert.Equal(t, tt.expectKind, KindOf(err))
				if tt.check != nil {
					tt.check(t, err)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, server.URL, result.URL)
			assert.Equal(t, http.StatusOK, result.StatusCode)
			require.NotNil(t, result.Title)
			assert.Equal(t, "Test Page", *result.Title)
			assert.Equal(t, []model.Link{{Text: "Test Link", Href: "https://test.com"}}, result.Content.Links)
			assert.Equal(t, []string{"Test Content"}, result.Content.Fields["content"])
		})
	}
}

func TestExtract_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	svc := NewBrowserService(fetcher.New("ua", 50*time.Millisecond))
	_, err := svc.Extract(context.Background(), model.ExtractionRequest{URL: server.URL})

	require.Error(t, err)
	assert.Equal(t, KindRequestTimeout, KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestExtract_FetchFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	svc := NewBrowserService(fetcher.New("ua", time.Second))
	_, err := svc.Extract(context.Background(), model.ExtractionRequest{URL: url})

	require.Error(t, err)
	assert.Equal(t, KindFetchFailed, KindOf(err))
	assert.NotEmpty(t, err.Error())
}

func TestExtract_HTTPErrorSkipsParsing(t *testing.T) {
	stub := &stubFetcher{page: &fetcher.Page{Body: testHTML, StatusCode: http.StatusForbidden}}

	// An invalid selector would fail extraction; the status check must win.
	_, err := NewBrowserService(stub).Extract(context.Background(), model.ExtractionRequest{
		URL:       "https://example.com",
		Selectors: map[string]string{"bad": "[["},
	})

	require.Error(t, err)
	assert.Equal(t, KindHTTPError, KindOf(err))
	assert.Equal(t, 1, stub.calls)
}

func TestExtract_RedirectStatusIsSuccess(t *testing.T) {
	stub := &stubFetcher{page: &fetcher.Page{Body: "<title>x</title>", StatusCode: http.StatusNotModified}}

	result, err := NewBrowserService(stub).Extract(context.Background(), model.ExtractionRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotModified, result.StatusCode)
}

func TestExtract_ConcurrentRequestsAreIndependent(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testHTML)
	}))
	defer fast.Close()

	svc := NewBrowserService(fetcher.New("ua", 300*time.Millisecond))

	var (
		wg                sync.WaitGroup
		slowErr, fastErr  error
		fastResult        *model.ExtractionResult
		fastDone, slowEnd time.Time
	)
	start := time.Now()
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, slowErr = svc.Extract(context.Background(), model.ExtractionRequest{URL: slow.URL})
		slowEnd = time.Now()
	}()
	go func() {
		defer wg.Done()
		fastResult, fastErr = svc.Extract(context.Background(), model.ExtractionRequest{URL: fast.URL})
		fastDone = time.Now()
	}()
	wg.Wait()

	require.NoError(t, fastErr)
	require.NotNil(t, fastResult)
	assert.Equal(t, "Test Page", *fastResult.Title)
	assert.Equal(t, KindRequestTimeout, KindOf(slowErr))
	assert.Less(t, fastDone.Sub(start), slowEnd.Sub(start))
}

func TestNewFromConfig(t *testing.T) {
	agents := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		fmt.Fprint(w, "<p>hi</p>")
	}))
	defer server.Close()

	cfg := &config.Config{UserAgent: "configured-agent", RequestTimeout: 5}
	result, err := NewFromConfig(cfg).Extract(context.Background(), model.ExtractionRequest{URL: server.URL})
	require.NoError(t, err)
	assert.Nil(t, result.Title)
	assert.Equal(t, "hi", result.Content.Text)
	assert.Equal(t, "configured-agent", <-agents)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
	assert.Equal(t, KindFetchFailed, KindOf(fmt.Errorf("wrapped: %w", fetchFailedError(errors.New("x")))))
	assert.Equal(t, "http_error", KindHTTPError.String())
}
