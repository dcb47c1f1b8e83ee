// Package fetcher performs single outbound GET requests for page content.
// It does not interpret status codes; callers decide what a failure is.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"webbrowser/internal/log"
)

type Kind int

const (
	// KindTransport covers DNS, connection, TLS and protocol failures.
	KindTransport Kind = iota
	// KindTimeout means the request bound elapsed before a complete response.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	default:
		return "transport"
	}
}

type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Page is the upstream response, whatever its status.
type Page struct {
	Body        string
	StatusCode  int
	ContentType string
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

type Option func(*Fetcher)

// WithClient uses a copy of c for requests; c itself is left untouched.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		clone := *c
		f.client = &clone
	}
}

// New returns a Fetcher sending userAgent and bounding each request by timeout.
func New(userAgent string, timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent: userAgent,
		timeout:   timeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	f.client.Timeout = timeout

	return f
}

// Fetch issues one GET for targetURL. Redirects are followed and the final
// response is reported. The response body is always closed before returning.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: targetURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		log.Logger.Warn("failed to fetch URL",
			zap.String("url", targetURL),
			zap.Error(err),
		)
		return nil, f.classify(reqCtx, targetURL, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Logger.Warn("failed to read response body",
			zap.String("url", targetURL),
			zap.Error(err),
		)
		return nil, f.classify(reqCtx, targetURL, fmt.Errorf("failed to read response body: %w", err))
	}

	contentType := resp.Header.Get("Content-Type")
	page := &Page{
		Body:        decodeBody(raw, contentType),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
	}

	log.Logger.Info("fetched URL",
		zap.String("url", targetURL),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("content_length", len(raw)),
	)

	return page, nil
}

func (f *Fetcher) classify(ctx context.Context, targetURL string, err error) *Error {
	kind := KindTransport

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}

	return &Error{Kind: kind, URL: targetURL, Err: err}
}

// sniffLen is how much of the body charset.DetermineEncoding inspects.
const sniffLen = 1024

// decodeBody converts the body to UTF-8 using the declared or sniffed charset.
// Without a BOM, a header charset or a meta declaration, valid UTF-8 is kept
// as is instead of being read as windows-1252.
func decodeBody(raw []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(raw, contentType)
	if name == "utf-8" {
		return string(raw)
	}
	if !certain && !declaresCharset(raw) && utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func declaresCharset(raw []byte) bool {
	head := raw[:min(len(raw), sniffLen)]
	return bytes.Contains(bytes.ToLower(head), []byte("charset"))
}
