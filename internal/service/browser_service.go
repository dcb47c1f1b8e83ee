package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"webbrowser/internal/config"
	"webbrowser/internal/extractor"
	"webbrowser/internal/fetcher"
	"webbrowser/internal/log"
	"webbrowser/internal/model"
)

var extractionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "webbrowser_extractions_total",
		Help: "Total number of page extractions by outcome",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(extractionsTotal)
}

// PageFetcher retrieves a page without judging its status.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Page, error)
}

// BrowserService fetches a page and extracts its content. It keeps no state
// between calls.
type BrowserService struct {
	fetcher PageFetcher
}

func NewBrowserService(f PageFetcher) *BrowserService {
	return &BrowserService{fetcher: f}
}

// NewFromConfig wires a BrowserService with the configured user agent and timeout.
func NewFromConfig(cfg *config.Config) *BrowserService {
	return NewBrowserService(fetcher.New(cfg.UserAgent, cfg.Timeout()))
}

// Extract fetches req.URL and extracts title, text, links and the requested
// selector fields. Every failure is returned as an *Error.
func (s *BrowserService) Extract(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error) {
	result, err := s.extract(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
		log.Logger.Info("extraction failed",
			zap.String("url", req.URL),
			zap.String("kind", outcome),
			zap.Error(err),
		)
	}
	extractionsTotal.WithLabelValues(outcome).Inc()

	return result, err
}

func (s *BrowserService) extract(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error) {
	page, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		var fetchErr *fetcher.Error
		if errors.As(err, &fetchErr) && fetchErr.Kind == fetcher.KindTimeout {
			return nil, timeoutError(err)
		}
		return nil, fetchFailedError(err)
	}

	if page.StatusCode >= http.StatusBadRequest {
		return nil, httpError(page.StatusCode)
	}

	extracted, err := extractor.Extract(page.Body, req.Selectors)
	if err != nil {
		var selErr *extractor.SelectorError
		if errors.As(err, &selErr) {
			return nil, invalidSelectorError(selErr.Field, selErr.Err)
		}
		return nil, unexpectedError(err)
	}

	return &model.ExtractionResult{
		URL:        req.URL,
		Title:      extracted.Title,
		Content:    extracted.Content,
		StatusCode: page.StatusCode,
	}, nil
}
