package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"webbrowser/internal/capability"
	"webbrowser/internal/model"
	"webbrowser/internal/service"
	"webbrowser/pkg/response"
)

const (
	ResourcePrefix = "/resource/"

	maxRequestBodyBytes = 1 << 20
)

// Extractor runs the fetch-and-extract operation.
type Extractor interface {
	Extract(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error)
}

type Handler struct {
	extractor Extractor
	catalog   *capability.Catalog
}

func New(extractor Extractor, catalog *capability.Catalog) *Handler {
	return &Handler{
		extractor: extractor,
		catalog:   catalog,
	}
}

// parseRequestBody distinguishes an absent url from an empty one.
type parseRequestBody struct {
	URL       *string           `json:"url"`
	Selectors map[string]string `json:"selectors"`
}

func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"})
}

// ParseWebpage handles POST /parse.
func (h *Handler) ParseWebpage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body parseRequestBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&body); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if body.URL == nil {
		response.Error(w, http.StatusUnprocessableEntity, "field required: url")
		return
	}

	result, err := h.extractor.Extract(r.Context(), model.ExtractionRequest{
		URL:       *body.URL,
		Selectors: body.Selectors,
	})
	if err != nil {
		statusCode := http.StatusBadRequest
		detail := err.Error()
		if service.KindOf(err) == service.KindUnexpected {
			statusCode = http.StatusInternalServerError
			detail = fmt.Sprintf("failed to parse webpage: %v", err)
		}
		response.Error(w, statusCode, detail)
		return
	}

	response.Success(w, result)
}

// ListResources handles GET /resources.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.catalog.Resources())
}

// ReadResource handles GET /resource/{uri}. The uri is taken verbatim from
// the rest of the path, slashes included.
func (h *Handler) ReadResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	uri := strings.TrimPrefix(r.URL.Path, ResourcePrefix)
	caps, ok := h.catalog.Read(uri)
	if !ok {
		response.Error(w, http.StatusNotFound, fmt.Sprintf("Resource not found: %s", uri))
		return
	}

	response.Success(w, caps)
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
