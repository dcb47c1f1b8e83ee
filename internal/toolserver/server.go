// Package toolserver exposes page extraction as the browse_webpage tool over
// the Model Context Protocol. Every failure, including unknown tool names, is
// answered with an "Error: ..." text item instead of a protocol error.
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"webbrowser/internal/capability"
	"webbrowser/internal/config"
	"webbrowser/internal/log"
	"webbrowser/internal/model"
)

const (
	ToolName        = "browse_webpage"
	toolDescription = "Extract content from a webpage with optional CSS selectors for specific elements"

	methodCallTool = "tools/call"
)

var inputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"url": map[string]any{
			"type":        "string",
			"description": "The URL of the webpage to browse",
		},
		"selectors": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
			"description":          "Optional CSS selectors to extract specific content",
		},
	},
	"required": []string{"url"},
}

// Extractor runs the fetch-and-extract operation.
type Extractor interface {
	Extract(ctx context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error)
}

type Server struct {
	extractor Extractor
	catalog   *capability.Catalog
	server    *mcp.Server
}

type browseArguments struct {
	URL       *string           `json:"url"`
	Selectors map[string]string `json:"selectors"`
}

func New(cfg *config.Config, extractor Extractor, catalog *capability.Catalog) *Server {
	s := &Server{
		extractor: extractor,
		catalog:   catalog,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    cfg.AppName,
		Version: cfg.AppVersion,
	}, nil)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolName,
		Description: toolDescription,
		Annotations: &mcp.ToolAnnotations{Title: "Browse Webpage"},
		InputSchema: inputSchema,
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.CallTool(ctx, req.Params.Name, req.Params.Arguments), nil
	})

	for _, res := range catalog.Resources() {
		s.server.AddResource(&mcp.Resource{
			URI:         res.URI,
			Name:        res.Name,
			MIMEType:    res.MimeType,
			Description: res.Description,
		}, s.readResource)
	}

	s.server.AddReceivingMiddleware(s.unknownToolMiddleware)

	return s
}

// Run serves the protocol on stdin/stdout until the peer disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	log.Logger.Info("tool server listening on stdio", zap.String("tool", ToolName))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// CallTool dispatches a tool call by name. It never fails: errors and
// panics come back as a single "Error: ..." text item.
func (s *Server) CallTool(ctx context.Context, name string, arguments json.RawMessage) (result *mcp.CallToolResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Logger.Error("panic in tool call", zap.String("tool", name), zap.Any("error", r))
			result = errorResult(fmt.Sprintf("%v", r))
		}
	}()

	if name != ToolName {
		return errorResult(fmt.Sprintf("Unknown tool %s", name))
	}

	args, err := parseArguments(arguments)
	if err != nil {
		return errorResult(err.Error())
	}

	extracted, err := s.extractor.Extract(ctx, model.ExtractionRequest{
		URL:       *args.URL,
		Selectors: args.Selectors,
	})
	if err != nil {
		return errorResult(err.Error())
	}

	text, err := renderResult(extracted)
	if err != nil {
		return errorResult(err.Error())
	}
	return textResult(text)
}

func parseArguments(raw json.RawMessage) (*browseArguments, error) {
	var args browseArguments
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}
	if args.URL == nil {
		return nil, errors.New("missing required argument: url")
	}
	return &args, nil
}

// renderResult flattens title, text, links and selector fields into one JSON
// object. Selector fields win over the defaults on key collision.
func renderResult(result *model.ExtractionResult) (string, error) {
	out := map[string]any{"title": result.Title}
	for key, value := range result.Content.Map() {
		out[key] = value
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

// unknownToolMiddleware answers calls to unregistered tools before the SDK
// can reject them with a protocol error.
func (s *Server) unknownToolMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method == methodCallTool {
			if call, ok := req.(*mcp.CallToolRequest); ok && call.Params != nil && call.Params.Name != ToolName {
				return s.CallTool(ctx, call.Params.Name, call.Params.Arguments), nil
			}
		}
		return next(ctx, method, req)
	}
}

func (s *Server) readResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	caps, ok := s.catalog.Read(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.Marshal(caps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode capabilities: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: capability.MimeType,
			Text:     string(data),
		}},
	}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return textResult("Error: " + message)
}
