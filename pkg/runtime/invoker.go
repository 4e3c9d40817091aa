package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quortexio/unimcp/pkg/auth"
	"github.com/quortexio/unimcp/pkg/logger"
)

// operation captures what the invoker needs to know to dispatch one HTTP
// operation from the merged document.
type operation struct {
	method      string
	path        string // with {param} placeholders
	pathParams  []string
	queryParams []string
	hasBody     bool
}

// invoker performs outbound HTTP calls against the wrapped API. Every
// request passes through the authentication strategy before dispatch; a
// strategy failure fails the call without sending anything.
type invoker struct {
	baseURL  string
	strategy auth.Strategy
	client   *http.Client
}

func newInvoker(baseURL string, strategy auth.Strategy, client *http.Client) *invoker {
	if client == nil {
		client = http.DefaultClient
	}
	return &invoker{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		strategy: strategy,
		client:   client,
	}
}

// toolHandler dispatches a tool invocation. Remote API errors surface as
// tool error results; authentication and transport failures are protocol
// errors.
func (inv *invoker) toolHandler(op operation) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)

		resp, err := inv.call(ctx, op, args)
		if err != nil {
			return nil, err
		}
		if resp.status >= 400 {
			return mcp.NewToolResultError(fmt.Sprintf("API returned %d: %s", resp.status, resp.body)), nil
		}
		return mcp.NewToolResultText(resp.body), nil
	}
}

// resourceHandler reads a fixed GET endpoint.
func (inv *invoker) resourceHandler(path string) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return inv.read(ctx, req.Params.URI, path)
	}
}

// templateHandler reads a parameterized GET endpoint. The concrete path is
// recovered from the requested URI, which the client built by filling the
// template's placeholders.
func (inv *invoker) templateHandler() server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		path := strings.TrimPrefix(req.Params.URI, resourceURIPrefix)
		if path == req.Params.URI {
			return nil, fmt.Errorf("unexpected resource URI %q", req.Params.URI)
		}
		return inv.read(ctx, req.Params.URI, path)
	}
}

func (inv *invoker) read(ctx context.Context, uri, path string) ([]mcp.ResourceContents, error) {
	resp, err := inv.call(ctx, operation{method: http.MethodGet, path: path}, nil)
	if err != nil {
		return nil, err
	}
	if resp.status >= 400 {
		return nil, fmt.Errorf("API returned %d reading %s", resp.status, path)
	}

	mimeType := resp.contentType
	if mimeType == "" {
		mimeType = "application/json"
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeType,
			Text:     resp.body,
		},
	}, nil
}

type response struct {
	status      int
	body        string
	contentType string
}

func (inv *invoker) call(ctx context.Context, op operation, args map[string]any) (*response, error) {
	target, bodyArgs, err := inv.buildURL(op, args)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if op.hasBody && len(bodyArgs) > 0 {
		payload, err := json.Marshal(bodyArgs)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, op.method, target, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if err := inv.strategy.Authenticate(ctx, req); err != nil {
		return nil, err
	}

	logger.Debugw("outbound API call", "method", op.method, "url", target)

	resp, err := inv.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &response{
		status:      resp.StatusCode,
		body:        string(data),
		contentType: resp.Header.Get("Content-Type"),
	}, nil
}

// buildURL substitutes path parameters, collects query parameters, and
// returns the remaining arguments for use as the request body.
func (inv *invoker) buildURL(op operation, args map[string]any) (string, map[string]any, error) {
	path := op.path
	consumed := make(map[string]bool, len(op.pathParams)+len(op.queryParams))

	for _, name := range op.pathParams {
		value, ok := args[name]
		if !ok {
			return "", nil, fmt.Errorf("missing required path parameter %q", name)
		}
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(fmt.Sprint(value)))
		consumed[name] = true
	}

	query := url.Values{}
	for _, name := range op.queryParams {
		if value, ok := args[name]; ok {
			query.Set(name, fmt.Sprint(value))
			consumed[name] = true
		}
	}

	target := inv.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	rest := make(map[string]any)
	for name, value := range args {
		if !consumed[name] {
			rest[name] = value
		}
	}
	return target, rest, nil
}
