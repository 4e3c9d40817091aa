package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quortexio/unimcp/pkg/apispec"
	"github.com/quortexio/unimcp/pkg/auth"
	"github.com/quortexio/unimcp/pkg/logger"
	"github.com/quortexio/unimcp/pkg/routes"
)

// Builder produces a capability Catalog from a merged OpenAPI document.
type Builder struct {
	rules   []routes.Rule
	invoker *invoker
}

// NewBuilder creates a Builder that classifies operations with the given
// rules and dispatches invocations against baseURL through the strategy.
func NewBuilder(baseURL string, rules []routes.Rule, strategy auth.Strategy, client *http.Client) *Builder {
	return &Builder{
		rules:   rules,
		invoker: newInvoker(baseURL, strategy, client),
	}
}

// Build validates the merged document and converts every operation into a
// capability. Validation failure is a startup error; there is nothing to
// serve from a document the runtime cannot parse.
func (b *Builder) Build(ctx context.Context, doc apispec.Document) (*Catalog, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding merged document: %w", err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	parsed, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("parsing merged document: %w", err)
	}
	if err := parsed.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validating merged document: %w", err)
	}

	catalog := &Catalog{}
	if parsed.Paths == nil {
		return catalog, nil
	}

	for _, path := range sortedKeys(parsed.Paths.Map()) {
		pathItem := parsed.Paths.Map()[path]
		ops := pathItem.Operations()
		for _, method := range sortedKeys(ops) {
			op := ops[method]
			kind := routes.Classify(b.rules, method, path)
			if kind == routes.KindDefault {
				// The runtime's own default mirrors the historical
				// behavior: anything unmatched becomes a tool.
				kind = routes.KindTool
			}

			switch kind {
			case routes.KindTool:
				tool, err := b.buildTool(path, method, pathItem, op)
				if err != nil {
					return nil, err
				}
				catalog.Tools = append(catalog.Tools, tool)
			case routes.KindResource:
				catalog.Resources = append(catalog.Resources, b.buildResource(path, op))
			case routes.KindResourceTemplate:
				catalog.ResourceTemplates = append(catalog.ResourceTemplates, b.buildTemplate(path, op))
			}
		}
	}

	logger.Infow("capability catalog built",
		"tools", len(catalog.Tools),
		"resources", len(catalog.Resources),
		"resource_templates", len(catalog.ResourceTemplates))

	return catalog, nil
}

func (b *Builder) buildTool(path, method string, pathItem *openapi3.PathItem, op *openapi3.Operation) (server.ServerTool, error) {
	schema := mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]any{},
	}
	spec := operation{
		method:  method,
		path:    path,
		hasBody: false,
	}

	params := append(append(openapi3.Parameters{}, pathItem.Parameters...), op.Parameters...)
	for _, ref := range params {
		p := ref.Value
		if p == nil || (p.In != openapi3.ParameterInPath && p.In != openapi3.ParameterInQuery) {
			continue
		}

		prop, err := schemaToMap(p.Schema)
		if err != nil {
			return server.ServerTool{}, fmt.Errorf("parameter %s of %s %s: %w", p.Name, method, path, err)
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		schema.Properties[p.Name] = prop

		if p.In == openapi3.ParameterInPath {
			spec.pathParams = append(spec.pathParams, p.Name)
			schema.Required = append(schema.Required, p.Name)
		} else {
			spec.queryParams = append(spec.queryParams, p.Name)
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
	}

	if body := jsonBodySchema(op); body != nil {
		spec.hasBody = true
		bodyMap, err := schemaToMap(body)
		if err != nil {
			return server.ServerTool{}, fmt.Errorf("request body of %s %s: %w", method, path, err)
		}
		if props, ok := bodyMap["properties"].(map[string]any); ok {
			for name, prop := range props {
				if _, exists := schema.Properties[name]; !exists {
					schema.Properties[name] = prop
				}
			}
		}
		if required, ok := bodyMap["required"].([]any); ok {
			for _, name := range required {
				if s, ok := name.(string); ok {
					schema.Required = append(schema.Required, s)
				}
			}
		}
	}

	return server.ServerTool{
		Tool: mcp.Tool{
			Name:        operationName(method, path, op),
			Description: describe(op),
			InputSchema: schema,
		},
		Handler: b.invoker.toolHandler(spec),
	}, nil
}

func (b *Builder) buildResource(path string, op *openapi3.Operation) server.ServerResource {
	return server.ServerResource{
		Resource: mcp.NewResource(
			resourceURIPrefix+path,
			operationName(http.MethodGet, path, op),
			mcp.WithResourceDescription(describe(op)),
			mcp.WithMIMEType("application/json"),
		),
		Handler: b.invoker.resourceHandler(path),
	}
}

func (b *Builder) buildTemplate(path string, op *openapi3.Operation) ServerResourceTemplate {
	return ServerResourceTemplate{
		ResourceTemplate: mcp.NewResourceTemplate(
			resourceURIPrefix+path,
			operationName(http.MethodGet, path, op),
			mcp.WithTemplateDescription(describe(op)),
			mcp.WithTemplateMIMEType("application/json"),
		),
		Handler: b.invoker.templateHandler(),
	}
}

func jsonBodySchema(op *openapi3.Operation) *openapi3.SchemaRef {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.Content.Get("application/json")
	if mt == nil {
		return nil
	}
	return mt.Schema
}

// schemaToMap renders a schema as a plain map for an MCP input schema. The
// top level is resolved; nested references stay as $ref pointers into the
// merged document's components.
func schemaToMap(ref *openapi3.SchemaRef) (map[string]any, error) {
	if ref == nil || ref.Value == nil {
		return map[string]any{"type": "string"}, nil
	}
	data, err := json.Marshal(ref.Value)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// operationName prefers the document's operationId and falls back to a slug
// derived from the method and path.
func operationName(method, path string, op *openapi3.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}

	slug := strings.ToLower(method) + path
	replacer := strings.NewReplacer("/", "_", "{", "", "}", "", "-", "_", ".", "_")
	slug = replacer.Replace(slug)
	return strings.Trim(slug, "_")
}

func describe(op *openapi3.Operation) string {
	if op.Description != "" {
		return op.Description
	}
	return op.Summary
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
