// Package runtime turns the merged OpenAPI document into MCP capabilities.
//
// Each HTTP operation is classified by the routes policy and becomes either a
// tool (mutating methods), a resource (plain GET), or a resource template
// (GET with path parameters). Handlers perform the HTTP call against the
// wrapped API, passing every outbound request through the configured
// authentication strategy.
package runtime

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerResourceTemplate pairs a resource template with its read handler,
// mirroring the SDK's ServerTool/ServerResource pairing which it lacks for
// templates.
type ServerResourceTemplate struct {
	ResourceTemplate mcp.ResourceTemplate
	Handler          server.ResourceTemplateHandlerFunc
}

// Catalog is the full capability set produced from one merged document.
type Catalog struct {
	Tools             []server.ServerTool
	Resources         []server.ServerResource
	ResourceTemplates []ServerResourceTemplate
}

// resourceURIPrefix namespaces resource URIs derived from API paths.
// A path /users/{id} becomes the URI template api://quortex/users/{id}.
const resourceURIPrefix = "api://quortex"
