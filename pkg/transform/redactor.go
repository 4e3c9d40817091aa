// Package transform post-processes the capability catalog produced by the
// runtime, rewriting tool signatures that the gateway fills in from trusted
// configuration instead of the caller.
package transform

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quortexio/unimcp/pkg/logger"
)

// OrgParameter is the input-schema property hidden and auto-filled by the
// redactor.
const OrgParameter = "org"

// OrgRedactor hides the "org" parameter from every tool that declares it and
// injects a single configured default into each invocation at call time,
// transparently to the caller. Tools without the parameter pass through
// untouched. The default is global; there is no per-tool override.
type OrgRedactor struct {
	defaultOrg string
}

// NewOrgRedactor creates a redactor injecting the given organization value.
func NewOrgRedactor(defaultOrg string) *OrgRedactor {
	return &OrgRedactor{defaultOrg: defaultOrg}
}

// Apply returns the tool set with every matching tool rewritten.
func (r *OrgRedactor) Apply(tools []server.ServerTool) []server.ServerTool {
	out := make([]server.ServerTool, 0, len(tools))
	redacted := 0
	for _, tool := range tools {
		rewritten, changed := r.redact(tool)
		if changed {
			redacted++
		}
		out = append(out, rewritten)
	}
	if redacted > 0 {
		logger.Infof("Applied global %q transformation to %d tools", OrgParameter, redacted)
	}
	return out
}

func (r *OrgRedactor) redact(tool server.ServerTool) (server.ServerTool, bool) {
	props := tool.Tool.InputSchema.Properties
	if _, declared := props[OrgParameter]; !declared {
		return tool, false
	}

	visible := make(map[string]any, len(props)-1)
	for name, prop := range props {
		if name != OrgParameter {
			visible[name] = prop
		}
	}

	var required []string
	for _, name := range tool.Tool.InputSchema.Required {
		if name != OrgParameter {
			required = append(required, name)
		}
	}

	tool.Tool.InputSchema.Properties = visible
	tool.Tool.InputSchema.Required = required

	inner := tool.Handler
	defaultOrg := r.defaultOrg
	tool.Handler = func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)
		if args == nil {
			args = map[string]any{}
		}
		args[OrgParameter] = defaultOrg
		req.Params.Arguments = args
		return inner(ctx, req)
	}

	return tool, true
}
