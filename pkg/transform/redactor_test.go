package transform

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolWithSchema(name string, props map[string]any, required []string, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool: mcp.Tool{
			Name: name,
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: props,
				Required:   required,
			},
		},
		Handler: handler,
	}
}

func TestOrgRedactorHidesParameter(t *testing.T) {
	t.Parallel()

	tools := NewOrgRedactor("test-org-uuid").Apply([]server.ServerTool{
		toolWithSchema("ingest_inputs_create",
			map[string]any{
				"org":  map[string]any{"type": "string"},
				"name": map[string]any{"type": "string"},
			},
			[]string{"org", "name"},
			nil,
		),
	})

	require.Len(t, tools, 1)
	schema := tools[0].Tool.InputSchema
	assert.NotContains(t, schema.Properties, "org")
	assert.Contains(t, schema.Properties, "name")
	assert.Equal(t, []string{"name"}, schema.Required)
}

func TestOrgRedactorInjectsDefault(t *testing.T) {
	t.Parallel()

	var gotArgs map[string]any
	inner := func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		gotArgs = req.Params.Arguments.(map[string]any)
		return mcp.NewToolResultText("ok"), nil
	}

	tools := NewOrgRedactor("test-org-uuid").Apply([]server.ServerTool{
		toolWithSchema("create_input",
			map[string]any{
				"org":  map[string]any{"type": "string"},
				"name": map[string]any{"type": "string"},
			},
			[]string{"org"},
			inner,
		),
	})

	// An invocation omitting org entirely still succeeds with the default.
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"name": "stream-1"}

	result, err := tools[0].Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "test-org-uuid", gotArgs["org"])
	assert.Equal(t, "stream-1", gotArgs["name"])
}

func TestOrgRedactorOverridesCallerValue(t *testing.T) {
	t.Parallel()

	var gotArgs map[string]any
	inner := func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		gotArgs = req.Params.Arguments.(map[string]any)
		return mcp.NewToolResultText("ok"), nil
	}

	tools := NewOrgRedactor("trusted-org").Apply([]server.ServerTool{
		toolWithSchema("create_input",
			map[string]any{"org": map[string]any{"type": "string"}},
			nil,
			inner,
		),
	})

	// The parameter is hidden from the schema; a caller smuggling a value
	// anyway must not win over the configured default.
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"org": "attacker-org"}

	_, err := tools[0].Handler(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "trusted-org", gotArgs["org"])
}

func TestOrgRedactorSkipsToolsWithoutOrg(t *testing.T) {
	t.Parallel()

	called := false
	inner := func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	}

	original := toolWithSchema("list_streams",
		map[string]any{"limit": map[string]any{"type": "integer"}},
		nil,
		inner,
	)

	tools := NewOrgRedactor("test-org").Apply([]server.ServerTool{original})

	require.Len(t, tools, 1)
	assert.Equal(t, original.Tool.InputSchema, tools[0].Tool.InputSchema)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"limit": 10}

	_, err := tools[0].Handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, called)
}
