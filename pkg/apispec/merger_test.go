package apispec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docWithPath(pattern string, methods map[string]any) Document {
	return Document{
		"openapi": "3.0.0",
		"info":    map[string]any{"title": "Test API", "version": "1.0.0"},
		"paths":   map[string]any{pattern: methods},
	}
}

func TestMergeDisjointPaths(t *testing.T) {
	t.Parallel()

	a := docWithPath("/a", map[string]any{"get": map[string]any{}})
	b := docWithPath("/b", map[string]any{"get": map[string]any{}})

	merged := Merge(a, b)

	assert.Contains(t, merged.Paths(), "/a")
	assert.Contains(t, merged.Paths(), "/b")
}

// Path collisions are right-biased: the later document's method map replaces
// the earlier one wholesale, even when the earlier one had methods the later
// one lacks.
func TestMergePathCollisionLastWins(t *testing.T) {
	t.Parallel()

	a := docWithPath("/x", map[string]any{
		"get":    map[string]any{"operationId": "old_get"},
		"delete": map[string]any{"operationId": "old_delete"},
	})
	bMethods := map[string]any{"post": map[string]any{"operationId": "new_post"}}
	b := docWithPath("/x", bMethods)

	merged := Merge(a, b)

	require.Contains(t, merged.Paths(), "/x")
	assert.Equal(t, bMethods, merged.Paths()["/x"], "colliding path must equal the later document's entry exactly")
}

// Component collisions are left-biased: the earlier document's entry wins.
// Note the asymmetry with path collisions; both biases are load-bearing.
func TestMergeComponentCollisionFirstWins(t *testing.T) {
	t.Parallel()

	oldSchema := map[string]any{"type": "object"}
	a := Document{
		"openapi":    "3.0.0",
		"info":       map[string]any{"title": "A", "version": "1.0.0"},
		"components": map[string]any{"schemas": map[string]any{"Y": oldSchema}},
	}
	b := Document{
		"openapi": "3.0.0",
		"info":    map[string]any{"title": "B", "version": "1.0.0"},
		"components": map[string]any{"schemas": map[string]any{
			"Y": map[string]any{"type": "string"},
			"Z": map[string]any{"type": "integer"},
		}},
	}

	merged := Merge(a, b)

	schemas := merged.Components()["schemas"].(map[string]any)
	assert.Equal(t, oldSchema, schemas["Y"], "colliding component must keep the earlier document's entry")
	assert.Contains(t, schemas, "Z")
}

func TestMergeEmptyAccumulator(t *testing.T) {
	t.Parallel()

	doc := docWithPath("/users", map[string]any{"get": map[string]any{}})

	merged := Merge(Document{}, doc)

	assert.Equal(t, doc, merged)

	// The result is a copy: mutating it must not touch the source.
	merged["openapi"] = "3.1.0"
	assert.Equal(t, "3.0.0", doc["openapi"])
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	a := docWithPath("/x", map[string]any{"get": map[string]any{}})
	b := docWithPath("/x", map[string]any{"post": map[string]any{}})

	_ = Merge(a, b)

	assert.Contains(t, a.Paths()["/x"], "get", "accumulator path map must stay intact")
	assert.NotContains(t, a.Paths()["/x"], "post")
}

// Top-level keys outside paths/components keep the accumulator's value when
// present and are added from the later document only when absent.
func TestMergeTopLevelKeysFavorAccumulator(t *testing.T) {
	t.Parallel()

	a := Document{
		"openapi": "3.0.0",
		"info":    map[string]any{"title": "First", "version": "1.0.0"},
	}
	b := Document{
		"openapi": "3.0.0",
		"info":    map[string]any{"title": "Second", "version": "2.0.0"},
		"servers": []any{map[string]any{"url": "https://api.example.com"}},
	}

	merged := Merge(a, b)

	assert.Equal(t, "First", merged.Info()["title"], "present keys stay at the accumulator's value, never merged field-by-field")
	assert.Contains(t, merged, "servers", "absent keys are added from the later document")
	assert.NotContains(t, a, "servers", "the accumulator itself stays unmodified")
}

func TestMergeAllOrderSensitivity(t *testing.T) {
	t.Parallel()

	first := docWithPath("/x", map[string]any{"get": map[string]any{"operationId": "first"}})
	second := docWithPath("/x", map[string]any{"get": map[string]any{"operationId": "second"}})

	merged := MergeAll([]Document{first, second})

	methods := merged.Paths()["/x"].(map[string]any)
	op := methods["get"].(map[string]any)
	assert.Equal(t, "second", op["operationId"])
}

func TestSetUnifiedInfo(t *testing.T) {
	t.Parallel()

	doc := Document{
		"openapi": "3.0.0",
		"info":    map[string]any{"title": "Source Title", "description": "source", "version": "3.2.1"},
	}

	SetUnifiedInfo(doc, "Quortex Unified API (MCP)", "Unified MCP server for Quortex.io services")

	info := doc.Info()
	assert.Equal(t, "Quortex Unified API (MCP)", info["title"])
	assert.Equal(t, "Unified MCP server for Quortex.io services", info["description"])
	assert.Equal(t, "3.2.1", info["version"], "version survives the overwrite")
}

func TestSetUnifiedInfoWithoutInfo(t *testing.T) {
	t.Parallel()

	doc := Document{"openapi": "3.0.0"}

	SetUnifiedInfo(doc, "Title", "Description")

	info := doc.Info()
	require.NotNil(t, info)
	assert.Equal(t, "Title", info["title"])
	assert.Equal(t, "1.0.0", info["version"])
}
