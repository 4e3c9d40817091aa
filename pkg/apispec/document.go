// Package apispec loads OpenAPI documents from disk and merges an ordered
// sequence of them into a single unified document.
//
// Documents are kept as raw maps rather than a typed OpenAPI model: the merge
// policy operates on whole path and component entries and must not normalize
// or reinterpret anything an authoring team wrote. Typed validation happens
// later, once, on the merged result.
package apispec

// Document is an OpenAPI document as parsed from YAML. It always contains
// "openapi" and "info"; "paths" and "components" are optional.
type Document map[string]any

// Copy returns a new Document sharing no top-level map with the receiver.
// Nested values are shared; merge operations clone the maps they rewrite.
func (d Document) Copy() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Paths returns the path-pattern map, or nil when absent.
func (d Document) Paths() map[string]any {
	m, _ := d["paths"].(map[string]any)
	return m
}

// Components returns the component-category map, or nil when absent.
func (d Document) Components() map[string]any {
	m, _ := d["components"].(map[string]any)
	return m
}

// Info returns the info map, or nil when absent.
func (d Document) Info() map[string]any {
	m, _ := d["info"].(map[string]any)
	return m
}
