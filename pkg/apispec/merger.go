package apispec

import (
	"github.com/quortexio/unimcp/pkg/logger"
)

// Merge folds next into acc and returns the result, leaving both inputs
// unmodified. An empty accumulator yields a copy of next.
//
// Collision policy, preserved exactly for behavioral compatibility with the
// service this replaces:
//   - Path collisions favor the LATER document: the entire method map for the
//     colliding path pattern is replaced wholesale, never merged per method.
//   - Component collisions favor the EARLIER document: the accumulator's
//     (category, name) entry is kept untouched.
//
// The asymmetry is intentional. Paths log at warning, components at debug.
func Merge(acc, next Document) Document {
	if len(acc) == 0 {
		return next.Copy()
	}

	merged := acc.Copy()

	// Top-level keys outside paths/components keep the accumulator's value
	// and are only added when the accumulator lacks them.
	for key, value := range next {
		if key == "paths" || key == "components" {
			continue
		}
		if _, exists := merged[key]; !exists {
			merged[key] = value
		}
	}

	if nextPaths := next.Paths(); nextPaths != nil {
		paths := cloneMap(merged.Paths())
		for pattern, methods := range nextPaths {
			if _, exists := paths[pattern]; exists {
				logger.Warnf("Path collision: %s. Overwriting with newer spec.", pattern)
			}
			paths[pattern] = methods
		}
		merged["paths"] = paths
	}

	if nextComponents := next.Components(); nextComponents != nil {
		components := cloneMap(merged.Components())
		for category, items := range nextComponents {
			entries := cloneMap(asMap(components[category]))
			itemMap := asMap(items)
			for name, schema := range itemMap {
				if _, exists := entries[name]; exists {
					logger.Debugf("Component collision: %s/%s. Keeping existing version.", category, name)
					continue
				}
				entries[name] = schema
			}
			components[category] = entries
		}
		merged["components"] = components
	}

	return merged
}

// MergeAll folds the documents left to right. Callers are responsible for
// providing them in a deterministic order; LoadDir sorts by filename.
func MergeAll(docs []Document) Document {
	merged := Document{}
	for _, doc := range docs {
		merged = Merge(merged, doc)
	}
	return merged
}

// SetUnifiedInfo unconditionally overwrites the merged document's title and
// description, discarding whatever the source documents carried. The merge
// itself never touches info; this is a caller-level rewrite applied once
// after folding.
func SetUnifiedInfo(doc Document, title, description string) {
	info := doc.Info()
	if info == nil {
		info = map[string]any{"version": "1.0.0"}
	} else {
		info = cloneMap(info)
	}
	info["title"] = title
	info["description"] = description
	doc["info"] = info
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
