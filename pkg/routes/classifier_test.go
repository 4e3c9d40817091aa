package routes

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDefaultRules(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	tests := []struct {
		method string
		path   string
		want   Kind
	}{
		{"GET", "/users", KindResource},
		{"GET", "/users/{id}", KindResourceTemplate},
		{"GET", "/orgs/{org}/inputs/{uuid}", KindResourceTemplate},
		{"POST", "/users", KindTool},
		// The template pattern does not override method-based tool classification.
		{"PUT", "/users/{id}", KindTool},
		{"DELETE", "/users/{id}", KindTool},
		{"PATCH", "/users/{id}", KindTool},
		{"HEAD", "/users", KindDefault},
		{"OPTIONS", "/users", KindDefault},
		// Documents store methods lowercase.
		{"get", "/users", KindResource},
		{"post", "/users", KindTool},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(rules, tt.method, tt.path))
		})
	}
}

// First match wins: a rule ordering that puts the plain GET rule before the
// template rule never produces a template classification.
func TestClassifyOrderSensitive(t *testing.T) {
	t.Parallel()

	reversed := []Rule{
		{Methods: []string{"GET"}, Kind: KindResource},
		{Methods: []string{"GET"}, Pattern: regexp.MustCompile(`\{.*\}`), Kind: KindResourceTemplate},
	}

	assert.Equal(t, KindResource, Classify(reversed, "GET", "/users/{id}"))
}
