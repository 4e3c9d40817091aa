// Package routes supplies the static policy that maps HTTP operations from
// the merged OpenAPI document to MCP capability kinds.
package routes

import (
	"regexp"
	"strings"
)

// Kind is the capability kind an HTTP operation is classified as.
type Kind string

const (
	// KindResource is a read-only capability with no required path arguments.
	KindResource Kind = "resource"

	// KindResourceTemplate is a read-only capability parameterized by path
	// variables; it cannot be invoked without arguments.
	KindResourceTemplate Kind = "resource_template"

	// KindTool is a capability representing a state-mutating operation.
	KindTool Kind = "tool"

	// KindDefault means no rule matched; the runtime applies its own default.
	KindDefault Kind = ""
)

// Rule maps a method set and an optional path pattern to a capability kind.
// Rules are order-sensitive and evaluated first-match-wins.
type Rule struct {
	// Methods are the HTTP methods this rule applies to, uppercase.
	Methods []string

	// Pattern, when non-nil, must match somewhere in the path.
	Pattern *regexp.Regexp

	// Kind is the capability kind assigned on match.
	Kind Kind
}

// templatePattern matches any brace-delimited segment in a path.
var templatePattern = regexp.MustCompile(`\{.*\}`)

// DefaultRules returns the gateway's classification policy:
//
//  1. GET with a {param} segment anywhere in the path -> resource template
//  2. GET otherwise -> resource
//  3. POST, PUT, DELETE, PATCH -> tool
//
// Rule 1 must precede rule 2: every templated path also satisfies rule 2's
// method filter.
func DefaultRules() []Rule {
	return []Rule{
		{Methods: []string{"GET"}, Pattern: templatePattern, Kind: KindResourceTemplate},
		{Methods: []string{"GET"}, Kind: KindResource},
		{Methods: []string{"POST", "PUT", "DELETE", "PATCH"}, Kind: KindTool},
	}
}

// Classify evaluates the rules in declared order and returns the kind of the
// first match, or KindDefault when nothing matches. Methods are compared
// case-insensitively since OpenAPI documents store them lowercase.
func Classify(rules []Rule, method, path string) Kind {
	method = strings.ToUpper(method)
	for _, rule := range rules {
		if !containsMethod(rule.Methods, method) {
			continue
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(path) {
			continue
		}
		return rule.Kind
	}
	return KindDefault
}

func containsMethod(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
