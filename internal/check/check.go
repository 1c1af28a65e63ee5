// Package check evaluates JSONPath assertions against response bodies.
package check

import (
	"strings"

	"github.com/tidwall/gjson"

	"volley/internal/core"
)

// Check is one named assertion on a response body. Path uses JSONPath syntax
// ($.foo.bar). With an empty Equals the check passes when the path exists;
// otherwise the value's string form must match Equals.
//
// Checks never affect an outcome's Success flag, which tracks transport-level
// completion only.
type Check struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Equals string `yaml:"equals,omitempty"`
}

// Evaluate runs all checks against body. A body that is not valid JSON fails
// every check. Returns nil when there are no checks configured.
func Evaluate(body []byte, checks []Check) []core.CheckResult {
	if len(checks) == 0 {
		return nil
	}

	valid := gjson.ValidBytes(body)
	results := make([]core.CheckResult, 0, len(checks))

	for _, c := range checks {
		passed := false
		if valid {
			value := gjson.GetBytes(body, toGJSONPath(c.Path))
			if value.Exists() {
				passed = c.Equals == "" || value.String() == c.Equals
			}
		}
		results = append(results, core.CheckResult{Name: c.Name, Passed: passed})
	}
	return results
}

// toGJSONPath converts JSONPath syntax to gjson path format.
// $.foo.bar -> foo.bar
// $.items[0].id -> items.0.id
// $.data[*].name -> data.#.name
func toGJSONPath(path string) string {
	if strings.HasPrefix(path, "$.") {
		path = path[2:]
	} else if strings.HasPrefix(path, "$") {
		path = path[1:]
	}

	var result strings.Builder
	i := 0
	for i < len(path) {
		if path[i] == '[' {
			j := i + 1
			for j < len(path) && path[j] != ']' {
				j++
			}
			if j < len(path) {
				content := path[i+1 : j]
				if content == "*" {
					result.WriteString(".#")
				} else {
					result.WriteByte('.')
					result.WriteString(content)
				}
				i = j + 1
				continue
			}
		}
		result.WriteByte(path[i])
		i++
	}

	return result.String()
}
