package plan

import (
	"fmt"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveValue substitutes ${a.b.c} tokens in string values by walking the
// dotted path through the context. A token whose path cannot be fully
// resolved is left verbatim, so a partially-described event still yields a
// reviewable plan. Non-string values pass through unchanged. The function is
// pure: neither the value nor the context is mutated.
func ResolveValue(value interface{}, context map[string]interface{}) interface{} {
	text, ok := value.(string)

	if !ok {
		return value
	}

	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		path := tokenPattern.FindStringSubmatch(token)[1]

		resolved, ok := lookupPath(path, context)

		if !ok {
			return token
		}

		return resolved
	})
}

// ResolveParams returns a new map with every value resolved against the
// context.
func ResolveParams(params map[string]interface{}, context map[string]interface{}) map[string]interface{} {
	resolved := make(map[string]interface{}, len(params))

	for k, v := range params {
		resolved[k] = ResolveValue(v, context)
	}

	return resolved
}

func lookupPath(path string, context map[string]interface{}) (string, bool) {
	var current interface{} = context

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]interface{})

		if !ok {
			return "", false
		}

		current, ok = node[segment]

		if !ok || current == nil {
			return "", false
		}
	}

	return fmt.Sprintf("%v", current), true
}
