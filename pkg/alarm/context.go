package alarm

import "encoding/json"

// BuildContext flattens the event detail into the nested key-value context
// used for variable resolution, and synthesizes "dimensions" and "namespace"
// entries from the first metric descriptor when one exists.
func BuildContext(e *Event) map[string]interface{} {
	ctx := map[string]interface{}{}

	// round-trip through JSON so every nested struct becomes a traversable
	// map for dotted-path lookups
	if data, err := json.Marshal(e.Detail); err == nil {
		_ = json.Unmarshal(data, &ctx)
	}

	if len(e.Detail.Configuration.Metrics) > 0 {
		dimensions := map[string]interface{}{}

		for k, v := range e.Dimensions() {
			dimensions[k] = v
		}

		ctx["dimensions"] = dimensions
		ctx["namespace"] = e.Namespace()
	}

	return ctx
}
