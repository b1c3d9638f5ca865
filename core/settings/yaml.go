package settings

import (
	"encoding/json"
	"fmt"

	"github.com/huangsam/sprintboard/schema"
	"gopkg.in/yaml.v3"
)

// ImportYAML parses a YAML settings document with the same checks as Import.
func ImportYAML(data []byte) (schema.Settings, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return schema.Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	asJSON, err := json.Marshal(stringKeys(doc))
	if err != nil {
		return schema.Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return Import(asJSON)
}

// ExportYAML renders settings as YAML holding only the persisted keys.
func ExportYAML(s schema.Settings) ([]byte, error) {
	out, err := yaml.Marshal(withEmptyCollections(s.Clone()))
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return out, nil
}

// stringKeys converts YAML maps with non-string keys, such as iteration
// positions, into JSON-compatible maps.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			t[k] = stringKeys(inner)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = stringKeys(inner)
		}
		return out
	case []any:
		for i, inner := range t {
			t[i] = stringKeys(inner)
		}
		return t
	default:
		return v
	}
}
