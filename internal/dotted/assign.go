package dotted

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseAssignments разбирает аргументы вида key=value.
//
// Значение трактуется как YAML-скаляр: "8666" даёт число, "true" —
// bool, "null" — nil. Пустое значение, списки и объекты остаются
// строками.
func ParseAssignments(args []string) (map[string]any, error) {
	result := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAssignment, arg)
		}
		result[key] = parseScalar(raw)
	}
	return result, nil
}

func parseScalar(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}

	switch v.(type) {
	case map[string]any, []any:
		return raw
	}
	return v
}
