package admin

import (
	"encoding/json"
	"maps"
	"reflect"
	"sort"

	"github.com/shaiso/provd-cli/internal/provd"
)

// jsonEqual сравнивает значения так, как их увидит сервер: 8666 и 8666.0
// равны, потому что после JSON это одно и то же число.
func jsonEqual(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// rawConfig возвращает raw_config документа конфига.
func rawConfig(config provd.Document) map[string]any {
	raw, _ := config["raw_config"].(map[string]any)
	if raw == nil {
		return map[string]any{}
	}
	return raw
}

// withField возвращает копию документа с заменённым полем.
func withField(doc provd.Document, key string, value any) provd.Document {
	out := maps.Clone(doc)
	out[key] = value
	return out
}

// ids извлекает поле id из документов.
func ids(docs []provd.Document) []string {
	result := make([]string, 0, len(docs))
	for _, doc := range docs {
		if id, ok := doc["id"].(string); ok {
			result = append(result, id)
		}
	}
	return result
}

// sortedKeys возвращает отсортированные ключи набора пакетов.
func sortedKeys(pkgs map[string]provd.Document) []string {
	keys := make([]string, 0, len(pkgs))
	for k := range pkgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
