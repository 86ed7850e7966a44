package admin

import (
	"strings"

	"github.com/shaiso/provd-cli/internal/provd"
)

// SearchPackages возвращает пакеты, в ID (и, если включено, в описании)
// которых есть подстрока search. Пустой search возвращает все пакеты.
func SearchPackages(pkgs map[string]provd.Document, search string, opts Options) map[string]provd.Document {
	if search == "" {
		return pkgs
	}

	match := func(value string) bool {
		if opts.SearchCaseSensitive {
			return strings.Contains(value, search)
		}
		return strings.Contains(strings.ToLower(value), strings.ToLower(search))
	}

	result := make(map[string]provd.Document)
	for id, pkg := range pkgs {
		if match(id) {
			result[id] = pkg
			continue
		}
		if !opts.SearchDescription {
			continue
		}
		if desc, ok := pkg["description"].(string); ok && match(desc) {
			result[id] = pkg
		}
	}
	return result
}
