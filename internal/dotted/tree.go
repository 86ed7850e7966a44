package dotted

import (
	"sort"
	"strings"
)

// Value — значение в дереве: либо лист, либо ветка.
type Value struct {
	branch bool
	tree   Tree
	leaf   any
}

// Leaf создаёт лист.
func Leaf(v any) Value {
	return Value{leaf: v}
}

// Branch создаёт ветку. nil превращается в пустую ветку.
func Branch(t Tree) Value {
	if t == nil {
		t = Tree{}
	}
	return Value{branch: true, tree: t}
}

// IsBranch сообщает, является ли значение веткой.
func (v Value) IsBranch() bool {
	return v.branch
}

// Tree возвращает поддерево ветки или nil для листа.
func (v Value) Tree() Tree {
	return v.tree
}

// Leaf возвращает значение листа или nil для ветки.
func (v Value) Leaf() any {
	return v.leaf
}

// Any возвращает значение в виде, пригодном для JSON.
func (v Value) Any() any {
	if v.branch {
		return v.tree.Map()
	}
	return v.leaf
}

// Tree — узел дерева конфигурации.
type Tree map[string]Value

// FromMap строит дерево из вложенных map[string]any.
// Ключи с точками сохраняются как есть.
func FromMap(m map[string]any) Tree {
	t := make(Tree, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			t[k] = Branch(FromMap(sub))
		} else {
			t[k] = Leaf(v)
		}
	}
	return t
}

// Map возвращает дерево в виде вложенных map[string]any.
func (t Tree) Map() map[string]any {
	m := make(map[string]any, len(t))
	for k, v := range t {
		m[k] = v.Any()
	}
	return m
}

// Expand раскрывает точечные ключи.
//
//	{"a.b": "v"}            -> {"a": {"b": "v"}}
//	{"a.b": {"c": 1}}       -> {"a": {"b": {"c": 1}}}
//
// Правила конфликтов:
//   - точечный ключ превращает существующий лист в ветку
//   - вложенный объект сливается с существующей веткой или заменяет лист
//   - скаляр не перезаписывает существующую ветку
func Expand(m map[string]any) Tree {
	t := Tree{}
	expandInto(m, t)
	return t
}

func expandInto(src map[string]any, dst Tree) {
	for _, k := range sortedKeys(src) {
		v := src[k]

		if head, tail, dotted := strings.Cut(k, "."); dotted {
			cur, ok := dst[head]
			if !ok || !cur.IsBranch() {
				cur = Branch(nil)
				dst[head] = cur
			}
			expandInto(map[string]any{tail: v}, cur.tree)
			continue
		}

		cur, exists := dst[k]
		if sub, ok := v.(map[string]any); ok {
			if exists && cur.IsBranch() {
				expandInto(sub, cur.tree)
			} else {
				branch := Tree{}
				expandInto(sub, branch)
				dst[k] = Branch(branch)
			}
			continue
		}

		if exists && cur.IsBranch() {
			continue
		}
		dst[k] = Leaf(v)
	}
}

// Merge рекурсивно накладывает overlay на дерево.
// Ветки сливаются, всё остальное перезаписывается.
func (t Tree) Merge(overlay Tree) {
	for k, v := range overlay {
		if !v.IsBranch() {
			t[k] = v
			continue
		}

		old, ok := t[k]
		if !ok || !old.IsBranch() {
			old = Branch(nil)
			t[k] = old
		}
		old.tree.Merge(v.tree)
	}
}

// Unset удаляет значение по точечному пути.
// Возвращает false, если путь не существует или проходит через лист.
func (t Tree) Unset(key string) bool {
	segments := strings.Split(key, ".")

	cur := t
	for _, segment := range segments[:len(segments)-1] {
		next, ok := cur[segment]
		if !ok || !next.IsBranch() {
			return false
		}
		cur = next.tree
	}

	last := segments[len(segments)-1]
	if _, ok := cur[last]; !ok {
		return false
	}
	delete(cur, last)
	return true
}

// Lookup возвращает значение по точечному пути.
func (t Tree) Lookup(key string) (Value, bool) {
	segments := strings.Split(key, ".")

	cur := t
	for _, segment := range segments[:len(segments)-1] {
		next, ok := cur[segment]
		if !ok || !next.IsBranch() {
			return Value{}, false
		}
		cur = next.tree
	}

	v, ok := cur[segments[len(segments)-1]]
	return v, ok
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
