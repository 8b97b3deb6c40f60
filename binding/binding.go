// Package binding 负责标签副标题模板中 ${field} 占位符的替换。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ${path} 或 ${path|默认值}
var exprPattern = regexp.MustCompile(`\$\{([^}|]+)(?:\|([^}]*))?\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 路径不存在时使用 | 后的默认值；没有默认值则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 3 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok && val != nil {
			if s := fmt.Sprint(val); s != "" || !hasDefault(match) {
				return s
			}
		}
		if hasDefault(match) {
			return groups[2]
		}
		return match
	})
}

// Placeholders 返回模板引用的字段路径，按出现顺序去重。
func Placeholders(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range exprPattern.FindAllStringSubmatch(text, -1) {
		path := strings.TrimSpace(m[1])
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		out = append(out, path)
	}
	return out
}

// Validate 检查模板只引用 known 中的顶层字段。
func Validate(text string, known map[string]any) error {
	for _, path := range Placeholders(text) {
		if _, ok := known[topLevel(path)]; !ok {
			return fmt.Errorf("模板引用了未知字段 %q", path)
		}
	}
	return nil
}

func hasDefault(match string) bool {
	return strings.Contains(match, "|")
}

// step 是路径中的一步：字段名或数组下标。
type step struct {
	key   string
	index int
	isIdx bool
}

// parsePath 将 "a.b[0][1]" 拆成 a、b、0、1 四步。
func parsePath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name = strings.TrimSpace(name); name != "" {
			steps = append(steps, step{key: name})
		}
		for rest != "" {
			idxText, tail, ok := strings.Cut(rest, "]")
			if !ok {
				return nil, false
			}
			n, err := strconv.Atoi(strings.TrimSpace(idxText))
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: n, isIdx: true})
			rest = strings.TrimPrefix(tail, "[")
		}
	}
	return steps, len(steps) > 0
}

func resolvePath(data any, path string) (any, bool) {
	steps, ok := parsePath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		if current, ok = descend(current, st); !ok {
			return nil, false
		}
	}
	return current, true
}

// topLevel returns the first field name of a path.
func topLevel(path string) string {
	name, _, _ := strings.Cut(strings.Split(path, ".")[0], "[")
	return strings.TrimSpace(name)
}

func descend(current any, st step) (any, bool) {
	if st.isIdx {
		switch c := current.(type) {
		case []any:
			if st.index >= 0 && st.index < len(c) {
				return c[st.index], true
			}
		case []string:
			if st.index >= 0 && st.index < len(c) {
				return c[st.index], true
			}
		}
		return nil, false
	}
	switch c := current.(type) {
	case map[string]any:
		v, ok := c[st.key]
		return v, ok
	case map[string]string:
		v, ok := c[st.key]
		return v, ok
	}
	return nil, false
}
