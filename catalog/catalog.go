// Package catalog 是标签纸规格注册表：内置 Avery 等模板、兼容型号对照表与用户预设。
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/ByLCY/labelsheet/dsl"
	"github.com/ByLCY/labelsheet/internal/logger"
	"github.com/ByLCY/labelsheet/layout"
)

//go:embed builtin.labels
var builtinSource string

// PresetPrefix 是用户预设 key 的前缀。
const PresetPrefix = "custom-"

// Registry 保存有序的规格列表与兼容型号对照表，创建后只读，可并发使用。
type Registry struct {
	formats []layout.LabelFormat
	index   map[string]int
	xref    map[string][]string
}

var _ layout.FormatSource = (*Registry)(nil)

var builtin = sync.OnceValue(func() *Registry {
	r, err := Load(strings.NewReader(builtinSource))
	if err != nil {
		panic(fmt.Sprintf("catalog: 内置规格无效: %v", err))
	}
	return r
})

// Builtin 返回内置注册表。
func Builtin() *Registry { return builtin() }

// New 由规格列表与对照表构造注册表。key 重复时后者覆盖前者但保留原位置。
func New(formats []layout.LabelFormat, xref map[string][]string) *Registry {
	r := &Registry{index: map[string]int{}, xref: map[string][]string{}}
	for _, f := range formats {
		key := strings.ToLower(f.Key)
		if i, ok := r.index[key]; ok {
			r.formats[i] = f
			continue
		}
		r.index[key] = len(r.formats)
		r.formats = append(r.formats, f)
	}
	for key, refs := range xref {
		r.xref[strings.ToLower(key)] = slices.Clone(refs)
	}
	return r
}

// Load 解析规格定义文件。
func Load(rd io.Reader) (*Registry, error) {
	file, err := dsl.Parse(rd)
	if err != nil {
		return nil, fmt.Errorf("解析规格定义失败: %w", err)
	}
	formats := make([]layout.LabelFormat, 0, len(file.Formats))
	xref := map[string][]string{}
	for _, decl := range file.Formats {
		f, refs, err := formatFromDecl(decl)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
		if len(refs) > 0 {
			xref[f.Key] = refs
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("规格定义为空")
	}
	return New(formats, xref), nil
}

// Extend 返回一个新注册表：在 r 之后追加 other 的规格，同 key 以 other 为准。
func (r *Registry) Extend(other *Registry) *Registry {
	if other == nil {
		return r
	}
	xref := map[string][]string{}
	for k, v := range r.xref {
		xref[k] = v
	}
	for k, v := range other.xref {
		xref[k] = v
	}
	return New(append(r.All(), other.formats...), xref)
}

// All 返回全部规格的副本，顺序与定义文件一致。
func (r *Registry) All() []layout.LabelFormat {
	return slices.Clone(r.formats)
}

// Lookup 先查内置规格再查用户预设（key 大小写不敏感）。
func (r *Registry) Lookup(key string, presets []layout.LabelFormat) (layout.LabelFormat, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if i, ok := r.index[k]; ok {
		return r.formats[i], true
	}
	for _, p := range presets {
		if strings.ToLower(p.Key) == k {
			return p, true
		}
	}
	return layout.LabelFormat{}, false
}

// Format 实现 layout.FormatSource。找不到 key 时回退到第一个内置规格，从不失败。
func (r *Registry) Format(key string, presets []layout.LabelFormat) layout.LabelFormat {
	if f, ok := r.Lookup(key, presets); ok {
		return f
	}
	if len(r.formats) == 0 {
		return layout.LabelFormat{}
	}
	logger.L().Debug("unknown label format, falling back", "key", key, "fallback", r.formats[0].Key)
	return r.formats[0]
}

// CrossReferences 返回与 key 兼容的第三方型号。
func (r *Registry) CrossReferences(key string) []string {
	return slices.Clone(r.xref[strings.ToLower(key)])
}

// Search 对名称、key 与兼容型号做大小写不敏感的子串匹配。空查询返回完整列表。
func (r *Registry) Search(query string) []layout.LabelFormat {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.All()
	}
	m := search.New(language.Und, search.IgnoreCase)
	pat := m.CompileString(query)
	contains := func(s string) bool {
		start, _ := pat.IndexString(s)
		return start >= 0
	}
	var out []layout.LabelFormat
	for _, f := range r.formats {
		if contains(f.Name) || contains(f.Key) || slices.ContainsFunc(r.xref[strings.ToLower(f.Key)], contains) {
			out = append(out, f)
		}
	}
	return out
}

// NewPreset 以 f 为模板创建用户预设，key 为 custom-<ulid>。
func NewPreset(name string, f layout.LabelFormat) layout.LabelFormat {
	out := f
	out.Key = PresetPrefix + strings.ToLower(ulid.Make().String())
	if name = strings.TrimSpace(name); name != "" {
		out.Name = name
	} else {
		out.Name = f.Name + " (custom)"
	}
	return out
}

// IsPreset reports whether key names a user preset.
func IsPreset(key string) bool {
	return strings.HasPrefix(strings.ToLower(key), PresetPrefix)
}

func formatFromDecl(decl *dsl.FormatDecl) (layout.LabelFormat, []string, error) {
	f := layout.LabelFormat{Key: decl.Key, Name: string(decl.Name)}
	var refs []string
	seen := map[string]bool{}
	for _, p := range decl.Props {
		if seen[p.Key] {
			return f, nil, fmt.Errorf("%s: 规格 %s 的属性 %s 重复", p.Pos, decl.Key, p.Key)
		}
		seen[p.Key] = true
		if err := applyProperty(&f, &refs, p); err != nil {
			return f, nil, fmt.Errorf("%s: 规格 %s 的属性 %s: %w", p.Pos, decl.Key, p.Key, err)
		}
	}
	for _, required := range []string{"columns", "cell", "qr", "fonts"} {
		if !seen[required] {
			return f, nil, fmt.Errorf("%s: 规格 %s 缺少属性 %s", decl.Pos, decl.Key, required)
		}
	}
	return f, refs, nil
}

func applyProperty(f *layout.LabelFormat, refs *[]string, p *dsl.Property) error {
	texts := p.Texts()
	joined := strings.Join(texts, " ")
	lengths := func(minN, maxN int) ([]layout.Length, error) {
		ls, err := layout.ParseLengths(joined)
		if err != nil {
			return nil, err
		}
		if ls.N < minN || ls.N > maxN {
			return nil, fmt.Errorf("期望 %d～%d 个长度，实际 %d", minN, maxN, ls.N)
		}
		return ls.Slice(), nil
	}

	switch p.Key {
	case "columns":
		n, err := strconv.Atoi(joined)
		if err != nil || n < 1 {
			return fmt.Errorf("列数无效：%q", joined)
		}
		f.Columns = n
	case "cell", "page":
		ls, err := lengths(2, 2)
		if err != nil {
			return err
		}
		if p.Key == "cell" {
			f.CellWidth, f.CellHeight = ls[0], ls[1]
		} else {
			f.PageWidth, f.PageHeight = ls[0], ls[1]
		}
	case "qr":
		ls, err := lengths(1, 1)
		if err != nil {
			return err
		}
		f.QRSize = ls[0]
	case "padding":
		ls, err := layout.ParseLengths(joined)
		if err != nil {
			return err
		}
		f.Padding = ls
	case "fonts":
		ls, err := lengths(3, 3)
		if err != nil {
			return err
		}
		f.NameFontSize, f.ContentFontSize, f.CodeFontSize = ls[0], ls[1], ls[2]
	case "margin":
		ls, err := layout.ParseLengths(joined)
		if err != nil {
			return err
		}
		f.MarginTop, f.MarginRight, f.MarginBottom, f.MarginLeft = ls.Sides()
	case "orientation":
		o := layout.ParseOrientation(joined)
		if o == layout.OrientationAuto {
			return fmt.Errorf("未知方向 %q", joined)
		}
		f.Orientation = o
	case "compatible":
		*refs = append(*refs, texts...)
	default:
		return fmt.Errorf("未知属性")
	}
	return nil
}
