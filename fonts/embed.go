package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名称：名称与副标题、粗体名称、等宽编码。
const (
	Regular = "regular"
	Bold    = "bold"
	Mono    = "mono"
)

var builtin = map[string][]byte{
	Regular: goregular.TTF,
	Bold:    gobold.TTF,
	Mono:    gomono.TTF,
}

// Names lists the built-in font names.
func Names() []string { return []string{Regular, Bold, Mono} }

// Load 返回内置字体的字节数据，name 可写为 "embed:bold" 或直接 "bold"。
// 返回的切片是副本，调用方可以自由修改。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "embed:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return append([]byte(nil), data...), nil
}
