package layout

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
	Palette    Palette
	Meta       DocumentMeta
}

// Typesetter 负责测量文本宽度（pt），截断名称时逐字符测量而不是估算。
type Typesetter interface {
	TextWidth(content string, font FontRole, sizePt float64) float64
}
