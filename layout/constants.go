package layout

// 预览与导出共用的比例常量。两个渲染器只读取这里的数值，保证比例一致。
const (
	// 彩色卡片内边距：二维码尺寸的比例，带最小值
	CardPadRatio = 0.08
	CardPadMinPt = 2.0
	// 卡片圆角：单元格短边的比例
	CardRadiusRatio = 0.06

	// 色条高度：名称字号的比例，带最小值
	SwatchBarHeightRatio = 0.3
	SwatchBarMinPt       = 2.0
	SwatchGapPt          = 2.0

	// 6 个等宽字符（0.6em）加 5 个 0.2em 字距，正好与二维码同宽
	MonoGlyphAdvanceEms = 0.6
	MonoLetterSpacingEm = 0.2
	MonoCodeWidthEms    = 6*MonoGlyphAdvanceEms + 5*MonoLetterSpacingEm
	// 每个字符占一个固定宽度的格子，避免字距调整影响间距
	MonoGlyphCellEms = MonoGlyphAdvanceEms + MonoLetterSpacingEm

	// 编码字号不超过单元格高度的 25%
	CodeMaxCellHeightRatio = 0.25
	CodeGapPt              = 1.0
	CodeLineHeight         = 1.2

	TextLineHeight = 1.2
	// 基线相对字号的位置（行框顶部 + 半行距 + 上升部）
	TextAscentRatio = 0.78

	// 二维码中心的圆形图标：半径为二维码尺寸的 15%，图标边长为半径的 1.4 倍
	IconOverlayRadiusRatio = 0.15
	IconOverlayScale       = 1.4

	// 图标基准尺寸，自定义模式下乘以缩放因子
	BaseIconSizePt = 11.0
	// 仅图标模式下独立图标相对基准尺寸的倍数
	IconOnlyScale = 3.0

	// 图像块与文本块之间的间距
	BlockGapPt = 4.0
	// 左右排列时文本列至少保留内容宽度的这一比例，图像块让出空间
	MinTextColumnRatio = 0.4
	// 上下排列时图像块缩到自然高度的这一比例以下，就先丢弃末尾的文本行
	MinStackedVisualRatio = 0.5

	Ellipsis = "…"
)

// fitEpsilon 抵消整除型模板上浮点除法的误差（例如 3 × 2.625 / 2.625）。
const fitEpsilon = 1e-6
