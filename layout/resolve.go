package layout

// FormatSource 提供按 key 查找标签规格的能力（见 catalog 包），查找不应失败。
type FormatSource interface {
	Format(key string, presets []LabelFormat) LabelFormat
}

// ResolveInput 汇总解析有效规格所需的用户状态。
type ResolveInput struct {
	FormatKey   string
	Presets     []LabelFormat
	Orientation Orientation
	Custom      CustomState
	FontScale   FontScale
}

// InputFromSettings 从持久化配置构造 ResolveInput。
func InputFromSettings(s PrintSettings) ResolveInput {
	return ResolveInput{
		FormatKey:   s.FormatKey,
		Presets:     s.Presets,
		Orientation: s.Orientation,
		Custom:      s.Custom,
		FontScale:   s.Options.FontScale,
	}
}

// Resolution 保存解析链路的每个阶段，便于"恢复模板默认值"与诊断。
type Resolution struct {
	Base         LabelFormat `json:"base"`
	OrientedBase LabelFormat `json:"orientedBase"`
	Custom       LabelFormat `json:"custom"`
	Scaled       LabelFormat `json:"scaled"`
	Final        LabelFormat `json:"final"`
	Factor       float64     `json:"factor"`
	IconSizePt   float64     `json:"iconSizePt"`
}

// Resolve 依次执行：查表 → 旋转 → 合并覆盖值 → 自动缩放 → 字号倍数。
func Resolve(src FormatSource, in ResolveInput) Resolution {
	base := src.Format(in.FormatKey, in.Presets)
	oriented := ApplyOrientation(base, in.Orientation)

	custom, scaled := oriented, oriented
	factor := 1.0
	if in.Custom.Customizing {
		custom = Merge(oriented, in.Custom.Overrides)
		factor = ScaleFactor(oriented, custom)
		scaled = AutoScale(oriented, custom)
	}

	fontScale := in.FontScale
	if !fontScale.Valid() {
		fontScale = FontScaleNormal
	}
	return Resolution{
		Base:         base,
		OrientedBase: oriented,
		Custom:       custom,
		Scaled:       scaled,
		Final:        ApplyFontScale(scaled, fontScale),
		Factor:       factor,
		IconSizePt:   BaseIconSizePt * factor,
	}
}

// Merge 把覆盖值（英寸）写入 f 的副本。声明了页面尺寸时，列数会被收紧以保持
// columns × cellWidth + 左右边距 ≤ 页宽。
func Merge(f LabelFormat, o FormatOverrides) LabelFormat {
	out := f
	setIn := func(dst *Length, v *float64, floor float64) {
		if v != nil {
			*dst = In(max(*v, floor))
		}
	}
	setPt := func(dst *Length, v *float64) {
		if v != nil {
			*dst = Pt(max(InchesToPt(*v), MinFontSizePt))
		}
	}
	setIn(&out.CellWidth, o.CellWidth, MinCellSizeIn)
	setIn(&out.CellHeight, o.CellHeight, MinCellSizeIn)
	setIn(&out.QRSize, o.QRSize, MinQRSizeIn)
	setIn(&out.MarginTop, o.MarginTop, MinMarginIn)
	setIn(&out.MarginBottom, o.MarginBottom, MinMarginIn)
	setIn(&out.MarginLeft, o.MarginLeft, MinMarginIn)
	setIn(&out.MarginRight, o.MarginRight, MinMarginIn)
	setPt(&out.NameFontSize, o.NameFontSize)
	setPt(&out.ContentFontSize, o.ContentFontSize)
	setPt(&out.CodeFontSize, o.CodeFontSize)
	if o.Padding != nil {
		out.Padding = Uniform(In(max(*o.Padding, 0)))
	}
	if o.Columns != nil {
		out.Columns = max(1, *o.Columns)
	}
	if out.HasPageSize() {
		out.Columns = min(out.Columns, FitColumns(out))
	}
	return out
}
