package layout

import "math"

// ScaleFactor 返回从 base 单元格到 custom 单元格的等比缩放因子（宽、高比例取较小者）。
// base 任一尺寸为零时无法缩放，返回 1。
func ScaleFactor(base, custom LabelFormat) float64 {
	bw, bh := base.CellWidth.ToPT(), base.CellHeight.ToPT()
	if bw == 0 || bh == 0 {
		return 1
	}
	return math.Min(custom.CellWidth.ToPT()/bw, custom.CellHeight.ToPT()/bh)
}

// AutoScale 按单元格尺寸变化等比调整字号与内边距。因子为 1 时返回 custom 本身。
func AutoScale(base, custom LabelFormat) LabelFormat {
	factor := ScaleFactor(base, custom)
	if factor == 1 {
		return custom
	}
	out := scaleFonts(custom, factor)
	out.Padding = custom.Padding.Scale(factor)
	return out
}

// ApplyFontScale 在自动缩放之后叠加用户选择的字号倍数。倍数为 1 时返回 f 本身。
func ApplyFontScale(f LabelFormat, multiplier FontScale) LabelFormat {
	if multiplier == FontScaleNormal || multiplier <= 0 {
		return f
	}
	return scaleFonts(f, float64(multiplier))
}

func scaleFonts(f LabelFormat, factor float64) LabelFormat {
	out := f
	out.NameFontSize = f.NameFontSize.Scale(factor)
	out.ContentFontSize = f.ContentFontSize.Scale(factor)
	out.CodeFontSize = f.CodeFontSize.Scale(factor)
	return out
}
