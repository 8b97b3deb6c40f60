package layout

import "math"

// CurrentOrientation 返回规格的当前方向：显式声明优先，否则单元格高大于宽即为纵向。
func CurrentOrientation(f LabelFormat) Orientation {
	if f.Orientation == Portrait || f.Orientation == Landscape {
		return f.Orientation
	}
	if f.CellHeight.ToPT() > f.CellWidth.ToPT() {
		return Portrait
	}
	return Landscape
}

// ApplyOrientation 将整张标签纸旋转 90°。target 为空或与当前方向相同时原样返回 f。
//
// 旋转时交换单元格宽高，按当前有效页面尺寸（显式声明或紧密包裹）交换页面宽高，
// 边距按 上←左、下←右、左←上、右←下 旋转，最后按新的可用宽度重新计算列数。
func ApplyOrientation(f LabelFormat, target Orientation) LabelFormat {
	if target == OrientationAuto || target == CurrentOrientation(f) {
		return f
	}
	pw, ph := PageSize(f)

	out := f
	out.CellWidth, out.CellHeight = f.CellHeight, f.CellWidth
	out.PageWidth, out.PageHeight = ph, pw
	out.MarginTop = f.MarginLeft
	out.MarginBottom = f.MarginRight
	out.MarginLeft = f.MarginTop
	out.MarginRight = f.MarginBottom
	out.Orientation = target
	out.Columns = FitColumns(out)
	return out
}

// FitColumns 计算页面可容纳的最大列数，至少为 1。
func FitColumns(f LabelFormat) int {
	pw, _ := PageSize(f)
	cw := f.CellWidth.ToPT()
	if cw <= 0 {
		return 1
	}
	avail := pw.ToPT() - f.MarginLeft.ToPT() - f.MarginRight.ToPT()
	return max(1, int(math.Floor(avail/cw+fitEpsilon)))
}
