package layout

import "math"

// PageSize 返回页面尺寸：优先使用显式声明，否则为 边距 + 网格 的紧密尺寸
// （用于自带页面尺寸的连续卷标单标签规格，一页一行）。
func PageSize(f LabelFormat) (width, height Length) {
	if f.HasPageSize() {
		return f.PageWidth, f.PageHeight
	}
	cols := max(1, f.Columns)
	w := f.MarginLeft.ToPT() + f.MarginRight.ToPT() + float64(cols)*f.CellWidth.ToPT()
	h := f.MarginTop.ToPT() + f.MarginBottom.ToPT() + f.CellHeight.ToPT()
	return In(PtToInches(w)), In(PtToInches(h))
}

// RowsPerPage 返回每页行数，至少为 1。
func RowsPerPage(f LabelFormat) int {
	_, ph := PageSize(f)
	ch := f.CellHeight.ToPT()
	if ch <= 0 {
		return 1
	}
	avail := ph.ToPT() - f.MarginTop.ToPT() - f.MarginBottom.ToPT()
	return max(1, int(math.Floor(avail/ch+fitEpsilon)))
}

// LabelsPerPage = RowsPerPage × Columns。
func LabelsPerPage(f LabelFormat) int {
	return RowsPerPage(f) * max(1, f.Columns)
}

// PageCount 返回 n 条记录所需页数。
func PageCount(n int, f LabelFormat) int {
	if n <= 0 {
		return 0
	}
	per := LabelsPerPage(f)
	return (n + per - 1) / per
}

// Paginate 按每页数量切分，切片共享底层数组但不修改输入。
func Paginate[T any](items []T, perPage int) [][]T {
	if perPage <= 0 {
		perPage = 1
	}
	var pages [][]T
	for start := 0; start < len(items); start += perPage {
		end := min(start+perPage, len(items))
		pages = append(pages, items[start:end:end])
	}
	return pages
}
