package layout

import "testing"

func TestRowsAndLabelsPerPage(t *testing.T) {
	f := avery5160()
	f.CellHeight = In(1)
	if got := RowsPerPage(f); got != 10 {
		t.Fatalf("rowsPerPage 期望 10，实际 %d", got)
	}
	if got := LabelsPerPage(f); got != 30 {
		t.Fatalf("labelsPerPage 期望 30，实际 %d", got)
	}
	if got := PageCount(61, f); got != 3 {
		t.Fatalf("61 条记录期望 3 页，实际 %d", got)
	}
	if got := PageCount(0, f); got != 0 {
		t.Fatalf("无记录期望 0 页，实际 %d", got)
	}
}

func TestRowsPerPageAtLeastOne(t *testing.T) {
	f := avery5160()
	f.CellHeight = In(20)
	if got := RowsPerPage(f); got != 1 {
		t.Fatalf("rowsPerPage 至少为 1，实际 %d", got)
	}
	if got := LabelsPerPage(f); got != f.Columns {
		t.Fatalf("labelsPerPage 期望 %d，实际 %d", f.Columns, got)
	}
}

func TestPageSizeTightFit(t *testing.T) {
	w, h := PageSize(rollLabel())
	assertApprox(t, "卷标页宽", w.ToIN(), 3.75)
	assertApprox(t, "卷标页高", h.ToIN(), 1.25)
	if got := RowsPerPage(rollLabel()); got != 1 {
		t.Fatalf("卷标每页 1 行，实际 %d", got)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	pages := Paginate(items, 3)
	if len(pages) != 3 || len(pages[2]) != 1 || pages[2][0] != 7 {
		t.Fatalf("分页结果错误: %v", pages)
	}
	pages[0] = append(pages[0], 99)
	if items[3] != 4 {
		t.Fatalf("Paginate 的结果追加元素不应改写输入")
	}
	if got := Paginate([]int(nil), 3); len(got) != 0 {
		t.Fatalf("空输入应返回空分页")
	}
}
