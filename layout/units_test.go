package layout

import (
	"encoding/json"
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

func TestInchMmConversions(t *testing.T) {
	if got := InchesToMm(1); got != 25.4 {
		t.Fatalf("1in 期望 25.4mm，实际 %g", got)
	}
	if got := MmToInches(25.4); math.Abs(got-1) > 1e-6 {
		t.Fatalf("25.4mm 期望 1in，实际 %g", got)
	}
	for _, v := range []float64{0, 0.0625, 1, 2.633, 8.5, 11, 297} {
		if back := MmToInches(InchesToMm(v)); math.Abs(back-v) > 0.01 {
			t.Fatalf("in→mm→in 往返超出 0.01: %g → %g", v, back)
		}
		if back := InchesToMm(MmToInches(v)); math.Abs(back-v) > 0.01 {
			t.Fatalf("mm→in→mm 往返超出 0.01: %g → %g", v, back)
		}
	}
	if got := ConvertDisplay(1, UnitIN, UnitPT); got != 72 {
		t.Fatalf("1in 期望 72pt，实际 %g", got)
	}
}

// TestLengthToConversions 覆盖 Length 在常见单位上的转换正确性。
func TestLengthToConversions(t *testing.T) {
	cm := Length{Value: 2.54, Unit: UnitCM}
	if got := cm.ToMM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("2.54cm 转 mm 期望 25.4，实际 %g", got)
	}
	if got := Pt(36).ToIN(); got != 0.5 {
		t.Fatalf("36pt 转 in 期望 0.5，实际 %g", got)
	}
	// 无单位的目标保留原值
	if got := In(2).To(UnitNone); got != 2 {
		t.Fatalf("To(UnitNone) 应返回原值，实际 %g", got)
	}
}

func TestScaleLength(t *testing.T) {
	cases := []struct {
		in     string
		factor float64
		want   string
	}{
		{"8pt 12pt", 2, "16pt 24pt"},
		{"2.633in", 1, "2.633in"},
		{"0.1in 3mm", 0.5, "0.05in 1.5mm"},
		{"1in", 1.0 / 3, "0.333333333in"},
		{"0.33333in", 1, "0.33333in"},
		{"0.1in", 3, "0.3in"},
		{"auto", 2, "auto"},
	}
	for _, tc := range cases {
		if got := ScaleLength(tc.in, tc.factor); got != tc.want {
			t.Fatalf("ScaleLength(%q, %g) 期望 %q，实际 %q", tc.in, tc.factor, tc.want, got)
		}
	}
}

func TestParseLengths(t *testing.T) {
	ls, err := ParseLengths("4pt 6pt")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	top, right, bottom, left := ls.Sides()
	if top != Pt(4) || bottom != Pt(4) || right != Pt(6) || left != Pt(6) {
		t.Fatalf("Sides 展开错误: %v %v %v %v", top, right, bottom, left)
	}
	if _, err := ParseLengths("1in 2in 3in 4in 5in"); err == nil {
		t.Fatalf("超过 4 个值应报错")
	}
	if _, err := ParseLength("3furlong"); err == nil {
		t.Fatalf("未知单位应报错")
	}
}

func TestLengthJSON(t *testing.T) {
	f := avery5160()
	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	var back LabelFormat
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if back != f {
		t.Fatalf("JSON 往返后规格不一致:\n%s", raw)
	}

	var rf LabelFormat
	raw, _ = json.Marshal(rollLabel())
	if err := json.Unmarshal(raw, &rf); err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if rf.HasPageSize() {
		t.Fatalf("未声明页面尺寸的规格不应带页面尺寸: %s", raw)
	}
}

// 未填写内边距的规格编码为空串，解码时必须还原为零值。
func TestLengthJSONEmptyPadding(t *testing.T) {
	f := avery5160()
	f.Padding = Lengths{}
	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	var back LabelFormat
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("空内边距解码失败: %v\n%s", err, raw)
	}
	if back != f {
		t.Fatalf("JSON 往返后规格不一致:\n%s", raw)
	}
	if top, _, _, _ := back.Padding.Sides(); top.Value != 0 {
		t.Fatalf("空内边距应视为 0，实际 %v", top)
	}
	if err := json.Unmarshal([]byte(`{"padding":"  "}`), &back); err != nil {
		t.Fatalf("空白内边距应被接受: %v", err)
	}
}
