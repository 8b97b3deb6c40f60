package layout

import (
	"math"
	"strings"
	"testing"
)

// avery5160 是测试用的 3 列地址标签规格，显式声明 Letter 页面。
func avery5160() LabelFormat {
	return LabelFormat{
		Key:             "avery-5160",
		Name:            "Avery 5160 Address",
		Columns:         3,
		CellWidth:       In(2.625),
		CellHeight:      In(1),
		QRSize:          In(0.8),
		Padding:         Pair(Pt(4), Pt(6)),
		NameFontSize:    Pt(9),
		ContentFontSize: Pt(7),
		CodeFontSize:    Pt(7),
		MarginTop:       In(0.5),
		MarginBottom:    In(0.5),
		MarginLeft:      In(0.1875),
		MarginRight:     In(0.1875),
		PageWidth:       In(8.5),
		PageHeight:      In(11),
	}
}

// shippingLabel 是单元格足够大的 2 列规格，便于检查卡片与文本的位置。
func shippingLabel() LabelFormat {
	return LabelFormat{
		Key:             "test-3x2",
		Name:            "Test 3x2",
		Columns:         2,
		CellWidth:       In(3),
		CellHeight:      In(2),
		QRSize:          In(1),
		Padding:         Uniform(Pt(6)),
		NameFontSize:    Pt(12),
		ContentFontSize: Pt(9),
		CodeFontSize:    Pt(8),
		MarginTop:       In(0.5),
		MarginBottom:    In(0.5),
		MarginLeft:      In(1),
		MarginRight:     In(1),
		PageWidth:       In(8.5),
		PageHeight:      In(11),
	}
}

// rollLabel 没有页面尺寸，对应连续卷标。
func rollLabel() LabelFormat {
	return LabelFormat{
		Key:             "dymo-30252",
		Name:            "Dymo 30252 Address",
		Columns:         1,
		CellWidth:       In(3.5),
		CellHeight:      In(1.125),
		QRSize:          In(0.9),
		Padding:         Uniform(Pt(4)),
		NameFontSize:    Pt(10),
		ContentFontSize: Pt(8),
		CodeFontSize:    Pt(7),
		MarginTop:       In(0.0625),
		MarginBottom:    In(0.0625),
		MarginLeft:      In(0.125),
		MarginRight:     In(0.125),
	}
}

// stubTypesetter 按 字符数 × 字号 × 0.5 估算宽度，测试中不依赖真实字体。
type stubTypesetter struct{}

func (stubTypesetter) TextWidth(content string, _ FontRole, sizePt float64) float64 {
	return float64(len([]rune(content))) * sizePt * 0.5
}

type stubSource struct {
	formats []LabelFormat
}

func (s stubSource) Format(key string, presets []LabelFormat) LabelFormat {
	for _, f := range append(append([]LabelFormat{}, s.formats...), presets...) {
		if strings.EqualFold(f.Key, key) {
			return f
		}
	}
	return s.formats[0]
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func assertApprox(t *testing.T, what string, got, want float64) {
	t.Helper()
	if !approx(got, want) {
		t.Fatalf("%s 期望 %g，实际 %g", what, want, got)
	}
}
