package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/labelsheet/dsl"
)

// This file defines unit-safe types and helpers for lengths.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, kept numerically as-is
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// 72pt = 1in = 25.4mm，换算常量全部由这两个定义推导，避免近似值累计误差。
const (
	PtPerInch = 72.0
	MmPerInch = 25.4
	PtToMm    = MmPerInch / PtPerInch
	MmToPt    = PtPerInch / MmPerInch
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// ParseUnit 解析单位后缀（大小写不敏感），空串表示无单位。
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UnitNone, true
	case "mm":
		return UnitMM, true
	case "cm":
		return UnitCM, true
	case "in":
		return UnitIN, true
	case "pt":
		return UnitPT, true
	default:
		return UnitNone, false
	}
}

func (u Unit) String() string { return UnitToString(u) }

// MarshalText 让显示单位偏好以 "in"/"mm" 形式写入 JSON。
func (u Unit) MarshalText() ([]byte, error) { return []byte(UnitToString(u)), nil }

func (u *Unit) UnmarshalText(b []byte) error {
	parsed, ok := ParseUnit(string(b))
	if !ok {
		return fmt.Errorf("未知长度单位：%q", string(b))
	}
	*u = parsed
	return nil
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64
	Unit  Unit
}

// In, Pt, Mm are shorthand constructors.
func In(v float64) Length { return Length{Value: v, Unit: UnitIN} }
func Pt(v float64) Length { return Length{Value: v, Unit: UnitPT} }
func Mm(v float64) Length { return Length{Value: v, Unit: UnitMM} }

func (l Length) IsZero() bool { return l.Value == 0 }

func (l Length) points() float64 {
	switch l.Unit {
	case UnitIN:
		return l.Value * PtPerInch
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	default:
		// UnitPT 与无单位数值都按 pt 参与几何计算
		return l.Value
	}
}

// To converts this length to the target unit.
func (l Length) To(target Unit) float64 {
	if target == l.Unit || target == UnitNone {
		return l.Value
	}
	pt := l.points()
	switch target {
	case UnitPT:
		return pt
	case UnitIN:
		return pt / PtPerInch
	case UnitMM:
		return pt * PtToMm
	case UnitCM:
		return pt * PtToMm / 10
	}
	return l.Value
}

func (l Length) ToPT() float64 { return l.To(UnitPT) }
func (l Length) ToIN() float64 { return l.To(UnitIN) }
func (l Length) ToMM() float64 { return l.To(UnitMM) }

// Scale multiplies the numeric part and keeps the unit.
func (l Length) Scale(factor float64) Length {
	return Length{Value: l.Value * factor, Unit: l.Unit}
}

// String formats like "2.633in"; trailing zeros are trimmed.
func (l Length) String() string {
	return FormatNumber(l.Value) + UnitToString(l.Unit)
}

func (l Length) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Length) UnmarshalText(b []byte) error {
	parsed, err := ParseLength(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// FormatNumber 以最短形式输出数值，只去掉浮点误差（9 位小数以下）的尾数。
func FormatNumber(v float64) string {
	// 只抹掉浮点运算残留的尾数，用户输入的精度原样保留
	r := math.Round(v*1e9) / 1e9
	if r == 0 {
		r = 0 // 去掉 -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// ParseLength parses a single length token such as "2.625in" or "8pt".
func ParseLength(value string) (Length, error) {
	ls, err := ParseLengths(value)
	if err != nil {
		return Length{}, err
	}
	if ls.N != 1 {
		return Length{}, fmt.Errorf("期望单个长度值，实际 %d 个：%q", ls.N, value)
	}
	return ls.Values[0], nil
}

// Lengths holds one to four CSS-shorthand lengths, e.g. padding "4pt 6pt".
// It is an array rather than a slice so LabelFormat stays comparable.
type Lengths struct {
	Values [4]Length
	N      int
}

// Uniform returns a single-value Lengths.
func Uniform(l Length) Lengths {
	return Lengths{Values: [4]Length{l}, N: 1}
}

// Pair returns a vertical/horizontal Lengths ("4pt 6pt").
func Pair(vertical, horizontal Length) Lengths {
	return Lengths{Values: [4]Length{vertical, horizontal}, N: 2}
}

// Slice returns the populated values.
func (ls Lengths) Slice() []Length {
	out := make([]Length, 0, ls.N)
	for i := 0; i < ls.N && i < len(ls.Values); i++ {
		out = append(out, ls.Values[i])
	}
	return out
}

// Sides expands shorthand values following CSS semantics.
func (ls Lengths) Sides() (top, right, bottom, left Length) {
	v := ls.Values
	switch ls.N {
	case 1:
		return v[0], v[0], v[0], v[0]
	case 2:
		return v[0], v[1], v[0], v[1]
	case 3:
		return v[0], v[1], v[2], v[1]
	case 4:
		return v[0], v[1], v[2], v[3]
	default:
		return Length{}, Length{}, Length{}, Length{}
	}
}

// Scale multiplies every value.
func (ls Lengths) Scale(factor float64) Lengths {
	out := ls
	for i := 0; i < ls.N; i++ {
		out.Values[i] = ls.Values[i].Scale(factor)
	}
	return out
}

func (ls Lengths) String() string {
	parts := make([]string, 0, ls.N)
	for _, l := range ls.Slice() {
		parts = append(parts, l.String())
	}
	return strings.Join(parts, " ")
}

func (ls Lengths) MarshalText() ([]byte, error) { return []byte(ls.String()), nil }

func (ls *Lengths) UnmarshalText(b []byte) error {
	// MarshalText 对零值输出空串，这里对称地接受
	if strings.TrimSpace(string(b)) == "" {
		*ls = Lengths{}
		return nil
	}
	parsed, err := ParseLengths(string(b))
	if err != nil {
		return err
	}
	*ls = parsed
	return nil
}

// ParseLengths parses space separated length tokens (1 to 4).
func ParseLengths(value string) (Lengths, error) {
	qs, err := dsl.ParseQuantities(value)
	if err != nil {
		return Lengths{}, fmt.Errorf("解析长度 %q 失败: %w", value, err)
	}
	if len(qs) == 0 || len(qs) > 4 {
		return Lengths{}, fmt.Errorf("长度值数量应为 1～4，实际 %d：%q", len(qs), value)
	}
	var out Lengths
	for i, q := range qs {
		u, ok := ParseUnit(q.Unit)
		if !ok {
			return Lengths{}, fmt.Errorf("未知长度单位 %q：%q", q.Unit, value)
		}
		out.Values[i] = Length{Value: q.Value, Unit: u}
	}
	out.N = len(qs)
	return out, nil
}

// ScaleLength multiplies every numeric token of a CSS length list and keeps
// each unit: ScaleLength("8pt 12pt", 2) == "16pt 24pt". Unparseable input is
// returned unchanged.
func ScaleLength(css string, factor float64) string {
	qs, err := dsl.ParseQuantities(css)
	if err != nil || len(qs) == 0 {
		return css
	}
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = FormatNumber(q.Value*factor) + q.Unit
	}
	return strings.Join(parts, " ")
}

func InchesToMm(v float64) float64 { return v * MmPerInch }
func MmToInches(v float64) float64 { return v / MmPerInch }
func InchesToPt(v float64) float64 { return v * PtPerInch }
func PtToInches(v float64) float64 { return v / PtPerInch }

// ConvertDisplay converts a bare number between display units.
func ConvertDisplay(v float64, from, to Unit) float64 {
	return Length{Value: v, Unit: from}.To(to)
}
