package layout

import (
	"fmt"
	"slices"
	"strings"
)

// 该文件定义标签规格、用户覆盖值与显示选项，均为值类型，变换函数只返回新值。

// Orientation 为标签方向；空值表示未显式指定，由单元格形状推断。
type Orientation string

const (
	OrientationAuto Orientation = ""
	Portrait        Orientation = "portrait"
	Landscape       Orientation = "landscape"
)

// ParseOrientation 规范化方向字符串，未知值返回 OrientationAuto。
func ParseOrientation(s string) Orientation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait", "vertical", "tall":
		return Portrait
	case "landscape", "horizontal", "wide":
		return Landscape
	default:
		return OrientationAuto
	}
}

// Opposite returns the other orientation; OrientationAuto stays as is.
func (o Orientation) Opposite() Orientation {
	switch o {
	case Portrait:
		return Landscape
	case Landscape:
		return Portrait
	default:
		return OrientationAuto
	}
}

// TextAlign controls horizontal placement of the QR+text block.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// LabelDirection 强制标签内部排列：vertical 为上下堆叠，horizontal 为左右排列。
type LabelDirection string

const (
	DirectionAuto       LabelDirection = "auto"
	DirectionVertical   LabelDirection = "vertical"
	DirectionHorizontal LabelDirection = "horizontal"
)

// FontScale is the user-selected font multiplier preset.
type FontScale float64

const (
	FontScaleSmall  FontScale = 0.75
	FontScaleNormal FontScale = 1
	FontScaleLarge  FontScale = 1.25
	FontScaleXLarge FontScale = 1.5
)

// FontScales lists the presets offered to users.
var FontScales = []FontScale{FontScaleSmall, FontScaleNormal, FontScaleLarge, FontScaleXLarge}

// Valid reports whether f is one of the presets.
func (f FontScale) Valid() bool {
	for _, s := range FontScales {
		if f == s {
			return true
		}
	}
	return false
}

// QRDotStyle 决定二维码数据模块的形状。
type QRDotStyle string

const (
	QRDotSquare  QRDotStyle = "square"
	QRDotRounded QRDotStyle = "rounded"
	QRDotDots    QRDotStyle = "dots"
)

// QRCornerStyle 决定三个定位图形的形状。
type QRCornerStyle string

const (
	QRCornerSquare  QRCornerStyle = "square"
	QRCornerRounded QRCornerStyle = "rounded"
)

// LabelFormat 描述一种标签纸规格。所有尺寸字段都是带单位的长度，Columns 为整数。
// PageWidth/PageHeight 为零值表示未声明，此时页面尺寸按网格紧密包裹计算。
type LabelFormat struct {
	Key             string      `json:"key"`
	Name            string      `json:"name"`
	Columns         int         `json:"columns"`
	CellWidth       Length      `json:"cellWidth"`
	CellHeight      Length      `json:"cellHeight"`
	QRSize          Length      `json:"qrSize"`
	Padding         Lengths     `json:"padding"`
	NameFontSize    Length      `json:"nameFontSize"`
	ContentFontSize Length      `json:"contentFontSize"`
	CodeFontSize    Length      `json:"codeFontSize"`
	MarginTop       Length      `json:"marginTop"`
	MarginBottom    Length      `json:"marginBottom"`
	MarginLeft      Length      `json:"marginLeft"`
	MarginRight     Length      `json:"marginRight"`
	Orientation     Orientation `json:"orientation,omitempty"`
	PageWidth       Length      `json:"pageWidth,omitzero"`
	PageHeight      Length      `json:"pageHeight,omitzero"`
}

// HasPageSize reports whether an explicit page size is declared.
func (f LabelFormat) HasPageSize() bool {
	return f.PageWidth.Value > 0 && f.PageHeight.Value > 0
}

// 自定义尺寸的下限（英寸/磅），防止单元格、二维码或边距变为零或负数。
const (
	MinCellSizeIn = 0.25
	MinQRSizeIn   = 0.25
	MinMarginIn   = 0
	MinFontSizePt = 4
	MinPaddingPt  = 0
)

// FormatOverrides 是 LabelFormat 的部分覆盖，长度一律以英寸保存。
type FormatOverrides struct {
	Columns         *int     `json:"columns,omitempty"`
	CellWidth       *float64 `json:"cellWidth,omitempty"`
	CellHeight      *float64 `json:"cellHeight,omitempty"`
	QRSize          *float64 `json:"qrSize,omitempty"`
	Padding         *float64 `json:"padding,omitempty"`
	NameFontSize    *float64 `json:"nameFontSize,omitempty"`
	ContentFontSize *float64 `json:"contentFontSize,omitempty"`
	CodeFontSize    *float64 `json:"codeFontSize,omitempty"`
	MarginTop       *float64 `json:"marginTop,omitempty"`
	MarginBottom    *float64 `json:"marginBottom,omitempty"`
	MarginLeft      *float64 `json:"marginLeft,omitempty"`
	MarginRight     *float64 `json:"marginRight,omitempty"`
}

// OverrideField names an editable field of FormatOverrides.
type OverrideField string

const (
	FieldColumns         OverrideField = "columns"
	FieldCellWidth       OverrideField = "cellWidth"
	FieldCellHeight      OverrideField = "cellHeight"
	FieldQRSize          OverrideField = "qrSize"
	FieldPadding         OverrideField = "padding"
	FieldNameFontSize    OverrideField = "nameFontSize"
	FieldContentFontSize OverrideField = "contentFontSize"
	FieldCodeFontSize    OverrideField = "codeFontSize"
	FieldMarginTop       OverrideField = "marginTop"
	FieldMarginBottom    OverrideField = "marginBottom"
	FieldMarginLeft      OverrideField = "marginLeft"
	FieldMarginRight     OverrideField = "marginRight"
)

// OverrideFields lists every editable field, in form order.
var OverrideFields = []OverrideField{
	FieldColumns, FieldCellWidth, FieldCellHeight, FieldQRSize, FieldPadding,
	FieldNameFontSize, FieldContentFontSize, FieldCodeFontSize,
	FieldMarginTop, FieldMarginBottom, FieldMarginLeft, FieldMarginRight,
}

func (f OverrideField) Valid() bool { return slices.Contains(OverrideFields, f) }

// CustomState 记录用户是否处于自定义模式以及覆盖值。
type CustomState struct {
	Customizing bool            `json:"customizing"`
	Overrides   FormatOverrides `json:"overrides"`
}

// SetOverride 解析用户输入并返回新的状态。input 为空或无法解析时原样返回；
// 超出范围的值会被钳制到下限。displayUnit 是输入框显示的单位，字号字段始终按 pt 解析。
// 输入自带单位（如 "3mm"）时以输入为准。
func (s CustomState) SetOverride(field OverrideField, input string, displayUnit Unit) CustomState {
	input = strings.TrimSpace(input)
	if input == "" {
		return s
	}
	out := s
	out.Overrides = s.Overrides.clone()
	if field == FieldColumns {
		var n int
		if _, err := fmt.Sscanf(input, "%d", &n); err != nil {
			return s
		}
		n = max(1, n)
		out.Overrides.Columns = &n
		return out
	}

	unit := displayUnit
	if field.isFont() {
		unit = UnitPT
	}
	l, err := ParseLength(input)
	if err != nil {
		return s
	}
	if l.Unit == UnitNone {
		l.Unit = unit
	}
	if field.isFont() {
		pt := max(l.ToPT(), MinFontSizePt)
		v := PtToInches(pt)
		return out.set(field, v)
	}
	v := l.ToIN()
	switch field {
	case FieldCellWidth, FieldCellHeight:
		v = max(v, MinCellSizeIn)
	case FieldQRSize:
		v = max(v, MinQRSizeIn)
	case FieldPadding:
		v = max(v, PtToInches(MinPaddingPt))
	case FieldMarginTop, FieldMarginBottom, FieldMarginLeft, FieldMarginRight:
		v = max(v, MinMarginIn)
	default:
		return s
	}
	return out.set(field, v)
}

// ClearOverrides 回到模板默认值（"重置"操作）。
func (s CustomState) ClearOverrides() CustomState {
	return CustomState{Customizing: s.Customizing}
}

func (s CustomState) set(field OverrideField, v float64) CustomState {
	p := &v
	o := &s.Overrides
	switch field {
	case FieldCellWidth:
		o.CellWidth = p
	case FieldCellHeight:
		o.CellHeight = p
	case FieldQRSize:
		o.QRSize = p
	case FieldPadding:
		o.Padding = p
	case FieldNameFontSize:
		o.NameFontSize = p
	case FieldContentFontSize:
		o.ContentFontSize = p
	case FieldCodeFontSize:
		o.CodeFontSize = p
	case FieldMarginTop:
		o.MarginTop = p
	case FieldMarginBottom:
		o.MarginBottom = p
	case FieldMarginLeft:
		o.MarginLeft = p
	case FieldMarginRight:
		o.MarginRight = p
	}
	return s
}

func (f OverrideField) isFont() bool {
	return f == FieldNameFontSize || f == FieldContentFontSize || f == FieldCodeFontSize
}

func (o FormatOverrides) clone() FormatOverrides {
	cp := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	out := FormatOverrides{
		CellWidth:       cp(o.CellWidth),
		CellHeight:      cp(o.CellHeight),
		QRSize:          cp(o.QRSize),
		Padding:         cp(o.Padding),
		NameFontSize:    cp(o.NameFontSize),
		ContentFontSize: cp(o.ContentFontSize),
		CodeFontSize:    cp(o.CodeFontSize),
		MarginTop:       cp(o.MarginTop),
		MarginBottom:    cp(o.MarginBottom),
		MarginLeft:      cp(o.MarginLeft),
		MarginRight:     cp(o.MarginRight),
	}
	if o.Columns != nil {
		n := *o.Columns
		out.Columns = &n
	}
	return out
}

// LabelOptions 控制每个标签上显示哪些元素。
type LabelOptions struct {
	ShowQRCode       bool           `json:"showQrCode"`
	ShowName         bool           `json:"showName"`
	ShowIcon         bool           `json:"showIcon"`
	ShowArea         bool           `json:"showArea"`
	ShowBinCode      bool           `json:"showBinCode"`
	ShowColorSwatch  bool           `json:"showColorSwatch"`
	FontScale        FontScale      `json:"fontScale"`
	TextAlign        TextAlign      `json:"textAlign"`
	Direction        LabelDirection `json:"labelDirection"`
	QRDotStyle       QRDotStyle     `json:"qrDotStyle"`
	QRCornerStyle    QRCornerStyle  `json:"qrCornerStyle"`
	SubtitleTemplate string         `json:"subtitleTemplate,omitempty"`
}

// DefaultSubtitleTemplate 默认副标题只显示区域名称。
const DefaultSubtitleTemplate = "${area}"

// DefaultLabelOptions returns the options used for a fresh profile.
func DefaultLabelOptions() LabelOptions {
	return LabelOptions{
		ShowQRCode:       true,
		ShowName:         true,
		ShowIcon:         true,
		ShowArea:         true,
		ShowBinCode:      true,
		ShowColorSwatch:  false,
		FontScale:        FontScaleNormal,
		TextAlign:        AlignLeft,
		Direction:        DirectionAuto,
		QRDotStyle:       QRDotSquare,
		QRCornerStyle:    QRCornerSquare,
		SubtitleTemplate: DefaultSubtitleTemplate,
	}
}

// Normalize 将未知的枚举值替换为默认值，返回新的选项。
func (o LabelOptions) Normalize() LabelOptions {
	if !o.FontScale.Valid() {
		o.FontScale = FontScaleNormal
	}
	switch o.TextAlign {
	case AlignLeft, AlignCenter, AlignRight:
	case "start":
		o.TextAlign = AlignLeft
	case "end":
		o.TextAlign = AlignRight
	default:
		o.TextAlign = AlignLeft
	}
	switch o.Direction {
	case DirectionVertical, DirectionHorizontal, DirectionAuto:
	default:
		o.Direction = DirectionAuto
	}
	switch o.QRDotStyle {
	case QRDotSquare, QRDotRounded, QRDotDots:
	default:
		o.QRDotStyle = QRDotSquare
	}
	switch o.QRCornerStyle {
	case QRCornerSquare, QRCornerRounded:
	default:
		o.QRCornerStyle = QRCornerSquare
	}
	if strings.TrimSpace(o.SubtitleTemplate) == "" {
		o.SubtitleTemplate = DefaultSubtitleTemplate
	}
	return o
}

// PrintSettings 是外部持久化的打印配置。
type PrintSettings struct {
	FormatKey   string        `json:"formatKey"`
	Custom      CustomState   `json:"custom"`
	Options     LabelOptions  `json:"options"`
	Presets     []LabelFormat `json:"presets,omitempty"`
	Orientation Orientation   `json:"orientation,omitempty"`
	DisplayUnit Unit          `json:"displayUnit"`
}

// DefaultPrintSettings returns settings for a first run.
func DefaultPrintSettings() PrintSettings {
	return PrintSettings{
		Options:     DefaultLabelOptions(),
		DisplayUnit: UnitIN,
	}
}

// Record 是外部提供的库存记录，ShortCode 与 ID 相同，为字母数字。
type Record struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortCode string `json:"shortCode"`
	ColorKey  string `json:"colorKey,omitempty"`
	IconKey   string `json:"iconKey,omitempty"`
	AreaName  string `json:"areaName,omitempty"`
}

// Fields exposes record values to subtitle templates.
func (r Record) Fields() map[string]interface{} {
	return map[string]interface{}{
		"id":    r.ID,
		"name":  r.Name,
		"code":  r.ShortCode,
		"color": r.ColorKey,
		"icon":  r.IconKey,
		"area":  r.AreaName,
	}
}
