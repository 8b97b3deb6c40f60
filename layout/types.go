package layout

// 该文件定义布局结果，供导出渲染、预览渲染与调试 JSON 共用。所有坐标单位为 pt，原点在页面左上角。

// Result 保存分页后的标签布局。
type Result struct {
	Format        LabelFormat  `json:"format"`
	Options       LabelOptions `json:"options"`
	PageWidth     float64      `json:"pageWidth"`
	PageHeight    float64      `json:"pageHeight"`
	Margin        Margin       `json:"margin"`
	Columns       int          `json:"columns"`
	RowsPerPage   int          `json:"rowsPerPage"`
	LabelsPerPage int          `json:"labelsPerPage"`
	Pages         []Page       `json:"pages"`
	Meta          DocumentMeta `json:"meta"`
}

// Page 记录页面尺寸与方向，Landscape 由 宽 > 高 决定。
type Page struct {
	Index     int     `json:"index"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Landscape bool    `json:"landscape"`
	Labels    []Label `json:"labels"`
}

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Rect 是轴对齐矩形。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Label 是一个已放置好的标签。指针字段为 nil 表示该元素不绘制。
type Label struct {
	Slot     int           `json:"slot"`
	Row      int           `json:"row"`
	Col      int           `json:"col"`
	Record   Record        `json:"record"`
	Cell     Rect          `json:"cell"`
	Content  Rect          `json:"content"`
	Geometry LabelGeometry `json:"geometry"`
	Card     *Card         `json:"card,omitempty"`
	QR       *ImageBox     `json:"qr,omitempty"`
	Overlay  *Overlay      `json:"overlay,omitempty"`
	Icon     *ImageBox     `json:"icon,omitempty"`
	Code     *CodeRow      `json:"code,omitempty"`
	Texts    []TextBox     `json:"texts,omitempty"`
	Swatch   *Swatch       `json:"swatch,omitempty"`
}

// Card 是彩色卡片模式下包裹二维码的圆角矩形。
type Card struct {
	Rect
	Radius float64 `json:"radius"`
	Fill   Color   `json:"fill"`
}

// ImageKind 区分图像来源。
type ImageKind string

const (
	ImageQR   ImageKind = "qr"
	ImageIcon ImageKind = "icon"
)

// ImageBox 用于描述图片位置与尺寸；Key 是二维码的记录 ID 或图标 key。
type ImageBox struct {
	Kind ImageKind `json:"kind"`
	Key  string    `json:"key"`
	Rect
}

// Overlay 是二维码中心的圆形图标底座。
type Overlay struct {
	CX   float64  `json:"cx"`
	CY   float64  `json:"cy"`
	R    float64  `json:"r"`
	Fill Color    `json:"fill"`
	Icon ImageBox `json:"icon"`
}

// CodeRow 是二维码下方逐字符等宽排列的短编码。
type CodeRow struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
	Baseline float64 `json:"baseline"`
	Color    Color   `json:"color"`
	Glyphs   []Glyph `json:"glyphs"`
}

// Glyph 是一个字符及其固定宽度的格子，字符在格子内水平居中。
type Glyph struct {
	Char string `json:"char"`
	Rect
}

// CenterX returns the horizontal center of the glyph cell.
func (g Glyph) CenterX() float64 { return g.X + g.Width/2 }

// FontRole 选择字体：名称用粗体，正文用常规体，编码用等宽体。
type FontRole string

const (
	FontRegular FontRole = "regular"
	FontBold    FontRole = "bold"
	FontMono    FontRole = "mono"
)

// TextRole 标识文本行的用途。
type TextRole string

const (
	RoleName     TextRole = "name"
	RoleSubtitle TextRole = "subtitle"
	RoleCode     TextRole = "code"
)

// TextBox 表示一行已经排好坐标并完成截断的文本。
type TextBox struct {
	Role       TextRole  `json:"role"`
	Content    string    `json:"content"`
	Natural    string    `json:"natural"`
	Truncated  bool      `json:"truncated,omitempty"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Baseline   float64   `json:"baseline"`
	FontSize   float64   `json:"fontSize"`
	LineHeight float64   `json:"lineHeight"`
	Font       FontRole  `json:"font"`
	Align      TextAlign `json:"align"`
	Color      Color     `json:"color"`
}

// AnchorX 返回按对齐方式绘制时的锚点横坐标。
func (tb TextBox) AnchorX() float64 {
	switch tb.Align {
	case AlignCenter:
		return tb.X + tb.Width/2
	case AlignRight:
		return tb.X + tb.Width
	default:
		return tb.X
	}
}

// Swatch 是记录颜色的色条。
type Swatch struct {
	Rect
	Radius float64 `json:"radius"`
	Fill   Color   `json:"fill"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
