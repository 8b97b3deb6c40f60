package layout

import "math"

// Mode 是标签的四种渲染模式之一。
type Mode string

const (
	ModeColoredCard Mode = "colored-card"
	ModePlainQR     Mode = "plain-qr"
	ModeIconOnly    Mode = "icon-only"
	ModeTextOnly    Mode = "text-only"
)

// ModeInput 是模式判定的全部输入：显示选项与单条记录的数据可用性。
type ModeInput struct {
	HasQRData       bool
	ShowQRCode      bool
	HasColor        bool
	ShowColorSwatch bool
	HasCode         bool
	ShowBinCode     bool
	HasIcon         bool
	ShowIcon        bool
	Direction       LabelDirection
}

// SelectMode 实现模式状态机。
func SelectMode(in ModeInput) Mode {
	qrAvailable := in.ShowQRCode && in.HasQRData
	switch {
	case in.ShowColorSwatch && qrAvailable:
		return ModeColoredCard
	case qrAvailable:
		return ModePlainQR
	case in.ShowIcon && in.HasIcon:
		return ModeIconOnly
	default:
		return ModeTextOnly
	}
}

// LabelGeometry 是单个标签的全部派生几何量（单位 pt），预览与导出渲染器共同消费。
type LabelGeometry struct {
	Mode          Mode `json:"mode"`
	QRAvailable   bool `json:"qrAvailable"`
	CodeUnderQR   bool `json:"codeUnderQr"`
	ShowSwatchBar bool `json:"showSwatchBar"`
	IsPortrait    bool `json:"isPortrait"`

	CellWidthPt     float64 `json:"cellWidthPt"`
	CellHeightPt    float64 `json:"cellHeightPt"`
	PaddingPt       Margin  `json:"paddingPt"`
	ContentWidthPt  float64 `json:"contentWidthPt"`
	ContentHeightPt float64 `json:"contentHeightPt"`

	QRSizePt          float64 `json:"qrSizePt"`
	CardPaddingPt     float64 `json:"cardPaddingPt"`
	CardRadiusPt      float64 `json:"cardRadiusPt"`
	QRCodeFontSizePt  float64 `json:"qrCodeFontSizePt"`
	CodeFontSizePt    float64 `json:"codeFontSizePt"`
	CodeHeightPt      float64 `json:"codeHeightPt"`
	NameFontSizePt    float64 `json:"nameFontSizePt"`
	ContentFontSizePt float64 `json:"contentFontSizePt"`
	SwatchBarHeightPt float64 `json:"swatchBarHeightPt"`
	IconSizePt        float64 `json:"iconSizePt"`
	IconOnlySizePt    float64 `json:"iconOnlySizePt"`
}

// ResolveLayout 是纯函数：由规格、图标尺寸与模式输入计算标签几何。
//
// 二维码先按规格值取，不超过单元格，再用 FitVisual 收进内容区域：
// 图像块（卡片或二维码加下方编码）的宽高都不超过内容尺寸。卡片内边距取
// max(最小值, 二维码 × 比例)，再受剩余空间的一半钳制；二维码接近内容尺寸时，
// 内边距可能低于最小值乃至为 0，卡片仍不会越出内容区域。
func ResolveLayout(f LabelFormat, iconSizePt float64, in ModeInput) LabelGeometry {
	mode := SelectMode(in)
	qrAvailable := in.ShowQRCode && in.HasQRData

	g := LabelGeometry{
		Mode:        mode,
		QRAvailable: qrAvailable,
		CodeUnderQR: qrAvailable && in.ShowBinCode && in.HasCode,
		IconSizePt:  iconSizePt,
	}

	g.CellWidthPt = f.CellWidth.ToPT()
	g.CellHeightPt = f.CellHeight.ToPT()
	top, right, bottom, left := f.Padding.Sides()
	g.PaddingPt = Margin{Top: top.ToPT(), Right: right.ToPT(), Bottom: bottom.ToPT(), Left: left.ToPT()}
	g.ContentWidthPt = math.Max(0, g.CellWidthPt-g.PaddingPt.Left-g.PaddingPt.Right)
	g.ContentHeightPt = math.Max(0, g.CellHeightPt-g.PaddingPt.Top-g.PaddingPt.Bottom)

	g.QRSizePt = math.Max(0, math.Min(f.QRSize.ToPT(), math.Min(g.CellWidthPt, g.CellHeightPt)))
	g.IconOnlySizePt = math.Max(0, iconSizePt*IconOnlyScale)
	g.NameFontSizePt = f.NameFontSize.ToPT()
	g.ContentFontSizePt = f.ContentFontSize.ToPT()
	if !g.CodeUnderQR {
		g.CodeFontSizePt = math.Min(f.CodeFontSize.ToPT(), g.codeCap())
	}

	g.CardRadiusPt = math.Min(g.CellWidthPt, g.CellHeightPt) * CardRadiusRatio
	g.SwatchBarHeightPt = math.Max(SwatchBarMinPt, g.NameFontSizePt*SwatchBarHeightRatio)
	g.ShowSwatchBar = in.HasColor && in.ShowColorSwatch && mode != ModeColoredCard

	switch in.Direction {
	case DirectionVertical:
		g.IsPortrait = true
	case DirectionHorizontal:
		g.IsPortrait = false
	default:
		g.IsPortrait = CurrentOrientation(f) == Portrait
	}
	return g.FitVisual(g.ContentWidthPt, g.ContentHeightPt)
}

// FitVisual 缩小二维码（及随之变化的编码字号、卡片内边距）与独立图标，
// 使图像块落在 maxW × maxH 之内。只会缩小，不会放大。
func (g LabelGeometry) FitVisual(maxW, maxH float64) LabelGeometry {
	maxW, maxH = math.Max(0, maxW), math.Max(0, maxH)
	qr := math.Min(g.QRSizePt, maxW)
	if g.CodeUnderQR {
		qr = math.Min(qr, maxQRWithCode(maxH, g.codeCap()))
	} else {
		qr = math.Min(qr, maxH)
	}
	g.setQR(math.Max(0, qr), maxW, maxH)
	g.IconOnlySizePt = math.Min(g.IconOnlySizePt, math.Min(maxW, maxH))
	return g
}

// VisualSize 返回图像块（卡片/二维码/独立图标 + 下方编码）的宽高。
func (g LabelGeometry) VisualSize() (w, h float64) {
	switch g.Mode {
	case ModeColoredCard:
		side := g.QRSizePt + 2*g.CardPaddingPt
		return side, side + g.CodeHeightPt
	case ModePlainQR:
		return g.QRSizePt, g.QRSizePt + g.CodeHeightPt
	case ModeIconOnly:
		return g.IconOnlySizePt, g.IconOnlySizePt
	default:
		return 0, 0
	}
}

func (g LabelGeometry) codeCap() float64 {
	return g.CellHeightPt * CodeMaxCellHeightRatio
}

func (g *LabelGeometry) setQR(qr, maxW, maxH float64) {
	g.QRSizePt = qr
	g.QRCodeFontSizePt = qr / MonoCodeWidthEms
	g.CodeHeightPt = 0
	if g.CodeUnderQR {
		g.CodeFontSizePt = math.Min(g.QRCodeFontSizePt, g.codeCap())
		if qr > 0 {
			g.CodeHeightPt = CodeGapPt + g.CodeFontSizePt*CodeLineHeight
		}
	}
	fit := math.Max(0, math.Min((maxH-qr-g.CodeHeightPt)/2, (maxW-qr)/2))
	g.CardPaddingPt = math.Min(math.Max(CardPadMinPt, qr*CardPadRatio), fit)
}

// maxQRWithCode 求满足 qr + gap + min(qr/4.6, cap)×lineHeight ≤ maxH 的最大 qr。
func maxQRWithCode(maxH, codeCap float64) float64 {
	linear := (maxH - CodeGapPt) / (1 + CodeLineHeight/MonoCodeWidthEms)
	if linear/MonoCodeWidthEms <= codeCap {
		return math.Max(0, linear)
	}
	return math.Max(0, maxH-CodeGapPt-codeCap*CodeLineHeight)
}
