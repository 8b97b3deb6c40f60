package layout

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ByLCY/labelsheet/binding"
)

// Build 根据有效规格把记录排到各页的单元格中，计算二维码、图标、编码与文本的位置。
// 结果同时供 PDF 导出与预览渲染使用。
func Build(records []Record, res Resolution, opts LabelOptions, bo BuildOptions) (*Result, error) {
	if bo.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	f := res.Final
	if f.Columns < 1 {
		return nil, fmt.Errorf("layout: 规格 %s 的列数无效：%d", f.Key, f.Columns)
	}
	if f.CellWidth.ToPT() <= 0 || f.CellHeight.ToPT() <= 0 {
		return nil, fmt.Errorf("layout: 规格 %s 的单元格尺寸无效", f.Key)
	}
	opts = opts.Normalize()
	palette := bo.Palette
	if palette == nil {
		palette = DefaultPalette()
	}

	pw, ph := PageSize(f)
	margin := Margin{
		Top:    f.MarginTop.ToPT(),
		Right:  f.MarginRight.ToPT(),
		Bottom: f.MarginBottom.ToPT(),
		Left:   f.MarginLeft.ToPT(),
	}
	meta := bo.Meta
	if meta.Creator == "" {
		meta.Creator = "labelsheet"
	}
	result := &Result{
		Format:        f,
		Options:       opts,
		PageWidth:     pw.ToPT(),
		PageHeight:    ph.ToPT(),
		Margin:        margin,
		Columns:       f.Columns,
		RowsPerPage:   RowsPerPage(f),
		LabelsPerPage: LabelsPerPage(f),
		Meta:          meta,
	}

	b := &labelBuilder{
		format:     f,
		iconSizePt: res.IconSizePt,
		opts:       opts,
		palette:    palette,
		ts:         bo.Typesetter,
	}
	cw, ch := f.CellWidth.ToPT(), f.CellHeight.ToPT()
	for pi, chunk := range Paginate(records, result.LabelsPerPage) {
		page := Page{
			Index:     pi,
			Width:     result.PageWidth,
			Height:    result.PageHeight,
			Landscape: result.PageWidth > result.PageHeight,
			Labels:    make([]Label, 0, len(chunk)),
		}
		for i, rec := range chunk {
			row, col := i/f.Columns, i%f.Columns
			cell := Rect{
				X:      margin.Left + float64(col)*cw,
				Y:      margin.Top + float64(row)*ch,
				Width:  cw,
				Height: ch,
			}
			lb := b.build(rec, cell)
			lb.Slot, lb.Row, lb.Col = i, row, col
			page.Labels = append(page.Labels, lb)
		}
		result.Pages = append(result.Pages, page)
	}
	return result, nil
}

type labelBuilder struct {
	format     LabelFormat
	iconSizePt float64
	opts       LabelOptions
	palette    Palette
	ts         Typesetter
}

// lineSpec 是截断前的文本行。
type lineSpec struct {
	role    TextRole
	text    string
	font    FontRole
	size    float64
	natural float64
}

func (b *labelBuilder) build(rec Record, cell Rect) Label {
	entry, hasColor := b.palette.Lookup(rec.ColorKey)
	if !hasColor {
		entry = NeutralEntry()
	}
	g := ResolveLayout(b.format, b.iconSizePt, ModeInput{
		HasQRData:       strings.TrimSpace(rec.ID) != "",
		ShowQRCode:      b.opts.ShowQRCode,
		HasColor:        hasColor,
		ShowColorSwatch: b.opts.ShowColorSwatch,
		HasCode:         strings.TrimSpace(rec.ShortCode) != "",
		ShowBinCode:     b.opts.ShowBinCode,
		HasIcon:         strings.TrimSpace(rec.IconKey) != "",
		ShowIcon:        b.opts.ShowIcon,
		Direction:       b.opts.Direction,
	})
	lb := Label{
		Record: rec,
		Cell:   cell,
		Content: Rect{
			X:      cell.X + g.PaddingPt.Left,
			Y:      cell.Y + g.PaddingPt.Top,
			Width:  g.ContentWidthPt,
			Height: g.ContentHeightPt,
		},
		Geometry: g,
	}
	lines := b.lines(rec, g)
	if g.IsPortrait {
		b.placeStacked(&lb, lines, entry)
	} else {
		b.placeSideBySide(&lb, lines, entry)
	}
	return lb
}

func (b *labelBuilder) lines(rec Record, g LabelGeometry) []lineSpec {
	var out []lineSpec
	add := func(role TextRole, text string, font FontRole, size float64) {
		text = strings.TrimSpace(text)
		if text == "" || size <= 0 {
			return
		}
		out = append(out, lineSpec{
			role:    role,
			text:    text,
			font:    font,
			size:    size,
			natural: b.ts.TextWidth(text, font, size),
		})
	}
	if b.opts.ShowName {
		add(RoleName, rec.Name, FontBold, g.NameFontSizePt)
	}
	if b.opts.ShowArea {
		sub := binding.Interpolate(b.opts.SubtitleTemplate, rec.Fields())
		if !strings.Contains(sub, "${") {
			add(RoleSubtitle, sub, FontRegular, g.ContentFontSizePt)
		}
	}
	if b.opts.ShowBinCode && !g.CodeUnderQR {
		add(RoleCode, rec.ShortCode, FontMono, g.CodeFontSizePt)
	}
	return out
}

func textBlockHeight(lines []lineSpec, swatchH float64) float64 {
	h := 0.0
	for _, ln := range lines {
		h += ln.size * TextLineHeight
	}
	if swatchH > 0 {
		if len(lines) > 0 {
			h += SwatchGapPt
		}
		h += swatchH
	}
	return h
}

// dropLast 去掉最后一个文本元素：先去色条，再从末尾去文本行。
func dropLast(lines []lineSpec, swatch bool) ([]lineSpec, bool, bool) {
	switch {
	case swatch:
		return lines, false, true
	case len(lines) > 0:
		return lines[:len(lines)-1], false, true
	default:
		return lines, false, false
	}
}

// fitText 丢弃末尾的文本元素，直到文本块高度不超过 maxH。
func fitText(lines []lineSpec, swatch bool, swatchH, maxH float64) ([]lineSpec, bool) {
	for textBlockHeight(lines, swatchHeight(swatch, swatchH)) > maxH {
		var ok bool
		if lines, swatch, ok = dropLast(lines, swatch); !ok {
			break
		}
	}
	return lines, swatch
}

func swatchHeight(show bool, h float64) float64 {
	if !show {
		return 0
	}
	return h
}

func naturalWidth(lines []lineSpec) float64 {
	w := 0.0
	for _, ln := range lines {
		w = math.Max(w, ln.natural)
	}
	return w
}

// placeSideBySide 处理横向单元格：图像块在左，文本块在右。
// 居中偏移按未截断的自然文本宽度计算，短名称不会让整个块重新居中。
// 图像块最多占内容宽度的 1 − MinTextColumnRatio；放不下的末尾文本行被丢弃。
func (b *labelBuilder) placeSideBySide(lb *Label, lines []lineSpec, entry PaletteEntry) {
	g := lb.Geometry
	content := lb.Content
	swatch := g.ShowSwatchBar
	if len(lines) > 0 || swatch {
		g = g.FitVisual(content.Width*(1-MinTextColumnRatio)-BlockGapPt, content.Height)
	}
	vw, vh := g.VisualSize()
	if vw > 0 && content.Width-vw-BlockGapPt <= 0 {
		lines, swatch = nil, false
	}
	lines, swatch = fitText(lines, swatch, g.SwatchBarHeightPt, content.Height)
	g.ShowSwatchBar = swatch
	lb.Geometry = g
	hasText := len(lines) > 0 || swatch

	gap := 0.0
	if vw > 0 && hasText {
		gap = BlockGapPt
	}
	avail := math.Max(0, content.Width-vw-gap)
	natural := naturalWidth(lines)
	column := math.Min(natural, avail)
	if column <= 0 {
		column = avail
	}

	offset := alignOffset(content.Width, vw+gap+natural, b.opts.TextAlign)
	vx := content.X + offset
	if vw > 0 {
		vy := content.Y + (content.Height-vh)/2
		b.placeVisual(lb, vx, vy, entry)
	}
	if !hasText {
		return
	}
	tx := vx + vw + gap
	ty := content.Y + (content.Height-textBlockHeight(lines, swatchHeight(swatch, g.SwatchBarHeightPt)))/2
	b.placeText(lb, lines, tx, ty, column, entry)
}

// placeStacked 处理纵向单元格：图像块居中在上，文本在下，镜像于横向处理。
// 图像块缩小到文本之外剩余的高度；若因此小于自然高度的 MinStackedVisualRatio，
// 先丢弃末尾的文本元素。
func (b *labelBuilder) placeStacked(lb *Label, lines []lineSpec, entry PaletteEntry) {
	g := lb.Geometry
	content := lb.Content
	swatch := g.ShowSwatchBar
	lines, swatch = fitText(lines, swatch, g.SwatchBarHeightPt, content.Height)

	_, natural := g.VisualSize()
	visualH := content.Height
	if natural > 0 {
		for {
			th := textBlockHeight(lines, swatchHeight(swatch, g.SwatchBarHeightPt))
			if th == 0 {
				visualH = content.Height
				break
			}
			visualH = content.Height - BlockGapPt - th
			if visualH >= natural*MinStackedVisualRatio {
				break
			}
			var ok bool
			if lines, swatch, ok = dropLast(lines, swatch); !ok {
				break
			}
		}
		g = g.FitVisual(content.Width, visualH)
	}
	g.ShowSwatchBar = swatch
	lb.Geometry = g
	vw, vh := g.VisualSize()
	hasText := len(lines) > 0 || swatch

	gap := 0.0
	if vh > 0 && hasText {
		gap = BlockGapPt
	}
	th := textBlockHeight(lines, swatchHeight(swatch, g.SwatchBarHeightPt))
	total := vh + gap + th
	top := content.Y + math.Max(0, (content.Height-total)/2)

	if vw > 0 {
		vx := content.X + (content.Width-vw)/2
		b.placeVisual(lb, vx, top, entry)
	}
	if !hasText {
		return
	}
	b.placeText(lb, lines, content.X, top+vh+gap, content.Width, entry)
}

// placeVisual 放置卡片、二维码、中心图标、编码或独立图标，(x, y) 为图像块左上角。
func (b *labelBuilder) placeVisual(lb *Label, x, y float64, entry PaletteEntry) {
	g := lb.Geometry
	rec := lb.Record
	qr := g.QRSizePt

	var qx, qy, blockW, codeTop float64
	overlayFill := paperColor
	switch g.Mode {
	case ModeColoredCard:
		side := qr + 2*g.CardPaddingPt
		lb.Card = &Card{
			Rect:   Rect{X: x, Y: y, Width: side, Height: side},
			Radius: math.Min(g.CardRadiusPt, side/2),
			Fill:   entry.Fill,
		}
		qx, qy = x+g.CardPaddingPt, y+g.CardPaddingPt
		blockW, codeTop = side, y+side
		overlayFill = entry.Fill
	case ModePlainQR:
		qx, qy = x, y
		blockW, codeTop = qr, y+qr
	case ModeIconOnly:
		s := g.IconOnlySizePt
		lb.Icon = &ImageBox{Kind: ImageIcon, Key: rec.IconKey, Rect: Rect{X: x, Y: y, Width: s, Height: s}}
		return
	default:
		return
	}

	lb.QR = &ImageBox{Kind: ImageQR, Key: rec.ID, Rect: Rect{X: qx, Y: qy, Width: qr, Height: qr}}
	if b.opts.ShowIcon && strings.TrimSpace(rec.IconKey) != "" {
		r := qr * IconOverlayRadiusRatio
		side := r * IconOverlayScale
		cx, cy := qx+qr/2, qy+qr/2
		lb.Overlay = &Overlay{
			CX:   cx,
			CY:   cy,
			R:    r,
			Fill: overlayFill,
			Icon: ImageBox{Kind: ImageIcon, Key: rec.IconKey, Rect: Rect{X: cx - side/2, Y: cy - side/2, Width: side, Height: side}},
		}
	}
	if g.CodeUnderQR {
		// 编码行最多比图像块两侧各宽出半个间距，且不越出内容区域
		cx := x + blockW/2
		content := lb.Content
		half := math.Min(blockW/2+BlockGapPt/2, math.Min(cx-content.X, content.X+content.Width-cx))
		lb.Code = codeRow(rec.ShortCode, cx, codeTop+CodeGapPt, g.CodeFontSizePt, 2*half)
	}
}

// codeRow 将编码逐字符放入宽度为 fontSize × 0.8 的格子，整体以 centerX 居中。
// 整行宽度超过 maxWidth 时缩小字号。
func codeRow(code string, centerX, top, fontSize, maxWidth float64) *CodeRow {
	runes := []rune(strings.TrimSpace(code))
	if len(runes) == 0 {
		return nil
	}
	fontSize = math.Min(fontSize, maxWidth/(float64(len(runes))*MonoGlyphCellEms))
	if fontSize <= 0 {
		return nil
	}
	cell := fontSize * MonoGlyphCellEms
	height := fontSize * CodeLineHeight
	start := centerX - float64(len(runes))*cell/2
	row := &CodeRow{
		Text:     string(runes),
		FontSize: fontSize,
		Baseline: baseline(top, height, fontSize),
		Color:    inkColor,
		Glyphs:   make([]Glyph, len(runes)),
	}
	for i, r := range runes {
		row.Glyphs[i] = Glyph{
			Char: string(r),
			Rect: Rect{X: start + float64(i)*cell, Y: top, Width: cell, Height: height},
		}
	}
	return row
}

func (b *labelBuilder) placeText(lb *Label, lines []lineSpec, x, y, width float64, entry PaletteEntry) {
	g := lb.Geometry
	cursor := y
	for _, ln := range lines {
		lh := ln.size * TextLineHeight
		content, truncated := truncateToWidth(b.ts, ln.text, ln.font, ln.size, width)
		lb.Texts = append(lb.Texts, TextBox{
			Role:       ln.role,
			Content:    content,
			Natural:    ln.text,
			Truncated:  truncated,
			X:          x,
			Y:          cursor,
			Width:      width,
			Baseline:   baseline(cursor, lh, ln.size),
			FontSize:   ln.size,
			LineHeight: lh,
			Font:       ln.font,
			Align:      b.opts.TextAlign,
			Color:      inkColor,
		})
		cursor += lh
	}
	if g.ShowSwatchBar {
		if len(lines) > 0 {
			cursor += SwatchGapPt
		}
		h := g.SwatchBarHeightPt
		lb.Swatch = &Swatch{
			Rect:   Rect{X: x, Y: cursor, Width: width, Height: h},
			Radius: h / 2,
			Fill:   entry.Fill,
		}
	}
}

func baseline(top, lineHeight, fontSize float64) float64 {
	return top + (lineHeight-fontSize)/2 + fontSize*TextAscentRatio
}

// truncateToWidth 逐字符缩短文本并追加省略号，直到测量宽度不超过 width。
func truncateToWidth(ts Typesetter, text string, font FontRole, size, width float64) (string, bool) {
	if ts.TextWidth(text, font, size) <= width {
		return text, false
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace) + Ellipsis
		if ts.TextWidth(candidate, font, size) <= width {
			return candidate, true
		}
	}
	if ts.TextWidth(Ellipsis, font, size) <= width {
		return Ellipsis, true
	}
	return "", true
}

func alignOffset(container, width float64, align TextAlign) float64 {
	if container <= width {
		return 0
	}
	switch align {
	case AlignCenter:
		return (container - width) / 2
	case AlignRight:
		return container - width
	default:
		return 0
	}
}
