package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/labelsheet/fonts"
	"github.com/ByLCY/labelsheet/internal/logger"
	"github.com/ByLCY/labelsheet/layout"
	"github.com/ByLCY/labelsheet/renderer"
)

// Renderer draws label layouts into a PDF via github.com/tdewolff/canvas.
// 布局结果以 pt 为单位，canvas 以 mm 为单位，两者只在本文件的边界换算。
type Renderer struct {
	fontMu   sync.Mutex
	families map[layout.FontRole]*canvas.FontFamily
	// 字体加载失败时 TextWidth 退化为按字符估算
	fontErr map[layout.FontRole]error
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// NewRenderer creates a renderer backed by the bundled Go fonts.
func NewRenderer() *Renderer {
	return &Renderer{
		families: map[layout.FontRole]*canvas.FontFamily{},
		fontErr:  map[layout.FontRole]error{},
	}
}

// Render renders the result into a PDF byte slice. 所有图片先解码，任何一张失败都不会产生输出。
func (r *Renderer) Render(result *layout.Result, images renderer.Images) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	decoded, err := images.Decode()
	if err != nil {
		return nil, fmt.Errorf("准备图片失败: %w", err)
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		for _, lb := range page.Labels {
			if err := r.drawLabel(ctx, lb, decoded); err != nil {
				return nil, fmt.Errorf("第 %d 页标签 %s: %w", i+1, lb.Record.ID, err)
			}
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	logger.L().Debug("pdf rendered", "pages", len(result.Pages), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// TextWidth 实现 layout.Typesetter：用绘制时相同的字体测量宽度，返回 pt。
func (r *Renderer) TextWidth(content string, font layout.FontRole, sizePt float64) float64 {
	if content == "" || sizePt <= 0 {
		return 0
	}
	face, err := r.fontFace(font, sizePt, layout.Color{})
	if err != nil {
		// 与 layout 的等宽字符比例一致的保守估算
		return float64(len([]rune(content))) * sizePt * layout.MonoGlyphAdvanceEms
	}
	return toPt(face.TextWidth(content))
}

func (r *Renderer) drawLabel(ctx *canvas.Context, lb layout.Label, images renderer.Decoded) error {
	// 背景形状先于图片与文本绘制
	if lb.Card != nil {
		fillRounded(ctx, lb.Card.Rect, lb.Card.Radius, lb.Card.Fill)
	}
	if lb.QR != nil {
		drawImage(ctx, *lb.QR, images)
	}
	if ov := lb.Overlay; ov != nil {
		ctx.SetFillColor(colorFromLayout(ov.Fill))
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.DrawPath(toMm(ov.CX), toMm(ov.CY), canvas.Circle(toMm(ov.R)))
		drawImage(ctx, ov.Icon, images)
	}
	if lb.Icon != nil {
		drawImage(ctx, *lb.Icon, images)
	}
	if lb.Code != nil {
		if err := r.drawCode(ctx, *lb.Code); err != nil {
			return err
		}
	}
	for _, tb := range lb.Texts {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return err
		}
	}
	if lb.Swatch != nil {
		fillRounded(ctx, lb.Swatch.Rect, lb.Swatch.Radius, lb.Swatch.Fill)
	}
	return nil
}

// drawCode 每个字符单独绘制在自己的格子中心，间距不受字距影响。
func (r *Renderer) drawCode(ctx *canvas.Context, row layout.CodeRow) error {
	face, err := r.fontFace(layout.FontMono, row.FontSize, row.Color)
	if err != nil {
		return err
	}
	for _, g := range row.Glyphs {
		line := canvas.NewTextLine(face, g.Char, canvas.Center)
		ctx.DrawText(toMm(g.CenterX()), toMm(row.Baseline), line)
	}
	return nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	if tb.Content == "" {
		return nil
	}
	face, err := r.fontFace(tb.Font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}
	var textAlign canvas.TextAlign
	switch tb.Align {
	case layout.AlignCenter:
		textAlign = canvas.Center
	case layout.AlignRight:
		textAlign = canvas.Right
	default:
		textAlign = canvas.Left
	}
	line := canvas.NewTextLine(face, tb.Content, textAlign)
	ctx.DrawText(toMm(tb.AnchorX()), toMm(tb.Baseline), line)
	return nil
}

func drawImage(ctx *canvas.Context, box layout.ImageBox, images renderer.Decoded) {
	img, ok := images.Image(box)
	if !ok {
		// 图片缺失时只省略该元素
		logger.L().Debug("image missing", "kind", box.Kind, "key", box.Key)
		return
	}
	width := toMm(box.Width)
	if width <= 0 || img.Bounds().Dx() == 0 {
		return
	}
	dpmm := float64(img.Bounds().Dx()) / width
	ctx.DrawImage(toMm(box.X), toMm(box.Y), img, canvas.DPMM(dpmm))
}

func fillRounded(ctx *canvas.Context, rc layout.Rect, radius float64, fill layout.Color) {
	if rc.Width <= 0 || rc.Height <= 0 {
		return
	}
	ctx.SetFillColor(colorFromLayout(fill))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.RoundedRectangle(toMm(rc.Width), toMm(rc.Height), toMm(radius)))
}

func (r *Renderer) fontFace(font layout.FontRole, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontRole) (*canvas.FontFamily, error) {
	if font == "" {
		font = layout.FontRegular
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[font]; ok {
		return family, nil
	}
	if err, ok := r.fontErr[font]; ok {
		return nil, err
	}
	family := canvas.NewFontFamily("labelsheet-" + string(font))
	data, err := fonts.Load(string(font))
	if err == nil {
		err = family.LoadFont(data, 0, canvas.FontRegular)
	}
	if err != nil {
		err = fmt.Errorf("加载字体 %s 失败: %w", font, err)
		logger.L().Warn("font load failed", "font", font, "err", err)
		r.fontErr[font] = err
		return nil, err
	}
	r.families[font] = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
