package layout_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ByLCY/labelsheet/catalog"
	"github.com/ByLCY/labelsheet/layout"
)

type halfEm struct{}

func (halfEm) TextWidth(content string, _ layout.FontRole, sizePt float64) float64 {
	return float64(len([]rune(content))) * sizePt * 0.5
}

const containEps = 1e-6

func within(outer, inner layout.Rect) bool {
	return inner.X >= outer.X-containEps &&
		inner.Y >= outer.Y-containEps &&
		inner.X+inner.Width <= outer.X+outer.Width+containEps &&
		inner.Y+inner.Height <= outer.Y+outer.Height+containEps
}

// labelParts 列出标签上绘制的全部矩形，名称用于报错。
func labelParts(lb layout.Label) map[string]layout.Rect {
	parts := map[string]layout.Rect{}
	if lb.Card != nil {
		parts["card"] = lb.Card.Rect
	}
	if lb.QR != nil {
		parts["qr"] = lb.QR.Rect
	}
	if lb.Overlay != nil {
		o := lb.Overlay
		parts["overlay"] = layout.Rect{X: o.CX - o.R, Y: o.CY - o.R, Width: 2 * o.R, Height: 2 * o.R}
		parts["overlay icon"] = o.Icon.Rect
	}
	if lb.Icon != nil {
		parts["icon"] = lb.Icon.Rect
	}
	if lb.Code != nil {
		for i, gl := range lb.Code.Glyphs {
			parts[fmt.Sprintf("code glyph %d", i)] = gl.Rect
		}
	}
	for i, tb := range lb.Texts {
		parts[fmt.Sprintf("text %d %s", i, tb.Role)] = layout.Rect{X: tb.X, Y: tb.Y, Width: tb.Width, Height: tb.LineHeight}
	}
	if lb.Swatch != nil {
		parts["swatch"] = lb.Swatch.Rect
	}
	return parts
}

// 所有内置规格在两种排列方向、四种模式、所有字号倍数下，绘制内容都不越出内容区域。
func TestBuiltinFormatsStayInsideCell(t *testing.T) {
	rec := layout.Record{
		ID:        "A1B2C3",
		Name:      strings.Repeat("Long bin name ", 4),
		ShortCode: "A1B2C3",
		ColorKey:  "teal",
		IconKey:   "wrench",
		AreaName:  "Garage shelf 3",
	}
	modes := map[string]func(*layout.LabelOptions){
		"card":  func(o *layout.LabelOptions) { o.ShowColorSwatch = true },
		"plain": func(o *layout.LabelOptions) {},
		"icon":  func(o *layout.LabelOptions) { o.ShowQRCode = false },
		"text": func(o *layout.LabelOptions) {
			o.ShowQRCode, o.ShowIcon, o.ShowColorSwatch = false, false, true
		},
	}
	reg := catalog.Builtin()
	for _, f := range reg.All() {
		for _, dir := range []layout.LabelDirection{layout.DirectionAuto, layout.DirectionVertical} {
			for mode, apply := range modes {
				for _, scale := range layout.FontScales {
					opts := layout.DefaultLabelOptions()
					opts.Direction = dir
					opts.FontScale = scale
					apply(&opts)
					res := layout.Resolve(reg, layout.ResolveInput{FormatKey: f.Key, FontScale: scale})
					result, err := layout.Build([]layout.Record{rec}, res, opts, layout.BuildOptions{Typesetter: halfEm{}})
					if err != nil {
						t.Fatalf("%s/%s/%s: 构建失败: %v", f.Key, dir, mode, err)
					}
					lb := result.Pages[0].Labels[0]
					if !within(lb.Cell, lb.Content) {
						t.Fatalf("%s/%s/%s: 内容区域越出单元格", f.Key, dir, mode)
					}
					for name, r := range labelParts(lb) {
						if !within(lb.Content, r) {
							t.Fatalf("%s/%s/%s/x%g: %s %+v 越出内容区域 %+v", f.Key, dir, mode, float64(scale), name, r, lb.Content)
						}
					}
					if mode != "text" && lb.QR == nil && lb.Icon == nil {
						t.Fatalf("%s/%s/%s: 图像块不应被丢弃", f.Key, dir, mode)
					}
				}
			}
		}
	}
}

// 上下排列时图像块缩小为文本让出空间，名称仍然保留。
func TestStackedKeepsNameOnShortCell(t *testing.T) {
	reg := catalog.Builtin()
	opts := layout.DefaultLabelOptions()
	opts.Direction = layout.DirectionVertical
	rec := layout.Record{ID: "A1B2C3", Name: "Screws", ShortCode: "A1B2C3", AreaName: "Garage"}
	res := layout.Resolve(reg, layout.ResolveInput{FormatKey: "avery-5160"})
	result, err := layout.Build([]layout.Record{rec}, res, opts, layout.BuildOptions{Typesetter: halfEm{}})
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	lb := result.Pages[0].Labels[0]
	if len(lb.Texts) == 0 || lb.Texts[0].Role != layout.RoleName {
		t.Fatalf("名称应保留: %+v", lb.Texts)
	}
	natural := layout.ResolveLayout(res.Final, res.IconSizePt, layout.ModeInput{
		HasQRData: true, ShowQRCode: true, HasCode: true, ShowBinCode: true,
	})
	if lb.QR.Width >= natural.QRSizePt {
		t.Fatalf("二维码应缩小为文本让位: %g >= %g", lb.QR.Width, natural.QRSizePt)
	}
	if last := lb.Texts[len(lb.Texts)-1]; last.Y+last.LineHeight > lb.Content.Y+lb.Content.Height+containEps {
		t.Fatalf("文本越出内容区域底部")
	}
}
