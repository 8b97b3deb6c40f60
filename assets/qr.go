// Package assets 实现渲染前的外部协作者：二维码生成与图标栅格化。
// 两者都批量、并发地产出 PNG 字节，渲染器只消费已经完整的图片集合。
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"golang.org/x/image/vector"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/labelsheet/layout"
)

// QRColors 是单个二维码的前景与背景色。
type QRColors struct {
	Foreground color.Color
	Background color.Color
}

// DefaultQRColors 为白底深色码。
var DefaultQRColors = QRColors{Foreground: color.NRGBA{R: 30, G: 30, B: 30, A: 255}, Background: color.White}

// QRStyle 控制数据模块与定位图形的形状。
type QRStyle struct {
	Dots    layout.QRDotStyle
	Corners layout.QRCornerStyle
}

// QRProvider 生成二维码 PNG。零值可用：纠错级别 L，方形模块。
type QRProvider struct {
	Level       qr.ErrorCorrectionLevel
	Style       QRStyle
	Concurrency int
}

// NewQRProvider creates a provider for the given style.
func NewQRProvider(style QRStyle) *QRProvider {
	return &QRProvider{Level: qr.M, Style: style, Concurrency: 8}
}

// Generate 生成边长为 pixelSize 的二维码 PNG。
func (p *QRProvider) Generate(content string, pixelSize int, colors QRColors) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("二维码内容为空")
	}
	if pixelSize <= 0 {
		return nil, fmt.Errorf("二维码尺寸无效：%d", pixelSize)
	}
	if colors.Foreground == nil {
		colors.Foreground = DefaultQRColors.Foreground
	}
	if colors.Background == nil {
		colors.Background = DefaultQRColors.Background
	}
	code, err := qr.EncodeWithColor(content, p.level(), qr.Auto, barcode.ColorScheme{
		Model:      color.NRGBAModel,
		Background: colors.Background,
		Foreground: colors.Foreground,
	})
	if err != nil {
		return nil, fmt.Errorf("编码二维码 %s 失败: %w", content, err)
	}

	var img image.Image
	if p.plain() {
		img, err = barcode.Scale(code, pixelSize, pixelSize)
		if err != nil {
			return nil, fmt.Errorf("缩放二维码 %s 失败: %w", content, err)
		}
	} else {
		img = p.drawStyled(code, pixelSize, colors)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// BatchGenerate 并发生成一组二维码，colors 可为每个 ID 指定颜色（彩色卡片模式）。
// 任一失败即整体失败，返回的 map 总是完整的。
func (p *QRProvider) BatchGenerate(ctx context.Context, ids []string, pixelSize int, colors map[string]QRColors) (map[string][]byte, error) {
	out := make(map[string][]byte, len(ids))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.Concurrency))
	for _, id := range unique(ids) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, ok := colors[id]
			if !ok {
				c = DefaultQRColors
			}
			data, err := p.Generate(id, pixelSize, c)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *QRProvider) level() qr.ErrorCorrectionLevel {
	if !p.plain() && p.Level < qr.Q {
		// 圆点模块会缩小有效面积，使用更高的纠错级别
		return qr.Q
	}
	return p.Level
}

func (p *QRProvider) plain() bool {
	return (p.Style.Dots == "" || p.Style.Dots == layout.QRDotSquare) &&
		(p.Style.Corners == "" || p.Style.Corners == layout.QRCornerSquare)
}

// drawStyled 按模块矩阵重新绘制：数据模块用圆角或圆点，三个定位图形单独绘制。
func (p *QRProvider) drawStyled(code barcode.Barcode, pixelSize int, colors QRColors) image.Image {
	n := code.Bounds().Dx()
	dst := image.NewNRGBA(image.Rect(0, 0, pixelSize, pixelSize))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(colors.Background), image.Point{}, draw.Src)
	if n == 0 {
		return dst
	}
	m := float32(pixelSize) / float32(n)
	z := vector.NewRasterizer(pixelSize, pixelSize)

	dark := func(x, y int) bool {
		r, g, b, _ := code.At(x, y).RGBA()
		fr, fg, fb, _ := colors.Foreground.RGBA()
		return r == fr && g == fg && b == fb
	}
	inFinder := func(x, y int) bool {
		return (x < 7 && y < 7) || (x >= n-7 && y < 7) || (x < 7 && y >= n-7)
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if inFinder(x, y) || !dark(x, y) {
				continue
			}
			fx, fy := float32(x)*m, float32(y)*m
			switch p.Style.Dots {
			case layout.QRDotDots:
				circle(z, fx+m/2, fy+m/2, m*0.45)
			case layout.QRDotRounded:
				roundedRect(z, fx, fy, m, m, m*0.3, false)
			default:
				roundedRect(z, fx, fy, m, m, 0, false)
			}
		}
	}
	radius := float32(0)
	if p.Style.Corners == layout.QRCornerRounded {
		radius = m * 1.5
	}
	for _, o := range [][2]int{{0, 0}, {n - 7, 0}, {0, n - 7}} {
		ox, oy := float32(o[0])*m, float32(o[1])*m
		roundedRect(z, ox, oy, 7*m, 7*m, radius, false)
		roundedRect(z, ox+m, oy+m, 5*m, 5*m, radius*0.6, true)
		roundedRect(z, ox+2*m, oy+2*m, 3*m, 3*m, radius*0.5, false)
	}
	z.Draw(dst, dst.Bounds(), image.NewUniform(colors.Foreground), image.Point{})
	return dst
}

// roundedRect 添加圆角矩形路径；hole 为 true 时逆时针绘制，用于挖空。
func roundedRect(z *vector.Rasterizer, x, y, w, h, r float32, hole bool) {
	r = float32(math.Min(float64(r), float64(min(w, h))/2))
	type pt struct{ x, y float32 }
	// 顺时针：上边 → 右上角 → 右边 → 右下角 → 下边 → 左下角 → 左边 → 左上角
	corners := [4][3]pt{
		{{x + w - r, y}, {x + w, y}, {x + w, y + r}},
		{{x + w, y + h - r}, {x + w, y + h}, {x + w - r, y + h}},
		{{x + r, y + h}, {x, y + h}, {x, y + h - r}},
		{{x, y + r}, {x, y}, {x + r, y}},
	}
	if hole {
		// 反向遍历得到逆时针路径
		z.MoveTo(x+r, y)
		for i := 3; i >= 0; i-- {
			c := corners[i]
			z.LineTo(c[2].x, c[2].y)
			z.QuadTo(c[1].x, c[1].y, c[0].x, c[0].y)
		}
		z.ClosePath()
		return
	}
	z.MoveTo(x+r, y)
	for _, c := range corners {
		z.LineTo(c[0].x, c[0].y)
		z.QuadTo(c[1].x, c[1].y, c[2].x, c[2].y)
	}
	z.ClosePath()
}

func circle(z *vector.Rasterizer, cx, cy, r float32) {
	const k = 0.5522847 // 四段三次贝塞尔近似圆
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k*r, cx+k*r, cy+r, cx, cy+r)
	z.CubeTo(cx-k*r, cy+r, cx-r, cy+k*r, cx-r, cy)
	z.CubeTo(cx-r, cy-k*r, cx-k*r, cy-r, cx, cy-r)
	z.CubeTo(cx+k*r, cy-r, cx+r, cy-k*r, cx+r, cy)
	z.ClosePath()
}

func unique(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
