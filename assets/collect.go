package assets

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/labelsheet/layout"
	"github.com/ByLCY/labelsheet/renderer"
)

// DefaultDPI 是生成图片时使用的打印分辨率。
const DefaultDPI = 300

// PixelSize 将 pt 尺寸换算为给定 DPI 下的像素边长，至少为 1。
func PixelSize(pt float64, dpi int) int {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return max(1, int(math.Ceil(pt/layout.PtPerInch*float64(dpi))))
}

// Request 汇总一次渲染需要的全部图片。
type Request struct {
	QRIDs      []string
	QRColors   map[string]QRColors
	QRPixels   int
	IconKeys   []string
	IconPixels int
}

// RequestFor 扫描布局结果，收集二维码 ID、彩色卡片的配色与图标 key。
// 像素尺寸取所有标签中最大的图像框。
func RequestFor(result *layout.Result, dpi int) Request {
	req := Request{QRColors: map[string]QRColors{}}
	var qrPt, iconPt float64
	for _, page := range result.Pages {
		for _, lb := range page.Labels {
			if lb.QR != nil {
				req.QRIDs = append(req.QRIDs, lb.QR.Key)
				qrPt = math.Max(qrPt, lb.QR.Width)
				if lb.Card != nil {
					req.QRColors[lb.QR.Key] = QRColors{
						Foreground: layout.ContrastColor(lb.Card.Fill).NRGBA(),
						Background: lb.Card.Fill.NRGBA(),
					}
				}
			}
			if lb.Overlay != nil {
				req.IconKeys = append(req.IconKeys, lb.Overlay.Icon.Key)
				iconPt = math.Max(iconPt, lb.Overlay.Icon.Width)
			}
			if lb.Icon != nil {
				req.IconKeys = append(req.IconKeys, lb.Icon.Key)
				iconPt = math.Max(iconPt, lb.Icon.Width)
			}
		}
	}
	req.QRIDs = unique(req.QRIDs)
	req.IconKeys = unique(req.IconKeys)
	req.QRPixels = PixelSize(qrPt, dpi)
	req.IconPixels = PixelSize(iconPt, dpi)
	return req
}

// Collect 并发获取二维码与图标，全部完成后才返回，渲染器拿到的总是完整的图片集合。
func Collect(ctx context.Context, result *layout.Result, qrs *QRProvider, icons *IconRasterizer, dpi int) (renderer.Images, error) {
	req := RequestFor(result, dpi)
	var images renderer.Images
	g, ctx := errgroup.WithContext(ctx)
	if qrs != nil && len(req.QRIDs) > 0 {
		g.Go(func() error {
			m, err := qrs.BatchGenerate(ctx, req.QRIDs, req.QRPixels, req.QRColors)
			images.QR = m
			return err
		})
	}
	if icons != nil && len(req.IconKeys) > 0 {
		g.Go(func() error {
			m, err := icons.BatchRender(ctx, req.IconKeys, req.IconPixels)
			images.Icons = m
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return renderer.Images{}, err
	}
	return images, nil
}
