package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"path"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/labelsheet/internal/logger"
)

// iconExts 是按顺序尝试的图标文件扩展名。
var iconExts = []string{".png", ".jpg", ".jpeg", ".gif"}

// IconRasterizer 从文件系统读取图标（<key>.png 等）并缩放为正方形 PNG。
type IconRasterizer struct {
	fsys        fs.FS
	Concurrency int
}

// NewIconRasterizer creates a rasterizer reading icons from fsys.
func NewIconRasterizer(fsys fs.FS) *IconRasterizer {
	return &IconRasterizer{fsys: fsys, Concurrency: 8}
}

// errIconNotFound 表示图标不存在，批量渲染时静默跳过。
var errIconNotFound = errors.New("icon not found")

// Render 将单个图标缩放到 pixelSize × pixelSize（保持比例、居中、透明背景）。
func (r *IconRasterizer) Render(key string, pixelSize int) ([]byte, error) {
	if pixelSize <= 0 {
		return nil, fmt.Errorf("图标尺寸无效：%d", pixelSize)
	}
	src, err := r.open(key)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("图标 %s 尺寸为空", key)
	}
	scale := float64(pixelSize) / float64(max(b.Dx(), b.Dy()))
	w, h := max(1, int(float64(b.Dx())*scale+0.5)), max(1, int(float64(b.Dy())*scale+0.5))
	x0, y0 := (pixelSize-w)/2, (pixelSize-h)/2

	dst := image.NewNRGBA(image.Rect(0, 0, pixelSize, pixelSize))
	xdraw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), src, b, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("编码图标 %s 失败: %w", key, err)
	}
	return buf.Bytes(), nil
}

// BatchRender 并发渲染一组图标。无法解析的 key（不存在或无法解码）会被静默省略。
func (r *IconRasterizer) BatchRender(ctx context.Context, keys []string, pixelSize int) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Concurrency))
	for _, key := range unique(keys) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := r.Render(key, pixelSize)
			switch {
			case errors.Is(err, errIconNotFound):
				logger.L().Debug("icon not found", "key", key)
				return nil
			case err != nil:
				logger.L().Warn("icon skipped", "key", key, "err", err)
				return nil
			}
			mu.Lock()
			out[key] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *IconRasterizer) open(key string) (image.Image, error) {
	if r.fsys == nil {
		return nil, errIconNotFound
	}
	name := strings.TrimSpace(key)
	if name == "" || !fs.ValidPath(name) || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%w: %q", errIconNotFound, key)
	}
	for _, ext := range iconExts {
		data, err := fs.ReadFile(r.fsys, path.Clean(name+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("读取图标 %s 失败: %w", key, err)
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("解码图标 %s 失败: %w", key, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: %q", errIconNotFound, key)
}
