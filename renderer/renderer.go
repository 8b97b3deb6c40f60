package renderer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ByLCY/labelsheet/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF 或 SVG 预览。
// images 必须在调用前全部就绪，渲染过程中不会再获取图片。
type Renderer interface {
	Render(result *layout.Result, images Images) ([]byte, error)
}

// Images 保存外部协作者预先生成的图片（PNG/JPEG/GIF 字节）。
// QR 以记录 ID 为 key，Icons 以图标 key 为 key；缺少的条目在渲染时跳过。
type Images struct {
	QR    map[string][]byte
	Icons map[string][]byte
}

// Bytes 返回 box 对应的原始图片数据。
func (im Images) Bytes(box layout.ImageBox) ([]byte, bool) {
	var m map[string][]byte
	switch box.Kind {
	case layout.ImageQR:
		m = im.QR
	case layout.ImageIcon:
		m = im.Icons
	}
	data, ok := m[box.Key]
	return data, ok && len(data) > 0
}

// Decoded 是解码后的图片集合。
type Decoded struct {
	QR    map[string]image.Image
	Icons map[string]image.Image
}

// Image 返回 box 对应的图片。
func (d Decoded) Image(box layout.ImageBox) (image.Image, bool) {
	var m map[string]image.Image
	switch box.Kind {
	case layout.ImageQR:
		m = d.QR
	case layout.ImageIcon:
		m = d.Icons
	}
	img, ok := m[box.Key]
	return img, ok
}

// Decode 一次性解码全部图片；任一图片无法解码即返回错误，保证不会输出半成品文档。
func (im Images) Decode() (Decoded, error) {
	qr, err := decodeAll("二维码", im.QR)
	if err != nil {
		return Decoded{}, err
	}
	icons, err := decodeAll("图标", im.Icons)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{QR: qr, Icons: icons}, nil
}

func decodeAll(kind string, blobs map[string][]byte) (map[string]image.Image, error) {
	out := make(map[string]image.Image, len(blobs))
	for key, blob := range blobs {
		if len(blob) == 0 {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码%s %s 失败: %w", kind, key, err)
		}
		out[key] = img
	}
	return out, nil
}
