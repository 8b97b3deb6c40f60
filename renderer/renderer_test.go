package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ByLCY/labelsheet/layout"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码 PNG 失败: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImages(t *testing.T) {
	im := Images{
		QR:    map[string][]byte{"A1": pngBytes(t), "EMPTY": nil},
		Icons: map[string][]byte{"wrench": pngBytes(t)},
	}
	d, err := im.Decode()
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if _, ok := d.Image(layout.ImageBox{Kind: layout.ImageQR, Key: "A1"}); !ok {
		t.Fatalf("缺少二维码 A1")
	}
	if _, ok := d.Image(layout.ImageBox{Kind: layout.ImageQR, Key: "EMPTY"}); ok {
		t.Fatalf("空数据不应被解码")
	}
	if _, ok := d.Image(layout.ImageBox{Kind: layout.ImageIcon, Key: "wrench"}); !ok {
		t.Fatalf("缺少图标 wrench")
	}
	if _, ok := im.Bytes(layout.ImageBox{Kind: layout.ImageIcon, Key: "hammer"}); ok {
		t.Fatalf("不存在的图标不应返回数据")
	}
}

func TestDecodeRejectsCorruptImage(t *testing.T) {
	im := Images{QR: map[string][]byte{"A1": []byte("not an image")}}
	if _, err := im.Decode(); err == nil {
		t.Fatalf("损坏的图片应导致解码失败")
	}
}
