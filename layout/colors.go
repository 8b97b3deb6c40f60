package layout

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// PaletteEntry 是一种记录颜色：卡片/色条填充色与其上的对比文字色。
type PaletteEntry struct {
	Fill Color `json:"fill"`
	Text Color `json:"text"`
}

// Palette 把记录的颜色 key 映射为颜色。
type Palette map[string]PaletteEntry

var (
	inkColor   = Color{R: 30, G: 30, B: 30}
	paperColor = Color{R: 255, G: 255, B: 255}
	// NeutralCardColor 用于没有颜色（或颜色 key 无法识别）的记录的卡片
	NeutralCardColor = Color{R: 241, G: 243, B: 245}
)

// NeutralEntry 返回浅灰卡片配深色文字，二维码保持深色前景。
func NeutralEntry() PaletteEntry { return entryFor(NeutralCardColor) }

// DefaultPalette 返回内置调色板。
func DefaultPalette() Palette {
	p := Palette{}
	for key, hex := range map[string]string{
		"red":    "#E5484D",
		"orange": "#F76B15",
		"yellow": "#FFC53D",
		"green":  "#30A46C",
		"teal":   "#12A594",
		"blue":   "#0090FF",
		"indigo": "#3E63DD",
		"purple": "#8E4EC6",
		"pink":   "#D6409F",
		"brown":  "#AD7F58",
		"gray":   "#8B8D98",
		"black":  "#1C2024",
	} {
		c, _ := parseColor(hex)
		p[key] = entryFor(c)
	}
	return p
}

// Lookup 查找颜色 key（大小写不敏感），也接受 "#RRGGBB" 形式的直接颜色值。
func (p Palette) Lookup(key string) (PaletteEntry, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return PaletteEntry{}, false
	}
	if e, ok := p[key]; ok {
		return e, true
	}
	if strings.HasPrefix(key, "#") {
		if c, err := parseColor(key); err == nil {
			return entryFor(c), true
		}
	}
	return PaletteEntry{}, false
}

func entryFor(c Color) PaletteEntry {
	// 相对亮度较高的颜色用深色文字
	lum := 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
	text := paperColor
	if lum > 150 {
		text = inkColor
	}
	return PaletteEntry{Fill: c, Text: text}
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	for _, r := range value {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
	}
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{
			R: mustHex(r),
			G: mustHex(g),
			B: mustHex(b),
		}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

// ContrastColor 返回在 c 上可读的文字/前景色。
func ContrastColor(c Color) Color {
	return entryFor(c).Text
}

// NRGBA converts the color to an opaque color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}
