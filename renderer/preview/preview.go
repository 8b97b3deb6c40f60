// Package preview 生成交互预览用的 SVG。它与 PDF 渲染器消费同一份 layout.Result，
// 因此两者的比例逐元素一致；SVG 使用 pt 作为用户单位，不做任何单位换算。
package preview

import (
	"encoding/base64"
	"fmt"
	"html"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/ByLCY/labelsheet/layout"
	"github.com/ByLCY/labelsheet/renderer"
)

const svgMime = "image/svg+xml"

// PageGapPt 是多页预览中页面之间的竖向间距。
const PageGapPt = 18.0

// NodeKind 区分预览节点类型。
type NodeKind string

const (
	NodeRect   NodeKind = "rect"
	NodeCircle NodeKind = "circle"
	NodeImage  NodeKind = "image"
	NodeText   NodeKind = "text"
)

// Document 是预览的绘制描述，可直接序列化为 JSON 交给前端自行绘制。
type Document struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Pages  []PageNode `json:"pages"`
}

// PageNode 描述一页，OffsetY 是该页在整体画布中的纵向偏移。
type PageNode struct {
	Index     int     `json:"index"`
	OffsetY   float64 `json:"offsetY"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Landscape bool    `json:"landscape"`
	Nodes     []Node  `json:"nodes"`
}

// Node 是一个绘制元素，坐标相对于所在页面左上角（pt）。
type Node struct {
	Kind     NodeKind         `json:"kind"`
	Slot     int              `json:"slot"`
	X        float64          `json:"x,omitempty"`
	Y        float64          `json:"y,omitempty"`
	Width    float64          `json:"width,omitempty"`
	Height   float64          `json:"height,omitempty"`
	R        float64          `json:"r,omitempty"`
	Fill     string           `json:"fill,omitempty"`
	Image    layout.ImageKind `json:"image,omitempty"`
	Key      string           `json:"key,omitempty"`
	Text     string           `json:"text,omitempty"`
	FontSize float64          `json:"fontSize,omitempty"`
	Font     layout.FontRole  `json:"font,omitempty"`
	Anchor   string           `json:"anchor,omitempty"`
}

// Describe 把布局结果转换为节点树。绘制顺序与 PDF 渲染器相同。
func Describe(result *layout.Result) Document {
	doc := Document{}
	if result == nil {
		return doc
	}
	offset := 0.0
	for i, page := range result.Pages {
		if i > 0 {
			offset += PageGapPt
		}
		pn := PageNode{
			Index:     page.Index,
			OffsetY:   offset,
			Width:     page.Width,
			Height:    page.Height,
			Landscape: page.Landscape,
		}
		for _, lb := range page.Labels {
			pn.Nodes = append(pn.Nodes, labelNodes(lb)...)
		}
		doc.Pages = append(doc.Pages, pn)
		doc.Width = max(doc.Width, page.Width)
		offset += page.Height
	}
	doc.Height = offset
	return doc
}

func labelNodes(lb layout.Label) []Node {
	var nodes []Node
	add := func(n Node) {
		n.Slot = lb.Slot
		nodes = append(nodes, n)
	}
	image := func(box layout.ImageBox) {
		add(Node{Kind: NodeImage, X: box.X, Y: box.Y, Width: box.Width, Height: box.Height, Image: box.Kind, Key: box.Key})
	}

	if c := lb.Card; c != nil {
		add(Node{Kind: NodeRect, X: c.X, Y: c.Y, Width: c.Width, Height: c.Height, R: c.Radius, Fill: c.Fill.Hex()})
	}
	if lb.QR != nil {
		image(*lb.QR)
	}
	if ov := lb.Overlay; ov != nil {
		add(Node{Kind: NodeCircle, X: ov.CX, Y: ov.CY, R: ov.R, Fill: ov.Fill.Hex()})
		image(ov.Icon)
	}
	if lb.Icon != nil {
		image(*lb.Icon)
	}
	if row := lb.Code; row != nil {
		for _, g := range row.Glyphs {
			add(Node{
				Kind: NodeText, X: g.CenterX(), Y: row.Baseline, Text: g.Char,
				FontSize: row.FontSize, Font: layout.FontMono, Anchor: "middle", Fill: row.Color.Hex(),
			})
		}
	}
	for _, tb := range lb.Texts {
		if tb.Content == "" {
			continue
		}
		add(Node{
			Kind: NodeText, X: tb.AnchorX(), Y: tb.Baseline, Text: tb.Content,
			FontSize: tb.FontSize, Font: tb.Font, Anchor: anchor(tb.Align), Fill: tb.Color.Hex(),
		})
	}
	if s := lb.Swatch; s != nil {
		add(Node{Kind: NodeRect, X: s.X, Y: s.Y, Width: s.Width, Height: s.Height, R: s.Radius, Fill: s.Fill.Hex()})
	}
	return nodes
}

func anchor(a layout.TextAlign) string {
	switch a {
	case layout.AlignCenter:
		return "middle"
	case layout.AlignRight:
		return "end"
	default:
		return "start"
	}
}

// Renderer 输出压缩后的 SVG 预览。
type Renderer struct {
	m *minify.M
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer creates a preview renderer.
func NewRenderer() *Renderer {
	m := minify.New()
	m.AddFunc(svgMime, svg.Minify)
	return &Renderer{m: m}
}

// Render 生成 SVG。图片以 data URI 内嵌；缺失的图片跳过，无法解码的图片导致整体失败。
func (r *Renderer) Render(result *layout.Result, images renderer.Images) ([]byte, error) {
	if result == nil || len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	if _, err := images.Decode(); err != nil {
		return nil, fmt.Errorf("准备图片失败: %w", err)
	}
	doc := Describe(result)
	raw := r.markup(doc, images)
	out, err := r.m.Bytes(svgMime, raw)
	if err != nil {
		return nil, fmt.Errorf("压缩 SVG 失败: %w", err)
	}
	return out, nil
}

func (r *Renderer) markup(doc Document, images renderer.Images) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%spt" height="%spt" viewBox="0 0 %s %s">`,
		num(doc.Width), num(doc.Height), num(doc.Width), num(doc.Height))
	b.WriteString("\n")
	uris := map[string]string{}
	for _, page := range doc.Pages {
		fmt.Fprintf(&b, `<g class="page" data-index="%d" transform="translate(0 %s)">`, page.Index, num(page.OffsetY))
		fmt.Fprintf(&b, `<rect width="%s" height="%s" fill="#ffffff" stroke="#d0d0d0" stroke-width="0.5"/>`,
			num(page.Width), num(page.Height))
		b.WriteString("\n")
		for _, n := range page.Nodes {
			writeNode(&b, n, images, uris)
		}
		b.WriteString("</g>\n")
	}
	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func writeNode(b *strings.Builder, n Node, images renderer.Images, uris map[string]string) {
	switch n.Kind {
	case NodeRect:
		fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s"/>`,
			num(n.X), num(n.Y), num(n.Width), num(n.Height), num(n.R), n.Fill)
	case NodeCircle:
		fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`, num(n.X), num(n.Y), num(n.R), n.Fill)
	case NodeImage:
		uri, ok := dataURI(n, images, uris)
		if !ok {
			return
		}
		fmt.Fprintf(b, `<image x="%s" y="%s" width="%s" height="%s" href="%s"/>`,
			num(n.X), num(n.Y), num(n.Width), num(n.Height), uri)
	case NodeText:
		fmt.Fprintf(b, `<text x="%s" y="%s" font-size="%s" %s text-anchor="%s" fill="%s">%s</text>`,
			num(n.X), num(n.Y), num(n.FontSize), fontAttrs(n.Font), n.Anchor, n.Fill, html.EscapeString(n.Text))
	}
	b.WriteString("\n")
}

func dataURI(n Node, images renderer.Images, cache map[string]string) (string, bool) {
	cacheKey := string(n.Image) + ":" + n.Key
	if uri, ok := cache[cacheKey]; ok {
		return uri, true
	}
	data, ok := images.Bytes(layout.ImageBox{Kind: n.Image, Key: n.Key})
	if !ok {
		return "", false
	}
	uri := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	cache[cacheKey] = uri
	return uri, true
}

func fontAttrs(f layout.FontRole) string {
	switch f {
	case layout.FontBold:
		return `font-family="Go, sans-serif" font-weight="bold"`
	case layout.FontMono:
		return `font-family="Go Mono, monospace"`
	default:
		return `font-family="Go, sans-serif"`
	}
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
