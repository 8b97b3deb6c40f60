// Package server 以 HTTP API 暴露规格查询、布局解析、预览与导出。
package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/ByLCY/labelsheet/assets"
	"github.com/ByLCY/labelsheet/catalog"
	"github.com/ByLCY/labelsheet/internal/logger"
	"github.com/ByLCY/labelsheet/layout"
	"github.com/ByLCY/labelsheet/renderer"
	canvasrenderer "github.com/ByLCY/labelsheet/renderer/canvas"
	"github.com/ByLCY/labelsheet/renderer/preview"
	"github.com/ByLCY/labelsheet/settings"
)

// maxRecords 限制单次请求的记录数。
const maxRecords = 5000

type Service struct {
	catalog *catalog.Registry
	store   settings.Store
	icons   *assets.IconRasterizer
	pdf     *canvasrenderer.Renderer
	svg     *preview.Renderer
	dpi     int
}

// NewService wires the service; icons may be nil.
func NewService(reg *catalog.Registry, store settings.Store, icons *assets.IconRasterizer, dpi int) *Service {
	if reg == nil {
		reg = catalog.Builtin()
	}
	if dpi <= 0 {
		dpi = assets.DefaultDPI
	}
	return &Service{
		catalog: reg,
		store:   store,
		icons:   icons,
		pdf:     canvasrenderer.NewRenderer(),
		svg:     preview.NewRenderer(),
		dpi:     dpi,
	}
}

// ===== Formats =====

func (s *Service) Formats(query string) []FormatDTO {
	found := s.catalog.Search(query)
	out := make([]FormatDTO, 0, len(found))
	for _, f := range found {
		out = append(out, s.formatDTO(f))
	}
	return out
}

func (s *Service) Format(key string) (FormatDTO, error) {
	f, ok := s.catalog.Lookup(key, nil)
	if !ok {
		return FormatDTO{}, ErrNotFound(fmt.Sprintf("规格 %q 不存在", key))
	}
	return s.formatDTO(f), nil
}

func (s *Service) formatDTO(f layout.LabelFormat) FormatDTO {
	return FormatDTO{
		LabelFormat:     f,
		RowsPerPage:     layout.RowsPerPage(f),
		LabelsPerPage:   layout.LabelsPerPage(f),
		Orientation:     string(layout.CurrentOrientation(f)),
		CrossReferences: s.catalog.CrossReferences(f.Key),
	}
}

// ===== Settings =====

func (s *Service) Settings(ctx context.Context) (layout.PrintSettings, error) {
	ps, err := s.store.Load(ctx)
	if err != nil {
		return layout.PrintSettings{}, ErrInternal(err.Error())
	}
	return ps, nil
}

func (s *Service) SaveSettings(ctx context.Context, ps layout.PrintSettings) (layout.PrintSettings, error) {
	ps.Options = ps.Options.Normalize()
	if err := s.store.Save(ctx, ps); err != nil {
		return layout.PrintSettings{}, ErrInternal(err.Error())
	}
	return ps, nil
}

// SetOverride 修改一个自定义字段并保存。不带单位的输入按配置的显示单位解析，
// 无法解析的输入保持原值。
func (s *Service) SetOverride(ctx context.Context, req OverrideRequest) (layout.PrintSettings, error) {
	field := layout.OverrideField(req.Field)
	if !field.Valid() {
		return layout.PrintSettings{}, ErrInvalid(fmt.Sprintf("未知的自定义字段 %q", req.Field))
	}
	if strings.TrimSpace(req.Value) == "" {
		return layout.PrintSettings{}, ErrInvalid("value 不能为空")
	}
	ps, err := s.Settings(ctx)
	if err != nil {
		return layout.PrintSettings{}, err
	}
	ps.Custom = ps.Custom.SetOverride(field, req.Value, ps.DisplayUnit)
	ps.Custom.Customizing = true
	return s.SaveSettings(ctx, ps)
}

// ResetOverrides 清空自定义值，回到模板默认尺寸。
func (s *Service) ResetOverrides(ctx context.Context) (layout.PrintSettings, error) {
	ps, err := s.Settings(ctx)
	if err != nil {
		return layout.PrintSettings{}, err
	}
	ps.Custom = ps.Custom.ClearOverrides()
	return s.SaveSettings(ctx, ps)
}

// SavePreset 把当前生效的规格存为用户预设并切换过去。保存的是合并、缩放后
// 尚未乘字号倍数的规格，之后调整字号倍数不会叠加。
func (s *Service) SavePreset(ctx context.Context, req PresetRequest) (PresetResponse, error) {
	ps, err := s.Settings(ctx)
	if err != nil {
		return PresetResponse{}, err
	}
	res := layout.Resolve(s.catalog, layout.InputFromSettings(ps))
	preset := catalog.NewPreset(req.Name, res.Scaled)
	ps.Presets = append(ps.Presets, preset)
	ps.FormatKey = preset.Key
	ps.Custom = layout.CustomState{}
	saved, err := s.SaveSettings(ctx, ps)
	if err != nil {
		return PresetResponse{}, err
	}
	logger.L().Info("preset saved", "key", preset.Key, "from", res.Base.Key)
	return PresetResponse{Preset: s.formatDTO(preset), Settings: saved}, nil
}

// ===== Labels =====

func (s *Service) settingsFor(ctx context.Context, req LabelRequest) (layout.PrintSettings, error) {
	if req.Settings != nil {
		ps := *req.Settings
		ps.Options = ps.Options.Normalize()
		return ps, nil
	}
	return s.Settings(ctx)
}

func (s *Service) Resolve(ctx context.Context, req LabelRequest) (ResolveResponse, error) {
	ps, err := s.settingsFor(ctx, req)
	if err != nil {
		return ResolveResponse{}, err
	}
	res := layout.Resolve(s.catalog, layout.InputFromSettings(ps))
	pw, ph := layout.PageSize(res.Final)
	return ResolveResponse{
		Resolution:    res,
		Orientation:   string(layout.CurrentOrientation(res.Final)),
		PageWidth:     pw.String(),
		PageHeight:    ph.String(),
		RowsPerPage:   layout.RowsPerPage(res.Final),
		LabelsPerPage: layout.LabelsPerPage(res.Final),
		PageCount:     layout.PageCount(len(req.Records), res.Final),
	}, nil
}

// Layout 解析规格并排版全部记录。
func (s *Service) Layout(ctx context.Context, req LabelRequest) (*layout.Result, layout.PrintSettings, error) {
	if len(req.Records) == 0 {
		return nil, layout.PrintSettings{}, ErrInvalid("records 不能为空")
	}
	if len(req.Records) > maxRecords {
		return nil, layout.PrintSettings{}, ErrInvalid(fmt.Sprintf("单次最多 %d 条记录", maxRecords))
	}
	ps, err := s.settingsFor(ctx, req)
	if err != nil {
		return nil, layout.PrintSettings{}, err
	}
	res := layout.Resolve(s.catalog, layout.InputFromSettings(ps))
	result, err := layout.Build(req.Records, res, ps.Options, layout.BuildOptions{
		Typesetter: s.pdf,
		Palette:    layout.DefaultPalette(),
		Meta:       req.Meta,
	})
	if err != nil {
		return nil, layout.PrintSettings{}, ErrInvalid(err.Error())
	}
	return result, ps, nil
}

func (s *Service) images(ctx context.Context, result *layout.Result) (renderer.Images, error) {
	qrs := assets.NewQRProvider(assets.QRStyle{Dots: result.Options.QRDotStyle, Corners: result.Options.QRCornerStyle})
	images, err := assets.Collect(ctx, result, qrs, s.icons, s.dpi)
	if err != nil {
		return renderer.Images{}, ErrInternal(err.Error())
	}
	return images, nil
}

// Preview 返回布局结果与 SVG 预览。
func (s *Service) Preview(ctx context.Context, req LabelRequest) (*layout.Result, []byte, error) {
	result, _, err := s.Layout(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	images, err := s.images(ctx, result)
	if err != nil {
		return nil, nil, err
	}
	svg, err := s.svg.Render(result, images)
	if err != nil {
		return nil, nil, ErrInternal(err.Error())
	}
	return result, svg, nil
}

// Export 生成 PDF。
func (s *Service) Export(ctx context.Context, req LabelRequest) ([]byte, error) {
	result, _, err := s.Layout(ctx, req)
	if err != nil {
		return nil, err
	}
	images, err := s.images(ctx, result)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(result, images)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	logger.L().Info("labels exported", "format", result.Format.Key, "records", len(req.Records), "pages", len(result.Pages))
	return data, nil
}
