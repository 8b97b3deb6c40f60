package server

import "github.com/ByLCY/labelsheet/layout"

// FormatDTO 是规格列表项，附带每页数量与兼容型号。
type FormatDTO struct {
	layout.LabelFormat
	RowsPerPage     int      `json:"rowsPerPage"`
	LabelsPerPage   int      `json:"labelsPerPage"`
	Orientation     string   `json:"currentOrientation"`
	CrossReferences []string `json:"crossReferences,omitempty"`
}

// LabelRequest 是 resolve / preview / export 的请求体。
// Settings 为空时使用已保存的打印配置。
type LabelRequest struct {
	Records  []layout.Record       `json:"records"`
	Settings *layout.PrintSettings `json:"settings,omitempty"`
	Meta     layout.DocumentMeta   `json:"meta"`
}

// ResolveResponse 返回解析链路与分页信息。
type ResolveResponse struct {
	Resolution    layout.Resolution `json:"resolution"`
	Orientation   string            `json:"orientation"`
	PageWidth     string            `json:"pageWidth"`
	PageHeight    string            `json:"pageHeight"`
	RowsPerPage   int               `json:"rowsPerPage"`
	LabelsPerPage int               `json:"labelsPerPage"`
	PageCount     int               `json:"pageCount"`
}

// OverrideRequest 修改单个自定义字段，value 为用户输入的原始文本（如 "2.5"、"3mm"）。
type OverrideRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// PresetRequest 的 name 为空时使用模板名加 " (custom)"。
type PresetRequest struct {
	Name string `json:"name"`
}

type PresetResponse struct {
	Preset   FormatDTO            `json:"preset"`
	Settings layout.PrintSettings `json:"settings"`
}
