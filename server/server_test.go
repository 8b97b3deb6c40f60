package server_test

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/labelsheet/catalog"
	"github.com/ByLCY/labelsheet/layout"
	"github.com/ByLCY/labelsheet/renderer/preview"
	"github.com/ByLCY/labelsheet/server"
	"github.com/ByLCY/labelsheet/settings"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) (*gin.Engine, *settings.MemoryStore) {
	t.Helper()
	store := &settings.MemoryStore{}
	svc := server.NewService(catalog.Builtin(), store, nil, 72)
	return server.NewRouter(svc, server.RouterOptions{Dev: true}), store
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func records(n int) []layout.Record {
	out := make([]layout.Record, n)
	for i := range out {
		id := "BIN" + strings.Repeat("7", i%3+1)
		out[i] = layout.Record{ID: id, ShortCode: id, Name: "Hex bolts", ColorKey: "blue", AreaName: "Aisle 4"}
	}
	return out
}

type errBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("错误响应不是 JSON: %v (%s)", err, w.Body.String())
	}
	return body.Error.Code
}

func TestHealthz(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz 响应错误: %d %q", w.Code, w.Body.String())
	}
}

func TestListFormatsSearch(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/formats?q=8160", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d", w.Code)
	}
	var body struct {
		Items []server.FormatDTO `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	var keys []string
	for _, it := range body.Items {
		keys = append(keys, it.Key)
	}
	if diff := cmp.Diff([]string{"avery-5160", "avery-l7160"}, keys); diff != "" {
		t.Fatalf("搜索结果不符 (-want +got):\n%s", diff)
	}
}

func TestGetFormat(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/formats/avery-5160", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d: %s", w.Code, w.Body.String())
	}
	var f server.FormatDTO
	if err := json.Unmarshal(w.Body.Bytes(), &f); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if f.Columns != 3 || f.LabelsPerPage != 30 || f.RowsPerPage != 10 {
		t.Fatalf("avery-5160 信息错误: %+v", f)
	}
	if f.CellWidth.ToIN() != 2.625 {
		t.Fatalf("单元格宽度错误: %v", f.CellWidth)
	}

	w = do(t, r, http.MethodGet, "/api/v1/formats/nope", nil)
	if w.Code != http.StatusNotFound || decodeErr(t, w) != "NOT_FOUND" {
		t.Fatalf("未知规格应返回 404 NOT_FOUND，实际 %d %s", w.Code, w.Body.String())
	}
}

func TestResolveFallsBackToFirstFormat(t *testing.T) {
	r, _ := newRouter(t)
	ps := layout.DefaultPrintSettings()
	ps.FormatKey = "unknown-key"
	w := do(t, r, http.MethodPost, "/api/v1/labels/resolve", server.LabelRequest{Records: records(31), Settings: &ps})
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d: %s", w.Code, w.Body.String())
	}
	var res server.ResolveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if res.Resolution.Final.Key != "avery-5160" {
		t.Fatalf("未知 key 应回退到第一个规格，实际 %q", res.Resolution.Final.Key)
	}
	if res.LabelsPerPage != 30 || res.PageCount != 2 {
		t.Fatalf("分页信息错误: %+v", res)
	}
}

func TestPreviewSVGAndJSON(t *testing.T) {
	r, _ := newRouter(t)
	req := server.LabelRequest{Records: records(4)}
	w := do(t, r, http.MethodPost, "/api/v1/labels/preview", req)
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Fatalf("Content-Type 错误: %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<svg") {
		t.Fatalf("响应不是 SVG")
	}

	w = do(t, r, http.MethodPost, "/api/v1/labels/preview?format=json", req)
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d: %s", w.Code, w.Body.String())
	}
	var doc preview.Document
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(doc.Pages) != 1 || len(doc.Pages[0].Nodes) == 0 {
		t.Fatalf("预览节点为空: %+v", doc)
	}
}

func TestPreviewRejectsEmptyRecords(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/labels/preview", server.LabelRequest{})
	if w.Code != http.StatusBadRequest || decodeErr(t, w) != "INVALID_ARGUMENT" {
		t.Fatalf("空记录应返回 400，实际 %d %s", w.Code, w.Body.String())
	}
}

func TestPreviewRejectsBadJSON(t *testing.T) {
	r, _ := newRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/labels/preview", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("非法 JSON 应返回 400，实际 %d", w.Code)
	}
}

func TestExportPDF(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/labels/export", server.LabelRequest{
		Records: records(35),
		Meta:    layout.DocumentMeta{Title: "Shelf labels"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d: %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("响应不是 PDF")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "labels.pdf") {
		t.Fatalf("缺少附件文件名: %q", cd)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	r, store := newRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d", w.Code)
	}
	var got layout.PrintSettings
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if diff := cmp.Diff(layout.DefaultPrintSettings(), got); diff != "" {
		t.Fatalf("默认配置不符 (-want +got):\n%s", diff)
	}

	w = do(t, r, http.MethodPut, "/api/v1/settings", map[string]any{
		"formatKey": "avery-5163",
		"options":   map[string]any{"showQrCode": true, "fontScale": 3},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d: %s", w.Code, w.Body.String())
	}
	if store.Saves() != 1 {
		t.Fatalf("应保存一次，实际 %d", store.Saves())
	}
	saved, _ := store.Load(t.Context())
	if saved.FormatKey != "avery-5163" || saved.Options.FontScale != layout.FontScaleNormal {
		t.Fatalf("保存的配置错误: %+v", saved)
	}

	w = do(t, r, http.MethodPut, "/api/v1/settings", "not an object")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("非法配置应返回 400，实际 %d", w.Code)
	}
}

func TestSettingsOverrides(t *testing.T) {
	r, store := newRouter(t)
	ps := layout.DefaultPrintSettings()
	ps.FormatKey = "avery-5160"
	ps.DisplayUnit = layout.UnitMM
	if err := store.Save(t.Context(), ps); err != nil {
		t.Fatal(err)
	}

	// 不带单位的输入按显示单位 mm 解析
	w := do(t, r, http.MethodPut, "/api/v1/settings/overrides", map[string]string{"field": "cellWidth", "value": "63.5"})
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d: %s", w.Code, w.Body.String())
	}
	saved, _ := store.Load(t.Context())
	if !saved.Custom.Customizing || saved.Custom.Overrides.CellWidth == nil || math.Abs(*saved.Custom.Overrides.CellWidth-2.5) > 1e-9 {
		t.Fatalf("自定义值保存错误: %+v", saved.Custom)
	}

	w = do(t, r, http.MethodPost, "/api/v1/labels/resolve", map[string]any{"records": records(1)})
	var res server.ResolveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if got := res.Resolution.Custom.CellWidth.ToIN(); math.Abs(got-2.5) > 1e-9 {
		t.Fatalf("解析结果应使用自定义宽度 2.5in，实际 %g", got)
	}

	w = do(t, r, http.MethodPut, "/api/v1/settings/overrides", map[string]string{"field": "bogus", "value": "1"})
	if w.Code != http.StatusBadRequest || decodeErr(t, w) != "INVALID_ARGUMENT" {
		t.Fatalf("未知字段应返回 400，实际 %d", w.Code)
	}

	w = do(t, r, http.MethodDelete, "/api/v1/settings/overrides", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 %d", w.Code)
	}
	saved, _ = store.Load(t.Context())
	if saved.Custom.Overrides.CellWidth != nil || !saved.Custom.Customizing {
		t.Fatalf("重置后应清空覆盖值并保持自定义模式: %+v", saved.Custom)
	}
}

func TestSavePreset(t *testing.T) {
	r, store := newRouter(t)
	ps := layout.DefaultPrintSettings()
	ps.FormatKey = "avery-5160"
	ps.Options.FontScale = layout.FontScaleLarge
	if err := store.Save(t.Context(), ps); err != nil {
		t.Fatal(err)
	}
	do(t, r, http.MethodPut, "/api/v1/settings/overrides", map[string]string{"field": "qrSize", "value": "0.75in"})

	w := do(t, r, http.MethodPost, "/api/v1/settings/presets", map[string]string{"name": "Bench bins"})
	if w.Code != http.StatusCreated {
		t.Fatalf("状态码 %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Preset   layout.LabelFormat   `json:"preset"`
		Settings layout.PrintSettings `json:"settings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if !catalog.IsPreset(out.Preset.Key) || out.Preset.Name != "Bench bins" {
		t.Fatalf("预设 key/名称错误: %s %q", out.Preset.Key, out.Preset.Name)
	}
	if got := out.Preset.QRSize.ToIN(); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("预设应包含自定义的二维码尺寸，实际 %g", got)
	}
	base := catalog.Builtin().Format("avery-5160", nil)
	if out.Preset.NameFontSize != base.NameFontSize {
		t.Fatalf("预设不应带入字号倍数: %v vs %v", out.Preset.NameFontSize, base.NameFontSize)
	}

	saved, _ := store.Load(t.Context())
	if saved.FormatKey != out.Preset.Key || len(saved.Presets) != 1 || saved.Custom.Customizing {
		t.Fatalf("保存预设后应切换到预设: %+v", saved)
	}
	w = do(t, r, http.MethodPost, "/api/v1/labels/resolve", map[string]any{"records": records(1)})
	var res server.ResolveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if res.Resolution.Base.Key != out.Preset.Key {
		t.Fatalf("解析应使用预设，实际 %s", res.Resolution.Base.Key)
	}
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/nothing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("未知路由应返回 404，实际 %d", w.Code)
	}
}
