package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ByLCY/labelsheet/renderer/preview"
	"github.com/ByLCY/labelsheet/settings"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/formats", h.ListFormats)
	r.GET("/formats/:key", h.GetFormat)
	r.POST("/labels/resolve", h.Resolve)
	r.POST("/labels/preview", h.Preview)
	r.POST("/labels/export", h.Export)
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.PutSettings)
	r.PUT("/settings/overrides", h.SetOverride)
	r.DELETE("/settings/overrides", h.ResetOverrides)
	r.POST("/settings/presets", h.SavePreset)
}

// GET /formats?q=
func (h *Handler) ListFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.svc.Formats(c.Query("q"))})
}

// GET /formats/:key
func (h *Handler) GetFormat(c *gin.Context) {
	f, err := h.svc.Format(c.Param("key"))
	if err != nil {
		c.JSON(toHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) bind(c *gin.Context) (LabelRequest, bool) {
	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(ErrInvalid("invalid json: "+err.Error())))
		return LabelRequest{}, false
	}
	return req, true
}

// POST /labels/resolve
func (h *Handler) Resolve(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.svc.Resolve(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /labels/preview[?format=json]
func (h *Handler) Preview(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	result, svg, err := h.svc.Preview(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), newErrDTO(err))
		return
	}
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, preview.Describe(result))
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

// POST /labels/export
func (h *Handler) Export(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	data, err := h.svc.Export(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), newErrDTO(err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="labels.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// GET /settings
func (h *Handler) GetSettings(c *gin.Context) {
	ps, err := h.svc.Settings(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusOK, ps)
}

// PUT /settings
func (h *Handler) PutSettings(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(ErrInvalid(err.Error())))
		return
	}
	ps, err := settings.Decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(ErrInvalid(err.Error())))
		return
	}
	saved, err := h.svc.SaveSettings(c.Request.Context(), ps)
	if err != nil {
		c.JSON(toHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusOK, saved)
}

// PUT /settings/overrides
func (h *Handler) SetOverride(c *gin.Context) {
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(ErrInvalid("invalid json: "+err.Error())))
		return
	}
	ps, err := h.svc.SetOverride(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusOK, ps)
}

// DELETE /settings/overrides
func (h *Handler) ResetOverrides(c *gin.Context) {
	ps, err := h.svc.ResetOverrides(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusOK, ps)
}

// POST /settings/presets
func (h *Handler) SavePreset(c *gin.Context) {
	var req PresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(ErrInvalid("invalid json: "+err.Error())))
		return
	}
	out, err := h.svc.SavePreset(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusCreated, out)
}
