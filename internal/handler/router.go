package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups everything RegisterRoutes mounts. Nil handlers leave their
// routes unregistered.
type Handlers struct {
	Modules  *ModuleHandler
	Uploads  *UploadHandler
	Outlines *OutlineHandler
	Slides   *SlideHandler
	Metrics  *MetricsHandler
}

// DownloadPath is the route, relative to the API prefix, that redeems local
// slide tokens.
const DownloadPath = "/slides/download"

// RegisterRoutes mounts the portal API under prefix.
func RegisterRoutes(r gin.IRouter, prefix string, h Handlers) {
	api := r.Group(prefix)

	if h.Modules != nil {
		modules := api.Group("/modules")
		modules.GET("", h.Modules.List)
		modules.POST("", h.Modules.Create)
		modules.GET("/terms", h.Modules.Terms)
		modules.GET("/export.csv", h.Modules.ExportCSV)
		modules.DELETE("", h.Modules.Delete)
		modules.DELETE("/:id", h.Modules.Delete)
	}
	if h.Outlines != nil {
		api.GET("/modules/:id/outline", h.Outlines.Get)
		api.GET("/modules/:id/outline.pdf", h.Outlines.PDF)
	}
	if h.Slides != nil {
		api.GET("/modules/:id/topics/:topic/slides", h.Slides.Reference)
		api.GET(DownloadPath, h.Slides.Download)
	}
	if h.Uploads != nil {
		api.POST("/upload", h.Uploads.UploadOutline)
		api.POST("/uploadppt", h.Uploads.UploadSlides)
		api.POST("/chat", h.Uploads.Chat)
	}
	if h.Metrics != nil {
		api.GET("/metrics/summary", h.Metrics.Summary)
	}
}
