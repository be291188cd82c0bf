package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/yi-nology/asset_bridge/biz/handler"
	"github.com/yi-nology/asset_bridge/biz/handler/version"
	"github.com/yi-nology/asset_bridge/biz/middleware"
	"github.com/yi-nology/asset_bridge/pkg/lock"
)

// writeKey serialises handlers that write into the public directory.
const writeKey = "public-write"

// RegisterCDNRoutes configures HTTP routes for the publishing pipeline.
func RegisterCDNRoutes(r *server.Hertz, h *handler.CDNHandler, locker lock.Locker) {
	if h == nil {
		return
	}
	writeMw := middleware.Serialize(locker, writeKey)

	r.GET("/cdn/upload", append(writeMw, h.Transfer)...)

	v1 := r.Group("/api/v1")
	v1.GET("/image", h.Image)
	v1.POST("/upload", h.Upload)
	v1.GET("/asset-url", h.AssetURL)
	v1.GET("/manifest-url", h.ManifestURL)
	v1.GET("/publications", h.Publications)
	v1.POST("/push", append(writeMw, h.Push)...)
	v1.GET("/version", version.GetVersion)

	r.GET("/ping", handler.Ping)
}
