package router

import (
	"path/filepath"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// RegisterPublicFiles serves publicDir for every request no route matched,
// so local asset URLs keep working while publishing is bypassed.
func RegisterPublicFiles(r *server.Hertz, publicDir string) {
	if publicDir == "" {
		return
	}
	root, err := filepath.Abs(publicDir)
	if err != nil {
		hlog.Warnf("[http] public dir %s: %v", publicDir, err)
		return
	}
	fs := &app.FS{
		Root:            root,
		AcceptByteRange: true,
		Compress:        false,
	}
	r.NoRoute(fs.NewRequestHandler())
}
