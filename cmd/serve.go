package cmd

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/spf13/cobra"
	"github.com/yi-nology/asset_bridge/biz/handler"
	"github.com/yi-nology/asset_bridge/biz/middleware"
	"github.com/yi-nology/asset_bridge/biz/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Files below the public directory are served for
every path no API route claims, so local URLs work in bypass mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		h := newServer(a, server.WithHostPorts(cfg.Server.Address))
		h.Spin()
		return nil
	},
}

func newServer(a *app, opts ...hertzconfig.Option) *server.Hertz {
	h := server.Default(opts...)
	h.Use(middleware.Recovery(), middleware.Logging(), middleware.CORS(&a.cfg.CORS))
	router.RegisterCDNRoutes(h, handler.NewCDNHandler(a.service), a.locker)
	router.RegisterPublicFiles(h, a.cfg.CDN.PublicDir)
	return h
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
