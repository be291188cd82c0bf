package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/asset_bridge/pkg/config"
)

// corsMaxAge lets browsers cache preflight results for the asset API.
const corsMaxAge = "600"

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// A nil cfg or empty fields fall back to allowing any origin.
func CORS(cfg *config.CORSConfig) app.HandlerFunc {
	var c config.CORSConfig
	if cfg != nil {
		c = *cfg
	}
	headers := [][2]string{
		{"Access-Control-Allow-Origin", orDefault(c.AllowOrigin, "*")},
		{"Access-Control-Allow-Methods", orDefault(c.AllowMethods, "GET,POST,OPTIONS")},
		{"Access-Control-Allow-Headers", orDefault(c.AllowHeaders, "*")},
		{"Access-Control-Max-Age", corsMaxAge},
	}
	if c.AllowCredentials {
		headers = append(headers, [2]string{"Access-Control-Allow-Credentials", "true"})
	}
	if c.AllowOrigin != "" && c.AllowOrigin != "*" {
		headers = append(headers, [2]string{"Vary", "Origin"})
	}

	return func(ctx context.Context, rc *app.RequestContext) {
		for _, h := range headers {
			rc.Response.Header.Set(h[0], h[1])
		}
		if string(rc.Request.Method()) == consts.MethodOptions {
			rc.AbortWithStatus(consts.StatusNoContent)
			return
		}
		rc.Next(ctx)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
