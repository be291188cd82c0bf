package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Logging returns a middleware that logs one line per request.
func Logging() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()

		c.Next(ctx)

		latency := time.Since(start)
		status := c.Response.StatusCode()
		line := "[http] %s %s %s?%s %d %v"
		args := []interface{}{
			c.ClientIP(),
			string(c.Request.Method()),
			string(c.Request.URI().Path()),
			string(c.Request.URI().QueryString()),
			status,
			latency,
		}
		if status >= 500 {
			hlog.CtxWarnf(ctx, line, args...)
			return
		}
		hlog.CtxInfof(ctx, line, args...)
	}
}
