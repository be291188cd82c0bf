package middleware

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/asset_bridge/pkg/common"
	"github.com/yi-nology/asset_bridge/pkg/lock"
)

// Serialize returns a middleware that runs the handler while holding key.
// Endpoints that write into the public directory share one key so a bulk
// push never races a transfer. A nil locker passes requests through.
func Serialize(locker lock.Locker, key string) []app.HandlerFunc {
	if locker == nil {
		return nil
	}
	return []app.HandlerFunc{func(ctx context.Context, c *app.RequestContext) {
		release, err := locker.Lock(ctx, key)
		if err != nil {
			hlog.CtxWarnf(ctx, "[http] failed to acquire %s lock: %v", key, err)
			c.JSON(http.StatusServiceUnavailable, common.CommonResponse{
				Code: http.StatusServiceUnavailable,
				Msg:  "service busy, please retry later",
			})
			c.Abort()
			return
		}
		defer release()
		c.Next(ctx)
	}}
}
