package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/asset_bridge/pkg/config"
	"github.com/yi-nology/asset_bridge/pkg/lock"
)

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("lock timeout")
}

func ok(ctx context.Context, c *app.RequestContext) {
	c.String(consts.StatusOK, "ok")
}

func TestRecovery(t *testing.T) {
	h := server.New()
	h.Use(Recovery())
	h.GET("/panic", func(ctx context.Context, c *app.RequestContext) {
		panic("boom")
	})
	w := ut.PerformRequest(h.Engine, consts.MethodGet, "/panic", nil)
	if w.Result().StatusCode() != consts.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Result().StatusCode())
	}
}

func TestCORS(t *testing.T) {
	h := server.New()
	h.Use(CORS(&config.CORSConfig{AllowOrigin: "https://app.test"}))
	h.GET("/ok", ok)
	h.OPTIONS("/ok", ok)

	w := ut.PerformRequest(h.Engine, consts.MethodGet, "/ok", nil)
	if got := string(w.Result().Header.Peek("Access-Control-Allow-Origin")); got != "https://app.test" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := string(w.Result().Header.Peek("Vary")); got != "Origin" {
		t.Fatalf("expected Vary: Origin for a fixed origin, got %q", got)
	}
	if got := w.Result().Header.Peek("Access-Control-Allow-Credentials"); len(got) != 0 {
		t.Fatalf("expected no credentials header, got %q", got)
	}
	w = ut.PerformRequest(h.Engine, consts.MethodOptions, "/ok", nil)
	if w.Result().StatusCode() != consts.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", w.Result().StatusCode())
	}
}

func TestSerialize(t *testing.T) {
	if mw := Serialize(nil, "k"); mw != nil {
		t.Fatalf("expected no middleware without locker")
	}

	h := server.New()
	h.Use(Logging())
	h.GET("/locked", append(Serialize(lock.NewKeyed(), "k"), ok)...)
	h.GET("/busy", append(Serialize(failingLocker{}, "k"), ok)...)

	w := ut.PerformRequest(h.Engine, consts.MethodGet, "/locked", nil)
	if string(w.Result().Body()) != "ok" {
		t.Fatalf("expected handler to run, got %q", w.Result().Body())
	}
	w = ut.PerformRequest(h.Engine, consts.MethodGet, "/busy", nil)
	if w.Result().StatusCode() != consts.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Result().StatusCode())
	}
}
