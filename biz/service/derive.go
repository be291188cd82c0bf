package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/asset_bridge/pkg/source"
	"github.com/yi-nology/asset_bridge/pkg/transform"
)

// Pipeline stages reported in PipelineError.
const (
	StageResolve = "resolve"
	StageDerive  = "derive"
	StagePublish = "publish"
)

// PipelineError is the failure of one DeriveAndPublish stage.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// DeriveAndPublish resolves ref, derives it under params and returns the
// reference callers should embed. It never fails: any pipeline error is
// logged and replaced by the fallback reference.
func (s *Service) DeriveAndPublish(ctx context.Context, ref string, params transform.Params) string {
	url, err := s.derive(ctx, ref, params)
	if err != nil {
		hlog.CtxErrorf(ctx, "[cdn][derive] %s: %v", ref, err)
		return s.fallbackReference()
	}
	return url
}

func (s *Service) derive(ctx context.Context, ref string, params transform.Params) (string, error) {
	src, err := s.resolver.Resolve(ref)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			// The published copy, if any, is left untouched.
			if name := strings.TrimSpace(params[transform.ParamName]); name != "" {
				return s.provider.AssetURL(name), nil
			}
			return s.provider.AssetURL(ref), nil
		}
		return "", &PipelineError{Stage: StageResolve, Err: err}
	}

	t := transform.Resolve(params, src.Ext)
	res, err := s.cache.GetOrCreate(ctx, src, t)
	if err != nil {
		return "", &PipelineError{Stage: StageDerive, Err: err}
	}
	if !res.Changed || s.provider.Bypass() {
		return s.provider.AssetURL(res.Target), nil
	}

	url, err := s.provider.Upload(ctx, res.Target, "")
	if err != nil {
		// A stale artifact makes the next request publish again.
		if ierr := s.cache.Invalidate(res); ierr != nil {
			hlog.CtxWarnf(ctx, "[cdn][derive] invalidate %s: %v", res.Target, ierr)
		}
		return "", &PipelineError{Stage: StagePublish, Err: err}
	}
	hlog.CtxDebugf(ctx, "[cdn][derive] published %s -> %s", res.Target, url)
	s.record(ctx, res.Target, url, res.Key, int64(len(res.Bytes)))
	return url, nil
}

func (s *Service) fallbackReference() string {
	if s.cfg.FallbackImage != "" {
		return s.provider.AssetURL(s.cfg.FallbackImage)
	}
	return errorReference
}
