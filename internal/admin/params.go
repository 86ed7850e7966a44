package admin

import (
	"context"

	"github.com/shaiso/provd-cli/internal/provd"
)

// Parameters — параметры сервера provd (configure).
type Parameters struct {
	s   *Session
	mgr ParamManager
}

// Infos возвращает все параметры с описаниями.
func (p *Parameters) Infos(ctx context.Context) ([]provd.ParamInfo, error) {
	return p.mgr.List(ctx)
}

// Get возвращает значение параметра.
func (p *Parameters) Get(ctx context.Context, key string) (any, error) {
	return p.mgr.Get(ctx, key)
}

// Set задаёт значение параметра.
func (p *Parameters) Set(ctx context.Context, key string, value any) error {
	return p.s.track(ctx, "param.set", key, func() error {
		return p.mgr.Set(ctx, key, value)
	})
}

// Unset сбрасывает параметр. То же, что Set с nil.
func (p *Parameters) Unset(ctx context.Context, key string) error {
	return p.s.track(ctx, "param.unset", key, func() error {
		return p.mgr.Set(ctx, key, nil)
	})
}
