package application

import "context"

// RequestMeta describes the client behind a call. It ends up in outgoing
// emails so recipients can spot requests they did not make.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type metaKey struct{}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

func requestMeta(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(metaKey{}).(RequestMeta)
	return m
}
