package embed

import (
	"context"

	"github.com/rs/zerolog"
	"libdb.so/ctxt"
)

// WithCodec returns a copy of ctx that carries c.
func WithCodec(ctx context.Context, c *Codec) context.Context {
	return ctxt.With(ctx, c)
}

// CodecFromContext returns the codec inside ctx. If ctx has none, a codec
// with the default configuration and the logger of ctx is returned.
func CodecFromContext(ctx context.Context) *Codec {
	if c, ok := ctxt.From[*Codec](ctx); ok && c != nil {
		return c
	}
	return NewCodec(DefaultConfig(), WithLogger(*zerolog.Ctx(ctx)))
}
