package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodecFromContext(t *testing.T) {
	c := testCodec()

	ctx := WithCodec(context.Background(), c)
	assert.Same(t, c, CodecFromContext(ctx))

	fallback := CodecFromContext(context.Background())
	assert.NotNil(t, fallback)
	assert.Equal(t, DefaultImageBaseURL, fallback.Images.BaseURL)
}
