package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalVideoURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc123", "https://www.youtube.com/embed/abc123?showinfo=0"},
		{"https://youtu.be/abc123", "https://www.youtube.com/embed/abc123?showinfo=0"},
		{"https://vimeo.com/55555", "https://player.vimeo.com/video/55555/"},
		{"https://example.com/x", "https://example.com/x"},
		{"http://m.youtube.com/watch?feature=share&v=x_Y-z", "http://www.youtube.com/embed/x_Y-z?showinfo=0"},
		{"youtube.com/watch?v=abc", "https://www.youtube.com/embed/abc?showinfo=0"},
		{"www.vimeo.com/42", "https://player.vimeo.com/video/42/"},
		{"", ""},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			assert.Equal(t, test.want, CanonicalVideoURL(test.in))
		})
	}
}
