package thumbnail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindFromURL(t *testing.T) {
	tests := []struct {
		url  string
		kind Kind
	}{
		{"https://example.com/a.png", KindImage},
		{"https://example.com/a.gif", KindGIF},
		{"https://example.com/a", KindImage},
		{"data:image/gif;base64,R0lGOD", KindGIF},
		{"data:image/png;base64,iVBOR", KindImage},
	}

	for _, test := range tests {
		t.Run(test.url, func(t *testing.T) {
			assert.Equal(t, test.kind, KindFromURL(test.url))
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"remote", "https://example.com/a.png", "https://example.com/a.png"},
		{"data", "data:image/gif;base64,R0lGODlh", "image/gif, 6 B"},
		{"untyped data", "data:;base64,R0lGODlh", "image, 6 B"},
		{"not base64", "data:image/png,hello", "Invalid image"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, Describe(test.url))
		})
	}
}
