package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickerFormat(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		style string
		value string
		ok    bool
	}{
		{"color", "_fmt_color_#e60000", "color", "#e60000", true},
		{"header", "_fmt_header_2", "header", "2", true},
		{"font with underscore", "_fmt_font_sans_serif", "font", "sans_serif", true},
		{"mark", "b", "", "", false},
		{"anchor", `anchor:{"1":0,"2":1,"v":"x"}`, "", "", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			style, value, ok := pickerFormat(test.tag)
			assert.Equal(t, test.ok, ok)
			if ok {
				assert.Equal(t, test.style, style)
				assert.Equal(t, test.value, value)
			}
		})
	}
}

func TestCommandIcons(t *testing.T) {
	for _, name := range commandOrder {
		assert.NotEmpty(t, commandIcons[name], "command %q has no icon", name)
	}
	for name := range markTags {
		assert.Contains(t, commandOrder, name)
	}
}
