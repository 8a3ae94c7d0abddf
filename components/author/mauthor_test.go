package author

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diamondburned/embedkit/md/embed"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "@bob", Label(embed.Mention{ID: "1", Name: "bob"}))
	assert.Equal(t, "#go#", Label(embed.Topic{ID: "2", Name: "go"}))
	assert.Empty(t, Label(embed.Video("https://example.com/v.mp4")))
}

func TestMarkup(t *testing.T) {
	tests := []struct {
		name   string
		entity embed.Entity
		mods   []MarkupMod
		want   string
	}{
		{
			name:   "default",
			entity: embed.Mention{ID: "1", Name: "bob"},
			want:   `<span color="#1783ff">@bob</span>`,
		},
		{
			name:   "escaped",
			entity: embed.Topic{ID: "2", Name: "a&b"},
			mods:   []MarkupMod{WithColor("#000")},
			want:   `<span color="#000">#a&amp;b#</span>`,
		},
		{
			name:   "shade",
			entity: embed.Mention{ID: "1", Name: "bob"},
			mods:   []MarkupMod{WithShade()},
			want:   `<span color="#1783ff" bgcolor="#1783ff33">@bob</span>`,
		},
		{
			name:   "minimal drops suffix",
			entity: embed.Mention{ID: "1", Name: "bob"},
			mods:   []MarkupMod{WithSuffix("admin"), WithMinimal()},
			want:   `<span color="#1783ff">@bob</span>`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, Markup(test.entity, test.mods...))
		})
	}
}

func TestSuggestionMarkup(t *testing.T) {
	got := SuggestionMarkup(embed.Mention{ID: "1", Name: "bob"}, "<admin>")
	assert.Equal(t, `<span color="#1783ff">@bob</span> <span fgalpha="75%" size="small">&lt;admin&gt;</span>`, got)
}
