package mdembed

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/diamondburned/embedkit/md/embed"
)

func convert(t *testing.T, src string) string {
	t.Helper()

	codec := embed.NewCodec(embed.DefaultConfig())
	md := New(codec, embed.DefaultCatalog())

	var out bytes.Buffer
	require.NoError(t, md.Convert([]byte(src), &out))
	return out.String()
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "mention",
			in:   "hi @[bob](42)!",
			want: "<p>hi <span>@bob</span>!</p>\n",
		},
		{
			name: "topic",
			in:   "#[golang](7) rocks",
			want: "<p><span>#golang#</span> rocks</p>\n",
		},
		{
			name: "formula",
			in:   "so $e=mc^2$ holds",
			want: "<p>so <span>e=mc^2</span> holds</p>\n",
		},
		{
			name: "emoji",
			in:   "ok :微笑:",
			want: `<p>ok <img title="微笑" src="https://img.guibi.com/emot/qq/0.gif"/></p>` + "\n",
		},
		{
			name: "unknown emoji",
			in:   "time :nope: now",
			want: "<p>time :nope: now</p>\n",
		},
		{
			name: "prices",
			in:   "costs $5 and $6",
			want: "<p>costs $5 and $6</p>\n",
		},
		{
			name: "email",
			in:   "mail me@example.com",
			want: "<p>mail me@example.com</p>\n",
		},
		{
			name: "escaped name",
			in:   "@[<b>](1)",
			want: "<p><span>@&lt;b&gt;</span></p>\n",
		},
		{
			name: "plain link",
			in:   "[docs](https://example.com)",
			want: `<p><a href="https://example.com">docs</a></p>` + "\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, convert(t, test.in))
		})
	}
}

func TestParseEntities(t *testing.T) {
	src := []byte("@[bob](1) and #[go](2) with $x^2$ :微笑:")

	md := New(embed.NewCodec(embed.DefaultConfig()), embed.DefaultCatalog())
	doc := md.Parser().Parse(text.NewReader(src))

	var entities []embed.Entity
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if e, ok := n.(*Node); ok && entering {
			entities = append(entities, e.Entity)
		}
		return ast.WalkContinue, nil
	})

	emoji, _ := embed.DefaultCatalog().Lookup("微笑")
	assert.Equal(t, []embed.Entity{
		embed.Mention{Name: "bob", ID: "1"},
		embed.Topic{Name: "go", ID: "2"},
		embed.Formula("x^2"),
		emoji,
	}, entities)
}

func TestNoCatalog(t *testing.T) {
	md := New(embed.NewCodec(embed.DefaultConfig()), nil)

	var out bytes.Buffer
	require.NoError(t, md.Convert([]byte(":微笑:"), &out))
	assert.Equal(t, "<p>:微笑:</p>\n", out.String())
}

func TestSegments(t *testing.T) {
	src := []byte("a @[bob](1) b $x$ :微笑:")

	md := New(embed.NewCodec(embed.DefaultConfig()), embed.DefaultCatalog())
	doc := md.Parser().Parse(text.NewReader(src))

	var sources []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if e, ok := n.(*Node); ok && entering {
			sources = append(sources, string(e.Segment.Value(src)))
		}
		return ast.WalkContinue, nil
	})

	assert.Equal(t, []string{"@[bob](1)", "$x$", ":微笑:"}, sources)
}
