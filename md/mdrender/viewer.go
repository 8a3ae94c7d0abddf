package mdrender

import (
	"context"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/block"
	"github.com/diamondburned/embedkit/md/embed"
)

// MarkdownViewer extends a block.Viewer to view Markdown. A Markdown viewer is
// immutable.
type MarkdownViewer struct {
	*block.Viewer
}

// NewMarkdownViewer creates a new MarkdownViewer from a parsed node. The codec
// inside ctx renders the embeds.
func NewMarkdownViewer(ctx context.Context, src []byte, n ast.Node, opts ...OptionFunc) *MarkdownViewer {
	v := block.NewViewer(ctx)
	r := NewRenderer(src, v.State(), opts...)
	r.Render(n)

	return &MarkdownViewer{
		Viewer: v,
	}
}

// ParseMarkdownViewer parses src using md.Parser and views it. onEmbed is
// called when an embed is clicked; it may be nil.
func ParseMarkdownViewer(ctx context.Context, src []byte, onEmbed func(embed.Entity), opts ...OptionFunc) *MarkdownViewer {
	n := md.Parser.Parse(text.NewReader(src))

	v := block.NewViewer(ctx)
	v.OnEmbed = onEmbed

	r := NewRenderer(src, v.State(), opts...)
	r.Render(n)

	return &MarkdownViewer{
		Viewer: v,
	}
}
