// Package md provides Markdown helper functions as well as styling for text
// views that display embeds.
package md

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	markutil "github.com/yuin/goldmark/util"

	"github.com/diamondburned/embedkit/md/embed"
	"github.com/diamondburned/embedkit/md/mdembed"
)

// Parser is the default Markdown parser. Embeds are parsed using the default
// emoji catalog.
var Parser = parser.NewParser(
	parser.WithInlineParsers(append(
		[]markutil.PrioritizedValue{
			markutil.Prioritized(parser.NewLinkParser(), 0),
			markutil.Prioritized(parser.NewAutoLinkParser(), 1),
			markutil.Prioritized(parser.NewEmphasisParser(), 2),
			markutil.Prioritized(parser.NewCodeSpanParser(), 3),
			markutil.Prioritized(parser.NewRawHTMLParser(), 4),
		},
		mdembed.Parsers(embed.DefaultCatalog())...,
	)...),
	parser.WithBlockParsers(
		markutil.Prioritized(parser.NewParagraphParser(), 0),
		markutil.Prioritized(parser.NewBlockquoteParser(), 1),
		markutil.Prioritized(parser.NewATXHeadingParser(), 2),
		markutil.Prioritized(parser.NewFencedCodeBlockParser(), 3),
		markutil.Prioritized(parser.NewThematicBreakParser(), 4), // <hr>
	),
)

// Renderer is the default Markdown renderer.
var Renderer = html.NewRenderer(
	html.WithHardWraps(),
	html.WithUnsafe(),
)

// Codec is the codec used by Converter to render embeds.
var Codec = embed.NewCodec(embed.DefaultConfig())

// Converter is the default converter that outputs HTML. Embeds are written as
// the static HTML of Codec.
var Converter = goldmark.New(
	goldmark.WithParser(Parser),
	goldmark.WithRenderer(
		renderer.NewRenderer(
			renderer.WithNodeRenderers(
				markutil.Prioritized(Renderer, 1000),
				markutil.Prioritized(mdembed.HTMLRenderer{Codec: Codec}, 500),
			),
		),
	),
)

// EmojiSize is the size in pixels of an emoji image inside text.
const EmojiSize = 24

// FormulaHeight is the maximum height in pixels of a typeset formula inside
// text.
const FormulaHeight = 48

// AddWidgetAt adds a widget into the text view at the current iterator
// position.
func AddWidgetAt(text *gtk.TextView, iter *gtk.TextIter, w gtk.Widgetter) *gtk.TextChildAnchor {
	anchor := text.Buffer().CreateChildAnchor(iter)
	text.AddChildAtAnchor(w, anchor)
	return anchor
}

// WalkChildren walks n's children nodes using the given walker.
// WalkSkipChildren is returned unless the walker fails.
func WalkChildren(n ast.Node, walker ast.Walker) ast.WalkStatus {
	for n := n.FirstChild(); n != nil; n = n.NextSibling() {
		ast.Walk(n, walker)
	}
	return ast.WalkSkipChildren
}

// ParseAndWalk parses src and walks its Markdown AST tree.
func ParseAndWalk(src []byte, w ast.Walker) error {
	n := Parser.Parse(text.NewReader(src))
	return ast.Walk(n, w)
}
