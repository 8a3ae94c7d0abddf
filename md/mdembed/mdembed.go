// Package mdembed is a goldmark extension for inline embeds written in
// Markdown:
//
//	$e=mc^2$        formula
//	@[name](id)     mention
//	#[name](id)     topic
//	:title:         emoji from a catalog
package mdembed

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/diamondburned/embedkit/md/embed"
)

// KindEmbed is the node kind of Node.
var KindEmbed = ast.NewNodeKind("Embed")

// Node is an inline embed.
type Node struct {
	ast.BaseInline
	Entity embed.Entity
	// Segment is the source of the embed, delimiters included.
	Segment text.Segment
}

func newNode(e embed.Entity, line text.Segment, n int) *Node {
	return &Node{
		Entity:  e,
		Segment: text.NewSegment(line.Start, line.Start+n),
	}
}

// Kind implements ast.Node.
func (n *Node) Kind() ast.NodeKind { return KindEmbed }

// Dump implements ast.Node.
func (n *Node) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Embed": string(n.Entity.Kind()),
	}, nil)
}

// Parsers returns the inline parsers of the extension. Emoji are only parsed
// if catalog is not nil.
func Parsers(catalog *embed.Catalog) []util.PrioritizedValue {
	parsers := []util.PrioritizedValue{
		util.Prioritized(formulaParser{}, 150),
		util.Prioritized(targetParser{'@'}, 150),
		util.Prioritized(targetParser{'#'}, 150),
	}
	if catalog != nil {
		parsers = append(parsers, util.Prioritized(emojiParser{catalog}, 150))
	}
	return parsers
}

type formulaParser struct{}

func (formulaParser) Trigger() []byte { return []byte{'$'} }

// Parse parses "$src$". The source may not start or end with a space, which
// keeps prices like "$5 and $6" as text.
func (formulaParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) < 3 || line[1] == '$' || line[1] == ' ' {
		return nil
	}

	end := bytes.IndexByte(line[1:], '$')
	if end < 1 {
		return nil
	}

	src := line[1 : end+1]
	if src[len(src)-1] == ' ' {
		return nil
	}

	block.Advance(end + 2)
	return newNode(embed.Formula(src), seg, end+2)
}

type targetParser struct{ sigil byte }

func (p targetParser) Trigger() []byte { return []byte{p.sigil} }

// Parse parses "@[name](id)" and "#[name](id)".
func (p targetParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) < 2 || line[1] != '[' {
		return nil
	}

	nameEnd := bytes.Index(line, []byte("]("))
	if nameEnd < 3 {
		return nil
	}
	name := line[2:nameEnd]
	if bytes.ContainsAny(name, "[]\n") {
		return nil
	}

	idEnd := bytes.IndexByte(line[nameEnd+2:], ')')
	if idEnd < 0 {
		return nil
	}
	id := line[nameEnd+2 : nameEnd+2+idEnd]

	var e embed.Entity
	if p.sigil == '@' {
		e = embed.Mention{Name: string(name), ID: string(id)}
	} else {
		e = embed.Topic{Name: string(name), ID: string(id)}
	}

	n := nameEnd + 2 + idEnd + 1
	block.Advance(n)
	return newNode(e, seg, n)
}

type emojiParser struct{ catalog *embed.Catalog }

func (emojiParser) Trigger() []byte { return []byte{':'} }

// Parse parses ":title:" if the title is in the catalog.
func (p emojiParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()

	end := bytes.IndexByte(line[1:], ':')
	if end < 1 {
		return nil
	}

	title := line[1 : end+1]
	if bytes.IndexFunc(title, unicode.IsSpace) >= 0 || !utf8.Valid(title) {
		return nil
	}

	e, ok := p.catalog.Lookup(string(title))
	if !ok {
		return nil
	}

	block.Advance(end + 2)
	return newNode(e, seg, end+2)
}

// HTMLRenderer renders embed nodes as the static HTML of the codec.
type HTMLRenderer struct {
	Codec *embed.Codec
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r HTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindEmbed, r.render)
}

func (r HTMLRenderer) render(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.WriteString(r.Codec.HTML(n.(*Node).Entity))
	}
	return ast.WalkSkipChildren, nil
}

// Extension adds embed parsing and rendering to a goldmark.Markdown.
type Extension struct {
	Codec   *embed.Codec
	Catalog *embed.Catalog
}

// Extend implements goldmark.Extender.
func (e Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(Parsers(e.Catalog)...))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(HTMLRenderer{e.Codec}, 500),
	))
}

// New creates a Markdown converter with embeds enabled.
func New(codec *embed.Codec, catalog *embed.Catalog, opts ...goldmark.Option) goldmark.Markdown {
	opts = append(opts, goldmark.WithExtensions(Extension{codec, catalog}))
	return goldmark.New(opts...)
}
