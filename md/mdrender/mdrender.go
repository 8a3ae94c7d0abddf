// Package mdrender renders a Markdown AST with embeds into GTK widgets.
package mdrender

import (
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/block"
	"github.com/diamondburned/embedkit/md/mdembed"
)

// RendererFunc renders a single node.
type RendererFunc func(r *Renderer, n ast.Node) ast.WalkStatus

// OptionFunc changes how a Renderer renders.
type OptionFunc func(r *Renderer)

// WithRenderer overrides the renderer of one node kind.
func WithRenderer(kind ast.NodeKind, renderer RendererFunc) OptionFunc {
	return func(r *Renderer) {
		if r.renderers == nil {
			r.renderers = make(map[ast.NodeKind]RendererFunc)
		}
		r.renderers[kind] = renderer
	}
}

// WithFallbackRenderer sets the renderer of nodes that nothing else handles.
func WithFallbackRenderer(renderer RendererFunc) OptionFunc {
	return func(r *Renderer) {
		r.fallback = renderer
	}
}

// Renderer walks a Markdown AST and writes it into a block container.
type Renderer struct {
	State *block.ContainerState

	renderers map[ast.NodeKind]RendererFunc
	fallback  RendererFunc
	src       []byte
}

// NewRenderer creates a new renderer over the given source.
func NewRenderer(src []byte, state *block.ContainerState, opts ...OptionFunc) *Renderer {
	r := &Renderer{
		src:   src,
		State: state,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Source returns the source bytes slice.
func (r *Renderer) Source() []byte {
	return r.src
}

// Render renders n and its siblings.
func (r *Renderer) Render(n ast.Node) ast.WalkStatus {
	return r.RenderSiblings(n)
}

// RenderSiblings renders first and every sibling after it.
func (r *Renderer) RenderSiblings(first ast.Node) ast.WalkStatus {
	for n := first; n != nil; n = n.NextSibling() {
		switch r.RenderOnce(n) {
		case ast.WalkContinue:
			if r.RenderChildren(n) == ast.WalkStop {
				return ast.WalkStop
			}
		case ast.WalkStop:
			return ast.WalkStop
		}
	}
	return ast.WalkSkipChildren
}

// RenderChildren renders all of n's children.
func (r *Renderer) RenderChildren(n ast.Node) ast.WalkStatus {
	return r.RenderSiblings(n.FirstChild())
}

// RenderChildrenWithTag renders the children of n inside the given tag.
func (r *Renderer) RenderChildrenWithTag(n ast.Node, tagName string) ast.WalkStatus {
	status := ast.WalkContinue

	text := r.State.TextBlock()
	text.TagNameBounded(tagName, func() {
		status = r.RenderChildren(n)
	})

	return status
}

// WithState returns a copy of the renderer that writes into state.
func (r *Renderer) WithState(state *block.ContainerState) *Renderer {
	cpy := *r
	cpy.State = state
	return &cpy
}

// RenderOnce renders a single node. WalkContinue means that the children of
// n still have to be rendered.
func (r *Renderer) RenderOnce(n ast.Node) ast.WalkStatus {
	if f, ok := r.renderers[n.Kind()]; ok {
		return f(r, n)
	}

	if n.Type() == ast.TypeInline {
		if status, ok := r.renderInline(n); ok {
			return status
		}
	} else {
		if status, ok := r.renderBlock(n); ok {
			return status
		}
	}

	if r.fallback != nil {
		return r.fallback(r, n)
	}
	return ast.WalkContinue
}

func (r *Renderer) renderInline(n ast.Node) (ast.WalkStatus, bool) {
	switch n := n.(type) {
	case *ast.String:
		r.State.TextBlock().Insert(string(n.Value))

	case *ast.Text:
		text := r.State.TextBlock()
		text.Insert(string(n.Segment.Value(r.src)))

		switch {
		case n.HardLineBreak():
			text.EndLine(2)
		case n.SoftLineBreak():
			text.EndLine(1)
		}

	case *ast.Emphasis:
		switch n.Level {
		case 1:
			return r.RenderChildrenWithTag(n, "i"), true
		case 2:
			return r.RenderChildrenWithTag(n, "b"), true
		}

	case *ast.CodeSpan:
		return r.RenderChildrenWithTag(n, "code"), true

	case *ast.Link:
		text := r.State.TextBlock()
		start := text.Iter.Offset()
		status := r.RenderChildren(n)
		text.ApplyLink(string(n.Destination), text.Buffer.IterAtOffset(start), text.Iter)
		return status, true

	case *ast.AutoLink:
		url := string(n.URL(r.src))
		text := r.State.TextBlock()
		start := text.Iter.Offset()
		text.Insert(url)
		text.ApplyLink(url, text.Buffer.IterAtOffset(start), text.Iter)
		return ast.WalkSkipChildren, true

	case *ast.Image:
		text := r.State.TextBlock()
		anchor := text.Buffer.CreateChildAnchor(text.Iter)
		md.InsertURLImage(r.State.Context(), text.TextView, anchor, string(n.Destination), string(n.Text(r.src)))
		return ast.WalkSkipChildren, true

	case *mdembed.Node:
		r.State.TextBlock().InsertEmbed(n.Entity)
		return ast.WalkSkipChildren, true

	default:
		return 0, false
	}

	return ast.WalkContinue, true
}

func (r *Renderer) renderBlock(n ast.Node) (ast.WalkStatus, bool) {
	switch n := n.(type) {
	case *ast.Heading:
		if n.Level >= 1 && n.Level <= 6 {
			return r.RenderChildrenWithTag(n, "h"+strconv.Itoa(n.Level)), true
		}

	case *ast.Paragraph:
		r.State.TextBlock().EndLine(2)

	case *ast.List:
		r.State.TextBlock().EndLine(2)

	case *ast.ListItem:
		text := r.State.TextBlock()
		text.EndLine(1)
		text.Insert(listMarker(n))

	case *ast.ThematicBreak:
		r.State.Append(block.NewSeparatorBlock(r.State))
		r.State.FinalizeBlock()
		return ast.WalkSkipChildren, true

	case *ast.FencedCodeBlock:
		r.renderCode(n.Lines(), string(n.Language(r.src)))
		return ast.WalkSkipChildren, true

	case *ast.CodeBlock:
		r.renderCode(n.Lines(), "")
		return ast.WalkSkipChildren, true

	case *ast.Blockquote:
		quote := block.NewBlockquote(r.State)
		r.State.Append(quote)
		return r.WithState(quote.State).RenderChildren(n), true

	default:
		return 0, false
	}

	return ast.WalkContinue, true
}

func (r *Renderer) renderCode(lines *text.Segments, language string) {
	if lines.Len() == 0 {
		return
	}

	code := block.NewCodeBlock(r.State)
	code.TextBlock().TagNameBounded("code", func() {
		r.InsertSegments(code.TextBlock(), lines)
	})
	code.Highlight(language)

	r.State.Append(code)
	r.State.FinalizeBlock()
}

// listMarker returns the bullet or number written before a list item.
func listMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "• "
	}

	n := list.Start
	for sib := item.PreviousSibling(); sib != nil; sib = sib.PreviousSibling() {
		n++
	}
	return strconv.Itoa(n) + string(list.Marker) + " "
}

// InsertSegments inserts the given text segments into the buffer.
func (r *Renderer) InsertSegments(text *block.TextBlock, segs *text.Segments) {
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		text.Insert(string(seg.Value(r.src)))
	}
}
