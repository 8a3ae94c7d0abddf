package mdrender

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/gtkutil/textutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark/ast"

	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/embed"
	"github.com/diamondburned/embedkit/md/hl"
	"github.com/diamondburned/embedkit/md/mdembed"
)

const wysiwygPrefix = "_wysiwyg_"

// embedTags maps each embed kind to the tag marking its source.
var embedTags = map[embed.Kind]string{
	embed.KindMention: "_mention",
	embed.KindTopic:   "_topic",
	embed.KindEmoji:   "htmltag",
	embed.KindFormula: "code",
	embed.KindVideo:   "_video",
}

func wysiwygTag(table *gtk.TextTagTable, name string) *gtk.TextTag {
	if tag := table.Lookup(wysiwygPrefix + name); tag != nil {
		return tag
	}

	tt, ok := md.Tags[name]
	if !ok {
		panic(errors.Errorf("unknown tag name %q", name))
	}

	tag := tt.Tag(wysiwygPrefix + name)
	table.Add(tag)
	return tag
}

// WYSIWYGOpts are the options of a WYSIWYG.
type WYSIWYGOpts struct {
	// Walker, if not nil, is called for nodes that WYSIWYG does not style.
	Walker func(*WYSIWYG, ast.Node) ast.WalkStatus
	// SkipHTML disables highlighting raw HTML.
	SkipHTML bool
}

// EmbedSource is an embed found in the Markdown source. Start and End are
// buffer offsets.
type EmbedSource struct {
	Entity     embed.Entity
	Start, End int
}

// WYSIWYG styles Markdown source in place, embeds included.
type WYSIWYG struct {
	Buffer *gtk.TextBuffer
	Tags   *gtk.TextTagTable
	Source []byte

	Head *gtk.TextIter
	Tail *gtk.TextIter

	// Embeds are the embeds found by the last Render.
	Embeds []EmbedSource

	ctx  context.Context
	opts WYSIWYGOpts
}

// NewWYSIWYG creates a new instance of WYSIWYG.
func NewWYSIWYG(ctx context.Context, buffer *gtk.TextBuffer, opts WYSIWYGOpts) *WYSIWYG {
	return &WYSIWYG{
		Buffer: buffer,
		Tags:   buffer.TagTable(),
		ctx:    ctx,
		opts:   opts,
	}
}

// RenderWYSIWYG styles buffer once and returns the embeds in it.
func RenderWYSIWYG(ctx context.Context, buffer *gtk.TextBuffer) []EmbedSource {
	w := NewWYSIWYG(ctx, buffer, WYSIWYGOpts{})
	w.Render()
	return w.Embeds
}

// Render restyles the whole buffer from its current content.
func (w *WYSIWYG) Render() {
	w.Head, w.Tail = w.Buffer.Bounds()
	// Child anchors stay in the source as U+FFFC, so rune offsets in Source
	// are buffer offsets.
	w.Source = []byte(w.Buffer.Slice(w.Head, w.Tail, true))
	w.Embeds = w.Embeds[:0]

	var stale []*gtk.TextTag
	w.Tags.ForEach(func(tag *gtk.TextTag) {
		if strings.HasPrefix(tag.ObjectProperty("name").(string), wysiwygPrefix) {
			stale = append(stale, tag)
		}
	})
	for _, tag := range stale {
		w.Buffer.RemoveTag(tag, w.Head, w.Tail)
	}

	if err := md.ParseAndWalk(w.Source, w.walker); err != nil {
		zerolog.Ctx(w.ctx).Debug().Err(err).Msg("cannot walk markdown source")
	}
}

func (w *WYSIWYG) walker(n ast.Node, enter bool) (ast.WalkStatus, error) {
	if !enter {
		return ast.WalkContinue, nil
	}
	return w.enter(n), nil
}

func (w *WYSIWYG) enter(n ast.Node) ast.WalkStatus {
	switch n := n.(type) {
	case *ast.Emphasis:
		switch n.Level {
		case 1:
			w.MarkText(n, "i")
		case 2:
			w.MarkText(n, "b")
		default:
			return ast.WalkContinue
		}
		return ast.WalkSkipChildren

	case *ast.Heading:
		if n.Level < 1 || n.Level > 6 {
			return ast.WalkContinue
		}
		// Extend the head back over the leading hashes.
		w.MarkTextFunc(n, w.tags("h"+strconv.Itoa(n.Level)), func(head, _ *gtk.TextIter) {
			head.SetLineOffset(0)
		})
		return ast.WalkSkipChildren

	case *ast.Link:
		w.MarkTextFunc(n, []*gtk.TextTag{textutil.LinkTags().FromTable(w.Tags, "a")}, nil)
		return ast.WalkSkipChildren

	case *ast.CodeSpan:
		w.MarkText(n, "code")
		return ast.WalkSkipChildren

	case *ast.Blockquote:
		w.MarkText(n, "blockquote")
		return ast.WalkSkipChildren

	case *ast.RawHTML:
		if w.opts.SkipHTML {
			return ast.WalkContinue
		}
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			w.MarkBounds(seg.Start, seg.Stop, "htmltag")
		}

	case *mdembed.Node:
		w.MarkBounds(n.Segment.Start, n.Segment.Stop, embedTags[n.Entity.Kind()])
		w.Embeds = append(w.Embeds, EmbedSource{
			Entity: n.Entity,
			Start:  w.Head.Offset(),
			End:    w.Tail.Offset(),
		})
		return ast.WalkSkipChildren

	case *ast.FencedCodeBlock:
		lines := n.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren
		}

		w.MarkBounds(lines.At(0).Start, lines.At(lines.Len()-1).Stop, "code")
		if lang := string(n.Language(w.Source)); lang != "" {
			hl.Highlight(w.ctx, w.Head, w.Tail, lang)
		}
		return ast.WalkSkipChildren

	default:
		if w.opts.Walker != nil {
			return w.opts.Walker(w, n)
		}
	}

	return ast.WalkContinue
}

func (w *WYSIWYG) tags(names ...string) []*gtk.TextTag {
	tags := make([]*gtk.TextTag, len(names))
	for i, name := range names {
		tags[i] = wysiwygTag(w.Tags, name)
	}
	return tags
}

// MarkBounds applies the named tags between two source byte offsets. Head and
// Tail are left around the range.
func (w *WYSIWYG) MarkBounds(i, j int, names ...string) {
	w.SetIter(w.Head, i)
	w.SetIter(w.Tail, j)

	for _, tag := range w.tags(names...) {
		w.Buffer.ApplyTag(tag, w.Head, w.Tail)
	}
}

// MarkText applies the named tags to every ast.Text under n.
func (w *WYSIWYG) MarkText(n ast.Node, names ...string) {
	w.MarkTextFunc(n, w.tags(names...), nil)
}

// MarkTextFunc applies tags to every ast.Text under n. If f is not nil, it may
// move the iterators of each text before the tags are applied.
func (w *WYSIWYG) MarkTextFunc(n ast.Node, tags []*gtk.TextTag, f func(head, tail *gtk.TextIter)) {
	md.WalkChildren(n, func(n ast.Node, enter bool) (ast.WalkStatus, error) {
		text, ok := n.(*ast.Text)
		if !ok || !enter {
			return ast.WalkContinue, nil
		}

		w.SetIter(w.Head, text.Segment.Start)
		w.SetIter(w.Tail, text.Segment.Stop)

		if f != nil {
			f(w.Head, w.Tail)
		}
		for _, tag := range tags {
			w.Buffer.ApplyTag(tag, w.Head, w.Tail)
		}

		return ast.WalkContinue, nil
	})
}

// SetIter moves iter to the byte offset within Source.
func (w *WYSIWYG) SetIter(iter *gtk.TextIter, byteOffset int) {
	SetIter(iter, w.Source, byteOffset)
}

// SetIter moves iter to the byte offset within src, which must be the text of
// the iterator's buffer.
func SetIter(iter *gtk.TextIter, src []byte, byteOffset int) {
	iter.SetOffset(utf8.RuneCount(src[:byteOffset]))
}
