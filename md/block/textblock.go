package block

import (
	"strings"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"
	"github.com/diamondburned/gotkit/gtkutil/textutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/embed"
)

var textBlockCSS = cssutil.Applier("md-textblock", `
	textview.md-textblock,
	textview.md-textblock text {
		background-color: transparent;
		color: @theme_fg_color;
	}
`)

// NewDefaultTextView creates a new TextView that TextBlock uses.
func NewDefaultTextView(buffer *gtk.TextBuffer) *gtk.TextView {
	tview := gtk.NewTextViewWithBuffer(buffer)
	tview.SetEditable(false)
	tview.SetCursorVisible(false)
	tview.SetVExpand(true)
	tview.SetHExpand(true)
	tview.SetWrapMode(gtk.WrapWordChar)

	textBlockCSS(tview)
	textutil.SetTabSize(tview)

	return tview
}

// TextBlock is a read-only TextView that the renderer writes into through
// Iter.
type TextBlock struct {
	*gtk.TextView
	// Iter is the text block's internal iterator. Use this while walking to
	// insert texts. All methods that act on the block will also use this
	// iterator.
	Iter *gtk.TextIter
	// Buffer is the TextView's TextBuffer.
	Buffer *gtk.TextBuffer

	state *ContainerState
}

var _ TextWidgetBlock = (*TextBlock)(nil)

// NewTextBlock creates a new TextBlock.
func NewTextBlock(state *ContainerState) *TextBlock {
	tbuf := gtk.NewTextBuffer(state.Viewer.TagTable())
	view := NewDefaultTextView(tbuf)
	return NewTextBlockFromView(view, state)
}

// NewTextBlockFromView creates a new TextBlock from the given TextView.
func NewTextBlockFromView(view *gtk.TextView, state *ContainerState) *TextBlock {
	text := TextBlock{
		Buffer: view.Buffer(),
		state:  state,
	}

	text.Iter = text.Buffer.StartIter()
	text.TextView = view

	text.Buffer.SetEnableUndo(false)
	text.AddCSSClass("md-textblock")
	return &text
}

// TextBlock returns itself. It implements the TextWidgetBlock interface.
func (b *TextBlock) TextBlock() *TextBlock { return b }

// ConnectAnchorHandler connects the handler for clicking links and embeds.
// Only the first call will bind the handler.
func (b *TextBlock) ConnectAnchorHandler() {
	md.BindAnchorHandler(b.state.Context(), b.TextView, b.state.Viewer.activate)
}

// TrailingNewLines counts the new lines right before the iterator, up to 2.
func (b *TextBlock) TrailingNewLines() int {
	seeker := b.Iter.Copy()

	n := 0
	for n < 2 && seeker.BackwardChar() && rune(seeker.Char()) == '\n' {
		n++
	}
	return n
}

// IsNewLine returns true if the iterator is at the start of a line.
func (b *TextBlock) IsNewLine() bool {
	return b.Iter.StartsLine()
}

// EndLine makes sure that amount new lines precede the iterator, counting the
// ones already there. Nothing is inserted at the start of the block.
func (b *TextBlock) EndLine(amount int) {
	if b.Iter.Offset() > 0 {
		b.InsertNewLines(amount - b.TrailingNewLines())
	}
}

// InsertNewLines inserts n new lines. Nothing is inserted if n < 1.
func (b *TextBlock) InsertNewLines(n int) {
	if n > 0 {
		b.Buffer.Insert(b.Iter, strings.Repeat("\n", n))
	}
}

// ApplyLink applies tags denoting a hyperlink.
func (b *TextBlock) ApplyLink(url string, start, end *gtk.TextIter) {
	b.Buffer.ApplyTag(b.EmptyTag(md.URLTagName(start, end, url)), start, end)
	b.Buffer.ApplyTag(textutil.LinkTags().FromTable(b.state.TagTable(), "a"), start, end)
	b.ConnectAnchorHandler()
}

// InsertEmbed inserts the embed at the iterator. Mentions, topics and videos
// are inserted as highlighted text, while emojis and formulas are inserted as
// inline images. A formula that cannot be typeset is inserted as its source.
func (b *TextBlock) InsertEmbed(e embed.Entity) {
	start := b.Iter.Offset()
	b.state.Viewer.embeds = append(b.state.Viewer.embeds, e)

	switch e := e.(type) {
	case embed.Mention:
		b.TagNameBounded("_mention", func() { b.Insert("@" + e.Name) })
	case embed.Topic:
		b.TagNameBounded("_topic", func() { b.Insert("#" + e.Name + "#") })
	case embed.Video:
		b.TagNameBounded("_video", func() { b.Insert(string(e)) })
	case embed.Emoji, embed.Formula:
		anchor := b.Buffer.CreateChildAnchor(b.Iter)
		_, ok := md.InsertEmbedImage(b.state.Context(), b.state.Codec(), b.TextView, anchor, e)
		if !ok {
			b.TagNameBounded("_formula_error", func() { b.Insert(embedSource(e)) })
		}
	}

	startIter := b.Buffer.IterAtOffset(start)

	name, err := md.EmbedTagName(startIter, b.Iter, e)
	if err != nil {
		zerolog.Ctx(b.state.Context()).Warn().Err(err).Msg("cannot anchor embed")
		return
	}

	b.Buffer.ApplyTag(b.EmptyTag(name), startIter, b.Iter)
	b.ConnectAnchorHandler()
}

func embedSource(e embed.Entity) string {
	switch e := e.(type) {
	case embed.Formula:
		return string(e)
	case embed.Emoji:
		return ":" + e.Title + ":"
	}
	return ""
}

// EmptyTag gets an existing tag or creates a new empty one with the given name.
func (b *TextBlock) EmptyTag(tagName string) *gtk.TextTag {
	return emptyTag(b.state.Viewer.TagTable(), tagName)
}

func emptyTag(table *gtk.TextTagTable, tagName string) *gtk.TextTag {
	if tag := table.Lookup(tagName); tag != nil {
		return tag
	}

	tag := gtk.NewTextTag(tagName)
	if !table.Add(tag) {
		panic(errors.Errorf("failed to add new tag %q", tagName))
	}

	return tag
}

// Tag returns the named md.Tags tag from the viewer's table.
func (b *TextBlock) Tag(tagName string) *gtk.TextTag {
	return md.Tags.FromTable(b.state.Viewer.TagTable(), tagName)
}

// TagNameBounded is TagBounded with a tag from md.Tags.
func (b *TextBlock) TagNameBounded(tagName string, f func()) {
	b.TagBounded(b.Tag(tagName), f)
}

// TagBounded applies tag over whatever f inserts at the iterator.
func (b *TextBlock) TagBounded(tag *gtk.TextTag, f func()) {
	start := b.Iter.Offset()
	f()
	startIter := b.Buffer.IterAtOffset(start)
	b.Buffer.ApplyTag(tag, startIter, b.Iter)
}

// Insert inserts text at the iterator.
func (b *TextBlock) Insert(text string) {
	b.Buffer.Insert(b.Iter, text)
}
