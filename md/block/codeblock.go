package block

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/diamondburned/gotkit/app/prefs"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"

	"github.com/diamondburned/embedkit/md/hl"
)

// CodeBlock is a widget containing a block of code.
type CodeBlock struct {
	*gtk.Box
	text  *TextBlock
	state *ContainerState
	lang  *gtk.Label
}

var (
	_ WidgetBlock     = (*CodeBlock)(nil)
	_ TextWidgetBlock = (*CodeBlock)(nil)
)

var codeBlockCSS = cssutil.Applier("md-codeblock", `
	.md-codeblock {
		background-color: alpha(mix(@theme_bg_color, @theme_fg_color, 0.1), 0.5);
		border-radius: 4px;
	}
	.md-codeblock-text {
		font-family: monospace;
		padding: 4px 6px;
	}
	.md-codeblock-language {
		font-family: monospace;
		font-size: 0.9em;
		margin: 0px 6px;
		color: mix(@theme_bg_color, @theme_fg_color, 0.85);
	}
`)

var codeBlockWrap = prefs.NewBool(true, prefs.PropMeta{
	Name:        "Wrap Code Blocks",
	Section:     "Text",
	Description: "Wrap long lines of code instead of scrolling horizontally.",
})

var codeBlockHeight = prefs.NewInt(300, prefs.IntMeta{
	Name:        "Code Block Height",
	Section:     "Text",
	Description: "The maximum height of a code block before it scrolls.",
	Min:         50,
	Max:         5000,
})

func init() {
	prefs.Order(codeBlockWrap, codeBlockHeight)
}

// NewCodeBlock creates a new CodeBlock.
func NewCodeBlock(state *ContainerState) *CodeBlock {
	text := NewTextBlock(state)
	text.AddCSSClass("md-codeblock-text")
	text.SetWrapMode(gtk.WrapNone)
	if codeBlockWrap.Value() {
		text.SetWrapMode(gtk.WrapWordChar)
	}

	language := gtk.NewLabel("")
	language.AddCSSClass("md-codeblock-language")
	language.SetHExpand(true)
	language.SetEllipsize(pango.EllipsizeEnd)
	language.SetXAlign(0)

	copyButton := gtk.NewButtonFromIconName("edit-copy-symbolic")
	copyButton.SetTooltipText("Copy All")
	copyButton.SetHasFrame(false)
	copyButton.ConnectClicked(func() {
		start, end := text.Buffer.Bounds()
		clipboard := gdk.DisplayGetDefault().Clipboard()
		clipboard.SetText(text.Buffer.Text(start, end, false))
	})

	header := gtk.NewBox(gtk.OrientationHorizontal, 0)
	header.AddCSSClass("md-codeblock-header")
	header.Append(language)
	header.Append(copyButton)

	sw := gtk.NewScrolledWindow()
	sw.SetPolicy(gtk.PolicyAutomatic, gtk.PolicyAutomatic)
	sw.SetPropagateNaturalHeight(true)
	sw.SetMaxContentHeight(codeBlockHeight.Value())
	sw.SetChild(text)

	box := gtk.NewBox(gtk.OrientationVertical, 0)
	box.SetOverflow(gtk.OverflowHidden)
	box.Append(header)
	box.Append(sw)
	codeBlockCSS(box)

	return &CodeBlock{
		Box:   box,
		text:  text,
		state: state,
		lang:  language,
	}
}

// TextBlock implements TextWidgetBlock.
func (b *CodeBlock) TextBlock() *TextBlock {
	return b.text
}

// Highlight highlights the whole codeblock by the given language. The
// _nohyphens tag is always applied. If language is empty, it is guessed from
// the code.
func (b *CodeBlock) Highlight(language string) {
	start := b.text.Buffer.StartIter()
	end := b.text.Iter

	b.text.Buffer.ApplyTag(b.text.Tag("_nohyphens"), start, end)

	b.lang.SetText(language)
	hl.Highlight(b.state.Context(), start, end, language)
}
