package block

import (
	"strconv"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"
)

// maxQuoteDepth is the deepest quote level with its own style.
const maxQuoteDepth = 3

// Blockquote boxes the blocks of a quote. Walk the quoted nodes with its
// State.
type Blockquote struct {
	*gtk.Box
	State *ContainerState
}

var quoteBlockCSS = cssutil.Applier("md-blockquote", `
	.md-blockquote {
		border-left:  3px solid alpha(@theme_fg_color, 0.5);
		padding-left: 5px;
	}
	.md-blockquote-2 { border-left-color: alpha(@theme_fg_color, 0.35); }
	.md-blockquote-3 { border-left-color: alpha(@theme_fg_color, 0.20); }
	.md-blockquote:not(:last-child) {
		margin-bottom: 3px;
	}
	.md-blockquote > textview.author-haschip {
		margin-bottom: -1em;
	}
`)

// NewBlockquote creates a Blockquote nested inside the given state.
func NewBlockquote(parent *ContainerState) *Blockquote {
	box := gtk.NewBox(gtk.OrientationVertical, 0)
	box.SetOverflow(gtk.OverflowHidden)

	quote := &Blockquote{
		Box:   box,
		State: parent.WithParent(box),
	}

	depth := min(quote.State.Depth, maxQuoteDepth)
	if depth > 1 {
		box.AddCSSClass("md-blockquote-" + strconv.Itoa(depth))
	}

	quoteBlockCSS(box)
	return quote
}
