package block

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"
)

// SeparatorBlock is a thematic break.
type SeparatorBlock struct {
	*gtk.Separator
}

var separatorCSS = cssutil.Applier("md-separator", `
	.md-separator {
		margin: 6px 0;
	}
`)

// NewSeparatorBlock creates a SeparatorBlock. The current block of state is
// finalized so that text after the break starts a new block.
func NewSeparatorBlock(state *ContainerState) *SeparatorBlock {
	state.FinalizeBlock()

	sep := gtk.NewSeparator(gtk.OrientationHorizontal)
	separatorCSS(sep)
	return &SeparatorBlock{sep}
}
