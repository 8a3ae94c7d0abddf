package author

import (
	"context"
	"fmt"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/diamondburned/gotkit/components/onlineimage"
	"github.com/diamondburned/gotkit/gtkutil"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"
	"github.com/diamondburned/gotkit/gtkutil/imgutil"

	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/embed"
)

// Chip shows a mention or a topic inside a text view. Mentions show the
// initials of the person next to their name.
//
// Chips only look right at font scales below ~1.3.
type Chip struct {
	*gtk.Box
	Avatar *onlineimage.Avatar // nil for topics
	Name   *gtk.Label

	entity embed.Entity
	css    *gtk.CSSProvider
}

var chipCSS = cssutil.Applier("author-chip", `
	.author-chip {
		border-radius: 9999px 9999px;
		margin-bottom: -0.45em;
	}
	.author-chip-topic label {
		padding: 0 0.35em;
	}
	.author-chip-colored {
		background-color: transparent; /* override custom CSS */
	}
	/* GTK pads an extra line at the bottom once a widget is inserted. */
	.author-haschip {
		margin-bottom: -1em;
	}
`)

// ChipAvatarSize is the avatar size of mention chips.
const ChipAvatarSize = 20

// NewChip creates a new Chip for a mention or a topic. Other entities are
// shown as a plain label.
func NewChip(ctx context.Context, e embed.Entity) *Chip {
	c := Chip{entity: e}

	c.Name = gtk.NewLabel("")
	c.Name.AddCSSClass("author-chip-colored")
	c.Name.SetXAlign(0.4) // account for the right round corner

	c.Box = gtk.NewBox(gtk.OrientationHorizontal, 0)
	c.Box.SetOverflow(gtk.OverflowHidden)
	c.Box.AddCSSClass(e.Kind().ClassName())
	chipCSS(c)

	switch e := e.(type) {
	case embed.Mention:
		c.Avatar = onlineimage.NewAvatar(ctx, imgutil.HTTPProvider, ChipAvatarSize)
		c.Avatar.ConnectLabel(c.Name)
		c.Box.Append(c.Avatar)
		c.setID(e.ID)

		gtkutil.OnFirstDrawUntil(c.Name, func() bool {
			// Keep the chip only as tall as the label.
			h := c.Name.AllocatedHeight()
			if h < 1 {
				return true
			}
			c.Avatar.SetSizeRequest(h)
			return false
		})

	case embed.Topic:
		c.AddCSSClass("author-chip-topic")
		c.setID(e.ID)
	}

	c.SetName(Label(e))
	c.Box.Append(c.Name)
	c.SetColor(md.HighlightColor)

	return &c
}

func (c *Chip) setID(id string) {
	if id != "" {
		c.Box.SetTooltipText(id)
	}
}

// Entity returns the entity shown by the chip.
func (c *Chip) Entity() embed.Entity { return c.entity }

// InsertText inserts the chip into the given TextView at the given TextIter.
// The chip takes a single position; the inserted anchor is returned.
func (c *Chip) InsertText(text *gtk.TextView, iter *gtk.TextIter) *gtk.TextChildAnchor {
	anchor := md.AddWidgetAt(text, iter, c)

	text.AddCSSClass("author-haschip")
	text.QueueResize()

	return anchor
}

const maxChipWidth = 200

// SetName sets the shown label. Long labels are ellipsized past
// maxChipWidth.
func (c *Chip) SetName(label string) {
	c.Name.SetEllipsize(pango.EllipsizeNone)
	c.Name.SetText(label)

	width, _ := c.Name.Layout().PixelSize()
	width += 8 // padding

	c.Name.SetSizeRequest(min(width, maxChipWidth), -1)
	c.Name.SetEllipsize(pango.EllipsizeEnd)
}

// customChipCSSf is the per-chip CSS. The 0.8 mix matches the 0x33 shade
// alpha of Markup.
const customChipCSSf = `
	box {
		background-color: mix(%[1]s, @theme_bg_color, 0.8);
	}
	label {
		color: %[1]s;
	}
`

// SetColor sets the chip's color in a hexadecimal string #FFFFFF.
func (c *Chip) SetColor(color string) {
	widgets := []gtk.Widgetter{c.Name, c.Box}

	if c.css != nil {
		for _, w := range widgets {
			gtk.BaseWidget(w).StyleContext().RemoveProvider(c.css)
		}
	}

	c.css = gtk.NewCSSProvider()
	c.css.LoadFromData(fmt.Sprintf(customChipCSSf, color))

	for _, w := range widgets {
		gtk.BaseWidget(w).StyleContext().AddProvider(c.css, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	}
}
