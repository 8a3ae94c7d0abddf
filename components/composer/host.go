package composer

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/components/author"
	"github.com/diamondburned/embedkit/components/thumbnail"
	"github.com/diamondburned/embedkit/kits/delta"
	"github.com/diamondburned/embedkit/kits/popup"
	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/embed"
)

// Maximum size of video and image thumbnails.
const (
	ThumbnailWidth  = 320
	ThumbnailHeight = 180
)

// textHost implements popup.Host on top of the composer's TextView. Every
// embed is a child anchor, which takes a single buffer position, tagged with
// its payload.
type textHost struct {
	c *Composer
}

var _ popup.Host = (*textHost)(nil)

func (h *textHost) Selection(focus bool) (popup.Range, bool) {
	if focus {
		h.c.View.GrabFocus()
	} else if !h.c.View.HasFocus() {
		return popup.Range{}, false
	}
	return h.c.selection(), true
}

func (h *textHost) SetSelection(index int, src popup.Source) {
	h.c.apply(func() {
		h.c.Buffer.PlaceCursor(h.c.Buffer.IterAtOffset(index))
	})
}

func (h *textHost) InsertEmbed(index int, kind embed.Kind, value string, src popup.Source) error {
	buf := h.c.Buffer
	if index < 0 || index > buf.CharCount() {
		return errors.Wrapf(delta.ErrOutOfRange, "index %d", index)
	}

	var (
		e      embed.Entity
		widget gtk.Widgetter
	)

	if kind == delta.KindImage {
		widget = thumbnail.NewImage(h.c.ctx, value, ThumbnailWidth, ThumbnailHeight)
	} else {
		var err error
		if e, err = embed.Decode(kind, value); err != nil {
			return err
		}
		widget = h.embedWidget(e)
	}

	h.c.apply(func() {
		iter := buf.IterAtOffset(index)
		anchor := buf.CreateChildAnchor(iter)

		if widget != nil {
			h.c.View.AddChildAtAnchor(widget, anchor)
		} else {
			md.InsertEmbedImage(h.c.ctx, h.c.codec, h.c.View, anchor, e)
		}

		a := md.Anchor{From: index, To: index + 1, Kind: kind, Value: value}
		buf.ApplyTag(emptyTag(buf.TagTable(), a.TagName()), buf.IterAtOffset(index), iter)
	})

	zerolog.Ctx(h.c.ctx).Debug().
		Str("kind", string(kind)).
		Int("index", index).
		Str("source", string(src)).
		Msg("inserted embed")

	return nil
}

// embedWidget returns the widget shown for e. Nil is returned for entities
// shown as inline images.
func (h *textHost) embedWidget(e embed.Entity) gtk.Widgetter {
	switch e := e.(type) {
	case embed.Mention, embed.Topic:
		return author.NewChip(h.c.ctx, e)
	case embed.Video:
		return thumbnail.NewVideo(h.c.ctx, string(e), ThumbnailWidth, ThumbnailHeight)
	case embed.Formula:
		if _, ok := h.c.codec.ImageURL(e); !ok {
			label := gtk.NewLabel(string(e))
			label.AddCSSClass("embed-formula-error")
			label.SetTooltipText("Cannot typeset formula")
			return label
		}
	}
	return nil
}

func (h *textHost) InsertText(index int, text string, src popup.Source) {
	h.c.apply(func() {
		h.c.Buffer.Insert(h.c.Buffer.IterAtOffset(index), text)
	})
}

func (h *textHost) FormatRange(r popup.Range, style, value string, src popup.Source) {
	h.c.apply(func() {
		h.c.format(r, style, value)
	})
}

func (h *textHost) Bounds(r popup.Range) popup.Bounds {
	view := h.c.View

	start := view.IterLocation(h.c.Buffer.IterAtOffset(r.Index))
	x, y := view.BufferToWindowCoords(gtk.TextWindowWidget, start.X(), start.Y())

	width := 1
	if r.Length > 0 {
		end := view.IterLocation(h.c.Buffer.IterAtOffset(r.End()))
		if end.Y() == start.Y() {
			width = max(end.X()-start.X(), 1)
		}
	}

	return popup.Bounds{X: x, Y: y, Width: width, Height: start.Height()}
}

func (h *textHost) Focus() {
	h.c.View.GrabFocus()
}

func (h *textHost) ScrollTop() float64 {
	return h.c.scroll.VAdjustment().Value()
}

func (h *textHost) SetScrollTop(top float64) {
	h.c.scroll.VAdjustment().SetValue(top)
}

func emptyTag(table *gtk.TextTagTable, name string) *gtk.TextTag {
	if tag := table.Lookup(name); tag != nil {
		return tag
	}
	tag := gtk.NewTextTag(name)
	table.Add(tag)
	return tag
}
