// Package emojibox implements the emoji picker popover.
package emojibox

import (
	"context"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/app/prefs"
	"github.com/diamondburned/gotkit/gtkutil"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/kits/popup"
	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/embed"
)

var columns = prefs.NewInt(8, prefs.IntMeta{
	Name:        "Emoji Picker Columns",
	Section:     "Composer",
	Description: "The number of emojis in each row of the emoji picker.",
	Min:         4,
	Max:         20,
})

var pickerHeight = prefs.NewInt(240, prefs.IntMeta{
	Name:        "Emoji Picker Height",
	Section:     "Composer",
	Description: "The maximum height of the emoji picker before it scrolls.",
	Min:         100,
	Max:         1000,
})

func init() {
	prefs.Order(columns, pickerHeight)
}

// Handler receives the actions of the user inside a Box.
type Handler interface {
	ConfirmEmojiPick(item embed.Emoji)
	HandleKey(key popup.Key) bool
	HandleOutsideClick()
}

// Box is a popover showing a grid of emojis.
type Box struct {
	*gtk.Popover

	ctx     context.Context
	codec   *embed.Codec
	handler Handler
	flow    *gtk.FlowBox
	items   []embed.Emoji

	updating bool
}

var boxCSS = cssutil.Applier("emojibox", `
	.emojibox flowboxchild {
		padding: 2px;
		margin:  0;
	}
	.emojibox-item {
		padding: 2px;
		min-width:  0;
		min-height: 0;
	}
`)

// New creates a new emoji picker. Emoji images are resolved by the codec
// inside ctx.
func New(ctx context.Context) *Box {
	b := &Box{
		ctx:   ctx,
		codec: embed.CodecFromContext(ctx),
	}

	b.flow = gtk.NewFlowBox()
	b.flow.SetSelectionMode(gtk.SelectionNone)
	b.flow.SetHomogeneous(true)
	b.flow.SetMinChildrenPerLine(uint(columns.Value()))
	b.flow.SetMaxChildrenPerLine(uint(columns.Value()))
	b.flow.ConnectChildActivated(func(child *gtk.FlowBoxChild) {
		b.pick(child.Index())
	})

	scroll := gtk.NewScrolledWindow()
	scroll.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scroll.SetPropagateNaturalHeight(true)
	scroll.SetPropagateNaturalWidth(true)
	scroll.SetMaxContentHeight(pickerHeight.Value())
	scroll.SetChild(b.flow)

	b.Popover = gtk.NewPopover()
	b.Popover.SetChild(scroll)
	b.Popover.SetPosition(gtk.PosBottom)
	b.Popover.SetAutohide(true)
	b.Popover.ConnectClosed(func() {
		if !b.updating && b.handler != nil {
			b.handler.HandleOutsideClick()
		}
	})
	boxCSS(b.Popover)

	key := gtk.NewEventControllerKey()
	key.ConnectKeyPressed(func(val, code uint, state gdk.ModifierType) bool {
		if val == gdk.KEY_Escape && b.handler != nil {
			return b.handler.HandleKey(popup.KeyEscape)
		}
		return false
	})
	b.Popover.AddController(key)

	return b
}

// SetHandler sets the handler of user actions.
func (b *Box) SetHandler(h Handler) {
	b.handler = h
}

// LoadEmoji fills the picker with the given emojis.
func (b *Box) LoadEmoji(items []embed.Emoji) {
	b.items = items
	for child := b.flow.FirstChild(); child != nil; child = b.flow.FirstChild() {
		b.flow.Remove(child)
	}

	for i, item := range items {
		b.flow.Append(b.newItem(i, item))
	}

	zerolog.Ctx(b.ctx).Debug().Int("emojis", len(items)).Msg("loaded emoji picker")
}

func (b *Box) newItem(i int, item embed.Emoji) gtk.Widgetter {
	picture := gtk.NewPicture()
	picture.SetCanShrink(true)
	picture.SetKeepAspectRatio(true)
	picture.SetSizeRequest(md.EmojiSize, md.EmojiSize)

	button := gtk.NewButton()
	button.AddCSSClass("emojibox-item")
	button.SetHasFrame(false)
	button.SetTooltipText(item.Title)
	button.SetChild(picture)
	button.ConnectClicked(func() { b.pick(i) })

	url := b.codec.Images.URL(item.Src)
	gtkutil.OnFirstDraw(picture, func() {
		md.LoadImage(b.ctx, url, picture.SetPaintable)
	})

	return button
}

// ShowEmoji shows the picker pointing at the given bounds.
func (b *Box) ShowEmoji(at popup.Bounds) {
	rect := gdk.NewRectangle(at.X, at.Y, max(at.Width, 1), max(at.Height, 1))
	b.Popover.SetPointingTo(&rect)
	b.Popover.Popup()
}

// HideEmoji hides the picker.
func (b *Box) HideEmoji() {
	b.updating = true
	defer func() { b.updating = false }()

	b.Popover.Popdown()
}

func (b *Box) pick(i int) {
	if i < 0 || i >= len(b.items) || b.handler == nil {
		return
	}
	b.handler.ConfirmEmojiPick(b.items[i])
}
