// Package composer implements a rich text composer with a toolbar for
// inserting links, videos, formulas, topics, mentions, emojis and images.
package composer

import (
	"context"
	"slices"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"
	"github.com/diamondburned/gotkit/gtkutil/textutil"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/components/emojibox"
	"github.com/diamondburned/embedkit/components/tooltip"
	"github.com/diamondburned/embedkit/kits/popup"
	"github.com/diamondburned/embedkit/kits/toolbar"
	"github.com/diamondburned/embedkit/md/embed"
)

// Opts contains the optional collaborators of a Composer.
type Opts struct {
	// Catalog is the emoji catalog. The built-in catalog is used if nil.
	Catalog *embed.Catalog
	// Searcher provides topic and mention suggestions.
	Searcher popup.Searcher
	// Uploader uploads images. The image button is hidden if nil.
	Uploader toolbar.Uploader
}

// Composer is a rich text editor with an embed toolbar.
type Composer struct {
	*gtk.Box
	View    *gtk.TextView
	Buffer  *gtk.TextBuffer
	Toolbar *gtk.Box

	ctx    context.Context
	codec  *embed.Codec
	scroll *gtk.ScrolledWindow

	tooltip *tooltip.Tooltip
	emoji   *emojibox.Box
	ctrl    *popup.Controller
	tools   *toolbar.Toolbar
	host    *textHost

	// applying is above zero while the controller mutates the buffer, so
	// that the resulting selection changes are not reported back to it.
	applying int
}

var composerCSS = cssutil.Applier("composer", `
	.composer-text {
		padding: 6px;
	}
	.composer-toolbar {
		padding: 2px;
	}
	.composer-toolbar button {
		min-width:  0;
		min-height: 0;
		padding: 4px;
	}
`)

// commandIcons maps each toolbar command to its icon.
var commandIcons = map[string]string{
	toolbar.CommandLink:    "insert-link-symbolic",
	toolbar.CommandVideo:   "video-x-generic-symbolic",
	toolbar.CommandFormula: "accessories-calculator-symbolic",
	toolbar.CommandTopic:   "tag-symbolic",
	toolbar.CommandMention: "avatar-default-symbolic",
	toolbar.CommandEmoji:   "face-smile-symbolic",
	toolbar.CommandImage:   "insert-image-symbolic",
	commandBold:            "format-text-bold-symbolic",
	commandItalic:          "format-text-italic-symbolic",
	commandUnderline:       "format-text-underline-symbolic",
	commandStrike:          "format-text-strikethrough-symbolic",
	commandCode:            "utilities-terminal-symbolic",
}

// commandOrder is the order of the toolbar buttons.
var commandOrder = []string{
	commandBold,
	commandItalic,
	commandUnderline,
	commandStrike,
	commandCode,
	toolbar.CommandLink,
	toolbar.CommandVideo,
	toolbar.CommandImage,
	toolbar.CommandFormula,
	toolbar.CommandTopic,
	toolbar.CommandMention,
	toolbar.CommandEmoji,
}

// New creates a new Composer. The codec inside ctx renders the embeds.
func New(ctx context.Context, opts Opts) *Composer {
	c := &Composer{
		ctx:   ctx,
		codec: embed.CodecFromContext(ctx),
	}

	c.Buffer = gtk.NewTextBuffer(nil)
	c.View = gtk.NewTextViewWithBuffer(c.Buffer)
	c.View.AddCSSClass("composer-text")
	c.View.SetWrapMode(gtk.WrapWordChar)
	c.View.SetAcceptsTab(false)
	c.View.SetVExpand(true)
	textutil.SetTabSize(c.View)

	c.scroll = gtk.NewScrolledWindow()
	c.scroll.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	c.scroll.SetPropagateNaturalHeight(true)
	c.scroll.SetChild(c.View)

	c.host = &textHost{c}

	c.tooltip = tooltip.New(ctx)
	c.tooltip.SetParent(c.View)

	c.emoji = emojibox.New(ctx)
	c.emoji.SetParent(c.View)

	c.ctrl = popup.NewController(ctx, c.host, popupView{c.tooltip, c.emoji}, popup.Opts{
		Catalog:  opts.Catalog,
		Searcher: opts.Searcher,
	})
	c.tooltip.SetHandler(c.ctrl)
	c.emoji.SetHandler(c.ctrl)

	c.tools = toolbar.New()
	c.tools.Bind(c.ctrl, c.host, opts.Uploader)
	c.bindFormats()

	c.Toolbar = gtk.NewBox(gtk.OrientationHorizontal, 0)
	c.Toolbar.AddCSSClass("composer-toolbar")
	names := c.tools.Names()
	for _, name := range commandOrder {
		if slices.Contains(names, name) {
			c.Toolbar.Append(c.newButton(name))
		}
	}

	c.Buffer.ConnectMarkSet(func(_ *gtk.TextIter, mark *gtk.TextMark) {
		if c.applying > 0 {
			return
		}
		switch mark.Name() {
		case "insert", "selection_bound":
			r := c.selection()
			c.ctrl.HandleSelectionChange(&r)
		}
	})

	c.Box = gtk.NewBox(gtk.OrientationVertical, 0)
	c.Box.Append(c.Toolbar)
	c.Box.Append(c.scroll)
	composerCSS(c.Box)

	return c
}

// Controller returns the popup controller of the composer.
func (c *Composer) Controller() *popup.Controller {
	return c.ctrl
}

// Host returns the composer as the host editor of its controller. Uploaders
// use it to insert uploaded images.
func (c *Composer) Host() popup.Host {
	return c.host
}

// Trigger runs the named toolbar command.
func (c *Composer) Trigger(name string) error {
	return c.tools.Trigger(c.ctx, name)
}

func (c *Composer) newButton(name string) *gtk.Button {
	button := gtk.NewButtonFromIconName(commandIcons[name])
	button.SetTooltipText(name)
	button.SetHasFrame(false)
	button.SetFocusOnClick(false)
	button.ConnectClicked(func() {
		if err := c.Trigger(name); err != nil {
			zerolog.Ctx(c.ctx).Error().Err(err).Str("command", name).Msg("toolbar command failed")
		}
	})
	return button
}

// apply calls f with selection change reports suppressed.
func (c *Composer) apply(f func()) {
	c.applying++
	defer func() { c.applying-- }()
	f()
}

func (c *Composer) selection() popup.Range {
	start, end, _ := c.Buffer.SelectionBounds()
	return popup.Range{
		Index:  start.Offset(),
		Length: end.Offset() - start.Offset(),
	}
}

// popupView shows the popups of a Composer.
type popupView struct {
	*tooltip.Tooltip
	*emojibox.Box
}

var _ popup.View = popupView{}
