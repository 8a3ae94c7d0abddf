// Package tooltip implements the popover used to enter links, video URLs,
// formulas and to search topics and mentions.
package tooltip

import (
	"context"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/components/author"
	"github.com/diamondburned/embedkit/kits/popup"
	"github.com/diamondburned/embedkit/md/embed"
)

// Handler receives the actions of the user inside a Tooltip.
type Handler interface {
	SetText(text string)
	HandleKey(key popup.Key) bool
	HandleOutsideClick()
	ConfirmSearchResult(id, value string)
}

// Tooltip is a popover with a text entry. In searchable modes it also lists
// the suggestions for the entered text.
type Tooltip struct {
	*gtk.Popover
	Entry *gtk.Entry

	ctx     context.Context
	handler Handler

	title   *gtk.Label
	results *gtk.ListBox
	scroll  *gtk.ScrolledWindow
	save    *gtk.Button
	cancel  *gtk.Button

	suggestions []popup.Suggestion
	mode        popup.Mode

	// updating is true while the tooltip is changed by ShowTooltip or
	// HideTooltip, so that the resulting signals are not echoed back.
	updating bool
}

var tooltipCSS = cssutil.Applier("tooltip", `
	.tooltip-title {
		font-weight: bold;
		margin-bottom: 4px;
	}
	.tooltip-results {
		margin-top: 4px;
	}
	.tooltip-results row {
		padding: 2px 4px;
	}
`)

// ResultsHeight is the maximum height of the suggestion list.
const ResultsHeight = 200

var modeTitles = map[popup.Mode]string{
	popup.ModeLink:    "Link",
	popup.ModeVideo:   "Video",
	popup.ModeFormula: "Formula",
	popup.ModeTopic:   "Topic",
	popup.ModeMention: "Mention",
}

// New creates a new Tooltip. The tooltip must be given a parent with
// SetParent before it is shown.
func New(ctx context.Context) *Tooltip {
	t := &Tooltip{ctx: ctx}

	t.title = gtk.NewLabel("")
	t.title.AddCSSClass("tooltip-title")
	t.title.SetXAlign(0)

	t.Entry = gtk.NewEntry()
	t.Entry.SetHExpand(true)
	t.Entry.ConnectChanged(func() {
		if !t.updating && t.handler != nil {
			t.handler.SetText(t.Entry.Text())
		}
	})
	t.Entry.ConnectActivate(func() {
		if t.handler == nil {
			return
		}
		// Enter picks the first suggestion in searchable modes.
		if t.mode.Searchable() && len(t.suggestions) > 0 {
			t.pick(0)
			return
		}
		t.handler.HandleKey(popup.KeyEnter)
	})

	t.save = gtk.NewButtonWithLabel("Save")
	t.save.AddCSSClass("suggested-action")
	t.save.ConnectClicked(func() {
		if t.handler != nil {
			t.handler.HandleKey(popup.KeyEnter)
		}
	})

	t.cancel = gtk.NewButtonWithLabel("Cancel")
	t.cancel.ConnectClicked(func() {
		if t.handler != nil {
			t.handler.HandleKey(popup.KeyEscape)
		}
	})

	entryBox := gtk.NewBox(gtk.OrientationHorizontal, 4)
	entryBox.Append(t.Entry)
	entryBox.Append(t.save)
	entryBox.Append(t.cancel)

	t.results = gtk.NewListBox()
	t.results.AddCSSClass("tooltip-results")
	t.results.SetSelectionMode(gtk.SelectionBrowse)
	t.results.ConnectRowActivated(func(row *gtk.ListBoxRow) {
		t.pick(row.Index())
	})

	t.scroll = gtk.NewScrolledWindow()
	t.scroll.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	t.scroll.SetPropagateNaturalHeight(true)
	t.scroll.SetMaxContentHeight(ResultsHeight)
	t.scroll.SetChild(t.results)
	t.scroll.SetVisible(false)

	box := gtk.NewBox(gtk.OrientationVertical, 0)
	box.Append(t.title)
	box.Append(entryBox)
	box.Append(t.scroll)

	t.Popover = gtk.NewPopover()
	t.Popover.SetChild(box)
	t.Popover.SetPosition(gtk.PosBottom)
	t.Popover.SetAutohide(true)
	t.Popover.ConnectClosed(func() {
		if !t.updating && t.handler != nil {
			t.handler.HandleOutsideClick()
		}
	})
	tooltipCSS(t.Popover)

	key := gtk.NewEventControllerKey()
	key.ConnectKeyPressed(func(val, code uint, state gdk.ModifierType) bool {
		if val == gdk.KEY_Escape && t.handler != nil {
			return t.handler.HandleKey(popup.KeyEscape)
		}
		return false
	})
	t.Entry.AddController(key)

	return t
}

// SetHandler sets the handler of user actions.
func (t *Tooltip) SetHandler(h Handler) {
	t.handler = h
}

// ShowTooltip shows the tooltip with the given content.
func (t *Tooltip) ShowTooltip(c popup.TooltipContent) {
	t.updating = true
	defer func() { t.updating = false }()

	t.mode = c.Mode
	t.title.SetText(modeTitles[c.Mode])
	t.Entry.SetText(c.Text)
	t.Entry.SetPlaceholderText(c.Placeholder)
	t.Entry.SetPosition(-1)

	// Searchable modes save by picking a result.
	t.save.SetVisible(!c.Searchable)
	t.cancel.SetVisible(c.Searchable)
	t.scroll.SetVisible(c.Searchable && len(t.suggestions) > 0)

	rect := gdk.NewRectangle(c.At.X, c.At.Y, max(c.At.Width, 1), max(c.At.Height, 1))
	t.Popover.SetPointingTo(&rect)
	t.Popover.Popup()
	t.Entry.GrabFocus()

	zerolog.Ctx(t.ctx).Debug().Str("mode", string(c.Mode)).Msg("showing tooltip")
}

// HideTooltip hides the tooltip.
func (t *Tooltip) HideTooltip() {
	t.updating = true
	defer func() { t.updating = false }()

	t.Popover.Popdown()
	t.ShowSuggestions(nil)
}

// ShowSuggestions replaces the suggestion list.
func (t *Tooltip) ShowSuggestions(suggestions []popup.Suggestion) {
	t.suggestions = suggestions

	for row := t.results.FirstChild(); row != nil; row = t.results.FirstChild() {
		t.results.Remove(row)
	}

	for _, s := range suggestions {
		label := gtk.NewLabel("")
		label.SetXAlign(0)
		label.SetMarkup(author.SuggestionMarkup(t.entity(s), s.Detail))
		t.results.Append(label)
	}

	t.scroll.SetVisible(len(suggestions) > 0)
}

func (t *Tooltip) entity(s popup.Suggestion) embed.Entity {
	if t.mode == popup.ModeTopic {
		return embed.Topic{Name: s.Name, ID: s.ID}
	}
	return embed.Mention{Name: s.Name, ID: s.ID}
}

func (t *Tooltip) pick(i int) {
	if i < 0 || i >= len(t.suggestions) || t.handler == nil {
		return
	}
	s := t.suggestions[i]
	t.handler.ConfirmSearchResult(s.ID, s.Name)
}
