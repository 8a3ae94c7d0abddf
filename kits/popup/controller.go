package popup

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/md/embed"
)

// Key is a key press forwarded from the tooltip entry.
type Key uint8

const (
	KeyEnter Key = iota
	KeyEscape
)

// gapText is inserted after formulas, topics and mentions so that the caret
// has somewhere to go outside of the embed.
const gapText = " "

// Opts contains the optional collaborators of a Controller.
type Opts struct {
	// Catalog is the emoji catalog. The built-in catalog is used if nil.
	Catalog *embed.Catalog
	// Searcher provides suggestions in topic and mention modes.
	Searcher Searcher
}

// Controller owns the popup State of one host editor. A Controller must only
// be used from the UI thread; every method applies at most one transition.
type Controller struct {
	ctx  context.Context
	host Host
	view View
	opts Opts

	state     State
	scrollTop float64

	emojiLoaded bool

	query        string
	cancelSearch context.CancelFunc
}

// NewController creates a new Controller. The logger is taken from ctx.
func NewController(ctx context.Context, host Host, view View, opts Opts) *Controller {
	if opts.Catalog == nil {
		opts.Catalog = embed.DefaultCatalog()
	}

	return &Controller{
		ctx:  ctx,
		host: host,
		view: view,
		opts: opts,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) log() *zerolog.Logger {
	return zerolog.Ctx(c.ctx)
}

// capture returns the range that the next popup should target. A popup that
// is already open keeps the range and scroll offset it captured.
func (c *Controller) capture() *Range {
	if c.state.IsOpen() {
		if !c.state.Anchored {
			return nil
		}
		r := c.state.Range
		return &r
	}

	c.scrollTop = c.host.ScrollTop()

	r, ok := c.host.Selection(true)
	if !ok {
		return nil
	}
	return &r
}

func (c *Controller) bounds() Bounds {
	if !c.state.Anchored {
		return Bounds{}
	}
	return c.host.Bounds(c.state.Range)
}

// OpenTooltip opens the tooltip in the given mode. Unsaved text is kept if the
// tooltip was last opened in the same mode.
func (c *Controller) OpenTooltip(mode Mode) {
	c.openTooltip(mode, nil)
}

// OpenTooltipWith opens the tooltip in the given mode with the entry set to
// prefill.
func (c *Controller) OpenTooltipWith(mode Mode, prefill string) {
	c.openTooltip(mode, &prefill)
}

func (c *Controller) openTooltip(mode Mode, prefill *string) {
	prev := c.state
	c.state = OpenTooltip(prev, mode, prefill, c.capture())

	if prev.Popup == PopupEmoji {
		c.view.HideEmoji()
	}

	c.stopSearch()

	c.view.ShowTooltip(TooltipContent{
		Mode:        mode,
		Text:        c.state.Text,
		Placeholder: mode.Placeholder(),
		Searchable:  mode.Searchable(),
		At:          c.bounds(),
	})

	if mode.Searchable() {
		c.view.ShowSuggestions(nil)
	}

	c.log().Debug().
		Stringer("from", prev.Popup).
		Str("mode", string(mode)).
		Bool("anchored", c.state.Anchored).
		Msg("opened tooltip")
}

// OpenEmoji opens the emoji picker. The picker is filled from the catalog on
// the first open only.
func (c *Controller) OpenEmoji() {
	prev := c.state
	c.state = OpenEmoji(prev, c.capture())

	if prev.Popup == PopupTooltip {
		c.stopSearch()
		c.view.HideTooltip()
	}

	if !c.emojiLoaded {
		c.view.LoadEmoji(c.opts.Catalog.Items)
		c.emojiLoaded = true
	}

	c.view.ShowEmoji(c.bounds())

	c.log().Debug().
		Stringer("from", prev.Popup).
		Bool("anchored", c.state.Anchored).
		Msg("opened emoji picker")
}

// CloseEmoji closes the emoji picker if it is open. The host does not get the
// focus back.
func (c *Controller) CloseEmoji() {
	if c.state.Popup == PopupEmoji {
		c.close(false)
	}
}

// SetText is called when the tooltip entry changes. In searchable modes the
// text is also sent to the Searcher.
func (c *Controller) SetText(text string) {
	if c.state.Popup != PopupTooltip {
		return
	}

	c.state = Edit(c.state, text)

	if c.state.Mode.Searchable() {
		c.search(c.state.Mode, text)
	}
}

func (c *Controller) search(mode Mode, query string) {
	c.stopSearch()
	c.query = query
	c.view.ShowSuggestions(nil)

	if c.opts.Searcher == nil {
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelSearch = cancel

	results, err := c.opts.Searcher.Search(ctx, mode, query)
	if err != nil || len(results) > 0 {
		// The search is done. Only an empty result keeps the context alive,
		// for a Searcher that delivers through ShowSuggestions later.
		c.finishSearch()
	}

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.log().Warn().Err(err).
				Str("mode", string(mode)).
				Str("query", query).
				Msg("search failed")
		}
		return
	}

	if len(results) > 0 {
		c.ShowSuggestions(mode, query, results)
	}
}

func (c *Controller) stopSearch() {
	c.finishSearch()
	c.query = ""
}

// finishSearch cancels the search context but keeps the query current.
func (c *Controller) finishSearch() {
	if c.cancelSearch != nil {
		c.cancelSearch()
		c.cancelSearch = nil
	}
}

// ShowSuggestions shows search results for the given query. Results for a
// query that is no longer current are dropped, which lets a Searcher deliver
// results after Search has returned.
func (c *Controller) ShowSuggestions(mode Mode, query string, results []Suggestion) {
	if c.state.Popup != PopupTooltip || c.state.Mode != mode || c.query != query {
		c.log().Debug().
			Str("mode", string(mode)).
			Str("query", query).
			Msg("dropping stale suggestions")
		return
	}

	c.view.ShowSuggestions(results)
}

// Cancel closes the open popup without inserting anything and gives the focus
// back to the host.
func (c *Controller) Cancel() {
	c.close(true)
}

// HandleKey handles a key pressed inside the tooltip. It returns true if the
// key was consumed.
func (c *Controller) HandleKey(key Key) bool {
	switch key {
	case KeyEnter:
		if c.state.Popup == PopupTooltip {
			c.ConfirmTooltip()
			return true
		}
	case KeyEscape:
		if c.state.IsOpen() {
			c.Cancel()
			return true
		}
	}
	return false
}

// HandleOutsideClick handles a click outside of the open popup.
func (c *Controller) HandleOutsideClick() {
	c.close(true)
}

// HandleSelectionChange handles a selection change in the host. The open
// popup is closed; a nil range, which the host reports when it loses focus,
// is ignored.
func (c *Controller) HandleSelectionChange(r *Range) {
	if r == nil {
		return
	}
	c.close(false)
}

func (c *Controller) close(restore bool) {
	prev := c.state
	if !prev.IsOpen() {
		return
	}

	c.state = Cancel(prev)
	c.hide(prev.Popup)

	if restore {
		c.restoreFocus()
	}

	c.log().Debug().
		Stringer("popup", prev.Popup).
		Bool("restore", restore).
		Msg("closed popup")
}

func (c *Controller) hide(p Popup) {
	switch p {
	case PopupTooltip:
		c.stopSearch()
		c.view.HideTooltip()
	case PopupEmoji:
		c.view.HideEmoji()
	}
}

func (c *Controller) restoreFocus() {
	c.host.Focus()
	c.host.SetScrollTop(c.scrollTop)
}

// ConfirmTooltip saves the tooltip text according to the mode. Links format
// the captured range; videos and formulas insert an embed. Topics and
// mentions are saved through ConfirmSearchResult instead, so confirming them
// here only closes the tooltip.
func (c *Controller) ConfirmTooltip() {
	s := c.state
	if s.Popup != PopupTooltip {
		return
	}

	c.state = Confirmed(s)
	c.hide(PopupTooltip)

	switch s.Mode {
	case ModeLink:
		if s.Anchored {
			c.host.FormatRange(s.Range, "link", s.Text, SourceUser)
		}
		c.restoreFocus()

	case ModeVideo:
		url := embed.CanonicalVideoURL(s.Text)
		if url == "" {
			return
		}
		c.host.Focus()
		c.insert(s, embed.Video(url), false, 2)

	case ModeFormula:
		if s.Text == "" {
			return
		}
		c.host.Focus()
		c.insert(s, embed.Formula(s.Text), true, 2)

	case ModeTopic, ModeMention:
		c.host.Focus()

	default:
		c.log().Debug().Str("mode", string(s.Mode)).Msg("confirmed tooltip in unknown mode")
	}
}

// ConfirmSearchResult inserts the chosen topic or mention. An empty value is
// ignored and the tooltip stays open.
func (c *Controller) ConfirmSearchResult(id, value string) {
	s := c.state
	if s.Popup != PopupTooltip || value == "" {
		return
	}

	var e embed.Entity
	switch s.Mode {
	case ModeTopic:
		e = embed.Topic{Name: value, ID: id}
	case ModeMention:
		e = embed.Mention{Name: value, ID: id}
	default:
		return
	}

	c.state = Confirmed(s)
	c.hide(PopupTooltip)
	c.host.Focus()
	c.insert(s, e, true, 2)
}

// ConfirmEmojiPick inserts the picked emoji and closes the picker. Unlike the
// other embeds, no gap is inserted after an emoji.
func (c *Controller) ConfirmEmojiPick(item embed.Emoji) {
	s := c.state
	if s.Popup != PopupEmoji {
		return
	}

	c.state = Confirmed(s)
	c.hide(PopupEmoji)
	c.host.Focus()
	c.insert(s, item, false, 1)
}

// insert inserts e right after the captured range, optionally followed by the
// gap text, and moves the caret advance positions past the insertion point.
func (c *Controller) insert(s State, e embed.Entity, gap bool, advance int) {
	log := c.log().With().Str("kind", string(e.Kind())).Logger()

	if !s.Anchored {
		log.Debug().Msg("no captured selection, not inserting")
		return
	}

	value, err := embed.Encode(e)
	if err != nil {
		log.Error().Err(err).Msg("cannot encode embed")
		return
	}

	index := s.Range.End()

	if err := c.host.InsertEmbed(index, e.Kind(), value, SourceUser); err != nil {
		log.Error().Err(err).Int("index", index).Msg("host refused embed")
		return
	}

	if gap {
		c.host.InsertText(index+1, gapText, SourceUser)
	}

	c.host.SetSelection(index+advance, SourceUser)
}
