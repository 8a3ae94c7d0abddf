package popup

import (
	"context"

	"github.com/diamondburned/embedkit/md/embed"
)

// Host is the editor that popups insert into.
type Host interface {
	// Selection returns the current selection. If focus is true, the host
	// focuses itself first so that a lost selection is restored.
	Selection(focus bool) (Range, bool)
	// SetSelection places the caret at index.
	SetSelection(index int, src Source)
	// InsertEmbed inserts an embed with the serialized payload at index. The
	// embed takes one position.
	InsertEmbed(index int, kind embed.Kind, value string, src Source) error
	// InsertText inserts plain text at index.
	InsertText(index int, text string, src Source)
	// FormatRange applies the named style to the range. An empty value
	// removes the style.
	FormatRange(r Range, style, value string, src Source)
	// Bounds returns the on-screen bounds of the range.
	Bounds(r Range) Bounds
	// Focus grabs the keyboard focus.
	Focus()
	// ScrollTop returns the vertical scroll offset of the host.
	ScrollTop() float64
	// SetScrollTop sets the vertical scroll offset of the host.
	SetScrollTop(float64)
}

// TooltipContent describes what the tooltip shows.
type TooltipContent struct {
	Mode        Mode
	Text        string
	Placeholder string
	// Searchable shows the suggestion list and the cancel action instead of
	// the save action.
	Searchable bool
	At         Bounds
}

// View shows the popups. The controller calls Show and Hide only on state
// changes.
type View interface {
	ShowTooltip(TooltipContent)
	HideTooltip()
	ShowEmoji(at Bounds)
	HideEmoji()
	// LoadEmoji fills the emoji picker. It is called once, before the first
	// ShowEmoji.
	LoadEmoji(items []embed.Emoji)
	// ShowSuggestions replaces the suggestion list of the tooltip.
	ShowSuggestions([]Suggestion)
}

// Suggestion is a search result offered in topic and mention modes.
type Suggestion struct {
	ID   string
	Name string
	// Detail is an optional secondary line.
	Detail string
}

// Searcher looks up suggestions for the tooltip text. Results or an error
// returned by Search end the search and cancel ctx. A Searcher that returns no
// results and no error may keep ctx and deliver later through
// Controller.ShowSuggestions; ctx is canceled once the query changes or the
// tooltip closes.
type Searcher interface {
	Search(ctx context.Context, mode Mode, query string) ([]Suggestion, error)
}

// SearcherFunc is a function that implements Searcher.
type SearcherFunc func(ctx context.Context, mode Mode, query string) ([]Suggestion, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, mode Mode, query string) ([]Suggestion, error) {
	return f(ctx, mode, query)
}
