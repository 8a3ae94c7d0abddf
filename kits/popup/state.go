// Package popup implements the controller behind the two overlay editors of a
// composer: the single-field tooltip and the emoji picker.
//
// The open popup is described by one State value. Transitions are plain
// functions from State to State; the Controller applies them and performs the
// side effects on a Host editor and a View.
package popup

import "github.com/diamondburned/embedkit/md/embed"

// Mode is the mode of the tooltip.
type Mode string

const (
	ModeLink    Mode = "link"
	ModeVideo   Mode = "video"
	ModeFormula Mode = "formula"
	ModeTopic   Mode = "topic"
	ModeMention Mode = "mention"
)

// Modes lists all tooltip modes.
var Modes = []Mode{
	ModeLink,
	ModeVideo,
	ModeFormula,
	ModeTopic,
	ModeMention,
}

// IsValid returns true if m is one of Modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeLink, ModeVideo, ModeFormula, ModeTopic, ModeMention:
		return true
	}
	return false
}

// Searchable returns true if the mode picks its value from search
// suggestions instead of taking the raw text.
func (m Mode) Searchable() bool {
	return m == ModeTopic || m == ModeMention
}

// Placeholder returns the placeholder text of the tooltip entry.
func (m Mode) Placeholder() string {
	switch m {
	case ModeLink:
		return "Enter link"
	case ModeVideo:
		return "Embed URL"
	case ModeFormula:
		return "e=mc^2"
	case ModeTopic:
		return "Search topics"
	case ModeMention:
		return "Search people"
	default:
		return ""
	}
}

// EmbedKind returns the embed kind that the mode inserts. Links format text
// and insert nothing.
func (m Mode) EmbedKind() (embed.Kind, bool) {
	switch m {
	case ModeVideo:
		return embed.KindVideo, true
	case ModeFormula:
		return embed.KindFormula, true
	case ModeTopic:
		return embed.KindTopic, true
	case ModeMention:
		return embed.KindMention, true
	default:
		return "", false
	}
}

// Range is a selection range inside the host document. Index and Length are
// counted in document positions, where each embed takes one position.
type Range struct {
	Index  int
	Length int
}

// End returns the position right after the range.
func (r Range) End() int { return r.Index + r.Length }

// Source tags a host mutation with its origin.
type Source string

const (
	SourceUser   Source = "user"
	SourceAPI    Source = "api"
	SourceSilent Source = "silent"
)

// Bounds is the on-screen rectangle of a range, used to position popups.
type Bounds struct {
	X, Y          int
	Width, Height int
}

// Popup names the popup that is open.
type Popup uint8

const (
	PopupClosed Popup = iota
	PopupTooltip
	PopupEmoji
)

func (p Popup) String() string {
	switch p {
	case PopupClosed:
		return "closed"
	case PopupTooltip:
		return "tooltip"
	case PopupEmoji:
		return "emoji"
	default:
		return "Popup(?)"
	}
}

// State is the popup state. At most one popup is open at a time.
type State struct {
	// Popup is the open popup.
	Popup Popup
	// Mode is the mode of the open tooltip. It is kept after the tooltip
	// closes so that the next open can tell whether the mode changed.
	Mode Mode
	// Range is the selection captured when the popup opened. Inserts target
	// it instead of the selection at confirm time.
	Range Range
	// Anchored is false if there was no selection to capture.
	Anchored bool
	// Text is the unsaved tooltip text.
	Text string
}

// IsOpen returns true if any popup is open.
func (s State) IsOpen() bool { return s.Popup != PopupClosed }

// OpenTooltip opens the tooltip in the given mode, closing the emoji picker.
// The text becomes prefill if it is not nil. Otherwise, the text is kept when
// the mode is the same as the last one and cleared when it changed.
func OpenTooltip(s State, mode Mode, prefill *string, r *Range) State {
	text := ""
	switch {
	case prefill != nil:
		text = *prefill
	case s.Mode == mode:
		text = s.Text
	}

	next := State{
		Popup: PopupTooltip,
		Mode:  mode,
		Text:  text,
	}
	if r != nil {
		next.Range = *r
		next.Anchored = true
	}
	return next
}

// OpenEmoji opens the emoji picker, closing the tooltip. Unsaved tooltip text
// is discarded.
func OpenEmoji(s State, r *Range) State {
	next := State{
		Popup: PopupEmoji,
		Mode:  s.Mode,
	}
	if r != nil {
		next.Range = *r
		next.Anchored = true
	}
	return next
}

// Edit replaces the unsaved tooltip text. It does nothing unless the tooltip
// is open.
func Edit(s State, text string) State {
	if s.Popup != PopupTooltip {
		return s
	}
	s.Text = text
	return s
}

// Cancel closes any popup and discards unsaved text.
func Cancel(s State) State {
	return State{Mode: s.Mode}
}

// Confirmed closes the popup after its value was saved.
func Confirmed(s State) State {
	return State{Mode: s.Mode}
}
