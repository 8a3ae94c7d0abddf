package delta

import (
	"github.com/pkg/errors"

	"github.com/diamondburned/embedkit/kits/popup"
	"github.com/diamondburned/embedkit/md/embed"
)

// Range is a selection range.
type Range = popup.Range

// Cell sizes of the grid that Bounds lays the document out on.
const (
	CellWidth  = 8
	CellHeight = 16
)

var _ popup.Host = (*Document)(nil)

// ErrOutOfRange is returned when inserting past the end of the document.
var ErrOutOfRange = errors.New("index out of range")

// Select sets the selection to r. The selection is clamped to the document.
func (d *Document) Select(r Range) {
	start := d.clamp(r.Index)
	end := d.clamp(r.End())
	d.selection = Range{Index: start, Length: max(0, end-start)}
	d.hasSelection = true
}

// Blur drops the focus and the selection, like an editor losing focus.
func (d *Document) Blur() {
	d.focused = false
	d.hasSelection = false
}

// Focused returns true if the document has focus.
func (d *Document) Focused() bool {
	return d.focused
}

// Selection implements popup.Host. Focusing does not create a selection if
// there was none.
func (d *Document) Selection(focus bool) (Range, bool) {
	if focus {
		d.focused = true
	}
	return d.selection, d.hasSelection
}

// SetSelection implements popup.Host.
func (d *Document) SetSelection(index int, src popup.Source) {
	d.Select(Range{Index: index})
}

// InsertEmbed implements popup.Host. Payloads that do not decode are refused.
func (d *Document) InsertEmbed(index int, kind embed.Kind, value string, src popup.Source) error {
	if index < 0 || index > d.Len() {
		return errors.Wrapf(ErrOutOfRange, "index %d", index)
	}

	if kind != KindImage {
		if _, err := embed.Decode(kind, value); err != nil {
			return err
		}
	}

	d.insert(index, Op{Embed: &Embed{Kind: kind, Value: value}})
	return nil
}

// InsertText implements popup.Host. The index is clamped to the document.
func (d *Document) InsertText(index int, text string, src popup.Source) {
	if text == "" {
		return
	}
	d.insert(index, Op{Insert: text})
}

// FormatRange implements popup.Host.
func (d *Document) FormatRange(r Range, style, value string, src popup.Source) {
	d.Format(r, style, value)
}

// Bounds implements popup.Host. The document is laid out on a grid of
// CellWidth by CellHeight cells, one cell per position.
func (d *Document) Bounds(r Range) popup.Bounds {
	var line, col, pos int

	for _, op := range d.Ops {
		if pos >= r.Index {
			break
		}

		if op.Embed != nil {
			col++
			pos++
			continue
		}

		for _, c := range op.Insert {
			if pos >= r.Index {
				break
			}
			if c == '\n' {
				line++
				col = 0
			} else {
				col++
			}
			pos++
		}
	}

	return popup.Bounds{
		X:      col * CellWidth,
		Y:      line * CellHeight,
		Width:  max(r.Length, 1) * CellWidth,
		Height: CellHeight,
	}
}

// Focus implements popup.Host.
func (d *Document) Focus() {
	d.focused = true
}

// ScrollTop implements popup.Host.
func (d *Document) ScrollTop() float64 {
	return d.scrollTop
}

// SetScrollTop implements popup.Host.
func (d *Document) SetScrollTop(top float64) {
	d.scrollTop = top
}

// TextAt returns up to n positions of text starting at index. Embeds are
// written as ObjectReplacement.
func (d *Document) TextAt(index, n int) string {
	runes := []rune(d.Plain())
	start := max(0, min(index, len(runes)))
	end := max(start, min(index+n, len(runes)))
	return string(runes[start:end])
}
