// Package author renders mentions and topics as names, chips and search
// results.
package author

import (
	"fmt"
	"html"
	"strings"

	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/embed"
)

type markupOpts struct {
	color   string
	suffix  string
	shade   bool
	minimal bool
}

// MarkupMod is a function type that Markup can take multiples of. It
// changes subtle behaviors of the Markup function, such as the color.
type MarkupMod func(opts *markupOpts)

// WithMinimal renders the markup without the suffix.
func WithMinimal() MarkupMod {
	return func(opts *markupOpts) {
		opts.minimal = true
	}
}

// WithShade renders the markup with a background shade.
func WithShade() MarkupMod {
	return func(opts *markupOpts) {
		opts.shade = true
	}
}

// WithSuffix adds a small grey suffix string into the output string if the
// Minimal flag is not present.
func WithSuffix(suffix string) MarkupMod {
	return func(opts *markupOpts) {
		opts.suffix = html.EscapeString(suffix)
	}
}

// WithColor sets the color of the rendered output. The highlight color is
// used by default.
func WithColor(color string) MarkupMod {
	return func(opts *markupOpts) {
		opts.color = color
	}
}

func mkopts(mods []MarkupMod) markupOpts {
	opts := markupOpts{color: md.HighlightColor}
	for _, mod := range mods {
		mod(&opts)
	}
	return opts
}

// Label returns the displayed name of a mention or topic: "@name" or
// "#name#". Other entities have no label.
func Label(e embed.Entity) string {
	switch e := e.(type) {
	case embed.Mention:
		return "@" + e.Name
	case embed.Topic:
		return "#" + e.Name + "#"
	}
	return ""
}

// Markup renders the Pango markup of the label of e.
func Markup(e embed.Entity, mods ...MarkupMod) string {
	return markup(Label(e), mkopts(mods))
}

// SuggestionMarkup renders the Pango markup of a search result in the given
// mode. The detail is shown as the suffix.
func SuggestionMarkup(e embed.Entity, detail string, mods ...MarkupMod) string {
	if detail != "" {
		mods = append(mods, WithSuffix(detail))
	}
	return Markup(e, mods...)
}

func markup(name string, opts markupOpts) string {
	var b strings.Builder
	b.Grow(128)

	if opts.shade {
		fmt.Fprintf(&b, `<span color="%s" bgcolor="%[1]s33">%s</span>`, opts.color, html.EscapeString(name))
	} else {
		fmt.Fprintf(&b, `<span color="%s">%s</span>`, opts.color, html.EscapeString(name))
	}

	if !opts.minimal && opts.suffix != "" {
		fmt.Fprintf(&b, ` <span fgalpha="75%%" size="small">%s</span>`, opts.suffix)
	}

	return b.String()
}
