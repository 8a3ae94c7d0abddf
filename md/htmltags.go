package md

import (
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/diamondburned/gotkit/gtkutil/textutil"
)

// HighlightColor is the color of mention and topic labels. It matches the
// color used in the HTML fragments of the embed codec.
const HighlightColor = "#1783ff"

// Tags contains the tag table mapping the HTML tags of rich text documents to
// GTK TextTags, plus the meta tags used for embeds.
var Tags = textutil.TextTagsMap{
	// https://www.w3schools.com/cssref/css_default_values.asp
	"h1":     HTag(1.35),
	"h2":     HTag(1.20),
	"h3":     HTag(1.10),
	"h4":     HTag(1.00),
	"h5":     HTag(0.90),
	"h6":     HTag(0.83),
	"em":     {"style": pango.StyleItalic},
	"i":      {"style": pango.StyleItalic},
	"strong": {"weight": pango.WeightBold},
	"b":      {"weight": pango.WeightBold},
	"u":      {"underline": pango.UnderlineSingle},
	"s":      {"strikethrough": true},
	"strike": {"strikethrough": true},
	"code": {
		"family":         "Monospace",
		"insert-hyphens": false,
	},
	"blockquote": {
		"foreground":  "#789922",
		"left-margin": 12, // px
	},

	// Not an actual HTML tag.
	"htmltag": {
		"family":     "Monospace",
		"foreground": "#808080",
	},

	// Embed tags.
	"_mention": {"foreground": HighlightColor},
	"_topic":   {"foreground": HighlightColor},
	"_formula_error": {
		"foreground": "#f00",
		"family":     "Monospace",
	},
	"_video": {
		"foreground": HighlightColor,
		"underline":  pango.UnderlineSingle,
	},

	"_nohyphens": {"insert-hyphens": false},
}

// HTag creates a new TextTag for the heading with the given scale.
func HTag(scale float64) textutil.TextTag {
	return textutil.TextTag{
		"scale":  scale,
		"weight": pango.WeightBold,
	}
}
