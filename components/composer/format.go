package composer

import (
	"context"
	"strings"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/diamondburned/gotkit/gtkutil/textutil"

	"github.com/diamondburned/embedkit/kits/popup"
	"github.com/diamondburned/embedkit/kits/toolbar"
	"github.com/diamondburned/embedkit/md"
)

// Inline format commands. Their names are also the attribute names.
const (
	commandBold      = "bold"
	commandItalic    = "italic"
	commandUnderline = "underline"
	commandStrike    = "strike"
	commandCode      = "code"
)

// markTags maps inline marks to their md.Tags names.
var markTags = map[string]string{
	commandBold:      "b",
	commandItalic:    "i",
	commandUnderline: "u",
	commandStrike:    "s",
	commandCode:      "code",
}

// pickerTagPrefix prefixes the tags created for picker formats. The full name
// is the prefix, the format, an underscore and the value.
const pickerTagPrefix = "_fmt_"

// lineFormats are applied to whole lines.
var lineFormats = map[string]bool{
	toolbar.FormatAlign:  true,
	toolbar.FormatHeader: true,
}

var sizeScales = map[string]float64{
	"small": 0.75,
	"large": 1.5,
	"huge":  2.5,
}

var justifications = map[string]gtk.Justification{
	"center":  gtk.JustifyCenter,
	"right":   gtk.JustifyRight,
	"justify": gtk.JustifyFill,
}

var headerScales = map[string]float64{
	"1": 1.35,
	"2": 1.20,
	"3": 1.10,
}

func (c *Composer) bindFormats() {
	for name := range markTags {
		c.tools.Register(name, func(context.Context) error {
			r, ok := c.host.Selection(true)
			if !ok || r.Length == 0 {
				return nil
			}

			value := "true"
			if c.hasMark(r, name) {
				value = ""
			}

			c.host.FormatRange(r, name, value, popup.SourceUser)
			return nil
		})
	}
}

// ApplyFormat applies a picker value to the selection. See toolbar.Options
// for the available values.
func (c *Composer) ApplyFormat(format, value string) error {
	return toolbar.ApplyFormat(c.host, format, value)
}

func (c *Composer) hasMark(r popup.Range, name string) bool {
	tag := md.Tags.FromTable(c.Buffer.TagTable(), markTags[name])
	return c.Buffer.IterAtOffset(r.Index).HasTag(tag)
}

func (c *Composer) format(r popup.Range, style, value string) {
	start := c.Buffer.IterAtOffset(r.Index)
	end := c.Buffer.IterAtOffset(r.End())

	if lineFormats[style] {
		start.SetLineOffset(0)
		if !end.EndsLine() {
			end.ForwardToLineEnd()
		}
		// Include the newline, which carries line formats.
		end.ForwardChar()
	}

	switch {
	case style == "link":
		c.formatLink(start, end, value)
	case markTags[style] != "":
		tag := md.Tags.FromTable(c.Buffer.TagTable(), markTags[style])
		if value == "" {
			c.Buffer.RemoveTag(tag, start, end)
		} else {
			c.Buffer.ApplyTag(tag, start, end)
		}
	default:
		c.removeTagsWithPrefix(start, end, pickerTagPrefix+style+"_")
		if tag := c.pickerTag(style, value); tag != nil {
			c.Buffer.ApplyTag(tag, start, end)
		}
	}
}

func (c *Composer) formatLink(start, end *gtk.TextIter, url string) {
	table := c.Buffer.TagTable()
	link := textutil.LinkTags().FromTable(table, "a")

	c.removeTagsWithPrefix(start, end, md.AnchorTagPrefix)
	c.Buffer.RemoveTag(link, start, end)

	if url == "" {
		return
	}

	c.Buffer.ApplyTag(emptyTag(table, md.URLTagName(start, end, url)), start, end)
	c.Buffer.ApplyTag(link, start, end)
}

// removeTagsWithPrefix removes the tags with the given name prefix. Embed
// anchors are never removed.
func (c *Composer) removeTagsWithPrefix(start, end *gtk.TextIter, prefix string) {
	var tags []*gtk.TextTag

	c.Buffer.TagTable().ForEach(func(tag *gtk.TextTag) {
		name := tag.ObjectProperty("name").(string)
		if !strings.HasPrefix(name, prefix) {
			return
		}
		if a, err := md.ParseAnchorTag(name); err == nil && !a.IsLink() {
			return
		}
		tags = append(tags, tag)
	})

	for _, tag := range tags {
		c.Buffer.RemoveTag(tag, start, end)
	}
}

// pickerTag returns the tag for a picker format. Nil is returned for the
// empty value, which means no formatting.
func (c *Composer) pickerTag(style, value string) *gtk.TextTag {
	if value == "" {
		return nil
	}

	attrs := textutil.TextTag{}
	switch style {
	case toolbar.FormatColor:
		attrs["foreground"] = value
	case toolbar.FormatBackground:
		attrs["background"] = value
	case toolbar.FormatFont:
		attrs["family"] = value
	case toolbar.FormatSize:
		attrs["scale"] = sizeScales[value]
	case toolbar.FormatAlign:
		attrs["justification"] = justifications[value]
	case toolbar.FormatHeader:
		attrs["scale"] = headerScales[value]
		attrs["weight"] = pango.WeightBold
	default:
		return nil
	}

	table := c.Buffer.TagTable()
	name := pickerTagPrefix + style + "_" + value

	if tag := table.Lookup(name); tag != nil {
		return tag
	}

	tag := attrs.Tag(name)
	table.Add(tag)
	return tag
}

// pickerFormat parses the name of a picker tag.
func pickerFormat(tagName string) (style, value string, ok bool) {
	rest, ok := strings.CutPrefix(tagName, pickerTagPrefix)
	if !ok {
		return "", "", false
	}
	return strings.Cut(rest, "_")
}
