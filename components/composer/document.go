package composer

import (
	"maps"
	"strings"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/kits/delta"
	"github.com/diamondburned/embedkit/md"
)

// Document exports the buffer as a delta document. Embeds become embed ops,
// and tags become attributes. Line formats are carried by the newline that
// ends their line.
func (c *Composer) Document() *delta.Document {
	log := zerolog.Ctx(c.ctx)
	doc := &delta.Document{}

	var (
		text  strings.Builder
		attrs delta.Attributes
	)

	flush := func() {
		if text.Len() > 0 {
			doc.Ops = append(doc.Ops, delta.Op{Insert: text.String(), Attributes: attrs})
			text.Reset()
		}
	}

	iter := c.Buffer.StartIter()
	for !iter.IsEnd() {
		if iter.ChildAnchor() != nil {
			a, ok := md.AnchorAt(c.ctx, iter)
			if ok && !a.IsLink() {
				flush()
				doc.Ops = append(doc.Ops, delta.Op{
					Embed: &delta.Embed{Kind: a.Kind, Value: a.Value},
				})
			} else {
				log.Warn().Int("offset", iter.Offset()).Msg("skipping child anchor without embed")
			}
			iter.ForwardChar()
			continue
		}

		char := rune(iter.Char())
		charAttrs := c.attributesAt(iter, char == '\n')

		if !maps.Equal(attrs, charAttrs) {
			flush()
			attrs = charAttrs
		}

		text.WriteRune(char)
		iter.ForwardChar()
	}

	flush()

	if n := len(doc.Ops); n == 0 || doc.Ops[n-1].Embed != nil || !strings.HasSuffix(doc.Ops[n-1].Insert, "\n") {
		doc.Ops = append(doc.Ops, delta.Op{Insert: "\n"})
	}

	return doc
}

// JSON exports the buffer as a JSON delta.
func (c *Composer) JSON() ([]byte, error) {
	return c.Document().MarshalJSON()
}

// HTML exports the buffer as HTML.
func (c *Composer) HTML() (string, error) {
	return c.Document().HTML(c.codec, *zerolog.Ctx(c.ctx))
}

// attributesAt returns the attributes of the character at iter. Line formats
// are only read from newlines.
func (c *Composer) attributesAt(iter *gtk.TextIter, newline bool) delta.Attributes {
	var attrs delta.Attributes
	set := func(k string, v any) {
		if attrs == nil {
			attrs = delta.Attributes{}
		}
		attrs[k] = v
	}

	for _, tag := range iter.Tags() {
		name := tag.ObjectProperty("name").(string)

		for mark, tagName := range markTags {
			if name == tagName {
				set(mark, true)
			}
		}

		if style, value, ok := pickerFormat(name); ok {
			if lineFormats[style] == newline {
				set(style, value)
			}
			continue
		}

		if a, err := md.ParseAnchorTag(name); err == nil && a.IsLink() {
			set("link", a.Value)
		}
	}

	return attrs
}
