// Package delta implements an in-memory rich text document made of insert
// operations, in the shape used by Quill deltas. A Document can act as the
// host editor of a popup controller, which makes it usable for headless
// composing, tests and server-side export.
package delta

import (
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/diamondburned/embedkit/md/embed"
)

// KindImage is the embed kind of uploaded images. Images are not embed
// entities; their value is the image URL.
const KindImage embed.Kind = "image"

// ObjectReplacement is the character that Plain writes in place of embeds.
const ObjectReplacement = "\uFFFC"

// Embed is an embedded node. Value is the serialized payload.
type Embed struct {
	Kind  embed.Kind
	Value string
}

// Entity decodes the embed payload.
func (e Embed) Entity() (embed.Entity, error) {
	return embed.Decode(e.Kind, e.Value)
}

// Attributes are the formatting attributes of an op. Values decoded from JSON
// may be of any JSON type; values set through FormatRange are strings.
type Attributes map[string]any

// Has returns true if the attribute is set to anything but false or "".
func (a Attributes) Has(key string) bool {
	switch v := a[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		return true
	}
}

// String returns the attribute if it is a string.
func (a Attributes) String(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a Attributes) clone() Attributes {
	if len(a) == 0 {
		return nil
	}
	c := make(Attributes, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

func (a Attributes) equal(b Attributes) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Op is a single insert operation. Exactly one of Insert and Embed is set.
type Op struct {
	Insert     string
	Embed      *Embed
	Attributes Attributes
}

// Len returns the length of the op in document positions: one per rune of
// text, and one for an embed.
func (o Op) Len() int {
	if o.Embed != nil {
		return 1
	}
	return utf8.RuneCountInString(o.Insert)
}

// Document is a list of insert operations plus the editing state that a host
// editor carries: a selection, a focus flag and a scroll offset.
type Document struct {
	Ops []Op

	selection    Range
	hasSelection bool
	focused      bool
	scrollTop    float64
}

// New creates a document holding the given plain text.
func New(text string) *Document {
	d := &Document{}
	if text != "" {
		d.Ops = []Op{{Insert: text}}
	}
	return d
}

// Len returns the length of the document.
func (d *Document) Len() int {
	var n int
	for _, op := range d.Ops {
		n += op.Len()
	}
	return n
}

// Plain returns the text of the document with every embed replaced by
// ObjectReplacement.
func (d *Document) Plain() string {
	var b strings.Builder
	for _, op := range d.Ops {
		if op.Embed != nil {
			b.WriteString(ObjectReplacement)
		} else {
			b.WriteString(op.Insert)
		}
	}
	return b.String()
}

// EmbedAt is an embed entity and its position.
type EmbedAt struct {
	Index  int
	Entity embed.Entity
}

// Embeds returns the embed entities of the document in order. Embeds whose
// kind has no entity, such as images, are skipped.
func (d *Document) Embeds() ([]EmbedAt, error) {
	var embeds []EmbedAt
	var at int

	for _, op := range d.Ops {
		if op.Embed != nil && op.Embed.Kind.IsValid() {
			e, err := op.Embed.Entity()
			if err != nil {
				return embeds, errors.Wrapf(err, "embed at %d", at)
			}
			embeds = append(embeds, EmbedAt{Index: at, Entity: e})
		}
		at += op.Len()
	}

	return embeds, nil
}

func (d *Document) clamp(pos int) int {
	return max(0, min(pos, d.Len()))
}

// split makes sure that an op starts at pos and returns the index of that op.
// If pos is the end of the document, len(d.Ops) is returned.
func (d *Document) split(pos int) int {
	var at int
	for i, op := range d.Ops {
		if at == pos {
			return i
		}

		n := op.Len()
		if pos < at+n {
			runes := []rune(op.Insert)
			k := pos - at

			right := Op{Insert: string(runes[k:]), Attributes: op.Attributes.clone()}
			d.Ops[i].Insert = string(runes[:k])
			d.Ops = slices.Insert(d.Ops, i+1, right)
			return i + 1
		}

		at += n
	}
	return len(d.Ops)
}

func (d *Document) insert(pos int, op Op) {
	i := d.split(d.clamp(pos))
	d.Ops = slices.Insert(d.Ops, i, op)
	d.normalize()
}

// normalize drops empty text ops and merges neighboring text ops that have
// the same attributes.
func (d *Document) normalize() {
	ops := d.Ops[:0]
	for _, op := range d.Ops {
		if op.Embed == nil && op.Insert == "" {
			continue
		}
		if len(op.Attributes) == 0 {
			op.Attributes = nil
		}

		if n := len(ops); n > 0 && op.Embed == nil {
			last := &ops[n-1]
			if last.Embed == nil && last.Attributes.equal(op.Attributes) {
				last.Insert += op.Insert
				continue
			}
		}

		ops = append(ops, op)
	}

	clear(d.Ops[len(ops):])
	d.Ops = ops
}

// Format sets the attribute on every op inside r. An empty value removes the
// attribute.
func (d *Document) Format(r Range, key, value string) {
	start := d.clamp(r.Index)
	end := d.clamp(r.End())
	if start >= end {
		return
	}

	i0 := d.split(start)
	i1 := d.split(end)

	for i := i0; i < i1; i++ {
		attrs := d.Ops[i].Attributes.clone()
		if value == "" {
			delete(attrs, key)
		} else {
			if attrs == nil {
				attrs = make(Attributes, 1)
			}
			attrs[key] = value
		}
		d.Ops[i].Attributes = attrs
	}

	d.normalize()
}
