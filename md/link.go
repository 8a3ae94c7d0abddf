package md

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/gtkutil/textutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/md/embed"
)

// AnchorTagPrefix is the prefix of tag names that hold an Anchor.
const AnchorTagPrefix = "anchor:"

// Anchor is a clickable region within a text buffer. It is either a hyperlink
// or an embed. Anchors are stored as JSON inside the name of an empty tag.
type Anchor struct {
	From int `json:"1"`
	To   int `json:"2"`
	// Kind is the embed kind. It is empty for hyperlinks.
	Kind embed.Kind `json:"k,omitempty"`
	// Value is the URL of a hyperlink or the serialized embed payload.
	Value string `json:"v"`
}

// IsLink returns true if the anchor is a hyperlink.
func (a Anchor) IsLink() bool { return a.Kind == "" }

// Entity decodes the embed of the anchor.
func (a Anchor) Entity() (embed.Entity, error) {
	if a.IsLink() {
		return nil, embed.ErrNotEmbed
	}
	return embed.Decode(a.Kind, a.Value)
}

// TagName returns the tag name that holds the anchor.
func (a Anchor) TagName() string {
	// Anchor only holds strings and ints.
	b, _ := json.Marshal(a)
	return AnchorTagPrefix + string(b)
}

// URLTagName creates a new URL tag name from the given URL.
func URLTagName(start, end *gtk.TextIter, url string) string {
	return Anchor{From: start.Offset(), To: end.Offset(), Value: url}.TagName()
}

// EmbedTagName creates a new tag name for the embed spanning from start to
// end.
func EmbedTagName(start, end *gtk.TextIter, e embed.Entity) (string, error) {
	value, err := embed.Encode(e)
	if err != nil {
		return "", err
	}
	return Anchor{From: start.Offset(), To: end.Offset(), Kind: e.Kind(), Value: value}.TagName(), nil
}

// ParseAnchorTag parses an anchor from a tag name. A tag name without the
// anchor prefix returns embed.ErrNotEmbed.
func ParseAnchorTag(tagName string) (Anchor, error) {
	data, ok := strings.CutPrefix(tagName, AnchorTagPrefix)
	if !ok {
		return Anchor{}, embed.ErrNotEmbed
	}

	var a Anchor
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return a, errors.Wrap(err, "invalid anchor tag")
	}

	return a, nil
}

// AnchorAt returns the anchor under the given iterator.
func AnchorAt(ctx context.Context, it *gtk.TextIter) (Anchor, bool) {
	for _, tag := range it.Tags() {
		name := tag.ObjectProperty("name").(string)
		if !strings.HasPrefix(name, AnchorTagPrefix) {
			continue
		}

		a, err := ParseAnchorTag(name)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("tag", name).Msg("skipping anchor")
			continue
		}

		return a, true
	}

	return Anchor{}, false
}

// BindLinkHandler binds input handlers for triggering hyperlinks within the
// TextView. Embed anchors are ignored.
func BindLinkHandler(ctx context.Context, tview *gtk.TextView, onURL func(string)) {
	BindAnchorHandler(ctx, tview, func(a Anchor) {
		if a.IsLink() {
			onURL(a.Value)
		}
	})
}

// BindAnchorHandler binds input handlers for clicking anchors within the
// TextView. If BindAnchorHandler is called on the same TextView again, then it
// does nothing. The function checks this by checking for the .md-anchored
// class.
func BindAnchorHandler(ctx context.Context, tview *gtk.TextView, onAnchor func(Anchor)) {
	if tview.HasCSSClass("md-anchored") {
		return
	}
	tview.AddCSSClass("md-anchored")

	linkTags := textutil.LinkTags()

	checkAnchor := func(x, y float64) *Anchor {
		bx, by := tview.WindowToBufferCoords(gtk.TextWindowWidget, int(x), int(y))
		it, ok := tview.IterAtLocation(bx, by)
		if !ok {
			return nil
		}

		if a, ok := AnchorAt(ctx, it); ok {
			return &a
		}
		return nil
	}

	buf := tview.Buffer()
	table := buf.TagTable()

	click := gtk.NewGestureClick()
	click.SetButton(1)
	click.SetExclusive(true)
	click.ConnectAfter("pressed", func(nPress int, x, y float64) {
		if nPress != 1 {
			return
		}

		a := checkAnchor(x, y)
		if a == nil {
			return
		}

		onAnchor(*a)

		if a.IsLink() {
			tag := linkTags.FromBuffer(buf, "a:visited")
			buf.ApplyTag(tag, buf.IterAtOffset(a.From), buf.IterAtOffset(a.To))
		}
	})

	var (
		last    *Anchor
		lastTag *gtk.TextTag
	)

	unhover := func() {
		if last != nil {
			buf.RemoveTag(lastTag, buf.IterAtOffset(last.From), buf.IterAtOffset(last.To))
			last = nil
			lastTag = nil
		}
	}

	motion := gtk.NewEventControllerMotion()
	motion.ConnectLeave(func() {
		unhover()
	})
	motion.ConnectMotion(func(x, y float64) {
		a := checkAnchor(x, y)
		if a != nil && last != nil && *a == *last {
			return
		}

		unhover()

		if a != nil {
			hover := linkTags.FromTable(table, "a:hover")
			buf.ApplyTag(hover, buf.IterAtOffset(a.From), buf.IterAtOffset(a.To))

			last = a
			lastTag = hover
		}
	})

	tview.AddController(click)
	tview.AddController(motion)
}
