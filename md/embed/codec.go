package embed

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNotEmbed is returned by Extract for nodes that carry no embed kind.
var ErrNotEmbed = errors.New("node is not an embed")

// highlightColor is the text color of mention and topic labels.
const highlightColor = "#1783ff"

// Codec builds embed fragments and exports them as static HTML.
type Codec struct {
	Images     ImageHost
	Typesetter Typesetter

	log zerolog.Logger
}

// CodecOpt is a function that changes a Codec.
type CodecOpt func(c *Codec)

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(log zerolog.Logger) CodecOpt {
	return func(c *Codec) { c.log = log }
}

// WithTypesetter overrides the formula typesetter.
func WithTypesetter(t Typesetter) CodecOpt {
	return func(c *Codec) { c.Typesetter = t }
}

// NewCodec creates a new Codec from the given configuration.
func NewCodec(cfg Config, opts ...CodecOpt) *Codec {
	c := &Codec{
		Images: ImageHost{BaseURL: cfg.ImageBaseURL},
		log:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.Typesetter == nil {
		c.Typesetter = TeXTypesetter{
			Size: cfg.Formula.Size,
			DPI:  cfg.Formula.DPI,
			Log:  c.log,
		}
	}

	return c
}

// Build decodes the serialized payload and builds its fragment. It fails on
// a malformed payload instead of returning a partial fragment.
func (c *Codec) Build(kind Kind, value string) (*html.Node, error) {
	e, err := Decode(kind, value)
	if err != nil {
		return nil, err
	}
	return c.BuildEntity(e), nil
}

// BuildEntity builds the fragment of an already decoded entity. The root of
// the fragment holds the payload as attributes; its children are the
// human-readable rendering.
func (c *Codec) BuildEntity(e Entity) *html.Node {
	kind := e.Kind()

	root := newElement(atom.Span)
	setAttr(root, "class", kind.ClassName())
	setAttr(root, "data-embed", string(kind))
	setAttr(root, "contenteditable", "false")

	switch e := e.(type) {
	case Mention:
		setAttr(root, "data-value", e.Name)
		setAttr(root, "data-user", e.ID)
		root.AppendChild(highlightedLabel("@" + e.Name))

	case Topic:
		setAttr(root, "data-value", e.Name)
		setAttr(root, "data-topic", e.ID)
		root.AppendChild(highlightedLabel("#" + e.Name + "#"))

	case Emoji:
		setAttr(root, "title", e.Title)
		setAttr(root, "data-url", e.Src)
		setAttr(root, "data-type", e.Type)
		root.AppendChild(c.emojiImage(e))

	case Formula:
		setAttr(root, "data-value", string(e))
		root.AppendChild(c.typeset(string(e)))

	case Video:
		setAttr(root, "data-value", string(e))
		root.AppendChild(videoFrame(string(e)))
	}

	return root
}

func (c *Codec) typeset(src string) *html.Node {
	n, err := c.tryTypeset(src)
	if err == nil && n != nil {
		return n
	}
	if err == nil {
		err = errors.New("typesetter returned nothing")
	}

	c.log.Warn().Err(err).Str("formula", src).Msg("formula typesetting failed")
	return formulaErrorNode(src, err)
}

// tryTypeset runs the Typesetter, turning a panic or a missing Typesetter
// into an error.
func (c *Codec) tryTypeset(src string) (n *html.Node, err error) {
	if c.Typesetter == nil {
		return nil, errors.New("no typesetter")
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("typesetter panicked: %v", r)
		}
	}()

	return c.Typesetter.Typeset(src)
}

// Extract recovers the entity from a fragment made by Build. Only the
// attributes of the root element are read.
func Extract(n *html.Node) (Entity, error) {
	if n == nil || n.Type != html.ElementNode {
		return nil, ErrNotEmbed
	}

	kind := Kind(getAttr(n, "data-embed"))
	if kind == "" {
		kind = kindFromClass(getAttr(n, "class"))
	}

	switch kind {
	case KindMention:
		return Mention{Name: getAttr(n, "data-value"), ID: getAttr(n, "data-user")}, nil
	case KindTopic:
		return Topic{Name: getAttr(n, "data-value"), ID: getAttr(n, "data-topic")}, nil
	case KindEmoji:
		return Emoji{
			Title: getAttr(n, "title"),
			Src:   getAttr(n, "data-url"),
			Type:  getAttr(n, "data-type"),
		}, nil
	case KindFormula:
		return Formula(getAttr(n, "data-value")), nil
	case KindVideo:
		return Video(getAttr(n, "data-value")), nil
	case "":
		return nil, ErrNotEmbed
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}
}

func kindFromClass(class string) Kind {
	for _, name := range strings.Fields(class) {
		if kind := Kind(strings.TrimPrefix(name, "embed-")); kind != Kind(name) && kind.IsValid() {
			return kind
		}
	}
	return ""
}

// HTML renders the static HTML of the entity. The output only depends on the
// entity, so it can be used where the live fragment is not available, such as
// exports and emails.
func (c *Codec) HTML(e Entity) string {
	var n *html.Node

	switch e := e.(type) {
	case Mention:
		n = newElement(atom.Span)
		n.AppendChild(newText("@" + e.Name))
	case Topic:
		n = newElement(atom.Span)
		n.AppendChild(newText("#" + e.Name + "#"))
	case Emoji:
		n = newElement(atom.Img)
		setAttr(n, "title", e.Title)
		setAttr(n, "src", c.Images.URL(e.Src))
	case Formula:
		n = newElement(atom.Span)
		n.AppendChild(newText(string(e)))
	case Video:
		n = videoFrame(string(e))
	default:
		return ""
	}

	return Render(n)
}

// Render renders the node into an HTML string.
func Render(n *html.Node) string {
	var b strings.Builder
	// Rendering into a strings.Builder never fails.
	html.Render(&b, n)
	return b.String()
}

// ParseFragment parses an HTML string and returns its first element. It is
// the inverse of Render for fragments made by Build.
func ParseFragment(s string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse fragment")
	}

	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n, nil
		}
	}

	return nil, ErrNotEmbed
}

func (c *Codec) emojiImage(e Emoji) *html.Node {
	img := newElement(atom.Img)
	setAttr(img, "src", c.Images.URL(e.Src))
	if e.Title != "" {
		setAttr(img, "alt", e.Title)
	}
	return img
}

func highlightedLabel(text string) *html.Node {
	span := newElement(atom.Span)
	setAttr(span, "style", "color:"+highlightColor)
	span.AppendChild(newText(text))
	return span
}

func videoFrame(url string) *html.Node {
	iframe := newElement(atom.Iframe)
	setAttr(iframe, "class", "embed-video-frame")
	setAttr(iframe, "frameborder", "0")
	setAttr(iframe, "allowfullscreen", "true")
	setAttr(iframe, "src", url)
	return iframe
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
	}
}

func newText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// ImageURL returns the URL of the image that displays e. Emojis map to their
// hosted image and formulas to the image produced by the typesetter. The
// second return is false for entities without an image, including formulas
// that failed to typeset.
func (c *Codec) ImageURL(e Entity) (string, bool) {
	switch e := e.(type) {
	case Emoji:
		return c.Images.URL(e.Src), true
	case Formula:
		if src := findImageSrc(c.typeset(string(e))); src != "" {
			return src, true
		}
	}
	return "", false
}

func findImageSrc(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		return getAttr(n, "src")
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if src := findImageSrc(child); src != "" {
			return src
		}
	}
	return ""
}
