package embed

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-latex/latex/drawtex/drawimg"
	"github.com/go-latex/latex/mtex"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Typesetter turns math source into a visual fragment.
type Typesetter interface {
	Typeset(src string) (*html.Node, error)
}

// TypesetterFunc is a function that implements Typesetter.
type TypesetterFunc func(src string) (*html.Node, error)

// Typeset implements Typesetter.
func (f TypesetterFunc) Typeset(src string) (*html.Node, error) { return f(src) }

// TeXTypesetter renders TeX math into an inline PNG image.
type TeXTypesetter struct {
	Size float64
	DPI  float64
	Log  zerolog.Logger
}

// Typeset implements Typesetter. A panic inside the renderer is returned as
// an error.
func (t TeXTypesetter) Typeset(src string) (n *html.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("typesetter panicked: %v", r)
		}
	}()

	var buf bytes.Buffer
	if err := mtex.Render(drawimg.NewRenderer(&buf), texExpr(src), t.Size, t.DPI, nil); err != nil {
		return nil, errors.Wrap(err, "cannot typeset formula")
	}

	t.Log.Debug().
		Str("formula", src).
		Str("size", humanize.Bytes(uint64(buf.Len()))).
		Msg("typeset formula")

	img := newElement(atom.Img)
	setAttr(img, "class", "embed-formula-image")
	setAttr(img, "alt", src)
	setAttr(img, "src", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes()))
	return img, nil
}

// texExpr wraps src in math delimiters unless it already is.
func texExpr(src string) string {
	src = strings.TrimSpace(src)
	if len(src) > 1 && strings.HasPrefix(src, "$") && strings.HasSuffix(src, "$") {
		return src
	}
	return "$" + src + "$"
}

// formulaErrorColor is the color of the inline marker shown in place of a
// formula that failed to typeset.
const formulaErrorColor = "#f00"

func formulaErrorNode(src string, err error) *html.Node {
	span := newElement(atom.Span)
	setAttr(span, "class", "embed-formula-error")
	setAttr(span, "style", "color:"+formulaErrorColor)
	setAttr(span, "title", err.Error())
	span.AppendChild(newText(src))
	return span
}
