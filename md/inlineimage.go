package md

import (
	"context"
	"strings"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gdkpixbuf/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/gtkutil"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"
	"github.com/diamondburned/gotkit/gtkutil/imgutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/md/embed"
)

// InlineImage is an inline image. The actual widget type depends on the
// constructor.
type InlineImage struct {
	gtk.Widgetter
}

// SetSizeRequest sets the minimum size of the inline image.
func (i *InlineImage) SetSizeRequest(w, h int) {
	gtk.BaseWidget(i).SetSizeRequest(w, h)
}

var inlineImageCSS = cssutil.Applier("md-inlineimage", `
	.md-inlineimage {
		margin-bottom: -0.45em;
	}
`)

// InsertImageWidget inserts a placeholder image widget. Images created using
// this function will have the ".md-inlineimage" class.
func InsertImageWidget(view *gtk.TextView, anchor *gtk.TextChildAnchor) *InlineImage {
	image := gtk.NewImageFromIconName("image-x-generic-symbolic")
	return InsertCustomImageWidget(view, anchor, image)
}

// InsertCustomImageWidget is the custom variant of InsertImageWidget.
func InsertCustomImageWidget(view *gtk.TextView, anchor *gtk.TextChildAnchor, imager gtk.Widgetter) *InlineImage {
	image := gtk.BaseWidget(imager)
	inlineImageCSS(image)

	fixTextHeight(view, image)

	view.AddChildAtAnchor(image, anchor)
	view.AddCSSClass("md-hasimage")

	return &InlineImage{imager}
}

// InsertEmbedImage inserts the image of an emoji or formula embed. The image
// is loaded asynchronously once the widget is drawn. The returned boolean is
// false if the embed has no image, in which case nothing is inserted.
func InsertEmbedImage(ctx context.Context, codec *embed.Codec, view *gtk.TextView, anchor *gtk.TextChildAnchor, e embed.Entity) (*InlineImage, bool) {
	url, ok := codec.ImageURL(e)
	if !ok {
		return nil, false
	}

	w, h := EmojiSize, EmojiSize
	if e.Kind() == embed.KindFormula {
		w, h = -1, FormulaHeight
	}

	picture := gtk.NewPicture()
	picture.AddCSSClass("md-embedimage")
	picture.AddCSSClass(e.Kind().ClassName())
	picture.SetCanShrink(true)
	picture.SetKeepAspectRatio(true)
	picture.SetSizeRequest(w, h)

	gtkutil.OnFirstDraw(picture, func() {
		LoadImage(ctx, url, func(p gdk.Paintabler) {
			pw, ph := imgutil.MaxSize(p.IntrinsicWidth(), p.IntrinsicHeight(), maxWidth(w, h), h)
			picture.SetSizeRequest(pw, ph)
			picture.SetPaintable(p)
		})
	})

	return InsertCustomImageWidget(view, anchor, picture), true
}

// Maximum size of Markdown images.
const (
	ImageMaxWidth  = 320
	ImageMaxHeight = 240
)

// InsertURLImage inserts an image loaded from url. The alternative text is
// shown as the tooltip.
func InsertURLImage(ctx context.Context, view *gtk.TextView, anchor *gtk.TextChildAnchor, url, alt string) *InlineImage {
	picture := gtk.NewPicture()
	picture.AddCSSClass("md-urlimage")
	picture.SetCanShrink(true)
	picture.SetKeepAspectRatio(true)
	if alt != "" {
		picture.SetTooltipText(alt)
	}

	gtkutil.OnFirstDraw(picture, func() {
		LoadImage(ctx, url, func(p gdk.Paintabler) {
			w, h := imgutil.MaxSize(p.IntrinsicWidth(), p.IntrinsicHeight(), ImageMaxWidth, ImageMaxHeight)
			picture.SetSizeRequest(w, h)
			picture.SetPaintable(p)
		})
	})

	return InsertCustomImageWidget(view, anchor, picture)
}

func maxWidth(w, h int) int {
	if w < 0 {
		return h * 16
	}
	return w
}

// LoadImage loads the image at url and calls f with it. Data URIs are decoded
// synchronously; other URLs are fetched in the background.
func LoadImage(ctx context.Context, url string, f func(gdk.Paintabler)) {
	if !strings.HasPrefix(url, "data:") {
		imgutil.AsyncGET(ctx, url, f)
		return
	}

	texture, err := dataTexture(url)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("cannot load inline image")
		return
	}

	f(texture)
}

func dataTexture(uri string) (*gdk.Texture, error) {
	_, data, err := embed.DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}

	loader := gdkpixbuf.NewPixbufLoader()
	if err := loader.Write(data); err != nil {
		return nil, errors.Wrap(err, "cannot decode image")
	}
	if err := loader.Close(); err != nil {
		return nil, errors.Wrap(err, "cannot decode image")
	}

	return gdk.NewTextureForPixbuf(loader.Pixbuf()), nil
}

func fixTextHeight(view *gtk.TextView, image *gtk.Widget) {
	for _, class := range view.CSSClasses() {
		if class == "md-hasimage" {
			return
		}
	}

	gtkutil.OnFirstDrawUntil(view, func() bool {
		h := image.AllocatedHeight()
		if h < 1 {
			return true
		}

		// GTK pads the line of a child widget; remove most of the excess.
		h = h * 95 / 100
		cssutil.Applyf(view, `* { margin-bottom: -%dpx; }`, h)

		return false
	})
}
