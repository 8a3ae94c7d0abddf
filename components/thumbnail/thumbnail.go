// Package thumbnail shows block embeds, such as videos and uploaded images,
// as clickable thumbnails inside a text view.
package thumbnail

import (
	"context"
	"html"
	"mime"
	"path"
	"strings"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/app"
	"github.com/diamondburned/gotkit/gtkutil"
	"github.com/diamondburned/gotkit/gtkutil/cssutil"
	"github.com/diamondburned/gotkit/gtkutil/imgutil"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/embed"
)

// Kind is what a Thumbnail shows. It decides the overlay drawn on top.
type Kind uint8

const (
	KindImage Kind = iota
	KindVideo
	KindGIF
)

// KindFromURL guesses the Kind from the extension or data URI type of url.
func KindFromURL(url string) Kind {
	typ := mime.TypeByExtension(path.Ext(url))
	if rest, ok := strings.CutPrefix(url, "data:"); ok {
		typ, _, _ = strings.Cut(rest, ";")
	}

	switch {
	case typ == "image/gif":
		return KindGIF
	case strings.HasPrefix(typ, "video/"):
		return KindVideo
	default:
		return KindImage
	}
}

// Thumbnail is a clickable picture bounded by a maximum size.
type Thumbnail struct {
	*gtk.Button
	Picture *gtk.Picture

	ctx  context.Context
	url  string
	open func()

	width, height       int
	maxWidth, maxHeight int
}

var thumbnailCSS = cssutil.Applier("thumbnail", `
	.thumbnail {
		padding: 0;
		margin:  0;
		background: none;
	}
	.thumbnail-picture {
		background-color: black;
	}
	.thumbnail:hover .thumbnail-picture {
		filter: brightness(80%);
	}
	.thumbnail-play {
		background-color: alpha(@theme_bg_color, 0.85);
		border-radius: 999px;
		padding: 8px;
	}
	.thumbnail-gifmark {
		background-color: alpha(white, 0.85);
		color: black;
		padding: 0 4px;
		margin:  4px;
		border-radius: 8px;
		font-weight: bold;
	}
`)

// New creates an empty Thumbnail of the given kind.
func New(ctx context.Context, kind Kind, maxW, maxH int) *Thumbnail {
	t := &Thumbnail{
		ctx:       ctx,
		maxWidth:  maxW,
		maxHeight: maxH,
	}

	t.Picture = gtk.NewPicture()
	t.Picture.AddCSSClass("thumbnail-picture")
	t.Picture.SetCanFocus(false)
	t.Picture.SetCanShrink(true)
	t.Picture.SetKeepAspectRatio(true)

	t.Button = gtk.NewButton()
	t.Button.SetOverflow(gtk.OverflowHidden)
	t.Button.SetHAlign(gtk.AlignStart)
	t.Button.SetHasFrame(false)
	t.Button.SetCanTarget(false)
	t.Button.ConnectClicked(func() {
		if t.open != nil {
			t.open()
		}
	})
	thumbnailCSS(t.Button)

	if kind == KindImage {
		t.Button.SetChild(t.Picture)
		return t
	}

	overlay := gtk.NewOverlay()
	overlay.SetChild(t.Picture)
	overlay.AddOverlay(kindMark(kind))
	t.Button.SetChild(overlay)

	return t
}

func kindMark(kind Kind) gtk.Widgetter {
	if kind == KindGIF {
		gif := gtk.NewLabel("GIF")
		gif.AddCSSClass("thumbnail-gifmark")
		gif.SetCanTarget(false)
		gif.SetVAlign(gtk.AlignStart)
		gif.SetHAlign(gtk.AlignEnd)
		return gif
	}

	play := gtk.NewImageFromIconName("media-playback-start-symbolic")
	play.AddCSSClass("thumbnail-play")
	play.SetHAlign(gtk.AlignCenter)
	play.SetVAlign(gtk.AlignCenter)
	play.SetIconSize(gtk.IconSizeLarge)
	return play
}

// NewImage creates a thumbnail of the image at url. Clicking it opens url.
func NewImage(ctx context.Context, url string, maxW, maxH int) *Thumbnail {
	t := New(ctx, KindFromURL(url), maxW, maxH)
	t.SetURL(url)
	t.Load()
	if !strings.HasPrefix(url, "data:") {
		t.SetOpen(func() { app.OpenURI(ctx, url) })
	}
	return t
}

// NewVideo creates a thumbnail of a video player URL. There is no preview
// image, so a placeholder icon is shown. Clicking it opens url.
func NewVideo(ctx context.Context, url string, maxW, maxH int) *Thumbnail {
	t := New(ctx, KindVideo, maxW, maxH)
	t.SetURL(url)
	t.SetSize(maxW, maxH)
	t.Picture.SetPaintable(imgutil.IconPaintable("video-x-generic", maxW, maxH))
	t.SetOpen(func() { app.OpenURI(ctx, url) })
	return t
}

// URL returns the URL of the thumbnail.
func (t *Thumbnail) URL() string { return t.url }

// SetURL sets the URL. The tooltip shows it through Describe.
func (t *Thumbnail) SetURL(url string) {
	t.url = url
	t.Button.SetTooltipText(Describe(url))
}

// Describe returns a short description of url for tooltips. Data URIs are
// described by their type and size instead of their content.
func Describe(url string) string {
	if !strings.HasPrefix(url, "data:") {
		return url
	}

	typ, data, err := embed.DecodeDataURI(url)
	if err != nil {
		return "Invalid image"
	}
	if typ == "" {
		typ = "image"
	}
	return typ + ", " + humanize.Bytes(uint64(len(data)))
}

// Load loads the picture from the URL once the thumbnail is drawn.
func (t *Thumbnail) Load() {
	ctx := imgutil.WithOpts(t.ctx, imgutil.WithErrorFn(t.onError))
	url := t.url

	gtkutil.OnFirstDraw(t, func() {
		md.LoadImage(ctx, url, t.setPaintable)
	})
}

func (t *Thumbnail) setPaintable(p gdk.Paintabler) {
	t.SetSize(p.IntrinsicWidth(), p.IntrinsicHeight())
	t.Picture.SetPaintable(p)
	t.Picture.QueueResize()
}

func (t *Thumbnail) onError(err error) {
	zerolog.Ctx(t.ctx).Debug().Err(err).Str("url", t.url).Msg("cannot load thumbnail")

	w, h := t.width, t.height
	if w == 0 && h == 0 {
		w, h = t.maxWidth, t.maxHeight
	}
	t.Picture.SetPaintable(imgutil.IconPaintable("image-missing", w, h))
	t.Button.SetTooltipMarkup(html.EscapeString(Describe(t.url)) + "\n<b>Error:</b> " + html.EscapeString(err.Error()))
}

// SetOpen sets the click callback. The thumbnail only takes clicks while one
// is set.
func (t *Thumbnail) SetOpen(f func()) {
	t.open = f
	t.Button.SetCanTarget(f != nil)
}

// SetSize scales w and h down to the maximum size and requests it.
func (t *Thumbnail) SetSize(w, h int) {
	t.width, t.height = imgutil.MaxSize(w, h, t.maxWidth, t.maxHeight)
	t.SetSizeRequest(t.width, t.height)
}
