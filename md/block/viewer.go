package block

import (
	"context"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotkit/app"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/md"
	"github.com/diamondburned/embedkit/md/embed"
)

// Viewer is a widget that renders a Markdown AST node into widgets. All widgets
// within the viewer are strictly immutable. A Viewer itself is a
// ContainerWidgetBlock.
type Viewer struct {
	*gtk.Box
	// Codec renders the embeds within the viewer. It is taken from the
	// context given to NewViewer.
	Codec *embed.Codec
	// OnEmbed is called when an embed is clicked. Video embeds are opened in
	// the browser if OnEmbed is nil.
	OnEmbed func(embed.Entity)

	table  *gtk.TextTagTable
	state  *ContainerState
	ctx    context.Context
	embeds []embed.Entity
}

var (
	_ WidgetBlock          = (*Viewer)(nil)
	_ ContainerWidgetBlock = (*Viewer)(nil)
)

// NewViewer creates a new Markdown viewer.
func NewViewer(ctx context.Context) *Viewer {
	v := Viewer{
		Codec: embed.CodecFromContext(ctx),
		ctx:   ctx,
		table: gtk.NewTextTagTable(),
	}
	v.Box = gtk.NewBox(gtk.OrientationVertical, 0)
	v.state = newContainerState(&v, v.Box)
	return &v
}

// State returns the Viewer's ContainerState. It implements
// ContainerWidgetBlock.
func (v *Viewer) State() *ContainerState {
	return v.state
}

// TagTable returns the viewer's shared TextTagTable.
func (v *Viewer) TagTable() *gtk.TextTagTable {
	return v.table
}

// Embeds returns the embeds rendered so far, in document order.
func (v *Viewer) Embeds() []embed.Entity {
	return v.embeds
}

func (v *Viewer) activate(a md.Anchor) {
	if a.IsLink() {
		app.OpenURI(v.ctx, a.Value)
		return
	}

	e, err := a.Entity()
	if err != nil {
		zerolog.Ctx(v.ctx).Warn().Err(err).Str("kind", string(a.Kind)).Msg("cannot open embed")
		return
	}

	switch {
	case v.OnEmbed != nil:
		v.OnEmbed(e)
	case e.Kind() == embed.KindVideo:
		app.OpenURI(v.ctx, string(e.(embed.Video)))
	}
}
