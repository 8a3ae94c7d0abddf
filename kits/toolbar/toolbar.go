// Package toolbar maps toolbar buttons to popup controller commands.
package toolbar

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diamondburned/embedkit/kits/popup"
)

// ErrUnknownCommand is returned when triggering a command that was never
// registered.
var ErrUnknownCommand = errors.New("unknown toolbar command")

// Command names registered by Bind.
const (
	CommandLink    = "link"
	CommandFormula = "formula"
	CommandTopic   = "topic"
	CommandMention = "mention"
	CommandEmoji   = "emoji"
	CommandImage   = "image"
	CommandVideo   = "video"
)

// Handler handles a toolbar command.
type Handler func(ctx context.Context) error

// Uploader uploads user-chosen files and inserts them into the host at the
// given range.
type Uploader interface {
	Upload(ctx context.Context, at popup.Range) error
}

// UploaderFunc is a function that implements Uploader.
type UploaderFunc func(ctx context.Context, at popup.Range) error

// Upload implements Uploader.
func (f UploaderFunc) Upload(ctx context.Context, at popup.Range) error { return f(ctx, at) }

// Toolbar is a set of named command handlers.
type Toolbar struct {
	handlers map[string]Handler
}

// New creates an empty Toolbar.
func New() *Toolbar {
	return &Toolbar{handlers: make(map[string]Handler)}
}

// Register registers the handler under name, replacing any previous one.
func (t *Toolbar) Register(name string, h Handler) {
	t.handlers[name] = h
}

// Trigger runs the named command.
func (t *Toolbar) Trigger(ctx context.Context, name string) error {
	h, ok := t.handlers[name]
	if !ok {
		return errors.Wrapf(ErrUnknownCommand, "%q", name)
	}

	zerolog.Ctx(ctx).Debug().Str("command", name).Msg("toolbar command")
	return h(ctx)
}

// Names returns the registered command names in sorted order.
func (t *Toolbar) Names() []string {
	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bind registers the popup commands of c. The image command is only
// registered if up is not nil.
func (t *Toolbar) Bind(c *popup.Controller, host popup.Host, up Uploader) {
	tooltip := func(mode popup.Mode) Handler {
		return func(context.Context) error {
			c.OpenTooltip(mode)
			return nil
		}
	}

	t.Register(CommandLink, tooltip(popup.ModeLink))
	t.Register(CommandFormula, tooltip(popup.ModeFormula))
	t.Register(CommandTopic, tooltip(popup.ModeTopic))
	t.Register(CommandMention, tooltip(popup.ModeMention))
	t.Register(CommandVideo, tooltip(popup.ModeVideo))

	t.Register(CommandEmoji, func(context.Context) error {
		c.OpenEmoji()
		return nil
	})

	if up == nil {
		return
	}

	t.Register(CommandImage, func(ctx context.Context) error {
		c.CloseEmoji()

		// Without a selection, uploads go to the start of the document.
		r, _ := host.Selection(true)

		if err := up.Upload(ctx, r); err != nil {
			return errors.Wrap(err, "cannot upload image")
		}
		return nil
	})
}
