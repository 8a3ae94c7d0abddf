package toolbar_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamondburned/embedkit/kits/delta"
	"github.com/diamondburned/embedkit/kits/popup"
	"github.com/diamondburned/embedkit/kits/toolbar"
	"github.com/diamondburned/embedkit/md/embed"
)

type nopView struct{ emoji bool }

func (*nopView) ShowTooltip(popup.TooltipContent)   {}
func (*nopView) HideTooltip()                       {}
func (v *nopView) ShowEmoji(popup.Bounds)           { v.emoji = true }
func (v *nopView) HideEmoji()                       { v.emoji = false }
func (*nopView) LoadEmoji([]embed.Emoji)            {}
func (*nopView) ShowSuggestions([]popup.Suggestion) {}

func TestTrigger(t *testing.T) {
	ctx := context.Background()
	tb := toolbar.New()

	var called int
	tb.Register("bold", func(context.Context) error {
		called++
		return nil
	})

	require.NoError(t, tb.Trigger(ctx, "bold"))
	assert.Equal(t, 1, called)

	err := tb.Trigger(ctx, "strike")
	assert.ErrorIs(t, err, toolbar.ErrUnknownCommand)
}

func TestBind(t *testing.T) {
	ctx := context.Background()

	doc := delta.New("hello")
	doc.Select(delta.Range{Index: 2})

	view := &nopView{}
	ctrl := popup.NewController(ctx, doc, view, popup.Opts{})

	var uploadedAt []popup.Range
	up := toolbar.UploaderFunc(func(_ context.Context, at popup.Range) error {
		uploadedAt = append(uploadedAt, at)
		return doc.InsertEmbed(at.End(), delta.KindImage, "https://example.com/a.png", popup.SourceUser)
	})

	tb := toolbar.New()
	tb.Bind(ctrl, doc, up)

	assert.Equal(t, []string{"emoji", "formula", "image", "link", "mention", "topic", "video"}, tb.Names())

	tests := []struct {
		command string
		popup   popup.Popup
		mode    popup.Mode
	}{
		{toolbar.CommandFormula, popup.PopupTooltip, popup.ModeFormula},
		{toolbar.CommandTopic, popup.PopupTooltip, popup.ModeTopic},
		{toolbar.CommandMention, popup.PopupTooltip, popup.ModeMention},
		{toolbar.CommandVideo, popup.PopupTooltip, popup.ModeVideo},
		{toolbar.CommandLink, popup.PopupTooltip, popup.ModeLink},
		{toolbar.CommandEmoji, popup.PopupEmoji, popup.ModeLink},
	}

	for _, test := range tests {
		require.NoError(t, tb.Trigger(ctx, test.command))
		assert.Equal(t, test.popup, ctrl.State().Popup, test.command)
		assert.Equal(t, test.mode, ctrl.State().Mode, test.command)
	}

	require.NoError(t, tb.Trigger(ctx, toolbar.CommandImage))
	assert.False(t, ctrl.State().IsOpen(), "image closes the emoji picker")
	assert.False(t, view.emoji)
	assert.Equal(t, []popup.Range{{Index: 2}}, uploadedAt)
	assert.Equal(t, "he"+delta.ObjectReplacement+"llo", doc.Plain())
}

func TestBindWithoutUploader(t *testing.T) {
	doc := delta.New("")
	ctrl := popup.NewController(context.Background(), doc, &nopView{}, popup.Opts{})

	tb := toolbar.New()
	tb.Bind(ctrl, doc, nil)

	assert.NotContains(t, tb.Names(), toolbar.CommandImage)
}

func TestImageUploadError(t *testing.T) {
	ctx := context.Background()
	doc := delta.New("")
	ctrl := popup.NewController(ctx, doc, &nopView{}, popup.Opts{})

	failed := errors.New("too large")

	tb := toolbar.New()
	tb.Bind(ctrl, doc, toolbar.UploaderFunc(func(context.Context, popup.Range) error {
		return failed
	}))

	err := tb.Trigger(ctx, toolbar.CommandImage)
	assert.ErrorIs(t, err, failed)
}

func TestOptions(t *testing.T) {
	tests := []struct {
		format   string
		n        int
		selected string
	}{
		{toolbar.FormatColor, 35, "#000000"},
		{toolbar.FormatBackground, 35, "#ffffff"},
		{toolbar.FormatAlign, 4, ""},
		{toolbar.FormatFont, 3, ""},
		{toolbar.FormatHeader, 4, ""},
		{toolbar.FormatSize, 4, ""},
	}

	for _, test := range tests {
		t.Run(test.format, func(t *testing.T) {
			opts, err := toolbar.Options(test.format)
			require.NoError(t, err)
			assert.Len(t, opts, test.n)

			var selected []toolbar.Option
			for _, opt := range opts {
				if opt.Selected {
					selected = append(selected, opt)
				}
			}

			require.Len(t, selected, 1)
			assert.Equal(t, test.selected, selected[0].Label)
			assert.Empty(t, selected[0].Value, "the default option applies no formatting")
		})
	}

	_, err := toolbar.Options("direction")
	assert.Error(t, err)
}

func TestApplyFormat(t *testing.T) {
	doc := delta.New("hello world")
	doc.Select(delta.Range{Index: 0, Length: 5})

	require.NoError(t, toolbar.ApplyFormat(doc, toolbar.FormatColor, "#e60000"))
	assert.Equal(t, "#e60000", doc.Ops[0].Attributes.String("color"))

	require.NoError(t, toolbar.ApplyFormat(doc, toolbar.FormatColor, ""))
	assert.Len(t, doc.Ops, 1)

	err := toolbar.ApplyFormat(doc, toolbar.FormatColor, "#123456")
	assert.ErrorIs(t, err, toolbar.ErrUnknownOption)

	err = toolbar.ApplyFormat(doc, toolbar.FormatColor, "#000000")
	assert.ErrorIs(t, err, toolbar.ErrUnknownOption, "the default color is only reachable as no value")
}
