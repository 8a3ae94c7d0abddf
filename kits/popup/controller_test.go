package popup_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamondburned/embedkit/kits/delta"
	"github.com/diamondburned/embedkit/kits/popup"
	"github.com/diamondburned/embedkit/md/embed"
)

type fakeView struct {
	tooltip     *popup.TooltipContent
	emoji       bool
	emojiAt     popup.Bounds
	loads       int
	items       []embed.Emoji
	suggestions []popup.Suggestion
}

func (v *fakeView) ShowTooltip(c popup.TooltipContent) { v.tooltip = &c }
func (v *fakeView) HideTooltip()                       { v.tooltip = nil }
func (v *fakeView) ShowEmoji(at popup.Bounds)          { v.emoji = true; v.emojiAt = at }
func (v *fakeView) HideEmoji()                         { v.emoji = false }

func (v *fakeView) LoadEmoji(items []embed.Emoji) {
	v.loads++
	v.items = append(v.items, items...)
}

func (v *fakeView) ShowSuggestions(s []popup.Suggestion) { v.suggestions = s }

type harness struct {
	doc  *delta.Document
	view *fakeView
	ctrl *popup.Controller
}

func newHarness(t *testing.T, text string, opts popup.Opts) harness {
	t.Helper()

	doc := delta.New(text)
	doc.Select(delta.Range{Index: doc.Len()})

	view := &fakeView{}
	ctrl := popup.NewController(context.Background(), doc, view, opts)

	return harness{doc, view, ctrl}
}

func (h harness) caret(t *testing.T) int {
	t.Helper()

	r, ok := h.doc.Selection(false)
	require.True(t, ok)
	assert.Zero(t, r.Length)
	return r.Index
}

func TestEmojiCatalogLoadsOnce(t *testing.T) {
	h := newHarness(t, "", popup.Opts{})

	h.ctrl.OpenEmoji()
	h.ctrl.OpenEmoji()
	h.ctrl.Cancel()
	h.ctrl.OpenEmoji()

	assert.Equal(t, 1, h.view.loads)
	assert.Len(t, h.view.items, embed.DefaultCatalog().Len())
	assert.True(t, h.view.emoji)
}

func TestControllerMutualExclusion(t *testing.T) {
	h := newHarness(t, "abc", popup.Opts{})

	h.ctrl.OpenEmoji()
	h.ctrl.OpenTooltip(popup.ModeFormula)

	assert.Equal(t, popup.PopupTooltip, h.ctrl.State().Popup)
	assert.NotNil(t, h.view.tooltip)
	assert.False(t, h.view.emoji)

	h.ctrl.OpenEmoji()

	assert.Equal(t, popup.PopupEmoji, h.ctrl.State().Popup)
	assert.Nil(t, h.view.tooltip)
	assert.True(t, h.view.emoji)
}

func TestTooltipContent(t *testing.T) {
	h := newHarness(t, "ab\ncd", popup.Opts{})

	h.ctrl.OpenTooltip(popup.ModeMention)
	require.NotNil(t, h.view.tooltip)
	assert.Equal(t, popup.TooltipContent{
		Mode:        popup.ModeMention,
		Placeholder: popup.ModeMention.Placeholder(),
		Searchable:  true,
		At:          h.doc.Bounds(delta.Range{Index: 5}),
	}, *h.view.tooltip)

	h.ctrl.OpenTooltipWith(popup.ModeLink, "https://example.com")
	assert.Equal(t, "https://example.com", h.view.tooltip.Text)
	assert.False(t, h.view.tooltip.Searchable)
}

func TestEmptyValueNoop(t *testing.T) {
	for _, mode := range []popup.Mode{popup.ModeFormula, popup.ModeVideo} {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(t, "hello", popup.Opts{})

			h.ctrl.OpenTooltip(mode)
			h.ctrl.ConfirmTooltip()

			assert.Equal(t, "hello", h.doc.Plain())
			assert.False(t, h.ctrl.State().IsOpen())
			assert.Nil(t, h.view.tooltip)
		})
	}
}

func TestInsertFormula(t *testing.T) {
	h := newHarness(t, "ab", popup.Opts{})
	h.doc.Select(delta.Range{Index: 1})

	h.ctrl.OpenTooltip(popup.ModeFormula)
	h.ctrl.SetText(`x^2`)
	assert.True(t, h.ctrl.HandleKey(popup.KeyEnter))

	assert.Equal(t, "a"+delta.ObjectReplacement+" b", h.doc.Plain())
	assert.Equal(t, 3, h.caret(t))
	assert.Equal(t, &delta.Embed{Kind: embed.KindFormula, Value: "x^2"}, h.doc.Ops[1].Embed)
	assert.False(t, h.ctrl.State().IsOpen())
	assert.True(t, h.doc.Focused())
}

func TestInsertionOffsets(t *testing.T) {
	const i = 4

	t.Run("mention", func(t *testing.T) {
		h := newHarness(t, "hey there", popup.Opts{})
		h.doc.Select(delta.Range{Index: i})

		h.ctrl.OpenTooltip(popup.ModeMention)
		h.ctrl.SetText("bob")
		h.ctrl.ConfirmSearchResult("42", "bob")

		assert.Equal(t, i+2, h.caret(t))
		assert.Equal(t, delta.ObjectReplacement+" ", h.doc.TextAt(i, 2))

		embeds, err := h.doc.Embeds()
		require.NoError(t, err)
		assert.Equal(t, []delta.EmbedAt{{Index: i, Entity: embed.Mention{Name: "bob", ID: "42"}}}, embeds)
		assert.Nil(t, h.view.tooltip)
	})

	t.Run("topic", func(t *testing.T) {
		h := newHarness(t, "hey there", popup.Opts{})
		h.doc.Select(delta.Range{Index: i})

		h.ctrl.OpenTooltip(popup.ModeTopic)
		h.ctrl.ConfirmSearchResult("7", "golang")

		assert.Equal(t, i+2, h.caret(t))

		embeds, err := h.doc.Embeds()
		require.NoError(t, err)
		assert.Equal(t, []delta.EmbedAt{{Index: i, Entity: embed.Topic{Name: "golang", ID: "7"}}}, embeds)
	})

	t.Run("emoji", func(t *testing.T) {
		h := newHarness(t, "hey there", popup.Opts{})
		h.doc.Select(delta.Range{Index: i})

		item, ok := embed.DefaultCatalog().Lookup("微笑")
		require.True(t, ok)

		h.ctrl.OpenEmoji()
		h.ctrl.ConfirmEmojiPick(item)

		assert.Equal(t, i+1, h.caret(t))
		assert.Equal(t, "hey "+delta.ObjectReplacement+"there", h.doc.Plain())
		assert.False(t, h.view.emoji)
	})
}

func TestInsertAfterCapturedRange(t *testing.T) {
	h := newHarness(t, "hello world", popup.Opts{})
	h.doc.Select(delta.Range{Index: 0, Length: 5})

	h.ctrl.OpenTooltip(popup.ModeFormula)
	h.ctrl.SetText("y")

	// Focus moves around while the tooltip is open.
	h.doc.Select(delta.Range{Index: 9})

	h.ctrl.ConfirmTooltip()

	assert.Equal(t, "hello"+delta.ObjectReplacement+"  world", h.doc.Plain())
	assert.Equal(t, 7, h.caret(t))
}

func TestInsertVideo(t *testing.T) {
	h := newHarness(t, "", popup.Opts{})

	h.ctrl.OpenTooltip(popup.ModeVideo)
	h.ctrl.SetText("https://youtu.be/abc123")
	h.ctrl.ConfirmTooltip()

	require.Len(t, h.doc.Ops, 1)
	assert.Equal(t, &delta.Embed{
		Kind:  embed.KindVideo,
		Value: "https://www.youtube.com/embed/abc123?showinfo=0",
	}, h.doc.Ops[0].Embed)
	assert.Equal(t, 1, h.doc.Len(), "no gap after videos")

	r, ok := h.doc.Selection(false)
	require.True(t, ok)
	assert.Equal(t, 1, r.Index, "caret is clamped to the document end")
}

func TestLinkFormatsCapturedRange(t *testing.T) {
	h := newHarness(t, "hello world", popup.Opts{})
	h.doc.Select(delta.Range{Index: 6, Length: 5})
	h.doc.SetScrollTop(40)

	h.ctrl.OpenTooltip(popup.ModeLink)
	h.ctrl.SetText("https://example.com")
	h.doc.SetScrollTop(0)
	h.ctrl.ConfirmTooltip()

	require.Len(t, h.doc.Ops, 2)
	assert.Equal(t, "world", h.doc.Ops[1].Insert)
	assert.Equal(t, "https://example.com", h.doc.Ops[1].Attributes.String("link"))

	r, _ := h.doc.Selection(false)
	assert.Equal(t, delta.Range{Index: 6, Length: 5}, r, "link does not move the selection")
	assert.Equal(t, 40.0, h.doc.ScrollTop())
}

func TestCancelRestoresFocusAndScroll(t *testing.T) {
	closers := map[string]func(*popup.Controller){
		"cancel":        (*popup.Controller).Cancel,
		"escape":        func(c *popup.Controller) { c.HandleKey(popup.KeyEscape) },
		"outside click": (*popup.Controller).HandleOutsideClick,
	}

	for name, closePopup := range closers {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, "text", popup.Opts{})
			h.doc.SetScrollTop(120)

			h.ctrl.OpenTooltip(popup.ModeFormula)
			h.ctrl.SetText("x")

			h.doc.Blur()
			h.doc.SetScrollTop(0)

			closePopup(h.ctrl)

			assert.False(t, h.ctrl.State().IsOpen())
			assert.Equal(t, "text", h.doc.Plain())
			assert.True(t, h.doc.Focused())
			assert.Equal(t, 120.0, h.doc.ScrollTop())
		})
	}
}

func TestReopenPreservesText(t *testing.T) {
	h := newHarness(t, "doc", popup.Opts{})

	h.ctrl.OpenTooltip(popup.ModeTopic)
	h.ctrl.SetText("abc")
	h.ctrl.HandleOutsideClick()

	assert.Equal(t, "doc", h.doc.Plain())

	h.ctrl.OpenTooltip(popup.ModeTopic)
	assert.Empty(t, h.view.tooltip.Text, "cancel discards unsaved text")

	h.ctrl.SetText("abc")
	h.ctrl.OpenTooltip(popup.ModeTopic)
	assert.Equal(t, "abc", h.view.tooltip.Text)
	assert.Equal(t, "abc", h.ctrl.State().Text)

	h.ctrl.OpenTooltip(popup.ModeMention)
	assert.Empty(t, h.view.tooltip.Text, "switching modes clears the text")
}

func TestSearchableConfirm(t *testing.T) {
	h := newHarness(t, "doc", popup.Opts{})

	h.ctrl.OpenTooltip(popup.ModeMention)
	h.ctrl.SetText("bo")

	h.ctrl.ConfirmSearchResult("1", "")
	assert.Equal(t, popup.PopupTooltip, h.ctrl.State().Popup, "empty value keeps the tooltip open")

	assert.True(t, h.ctrl.HandleKey(popup.KeyEnter))
	assert.False(t, h.ctrl.State().IsOpen())
	assert.Equal(t, "doc", h.doc.Plain(), "raw text is never inserted as a mention")

	h.ctrl.ConfirmSearchResult("1", "bob")
	assert.Equal(t, "doc", h.doc.Plain(), "closed tooltip ignores results")
}

func TestUnknownMode(t *testing.T) {
	h := newHarness(t, "doc", popup.Opts{})

	h.ctrl.OpenTooltip(popup.Mode("sticker"))
	h.ctrl.SetText("something")

	assert.NotPanics(t, h.ctrl.ConfirmTooltip)
	assert.Equal(t, "doc", h.doc.Plain())
	assert.False(t, h.ctrl.State().IsOpen())
}

func TestNoCapturedSelection(t *testing.T) {
	h := newHarness(t, "doc", popup.Opts{})
	h.doc.Blur()

	h.ctrl.OpenTooltip(popup.ModeFormula)
	assert.False(t, h.ctrl.State().Anchored)

	h.ctrl.SetText("x")
	h.ctrl.ConfirmTooltip()

	assert.Equal(t, "doc", h.doc.Plain())
	assert.False(t, h.ctrl.State().IsOpen())
}

func TestSelectionChange(t *testing.T) {
	h := newHarness(t, "doc", popup.Opts{})
	h.doc.SetScrollTop(10)

	h.ctrl.OpenEmoji()
	h.ctrl.HandleSelectionChange(nil)
	assert.True(t, h.view.emoji, "lost selection is ignored")

	h.doc.SetScrollTop(50)
	h.ctrl.HandleSelectionChange(&delta.Range{Index: 1})
	assert.False(t, h.view.emoji)
	assert.False(t, h.ctrl.State().IsOpen())
	assert.Equal(t, 50.0, h.doc.ScrollTop(), "selection changes do not restore scroll")
}

func TestCloseEmoji(t *testing.T) {
	h := newHarness(t, "doc", popup.Opts{})

	h.ctrl.OpenTooltip(popup.ModeLink)
	h.ctrl.CloseEmoji()
	assert.NotNil(t, h.view.tooltip, "only the picker is closed")

	h.ctrl.OpenEmoji()
	h.ctrl.CloseEmoji()
	assert.False(t, h.view.emoji)
	assert.False(t, h.ctrl.State().IsOpen())
}

func TestHandleKeyClosed(t *testing.T) {
	h := newHarness(t, "doc", popup.Opts{})

	assert.False(t, h.ctrl.HandleKey(popup.KeyEnter))
	assert.False(t, h.ctrl.HandleKey(popup.KeyEscape))

	h.ctrl.OpenEmoji()
	assert.False(t, h.ctrl.HandleKey(popup.KeyEnter))
	assert.True(t, h.ctrl.HandleKey(popup.KeyEscape))
}

func TestSearcher(t *testing.T) {
	var queries []string
	searcher := popup.SearcherFunc(func(ctx context.Context, mode popup.Mode, query string) ([]popup.Suggestion, error) {
		queries = append(queries, string(mode)+":"+query)
		if query == "err" {
			return nil, errors.New("backend down")
		}
		return []popup.Suggestion{{ID: "1", Name: query + "by"}}, nil
	})

	h := newHarness(t, "doc", popup.Opts{Searcher: searcher})

	h.ctrl.OpenTooltip(popup.ModeTopic)
	h.ctrl.SetText("go")
	assert.Equal(t, []popup.Suggestion{{ID: "1", Name: "goby"}}, h.view.suggestions)

	h.ctrl.SetText("err")
	assert.Empty(t, h.view.suggestions)

	// Late results for an old query are dropped.
	h.ctrl.ShowSuggestions(popup.ModeTopic, "go", []popup.Suggestion{{ID: "2", Name: "stale"}})
	assert.Empty(t, h.view.suggestions)

	h.ctrl.OpenTooltip(popup.ModeFormula)
	h.ctrl.SetText("x")

	assert.Equal(t, []string{"topic:go", "topic:err"}, queries, "formula mode does not search")
}

func TestSearcherDoneCancels(t *testing.T) {
	var contexts []context.Context
	searcher := popup.SearcherFunc(func(ctx context.Context, mode popup.Mode, query string) ([]popup.Suggestion, error) {
		contexts = append(contexts, ctx)
		if query == "err" {
			return nil, errors.New("backend down")
		}
		return []popup.Suggestion{{ID: "1", Name: "bob"}}, nil
	})

	h := newHarness(t, "doc", popup.Opts{Searcher: searcher})

	h.ctrl.OpenTooltip(popup.ModeMention)
	h.ctrl.SetText("b")
	require.Len(t, contexts, 1)
	assert.Error(t, contexts[0].Err(), "finished search is canceled")
	assert.Equal(t, []popup.Suggestion{{ID: "1", Name: "bob"}}, h.view.suggestions)

	h.ctrl.SetText("err")
	require.Len(t, contexts, 2)
	assert.Error(t, contexts[1].Err(), "failed search is canceled")
}

func TestSearcherAsync(t *testing.T) {
	var pending []context.Context
	searcher := popup.SearcherFunc(func(ctx context.Context, mode popup.Mode, query string) ([]popup.Suggestion, error) {
		pending = append(pending, ctx)
		return nil, nil
	})

	h := newHarness(t, "doc", popup.Opts{Searcher: searcher})

	h.ctrl.OpenTooltip(popup.ModeMention)
	h.ctrl.SetText("a")
	h.ctrl.SetText("al")

	require.Len(t, pending, 2)
	assert.Error(t, pending[0].Err(), "superseded search is canceled")
	assert.NoError(t, pending[1].Err())

	results := []popup.Suggestion{{ID: "9", Name: "alice"}}
	h.ctrl.ShowSuggestions(popup.ModeMention, "al", results)
	assert.Equal(t, results, h.view.suggestions)

	h.ctrl.Cancel()
	assert.Error(t, pending[1].Err(), "closing the tooltip cancels the search")
}

func TestInvalidEmojiPick(t *testing.T) {
	h := newHarness(t, "doc", popup.Opts{})

	h.ctrl.OpenEmoji()
	h.ctrl.ConfirmEmojiPick(embed.Emoji{Title: "no source"})

	assert.Equal(t, "doc", h.doc.Plain())
	assert.False(t, h.ctrl.State().IsOpen())
}
