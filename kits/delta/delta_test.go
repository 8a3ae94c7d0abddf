package delta

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamondburned/embedkit/kits/popup"
	"github.com/diamondburned/embedkit/md/embed"
)

func mentionPayload(name, id string) string {
	return embed.MustEncode(embed.Mention{Name: name, ID: id})
}

func TestInsert(t *testing.T) {
	d := New("hello world")

	require.NoError(t, d.InsertEmbed(5, embed.KindMention, mentionPayload("bob", "1"), popup.SourceUser))
	d.InsertText(6, " ", popup.SourceUser)

	assert.Equal(t, 13, d.Len())
	assert.Equal(t, "hello"+ObjectReplacement+"  world", d.Plain())
	assert.Len(t, d.Ops, 3)
	assert.Equal(t, "  world", d.Ops[2].Insert, "neighboring text is merged")
}

func TestInsertUnicode(t *testing.T) {
	d := New("你好世界")
	require.NoError(t, d.InsertEmbed(2, embed.KindFormula, "x", popup.SourceUser))

	assert.Equal(t, 5, d.Len())
	assert.Equal(t, "你好", d.Ops[0].Insert)
	assert.Equal(t, "世界", d.Ops[2].Insert)
	assert.Equal(t, "好"+ObjectReplacement+"世", d.TextAt(1, 3))
}

func TestInsertEmbedInvalid(t *testing.T) {
	d := New("abc")

	err := d.InsertEmbed(1, embed.KindMention, `{"target_name":`, popup.SourceUser)
	assert.ErrorIs(t, err, embed.ErrInvalidPayload)

	err = d.InsertEmbed(10, embed.KindFormula, "x", popup.SourceUser)
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, "abc", d.Plain())
}

func TestFormat(t *testing.T) {
	d := New("click here now")

	d.Format(Range{Index: 6, Length: 4}, "link", "https://example.com")
	require.Len(t, d.Ops, 3)
	assert.Equal(t, "here", d.Ops[1].Insert)
	assert.Equal(t, "https://example.com", d.Ops[1].Attributes.String("link"))

	d.Format(Range{Index: 6, Length: 4}, "link", "")
	require.Len(t, d.Ops, 1, "removing the attribute merges the text back")
	assert.Nil(t, d.Ops[0].Attributes)

	d.Format(Range{Index: 3, Length: 0}, "bold", "true")
	assert.Len(t, d.Ops, 1, "empty range formats nothing")
}

func TestSelection(t *testing.T) {
	d := New("abc")

	_, ok := d.Selection(false)
	assert.False(t, ok)

	d.Select(Range{Index: 1, Length: 10})
	r, ok := d.Selection(true)
	require.True(t, ok)
	assert.Equal(t, Range{Index: 1, Length: 2}, r, "clamped to the document")
	assert.True(t, d.Focused())

	d.Blur()
	_, ok = d.Selection(false)
	assert.False(t, ok)
	assert.False(t, d.Focused())
}

func TestBounds(t *testing.T) {
	d := New("ab\ncd")

	assert.Equal(t, popup.Bounds{X: 0, Y: 0, Width: CellWidth, Height: CellHeight}, d.Bounds(Range{}))
	assert.Equal(t, popup.Bounds{X: 1 * CellWidth, Y: CellHeight, Width: 2 * CellWidth, Height: CellHeight},
		d.Bounds(Range{Index: 4, Length: 2}))
}

func TestEmbeds(t *testing.T) {
	d := New("ab")
	require.NoError(t, d.InsertEmbed(1, embed.KindTopic, embed.MustEncode(embed.Topic{Name: "go", ID: "7"}), popup.SourceAPI))
	require.NoError(t, d.InsertEmbed(0, KindImage, "https://example.com/a.png", popup.SourceAPI))

	embeds, err := d.Embeds()
	require.NoError(t, err)
	assert.Equal(t, []EmbedAt{{Index: 2, Entity: embed.Topic{Name: "go", ID: "7"}}}, embeds)
}

func TestJSON(t *testing.T) {
	d := New("hi ")
	require.NoError(t, d.InsertEmbed(3, embed.KindMention, mentionPayload("a&b", "1"), popup.SourceUser))
	d.InsertText(4, " there\n", popup.SourceUser)
	d.Format(Range{Index: 0, Length: 2}, "bold", "true")

	b, err := json.Marshal(d)
	require.NoError(t, err)

	const want = `{"ops":[` +
		`{"insert":"hi","attributes":{"bold":"true"}},` +
		`{"insert":" "},` +
		`{"insert":{"mention":"{\"target_name\":\"a&b\",\"target_id\":\"1\"}"}},` +
		`{"insert":" there\n"}]}`
	assert.JSONEq(t, want, string(b))

	var back Document
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d.Ops, back.Ops)
}

func TestUnmarshalQuill(t *testing.T) {
	const doc = `{"ops":[
		{"insert":"Title"},
		{"insert":"\n","attributes":{"header":1}},
		{"insert":{"formula":"e=mc^2"}},
		{"insert":{"topic":{"target_name":"go","target_id":2}}},
		{"insert":"\n"}
	]}`

	var d Document
	require.NoError(t, json.Unmarshal([]byte(doc), &d))

	embeds, err := d.Embeds()
	require.NoError(t, err)
	assert.Equal(t, []EmbedAt{
		{Index: 6, Entity: embed.Formula("e=mc^2")},
		{Index: 7, Entity: embed.Topic{Name: "go", ID: "2"}},
	}, embeds)
}

func TestUnmarshalInvalid(t *testing.T) {
	tests := []string{
		`{"ops":[{"retain":3}]}`,
		`{"ops":[{"insert":{"a":"1","b":"2"}}]}`,
		`{"ops":[{"insert":3}]}`,
	}

	for _, test := range tests {
		var d Document
		assert.Error(t, json.Unmarshal([]byte(test), &d), test)
	}
}

func TestHTML(t *testing.T) {
	codec := embed.NewCodec(embed.DefaultConfig())

	d := New("see ")
	d.InsertText(4, "docs\nhi ", popup.SourceUser)
	d.Format(Range{Index: 4, Length: 4}, "link", `https://example.com/?a=1&b="2"`)
	require.NoError(t, d.InsertEmbed(12, embed.KindMention, mentionPayload("<bob>", "1"), popup.SourceUser))
	require.NoError(t, d.InsertEmbed(13, embed.KindEmoji, embed.MustEncode(embed.Emoji{Title: "smile", Src: "1.gif"}), popup.SourceUser))

	out, err := d.HTML(codec, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t,
		`<p>see <a href="https://example.com/?a=1&amp;b=&#34;2&#34;">docs</a></p>`+
			`<p>hi <span>@&lt;bob&gt;</span><img title="smile" src="https://img.guibi.com/emot/qq/1.gif"/></p>`,
		out)
}

func TestHTMLBlocks(t *testing.T) {
	const doc = `{"ops":[
		{"insert":"Title"},
		{"insert":"\n","attributes":{"header":2}},
		{"insert":"package main"},
		{"insert":"\n","attributes":{"code-block":"go"}},
		{"insert":"func main() {}"},
		{"insert":"\n","attributes":{"code-block":"go"}},
		{"insert":"\n"}
	]}`

	var d Document
	require.NoError(t, json.Unmarshal([]byte(doc), &d))

	out, err := d.HTML(embed.NewCodec(embed.DefaultConfig()), zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<h2>Title</h2>"), out)
	assert.Equal(t, 1, strings.Count(out, "<pre"), "code lines are joined into one block")
	assert.Contains(t, out, "package")
	assert.Contains(t, out, "main")
	assert.True(t, strings.HasSuffix(out, "<p><br/></p>"), out)
}
