// Package hl provides syntax highlighting for code inside a TextBuffer.
package hl

import (
	"context"
	"unicode/utf8"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/diamondburned/gotkit/gtkutil/textutil"
	"github.com/rs/zerolog"
)

// Style is the name of the chroma style used for highlighting.
var Style = "github"

// Lexer returns the lexer for the given language. If the language is unknown,
// the lexer is guessed from the code.
func Lexer(language, code string) chroma.Lexer {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Highlight highlights the text between start and end. The iterators are not
// moved.
func Highlight(ctx context.Context, start, end *gtk.TextIter, language string) {
	buf := start.Buffer()
	code := buf.Slice(start, end, true)

	tokens, err := Lexer(language, code).Tokenise(nil, code)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("language", language).
			Msg("cannot tokenise code block")
		return
	}

	style := styles.Get(Style)
	table := buf.TagTable()

	offset := start.Offset()
	head := buf.IterAtOffset(offset)
	tail := buf.IterAtOffset(offset)

	for _, token := range tokens.Tokens() {
		n := utf8.RuneCountInString(token.Value)
		tail.SetOffset(offset + n)

		if tag := tokenTag(table, style, token.Type); tag != nil {
			buf.ApplyTag(tag, head, tail)
		}

		offset += n
		head.SetOffset(offset)
	}
}

func tokenTag(table *gtk.TextTagTable, style *chroma.Style, typ chroma.TokenType) *gtk.TextTag {
	name := "_hl_" + style.Name + "_" + typ.String()
	if tag := table.Lookup(name); tag != nil {
		return tag
	}

	entry := style.Get(typ)

	attrs := textutil.TextTag{}
	if entry.Colour.IsSet() {
		attrs["foreground"] = entry.Colour.String()
	}
	if entry.Bold == chroma.Yes {
		attrs["weight"] = pango.WeightBold
	}
	if entry.Italic == chroma.Yes {
		attrs["style"] = pango.StyleItalic
	}
	if entry.Underline == chroma.Yes {
		attrs["underline"] = pango.UnderlineSingle
	}
	if len(attrs) == 0 {
		return nil
	}

	tag := attrs.Tag(name)
	table.Add(tag)
	return tag
}
