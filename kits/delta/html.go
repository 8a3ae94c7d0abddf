package delta

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma"
	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/diamondburned/embedkit/md/embed"
)

// CodeStyle is the chroma style used for code blocks.
var CodeStyle = "github"

var codeFormatter = chromahtml.New(chromahtml.WithClasses(true))

// line is one line of the document: its inline ops and the attributes of the
// newline that ends it.
type line struct {
	ops   []Op
	attrs Attributes
}

func (d *Document) lines() []line {
	var lines []line
	var cur line

	for _, op := range d.Ops {
		if op.Embed != nil {
			cur.ops = append(cur.ops, op)
			continue
		}

		parts := strings.Split(op.Insert, "\n")
		for i, part := range parts {
			if part != "" {
				cur.ops = append(cur.ops, Op{Insert: part, Attributes: op.Attributes})
			}
			if i < len(parts)-1 {
				cur.attrs = op.Attributes
				lines = append(lines, cur)
				cur = line{}
			}
		}
	}

	if len(cur.ops) > 0 {
		lines = append(lines, cur)
	}

	return lines
}

// HTML exports the document as static HTML. Embeds are rendered with the
// codec's static HTML; runs of code-block lines are syntax highlighted.
func (d *Document) HTML(codec *embed.Codec, log zerolog.Logger) (string, error) {
	var b strings.Builder
	lines := d.lines()

	for i := 0; i < len(lines); i++ {
		l := lines[i]

		if l.attrs.Has("code-block") {
			j := i
			var code []string
			for ; j < len(lines) && lines[j].attrs.Has("code-block"); j++ {
				code = append(code, plainText(lines[j].ops))
			}

			if err := writeCode(&b, l.attrs.String("code-block"), strings.Join(code, "\n")); err != nil {
				return "", err
			}

			i = j - 1
			continue
		}

		tag := "p"
		if n := headerLevel(l.attrs); n >= 1 && n <= 6 {
			tag = "h" + strconv.Itoa(n)
		} else if l.attrs.Has("blockquote") {
			tag = "blockquote"
		}

		b.WriteString("<" + tag + ">")
		if len(l.ops) == 0 {
			b.WriteString("<br/>")
		}
		for _, op := range l.ops {
			writeInline(&b, codec, log, op)
		}
		b.WriteString("</" + tag + ">")
	}

	return b.String(), nil
}

// headerLevel returns the header attribute, which is a number in JSON
// documents and a string when set through Format.
func headerLevel(attrs Attributes) int {
	switch v := attrs["header"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func plainText(ops []Op) string {
	var b strings.Builder
	for _, op := range ops {
		if op.Embed == nil {
			b.WriteString(op.Insert)
		}
	}
	return b.String()
}

var inlineTags = []struct {
	attr string
	tag  string
}{
	{"bold", "strong"},
	{"italic", "em"},
	{"underline", "u"},
	{"strike", "s"},
	{"code", "code"},
}

func writeInline(b *strings.Builder, codec *embed.Codec, log zerolog.Logger, op Op) {
	if op.Embed != nil {
		b.WriteString(embedHTML(codec, log, *op.Embed))
		return
	}

	var closers []string

	if href := op.Attributes.String("link"); href != "" {
		b.WriteString(`<a href="` + html.EscapeString(href) + `">`)
		closers = append(closers, "</a>")
	}

	for _, t := range inlineTags {
		if op.Attributes.Has(t.attr) {
			b.WriteString("<" + t.tag + ">")
			closers = append(closers, "</"+t.tag+">")
		}
	}

	b.WriteString(html.EscapeString(op.Insert))

	for i := len(closers) - 1; i >= 0; i-- {
		b.WriteString(closers[i])
	}
}

func embedHTML(codec *embed.Codec, log zerolog.Logger, e Embed) string {
	if e.Kind == KindImage {
		return `<img src="` + html.EscapeString(e.Value) + `"/>`
	}

	entity, err := e.Entity()
	if err != nil {
		log.Warn().Err(err).Str("kind", string(e.Kind)).Msg("skipping undecodable embed")
		return ""
	}

	return codec.HTML(entity)
}

func writeCode(b *strings.Builder, lang, code string) error {
	var lexer chroma.Lexer
	if lang != "" && lang != "true" && lang != "plain" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		return errors.Wrap(err, "cannot tokenize code block")
	}

	if err := codeFormatter.Format(b, styles.Get(CodeStyle), iter); err != nil {
		return errors.Wrap(err, "cannot highlight code block")
	}

	return nil
}
