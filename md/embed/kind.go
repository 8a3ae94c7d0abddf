// Package embed implements the inline embeds that can be placed inside a rich
// text document: mentions, topics, emojis, formulas and videos.
//
// An embed is stored in the document as a small HTML fragment. Every payload
// field is kept as an attribute on the fragment's root element, so extracting
// the payload never needs to look at the rendered content. The fragments are
// plain *html.Node trees and can be tested without any display.
package embed

// Kind is the kind of an embed. It is also the name the host editor uses to
// refer to the embed.
type Kind string

const (
	KindMention Kind = "mention"
	KindTopic   Kind = "topic"
	KindEmoji   Kind = "emoji"
	KindFormula Kind = "formula"
	KindVideo   Kind = "video"
)

// Kinds lists all known embed kinds.
var Kinds = []Kind{
	KindMention,
	KindTopic,
	KindEmoji,
	KindFormula,
	KindVideo,
}

// IsValid returns true if k is one of Kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindMention, KindTopic, KindEmoji, KindFormula, KindVideo:
		return true
	}
	return false
}

// ClassName returns the CSS class name of the fragment root.
func (k Kind) ClassName() string {
	return "embed-" + string(k)
}

// IsInline returns true if the embed flows inside a line of text. Videos are
// block embeds.
func (k Kind) IsInline() bool {
	return k != KindVideo
}
