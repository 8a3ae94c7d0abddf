package embed

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidPayload is returned when a serialized payload cannot be
	// turned into an Entity.
	ErrInvalidPayload = errors.New("invalid embed payload")
	// ErrUnknownKind is returned for a Kind that is not in Kinds.
	ErrUnknownKind = errors.New("unknown embed kind")
)

// Entity is an embedded entity. The set of implementations is closed: Mention,
// Topic, Emoji, Formula and Video.
type Entity interface {
	// Kind returns the embed kind.
	Kind() Kind
	validate() error
}

var (
	_ Entity = Mention{}
	_ Entity = Topic{}
	_ Entity = Emoji{}
	_ Entity = Formula("")
	_ Entity = Video("")
)

// Mention mentions a user. It is rendered as "@name".
type Mention struct {
	Name string `json:"target_name"`
	ID   string `json:"target_id"`
}

// Kind implements Entity.
func (Mention) Kind() Kind { return KindMention }

func (m Mention) validate() error {
	if m.Name == "" {
		return errors.Wrap(ErrInvalidPayload, "mention: missing target_name")
	}
	return checkUTF8(KindMention, m.Name, m.ID)
}

// Topic references a topic. It is rendered as "#name#".
type Topic struct {
	Name string `json:"target_name"`
	ID   string `json:"target_id"`
}

// Kind implements Entity.
func (Topic) Kind() Kind { return KindTopic }

func (t Topic) validate() error {
	if t.Name == "" {
		return errors.Wrap(ErrInvalidPayload, "topic: missing target_name")
	}
	return checkUTF8(KindTopic, t.Name, t.ID)
}

// Emoji is an image emoticon served by an ImageHost.
type Emoji struct {
	Title string `json:"title" yaml:"title"`
	Src   string `json:"src"   yaml:"src"`
	Type  string `json:"type"  yaml:"type"`
}

// Kind implements Entity.
func (Emoji) Kind() Kind { return KindEmoji }

func (e Emoji) validate() error {
	if e.Src == "" {
		return errors.Wrap(ErrInvalidPayload, "emoji: missing src")
	}
	return checkUTF8(KindEmoji, e.Title, e.Src, e.Type)
}

// Formula is a TeX math source string.
type Formula string

// Kind implements Entity.
func (Formula) Kind() Kind { return KindFormula }

func (f Formula) validate() error {
	if f == "" {
		return errors.Wrap(ErrInvalidPayload, "formula: empty source")
	}
	return checkUTF8(KindFormula, string(f))
}

// Video is the URL of an embeddable video player.
type Video string

// Kind implements Entity.
func (Video) Kind() Kind { return KindVideo }

func (v Video) validate() error {
	if v == "" {
		return errors.Wrap(ErrInvalidPayload, "video: empty URL")
	}
	return checkUTF8(KindVideo, string(v))
}

// checkUTF8 rejects invalid UTF-8, which JSON and HTML would silently replace
// with U+FFFD.
func checkUTF8(kind Kind, fields ...string) error {
	for _, field := range fields {
		if !utf8.ValidString(field) {
			return errors.Wrapf(ErrInvalidPayload, "%s: invalid UTF-8", kind)
		}
	}
	return nil
}

// targetPayload is the wire form shared by mentions and topics. The ID is
// kept raw because some backends send numeric IDs.
type targetPayload struct {
	Name *string         `json:"target_name"`
	ID   json.RawMessage `json:"target_id"`
}

func (p targetPayload) decode(kind Kind) (name, id string, err error) {
	if p.Name == nil {
		return "", "", errors.Wrapf(ErrInvalidPayload, "%s: missing target_name", kind)
	}
	if len(p.ID) == 0 {
		return "", "", errors.Wrapf(ErrInvalidPayload, "%s: missing target_id", kind)
	}

	switch raw := bytes.TrimSpace(p.ID); {
	case bytes.Equal(raw, []byte("null")):
		return "", "", errors.Wrapf(ErrInvalidPayload, "%s: null target_id", kind)
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", "", errors.Wrapf(ErrInvalidPayload, "%s: bad target_id: %v", kind, err)
		}
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", "", errors.Wrapf(ErrInvalidPayload, "%s: bad target_id: %v", kind, err)
		}
		id = n.String()
	}

	return *p.Name, id, nil
}

// Decode parses the serialized payload of the given kind. Mentions, topics
// and emojis are JSON objects; formulas and videos are the raw string.
// A malformed payload or a missing required field returns an error wrapping
// ErrInvalidPayload.
func Decode(kind Kind, value string) (Entity, error) {
	var entity Entity

	switch kind {
	case KindMention, KindTopic:
		var p targetPayload
		if err := json.Unmarshal([]byte(value), &p); err != nil {
			return nil, errors.Wrapf(ErrInvalidPayload, "%s: %v", kind, err)
		}
		name, id, err := p.decode(kind)
		if err != nil {
			return nil, err
		}
		if kind == KindMention {
			entity = Mention{Name: name, ID: id}
		} else {
			entity = Topic{Name: name, ID: id}
		}

	case KindEmoji:
		var e Emoji
		if err := json.Unmarshal([]byte(value), &e); err != nil {
			return nil, errors.Wrapf(ErrInvalidPayload, "emoji: %v", err)
		}
		entity = e

	case KindFormula:
		entity = Formula(value)

	case KindVideo:
		entity = Video(value)

	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}

	if err := entity.validate(); err != nil {
		return nil, err
	}

	return entity, nil
}

// Encode serializes the entity into the payload form accepted by Decode.
func Encode(e Entity) (string, error) {
	if e == nil {
		return "", errors.Wrap(ErrInvalidPayload, "nil entity")
	}
	if err := e.validate(); err != nil {
		return "", err
	}

	switch e := e.(type) {
	case Formula:
		return string(e), nil
	case Video:
		return string(e), nil
	default:
		return marshalJSON(e)
	}
}

// MustEncode is like Encode, except it panics on an invalid entity. It is
// meant for entities constructed from constants.
func MustEncode(e Entity) string {
	s, err := Encode(e)
	if err != nil {
		panic("embed: " + err.Error())
	}
	return s
}

func marshalJSON(v any) (string, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "cannot marshal payload")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
