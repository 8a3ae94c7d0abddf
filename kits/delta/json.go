package delta

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/diamondburned/embedkit/md/embed"
)

type jsonDocument struct {
	Ops []Op `json:"ops"`
}

type jsonOp struct {
	Insert     json.RawMessage `json:"insert"`
	Attributes Attributes      `json:"attributes,omitempty"`
}

// MarshalJSON encodes the document as {"ops":[...]}. Text ops insert a
// string; embed ops insert an object with the kind as the only key.
func (d *Document) MarshalJSON() ([]byte, error) {
	ops := d.Ops
	if ops == nil {
		ops = []Op{}
	}
	return json.Marshal(jsonDocument{Ops: ops})
}

// UnmarshalJSON decodes a document written by MarshalJSON. Retain and delete
// ops are rejected: only full documents can be decoded.
func (d *Document) UnmarshalJSON(b []byte) error {
	var doc jsonDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	d.Ops = doc.Ops
	d.normalize()
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Op) MarshalJSON() ([]byte, error) {
	var insert any = o.Insert
	if o.Embed != nil {
		insert = map[embed.Kind]string{o.Embed.Kind: o.Embed.Value}
	}

	raw, err := json.Marshal(insert)
	if err != nil {
		return nil, err
	}

	return json.Marshal(jsonOp{Insert: raw, Attributes: o.Attributes})
}

// UnmarshalJSON implements json.Unmarshaler. An embed value that is not a
// string, such as an object payload, is kept as its compact JSON.
func (o *Op) UnmarshalJSON(b []byte) error {
	var op jsonOp
	if err := json.Unmarshal(b, &op); err != nil {
		return err
	}

	raw := bytes.TrimSpace(op.Insert)
	if len(raw) == 0 {
		return errors.New("op has no insert")
	}

	*o = Op{Attributes: op.Attributes}

	switch raw[0] {
	case '"':
		return json.Unmarshal(raw, &o.Insert)

	case '{':
		var embeds map[embed.Kind]json.RawMessage
		if err := json.Unmarshal(raw, &embeds); err != nil {
			return err
		}
		if len(embeds) != 1 {
			return errors.Errorf("embed insert has %d keys, want 1", len(embeds))
		}

		for kind, value := range embeds {
			v, err := embedValue(value)
			if err != nil {
				return errors.Wrapf(err, "embed %q", kind)
			}
			o.Embed = &Embed{Kind: kind, Value: v}
		}
		return nil

	default:
		return errors.Errorf("unsupported insert %s", raw)
	}
}

func embedValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}
