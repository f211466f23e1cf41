package bump

import (
	"bytes"
	"encoding/json"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// object is a JSON object that remembers the order of its keys. Values are
// kept raw so nested content round-trips untouched.
type object struct {
	keys   []string
	values map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("expected a JSON object")
	}

	o.keys = nil
	o.values = make(map[string]json.RawMessage)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Newf("unexpected object key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return errors.Wrapf(err, "decoding %q", key)
		}

		if _, seen := o.values[key]; !seen {
			o.keys = append(o.keys, key)
		}
		o.values[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON implements json.Marshaler. The output is compact.
func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalString(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(o.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// has reports whether key is present.
func (o *object) has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// setString sets key to a JSON string, appending the key if it is new.
func (o *object) setString(key, value string) error {
	raw, err := marshalString(value)
	if err != nil {
		return err
	}
	o.setRaw(key, raw)
	return nil
}

// setRaw sets key to raw, appending the key if it is new.
func (o *object) setRaw(key string, raw json.RawMessage) {
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = raw
}

// getString returns the string value of key.
func (o *object) getString(key string) (string, bool) {
	raw, ok := o.values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// child decodes key as a nested object.
func (o *object) child(key string) (*object, error) {
	raw, ok := o.values[key]
	if !ok {
		return nil, nil
	}
	var c object
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrapf(err, "%s", key)
	}
	return &c, nil
}

// setChild encodes c back into key.
func (o *object) setChild(key string, c *object) error {
	raw, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	o.setRaw(key, raw)
	return nil
}

// encodeIndented renders o with two-space indentation and a trailing newline.
func encodeIndented(o *object) ([]byte, error) {
	compact, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, errors.Wrap(err, "indenting JSON")
	}
	out.WriteByte('\n')

	return out.Bytes(), nil
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
