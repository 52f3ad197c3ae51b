// Package format writes CLI and sink payloads as json, edn or yaml.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Names lists the accepted format names.
var Names = []string{"json", "edn", "yaml"}

// Write writes v in the requested format ("" means json). Struct fields are
// named by their json tags in every format, and object key order follows
// the json encoding.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "yaml", "yml":
		return WriteYAML(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes one JSON document followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// value is an order-preserving decoded JSON document.
type value struct {
	kind  byte // 'o' object, 'a' array, 's' string, 'n' number, 'b' bool, 'z' null
	str   string
	num   json.Number
	b     bool
	keys  []string
	elems []value
}

func decode(v any) (value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return value{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return decodeValue(dec)
}

func decodeValue(dec *json.Decoder) (value, error) {
	tok, err := dec.Token()
	if err != nil {
		return value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := value{kind: 'o'}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return value{}, err
				}
				k, _ := kt.(string)
				ev, err := decodeValue(dec)
				if err != nil {
					return value{}, err
				}
				out.keys = append(out.keys, k)
				out.elems = append(out.elems, ev)
			}
			_, err := dec.Token()
			return out, err
		case '[':
			out := value{kind: 'a'}
			for dec.More() {
				ev, err := decodeValue(dec)
				if err != nil {
					return value{}, err
				}
				out.elems = append(out.elems, ev)
			}
			_, err := dec.Token()
			return out, err
		}
		return value{}, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return value{kind: 's', str: t}, nil
	case json.Number:
		return value{kind: 'n', num: t}, nil
	case bool:
		return value{kind: 'b', b: t}, nil
	case nil:
		return value{kind: 'z'}, nil
	default:
		return value{}, fmt.Errorf("unexpected token %T", tok)
	}
}
