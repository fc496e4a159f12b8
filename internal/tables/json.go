package tables

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// marshalOrdered writes m as a JSON object in insertion order. Unlike the
// map's own encoder it leaves &, < and > unescaped.
func marshalOrdered[V any](m *orderedmap.OrderedMap[string, V]) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	encode := func(v any) error {
		if err := enc.Encode(v); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1)
		return nil
	}

	buf.WriteByte('{')
	if m != nil {
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			if buf.Len() > 1 {
				buf.WriteByte(',')
			}
			if err := encode(pair.Key); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := encode(pair.Value); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
