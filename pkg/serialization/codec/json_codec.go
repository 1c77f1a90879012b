package codec

import (
	"encoding/json"
)

var _ Codec = (*JSONCodec)(nil)

// JSONCodec implements the Codec interface for JSON encoding and decoding.
// Decimal amounts are written as strings so no precision is lost.
type JSONCodec struct{}

func (j *JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (j *JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
