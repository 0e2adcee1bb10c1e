package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrDecode marks a payload that is not well-formed JSON or msgpack at all.
var ErrDecode = errors.New("wire: undecodable payload")

type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

func (c Codec) ContentType() string {
	if c == CodecMsgpack {
		return ContentTypeMsgpack
	}
	return ContentTypeJSON
}

// CodecFor maps a content type to a codec. Empty means JSON.
func CodecFor(contentType string) (Codec, bool) {
	switch contentType {
	case "", ContentTypeJSON:
		return CodecJSON, true
	case ContentTypeMsgpack, "application/x-msgpack":
		return CodecMsgpack, true
	}
	return "", false
}

// Encode serialises a message (update, event, container) with c.
func (c Codec) Encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if c != CodecMsgpack {
		return raw, nil
	}
	generic, err := DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(plainNumbers(generic))
}

// Decode turns a payload into the generic form the validators consume.
func (c Codec) Decode(data []byte) (any, error) {
	if c == CodecMsgpack {
		return DecodeMsgpack(data)
	}
	return DecodeJSON(data)
}

// DecodeJSON decodes exactly one JSON value, keeping numbers as json.Number.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrDecode, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: json: trailing data", ErrDecode)
	}
	return v, nil
}

// DecodeMsgpack decodes one msgpack value into the same generic form as
// DecodeJSON: string-keyed maps, slices, strings, bools, nil and numbers.
func DecodeMsgpack(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("%w: msgpack: %v", ErrDecode, err)
	}
	out, err := normalize(v)
	if err != nil {
		return nil, fmt.Errorf("%w: msgpack: %v", ErrDecode, err)
	}
	return out, nil
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
		return x, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("map key %v is %T, not a string", k, k)
			}
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		for i, item := range x {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			x[i] = n
		}
		return x, nil
	case []byte:
		return string(x), nil
	}
	return v, nil
}

// plainNumbers replaces json.Number with int64 or float64 so msgpack encodes
// numbers as numbers.
func plainNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, item := range x {
			x[k] = plainNumbers(item)
		}
	case []any:
		for i, item := range x {
			x[i] = plainNumbers(item)
		}
	}
	return v
}
