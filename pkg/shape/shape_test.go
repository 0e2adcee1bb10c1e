package shape

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

var pet = Union("kind",
	Object(
		Field("kind", Literal("cat")),
		Field("name", String(8)),
		Optional("lives", NonNegativeInt()),
	),
	Object(
		Field("kind", Literal("dog")),
		Field("name", String(8)),
		Field("owner", Nullable(String(8))),
		Optional("tags", Array(Enum("good", "loud"))),
	),
)

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		in     string
		code   string
	}{
		{"string ok", String(3), `"abc"`, ""},
		{"string too long", String(3), `"abcd"`, CodeTooLong},
		{"string counts code points", String(3), `"héé"`, ""},
		{"string wrong type", String(3), `1`, CodeType},
		{"int ok", Int(), `42`, ""},
		{"int integral float", Int(), `42.0`, ""},
		{"int fraction", Int(), `4.5`, CodeNotInteger},
		{"int negative rejected", NonNegativeInt(), `-1`, CodeTooSmall},
		{"number ok", Number(), `0.25`, ""},
		{"bool wrong type", Bool(), `"true"`, CodeType},
		{"literal mismatch", Literal("x"), `"y"`, CodeLiteral},
		{"enum miss", Enum("a", "b"), `"c"`, CodeEnum},
		{"nullable null", Nullable(String(1)), `null`, ""},
		{"not nullable null", String(1), `null`, CodeType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.schema, decode(t, tt.in))
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			issues := Issues(err)
			require.Len(t, issues, 1)
			assert.Equal(t, tt.code, issues[0].Code)
		})
	}
}

func TestParseNormalisesOutput(t *testing.T) {
	out, err := Parse(pet, decode(t, `{"kind":"cat","name":"tom","lives":9.0,"extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"kind": "cat", "name": "tom", "lives": int64(9)}, out)
}

func TestParseCollectsEveryIssue(t *testing.T) {
	err := Check(pet, decode(t, `{"kind":"dog","name":"a-very-long-name","tags":["good","shy",3]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidContract))
	assert.False(t, errors.Is(err, ErrUnknownVariant))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("name", CodeTooLong))
	assert.True(t, ve.Has("owner", CodeRequired))
	assert.True(t, ve.Has("tags[1]", CodeEnum))
	assert.True(t, ve.Has("tags[2]", CodeType))
	assert.Len(t, ve.Issues, 4)
	assert.Contains(t, err.Error(), "owner: required")
}

func TestUnionUnknownVariantIsDistinct(t *testing.T) {
	err := Check(pet, decode(t, `{"kind":"parrot","name":"polly"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownVariant))
	assert.False(t, errors.Is(err, ErrInvalidContract))
	assert.True(t, IsUnknownVariant(err))

	var uv *UnknownVariantError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "kind", uv.Path)
	assert.Equal(t, "parrot", uv.Value)
}

func TestUnionMalformedTagIsShapeViolation(t *testing.T) {
	for _, in := range []string{`{"name":"x"}`, `{"kind":7}`, `[]`} {
		err := Check(pet, decode(t, in))
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrInvalidContract), in)
	}
}

func TestNestedUnknownVariantLosesToShapeIssues(t *testing.T) {
	box := Object(Field("id", String(4)), Field("pet", pet))

	err := Check(box, decode(t, `{"id":"b1","pet":{"kind":"parrot"}}`))
	var uv *UnknownVariantError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "pet.kind", uv.Path)

	err = Check(box, decode(t, `{"id":"toolong","pet":{"kind":"parrot"}}`))
	assert.True(t, errors.Is(err, ErrInvalidContract))
}

func TestCatchallKeepsAndChecksExtraKeys(t *testing.T) {
	s := Object(Field("total", Number())).Catchall(Number())
	out, err := Parse(s, decode(t, `{"total":3,"input":1,"output":2}`))
	require.NoError(t, err)
	assert.Len(t, out, 3)

	err = Check(s, decode(t, `{"input":"x"}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("total", CodeRequired))
	assert.True(t, ve.Has("input", CodeType))
}

func TestRecordAndMsgpackNumerics(t *testing.T) {
	s := Record(Int())
	out, err := Parse(s, map[string]any{"a": int8(1), "b": uint32(2), "c": float32(3)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1), "b": int64(2), "c": int64(3)}, out)

	err = Check(s, map[string]any{"big": uint64(1 << 63)})
	assert.True(t, errors.Is(err, ErrInvalidContract))
}

func TestUnionConstructionPanics(t *testing.T) {
	assert.Panics(t, func() {
		Union("t", Object(Field("t", Literal("a"))), Object(Field("t", Literal("a"))))
	})
	assert.Panics(t, func() { Union("t", Object(Field("x", String(1)))) })
	assert.Panics(t, func() { Union("t", Object(Field("t", String(1)))) })
	assert.Panics(t, func() { Object(Field("a", Bool()), Field("a", Bool())) })
}

func TestJSONSchemaExport(t *testing.T) {
	doc := JSONSchema(pet, "pet")
	assert.Equal(t, Draft, doc["$schema"])
	assert.Equal(t, []any{"kind"}, doc["required"])
	one, ok := doc["oneOf"].([]any)
	require.True(t, ok)
	require.Len(t, one, 2)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"const":"cat"`))
	assert.True(t, strings.Contains(string(raw), `"maxLength":8`))
}

func TestUnionTags(t *testing.T) {
	assert.Equal(t, []string{"cat", "dog"}, pet.Tags())
	assert.Equal(t, "kind", pet.Tag())
	_, ok := pet.Variant("dog")
	assert.True(t, ok)
}
