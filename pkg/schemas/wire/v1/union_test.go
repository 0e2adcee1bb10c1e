package wire

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/roboricindustries/sync-events/pkg/schemas/common"
	"github.com/roboricindustries/sync-events/pkg/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryMatchesUnion(t *testing.T) {
	var tags []string
	for _, typ := range UpdateTypes() {
		tags = append(tags, string(typ))
		u, ok := NewUpdate(typ)
		require.True(t, ok)
		assert.Equal(t, typ, u.Type())
	}
	assert.Equal(t, UpdateShape.Tags(), tags)
	assert.Len(t, tags, 15)

	tags = nil
	for _, typ := range EventTypes() {
		tags = append(tags, string(typ))
		e, ok := NewEvent(typ)
		require.True(t, ok)
		assert.Equal(t, typ, e.Type())
	}
	assert.Equal(t, EventShape.Tags(), tags)
}

func TestSamplesCoverEveryVariant(t *testing.T) {
	seen := map[UpdateType]bool{}
	for _, u := range sampleUpdates() {
		seen[u.Type()] = true
	}
	assert.Len(t, seen, len(UpdateTypes()))

	seenEvents := map[EventType]bool{}
	for _, e := range sampleEvents() {
		seenEvents[e.Type()] = true
	}
	assert.Len(t, seenEvents, len(EventTypes()))
}

func TestUpdateRoundTrip(t *testing.T) {
	for _, u := range sampleUpdates() {
		t.Run(string(u.Type()), func(t *testing.T) {
			raw, err := MarshalUpdate(u)
			require.NoError(t, err)

			var head map[string]any
			require.NoError(t, json.Unmarshal(raw, &head))
			assert.Equal(t, string(u.Type()), head[UpdateTagField])

			got, err := ParseUpdate(raw)
			require.NoError(t, err)
			assert.Equal(t, u, got)

			again, err := MarshalUpdate(got)
			require.NoError(t, err)
			assert.JSONEq(t, string(raw), string(again))
		})
	}
}

func TestEventRoundTrip(t *testing.T) {
	for _, e := range sampleEvents() {
		t.Run(string(e.Type()), func(t *testing.T) {
			raw, err := json.Marshal(e)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(raw), `{"type":"`+string(e.Type())+`"`))

			got, err := ParseEvent(raw)
			require.NoError(t, err)
			assert.Equal(t, e, got)
		})
	}
}

func TestMsgpackDecodesToTheSameVariants(t *testing.T) {
	for _, u := range sampleUpdates() {
		raw, err := CodecMsgpack.Encode(u)
		require.NoError(t, err, u.Type())
		got, err := ParseUpdateMsgpack(raw)
		require.NoError(t, err, u.Type())
		assert.Equal(t, u, got)
	}
	for _, e := range sampleEvents() {
		raw, err := CodecMsgpack.Encode(e)
		require.NoError(t, err, e.Type())
		got, err := ParseEventMsgpack(raw)
		require.NoError(t, err, e.Type())
		assert.Equal(t, e, got)
	}
}

func TestUnknownDiscriminatorIsNotAShapeViolation(t *testing.T) {
	_, err := ParseUpdate([]byte(`{"t":"bogus-variant","foo":"bar"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shape.ErrUnknownVariant))
	assert.False(t, errors.Is(err, shape.ErrInvalidContract))

	var uv *shape.UnknownVariantError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "bogus-variant", uv.Value)
	assert.Equal(t, UpdateTagField, uv.Field)
}

func TestDiscriminatorNamespacesAreIndependent(t *testing.T) {
	_, err := ParseUpdate([]byte(`{"t":"activity","sid":"s","active":true,"activeAt":1}`))
	assert.True(t, shape.IsUnknownVariant(err), "event tag in the update namespace")

	_, err = ParseEvent([]byte(`{"type":"new-session","sid":"s"}`))
	assert.True(t, shape.IsUnknownVariant(err), "update tag in the event namespace")

	// each union reads only its own discriminator field
	_, err = ParseUpdate([]byte(`{"type":"activity","sid":"s","active":true,"activeAt":1}`))
	var ve *shape.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has(UpdateTagField, shape.CodeRequired))

	_, err = ParseEvent([]byte(`{"t":"delete-session","sid":"s"}`))
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has(EventTagField, shape.CodeRequired))
}

func TestShapeViolationListsEveryField(t *testing.T) {
	_, err := ParseUpdate([]byte(`{"t":"new-machine","machineId":42,"seq":-1,"metadata":"m","active":"yes"}`))
	require.Error(t, err)
	issues := shape.Issues(err)

	got := map[string]string{}
	for _, is := range issues {
		got[is.Path] = is.Code
	}
	assert.Equal(t, shape.CodeType, got["machineId"])
	assert.Equal(t, shape.CodeTooSmall, got["seq"])
	assert.Equal(t, shape.CodeType, got["active"])
	for _, missing := range []string{"metadataVersion", "daemonState", "daemonStateVersion", "dataEncryptionKey", "activeAt", "createdAt", "updatedAt"} {
		assert.Equal(t, shape.CodeRequired, got[missing], missing)
	}
	assert.Len(t, issues, 10)
}

func TestSessionIDLengthBoundary(t *testing.T) {
	atMax := strings.Repeat("s", common.MaxIDLength)
	u, err := ValidateUpdate(map[string]any{"t": "delete-session", "sid": atMax})
	require.NoError(t, err)
	assert.Equal(t, atMax, SessionID(u))

	_, err = ValidateUpdate(map[string]any{"t": "delete-session", "sid": atMax + "s"})
	var ve *shape.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("sid", shape.CodeTooLong))
	assert.Len(t, ve.Issues, 1)
}

func TestBlobLengthBoundary(t *testing.T) {
	msg := func(n int) map[string]any {
		return map[string]any{
			"t": "new-message", "sid": "s",
			"message": map[string]any{
				"id": "m", "seq": 1, "createdAt": 1,
				"content": map[string]any{"tag": "encrypted", "ciphertext": strings.Repeat("c", n)},
			},
		}
	}
	_, err := ValidateUpdate(msg(common.MaxBlobLength))
	require.NoError(t, err)

	_, err = ValidateUpdate(msg(common.MaxBlobLength + 1))
	var ve *shape.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("message.content.ciphertext", shape.CodeTooLong))
}

func TestUnknownFieldsAreStripped(t *testing.T) {
	u, err := ParseUpdate([]byte(`{"t":"delete-machine","machineId":"m1","legacy":true}`))
	require.NoError(t, err)
	raw, err := MarshalUpdate(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"delete-machine","machineId":"m1"}`, string(raw))
}

func TestNestedFeedKindIsAUnion(t *testing.T) {
	base := `{"t":"new-feed-post","id":"f","cursor":"c","createdAt":1,"body":%s}`

	u, err := ParseUpdate([]byte(strings.Replace(base, "%s", `{"kind":"text","text":"hello"}`, 1)))
	require.NoError(t, err)
	post := u.(*NewFeedPost)
	assert.Equal(t, &TextBody{Text: "hello"}, post.Body)
	assert.False(t, post.RepeatKey.Present)

	_, err = ParseUpdate([]byte(strings.Replace(base, "%s", `{"kind":"poll"}`, 1)))
	var uv *shape.UnknownVariantError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "body.kind", uv.Path)
}

func TestDecodeErrors(t *testing.T) {
	for _, in := range []string{``, `{"t":`, `{"t":"delete-session","sid":"s"} {}`} {
		_, err := ParseUpdate([]byte(in))
		assert.True(t, errors.Is(err, ErrDecode), in)
	}
	_, err := ParseUpdateMsgpack([]byte{0xc1})
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestCodecForContentType(t *testing.T) {
	c, ok := CodecFor("")
	assert.True(t, ok)
	assert.Equal(t, CodecJSON, c)
	c, ok = CodecFor(ContentTypeMsgpack)
	assert.True(t, ok)
	assert.Equal(t, CodecMsgpack, c)
	_, ok = CodecFor("text/plain")
	assert.False(t, ok)
	assert.Equal(t, ContentTypeMsgpack, CodecMsgpack.ContentType())
}

func TestUpdateTypesSorted(t *testing.T) {
	types := UpdateTypes()
	assert.True(t, sort.SliceIsSorted(types, func(i, j int) bool { return types[i] < types[j] }))
}
