package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func compile(t *testing.T, name string) *gojsonschema.Schema {
	t.Helper()
	doc, ok := JSONSchemas()[name]
	require.True(t, ok, name)
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	require.NoError(t, err)
	return s
}

func validAgainst(t *testing.T, s *gojsonschema.Schema, raw []byte) bool {
	t.Helper()
	res, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	require.NoError(t, err)
	return res.Valid()
}

func TestExportedSchemasAcceptEverySample(t *testing.T) {
	updates := compile(t, SchemaUpdate)
	for _, u := range sampleUpdates() {
		raw, err := MarshalUpdate(u)
		require.NoError(t, err)
		assert.True(t, validAgainst(t, updates, raw), u.Type())
	}

	events := compile(t, SchemaEvent)
	for _, e := range sampleEvents() {
		raw, err := json.Marshal(e)
		require.NoError(t, err)
		assert.True(t, validAgainst(t, events, raw), e.Type())
	}

	containers := compile(t, SchemaUpdateContainer)
	raw, err := json.Marshal(NewUpdateContainer(1, &DeleteMachine{MachineID: "m"}))
	require.NoError(t, err)
	assert.True(t, validAgainst(t, containers, raw))
}

func TestExportedSchemasRejectWhatParsingRejects(t *testing.T) {
	updates := compile(t, SchemaUpdate)
	for _, in := range []string{
		`{"t":"bogus-variant","foo":"bar"}`,
		`{"t":"delete-session"}`,
		`{"t":"delete-session","sid":7}`,
		`{"t":"new-message","sid":"s","message":{"id":"m","seq":1,"createdAt":1,"content":{"tag":"plain","ciphertext":"x"}}}`,
		`{"sid":"s"}`,
	} {
		_, err := ParseUpdate([]byte(in))
		require.Error(t, err, in)
		assert.False(t, validAgainst(t, updates, []byte(in)), in)
	}

	events := compile(t, SchemaEvent)
	in := `{"type":"usage","sid":"s","key":"k","tokens":{"input":1},"cost":{"total":0.1},"timestamp":1}`
	_, err := ParseEvent([]byte(in))
	require.Error(t, err)
	assert.False(t, validAgainst(t, events, []byte(in)))
}
