package wire

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/roboricindustries/sync-events/pkg/schemas/common"
	"github.com/roboricindustries/sync-events/pkg/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireFields(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

// A variant carries an id exactly when its wire form has the field the
// carrier table names, and the accessor returns that field's value.
func TestUpdateAccessorsAgreeWithWireForm(t *testing.T) {
	for _, u := range sampleUpdates() {
		t.Run(string(u.Type()), func(t *testing.T) {
			m := wireFields(t, u)

			field, carries := SessionIDField(u.Type())
			id, ok := TryGetSessionID(u)
			assert.Equal(t, carries, ok)
			assert.Equal(t, ok, HasSessionID(u))
			if carries {
				assert.Equal(t, m[field], id)
				assert.Equal(t, id, SessionID(u))
			} else {
				assert.NotContains(t, m, "sid")
				assert.Panics(t, func() { SessionID(u) })
			}

			field, carries = MachineIDField(u.Type())
			id, ok = TryGetMachineID(u)
			assert.Equal(t, carries, ok)
			assert.Equal(t, ok, HasMachineID(u))
			if carries {
				assert.Equal(t, m[field], id)
				assert.Equal(t, id, MachineID(u))
			} else {
				assert.NotContains(t, m, "machineId")
				assert.Panics(t, func() { MachineID(u) })
			}
		})
	}
}

func TestEventAccessorsAgreeWithWireForm(t *testing.T) {
	for _, e := range sampleEvents() {
		t.Run(string(e.Type()), func(t *testing.T) {
			m := wireFields(t, e)

			field, carries := EventSessionIDField(e.Type())
			id, ok := TryGetEventSessionID(e)
			assert.Equal(t, carries, ok)
			assert.Equal(t, ok, EventHasSessionID(e))
			if carries {
				assert.Equal(t, m[field], id)
				assert.Equal(t, id, EventSessionID(e))
			} else {
				assert.NotContains(t, m, "sid")
				assert.Panics(t, func() { EventSessionID(e) })
			}

			field, carries = EventMachineIDField(e.Type())
			id, ok = TryGetEventMachineID(e)
			assert.Equal(t, carries, ok)
			assert.Equal(t, ok, EventHasMachineID(e))
			if carries {
				assert.Equal(t, m[field], id)
				assert.Equal(t, id, EventMachineID(e))
			} else {
				assert.NotContains(t, m, "machineId")
				assert.Panics(t, func() { EventMachineID(e) })
			}
		})
	}
}

func TestNoVariantCarriesBothIDs(t *testing.T) {
	for _, u := range sampleUpdates() {
		assert.False(t, HasSessionID(u) && HasMachineID(u), u.Type())
	}
	for _, e := range sampleEvents() {
		assert.False(t, EventHasSessionID(e) && EventHasMachineID(e), e.Type())
	}
}

func TestSessionIDPanicMessageNamesTheVariant(t *testing.T) {
	assert.PanicsWithValue(t,
		"wire: SessionID called on new-machine, which carries no session id",
		func() { SessionID(&NewMachine{MachineID: "m"}) })
	assert.PanicsWithValue(t,
		"wire: MachineID called on <nil update>, which carries no machine id",
		func() { MachineID(nil) })
}

func TestNewMessageCarriesSessionOnly(t *testing.T) {
	u, err := ParseUpdate([]byte(`{
		"t": "new-message",
		"sid": "session-789",
		"message": {
			"id": "msg-001",
			"seq": 1,
			"content": {"tag": "encrypted", "ciphertext": "abc"},
			"createdAt": 1700000000000
		}
	}`))
	require.NoError(t, err)

	id, ok := TryGetSessionID(u)
	assert.True(t, ok)
	assert.Equal(t, "session-789", id)
	assert.False(t, HasMachineID(u))

	msg := u.(*NewMessage).Message
	assert.Equal(t, common.NewEncryptedContent("abc"), msg.Content)
	assert.Nil(t, msg.UpdatedAt)
	assert.False(t, msg.LocalID.Present)
}

func TestNewMachineCarriesMachineOnly(t *testing.T) {
	u, err := ParseUpdate([]byte(`{
		"t": "new-machine",
		"machineId": "machine-123",
		"seq": 1,
		"metadata": "encrypted-metadata",
		"metadataVersion": 1,
		"daemonState": null,
		"daemonStateVersion": 0,
		"dataEncryptionKey": null,
		"active": true,
		"activeAt": 1700000000000,
		"createdAt": 1700000000000,
		"updatedAt": 1700000000000
	}`))
	require.NoError(t, err)

	assert.Equal(t, "machine-123", MachineID(u))
	assert.False(t, HasSessionID(u))
	_, ok := TryGetSessionID(u)
	assert.False(t, ok)
}

func TestBogusVariantIsUnknownNotMalformed(t *testing.T) {
	_, err := ParseUpdate([]byte(`{"t":"bogus-variant","foo":"bar"}`))
	require.Error(t, err)
	assert.True(t, shape.IsUnknownVariant(err))
	assert.Empty(t, shape.Issues(err))
}

func TestMixedBatchFilteredToSessions(t *testing.T) {
	batch := []Update{
		&NewSession{SID: "s1"},
		&NewMachine{MachineID: "m1"},
		&DeleteSession{SID: "s2"},
		&KVBatchUpdate{},
		&NewMessage{SID: "s3"},
		&DeleteMachine{MachineID: "m2"},
	}
	assert.Equal(t, []string{"s1", "s2", "s3"}, SessionIDs(batch))
	assert.Equal(t, []string{"m1", "m2"}, MachineIDs(batch))
	assert.Nil(t, SessionIDs([]Update{&UpdateAccount{ID: "a"}}))
}

// typedNil returns a nil pointer of v's concrete type, still wrapped in the interface.
func typedNil[T any](v T) T {
	return reflect.Zero(reflect.TypeOf(v)).Interface().(T)
}

func TestAccessorsTolerateNilVariantPointers(t *testing.T) {
	for _, u := range sampleUpdates() {
		t.Run(string(u.Type()), func(t *testing.T) {
			nilU := typedNil(u)
			require.NotNil(t, nilU)

			assert.NotPanics(t, func() {
				_, ok := TryGetSessionID(nilU)
				assert.False(t, ok)
				_, ok = TryGetMachineID(nilU)
				assert.False(t, ok)
				assert.False(t, HasSessionID(nilU))
				assert.False(t, HasMachineID(nilU))
			})
			assert.PanicsWithValue(t,
				"wire: SessionID called on "+string(u.Type())+", which carries no session id",
				func() { SessionID(nilU) })
		})
	}
	for _, e := range sampleEvents() {
		t.Run(string(e.Type()), func(t *testing.T) {
			nilE := typedNil(e)
			assert.NotPanics(t, func() {
				assert.False(t, EventHasSessionID(nilE))
				assert.False(t, EventHasMachineID(nilE))
			})
			assert.Panics(t, func() { EventMachineID(nilE) })
		})
	}

	var ns *NewSession
	var dm *DeleteMachine
	batch := []Update{&NewSession{SID: "s1"}, ns, dm, &DeleteMachine{MachineID: "m1"}, nil}
	assert.Equal(t, []string{"s1"}, SessionIDs(batch))
	assert.Equal(t, []string{"m1"}, MachineIDs(batch))
}

func TestUpdateContainer(t *testing.T) {
	c := NewUpdateContainer(12, &DeleteSession{SID: "session-1"})
	_, err := uuid.Parse(c.ID)
	require.NoError(t, err)
	assert.Positive(t, c.CreatedAt)

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var back UpdateContainer
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, c, back)
	assert.Equal(t, "session-1", SessionID(back.Body))

	packed, err := CodecMsgpack.Encode(c)
	require.NoError(t, err)
	v, err := CodecMsgpack.Decode(packed)
	require.NoError(t, err)
	fromPack, err := ValidateUpdateContainer(v)
	require.NoError(t, err)
	assert.Equal(t, c, fromPack)
}

func TestUpdateContainerRejectsUnknownBody(t *testing.T) {
	_, err := ParseUpdateContainer([]byte(`{"id":"c1","seq":1,"createdAt":1,"body":{"t":"bogus"}}`))
	var uv *shape.UnknownVariantError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "body.t", uv.Path)

	var c UpdateContainer
	err = json.Unmarshal([]byte(`{"id":"c1","seq":-3,"createdAt":1,"body":{"t":"delete-session","sid":"s"}}`), &c)
	assert.True(t, errors.Is(err, shape.ErrInvalidContract))
}
