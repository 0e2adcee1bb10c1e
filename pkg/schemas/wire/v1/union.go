package wire

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/roboricindustries/sync-events/pkg/shape"
)

// UpdateShape is the durable update union, keyed by "t".
var UpdateShape = shape.Union(UpdateTagField,
	newSessionShape,
	updateSessionShape,
	deleteSessionShape,
	archiveSessionShape,
	newMessageShape,
	newMachineShape,
	updateMachineShape,
	deleteMachineShape,
	newArtifactShape,
	updateArtifactShape,
	deleteArtifactShape,
	updateAccountShape,
	relationshipUpdatedShape,
	newFeedPostShape,
	kvBatchUpdateShape,
)

// EventShape is the ephemeral event union, keyed by "type".
var EventShape = shape.Union(EventTagField,
	activityShape,
	usageShape,
	machineActivityShape,
	machineStatusShape,
	machineDisconnectedShape,
)

var updateFactories = map[UpdateType]func() Update{
	TypeNewSession:          func() Update { return &NewSession{} },
	TypeUpdateSession:       func() Update { return &UpdateSession{} },
	TypeDeleteSession:       func() Update { return &DeleteSession{} },
	TypeArchiveSession:      func() Update { return &ArchiveSession{} },
	TypeNewMessage:          func() Update { return &NewMessage{} },
	TypeNewMachine:          func() Update { return &NewMachine{} },
	TypeUpdateMachine:       func() Update { return &UpdateMachine{} },
	TypeDeleteMachine:       func() Update { return &DeleteMachine{} },
	TypeNewArtifact:         func() Update { return &NewArtifact{} },
	TypeUpdateArtifact:      func() Update { return &UpdateArtifact{} },
	TypeDeleteArtifact:      func() Update { return &DeleteArtifact{} },
	TypeUpdateAccount:       func() Update { return &UpdateAccount{} },
	TypeRelationshipUpdated: func() Update { return &RelationshipUpdate{} },
	TypeNewFeedPost:         func() Update { return &NewFeedPost{} },
	TypeKVBatchUpdate:       func() Update { return &KVBatchUpdate{} },
}

var eventFactories = map[EventType]func() Event{
	TypeActivity:            func() Event { return &Activity{} },
	TypeUsage:               func() Event { return &Usage{} },
	TypeMachineActivity:     func() Event { return &MachineActivity{} },
	TypeMachineStatus:       func() Event { return &MachineStatus{} },
	TypeMachineDisconnected: func() Event { return &MachineDisconnected{} },
}

// UpdateTypes lists every known durable update tag, sorted.
func UpdateTypes() []UpdateType {
	out := make([]UpdateType, 0, len(updateFactories))
	for t := range updateFactories {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EventTypes lists every known ephemeral event tag, sorted.
func EventTypes() []EventType {
	out := make([]EventType, 0, len(eventFactories))
	for t := range eventFactories {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NewUpdate returns an empty update for t.
func NewUpdate(t UpdateType) (Update, bool) {
	f, ok := updateFactories[t]
	if !ok {
		return nil, false
	}
	return f(), true
}

// NewEvent returns an empty event for t.
func NewEvent(t EventType) (Event, bool) {
	f, ok := eventFactories[t]
	if !ok {
		return nil, false
	}
	return f(), true
}

// ValidateUpdate checks a decoded generic value against the durable update
// union and returns the typed variant. Errors are *shape.ValidationError or
// *shape.UnknownVariantError.
func ValidateUpdate(v any) (Update, error) {
	out, err := shape.Parse(UpdateShape, v)
	if err != nil {
		return nil, err
	}
	return buildUpdate(out)
}

// ValidateEvent is ValidateUpdate for ephemeral events.
func ValidateEvent(v any) (Event, error) {
	out, err := shape.Parse(EventShape, v)
	if err != nil {
		return nil, err
	}
	return buildEvent(out)
}

// ParseUpdate decodes and validates a JSON durable update.
func ParseUpdate(data []byte) (Update, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return ValidateUpdate(v)
}

// ParseEvent decodes and validates a JSON ephemeral event.
func ParseEvent(data []byte) (Event, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return ValidateEvent(v)
}

// ParseUpdateMsgpack decodes and validates a msgpack durable update.
func ParseUpdateMsgpack(data []byte) (Update, error) {
	v, err := DecodeMsgpack(data)
	if err != nil {
		return nil, err
	}
	return ValidateUpdate(v)
}

// ParseEventMsgpack decodes and validates a msgpack ephemeral event.
func ParseEventMsgpack(data []byte) (Event, error) {
	v, err := DecodeMsgpack(data)
	if err != nil {
		return nil, err
	}
	return ValidateEvent(v)
}

// buildUpdate turns validated, normalised output into its typed variant.
func buildUpdate(out any) (Update, error) {
	m, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("wire: validated update is %T, not an object", out)
	}
	tag, _ := m[UpdateTagField].(string)
	u, ok := NewUpdate(UpdateType(tag))
	if !ok {
		return nil, fmt.Errorf("wire: no factory for update %q", tag)
	}
	if err := remarshal(m, u); err != nil {
		return nil, fmt.Errorf("wire: build update %q: %w", tag, err)
	}
	return u, nil
}

func buildEvent(out any) (Event, error) {
	m, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("wire: validated event is %T, not an object", out)
	}
	tag, _ := m[EventTagField].(string)
	e, ok := NewEvent(EventType(tag))
	if !ok {
		return nil, fmt.Errorf("wire: no factory for event %q", tag)
	}
	if err := remarshal(m, e); err != nil {
		return nil, fmt.Errorf("wire: build event %q: %w", tag, err)
	}
	return e, nil
}

func remarshal(src any, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
