package wire

import (
	"github.com/roboricindustries/sync-events/pkg/schemas/common"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

// EventTagField is the discriminator of ephemeral events. It is deliberately
// not the same as UpdateTagField.
const EventTagField = "type"

type EventType string

const (
	TypeActivity            EventType = "activity"
	TypeUsage               EventType = "usage"
	TypeMachineActivity     EventType = "machine-activity"
	TypeMachineStatus       EventType = "machine-status"
	TypeMachineDisconnected EventType = "machine-disconnected"
)

// Event is one ephemeral event. Consumers must tolerate loss; there is no
// envelope and no ordering.
type Event interface {
	Type() EventType
	isEvent()
}

// EphemeralPayload is what travels on the wire for ephemeral events.
type EphemeralPayload = Event

// Activity is a session heartbeat.
type Activity struct {
	SID      string `json:"sid"`
	Active   bool   `json:"active"`
	ActiveAt int64  `json:"activeAt"`
	Thinking *bool  `json:"thinking,omitempty"`
}

// Usage reports token usage and cost for one agent turn. Tokens and Cost always
// contain a "total" key.
type Usage struct {
	SID       string             `json:"sid"`
	Key       string             `json:"key"`
	Tokens    map[string]int64   `json:"tokens"`
	Cost      map[string]float64 `json:"cost"`
	Timestamp int64              `json:"timestamp"`
}

type MachineActivity struct {
	MachineID string `json:"machineId"`
	Active    bool   `json:"active"`
	ActiveAt  int64  `json:"activeAt"`
}

type MachineStatus struct {
	MachineID string `json:"machineId"`
	Online    bool   `json:"online"`
	Timestamp int64  `json:"timestamp"`
}

type MachineDisconnected struct {
	MachineID string  `json:"machineId"`
	Reason    *string `json:"reason,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

func (*Activity) Type() EventType            { return TypeActivity }
func (*Usage) Type() EventType               { return TypeUsage }
func (*MachineActivity) Type() EventType     { return TypeMachineActivity }
func (*MachineStatus) Type() EventType       { return TypeMachineStatus }
func (*MachineDisconnected) Type() EventType { return TypeMachineDisconnected }

func (*Activity) isEvent()            {}
func (*Usage) isEvent()               {}
func (*MachineActivity) isEvent()     {}
func (*MachineStatus) isEvent()       {}
func (*MachineDisconnected) isEvent() {}

func (e Activity) MarshalJSON() ([]byte, error) {
	type plain Activity
	return marshalTagged(EventTagField, string(TypeActivity), plain(e))
}

func (e Usage) MarshalJSON() ([]byte, error) {
	type plain Usage
	return marshalTagged(EventTagField, string(TypeUsage), plain(e))
}

func (e MachineActivity) MarshalJSON() ([]byte, error) {
	type plain MachineActivity
	return marshalTagged(EventTagField, string(TypeMachineActivity), plain(e))
}

func (e MachineStatus) MarshalJSON() ([]byte, error) {
	type plain MachineStatus
	return marshalTagged(EventTagField, string(TypeMachineStatus), plain(e))
}

func (e MachineDisconnected) MarshalJSON() ([]byte, error) {
	type plain MachineDisconnected
	return marshalTagged(EventTagField, string(TypeMachineDisconnected), plain(e))
}

var (
	activityShape = shape.Object(
		eventTagField(TypeActivity),
		shape.Field("sid", idShape),
		shape.Field("active", shape.Bool()),
		shape.Field("activeAt", shape.NonNegativeInt()),
		shape.Optional("thinking", shape.Bool()),
	)
	usageShape = shape.Object(
		eventTagField(TypeUsage),
		shape.Field("sid", idShape),
		shape.Field("key", shape.String(common.MaxTextLength)),
		shape.Field("tokens", shape.Object(
			shape.Field("total", shape.NonNegativeInt()),
		).Catchall(shape.NonNegativeInt())),
		shape.Field("cost", shape.Object(
			shape.Field("total", shape.Number()),
		).Catchall(shape.Number())),
		shape.Field("timestamp", shape.NonNegativeInt()),
	)
	machineActivityShape = shape.Object(
		eventTagField(TypeMachineActivity),
		shape.Field("machineId", idShape),
		shape.Field("active", shape.Bool()),
		shape.Field("activeAt", shape.NonNegativeInt()),
	)
	machineStatusShape = shape.Object(
		eventTagField(TypeMachineStatus),
		shape.Field("machineId", idShape),
		shape.Field("online", shape.Bool()),
		shape.Field("timestamp", shape.NonNegativeInt()),
	)
	machineDisconnectedShape = shape.Object(
		eventTagField(TypeMachineDisconnected),
		shape.Field("machineId", idShape),
		shape.Optional("reason", textShape),
		shape.Field("timestamp", shape.NonNegativeInt()),
	)
)
