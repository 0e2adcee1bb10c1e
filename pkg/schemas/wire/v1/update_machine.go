package wire

import (
	"github.com/roboricindustries/sync-events/pkg/schemas/common"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

// NewMachine registers a machine running the daemon.
type NewMachine struct {
	MachineID          string  `json:"machineId"`
	Seq                int64   `json:"seq"`
	Metadata           string  `json:"metadata"`
	MetadataVersion    int64   `json:"metadataVersion"`
	DaemonState        *string `json:"daemonState"`
	DaemonStateVersion int64   `json:"daemonStateVersion"`
	DataEncryptionKey  *string `json:"dataEncryptionKey"`
	Active             bool    `json:"active"`
	ActiveAt           int64   `json:"activeAt"`
	CreatedAt          int64   `json:"createdAt"`
	UpdatedAt          int64   `json:"updatedAt"`
}

type UpdateMachine struct {
	MachineID   string                         `json:"machineId"`
	Metadata    *common.VersionedValue         `json:"metadata,omitempty"`
	DaemonState *common.NullableVersionedValue `json:"daemonState,omitempty"`
	Active      *bool                          `json:"active,omitempty"`
	ActiveAt    *int64                         `json:"activeAt,omitempty"`
}

type DeleteMachine struct {
	MachineID string `json:"machineId"`
}

func (*NewMachine) Type() UpdateType    { return TypeNewMachine }
func (*UpdateMachine) Type() UpdateType { return TypeUpdateMachine }
func (*DeleteMachine) Type() UpdateType { return TypeDeleteMachine }

func (*NewMachine) isUpdate()    {}
func (*UpdateMachine) isUpdate() {}
func (*DeleteMachine) isUpdate() {}

func (u NewMachine) MarshalJSON() ([]byte, error) {
	type plain NewMachine
	return marshalTagged(UpdateTagField, string(TypeNewMachine), plain(u))
}

func (u UpdateMachine) MarshalJSON() ([]byte, error) {
	type plain UpdateMachine
	return marshalTagged(UpdateTagField, string(TypeUpdateMachine), plain(u))
}

func (u DeleteMachine) MarshalJSON() ([]byte, error) {
	type plain DeleteMachine
	return marshalTagged(UpdateTagField, string(TypeDeleteMachine), plain(u))
}

var (
	newMachineShape = shape.Object(
		tagField(TypeNewMachine),
		shape.Field("machineId", idShape),
		shape.Field("seq", shape.NonNegativeInt()),
		shape.Field("metadata", blobShape),
		shape.Field("metadataVersion", shape.NonNegativeInt()),
		shape.Field("daemonState", shape.Nullable(blobShape)),
		shape.Field("daemonStateVersion", shape.NonNegativeInt()),
		shape.Field("dataEncryptionKey", shape.Nullable(blobShape)),
		shape.Field("active", shape.Bool()),
		shape.Field("activeAt", shape.NonNegativeInt()),
		shape.Field("createdAt", shape.NonNegativeInt()),
		shape.Field("updatedAt", shape.NonNegativeInt()),
	)
	updateMachineShape = shape.Object(
		tagField(TypeUpdateMachine),
		shape.Field("machineId", idShape),
		shape.Optional("metadata", common.VersionedValueShape),
		shape.Optional("daemonState", common.NullableVersionedValueShape),
		shape.Optional("active", shape.Bool()),
		shape.Optional("activeAt", shape.NonNegativeInt()),
	)
	deleteMachineShape = shape.Object(
		tagField(TypeDeleteMachine),
		shape.Field("machineId", idShape),
	)
)
