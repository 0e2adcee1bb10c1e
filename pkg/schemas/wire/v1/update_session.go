package wire

import (
	"github.com/roboricindustries/sync-events/pkg/schemas/common"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

// NewSession announces a session. Metadata and agent state are encrypted blobs.
type NewSession struct {
	SID               string  `json:"sid"`
	Seq               int64   `json:"seq"`
	Metadata          string  `json:"metadata"`
	MetadataVersion   int64   `json:"metadataVersion"`
	AgentState        *string `json:"agentState"`
	AgentStateVersion int64   `json:"agentStateVersion"`
	DataEncryptionKey *string `json:"dataEncryptionKey"`
	Active            bool    `json:"active"`
	ActiveAt          int64   `json:"activeAt"`
	CreatedAt         int64   `json:"createdAt"`
	UpdatedAt         int64   `json:"updatedAt"`
}

// UpdateSession carries new versions of session metadata and/or agent state.
type UpdateSession struct {
	SID        string                                     `json:"sid"`
	Metadata   common.Patch[common.VersionedValue]         `json:"metadata,omitzero"`
	AgentState common.Patch[common.NullableVersionedValue] `json:"agentState,omitzero"`
}

type DeleteSession struct {
	SID string `json:"sid"`
}

type ArchiveSession struct {
	SID        string `json:"sid"`
	ArchivedAt *int64 `json:"archivedAt,omitempty"`
}

// NewMessage appends an encrypted message to a session.
type NewMessage struct {
	SID     string         `json:"sid"`
	Message SessionMessage `json:"message"`
}

type SessionMessage struct {
	ID        string                  `json:"id"`
	Seq       int64                   `json:"seq"`
	LocalID   common.Patch[string]    `json:"localId,omitzero"` // client idempotency key
	Content   common.EncryptedContent `json:"content"`
	CreatedAt int64                   `json:"createdAt"`
	UpdatedAt *int64                  `json:"updatedAt,omitempty"`
}

func (*NewSession) Type() UpdateType     { return TypeNewSession }
func (*UpdateSession) Type() UpdateType  { return TypeUpdateSession }
func (*DeleteSession) Type() UpdateType  { return TypeDeleteSession }
func (*ArchiveSession) Type() UpdateType { return TypeArchiveSession }
func (*NewMessage) Type() UpdateType     { return TypeNewMessage }

func (*NewSession) isUpdate()     {}
func (*UpdateSession) isUpdate()  {}
func (*DeleteSession) isUpdate()  {}
func (*ArchiveSession) isUpdate() {}
func (*NewMessage) isUpdate()     {}

func (u NewSession) MarshalJSON() ([]byte, error) {
	type plain NewSession
	return marshalTagged(UpdateTagField, string(TypeNewSession), plain(u))
}

func (u UpdateSession) MarshalJSON() ([]byte, error) {
	type plain UpdateSession
	return marshalTagged(UpdateTagField, string(TypeUpdateSession), plain(u))
}

func (u DeleteSession) MarshalJSON() ([]byte, error) {
	type plain DeleteSession
	return marshalTagged(UpdateTagField, string(TypeDeleteSession), plain(u))
}

func (u ArchiveSession) MarshalJSON() ([]byte, error) {
	type plain ArchiveSession
	return marshalTagged(UpdateTagField, string(TypeArchiveSession), plain(u))
}

func (u NewMessage) MarshalJSON() ([]byte, error) {
	type plain NewMessage
	return marshalTagged(UpdateTagField, string(TypeNewMessage), plain(u))
}

var (
	newSessionShape = shape.Object(
		tagField(TypeNewSession),
		shape.Field("sid", idShape),
		shape.Field("seq", shape.NonNegativeInt()),
		shape.Field("metadata", blobShape),
		shape.Field("metadataVersion", shape.NonNegativeInt()),
		shape.Field("agentState", shape.Nullable(blobShape)),
		shape.Field("agentStateVersion", shape.NonNegativeInt()),
		shape.Field("dataEncryptionKey", shape.Nullable(blobShape)),
		shape.Field("active", shape.Bool()),
		shape.Field("activeAt", shape.NonNegativeInt()),
		shape.Field("createdAt", shape.NonNegativeInt()),
		shape.Field("updatedAt", shape.NonNegativeInt()),
	)
	updateSessionShape = shape.Object(
		tagField(TypeUpdateSession),
		shape.Field("sid", idShape),
		shape.Optional("metadata", shape.Nullable(common.VersionedValueShape)),
		shape.Optional("agentState", shape.Nullable(common.NullableVersionedValueShape)),
	)
	deleteSessionShape = shape.Object(
		tagField(TypeDeleteSession),
		shape.Field("sid", idShape),
	)
	archiveSessionShape = shape.Object(
		tagField(TypeArchiveSession),
		shape.Field("sid", idShape),
		shape.Optional("archivedAt", shape.NonNegativeInt()),
	)
	newMessageShape = shape.Object(
		tagField(TypeNewMessage),
		shape.Field("sid", idShape),
		shape.Field("message", shape.Object(
			shape.Field("id", idShape),
			shape.Field("seq", shape.NonNegativeInt()),
			shape.Optional("localId", shape.Nullable(idShape)),
			shape.Field("content", common.EncryptedContentShape),
			shape.Field("createdAt", shape.NonNegativeInt()),
			shape.Optional("updatedAt", shape.NonNegativeInt()),
		)),
	)
)
