package wire

import (
	"github.com/roboricindustries/sync-events/pkg/schemas/common"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

type NewArtifact struct {
	ArtifactID        string               `json:"artifactId"`
	Seq               int64                `json:"seq"`
	Header            string               `json:"header"`
	HeaderVersion     int64                `json:"headerVersion"`
	Body              common.Patch[string] `json:"body,omitzero"`
	BodyVersion       *int64               `json:"bodyVersion,omitempty"`
	DataEncryptionKey string               `json:"dataEncryptionKey"`
	CreatedAt         int64                `json:"createdAt"`
	UpdatedAt         int64                `json:"updatedAt"`
}

type UpdateArtifact struct {
	ArtifactID string                 `json:"artifactId"`
	Header     *common.VersionedValue `json:"header,omitempty"`
	Body       *common.VersionedValue `json:"body,omitempty"`
}

type DeleteArtifact struct {
	ArtifactID string `json:"artifactId"`
}

func (*NewArtifact) Type() UpdateType    { return TypeNewArtifact }
func (*UpdateArtifact) Type() UpdateType { return TypeUpdateArtifact }
func (*DeleteArtifact) Type() UpdateType { return TypeDeleteArtifact }

func (*NewArtifact) isUpdate()    {}
func (*UpdateArtifact) isUpdate() {}
func (*DeleteArtifact) isUpdate() {}

func (u NewArtifact) MarshalJSON() ([]byte, error) {
	type plain NewArtifact
	return marshalTagged(UpdateTagField, string(TypeNewArtifact), plain(u))
}

func (u UpdateArtifact) MarshalJSON() ([]byte, error) {
	type plain UpdateArtifact
	return marshalTagged(UpdateTagField, string(TypeUpdateArtifact), plain(u))
}

func (u DeleteArtifact) MarshalJSON() ([]byte, error) {
	type plain DeleteArtifact
	return marshalTagged(UpdateTagField, string(TypeDeleteArtifact), plain(u))
}

var (
	newArtifactShape = shape.Object(
		tagField(TypeNewArtifact),
		shape.Field("artifactId", idShape),
		shape.Field("seq", shape.NonNegativeInt()),
		shape.Field("header", blobShape),
		shape.Field("headerVersion", shape.NonNegativeInt()),
		shape.Optional("body", shape.Nullable(blobShape)),
		shape.Optional("bodyVersion", shape.NonNegativeInt()),
		shape.Field("dataEncryptionKey", blobShape),
		shape.Field("createdAt", shape.NonNegativeInt()),
		shape.Field("updatedAt", shape.NonNegativeInt()),
	)
	updateArtifactShape = shape.Object(
		tagField(TypeUpdateArtifact),
		shape.Field("artifactId", idShape),
		shape.Optional("header", common.VersionedValueShape),
		shape.Optional("body", common.VersionedValueShape),
	)
	deleteArtifactShape = shape.Object(
		tagField(TypeDeleteArtifact),
		shape.Field("artifactId", idShape),
	)
)
