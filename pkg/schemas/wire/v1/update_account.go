package wire

import (
	"github.com/roboricindustries/sync-events/pkg/schemas/common"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

// UpdateAccount is a partial account update. Absent fields are unchanged,
// null fields are cleared.
type UpdateAccount struct {
	ID        string                                       `json:"id"`
	Settings  common.Patch[common.NullableVersionedValue]  `json:"settings,omitzero"`
	GitHub    common.Patch[common.ExternalIdentityProfile] `json:"github,omitzero"`
	FirstName common.Patch[string]                         `json:"firstName,omitzero"`
	LastName  common.Patch[string]                         `json:"lastName,omitzero"`
	Username  common.Patch[string]                         `json:"username,omitzero"`
	Avatar    common.Patch[common.ImageRef]                `json:"avatar,omitzero"`
}

func (*UpdateAccount) Type() UpdateType { return TypeUpdateAccount }
func (*UpdateAccount) isUpdate()        {}

func (u UpdateAccount) MarshalJSON() ([]byte, error) {
	type plain UpdateAccount
	return marshalTagged(UpdateTagField, string(TypeUpdateAccount), plain(u))
}

var updateAccountShape = shape.Object(
	tagField(TypeUpdateAccount),
	shape.Field("id", idShape),
	shape.Optional("settings", shape.Nullable(common.NullableVersionedValueShape)),
	shape.Optional("github", shape.Nullable(common.ExternalIdentityProfileShape)),
	shape.Optional("firstName", shape.Nullable(textShape)),
	shape.Optional("lastName", shape.Nullable(textShape)),
	shape.Optional("username", shape.Nullable(textShape)),
	shape.Optional("avatar", shape.Nullable(common.ImageRefShape)),
)
