package wire

import (
	"github.com/roboricindustries/sync-events/pkg/shape"
)

// KVBatchUpdate reports changed keys of the user's key-value store.
// A nil Value means the key was deleted at Version.
type KVBatchUpdate struct {
	Changes []KVChange `json:"changes"`
}

type KVChange struct {
	Key     string  `json:"key"`
	Value   *string `json:"value"`
	Version int64   `json:"version"`
}

func (*KVBatchUpdate) Type() UpdateType { return TypeKVBatchUpdate }
func (*KVBatchUpdate) isUpdate()        {}

func (u KVBatchUpdate) MarshalJSON() ([]byte, error) {
	type plain KVBatchUpdate
	if u.Changes == nil {
		u.Changes = []KVChange{}
	}
	return marshalTagged(UpdateTagField, string(TypeKVBatchUpdate), plain(u))
}

var kvBatchUpdateShape = shape.Object(
	tagField(TypeKVBatchUpdate),
	shape.Field("changes", shape.Array(shape.Object(
		shape.Field("key", textShape),
		shape.Field("value", shape.Nullable(blobShape)),
		shape.Field("version", shape.NonNegativeInt()),
	))),
)
