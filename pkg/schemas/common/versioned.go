package common

import "github.com/roboricindustries/sync-events/pkg/shape"

// VersionedValue pairs an encrypted value with its optimistic-concurrency version.
type VersionedValue struct {
	Version int64  `json:"version"`
	Value   string `json:"value"`
}

// NullableVersionedValue is a VersionedValue whose value may be cleared.
type NullableVersionedValue struct {
	Version int64   `json:"version"`
	Value   *string `json:"value"`
}

// Newer reports whether v may replace a locally held version.
// Only strictly newer versions are accepted; ties and regressions are not.
func (v VersionedValue) Newer(local int64) bool { return v.Version > local }

func (v NullableVersionedValue) Newer(local int64) bool { return v.Version > local }

var (
	VersionedValueShape = shape.Object(
		shape.Field("version", shape.NonNegativeInt()),
		shape.Field("value", shape.String(MaxBlobLength)),
	)
	NullableVersionedValueShape = shape.Object(
		shape.Field("version", shape.NonNegativeInt()),
		shape.Field("value", shape.Nullable(shape.String(MaxBlobLength))),
	)
)
