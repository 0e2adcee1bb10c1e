package wire

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

// UpdateContainer wraps a durable update with delivery metadata. Seq is
// assigned by the producer per stream; this package carries it untouched and
// leaves gap detection and reordering to consumers.
type UpdateContainer struct {
	ID        string `json:"id"`
	Seq       int64  `json:"seq"`
	Body      Update `json:"body"`
	CreatedAt int64  `json:"createdAt"` // ms since epoch
}

// UpdateContainerShape validates a container including its body.
var UpdateContainerShape = shape.Object(
	shape.Field("id", idShape),
	shape.Field("seq", shape.NonNegativeInt()),
	shape.Field("body", UpdateShape),
	shape.Field("createdAt", shape.NonNegativeInt()),
)

// NewUpdateContainer wraps body for publishing with a fresh id and the current time.
func NewUpdateContainer(seq int64, body Update) UpdateContainer {
	return UpdateContainer{
		ID:        uuid.NewString(),
		Seq:       seq,
		Body:      body,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// ValidateUpdateContainer checks a decoded generic value. An unknown body tag is
// reported as *shape.UnknownVariantError at path "body.t".
func ValidateUpdateContainer(v any) (UpdateContainer, error) {
	out, err := shape.Parse(UpdateContainerShape, v)
	if err != nil {
		return UpdateContainer{}, err
	}
	m, ok := out.(map[string]any)
	if !ok {
		return UpdateContainer{}, fmt.Errorf("wire: validated container is %T, not an object", out)
	}
	body, err := buildUpdate(m["body"])
	if err != nil {
		return UpdateContainer{}, err
	}
	id, _ := m["id"].(string)
	seq, _ := m["seq"].(int64)
	createdAt, _ := m["createdAt"].(int64)
	return UpdateContainer{ID: id, Seq: seq, Body: body, CreatedAt: createdAt}, nil
}

// ParseUpdateContainer decodes and validates a JSON container.
func ParseUpdateContainer(data []byte) (UpdateContainer, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return UpdateContainer{}, err
	}
	return ValidateUpdateContainer(v)
}

// UnmarshalJSON validates while decoding, so a container never holds an
// unchecked body.
func (c *UpdateContainer) UnmarshalJSON(data []byte) error {
	parsed, err := ParseUpdateContainer(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
