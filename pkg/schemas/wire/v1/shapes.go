package wire

import (
	"github.com/roboricindustries/sync-events/pkg/schemas/common"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

var (
	idShape   = shape.String(common.MaxIDLength)
	textShape = shape.String(common.MaxTextLength)
	blobShape = shape.String(common.MaxBlobLength)
)

func tagField(t UpdateType) shape.FieldSpec {
	return shape.Field(UpdateTagField, shape.Literal(string(t)))
}

func eventTagField(t EventType) shape.FieldSpec {
	return shape.Field(EventTagField, shape.Literal(string(t)))
}
