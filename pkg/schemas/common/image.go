package common

import "github.com/roboricindustries/sync-events/pkg/shape"

// ImageRef points at a stored image. Thumbhash is the blur placeholder.
type ImageRef struct {
	Width     int64  `json:"width"`
	Height    int64  `json:"height"`
	Thumbhash string `json:"thumbhash"`
	Path      string `json:"path"`
	URL       string `json:"url"`
}

var ImageRefShape = shape.Object(
	shape.Field("width", shape.NonNegativeInt()),
	shape.Field("height", shape.NonNegativeInt()),
	shape.Field("thumbhash", shape.String(MaxTextLength)),
	shape.Field("path", shape.String(MaxTextLength)),
	shape.Field("url", shape.String(MaxTextLength)),
)
