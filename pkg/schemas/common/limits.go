package common

// Length bounds, in code points. Every identifier and blob field on the wire
// declares one of these.
const (
	MaxIDLength   = 256
	MaxTextLength = 4096
	MaxBlobLength = 64 * 1024
)
