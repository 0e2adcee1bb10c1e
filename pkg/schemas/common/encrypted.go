package common

import "github.com/roboricindustries/sync-events/pkg/shape"

const EncryptedTag = "encrypted"

// EncryptedContent is an opaque ciphertext. Nothing here decrypts or inspects it.
type EncryptedContent struct {
	Tag        string `json:"tag"` // always "encrypted"
	Ciphertext string `json:"ciphertext"`
}

func NewEncryptedContent(ciphertext string) EncryptedContent {
	return EncryptedContent{Tag: EncryptedTag, Ciphertext: ciphertext}
}

var EncryptedContentShape = shape.Object(
	shape.Field("tag", shape.Literal(EncryptedTag)),
	shape.Field("ciphertext", shape.String(MaxBlobLength)),
)
