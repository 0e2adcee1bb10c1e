// Package wire defines the sync protocol messages exchanged between the relay
// server and its clients.
//
// Two families share this package. Durable updates are persisted and replayed
// in order; their discriminator is the short field "t". Ephemeral events may
// be dropped; their discriminator is "type". The two names differ for
// compatibility with clients already speaking the protocol and must stay that
// way.
package wire

import (
	"encoding/json"
	"fmt"
)

// UpdateTagField is the discriminator of durable updates.
const UpdateTagField = "t"

type UpdateType string

const (
	TypeNewSession          UpdateType = "new-session"
	TypeUpdateSession       UpdateType = "update-session"
	TypeDeleteSession       UpdateType = "delete-session"
	TypeArchiveSession      UpdateType = "archive-session"
	TypeNewMessage          UpdateType = "new-message"
	TypeNewMachine          UpdateType = "new-machine"
	TypeUpdateMachine       UpdateType = "update-machine"
	TypeDeleteMachine       UpdateType = "delete-machine"
	TypeNewArtifact         UpdateType = "new-artifact"
	TypeUpdateArtifact      UpdateType = "update-artifact"
	TypeDeleteArtifact      UpdateType = "delete-artifact"
	TypeUpdateAccount       UpdateType = "update-account"
	TypeRelationshipUpdated UpdateType = "relationship-updated"
	TypeNewFeedPost         UpdateType = "new-feed-post"
	TypeKVBatchUpdate       UpdateType = "kv-batch-update"
)

// Update is one durable update body. The set of implementations is closed:
// only pointer types declared in this package satisfy it.
type Update interface {
	Type() UpdateType
	isUpdate()
}

// marshalTagged encodes v as a JSON object with field=tag prepended.
func marshalTagged(field, tag string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("wire: %s %q does not encode as an object", field, tag)
	}
	key, _ := json.Marshal(field)
	val, _ := json.Marshal(tag)
	out := make([]byte, 0, len(body)+len(key)+len(val)+2)
	out = append(out, '{')
	out = append(out, key...)
	out = append(out, ':')
	out = append(out, val...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}

// MarshalUpdate encodes u with its "t" tag.
func MarshalUpdate(u Update) ([]byte, error) {
	if u == nil {
		return nil, fmt.Errorf("wire: nil update")
	}
	return json.Marshal(u)
}
