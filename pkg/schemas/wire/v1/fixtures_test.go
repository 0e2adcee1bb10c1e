package wire

import (
	"github.com/roboricindustries/sync-events/pkg/schemas/common"
)

func ptr[T any](v T) *T { return &v }

// sampleUpdates holds one fully populated value per durable update variant.
func sampleUpdates() []Update {
	last := "Hopper"
	return []Update{
		&NewSession{
			SID: "session-1", Seq: 3, Metadata: "enc-meta", MetadataVersion: 1,
			AgentState: ptr("enc-state"), AgentStateVersion: 2, DataEncryptionKey: nil,
			Active: true, ActiveAt: 1700000000000, CreatedAt: 1700000000000, UpdatedAt: 1700000000001,
		},
		&UpdateSession{
			SID:        "session-1",
			Metadata:   common.Set(common.VersionedValue{Version: 2, Value: "enc-meta-2"}),
			AgentState: common.Set(common.NullableVersionedValue{Version: 3}),
		},
		&DeleteSession{SID: "session-2"},
		&ArchiveSession{SID: "session-3", ArchivedAt: ptr(int64(1700000000500))},
		&NewMessage{SID: "session-1", Message: SessionMessage{
			ID: "msg-1", Seq: 7, LocalID: common.Set("local-1"),
			Content: common.NewEncryptedContent("cipher"), CreatedAt: 1700000000000,
			UpdatedAt: ptr(int64(1700000000002)),
		}},
		&NewMachine{
			MachineID: "machine-1", Seq: 1, Metadata: "enc", MetadataVersion: 1,
			DaemonState: ptr("daemon"), DaemonStateVersion: 4, DataEncryptionKey: ptr("dek"),
			Active: false, ActiveAt: 5, CreatedAt: 6, UpdatedAt: 7,
		},
		&UpdateMachine{
			MachineID:   "machine-1",
			Metadata:    &common.VersionedValue{Version: 9, Value: "m"},
			DaemonState: &common.NullableVersionedValue{Version: 10, Value: ptr("d")},
			Active:      ptr(true),
			ActiveAt:    ptr(int64(11)),
		},
		&DeleteMachine{MachineID: "machine-2"},
		&NewArtifact{
			ArtifactID: "artifact-1", Seq: 1, Header: "h", HeaderVersion: 1,
			Body: common.Clear[string](), BodyVersion: ptr(int64(0)), DataEncryptionKey: "dek",
			CreatedAt: 1, UpdatedAt: 2,
		},
		&UpdateArtifact{ArtifactID: "artifact-1", Header: &common.VersionedValue{Version: 2, Value: "h2"}},
		&DeleteArtifact{ArtifactID: "artifact-2"},
		&UpdateAccount{
			ID:        "account-1",
			Settings:  common.Set(common.NullableVersionedValue{Version: 1, Value: ptr("{}")}),
			GitHub:    common.Clear[common.ExternalIdentityProfile](),
			FirstName: common.Set("Grace"),
			LastName:  common.Set(last),
			Avatar:    common.Set(common.ImageRef{Width: 64, Height: 64, Thumbhash: "th", Path: "a/b.png", URL: "https://cdn/a/b.png"}),
		},
		&RelationshipUpdate{
			FromUserID: "user-1", ToUserID: "user-2", Status: common.RelationshipRequested,
			Action: RelationshipCreated, Timestamp: 42,
			ToUser: &common.UserProfile{ID: "user-2", FirstName: "Ada", Username: "ada", Status: common.RelationshipPending},
		},
		&NewFeedPost{ID: "feed-1", Body: &FriendRequestBody{UID: "user-9"}, Cursor: "c-1", CreatedAt: 3, RepeatKey: common.Set("rk")},
		&KVBatchUpdate{Changes: []KVChange{
			{Key: "theme", Value: ptr("dark"), Version: 3},
			{Key: "gone", Value: nil, Version: 4},
		}},
	}
}

func sampleEvents() []Event {
	return []Event{
		&Activity{SID: "session-1", Active: true, ActiveAt: 10, Thinking: ptr(false)},
		&Usage{
			SID: "session-1", Key: "claude-turn",
			Tokens:    map[string]int64{"total": 30, "input": 10, "output": 20},
			Cost:      map[string]float64{"total": 0.5, "input": 0.25, "output": 0.25},
			Timestamp: 11,
		},
		&MachineActivity{MachineID: "machine-1", Active: true, ActiveAt: 12},
		&MachineStatus{MachineID: "machine-1", Online: false, Timestamp: 13},
		&MachineDisconnected{MachineID: "machine-1", Reason: ptr("ping timeout"), Timestamp: 14},
	}
}
