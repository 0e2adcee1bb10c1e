package wire

import (
	"encoding/json"
	"fmt"

	"github.com/roboricindustries/sync-events/pkg/schemas/common"
	"github.com/roboricindustries/sync-events/pkg/shape"
)

type RelationshipAction string

const (
	RelationshipCreated RelationshipAction = "created"
	RelationshipUpdated RelationshipAction = "updated"
	RelationshipDeleted RelationshipAction = "deleted"
)

type RelationshipUpdate struct {
	FromUserID string                    `json:"fromUserId"`
	ToUserID   string                    `json:"toUserId"`
	Status     common.RelationshipStatus `json:"status"`
	Action     RelationshipAction        `json:"action"`
	FromUser   *common.UserProfile       `json:"fromUser,omitempty"`
	ToUser     *common.UserProfile       `json:"toUser,omitempty"`
	Timestamp  int64                     `json:"timestamp"`
}

func (*RelationshipUpdate) Type() UpdateType { return TypeRelationshipUpdated }
func (*RelationshipUpdate) isUpdate()        {}

func (u RelationshipUpdate) MarshalJSON() ([]byte, error) {
	type plain RelationshipUpdate
	return marshalTagged(UpdateTagField, string(TypeRelationshipUpdated), plain(u))
}

// Feed bodies are their own small union keyed by "kind".
const FeedKindField = "kind"

type FeedKind string

const (
	FeedFriendRequest  FeedKind = "friend_request"
	FeedFriendAccepted FeedKind = "friend_accepted"
	FeedText           FeedKind = "text"
)

type FeedBody interface {
	Kind() FeedKind
	isFeedBody()
}

type FriendRequestBody struct {
	UID string `json:"uid"`
}

type FriendAcceptedBody struct {
	UID string `json:"uid"`
}

type TextBody struct {
	Text string `json:"text"`
}

func (*FriendRequestBody) Kind() FeedKind  { return FeedFriendRequest }
func (*FriendAcceptedBody) Kind() FeedKind { return FeedFriendAccepted }
func (*TextBody) Kind() FeedKind           { return FeedText }

func (*FriendRequestBody) isFeedBody()  {}
func (*FriendAcceptedBody) isFeedBody() {}
func (*TextBody) isFeedBody()           {}

func (b FriendRequestBody) MarshalJSON() ([]byte, error) {
	type plain FriendRequestBody
	return marshalTagged(FeedKindField, string(FeedFriendRequest), plain(b))
}

func (b FriendAcceptedBody) MarshalJSON() ([]byte, error) {
	type plain FriendAcceptedBody
	return marshalTagged(FeedKindField, string(FeedFriendAccepted), plain(b))
}

func (b TextBody) MarshalJSON() ([]byte, error) {
	type plain TextBody
	return marshalTagged(FeedKindField, string(FeedText), plain(b))
}

// NewFeedPost appends an item to the user's activity feed.
type NewFeedPost struct {
	ID        string               `json:"id"`
	Body      FeedBody             `json:"body"`
	Cursor    string               `json:"cursor"`
	CreatedAt int64                `json:"createdAt"`
	RepeatKey common.Patch[string] `json:"repeatKey,omitzero"`
}

func (*NewFeedPost) Type() UpdateType { return TypeNewFeedPost }
func (*NewFeedPost) isUpdate()        {}

func (u NewFeedPost) MarshalJSON() ([]byte, error) {
	type plain NewFeedPost
	return marshalTagged(UpdateTagField, string(TypeNewFeedPost), plain(u))
}

func (u *NewFeedPost) UnmarshalJSON(data []byte) error {
	type plain NewFeedPost
	var raw struct {
		plain
		Body json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	body, err := decodeFeedBody(raw.Body)
	if err != nil {
		return err
	}
	*u = NewFeedPost(raw.plain)
	u.Body = body
	return nil
}

func decodeFeedBody(data json.RawMessage) (FeedBody, error) {
	var head struct {
		Kind FeedKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var body FeedBody
	switch head.Kind {
	case FeedFriendRequest:
		body = &FriendRequestBody{}
	case FeedFriendAccepted:
		body = &FriendAcceptedBody{}
	case FeedText:
		body = &TextBody{}
	default:
		return nil, fmt.Errorf("wire: unknown feed body kind %q", head.Kind)
	}
	if err := json.Unmarshal(data, body); err != nil {
		return nil, err
	}
	return body, nil
}

var (
	relationshipUpdatedShape = shape.Object(
		tagField(TypeRelationshipUpdated),
		shape.Field("fromUserId", idShape),
		shape.Field("toUserId", idShape),
		shape.Field("status", common.RelationshipStatusShape),
		shape.Field("action", shape.Enum(
			string(RelationshipCreated),
			string(RelationshipUpdated),
			string(RelationshipDeleted),
		)),
		shape.Optional("fromUser", common.UserProfileShape),
		shape.Optional("toUser", common.UserProfileShape),
		shape.Field("timestamp", shape.NonNegativeInt()),
	)
	feedBodyShape = shape.Union(FeedKindField,
		shape.Object(
			shape.Field(FeedKindField, shape.Literal(string(FeedFriendRequest))),
			shape.Field("uid", idShape),
		),
		shape.Object(
			shape.Field(FeedKindField, shape.Literal(string(FeedFriendAccepted))),
			shape.Field("uid", idShape),
		),
		shape.Object(
			shape.Field(FeedKindField, shape.Literal(string(FeedText))),
			shape.Field("text", textShape),
		),
	)
	newFeedPostShape = shape.Object(
		tagField(TypeNewFeedPost),
		shape.Field("id", idShape),
		shape.Field("body", feedBodyShape),
		shape.Field("cursor", idShape),
		shape.Field("createdAt", shape.NonNegativeInt()),
		shape.Optional("repeatKey", shape.Nullable(idShape)),
	)
)
