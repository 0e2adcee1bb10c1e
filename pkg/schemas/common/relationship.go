package common

import "github.com/roboricindustries/sync-events/pkg/shape"

type RelationshipStatus string

const (
	RelationshipNone      RelationshipStatus = "none"
	RelationshipRequested RelationshipStatus = "requested"
	RelationshipPending   RelationshipStatus = "pending"
	RelationshipFriend    RelationshipStatus = "friend"
	RelationshipRejected  RelationshipStatus = "rejected"
)

var RelationshipStatusShape = shape.Enum(
	string(RelationshipNone),
	string(RelationshipRequested),
	string(RelationshipPending),
	string(RelationshipFriend),
	string(RelationshipRejected),
)
