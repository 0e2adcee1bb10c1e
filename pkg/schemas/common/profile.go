package common

import "github.com/roboricindustries/sync-events/pkg/shape"

type UserProfile struct {
	ID        string             `json:"id"`
	FirstName string             `json:"firstName"`
	LastName  *string            `json:"lastName"`
	Avatar    *ImageRef          `json:"avatar"`
	Username  string             `json:"username"`
	Status    RelationshipStatus `json:"status"`
}

// ExternalIdentityProfile is the profile an OAuth provider returned for a linked
// account. Field names follow the provider, not our camelCase.
type ExternalIdentityProfile struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login"`
	Name      *string `json:"name"`
	AvatarURL string  `json:"avatar_url"`
	Email     *string `json:"email,omitempty"`
	Bio       *string `json:"bio"`
}

var (
	UserProfileShape = shape.Object(
		shape.Field("id", shape.String(MaxIDLength)),
		shape.Field("firstName", shape.String(MaxTextLength)),
		shape.Field("lastName", shape.Nullable(shape.String(MaxTextLength))),
		shape.Field("avatar", shape.Nullable(ImageRefShape)),
		shape.Field("username", shape.String(MaxTextLength)),
		shape.Field("status", RelationshipStatusShape),
	)
	ExternalIdentityProfileShape = shape.Object(
		shape.Field("id", shape.Int()),
		shape.Field("login", shape.String(MaxTextLength)),
		shape.Field("name", shape.Nullable(shape.String(MaxTextLength))),
		shape.Field("avatar_url", shape.String(MaxTextLength)),
		shape.Optional("email", shape.String(MaxTextLength)),
		shape.Field("bio", shape.Nullable(shape.String(MaxTextLength))),
	)
)
