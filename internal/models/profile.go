package models

import "time"

// Tag kinds. Tags are free text; the kind only controls which section of the
// public page they render under.
const (
	TagKindLike    = "like"
	TagKindDislike = "dislike"
)

// Profile is the owner-editable profile record, keyed by the account user ID.
// PublicID is the only externally valid locator; it is random, unguessable and
// never reused once issued.
type Profile struct {
	ID               string    `json:"id" bson:"_id"`
	PublicID         string    `json:"public_id" bson:"public_id"`
	FullName         string    `json:"full_name" bson:"full_name"`
	DisplayName      string    `json:"display_name,omitempty" bson:"display_name,omitempty"`
	AvatarURL        string    `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	JobTitle         string    `json:"job_title,omitempty" bson:"job_title,omitempty"`
	Company          string    `json:"company,omitempty" bson:"company,omitempty"`
	ShortBio         string    `json:"short_bio,omitempty" bson:"short_bio,omitempty"`
	LongBio          string    `json:"long_bio,omitempty" bson:"long_bio,omitempty"`
	Email            string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone            string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Website          string    `json:"website,omitempty" bson:"website,omitempty"`
	Location         string    `json:"location,omitempty" bson:"location,omitempty"`
	ShowContactInfo  bool      `json:"show_contact_info" bson:"show_contact_info"`
	ShowSocialLinks  bool      `json:"show_social_links" bson:"show_social_links"`
	VisibilityPreset string    `json:"visibility_preset,omitempty" bson:"visibility_preset,omitempty"`
	ViewCount        int64     `json:"view_count" bson:"view_count"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// Tag belongs to exactly one profile. Duplicate names are allowed; the client
// typically avoids them but the backend does not deduplicate.
type Tag struct {
	ID        string    `json:"id" bson:"_id"`
	ProfileID string    `json:"profile_id" bson:"profile_id"`
	Name      string    `json:"name" bson:"name"`
	Kind      string    `json:"kind" bson:"kind"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// SocialLink belongs to exactly one profile.
type SocialLink struct {
	ID        string    `json:"id" bson:"_id"`
	ProfileID string    `json:"profile_id" bson:"profile_id"`
	Platform  string    `json:"platform" bson:"platform"`
	URL       string    `json:"url" bson:"url"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ViewEvent is append-only. It is never updated and never read back by the
// app; it exists for later aggregation only.
type ViewEvent struct {
	ID        string    `json:"id" bson:"_id"`
	ProfileID string    `json:"profile_id" bson:"profile_id"`
	Referrer  string    `json:"referrer,omitempty" bson:"referrer,omitempty"`
	UserAgent string    `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	ViewedAt  time.Time `json:"viewed_at" bson:"viewed_at"`
}

// UpsertProfileRequest carries partial profile updates. Nil fields are left
// untouched so the client can update through a single PUT.
type UpsertProfileRequest struct {
	FullName         *string `json:"full_name"`
	DisplayName      *string `json:"display_name"`
	AvatarURL        *string `json:"avatar_url"`
	JobTitle         *string `json:"job_title"`
	Company          *string `json:"company"`
	ShortBio         *string `json:"short_bio"`
	LongBio          *string `json:"long_bio"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Website          *string `json:"website"`
	Location         *string `json:"location"`
	ShowContactInfo  *bool   `json:"show_contact_info"`
	ShowSocialLinks  *bool   `json:"show_social_links"`
	VisibilityPreset *string `json:"visibility_preset"`
}

type AddTagRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type AddSocialLinkRequest struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// ProfileStats is the owner-facing dashboard summary.
type ProfileStats struct {
	PublicID  string `json:"public_id"`
	ViewCount int64  `json:"view_count"`
}

// AccountDeletionResult reports what the cascade removed, plus any avatar
// file the caller should clean up from disk.
type AccountDeletionResult struct {
	ProfilesDeleted int64  `json:"profiles_deleted"`
	TagsDeleted     int64  `json:"tags_deleted"`
	LinksDeleted    int64  `json:"links_deleted"`
	ViewsDeleted    int64  `json:"views_deleted"`
	AvatarURL       string `json:"avatar_url,omitempty"`
}
