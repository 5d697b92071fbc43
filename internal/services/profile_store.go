package services

import (
	"context"
	"errors"

	"github.com/tagcard/backend/internal/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrTagNotFound     = errors.New("tag not found")
	ErrLinkNotFound    = errors.New("social link not found")
	ErrBadInput        = errors.New("invalid input")
)

// ProfileStore is the persistence contract shared by the Mongo and file
// backends. Owner-side calls are keyed by the account user ID; the only
// anonymous entry point is ResolveByPublicID, which must do an exact-match
// lookup and fail closed with ErrProfileNotFound on anything else.
type ProfileStore interface {
	GetOrCreateProfile(ctx context.Context, userID, email string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, userID, email string, req *models.UpsertProfileRequest) (*models.Profile, error)
	ResolveByPublicID(ctx context.Context, publicID string) (*models.Profile, error)

	ListTags(ctx context.Context, profileID string) ([]models.Tag, error)
	AddTag(ctx context.Context, profileID string, req *models.AddTagRequest) (*models.Tag, error)
	DeleteTag(ctx context.Context, profileID, tagID string) error

	ListLinks(ctx context.Context, profileID string) ([]models.SocialLink, error)
	AddLink(ctx context.Context, profileID string, req *models.AddSocialLinkRequest) (*models.SocialLink, error)
	DeleteLink(ctx context.Context, profileID, linkID string) error

	// RecordView appends one immutable view event and bumps the denormalized
	// counter. Lost increments under contention are acceptable; losing the
	// event row is not.
	RecordView(ctx context.Context, profileID, referrer, userAgent string) error

	DeleteAccount(ctx context.Context, userID string) (*models.AccountDeletionResult, error)

	Close(ctx context.Context) error
}
