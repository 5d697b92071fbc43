package services

import (
	"context"
	"crypto/tls"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tagcard/backend/internal/models"
)

// MongoProfileService is the hosted backend. One collection per entity; the
// view counter is bumped with an atomic $inc so concurrent visitors never
// read-modify-write each other away.
type MongoProfileService struct {
	client      *mongo.Client
	db          *mongo.Database
	profilesCol *mongo.Collection
	tagsCol     *mongo.Collection
	linksCol    *mongo.Collection
	viewsCol    *mongo.Collection
}

func NewMongoProfileService(ctx context.Context, mongoURI, dbName string) (*MongoProfileService, error) {
	if mongoURI == "" || dbName == "" {
		return nil, ErrBadInput
	}

	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	s := &MongoProfileService{
		client:      client,
		db:          db,
		profilesCol: db.Collection("profiles"),
		tagsCol:     db.Collection("tags"),
		linksCol:    db.Collection("social_links"),
		viewsCol:    db.Collection("profile_views"),
	}

	// Best-effort indexes. public_id is the only anonymous lookup key and
	// must be unique; the rest are equality-scan helpers.
	_, _ = s.profilesCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "public_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	_, _ = s.tagsCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "profile_id", Value: 1}},
	})
	_, _ = s.linksCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "profile_id", Value: 1}},
	})
	_, _ = s.viewsCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "profile_id", Value: 1}, {Key: "viewed_at", Value: -1}},
	})

	log.Printf("MongoDB connected (profiles): db=%s", dbName)
	return s, nil
}

func (s *MongoProfileService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoProfileService) GetOrCreateProfile(ctx context.Context, userID, email string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrBadInput
	}

	now := time.Now()

	var prof models.Profile
	err := s.profilesCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&prof)
	if err == nil {
		if email != "" && prof.Email == "" {
			_, _ = s.profilesCol.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
				"$set": bson.M{"email": email, "updated_at": now},
			})
			prof.Email = email
			prof.UpdatedAt = now
		}
		return &prof, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	prof = models.Profile{
		ID:              userID,
		PublicID:        newPublicID(),
		Email:           email,
		ShowContactInfo: true,
		ShowSocialLinks: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := s.profilesCol.InsertOne(ctx, prof); err != nil {
		// If a race created it, fetch again.
		var retry models.Profile
		if err2 := s.profilesCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&retry); err2 == nil {
			return &retry, nil
		}
		return nil, err
	}
	return &prof, nil
}

func (s *MongoProfileService) UpsertProfile(ctx context.Context, userID, email string, req *models.UpsertProfileRequest) (*models.Profile, error) {
	if userID == "" || req == nil {
		return nil, ErrBadInput
	}

	// Ensure the document (and its public_id) exists first; upserting the
	// public_id inline would risk reissuing it on a lost race.
	if _, err := s.GetOrCreateProfile(ctx, userID, email); err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{"updated_at": now}
	if email != "" {
		set["email"] = email
	}
	if req.FullName != nil {
		set["full_name"] = *req.FullName
	}
	if req.DisplayName != nil {
		set["display_name"] = *req.DisplayName
	}
	if req.AvatarURL != nil {
		set["avatar_url"] = *req.AvatarURL
	}
	if req.JobTitle != nil {
		set["job_title"] = *req.JobTitle
	}
	if req.Company != nil {
		set["company"] = *req.Company
	}
	if req.ShortBio != nil {
		set["short_bio"] = *req.ShortBio
	}
	if req.LongBio != nil {
		set["long_bio"] = *req.LongBio
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Website != nil {
		set["website"] = *req.Website
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.ShowContactInfo != nil {
		set["show_contact_info"] = *req.ShowContactInfo
	}
	if req.ShowSocialLinks != nil {
		set["show_social_links"] = *req.ShowSocialLinks
	}
	if req.VisibilityPreset != nil {
		set["visibility_preset"] = *req.VisibilityPreset
	}

	if _, err := s.profilesCol.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set}); err != nil {
		return nil, err
	}

	var prof models.Profile
	if err := s.profilesCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&prof); err != nil {
		return nil, err
	}
	return &prof, nil
}

func (s *MongoProfileService) ResolveByPublicID(ctx context.Context, publicID string) (*models.Profile, error) {
	if strings.TrimSpace(publicID) == "" {
		return nil, ErrProfileNotFound
	}

	var prof models.Profile
	err := s.profilesCol.FindOne(ctx, bson.M{"public_id": publicID}).Decode(&prof)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

func (s *MongoProfileService) ListTags(ctx context.Context, profileID string) ([]models.Tag, error) {
	cur, err := s.tagsCol.Find(ctx, bson.M{"profile_id": profileID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Tag, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoProfileService) AddTag(ctx context.Context, profileID string, req *models.AddTagRequest) (*models.Tag, error) {
	if profileID == "" || req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, ErrBadInput
	}

	kind := req.Kind
	if kind != models.TagKindDislike {
		kind = models.TagKindLike
	}
	tag := &models.Tag{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Name:      strings.TrimSpace(req.Name),
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	if _, err := s.tagsCol.InsertOne(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *MongoProfileService) DeleteTag(ctx context.Context, profileID, tagID string) error {
	res, err := s.tagsCol.DeleteOne(ctx, bson.M{"_id": tagID, "profile_id": profileID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTagNotFound
	}
	return nil
}

func (s *MongoProfileService) ListLinks(ctx context.Context, profileID string) ([]models.SocialLink, error) {
	cur, err := s.linksCol.Find(ctx, bson.M{"profile_id": profileID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.SocialLink, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoProfileService) AddLink(ctx context.Context, profileID string, req *models.AddSocialLinkRequest) (*models.SocialLink, error) {
	if profileID == "" || req == nil || strings.TrimSpace(req.Platform) == "" || strings.TrimSpace(req.URL) == "" {
		return nil, ErrBadInput
	}

	link := &models.SocialLink{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Platform:  strings.TrimSpace(req.Platform),
		URL:       strings.TrimSpace(req.URL),
		CreatedAt: time.Now(),
	}
	if _, err := s.linksCol.InsertOne(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *MongoProfileService) DeleteLink(ctx context.Context, profileID, linkID string) error {
	res, err := s.linksCol.DeleteOne(ctx, bson.M{"_id": linkID, "profile_id": profileID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func (s *MongoProfileService) RecordView(ctx context.Context, profileID, referrer, userAgent string) error {
	if profileID == "" {
		return ErrBadInput
	}

	event := models.ViewEvent{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Referrer:  referrer,
		UserAgent: userAgent,
		ViewedAt:  time.Now(),
	}
	if _, err := s.viewsCol.InsertOne(ctx, event); err != nil {
		return err
	}

	_, err := s.profilesCol.UpdateOne(ctx, bson.M{"_id": profileID}, bson.M{
		"$inc": bson.M{"view_count": 1},
	})
	return err
}

func (s *MongoProfileService) DeleteAccount(ctx context.Context, userID string) (*models.AccountDeletionResult, error) {
	if userID == "" {
		return nil, ErrBadInput
	}

	result := &models.AccountDeletionResult{}

	var prof models.Profile
	if err := s.profilesCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&prof); err == nil {
		result.AvatarURL = prof.AvatarURL
	}

	if res, err := s.tagsCol.DeleteMany(ctx, bson.M{"profile_id": userID}); err == nil {
		result.TagsDeleted = res.DeletedCount
	} else {
		return nil, err
	}
	if res, err := s.linksCol.DeleteMany(ctx, bson.M{"profile_id": userID}); err == nil {
		result.LinksDeleted = res.DeletedCount
	} else {
		return nil, err
	}
	if res, err := s.viewsCol.DeleteMany(ctx, bson.M{"profile_id": userID}); err == nil {
		result.ViewsDeleted = res.DeletedCount
	} else {
		return nil, err
	}
	if res, err := s.profilesCol.DeleteOne(ctx, bson.M{"_id": userID}); err == nil {
		result.ProfilesDeleted = res.DeletedCount
	} else {
		return nil, err
	}

	return result, nil
}
