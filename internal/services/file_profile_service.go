package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tagcard/backend/internal/models"
	"github.com/tagcard/backend/internal/storage"
)

// FileProfileService is the single-node backend: everything lives in memory
// guarded by one mutex and is flushed to a JSON file after each mutation.
// It implements the same ProfileStore contract as the Mongo service and backs
// local development and the test suite.
type FileProfileService struct {
	mu    sync.RWMutex
	store *storage.JSONStore

	profiles map[string]*models.Profile // userID -> profile
	byPublic map[string]string          // publicID -> userID
	tags     map[string]*models.Tag     // tagID -> tag
	links    map[string]*models.SocialLink
	views    []models.ViewEvent
}

type profileSnapshot struct {
	Profiles []models.Profile    `json:"profiles"`
	Tags     []models.Tag        `json:"tags"`
	Links    []models.SocialLink `json:"social_links"`
	Views    []models.ViewEvent  `json:"profile_views"`
}

func NewFileProfileService(dataDir string) (*FileProfileService, error) {
	store, err := storage.NewJSONStore(dataDir, "profiles.json")
	if err != nil {
		return nil, err
	}

	s := &FileProfileService{
		store:    store,
		profiles: make(map[string]*models.Profile),
		byPublic: make(map[string]string),
		tags:     make(map[string]*models.Tag),
		links:    make(map[string]*models.SocialLink),
	}

	var snap profileSnapshot
	if err := store.Load(&snap); err != nil {
		return nil, err
	}
	for i := range snap.Profiles {
		p := snap.Profiles[i]
		s.profiles[p.ID] = &p
		s.byPublic[p.PublicID] = p.ID
	}
	for i := range snap.Tags {
		t := snap.Tags[i]
		s.tags[t.ID] = &t
	}
	for i := range snap.Links {
		l := snap.Links[i]
		s.links[l.ID] = &l
	}
	s.views = snap.Views

	return s, nil
}

func (s *FileProfileService) Close(ctx context.Context) error {
	return nil
}

// persist flushes the current state. Callers hold the write lock. Failures
// are logged, not returned: the in-memory state is still authoritative.
func (s *FileProfileService) persist() {
	snap := profileSnapshot{
		Profiles: make([]models.Profile, 0, len(s.profiles)),
		Tags:     make([]models.Tag, 0, len(s.tags)),
		Links:    make([]models.SocialLink, 0, len(s.links)),
		Views:    s.views,
	}
	for _, p := range s.profiles {
		snap.Profiles = append(snap.Profiles, *p)
	}
	for _, t := range s.tags {
		snap.Tags = append(snap.Tags, *t)
	}
	for _, l := range s.links {
		snap.Links = append(snap.Links, *l)
	}
	if err := s.store.Save(&snap); err != nil {
		log.Printf("[FileProfileService] persist error=%v", err)
	}
}

// newPublicID issues an opaque 12-character locator. Used by both backends.
func newPublicID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (s *FileProfileService) GetOrCreateProfile(ctx context.Context, userID, email string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrBadInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[userID]; ok {
		if email != "" && p.Email == "" {
			p.Email = email
			p.UpdatedAt = time.Now()
			s.persist()
		}
		cp := *p
		return &cp, nil
	}

	now := time.Now()
	p := &models.Profile{
		ID:              userID,
		PublicID:        s.issuePublicID(),
		Email:           email,
		ShowContactInfo: true,
		ShowSocialLinks: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.profiles[userID] = p
	s.byPublic[p.PublicID] = userID
	s.persist()

	cp := *p
	return &cp, nil
}

func (s *FileProfileService) issuePublicID() string {
	for {
		id := newPublicID()
		if _, taken := s.byPublic[id]; !taken {
			return id
		}
	}
}

func (s *FileProfileService) UpsertProfile(ctx context.Context, userID, email string, req *models.UpsertProfileRequest) (*models.Profile, error) {
	if userID == "" || req == nil {
		return nil, ErrBadInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		now := time.Now()
		p = &models.Profile{
			ID:              userID,
			PublicID:        s.issuePublicID(),
			ShowContactInfo: true,
			ShowSocialLinks: true,
			CreatedAt:       now,
		}
		s.profiles[userID] = p
		s.byPublic[p.PublicID] = userID
	}

	if email != "" {
		p.Email = email
	}
	applyProfileUpdate(p, req)
	p.UpdatedAt = time.Now()
	s.persist()

	cp := *p
	return &cp, nil
}

// applyProfileUpdate copies the non-nil request fields onto the profile.
// Shared by both backends' file paths that mutate in memory.
func applyProfileUpdate(p *models.Profile, req *models.UpsertProfileRequest) {
	if req.FullName != nil {
		p.FullName = *req.FullName
	}
	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		p.AvatarURL = *req.AvatarURL
	}
	if req.JobTitle != nil {
		p.JobTitle = *req.JobTitle
	}
	if req.Company != nil {
		p.Company = *req.Company
	}
	if req.ShortBio != nil {
		p.ShortBio = *req.ShortBio
	}
	if req.LongBio != nil {
		p.LongBio = *req.LongBio
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Website != nil {
		p.Website = *req.Website
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.ShowContactInfo != nil {
		p.ShowContactInfo = *req.ShowContactInfo
	}
	if req.ShowSocialLinks != nil {
		p.ShowSocialLinks = *req.ShowSocialLinks
	}
	if req.VisibilityPreset != nil {
		p.VisibilityPreset = *req.VisibilityPreset
	}
}

func (s *FileProfileService) ResolveByPublicID(ctx context.Context, publicID string) (*models.Profile, error) {
	if publicID == "" {
		return nil, ErrProfileNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.byPublic[publicID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *FileProfileService) ListTags(ctx context.Context, profileID string) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Tag, 0)
	for _, t := range s.tags {
		if t.ProfileID == profileID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *FileProfileService) AddTag(ctx context.Context, profileID string, req *models.AddTagRequest) (*models.Tag, error) {
	if profileID == "" || req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, ErrBadInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profileID]; !ok {
		return nil, ErrProfileNotFound
	}

	kind := req.Kind
	if kind != models.TagKindDislike {
		kind = models.TagKindLike
	}
	t := &models.Tag{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Name:      strings.TrimSpace(req.Name),
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	s.tags[t.ID] = t
	s.persist()

	cp := *t
	return &cp, nil
}

func (s *FileProfileService) DeleteTag(ctx context.Context, profileID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tags[tagID]
	if !ok || t.ProfileID != profileID {
		return ErrTagNotFound
	}
	delete(s.tags, tagID)
	s.persist()
	return nil
}

func (s *FileProfileService) ListLinks(ctx context.Context, profileID string) ([]models.SocialLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SocialLink, 0)
	for _, l := range s.links {
		if l.ProfileID == profileID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *FileProfileService) AddLink(ctx context.Context, profileID string, req *models.AddSocialLinkRequest) (*models.SocialLink, error) {
	if profileID == "" || req == nil || strings.TrimSpace(req.Platform) == "" || strings.TrimSpace(req.URL) == "" {
		return nil, ErrBadInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profileID]; !ok {
		return nil, ErrProfileNotFound
	}

	l := &models.SocialLink{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Platform:  strings.TrimSpace(req.Platform),
		URL:       strings.TrimSpace(req.URL),
		CreatedAt: time.Now(),
	}
	s.links[l.ID] = l
	s.persist()

	cp := *l
	return &cp, nil
}

func (s *FileProfileService) DeleteLink(ctx context.Context, profileID, linkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[linkID]
	if !ok || l.ProfileID != profileID {
		return ErrLinkNotFound
	}
	delete(s.links, linkID)
	s.persist()
	return nil
}

func (s *FileProfileService) RecordView(ctx context.Context, profileID, referrer, userAgent string) error {
	if profileID == "" {
		return ErrBadInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return ErrProfileNotFound
	}

	s.views = append(s.views, models.ViewEvent{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Referrer:  referrer,
		UserAgent: userAgent,
		ViewedAt:  time.Now(),
	})
	p.ViewCount++
	s.persist()
	return nil
}

func (s *FileProfileService) DeleteAccount(ctx context.Context, userID string) (*models.AccountDeletionResult, error) {
	if userID == "" {
		return nil, ErrBadInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &models.AccountDeletionResult{}

	p, ok := s.profiles[userID]
	if ok {
		result.ProfilesDeleted = 1
		result.AvatarURL = p.AvatarURL
		delete(s.byPublic, p.PublicID)
		delete(s.profiles, userID)
	}

	for id, t := range s.tags {
		if t.ProfileID == userID {
			delete(s.tags, id)
			result.TagsDeleted++
		}
	}
	for id, l := range s.links {
		if l.ProfileID == userID {
			delete(s.links, id)
			result.LinksDeleted++
		}
	}
	kept := s.views[:0]
	for _, v := range s.views {
		if v.ProfileID == userID {
			result.ViewsDeleted++
			continue
		}
		kept = append(kept, v)
	}
	s.views = kept

	s.persist()
	return result, nil
}
