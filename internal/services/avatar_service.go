package services

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/tagcard/backend/internal/models"
)

var ErrAvatarNotFound = errors.New("avatar not found")

// AvatarService stores avatar binaries on disk under uuid filenames and hands
// back /uploads/ URLs. Ownership is enforced one level up: an avatar URL only
// ever lives on its owner's profile, so callers pass URLs, not IDs.
type AvatarService struct {
	mu        sync.Mutex
	uploadDir string
}

func NewAvatarService(uploadDir string) *AvatarService {
	os.MkdirAll(uploadDir, 0755)
	return &AvatarService{uploadDir: uploadDir}
}

func (s *AvatarService) Upload(filename string, file io.Reader) (*models.AvatarUploadResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}

	id := uuid.New().String()
	newFilename := id + ext
	filePath := filepath.Join(s.uploadDir, newFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &models.AvatarUploadResponse{
		ID:       id,
		URL:      "/uploads/" + newFilename,
		Filename: newFilename,
	}, nil
}

// RemoveByURL deletes the file behind an /uploads/ URL. Missing files are not
// an error; the cascade and avatar replacement both call this best-effort.
func (s *AvatarService) RemoveByURL(avatarURL string) error {
	path, ok := s.localPath(avatarURL)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// OpenImage decodes the avatar behind an /uploads/ URL for card rendering.
func (s *AvatarService) OpenImage(avatarURL string) (image.Image, error) {
	path, ok := s.localPath(avatarURL)
	if !ok {
		return nil, ErrAvatarNotFound
	}
	img, err := imaging.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAvatarNotFound
		}
		return nil, fmt.Errorf("decode avatar: %w", err)
	}
	return img, nil
}

// localPath maps an /uploads/<file> URL back onto the upload directory.
// Anything else (external URLs, empty values, traversal attempts) is not
// locally stored.
func (s *AvatarService) localPath(avatarURL string) (string, bool) {
	if !strings.HasPrefix(avatarURL, "/uploads/") {
		return "", false
	}
	name := filepath.Base(strings.TrimPrefix(avatarURL, "/uploads/"))
	if name == "" || name == "." || name == "/" {
		return "", false
	}
	return filepath.Join(s.uploadDir, name), true
}
