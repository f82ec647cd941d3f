package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"store_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadPolicy bounds what Validate accepts. Extensions are matched
// case-insensitively against the last dot-delimited segment of the
// original filename.
type UploadPolicy struct {
	AllowedExtensions []string
	MaxSizeBytes      int64
}

// DefaultImagePolicy is the legacy 5 MiB image policy shared by the
// product and user stores.
func DefaultImagePolicy(maxSizeBytes int64) UploadPolicy {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 5 * 1024 * 1024
	}
	return UploadPolicy{
		AllowedExtensions: []string{"jpg", "jpeg", "png", "gif", "webp"},
		MaxSizeBytes:      maxSizeBytes,
	}
}

// LocalAssetStore writes blobs under root/subdir and hands back paths
// relative to root, so they stay resolvable by the static file responder.
type LocalAssetStore struct {
	root   string
	subdir string
	policy UploadPolicy
	log    *logrus.Logger
}

func NewLocalAssetStore(root, subdir string, policy UploadPolicy, logger *logrus.Logger) *LocalAssetStore {
	return &LocalAssetStore{
		root:   root,
		subdir: subdir,
		policy: policy,
		log:    logger,
	}
}

func (s *LocalAssetStore) Validate(file *domain.FileUpload) error {
	if file == nil || len(file.Content) == 0 {
		s.log.Warn("Asset store: rejected empty or unreadable upload")
		return domain.NewValidationError("uploaded file is empty or could not be read")
	}

	ext := extensionOf(file.Filename)
	if ext == "" || !s.extensionAllowed(ext) {
		s.log.Warnf("Asset store: rejected upload '%s' with extension '%s'", file.Filename, ext)
		return domain.NewValidationError("file extension not allowed. valid extensions: %s",
			strings.Join(s.policy.AllowedExtensions, ", "))
	}

	if s.policy.MaxSizeBytes > 0 && int64(len(file.Content)) > s.policy.MaxSizeBytes {
		s.log.Warnf("Asset store: rejected upload '%s' of %d bytes (max %d)",
			file.Filename, len(file.Content), s.policy.MaxSizeBytes)
		return domain.NewValidationError("file too large. maximum size is %dMB",
			s.policy.MaxSizeBytes/(1024*1024))
	}

	return nil
}

// GenerateName derives a practically collision-free file name from a
// nanosecond timestamp and a random suffix, keeping the original extension.
func (s *LocalAssetStore) GenerateName(originalName string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), suffix)
	if ext := extensionOf(originalName); ext != "" {
		name += "." + ext
	}
	return name
}

func (s *LocalAssetStore) Save(ctx context.Context, file *domain.FileUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.AssetError{Op: "save", Path: file.Filename, Err: err}
	}

	dir := filepath.Join(s.root, s.subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Errorf("Asset store: failed to create directory %s: %v", dir, err)
		return "", &domain.AssetError{Op: "save", Path: dir, Err: err}
	}

	name := s.GenerateName(file.Filename)
	fullPath := filepath.Join(dir, name)
	if err := os.WriteFile(fullPath, file.Content, 0o644); err != nil {
		s.log.Errorf("Asset store: failed to write %s: %v", fullPath, err)
		return "", &domain.AssetError{Op: "save", Path: fullPath, Err: err}
	}

	relPath := path.Join(s.subdir, name)
	s.log.Infof("Asset store: saved %s (%d bytes)", relPath, len(file.Content))
	return relPath, nil
}

func (s *LocalAssetStore) Delete(relPath string) {
	if relPath == "" {
		return
	}
	fullPath := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			s.log.Debugf("Asset store: %s already gone", relPath)
			return
		}
		// Cleanup is best-effort: never escalate past the log.
		s.log.Errorf("Asset store: failed to delete %s: %v", relPath, err)
		return
	}
	s.log.Infof("Asset store: deleted %s", relPath)
}

func (s *LocalAssetStore) extensionAllowed(ext string) bool {
	for _, allowed := range s.policy.AllowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}
