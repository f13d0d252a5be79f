package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/parsa-dv/messenger/internal/filestore"
	"github.com/parsa-dv/messenger/internal/model"
	appErr "github.com/parsa-dv/messenger/internal/pkg/errors"
)

// MaxUploadSize matches the upload ceiling enforced for attachments and
// profile pictures.
const MaxUploadSize = 50 << 20

var allowedUploadExts = map[string]struct{}{
	".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {},
	".mp4": {}, ".webm": {}, ".mov": {},
}

// UploadService fronts the blob store: it enforces the extension allow-list
// and the size ceiling, classifies the declared type into image/video, and
// hands back the stored file's public path.
type UploadService struct {
	store filestore.Store
}

func NewUploadService(store filestore.Store) *UploadService {
	return &UploadService{store: store}
}

func (s *UploadService) SaveUpload(ctx context.Context, header *multipart.FileHeader) (string, string, error) {
	if header == nil {
		return "", "", appErr.Validation("No file uploaded")
	}
	if header.Size > MaxUploadSize {
		return "", "", appErr.Validation("File too large (max 50MB)")
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedUploadExts[ext]; !ok {
		return "", "", appErr.Validation("Only images and videos are allowed")
	}
	contentType := header.Header.Get("Content-Type")
	kind := model.AttachmentImage
	if strings.HasPrefix(contentType, "video/") {
		kind = model.AttachmentVideo
	}
	file, err := header.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	key := newFileKey() + ext
	if err := s.store.Save(ctx, key, file, header.Size); err != nil {
		return "", "", err
	}
	return s.store.URL(key), kind, nil
}

func newFileKey() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
