package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/faq-kb/pkg/errors"
)

const defaultMaxBytes = 5 << 20

var keyPattern = regexp.MustCompile(`^[a-f0-9-]{36}(\.[a-z0-9]{1,8})?$`)

// Service stores images referenced by answer imageUrl fields.
type Service interface {
	UploadImage(ctx context.Context, req UploadRequest) (UploadResponse, error)
	// CheckSize rejects a declared upload size before its content is read.
	CheckSize(size int64) error
	OpenImage(ctx context.Context, key string) (Object, error)
}

type service struct {
	cfg     Config
	storage ObjectStorage
	logger  *slog.Logger
	newKey  func() string
}

// NewService wires up the media domain.
func NewService(cfg Config, storage ObjectStorage, logger *slog.Logger) Service {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	return &service{
		cfg:     cfg,
		storage: storage,
		logger:  logger.With("component", "media.service"),
		newKey:  uuid.NewString,
	}
}

func (s *service) UploadImage(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	if len(req.Content) == 0 {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "image file is empty", nil)
	}
	if err := s.CheckSize(int64(len(req.Content))); err != nil {
		return UploadResponse{}, err
	}
	mimeType := detectMimeType(req)
	if !strings.HasPrefix(mimeType, "image/") {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "only image uploads are allowed", nil)
	}

	key := s.newKey() + extensionFor(req.Filename, mimeType)
	stored, err := s.storage.Put(ctx, key, req.Content, mimeType)
	if err != nil {
		return UploadResponse{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to store image", err)
	}
	s.logger.Info("answer image stored", "key", stored.Key, "size", stored.Size, "mime", mimeType)

	return UploadResponse{
		ImageURL: s.publicURL(stored.Key),
		Key:      stored.Key,
		Size:     stored.Size,
		MimeType: mimeType,
	}, nil
}

func (s *service) CheckSize(size int64) error {
	if size > s.cfg.MaxBytes {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxBytes), nil)
	}
	return nil
}

func (s *service) OpenImage(ctx context.Context, key string) (Object, error) {
	if !keyPattern.MatchString(key) {
		return Object{}, apperrors.Wrap(apperrors.CodeNotFound, "image not found", nil)
	}
	obj, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return Object{}, apperrors.Wrap(apperrors.CodeNotFound, "image not found", err)
		}
		return Object{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to read image", err)
	}
	return obj, nil
}

func (s *service) publicURL(key string) string {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	return base + "/" + key
}

// detectMimeType trusts the sniffed type over the client header.
func detectMimeType(req UploadRequest) string {
	sniffed := http.DetectContentType(req.Content)
	if sniffed != "application/octet-stream" {
		return strings.TrimSpace(strings.SplitN(sniffed, ";", 2)[0])
	}
	declared, _, err := mime.ParseMediaType(req.MimeType)
	if err != nil {
		return sniffed
	}
	return declared
}

func extensionFor(filename, mimeType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext != "" && len(ext) <= 9 && keyPattern.MatchString("00000000-0000-0000-0000-000000000000"+ext) {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
