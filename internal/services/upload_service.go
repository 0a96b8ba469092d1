package services

import (
	"context"
	"fmt"

	chat_errors "chatgraph/pkg/errors"

	"github.com/google/uuid"
)

const MaxPictureBytes int64 = 5 << 20

var pictureExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectPresigner is implemented by storage.Client.
type ObjectPresigner interface {
	PresignPut(ctx context.Context, key, contentType string, sizeBytes int64) (string, map[string]string, error)
	FileURL(key string) string
}

type UploadService struct {
	storage ObjectPresigner
}

// NewUploadService builds the service; storage may be nil when S3 is not configured.
func NewUploadService(storage ObjectPresigner) *UploadService {
	return &UploadService{storage: storage}
}

type PictureUpload struct {
	UploadURL  string            `json:"upload_url"`
	Headers    map[string]string `json:"headers"`
	Key        string            `json:"key"`
	PictureURL string            `json:"picture_url"`
}

// PresignPicture returns a presigned PUT for a profile or group picture. The
// PictureURL is what clients pass as picture to updateUser, addGroup or updateChat.
func (s *UploadService) PresignPicture(ctx context.Context, contentType string, sizeBytes int64) (PictureUpload, error) {
	me, err := currentUserID(ctx)
	if err != nil {
		return PictureUpload{}, err
	}
	if s.storage == nil {
		return PictureUpload{}, fmt.Errorf("%w: picture storage is not configured", chat_errors.ErrServiceUnavailable)
	}

	ext, ok := pictureExtensions[contentType]
	if !ok {
		return PictureUpload{}, fmt.Errorf("%w: unsupported content type %q", chat_errors.ErrInvalidInput, contentType)
	}
	if sizeBytes <= 0 {
		return PictureUpload{}, fmt.Errorf("%w: size must be positive", chat_errors.ErrInvalidInput)
	}
	if sizeBytes > MaxPictureBytes {
		return PictureUpload{}, chat_errors.ErrTooLarge
	}

	key := fmt.Sprintf("pictures/%s/%s%s", me, uuid.New(), ext)
	uploadURL, headers, err := s.storage.PresignPut(ctx, key, contentType, sizeBytes)
	if err != nil {
		return PictureUpload{}, err
	}

	return PictureUpload{
		UploadURL:  uploadURL,
		Headers:    headers,
		Key:        key,
		PictureURL: s.storage.FileURL(key),
	}, nil
}
