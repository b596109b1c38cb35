package model

import "errors"

// UploadResult is returned by the upload capability.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Upload constraints. Size/type are validated before the storage call; on
// storage failure the client falls back to an inline data URL.
const (
	MaxImageSizeBytes = 5 * 1024 * 1024

	ImageFolder = "images"

	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"

	ImageCacheControl = "public, max-age=31536000, immutable"
)

// IsAllowedImageType reports whether the content type is an accepted upload.
func IsAllowedImageType(contentType string) bool {
	switch contentType {
	case ContentTypeJPEG, ContentTypePNG, ContentTypeGIF, ContentTypeWebP:
		return true
	}
	return false
}

var (
	ErrFileTooLarge     = errors.New("file exceeds maximum size")
	ErrInvalidImageType = errors.New("unsupported image type")
)
