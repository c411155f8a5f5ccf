package pipeline

import (
	"context"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"causemap/pkg/storage"
)

// DownloadImage streams the archived source image for a review. The caller
// must close the reader. Returns storage.ErrNotFound when archival is
// disabled or no image was recorded for the review.
func (rt *Runtime) DownloadImage(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	staged, err := rt.Reviews.Get(id)
	if err != nil {
		return nil, "", err
	}

	if rt.Archive == nil || staged.ImageKey == "" {
		return nil, "", storage.ErrNotFound
	}

	body, err := rt.Archive.Download(ctx, staged.ImageKey)
	if err != nil {
		return nil, "", err
	}

	return body, contentTypeForKey(staged.ImageKey), nil
}

// Discard drops a review along with its archived image. Archive cleanup is
// best effort; the review is removed regardless.
func (rt *Runtime) Discard(ctx context.Context, id uuid.UUID) {
	staged, err := rt.Reviews.Get(id)
	if err == nil && rt.Archive != nil && staged.ImageKey != "" {
		ok, err := rt.Archive.Exists(ctx, staged.ImageKey)
		if err != nil {
			rt.Logger.Warn("archived image check failed", "key", staged.ImageKey, "error", err)
		} else if ok {
			if err := rt.Archive.Delete(ctx, staged.ImageKey); err != nil {
				rt.Logger.Warn("archived image cleanup failed", "key", staged.ImageKey, "error", err)
			}
		}
	}

	rt.Reviews.Delete(id)
}

// contentTypeForKey maps an archived image's extension back to its MIME type.
func contentTypeForKey(key string) string {
	switch filepath.Ext(key) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
