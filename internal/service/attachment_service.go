package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tradepost/internal/apperr"
	"tradepost/internal/storage"
)

// MaxImageFiles is the most files a single upload may carry.
const MaxImageFiles = 4

// UploadFile is one incoming file of an upload batch.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

// AttachmentManager owns the stored image files behind a listing's
// imageUrls. An upload replaces the whole set: new files are written first,
// the listing record is swapped by the caller, and only then are the old
// files removed, so a stored URL never points at a missing file.
type AttachmentManager struct {
	storage storage.BlobStorage
	log     *zap.Logger
}

func NewAttachmentManager(blobs storage.BlobStorage, log *zap.Logger) *AttachmentManager {
	return &AttachmentManager{storage: blobs, log: log}
}

// Stage validates the whole batch, then writes every file and returns the
// stored URLs in input order. Validation is a barrier: if any file is not
// an image, nothing is written and the entire batch is discarded. A partial
// write failure removes the files already written and fails the batch.
func (m *AttachmentManager) Stage(ctx context.Context, files []UploadFile) ([]string, error) {
	if len(files) > MaxImageFiles {
		return nil, apperr.Newf(apperr.ErrTooManyFiles, "at most %d image files per upload", MaxImageFiles)
	}
	for _, file := range files {
		if !strings.HasPrefix(file.ContentType, "image") {
			return nil, apperr.Newf(apperr.ErrInvalidUpload, "%s is not an image", file.Name)
		}
	}

	urls := make([]string, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, file := range files {
		group.Go(func() error {
			objectName := "listings/" + uuid.New().String() + extensionFor(file.ContentType)
			url, err := m.storage.Upload(groupCtx, objectName, file.ContentType, file.Data, file.Size)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		m.Discard(ctx, urls)
		return nil, apperr.Wrap(apperr.ErrStorage, err)
	}

	return urls, nil
}

// Discard removes staged files after a failed swap. Best effort; a file
// that was never written is skipped.
func (m *AttachmentManager) Discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := m.storage.Remove(ctx, m.storage.ObjectName(url)); err != nil {
			m.log.Warn("failed to discard staged image", zap.String("url", url), zap.Error(err))
		}
	}
}

// RemoveAll deletes the files behind the given URLs. Best effort: the
// listing record no longer references them, so failures are logged and not
// retried.
func (m *AttachmentManager) RemoveAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := m.storage.Remove(ctx, m.storage.ObjectName(url)); err != nil {
			m.log.Warn("failed to remove image", zap.String("url", url), zap.Error(err))
		}
	}
}

// extensionFor derives a filename extension from the declared content type,
// e.g. "image/png" -> ".png".
func extensionFor(contentType string) string {
	if _, subtype, found := strings.Cut(contentType, "/"); found && subtype != "" {
		return "." + subtype
	}
	return ""
}
