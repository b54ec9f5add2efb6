package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const maxExtLen = 10

var ErrInvalidReference = errors.New("invalid media reference")

// MediaStore keeps uploads as flat files named <uuid><ext> at the root of an
// afero filesystem. The file name is the reference handed back to callers.
type MediaStore struct {
	fs afero.Fs
}

// NewMediaStore stores uploads under dir on disk, creating it when missing.
func NewMediaStore(dir string) (*MediaStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return NewMediaStoreFs(afero.NewBasePathFs(osFs, dir)), nil
}

// NewMediaStoreFs stores uploads at the root of fsys.
func NewMediaStoreFs(fsys afero.Fs) *MediaStore {
	return &MediaStore{fs: fsys}
}

// FS exposes the stored files read-only, for serving under /uploads.
func (s *MediaStore) FS() fs.FS {
	return afero.NewIOFS(afero.NewReadOnlyFs(s.fs))
}

func (s *MediaStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString() + safeExt(filename)

	f, err := s.fs.OpenFile(ref, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(ref)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(ref)
		return "", fmt.Errorf("close media file: %w", err)
	}
	return ref, nil
}

func (s *MediaStore) Remove(_ context.Context, ref string) error {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return ErrInvalidReference
	}
	if err := s.fs.Remove(ref); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// safeExt keeps a short alphanumeric extension from the client file name and
// drops anything else.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
