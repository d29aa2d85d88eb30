package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DiskStore menyimpan file di filesystem lokal dan melayani lewat
// /uploads/ di HTTP server.
type DiskStore struct {
	Root    string
	BaseURL string
}

func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *DiskStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	clean := filepath.Clean("/" + key)
	dst := filepath.Join(s.Root, clean)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "create upload dir")
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(dst)
		return "", errors.Wrap(err, "write upload file")
	}
	return s.BaseURL + "/uploads" + filepath.ToSlash(clean), nil
}
