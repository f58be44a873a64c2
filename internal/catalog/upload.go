package catalog

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	uploadField     = "image"
	uploadURLPrefix = "/uploads/"
)

var errBadFilename = errors.New("bad upload filename")

// Uploader stores uploaded files in Dir as "<unix millis>-<original name>".
// Names are not checked for collisions.
type Uploader struct {
	Dir string
	Now func() time.Time
}

func NewUploader(dir string) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Uploader{Dir: dir, Now: time.Now}, nil
}

// Save writes src under a generated name and returns that name.
func (u *Uploader) Save(original string, src io.Reader) (string, error) {
	base := filepath.Base(original)
	if base == "." || base == string(filepath.Separator) {
		return "", errBadFilename
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	name := fmt.Sprintf("%d-%s", now().UnixMilli(), base)
	path := filepath.Join(u.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

// Files serves stored uploads under /uploads/. Directory listings are not
// exposed.
func (u *Uploader) Files() http.Handler {
	fs := http.StripPrefix(strings.TrimSuffix(uploadURLPrefix, "/"), http.FileServer(http.Dir(u.Dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
