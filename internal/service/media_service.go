package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
)

// MaxImageBytes 是单张上传图片的大小上限。
const MaxImageBytes = 5 << 20

var (
	ErrImageTooLarge    = errors.New("image exceeds 5 MB")
	ErrImageUnsupported = errors.New("only png, jpeg, gif or webp images are allowed")
	ErrImageEmpty       = errors.New("image is empty")
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// StoredImage describes a saved upload.
type StoredImage struct {
	URL    string `json:"url"`
	Path   string `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MediaStore 把上传的图片保存在本地目录，并通过静态路径暴露。
type MediaStore struct {
	dir     string
	urlPath string
	now     func() time.Time
}

// NewMediaStore creates a MediaStore rooted at dir and served under urlPath.
func NewMediaStore(dir, urlPath string) *MediaStore {
	if strings.TrimSpace(dir) == "" {
		dir = "web/static/uploads"
	}
	if strings.TrimSpace(urlPath) == "" {
		urlPath = "/static/uploads"
	}
	return &MediaStore{dir: dir, urlPath: strings.TrimRight(urlPath, "/"), now: time.Now}
}

// SaveImage sniffs r, checks the size and dimensions and writes it to
// <dir>/<folder>/<prefix>-<unix-nanos><ext>.
func (m *MediaStore) SaveImage(folder, prefix string, r io.Reader) (*StoredImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrImageEmpty
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return nil, ErrImageUnsupported
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrImageUnsupported
	}

	dir := filepath.Join(m.dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s-%d%s", prefix, m.now().UnixNano(), ext)
	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &StoredImage{
		URL:    path.Join(m.urlPath, folder, name),
		Path:   full,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Remove deletes a file previously returned by SaveImage. URLs outside the
// upload path are ignored.
func (m *MediaStore) Remove(url string) error {
	url = strings.TrimSpace(url)
	prefix := m.urlPath + "/"
	if url == "" || !strings.HasPrefix(url, prefix) {
		return nil
	}
	rel := path.Clean(strings.TrimPrefix(url, prefix))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(m.dir, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
