package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestMediaStoreSaveImage(t *testing.T) {
	dir := t.TempDir()
	store := NewMediaStore(dir, "/static/uploads/")
	store.now = func() time.Time { return time.Unix(0, 42) }

	saved, err := store.SaveImage("firms", "7", bytes.NewReader(pngBytes(t, 12, 8)))
	if err != nil {
		t.Fatalf("save image: %v", err)
	}
	if saved.URL != "/static/uploads/firms/7-42.png" {
		t.Fatalf("unexpected url %q", saved.URL)
	}
	if saved.Width != 12 || saved.Height != 8 {
		t.Fatalf("unexpected dimensions %dx%d", saved.Width, saved.Height)
	}
	if _, err := os.Stat(filepath.Join(dir, "firms", "7-42.png")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	if err := store.Remove(saved.URL); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(saved.Path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, got %v", err)
	}
	if err := store.Remove(saved.URL); err != nil {
		t.Fatalf("removing a missing file should be a no-op: %v", err)
	}
	if err := store.Remove("https://cdn.example/logo.png"); err != nil {
		t.Fatalf("foreign urls should be ignored: %v", err)
	}
	if err := store.Remove("/static/uploads/../../etc/passwd"); err != nil {
		t.Fatalf("escaping urls should be ignored: %v", err)
	}
}

func TestMediaStoreRejectsInvalidUploads(t *testing.T) {
	store := NewMediaStore(t.TempDir(), "")

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrImageEmpty},
		{"text", []byte("hello, not an image"), ErrImageUnsupported},
		{"truncated png", pngBytes(t, 4, 4)[:20], ErrImageUnsupported},
		{"too large", append(pngBytes(t, 1, 1), bytes.Repeat([]byte{0}, MaxImageBytes)...), ErrImageTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.SaveImage("firms", "1", bytes.NewReader(tc.data))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if !strings.HasPrefix(store.urlPath, "/static/uploads") {
		t.Fatalf("expected default url path, got %q", store.urlPath)
	}
}
