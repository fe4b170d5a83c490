package handler

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/firmdirectory/internal/service"
)

func multipartRequest(t *testing.T, path, field, filename string, content []byte, session *http.Cookie) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if session != nil {
		req.AddCookie(session)
	}
	return req
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{B: 180, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadFirmLogo(t *testing.T) {
	env := newTestEnv(t)
	session := env.login(t)
	firm := env.seedFirm(t, service.FirmInput{Name: "Logo & Partners"})
	logoPath := fmt.Sprintf("/admin/api/firms/%d/logo", firm.ID)

	upload := func(content []byte) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, multipartRequest(t, logoPath, "logo", "logo.png", content, session))
		return rr
	}

	rr := upload(testPNG(t))
	expectStatus(t, rr, http.StatusOK)
	var first struct {
		Logo struct {
			URL    string `json:"url"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"logo"`
	}
	decodeJSON(t, rr, &first)
	if !strings.HasPrefix(first.Logo.URL, "/static/uploads/firms/") || first.Logo.Width != 4 || first.Logo.Height != 3 {
		t.Fatalf("unexpected logo response %+v", first.Logo)
	}
	firstFile := filepath.Join(env.upload, "firms", filepath.Base(first.Logo.URL))
	if _, err := os.Stat(firstFile); err != nil {
		t.Fatalf("expected uploaded file on disk: %v", err)
	}

	rr = upload(testPNG(t))
	expectStatus(t, rr, http.StatusOK)
	if _, err := os.Stat(firstFile); !os.IsNotExist(err) {
		t.Fatalf("expected previous logo to be removed, stat err %v", err)
	}

	saved, err := env.api.firms.Get(firm.ID)
	if err != nil {
		t.Fatalf("reload firm: %v", err)
	}
	if saved.LogoURL == "" || saved.LogoURL == first.Logo.URL {
		t.Fatalf("expected logo url to be replaced, got %q", saved.LogoURL)
	}

	expectStatus(t, upload([]byte("plain text pretending to be a logo")), http.StatusBadRequest)

	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, multipartRequest(t, "/admin/api/firms/9999/logo", "logo", "logo.png", testPNG(t), session))
	expectStatus(t, rr, http.StatusNotFound)

	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, multipartRequest(t, logoPath, "image", "logo.png", testPNG(t), session))
	expectStatus(t, rr, http.StatusBadRequest)
}
