package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func pngImage(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return &buf
}

func TestAvatarService_UploadResizes(t *testing.T) {
	store := newFakeStore()
	svc := NewAvatarService(store, 64, testLogger())

	img, err := svc.Upload(context.Background(), pngImage(t, 256, 128))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(img.Name, "users/") || !strings.HasSuffix(img.Name, ".jpg") {
		t.Errorf("Name = %q", img.Name)
	}
	if img.URL != store.PublicURL(img.Name) {
		t.Errorf("URL = %q", img.URL)
	}

	data, ok := store.objects[img.Name]
	if !ok {
		t.Fatal("объект не записан")
	}
	if store.types[img.Name] != "image/jpeg" {
		t.Errorf("ContentType = %q", store.types[img.Name])
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 32 {
		t.Errorf("размер = %dx%d, ожидается 64x32", cfg.Width, cfg.Height)
	}
}

func TestAvatarService_InvalidImage(t *testing.T) {
	svc := NewAvatarService(newFakeStore(), 64, testLogger())
	_, err := svc.Upload(context.Background(), strings.NewReader("not an image"))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("ожидается ErrValidation, получено %v", err)
	}
}

func TestAvatarService_StoreDown(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("connection refused")
	svc := NewAvatarService(store, 64, testLogger())

	_, err := svc.Upload(context.Background(), pngImage(t, 10, 10))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("ожидается ErrStorageUnavailable, получено %v", err)
	}
}
