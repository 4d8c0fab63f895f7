package cli

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func noiseImage(w, h int) *image.Gray {
	r := rand.New(rand.NewSource(1))
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(r.Intn(256))
	}
	return img
}

func TestPreviewSizeFor(t *testing.T) {
	cases := []struct {
		w, h int
		want PreviewSize
	}{
		{256, 256, PreviewSize{32, 16}},
		{16, 16, PreviewSize{minCols, minRows}},
		{4096, 1024, PreviewSize{80, 10}},
		{1024, 4096, PreviewSize{20, 40}},
	}
	for _, c := range cases {
		if got := previewSizeFor(c.w, c.h); got != c.want {
			t.Fatalf("previewSizeFor(%d, %d) = %+v, want %+v", c.w, c.h, got, c.want)
		}
	}
}

func TestPreviewInline(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "inline")
	var buf bytes.Buffer
	if err := Preview(&buf, noiseImage(64, 32)); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\x1b]1337;File=name=preview.png;inline=1;") {
		t.Fatalf("missing inline header: %q", out[:min(len(out), 60)])
	}
	payload := out[strings.Index(out, ":")+1 : strings.Index(out, "\a")]
	dec, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if !bytes.HasPrefix(dec, pngMagic) {
		t.Fatalf("payload is not a PNG: %x", dec[:min(len(dec), 8)])
	}
}

func TestPreviewKittyChunks(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "kitty")
	var buf bytes.Buffer
	if err := Preview(&buf, noiseImage(256, 256)); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	chunks := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\x1b\\")
	chunks = chunks[:len(chunks)-1]
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], "\x1b_Ga=T,f=100,t=d,q=2,c=32,r=16,m=1;") {
		t.Fatalf("bad first chunk header: %q", chunks[0][:40])
	}
	if !strings.HasPrefix(chunks[len(chunks)-1], "\x1b_Gm=0;") {
		t.Fatalf("last chunk does not close the transfer")
	}
	var payload strings.Builder
	for _, c := range chunks {
		body := c[strings.Index(c, ";")+1:]
		if len(body) > kittyChunk {
			t.Fatalf("chunk of %d bytes", len(body))
		}
		payload.WriteString(body)
	}
	dec, err := base64.StdEncoding.DecodeString(payload.String())
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if !bytes.HasPrefix(dec, pngMagic) {
		t.Fatal("payload is not a PNG")
	}
}

func TestPreviewNone(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "none")
	if err := Preview(&bytes.Buffer{}, noiseImage(8, 8)); !errors.Is(err, ErrNoPreview) {
		t.Fatalf("err = %v, want %v", err, ErrNoPreview)
	}
}

func TestImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.JPG", "notes.txt", "sub/c.webp", ".cache/d.png"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := imageFiles(dir)
	if err != nil {
		t.Fatalf("imageFiles: %v", err)
	}
	want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.JPG"), filepath.Join(dir, "sub", "c.webp")}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Fatalf("files differ (-want +got):\n%s", diff)
	}
}
