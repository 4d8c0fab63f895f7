package cli

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
)

// Terminal preview for the kitty graphics protocol and the iTerm2 inline
// image sequence (also understood by WezTerm, VSCode and others), with chafa
// as a character-cell fallback. PREVIEW_BACKEND=kitty|inline|chafa|none
// overrides detection.

// ErrNoPreview is returned when no preview backend is usable.
var ErrNoPreview = errors.New("terminal does not support image preview")

type previewBackend int

const (
	backendNone previewBackend = iota
	backendKitty
	backendInline
	backendChafa
)

func (b previewBackend) String() string {
	return [...]string{"none", "kitty", "inline", "chafa"}[b]
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	// ghostty speaks the kitty protocol
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby", "Bobcat":
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "wezterm") || strings.Contains(term, "tabby")
}

func hasChafa() bool {
	_, err := exec.LookPath("chafa")
	return err == nil
}

func detectBackend() previewBackend {
	switch v := strings.ToLower(os.Getenv("PREVIEW_BACKEND")); v {
	case "":
	case "kitty":
		return backendKitty
	case "inline", "iterm", "wezterm":
		return backendInline
	case "chafa":
		return backendChafa
	case "none":
		return backendNone
	default:
		debugf("unknown PREVIEW_BACKEND value: %s", v)
	}
	switch {
	case isKitty():
		return backendKitty
	case isInlineImageCapable():
		return backendInline
	case hasChafa():
		return backendChafa
	}
	return backendNone
}

// PreviewSize is the area, in character cells, that a preview occupies.
type PreviewSize struct {
	Cols int
	Rows int
}

const (
	cellW, cellH     = 8, 16
	minCols, minRows = 6, 3
	maxCols, maxRows = 80, 40
	kittyChunk       = 4096
)

// previewSizeFor fits a width x height image into the preview area without
// upscaling and keeps its aspect ratio.
func previewSizeFor(width, height int) PreviewSize {
	scale := min(1, float64(maxCols*cellW)/float64(width), float64(maxRows*cellH)/float64(height))
	cols := int(float64(width)*scale/cellW + 0.5)
	rows := int(float64(height)*scale/cellH + 0.5)
	return PreviewSize{
		Cols: max(minCols, min(maxCols, cols)),
		Rows: max(minRows, min(maxRows, rows)),
	}
}

// Preview draws img on the terminal behind w.
func Preview(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	backend := detectBackend()
	debugf("preview backend: %s", backend)
	if backend == backendNone {
		return ErrNoPreview
	}
	b := img.Bounds()
	size := previewSizeFor(b.Dx(), b.Dy())
	thumb := imaging.Fit(img, size.Cols*cellW, size.Rows*cellH, imaging.Box)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	switch backend {
	case backendKitty:
		return writeKitty(w, buf.Bytes(), size)
	case backendInline:
		return writeInline(w, buf.Bytes(), size)
	}
	return runChafa(w, buf.Bytes(), size)
}

// writeKitty sends a PNG with the kitty graphics protocol. The base64
// payload is split into chunks of at most 4096 bytes; only the first chunk
// carries the control keys.
func writeKitty(w io.Writer, png []byte, size PreviewSize) error {
	enc := base64.StdEncoding.EncodeToString(png)
	for pos := 0; pos < len(enc); pos += kittyChunk {
		end := min(pos+kittyChunk, len(enc))
		more := 0
		if end < len(enc) {
			more = 1
		}
		var err error
		if pos == 0 {
			// a=T transmit and display, f=100 PNG, q=2 silence replies
			_, err = fmt.Fprintf(w, "\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%d;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			_, err = fmt.Fprintf(w, "\x1b_Gm=%d;%s\x1b\\", more, enc[pos:end])
		}
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeInline(w io.Writer, png []byte, size PreviewSize) error {
	_, err := fmt.Fprintf(w, "\x1b]1337;File=name=preview.png;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n",
		len(png), size.Cols*cellW, size.Rows*cellH, base64.StdEncoding.EncodeToString(png))
	return err
}

func runChafa(w io.Writer, png []byte, size PreviewSize) error {
	cmd := exec.Command("chafa", "--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	cmd.Stdin = bytes.NewReader(png)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chafa failed: %w", err)
	}
	return nil
}
