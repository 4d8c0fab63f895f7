package cli

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// pickerInput is the input argument that asks for an interactive fzf picker.
const pickerInput = "/"

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// imageFiles lists readable image files below dir, skipping hidden
// directories.
func imageFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if imageExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// fzfPreviewCommand picks the previewer fzf runs for the highlighted file.
func fzfPreviewCommand() string {
	const chafa = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	switch detectBackend() {
	case backendKitty:
		// clear the previous image before drawing the next one
		return `printf "\x1b_Ga=d\x1b\\"; kitty +kitten icat --silent {} 2>/dev/null || ` + chafa
	case backendInline:
		return "imgcat {} 2>/dev/null || " + chafa
	}
	return chafa
}

// SelectImageWithFzf lets the user choose an image below startDir with fzf
// and returns its path.
func SelectImageWithFzf(startDir string) (string, error) {
	if _, err := exec.LookPath("fzf"); err != nil {
		return "", fmt.Errorf("fzf not found in PATH: %w", err)
	}
	files, err := imageFiles(startDir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no images found under %s", startDir)
	}

	cmd := exec.Command("fzf", "--height", "100%", "--border", "--prompt=Image> ",
		"--preview="+fzfPreviewCommand(), "--preview-window=right:60%")
	cmd.Stdin = strings.NewReader(strings.Join(files, "\n"))
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out
	err = cmd.Run()
	if detectBackend() == backendKitty {
		fmt.Fprint(os.Stdout, "\x1b_Ga=d\x1b\\")
	}
	if err != nil {
		return "", fmt.Errorf("error running fzf: %w", err)
	}
	sel := strings.TrimSpace(out.String())
	if sel == "" {
		return "", fmt.Errorf("no file selected")
	}
	return sel, nil
}
