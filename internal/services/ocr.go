package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Recognizer turns a scanned sheet image into raw text. OCR itself is
// an external collaborator; the core never inspects image bytes beyond
// normalization.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TesseractCLI shells out to a local tesseract binary. Lang defaults to
// Portuguese, the language the separation sheets are printed in.
type TesseractCLI struct {
	Cmd  string
	Lang string
}

func (t *TesseractCLI) Recognize(ctx context.Context, image []byte) (string, error) {
	cmd := t.Cmd
	if cmd == "" {
		cmd = "tesseract"
	}
	lang := t.Lang
	if lang == "" {
		lang = "por"
	}

	dir, err := os.MkdirTemp("", "picklist-ocr-")
	if err != nil {
		return "", fmt.Errorf("preparing OCR workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "scan.png")
	if err := os.WriteFile(src, image, 0o600); err != nil {
		return "", fmt.Errorf("writing scan: %w", err)
	}

	// "stdout" makes tesseract print the recognized text instead of
	// writing an output file.
	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, cmd, src, "stdout", "-l", lang)
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("recognizing scan: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
