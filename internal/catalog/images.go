package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const thumbWidth = 320

// SaveUpload writes an uploaded image under dir and renders a thumbnail next
// to it. Returns the stored file name and the thumbnail name.
func SaveUpload(dir string, src io.Reader, originalName string) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", "", fmt.Errorf("unsupported image type %q", ext)
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	full := filepath.Join(dir, name)

	f, err := os.Create(full)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(full)
		return "", "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", "", err
	}

	img, err := imaging.Open(full)
	if err != nil {
		os.Remove(full)
		return "", "", fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	thumbName := strings.TrimSuffix(name, ext) + "_thumb" + ext
	if err := imaging.Save(thumb, filepath.Join(dir, thumbName)); err != nil {
		os.Remove(full)
		return "", "", err
	}
	return name, thumbName, nil
}
