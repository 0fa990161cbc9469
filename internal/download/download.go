package download

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/forPelevin/wandlung/internal/types"
)

const DefaultFilename = "video.mp4"

type Saved struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

// Filename extracts the name after "filename=" in a Content-Disposition
// value. Exactly one pair of surrounding double quotes is stripped.
func Filename(contentDisposition string) string {
	i := strings.Index(contentDisposition, "filename=")
	if i < 0 {
		return DefaultFilename
	}
	v := contentDisposition[i+len("filename="):]
	if j := strings.IndexByte(v, ';'); j >= 0 {
		v = v[:j]
	}
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	// Never let the server pick a directory.
	v = filepath.Base(strings.ReplaceAll(v, "\\", "/"))
	if v == "" || v == "." || v == "/" || v == ".." {
		return DefaultFilename
	}
	return v
}

// Save streams att.Body into dir. The payload goes to a temporary file that
// is renamed into place; the temporary file is removed whatever happens.
func Save(dir string, att types.Attachment) (Saved, error) {
	if att.Body == nil {
		return Saved{}, errors.New("save attachment: empty body")
	}
	defer att.Body.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("save attachment: %w", err)
	}

	name := DefaultFilename
	if att.Header != nil {
		name = Filename(att.Header.Get("Content-Disposition"))
	}

	tmp, err := os.CreateTemp(dir, ".wandlung-*.part")
	if err != nil {
		return Saved{}, fmt.Errorf("save attachment: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, copyErr := io.Copy(tmp, att.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		return Saved{}, fmt.Errorf("save attachment: read body: %w", copyErr)
	}
	if closeErr != nil {
		return Saved{}, fmt.Errorf("save attachment: %w", closeErr)
	}

	ctype := "application/octet-stream"
	if mt, err := mimetype.DetectFile(tmpPath); err == nil {
		ctype = mt.String()
	}

	final, err := freePath(dir, name)
	if err != nil {
		return Saved{}, fmt.Errorf("save attachment: %w", err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return Saved{}, fmt.Errorf("save attachment: %w", err)
	}
	return Saved{Path: final, Name: filepath.Base(final), Size: size, ContentType: ctype}, nil
}

// freePath returns dir/name, or dir/name (n).ext when that is taken.
func freePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	p := filepath.Join(dir, name)
	for n := 1; n < 1000; n++ {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return p, nil
		} else if err != nil {
			return "", err
		}
		p = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
	}
	return "", fmt.Errorf("no free file name for %q in %s", name, dir)
}
