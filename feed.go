package gtfsjson

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenFeed returns a file system holding the feed tables at path, which is
// either a directory or a .zip archive. The closer must be closed once the
// feed has been parsed.
func OpenFeed(path string) (fs.FS, io.Closer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open feed %s: %w", path, err)
	}
	if info.IsDir() {
		return os.DirFS(path), nopCloser{}, nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return nil, nil, fmt.Errorf("feed %s is neither a directory nor a .zip archive", path)
	}
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open feed archive %s: %w", path, err)
	}
	return reader, reader, nil
}

// LoadFeed opens and parses the feed at path.
func LoadFeed(path string) (*Static, error) {
	fsys, closer, err := OpenFeed(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return ParseStatic(fsys)
}
