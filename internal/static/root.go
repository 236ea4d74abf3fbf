// Package static resolves request paths against a base directory and reads
// the files below it.
package static

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// DefaultMaxFileSize bounds the single read of a served file.
const DefaultMaxFileSize = 10 << 20

var (
	ErrOutsideRoot = errors.New("path resolves outside root")
	ErrTooLarge    = errors.New("file exceeds size limit")
	ErrNotText     = errors.New("file is not valid UTF-8 text")
)

// Root is a read-only directory tree. All paths it hands out are
// canonical and inside the tree.
type Root struct {
	dir         string
	maxFileSize int64
}

// NewRoot canonicalizes dir, which must exist and be a directory.
func NewRoot(dir string, maxFileSize int64) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("error resolving root %q: %w", dir, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("error resolving root %q: %w", dir, err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("error resolving root %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", dir)
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	return &Root{dir: canonical, maxFileSize: maxFileSize}, nil
}

// Dir returns the canonical root directory.
func (r *Root) Dir() string {
	return r.dir
}

// Resolve joins target onto the root by plain concatenation, resolves
// symlinks and dot segments, and checks the result is the root or below
// it. Targets that cannot be resolved are reported with the underlying
// error; targets escaping the root with ErrOutsideRoot.
func (r *Root) Resolve(target string) (string, error) {
	resolved, err := filepath.EvalSymlinks(r.dir + string(filepath.Separator) + filepath.FromSlash(target))
	if err != nil {
		return "", err
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	if !r.contains(resolved) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, target)
	}

	return resolved, nil
}

func (r *Root) contains(p string) bool {
	if p == r.dir {
		return true
	}
	return strings.HasPrefix(p, strings.TrimSuffix(r.dir, string(filepath.Separator))+string(filepath.Separator))
}

func (r *Root) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// ReadText reads name in one bounded read and checks it is valid UTF-8.
func (r *Root) ReadText(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, r.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", name, err)
	}
	if int64(len(data)) > r.maxFileSize {
		return nil, fmt.Errorf("%w: %q", ErrTooLarge, name)
	}

	if _, _, err := transform.Bytes(encoding.UTF8Validator, data); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotText, name)
	}

	return data, nil
}
