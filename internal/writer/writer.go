// Package writer writes rendered headers to a file system. Headers whose
// content has not changed are left untouched so build systems do not see a new
// modification time.
package writer

import (
	"bytes"
	iofs "io/fs"
	"path/filepath"

	"github.com/gopherfs/fs"
	osfs "github.com/gopherfs/fs/io/os"
	"github.com/gostdlib/base/context"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bearlytools/structhdr/internal/render"
)

type readFS interface {
	iofs.ReadFileFS
	iofs.StatFS
}

// FS is a file system headers can be written to and read back from.
type FS interface {
	fs.Writer
	readFS
}

// Writer writes render.Rendered headers into a directory.
type Writer struct {
	dir             string
	fs              FS
	log             *zap.Logger
	forceRegenerate bool
}

type writerOption func(w *Writer)

// WithFS uses fsys to write headers to and to compare existing headers against.
func WithFS(fsys FS) writerOption {
	return func(w *Writer) {
		w.fs = fsys
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *zap.Logger) writerOption {
	return func(w *Writer) {
		w.log = l
	}
}

// WithForceRegenerate writes every header, even if it has not changed.
func WithForceRegenerate(force bool) writerOption {
	return func(w *Writer) {
		w.forceRegenerate = force
	}
}

// New creates a new Writer that writes to directory dir.
func New(dir string, options ...writerOption) (*Writer, error) {
	w := &Writer{dir: dir, log: zap.NewNop()}
	for _, o := range options {
		o(w)
	}
	if w.fs == nil {
		fsys, err := osfs.New()
		if err != nil {
			return nil, errors.Wrap(err, "could not create an osfs")
		}
		w.fs = fsys
	}
	return w, nil
}

// Path is the path a rendered header is written to.
func (w *Writer) Path(r render.Rendered) string {
	return filepath.Join(w.dir, r.Name)
}

// Write writes all rendered headers. It returns the paths that were written.
func (w *Writer) Write(ctx context.Context, rendered []render.Rendered) ([]string, error) {
	var written []string
	for _, r := range rendered {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		p := w.Path(r)
		if !w.forceRegenerate {
			isStale, err := stale(w.fs, p, r.Native)
			if err != nil {
				return written, err
			}
			if !isStale {
				w.log.Debug("header unchanged", zap.String("path", p), zap.String("source", r.Source))
				continue
			}
		}

		w.log.Info("writing header", zap.String("path", p), zap.String("source", r.Source), zap.Int("bytes", len(r.Native)))
		if err := w.fs.WriteFile(p, r.Native, 0644); err != nil {
			return written, errors.Wrapf(err, "problem writing %s to file(%s)", r.Source, p)
		}
		written = append(written, p)
	}
	return written, nil
}

// Stale reports if the file at path on the OS file system does not hold exactly
// content. A missing file is stale.
func Stale(path string, content []byte) (bool, error) {
	fsys, err := osfs.New()
	if err != nil {
		return false, errors.Wrap(err, "could not create an osfs")
	}
	return stale(fsys, path, content)
}

func stale(fsys readFS, path string, content []byte) (bool, error) {
	same, err := sameFile(fsys, path, content)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return true, nil
		}
		return false, errors.Wrapf(err, "could not compare against %s", path)
	}
	return !same, nil
}

// sameFile determines if the file at path in fsys holds content.
func sameFile(fsys readFS, path string, content []byte) (bool, error) {
	fi, err := fsys.Stat(path)
	if err != nil {
		return false, err
	}
	if fi.Size() != int64(len(content)) {
		return false, nil
	}
	b, err := fsys.ReadFile(path)
	if err != nil {
		return false, err
	}
	return bytes.Equal(b, content), nil
}
