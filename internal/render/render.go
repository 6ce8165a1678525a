// Package render renders a set of layout files to C++ headers. Each file is
// rendered concurrently by its own cheader.Renderer.
package render

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/gostdlib/base/context"
	"github.com/pkg/errors"

	"github.com/bearlytools/structhdr/internal/layout"
	"github.com/bearlytools/structhdr/internal/render/cheader"
)

// HeaderExt is the extension of rendered files.
const HeaderExt = ".h"

// Rendered represents the rendered output for one layout file.
type Rendered struct {
	// Source is the layout file this was rendered from.
	Source string
	// Name is the file name the header should be written to.
	Name string
	// Native is the rendered header.
	Native []byte
}

// HeaderName returns the header file name for a layout source path.
// "config/engine.layout" becomes "engine.h".
func HeaderName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + HeaderExt
}

// Render renders files. The output is in the same order as files.
func Render(ctx context.Context, files []*layout.File, options ...cheader.Option) ([]Rendered, error) {
	out := make([]Rendered, len(files))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg := sync.WaitGroup{}
	errCh := make(chan error, 1)

	for i, f := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			b, err := cheader.RenderFile(f, options...)
			if err != nil {
				select {
				case errCh <- errors.Wrapf(err, "problem rendering %s", f.Source):
				default:
				}
				cancel()
				return
			}

			out[i] = Rendered{
				Source: f.Source,
				Name:   HeaderName(f.Source),
				Native: b,
			}
		}()
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
