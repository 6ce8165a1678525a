package cheader

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/bearlytools/structhdr/internal/layout"
)

// Generator is the name used in generated banners.
const Generator = "structhdr"

// Banner is the line that starts and ends a generated header.
func Banner(source string) string {
	if source == "" {
		source = "(unknown source)"
	}
	return fmt.Sprintf("// this section was generated automatically by %s based on %s. Do not edit manually!", Generator, source)
}

// RenderFile renders every structure in f, in order, into a complete header.
// The options are applied to a new Renderer used for the whole file.
func RenderFile(f *layout.File, options ...Option) ([]byte, error) {
	r := New(options...)

	r.buff.WriteString(Banner(f.Source) + eol)
	r.buff.WriteString("#pragma once" + eol)
	for _, inc := range r.includes {
		r.buff.WriteString(fmt.Sprintf("#include %q", inc) + eol)
	}
	r.buff.WriteString(eol)

	for _, s := range f.Structures {
		got := r.RenderStruct(s)
		if want := s.Size(); got != want {
			return nil, errors.Errorf("bug: struct %s rendered with size %d, but its fields add up to %d", s.Name, got, want)
		}
	}

	r.buff.WriteString("// end" + eol)
	r.buff.WriteString(Banner(f.Source) + eol)
	return r.Bytes(), nil
}
