package render

import (
	"bytes"
	"testing"

	"github.com/gostdlib/base/context"

	"github.com/bearlytools/structhdr/internal/layout"
	"github.com/bearlytools/structhdr/internal/render/cheader"
)

func TestHeaderName(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"engine.layout", "engine.h"},
		{"config/engine_configuration.json", "engine_configuration.h"},
		{"noext", "noext.h"},
	}

	for _, test := range tests {
		if got := HeaderName(test.source); got != test.want {
			t.Errorf("TestHeaderName(%s): got %q, want %q", test.source, got, test.want)
		}
	}
}

func TestRender(t *testing.T) {
	files := []*layout.File{
		{
			Source:     "a.layout",
			Structures: []layout.Structure{{Name: "A", Fields: []layout.Field{{Name: "x", Type: "uint8_t", Size: 1}}}},
		},
		{
			Source:     "b.layout",
			Structures: []layout.Structure{{Name: "B", Fields: []layout.Field{{Name: "y", Type: "uint32_t", Size: 4}}}},
		},
	}

	got, err := Render(context.Background(), files, cheader.WithZeroInit(true))
	if err != nil {
		t.Fatalf("TestRender: got err == %s, want err == nil", err)
	}
	if len(got) != 2 {
		t.Fatalf("TestRender: got %d rendered, want 2", len(got))
	}

	for i, f := range files {
		want, err := cheader.RenderFile(f, cheader.WithZeroInit(true))
		if err != nil {
			t.Fatalf("TestRender: RenderFile(%s): %s", f.Source, err)
		}
		if got[i].Source != f.Source {
			t.Errorf("TestRender(%d): got source %q, want %q", i, got[i].Source, f.Source)
		}
		if got[i].Name != HeaderName(f.Source) {
			t.Errorf("TestRender(%d): got name %q, want %q", i, got[i].Name, HeaderName(f.Source))
		}
		if !bytes.Equal(got[i].Native, want) {
			t.Errorf("TestRender(%d): got:\n%s\nwant:\n%s", i, got[i].Native, want)
		}
	}

	if !bytes.Contains(got[0].Native, []byte("uint8_t x = (uint8_t)0;")) {
		t.Errorf("TestRender: options were not applied:\n%s", got[0].Native)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []*layout.File{{Source: "a.layout", Structures: []layout.Structure{{Name: "A"}}}}
	if _, err := Render(ctx, files); err == nil {
		t.Errorf("TestRenderCancelled: got err == nil, want err != nil")
	}
}
