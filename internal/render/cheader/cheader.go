// Package cheader renders layout structures as C++ struct declarations, each
// followed by a static_assert on its size.
//
// Rendering a structure looks like:
//
//	// start of Example
//	struct Example {
//		/**
//		 * Engine speed
//		RPM
//		 * offset 0
//		 */
//		uint16_t rpm;
//	};
//	static_assert(sizeof(Example) == 2);
package cheader

import (
	"strconv"
	"strings"

	"github.com/bearlytools/structhdr/internal/layout"
)

const (
	eol = "\n"

	boolType = "bool"
)

// Renderer renders structures into a single buffer. A Renderer is not safe for
// concurrent use. Render structures concurrently with one Renderer each.
type Renderer struct {
	buff strings.Builder

	zeroInit  bool
	primitive func(typeName string) bool
	includes  []string
}

// Option is an optional argument to New and RenderFile.
type Option func(r *Renderer)

// WithZeroInit adds an explicit zero initializer to non-array fields of a
// primitive type.
func WithZeroInit(b bool) Option {
	return func(r *Renderer) {
		r.zeroInit = b
	}
}

// WithPrimitives replaces layout.IsPrimitive as the test for which types get a
// zero initializer.
func WithPrimitives(isPrimitive func(typeName string) bool) Option {
	return func(r *Renderer) {
		r.primitive = isPrimitive
	}
}

// WithIncludes adds #include lines for headers to the output of RenderFile.
func WithIncludes(headers ...string) Option {
	return func(r *Renderer) {
		r.includes = append(r.includes, headers...)
	}
}

// New creates a new Renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{primitive: layout.IsPrimitive}
	for _, o := range options {
		o(r)
	}
	return r
}

// RenderStruct appends the declaration of s and its size assertion to the
// output. It returns the size used in the assertion.
func (r *Renderer) RenderStruct(s layout.Structure) int {
	if s.Comment != "" {
		r.buff.WriteString("/**" + eol + PackComment(s.Comment, "") + eol + "*/" + eol)
	}

	r.buff.WriteString("// start of " + s.Name + eol)
	r.buff.WriteString("struct " + s.Name + " {" + eol)

	c := NewCursor(s.Fields)
	for i := range s.Fields {
		pos := c.Start(i)
		r.writeField(c.Field(), pos)
		c.Step()
	}

	size := c.Offset()
	r.buff.WriteString("};" + eol)
	r.buff.WriteString("static_assert(sizeof(" + s.Name + ") == " + strconv.Itoa(size) + ");" + eol)
	r.buff.WriteString(eol)
	return size
}

func (r *Renderer) writeField(f layout.Field, pos Position) {
	if f.Bit {
		r.buff.WriteString("\t/**" + eol)
		r.buff.WriteString(PackComment(f.Comment, "\t"))
		r.buff.WriteString("\toffset " + strconv.Itoa(pos.Offset) + " bit " + strconv.Itoa(pos.Bit) + " */" + eol)
		r.buff.WriteString("\t" + boolType + " " + f.Name + " : 1 {};" + eol)
		return
	}

	r.writeDoc(f, pos.Offset)

	typeName := f.Type
	if f.Autoscale != "" {
		typeName = "scaled_channel<" + f.Type + ", " + f.Autoscale + ">"
	}

	if f.Array {
		r.buff.WriteString("\t" + typeName + " " + f.Name + "[" + f.ArraySize + "];" + eol)
		return
	}

	r.buff.WriteString("\t" + typeName + " " + f.Name)
	if r.zeroInit && r.primitive(f.Type) {
		// The cast keeps enum typed fields compiling.
		r.buff.WriteString(" = (" + f.Type + ")0")
	}
	r.buff.WriteString(";" + eol)
}

func (r *Renderer) writeDoc(f layout.Field, offset int) {
	r.buff.WriteString("\t/**" + eol)
	r.buff.WriteString(PackComment(f.Comment, "\t"))
	if f.Units != "" {
		r.buff.WriteString("\t" + f.Units + eol)
	}
	r.buff.WriteString("\t * offset " + strconv.Itoa(offset) + eol)
	r.buff.WriteString("\t */" + eol)
}

// PackComment converts a raw comment into doc comment lines. Each logical line,
// separated in comment by the two characters `\n`, becomes prefix + " * " + line.
// Trailing empty lines are dropped. An empty or whitespace only comment packs
// to "".
func PackComment(comment, prefix string) string {
	if strings.TrimSpace(comment) == "" {
		return ""
	}

	lines := strings.Split(comment, `\n`)
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	b := strings.Builder{}
	for _, line := range lines {
		b.WriteString(prefix + " * " + line + eol)
	}
	return b.String()
}

// Content returns everything rendered so far.
func (r *Renderer) Content() string {
	return r.buff.String()
}

// Bytes returns everything rendered so far as bytes.
func (r *Renderer) Bytes() []byte {
	return []byte(r.buff.String())
}
