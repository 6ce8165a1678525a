// Package layout holds the in-memory description of the structures a header is
// rendered from. The types here are produced by an upstream parser with every
// type and array size already resolved; rendering only reads them.
package layout

import (
	"github.com/pkg/errors"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid layout")

// Field is a single member of a Structure.
type Field struct {
	// Name is the C identifier of the field.
	Name string `json:"name"`
	// Type is the base type name. This may be a primitive scalar (uint16_t) or
	// a symbolic name such as an enum or another structure.
	Type string `json:"type,omitempty"`
	// Bit indicates this is a single bit packed together with its neighbours.
	Bit bool `json:"bit,omitzero"`
	// Array indicates the field is an array of ArraySize elements.
	Array bool `json:"array,omitzero"`
	// ArraySize is the symbolic constant used as the array length.
	ArraySize string `json:"arraySize,omitempty"`
	// Autoscale holds the scaled_channel arguments of a fixed-point field, "" if not scaled.
	Autoscale string `json:"autoscale,omitempty"`
	// Comment is the raw comment. It may contain the two character escape
	// sequence `\n` to separate lines.
	Comment string `json:"comment,omitempty"`
	// Units is the unit of measure, "" if there is none.
	Units string `json:"units,omitempty"`
	// Size is the number of bytes the field occupies. For a bit field this is
	// the size of the storage unit the run of bits closes into.
	Size int `json:"size"`
}

// StorageSize is the number of bytes f adds to the running offset of its
// structure. next is the field that follows f, nil if f is the last field.
// Bits only consume space once their run ends.
func (f Field) StorageSize(next *Field) int {
	if f.Bit && next != nil && next.Bit {
		return 0
	}
	return f.Size
}

func (f Field) validate() error {
	switch {
	case f.Name == "":
		return errors.Wrap(ErrInvalid, "field has no name")
	case f.Size <= 0:
		return errors.Wrapf(ErrInvalid, "field %q: size must be > 0, was %d", f.Name, f.Size)
	}

	if f.Bit {
		if f.Array {
			return errors.Wrapf(ErrInvalid, "bit field %q cannot be an array", f.Name)
		}
		if f.Autoscale != "" {
			return errors.Wrapf(ErrInvalid, "bit field %q cannot be scaled", f.Name)
		}
		return nil
	}

	if f.Type == "" {
		return errors.Wrapf(ErrInvalid, "field %q has no type", f.Name)
	}
	if f.Array && f.ArraySize == "" {
		return errors.Wrapf(ErrInvalid, "array field %q has no size symbol", f.Name)
	}
	if !f.Array && f.ArraySize != "" {
		return errors.Wrapf(ErrInvalid, "field %q has a size symbol but is not an array", f.Name)
	}
	return nil
}

// Structure is a named, ordered set of fields.
type Structure struct {
	Name string `json:"name"`
	// Comment is the optional comment rendered above the structure.
	Comment string  `json:"comment,omitempty"`
	Fields  []Field `json:"fields"`
}

// Size is the total size in bytes of the structure, computed from the fields
// alone. A renderer's final offset must always agree with this.
func (s Structure) Size() int {
	total := 0
	for i, f := range s.Fields {
		total += f.StorageSize(s.next(i))
	}
	return total
}

func (s Structure) next(i int) *Field {
	if i+1 < len(s.Fields) {
		return &s.Fields[i+1]
	}
	return nil
}

// Validate checks the structure is something a renderer can emit safely.
func (s Structure) Validate() error {
	if s.Name == "" {
		return errors.Wrap(ErrInvalid, "structure has no name")
	}

	seen := make(map[string]bool, len(s.Fields))
	run := 0
	for i, f := range s.Fields {
		if err := f.validate(); err != nil {
			return errors.Wrapf(err, "struct %s", s.Name)
		}
		if seen[f.Name] {
			return errors.Wrapf(ErrInvalid, "struct %s: duplicate field %q", s.Name, f.Name)
		}
		seen[f.Name] = true

		if !f.Bit {
			run = 0
			continue
		}
		run++
		if next := s.next(i); next == nil || !next.Bit {
			if run > 8*f.Size {
				return errors.Wrapf(ErrInvalid, "struct %s: %d bits in a row ending at %q do not fit in %d bytes", s.Name, run, f.Name, f.Size)
			}
			run = 0
		}
	}
	return nil
}

// File is a set of structures that are rendered together.
type File struct {
	// Source names where the structures came from, used in generated banners.
	Source     string      `json:"source,omitempty"`
	Structures []Structure `json:"structures"`
}

// Validate validates every structure and checks structure names are unique.
func (f *File) Validate() error {
	seen := map[string]bool{}
	for _, s := range f.Structures {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return errors.Wrapf(ErrInvalid, "duplicate struct %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
