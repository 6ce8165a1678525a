package layout

import (
	"testing"

	"github.com/pkg/errors"
)

func TestStorageSize(t *testing.T) {
	bit := Field{Name: "b", Bit: true, Size: 1}
	scalar := Field{Name: "s", Type: "uint16_t", Size: 2}

	tests := []struct {
		desc  string
		field Field
		next  *Field
		want  int
	}{
		{desc: "Bit followed by bit", field: bit, next: &bit, want: 0},
		{desc: "Bit followed by scalar", field: bit, next: &scalar, want: 1},
		{desc: "Last bit", field: bit, next: nil, want: 1},
		{desc: "Scalar followed by bit", field: scalar, next: &bit, want: 2},
		{desc: "Last scalar", field: scalar, next: nil, want: 2},
	}

	for _, test := range tests {
		if got := test.field.StorageSize(test.next); got != test.want {
			t.Errorf("TestStorageSize(%s): got %d, want %d", test.desc, got, test.want)
		}
	}
}

func TestStructureSize(t *testing.T) {
	s := Structure{
		Name: "S",
		Fields: []Field{
			{Name: "a", Type: "uint32_t", Size: 4},
			{Name: "b", Bit: true, Size: 1},
			{Name: "c", Bit: true, Size: 1},
			{Name: "d", Type: "uint8_t", Array: true, ArraySize: "D_COUNT", Size: 3},
		},
	}
	if got := s.Size(); got != 8 {
		t.Errorf("TestStructureSize: got %d, want 8", got)
	}
	if got := (Structure{Name: "Empty"}).Size(); got != 0 {
		t.Errorf("TestStructureSize(empty): got %d, want 0", got)
	}
}

func TestValidate(t *testing.T) {
	bits := func(n int, size int) []Field {
		out := make([]Field, n)
		for i := range out {
			out[i] = Field{Name: string(rune('a' + i)), Bit: true, Size: size}
		}
		return out
	}

	tests := []struct {
		desc    string
		s       Structure
		wantErr bool
	}{
		{
			desc: "Success: valid",
			s: Structure{Name: "S", Fields: []Field{
				{Name: "a", Type: "uint8_t", Size: 1},
				{Name: "b", Type: "float", Array: true, ArraySize: "B_COUNT", Size: 8},
				{Name: "c", Bit: true, Size: 1},
			}},
		},
		{desc: "Success: empty", s: Structure{Name: "S"}},
		{desc: "Success: 8 bits in a byte", s: Structure{Name: "S", Fields: bits(8, 1)}},
		{desc: "Success: 32 bits in 4 bytes", s: Structure{Name: "S", Fields: bits(32, 4)}},
		{desc: "Error: 33 bits in 4 bytes", s: Structure{Name: "S", Fields: bits(33, 4)}, wantErr: true},
		{desc: "Error: 9 bits in a byte", s: Structure{Name: "S", Fields: bits(9, 1)}, wantErr: true},
		{desc: "Error: no struct name", s: Structure{}, wantErr: true},
		{desc: "Error: no field name", s: Structure{Name: "S", Fields: []Field{{Type: "uint8_t", Size: 1}}}, wantErr: true},
		{desc: "Error: zero size", s: Structure{Name: "S", Fields: []Field{{Name: "a", Type: "uint8_t"}}}, wantErr: true},
		{desc: "Error: no type", s: Structure{Name: "S", Fields: []Field{{Name: "a", Size: 1}}}, wantErr: true},
		{
			desc:    "Error: array without symbol",
			s:       Structure{Name: "S", Fields: []Field{{Name: "a", Type: "uint8_t", Array: true, Size: 4}}},
			wantErr: true,
		},
		{
			desc:    "Error: symbol without array",
			s:       Structure{Name: "S", Fields: []Field{{Name: "a", Type: "uint8_t", ArraySize: "A", Size: 4}}},
			wantErr: true,
		},
		{
			desc:    "Error: bit array",
			s:       Structure{Name: "S", Fields: []Field{{Name: "a", Bit: true, Array: true, ArraySize: "A", Size: 1}}},
			wantErr: true,
		},
		{
			desc:    "Error: scaled bit",
			s:       Structure{Name: "S", Fields: []Field{{Name: "a", Bit: true, Autoscale: "1, 0", Size: 1}}},
			wantErr: true,
		},
		{
			desc: "Error: duplicate field",
			s: Structure{Name: "S", Fields: []Field{
				{Name: "a", Type: "uint8_t", Size: 1},
				{Name: "a", Type: "uint8_t", Size: 1},
			}},
			wantErr: true,
		},
	}

	for _, test := range tests {
		err := test.s.Validate()
		switch {
		case err == nil && test.wantErr:
			t.Errorf("TestValidate(%s): got err == nil, want err != nil", test.desc)
		case err != nil && !test.wantErr:
			t.Errorf("TestValidate(%s): got err == %s, want err == nil", test.desc, err)
		case err != nil && !errors.Is(err, ErrInvalid):
			t.Errorf("TestValidate(%s): got err == %s, want it to wrap ErrInvalid", test.desc, err)
		}
	}
}

func TestFileValidateDuplicateStruct(t *testing.T) {
	f := &File{Structures: []Structure{{Name: "S"}, {Name: "S"}}}
	if err := f.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("TestFileValidateDuplicateStruct: got err == %v, want ErrInvalid", err)
	}
}

func TestIsPrimitive(t *testing.T) {
	for _, name := range []string{"uint8_t", "int32_t", "float", "angle_t"} {
		if !IsPrimitive(name) {
			t.Errorf("TestIsPrimitive(%s): got false, want true", name)
		}
	}
	for _, name := range []string{"", "my_enum_e", "stft_s", "uint8"} {
		if IsPrimitive(name) {
			t.Errorf("TestIsPrimitive(%s): got true, want false", name)
		}
	}
}
