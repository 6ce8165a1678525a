package layout

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/pkg/errors"
)

// DecodeJSON decodes a File that an upstream parser serialized as JSON.
// Unknown members are rejected so that typos in field attributes are not
// silently dropped. The File is validated before being returned.
func DecodeJSON(b []byte) (*File, error) {
	f := &File{}
	if err := json.Unmarshal(b, f, json.RejectUnknownMembers(true)); err != nil {
		return nil, errors.Wrap(err, "could not decode layout JSON")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// EncodeJSON encodes a File as indented JSON.
func EncodeJSON(f *File) ([]byte, error) {
	b, err := json.Marshal(f, json.Deterministic(true), jsontext.WithIndent("\t"))
	if err != nil {
		return nil, errors.Wrap(err, "could not encode layout JSON")
	}
	return b, nil
}
