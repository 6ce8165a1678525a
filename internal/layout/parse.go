package layout

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gostdlib/base/context"
	"github.com/johnsiilver/halfpike"
	"github.com/pkg/errors"
)

/*
Layout description format. Every structure is:

struct {{Name}} {
	doc "{{raw comment}}"
	field {{name}} {{type}} {{size}}
	field {{name}} {{type}} {{size}} {
		comment "{{raw comment}}"
		units "{{units}}"
		autoscale "{{base, factor}}"
		array {{SYMBOL}}
	}
	bit {{name}} [{{size}}] [{]
}

Quoted values are kept raw: a `\n` inside quotes stays the two character escape.
Lines starting with // are ignored.
*/

// Parse parses the layout description in content. source is recorded in the
// returned File for use in generated banners.
func Parse(ctx context.Context, source, content string) (*File, error) {
	p := &parser{file: &File{Source: source}}
	if err := halfpike.Parse(ctx, content, p); err != nil {
		return nil, err
	}
	return p.file, nil
}

// parser implements halfpike.Validator.
type parser struct {
	file *File
}

// Validate implements halfpike.Validator.Validate().
func (p *parser) Validate() error {
	return p.file.Validate()
}

// Start implements halfpike.Validator.Start().
func (p *parser) Start(ctx context.Context, hp *halfpike.Parser) halfpike.ParseFn {
	return p.findStruct
}

func (p *parser) findStruct(ctx context.Context, hp *halfpike.Parser) halfpike.ParseFn {
	line, ok := nextLine(hp)
	if !ok {
		return nil
	}

	w := words(line)
	if len(w) != 3 {
		return hp.Errorf("[Line %d] error: got %q, want: 'struct {{Name}} {'", line.LineNum, strings.TrimSpace(line.Raw))
	}
	if err := caseSensitiveCheck("struct", w[0]); err != nil {
		return hp.Errorf("[Line %d] error: %w", line.LineNum, err)
	}
	if err := validIdent(w[1]); err != nil {
		return hp.Errorf("[Line %d] error: struct name: %w", line.LineNum, err)
	}
	if w[2] != "{" {
		return hp.Errorf("[Line %d] error: expected '{' after struct name, got %q", line.LineNum, w[2])
	}

	p.file.Structures = append(p.file.Structures, Structure{Name: w[1]})
	return p.parseStructBody
}

func (p *parser) parseStructBody(ctx context.Context, hp *halfpike.Parser) halfpike.ParseFn {
	s := &p.file.Structures[len(p.file.Structures)-1]

	for {
		line, ok := nextLine(hp)
		if !ok {
			return hp.Errorf("[Line %d] error: struct %s: EOF reached before closing '}'", line.LineNum, s.Name)
		}

		w := words(line)
		switch w[0] {
		case "}":
			if len(w) != 1 {
				return hp.Errorf("[Line %d] error: unexpected %q after '}'", line.LineNum, strings.Join(w[1:], " "))
			}
			return p.findStruct
		case "doc":
			if s.Comment != "" {
				return hp.Errorf("[Line %d] error: struct %s has more than one doc line", line.LineNum, s.Name)
			}
			v, err := quoted(line)
			if err != nil {
				return hp.Errorf("[Line %d] error: %w", line.LineNum, err)
			}
			s.Comment = v
		case "field", "bit":
			f, err := parseField(hp, line, w)
			if err != nil {
				return hp.Errorf("%w", err)
			}
			s.Fields = append(s.Fields, f)
		default:
			return hp.Errorf("[Line %d] error: do not understand %q inside struct %s", line.LineNum, w[0], s.Name)
		}
	}
}

// parseField parses a field or bit line and its optional attribute block.
func parseField(hp *halfpike.Parser, line halfpike.Line, w []string) (Field, error) {
	f := Field{}
	block := false
	if w[len(w)-1] == "{" {
		block = true
		w = w[:len(w)-1]
	}

	if w[0] == "bit" {
		if len(w) < 2 || len(w) > 3 {
			return f, errors.Errorf("[Line %d] error: got %q, want: 'bit {{name}} [{{size}}]'", line.LineNum, strings.TrimSpace(line.Raw))
		}
		f.Bit = true
		f.Type = "bool"
		f.Size = 1
		if len(w) == 3 {
			if err := atoi(w[2], &f.Size); err != nil {
				return f, errors.Wrapf(err, "[Line %d] error: bit %s size", line.LineNum, w[1])
			}
		}
	} else {
		if len(w) != 4 {
			return f, errors.Errorf("[Line %d] error: got %q, want: 'field {{name}} {{type}} {{size}}'", line.LineNum, strings.TrimSpace(line.Raw))
		}
		f.Type = w[2]
		if err := atoi(w[3], &f.Size); err != nil {
			return f, errors.Wrapf(err, "[Line %d] error: field %s size", line.LineNum, w[1])
		}
	}
	if err := validIdent(w[1]); err != nil {
		return f, errors.Wrapf(err, "[Line %d] error: field name", line.LineNum)
	}
	f.Name = w[1]

	if !block {
		return f, nil
	}

	for {
		line, ok := nextLine(hp)
		if !ok {
			return f, errors.Errorf("[Line %d] error: field %s: EOF reached before closing '}'", line.LineNum, f.Name)
		}
		w := words(line)

		var err error
		switch w[0] {
		case "}":
			return f, nil
		case "comment":
			f.Comment, err = quoted(line)
		case "units":
			f.Units, err = quoted(line)
		case "autoscale":
			f.Autoscale, err = quoted(line)
		case "array":
			if len(w) != 2 {
				return f, errors.Errorf("[Line %d] error: got %q, want: 'array {{SYMBOL}}'", line.LineNum, strings.TrimSpace(line.Raw))
			}
			f.Array = true
			f.ArraySize = w[1]
		default:
			return f, errors.Errorf("[Line %d] error: unknown field attribute %q", line.LineNum, w[0])
		}
		if err != nil {
			return f, errors.Wrapf(err, "[Line %d] error", line.LineNum)
		}
	}
}

// nextLine returns the next line that is not blank or a comment. ok is false
// at EOF, in which case the EOF line is returned.
func nextLine(hp *halfpike.Parser) (line halfpike.Line, ok bool) {
	for {
		line = hp.Next()
		if hp.EOF(line) {
			return line, false
		}
		w := words(line)
		if len(w) == 0 {
			continue
		}
		return line, true
	}
}

// words returns the values of the items in line, stopping at a // comment.
func words(line halfpike.Line) []string {
	out := make([]string, 0, len(line.Items))
	for _, item := range line.Items {
		v := strings.TrimSpace(item.Val)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "//") {
			break
		}
		out = append(out, v)
	}
	return out
}

// quoted returns the raw text between the first and last double quote of the line.
func quoted(line halfpike.Line) (string, error) {
	raw := strings.TrimSpace(line.Raw)
	start := strings.Index(raw, `"`)
	end := strings.LastIndex(raw, `"`)
	if start < 0 || end == start {
		return "", errors.Errorf("expected a quoted value, got %q", raw)
	}
	rest := strings.TrimSpace(raw[end+1:])
	if rest != "" && !strings.HasPrefix(rest, "//") {
		return "", errors.Errorf("unexpected %q after quoted value", rest)
	}
	return raw[start+1 : end], nil
}

func atoi(s string, n *int) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return errors.Errorf("%q is not an integer", s)
	}
	*n = v
	return nil
}

func caseSensitiveCheck(want string, item string) error {
	if item != want {
		if strings.EqualFold(item, want) {
			return errors.Errorf("%q keyword found, but it is required to be %q", item, want)
		}
		return errors.Errorf("got: %q, want: %q", item, want)
	}
	return nil
}

func validIdent(ident string) error {
	runes := []rune(ident)
	if !unicode.IsLetter(runes[0]) && runes[0] != '_' {
		return errors.Errorf("identifier %q must start with a letter or _", ident)
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			continue
		}
		return errors.Errorf("identifier %q contains character %q which is invalid", ident, r)
	}
	return nil
}
