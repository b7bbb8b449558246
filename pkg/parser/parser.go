package parser

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	// fieldLexer tokenizes frozen field specs such as
	// ('pkg.CharField', [], {'max_length': '255'})
	fieldLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `'([^'\\]|\\.)*'|"([^"\\]|\\.)*"`},
		{Name: "Number", Pattern: `-?\d+(\.\d*)?`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
		{Name: "Punct", Pattern: `[(),:\[\]{}]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	parser = participle.MustBuild[FieldSpec](
		participle.Lexer(fieldLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)
)

type (
	// FieldSpec is the frozen triple (field_type, positional_attrs, keyword_attrs).
	FieldSpec struct {
		Type       string `parser:"'(' @String ','"`
		Positional *List  `parser:"@@ ','"`
		Keywords   *Dict  `parser:"@@ ','? ')'"`
	}

	// List is a bracketed sequence of values. Open is always set so that an
	// empty list still captures.
	List struct {
		Open  bool     `parser:"@'['"`
		Items []*Value `parser:"(@@ (',' @@)* ','?)? ']'"`
	}

	// Dict is a braced mapping of string keys to values.
	Dict struct {
		Open  bool    `parser:"@'{'"`
		Pairs []*Pair `parser:"(@@ (',' @@)* ','?)? '}'"`
	}

	Pair struct {
		Key   string `parser:"@String ':'"`
		Value *Value `parser:"@@"`
	}

	Value struct {
		String *string `parser:"  @String"`
		Number *string `parser:"| @Number"`
		Ident  *string `parser:"| @Ident"`
		List   *List   `parser:"| @@"`
		Dict   *Dict   `parser:"| @@"`
	}
)

// Parse parses a single frozen field spec from the reader.
func Parse(reader io.Reader) (*FieldSpec, error) {
	spec, err := parser.Parse("", reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse field spec")
	}

	return spec, nil
}

// ParseString parses a single frozen field spec from a string.
func ParseString(s string) (*FieldSpec, error) {
	return Parse(strings.NewReader(s))
}

// ParseField parses s and converts the result into a Field.
func ParseField(s string) (*Field, error) {
	spec, err := ParseString(s)
	if err != nil {
		return nil, err
	}

	return spec.Field(), nil
}

// Field converts the parsed triple into its plain string form.
func (f *FieldSpec) Field() *Field {
	field := &Field{
		Type:   unquote(f.Type),
		Args:   make([]string, 0, len(f.Positional.Items)),
		Kwargs: make(map[string]string, len(f.Keywords.Pairs)),
	}

	for _, v := range f.Positional.Items {
		field.Args = append(field.Args, v.Text())
	}

	for _, p := range f.Keywords.Pairs {
		field.Kwargs[unquote(p.Key)] = p.Value.Text()
	}

	return field
}

// Text renders the value without surrounding quotes. Nested lists and dicts
// are rendered in bracketed form.
func (v *Value) Text() string {
	switch {
	case v.String != nil:
		return unquote(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Ident != nil:
		return *v.Ident
	case v.List != nil:
		parts := make([]string, len(v.List.Items))
		for i, item := range v.List.Items {
			parts[i] = item.Text()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case v.Dict != nil:
		parts := make([]string, len(v.Dict.Pairs))
		for i, p := range v.Dict.Pairs {
			parts[i] = unquote(p.Key) + ": " + p.Value.Text()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}

	return ""
}

// unquote strips the surrounding quotes from a string token and resolves
// backslash escapes. strconv.Unquote is not used since single-quoted strings
// may hold more than one character.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	quote := s[0]
	if (quote != '\'' && quote != '"') || s[len(s)-1] != quote {
		return s
	}

	body := s[1 : len(s)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var sb strings.Builder
	escaped := false
	for _, r := range body {
		if escaped {
			switch r {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(r)
			}
			escaped = false
			continue
		}

		if r == '\\' {
			escaped = true
			continue
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
