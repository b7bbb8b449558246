// Package parser reads frozen field specs with github.com/alecthomas/participle/v2.
//
// A frozen field spec is the textual form of a schema snapshot field triple:
//
//	('pkg.CharField', [], {'max_length': '255', 'null': 'True'})
//
// The first element is the field type, the second the positional attributes
// and the third the keyword attributes. Values may be quoted strings, numbers,
// bare identifiers, or nested lists and mappings.
//
// Basic usage:
//
//	field, err := parser.ParseField(`('pkg.CharField', [], {'max_length': '255'})`)
//	if err != nil {
//		return err
//	}
//
//	fmt.Println(field.Type, field.Kwargs["max_length"])
package parser
