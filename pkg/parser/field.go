package parser

import (
	"fmt"
	"slices"
	"strings"
)

// Field is a field triple with every attribute rendered as plain text.
type Field struct {
	Type   string
	Args   []string
	Kwargs map[string]string
}

// NewField builds a Field, copying the supplied attributes.
func NewField(typ string, args []string, kwargs map[string]string) *Field {
	f := &Field{
		Type:   typ,
		Args:   slices.Clone(args),
		Kwargs: make(map[string]string, len(kwargs)),
	}
	if f.Args == nil {
		f.Args = []string{}
	}

	for k, v := range kwargs {
		f.Kwargs[k] = v
	}

	return f
}

// String renders the field back into its frozen form with keyword attributes
// in key order.
//
//	('pkg.CharField', [], {'max_length': '255'})
func (f *Field) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = quote(a)
	}

	keys := make([]string, 0, len(f.Kwargs))
	for k := range f.Kwargs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	kwargs := make([]string, len(keys))
	for i, k := range keys {
		kwargs[i] = fmt.Sprintf("%s: %s", quote(k), quote(f.Kwargs[k]))
	}

	return fmt.Sprintf("(%s, [%s], {%s})", quote(f.Type), strings.Join(args, ", "), strings.Join(kwargs, ", "))
}

func quote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
