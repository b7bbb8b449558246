package schemadiff

import (
	"fmt"
	"strings"

	"github.com/pseudomuto/steward/pkg/compare"
	"github.com/pseudomuto/steward/pkg/migration"
	"github.com/pseudomuto/steward/pkg/parser"
)

type (
	// Report is the change log between two consecutive units.
	Report struct {
		App  string
		From string
		To   string

		// Changes are human readable lines in a deterministic order.
		Changes []string

		// Problems are malformed snapshot values that could not be compared.
		Problems []*migration.MalformedSnapshotError
	}

	// fieldValue is a snapshot field in one of its two valid shapes.
	fieldValue struct {
		field   *parser.Field
		mapping map[string]any
	}
)

// DiffSet diffs every unit of set against its predecessor.
func DiffSet(set *migration.Set) []*Report {
	var reports []*Report
	for i := 1; i < set.Len(); i++ {
		reports = append(reports, Diff(set.Units[i-1], set.Units[i]))
	}

	return reports
}

// Diff reports the models, fields and field attributes that changed between
// a and b's snapshots. Values with an unexpected shape are recorded as
// problems and skipped.
func Diff(a, b *migration.Unit) *Report {
	r := &Report{App: b.App, From: a.Name, To: b.Name}
	models1, models2 := a.Snapshot, b.Snapshot

	added, removed, shared := compare.Keys(models1, models2)
	for _, model := range added {
		r.add("added model %s", models2.DisplayName(model))
	}

	for _, model := range removed {
		r.add("removed model %s", models1.DisplayName(model))
	}

	for _, model := range shared {
		fieldName := func(models migration.Snapshot, field string) string {
			return models.DisplayName(model) + "." + field
		}

		added, removed, shared := compare.Keys(models1[model], models2[model])
		for _, field := range added {
			r.add("added field %s", fieldName(models2, field))
		}

		for _, field := range removed {
			r.add("removed field %s", fieldName(models1, field))
		}

		for _, field := range shared {
			v1, err1 := classify(models1[model][field])
			v2, err2 := classify(models2[model][field])
			if err1 != "" || err2 != "" {
				if err1 != "" {
					r.problem(a.Name, model, field, err1)
				}
				if err2 != "" {
					r.problem(b.Name, model, field, err2)
				}
				continue
			}

			r.compareField(fieldName(models1, field), v1, v2)
		}
	}

	return r
}

func (r *Report) compareField(name string, v1, v2 *fieldValue) {
	switch {
	case (v1.mapping == nil) != (v2.mapping == nil):
		r.add("type of %s changed from %s to %s", name, v1, v2)
		return
	case v1.mapping != nil:
		// class-valued fields are opaque
		return
	}

	f1, f2 := v1.field, v2.field
	if f1.Type != f2.Type {
		r.add("%s type changed from %s to %s", name, f1.Type, f2.Type)
	}

	if len(f1.Args) > 0 {
		r.add("%s list %s is not []", name, list(f1.Args))
	}

	if len(f2.Args) > 0 {
		r.add("%s list %s is not []", name, list(f2.Args))
	}

	if !compare.Slices(f1.Args, f2.Args, func(a, b string) bool { return a == b }) {
		r.add("%s list changed from %s to %s", name, list(f1.Args), list(f2.Args))
	}

	added, removed, shared := compare.Keys(f1.Kwargs, f2.Kwargs)
	for _, attr := range added {
		r.add("added %s attribute %s=%s", name, attr, f2.Kwargs[attr])
	}

	for _, attr := range removed {
		r.add("removed attribute %s(%s=%s)", name, attr, f1.Kwargs[attr])
	}

	for _, attr := range shared {
		if f1.Kwargs[attr] != f2.Kwargs[attr] {
			r.add("%s attribute %s changed from %s to %s", name, attr, f1.Kwargs[attr], f2.Kwargs[attr])
		}
	}
}

func (r *Report) add(format string, args ...any) {
	r.Changes = append(r.Changes, fmt.Sprintf(format, args...))
}

func (r *Report) problem(unit, model, field, reason string) {
	r.Problems = append(r.Problems, &migration.MalformedSnapshotError{
		Unit:   unit,
		Model:  model,
		Field:  field,
		Reason: reason,
	})
}

// Empty reports whether nothing changed and nothing was malformed.
func (r *Report) Empty() bool {
	return len(r.Changes) == 0 && len(r.Problems) == 0
}

// classify determines the shape of a snapshot value. A non-empty string
// result describes why the value is malformed.
func classify(v any) (*fieldValue, string) {
	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			val = map[string]any{}
		}
		return &fieldValue{mapping: val}, ""
	case *parser.Field:
		if val == nil {
			return nil, "nil field"
		}
		return &fieldValue{field: val}, ""
	case string:
		f, err := parser.ParseField(val)
		if err != nil {
			return nil, err.Error()
		}
		return &fieldValue{field: f}, ""
	case []any:
		return classifyTriple(val)
	case nil:
		return nil, "missing field value"
	default:
		return nil, fmt.Sprintf("unexpected %T value", v)
	}
}

func classifyTriple(val []any) (*fieldValue, string) {
	if len(val) != 3 {
		return nil, fmt.Sprintf("expected a triple, got %d elements", len(val))
	}

	typ, ok := val[0].(string)
	if !ok {
		return nil, fmt.Sprintf("field type must be a string, got %T", val[0])
	}

	var args []string
	switch list := val[1].(type) {
	case nil:
	case []any:
		for _, item := range list {
			args = append(args, fmt.Sprint(item))
		}
	default:
		return nil, fmt.Sprintf("positional attributes must be a list, got %T", val[1])
	}

	kwargs := map[string]string{}
	switch attrs := val[2].(type) {
	case nil:
	case map[string]any:
		for k, v := range attrs {
			kwargs[k] = fmt.Sprint(v)
		}
	default:
		return nil, fmt.Sprintf("keyword attributes must be a mapping, got %T", val[2])
	}

	return &fieldValue{field: parser.NewField(typ, args, kwargs)}, ""
}

func (v *fieldValue) String() string {
	if v.field != nil {
		return v.field.String()
	}

	parts := make([]string, 0, len(v.mapping))
	for _, k := range compare.SortedKeys(v.mapping) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, v.mapping[k]))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

func list(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
