package schemadiff_test

import (
	"testing"

	"github.com/pseudomuto/steward/pkg/migration"
	"github.com/pseudomuto/steward/pkg/parser"
	. "github.com/pseudomuto/steward/pkg/schemadiff"
	"github.com/stretchr/testify/require"
)

func unit(name string, snap migration.Snapshot) *migration.Unit {
	return &migration.Unit{App: "blog", Name: name, Snapshot: snap}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		a, b     migration.Snapshot
		expected []string
	}{
		{
			name: "added model and attribute",
			a: migration.Snapshot{
				"Post": {"title": []any{"CharField", []any{}, map[string]any{}}},
			},
			b: migration.Snapshot{
				"Post":    {"title": []any{"CharField", []any{}, map[string]any{"max_length": 255}}},
				"Comment": {},
			},
			expected: []string{
				"added model Comment",
				"added Post.title attribute max_length=255",
			},
		},
		{
			name: "models use Meta.object_name",
			a: migration.Snapshot{
				"blog.tag": {"Meta": map[string]any{"object_name": "Tag"}},
			},
			b: migration.Snapshot{
				"blog.post": {"Meta": map[string]any{"object_name": "Post"}},
			},
			expected: []string{
				"added model Post",
				"removed model Tag",
			},
		},
		{
			name: "fields",
			a: migration.Snapshot{
				"blog.post": {
					"Meta":  map[string]any{"object_name": "Post"},
					"title": "('pkg.CharField', [], {})",
					"body":  "('pkg.TextField', [], {})",
				},
			},
			b: migration.Snapshot{
				"blog.post": {
					"Meta":  map[string]any{"object_name": "Post"},
					"title": "('pkg.CharField', [], {})",
					"slug":  "('pkg.SlugField', [], {})",
					"tags":  "('pkg.TextField', [], {})",
				},
			},
			expected: []string{
				"added field Post.slug",
				"added field Post.tags",
				"removed field Post.body",
			},
		},
		{
			name: "attributes",
			a: migration.Snapshot{
				"Post": {"title": "('pkg.CharField', [], {'max_length': '100', 'null': 'True', 'db_index': 'True'})"},
			},
			b: migration.Snapshot{
				"Post": {"title": "('pkg.CharField', [], {'max_length': '255', 'db_index': 'True', 'blank': 'True'})"},
			},
			expected: []string{
				"added Post.title attribute blank=True",
				"removed attribute Post.title(null=True)",
				"Post.title attribute max_length changed from 100 to 255",
			},
		},
		{
			name: "field type",
			a:    migration.Snapshot{"Post": {"body": "('pkg.CharField', [], {})"}},
			b:    migration.Snapshot{"Post": {"body": "('pkg.TextField', [], {})"}},
			expected: []string{
				"Post.body type changed from pkg.CharField to pkg.TextField",
			},
		},
		{
			name: "positional attributes are flagged",
			a:    migration.Snapshot{"Post": {"author": "('pkg.ForeignKey', ['auth.User'], {})"}},
			b:    migration.Snapshot{"Post": {"author": "('pkg.ForeignKey', ['auth.Account'], {})"}},
			expected: []string{
				"Post.author list [auth.User] is not []",
				"Post.author list [auth.Account] is not []",
				"Post.author list changed from [auth.User] to [auth.Account]",
			},
		},
		{
			name: "field becomes a class",
			a:    migration.Snapshot{"Post": {"meta": "('pkg.TextField', [], {})"}},
			b:    migration.Snapshot{"Post": {"meta": map[string]any{"db_table": "post_meta"}}},
			expected: []string{
				"type of Post.meta changed from ('pkg.TextField', [], {}) to {db_table: post_meta}",
			},
		},
		{
			name: "class-valued fields are opaque",
			a:    migration.Snapshot{"Post": {"Meta": map[string]any{"db_table": "a"}}},
			b:    migration.Snapshot{"Post": {"Meta": map[string]any{"db_table": "b"}}},
		},
		{
			name: "text and sequence forms compare equal",
			a:    migration.Snapshot{"Post": {"title": "('pkg.CharField', [], {'max_length': '255'})"}},
			b:    migration.Snapshot{"Post": {"title": []any{"pkg.CharField", []any{}, map[string]any{"max_length": 255}}}},
		},
		{
			name: "parsed fields",
			a:    migration.Snapshot{"Post": {"title": parser.NewField("pkg.CharField", nil, nil)}},
			b:    migration.Snapshot{"Post": {"title": parser.NewField("pkg.CharField", nil, map[string]string{"null": "True"})}},
			expected: []string{
				"added Post.title attribute null=True",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Diff(unit("0001_initial", tt.a), unit("0002_next", tt.b))
			require.Equal(t, "blog", r.App)
			require.Equal(t, "0001_initial", r.From)
			require.Equal(t, "0002_next", r.To)
			require.Equal(t, tt.expected, r.Changes)
			require.Empty(t, r.Problems)
			require.Equal(t, len(tt.expected) == 0, r.Empty())
		})
	}
}

func TestDiffMalformed(t *testing.T) {
	a := migration.Snapshot{
		"Post": {
			"title":  "('pkg.CharField', [], {})",
			"body":   "not a field",
			"slug":   []any{"pkg.SlugField", []any{}},
			"rating": 5,
		},
	}
	b := migration.Snapshot{
		"Post": {
			"title":  "('pkg.CharField', [], {'null': 'True'})",
			"body":   "('pkg.TextField', [], {})",
			"slug":   []any{"pkg.SlugField", "oops", map[string]any{}},
			"rating": "('pkg.IntegerField', [], {})",
		},
		"Comment": {},
	}

	r := Diff(unit("0001_initial", a), unit("0002_next", b))
	require.Equal(t, []string{
		"added model Comment",
		"added Post.title attribute null=True",
	}, r.Changes)

	require.Len(t, r.Problems, 4)
	require.ErrorIs(t, r.Problems[0], migration.ErrMalformedSnapshot)

	locations := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		locations[i] = p.Unit + ":" + p.Model + "." + p.Field
	}
	require.Equal(t, []string{
		"0001_initial:Post.body",
		"0001_initial:Post.rating",
		"0001_initial:Post.slug",
		"0002_next:Post.slug",
	}, locations)
	require.Contains(t, r.Problems[1].Reason, "unexpected int value")
	require.Contains(t, r.Problems[2].Reason, "expected a triple, got 2 elements")
	require.Contains(t, r.Problems[3].Reason, "positional attributes must be a list")
}

func TestDiffSet(t *testing.T) {
	set, err := migration.NewSet("blog",
		&migration.Unit{Name: "0001_initial", Snapshot: migration.Snapshot{"Post": {}}},
		&migration.Unit{Name: "0002_tags", Snapshot: migration.Snapshot{"Post": {}, "Tag": {}}},
		&migration.Unit{Name: "0003_drop_tags", Snapshot: migration.Snapshot{"Post": {}}},
	)
	require.NoError(t, err)

	reports := DiffSet(set)
	require.Len(t, reports, 2)
	require.Equal(t, "0002_tags", reports[0].To)
	require.Equal(t, []string{"added model Tag"}, reports[0].Changes)
	require.Equal(t, "0003_drop_tags", reports[1].To)
	require.Equal(t, []string{"removed model Tag"}, reports[1].Changes)

	single, err := migration.NewSet("blog", &migration.Unit{Name: "0001_initial"})
	require.NoError(t, err)
	require.Empty(t, DiffSet(single))
}
