package migration_test

import (
	"bytes"
	"testing"
	"testing/fstest"

	. "github.com/pseudomuto/steward/pkg/migration"
	"github.com/stretchr/testify/require"
)

const initialUnit = `
forwards:
  - CREATE TABLE blog_post (id INTEGER PRIMARY KEY, title TEXT)
backwards:
  - DROP TABLE blog_post
models:
  blog.post:
    Meta: {object_name: Post, db_table: blog_post}
    title: "('pkg.CharField', [], {'max_length': '255'})"
`

const tagsUnit = `
forwards:
  - ALTER TABLE blog_post ADD COLUMN tags TEXT
models:
  blog.post:
    Meta: {object_name: Post, db_table: blog_post}
    title: [pkg.CharField, [], {max_length: 255}]
    tags: [pkg.TextField, [], {}]
`

func migrationsFS() fstest.MapFS {
	return fstest.MapFS{
		"0002_add_tags.yaml": {Data: []byte(tagsUnit)},
		"0001_initial.yaml":  {Data: []byte(initialUnit)},
		"_draft.yaml":        {Data: []byte("not: [valid")},
		".hidden.yaml":       {Data: []byte("not: [valid")},
		"README.md":          {Data: []byte("# migrations")},
		"nested/0003.yaml":   {Data: []byte(tagsUnit)},
	}
}

func TestLoadSet(t *testing.T) {
	set, err := LoadSet("blog", migrationsFS())
	require.NoError(t, err)
	require.Equal(t, "blog", set.App)
	require.Equal(t, []string{"0001_initial", "0002_add_tags"}, set.Names())

	initial := set.Get("0001_initial")
	require.True(t, initial.Creates)
	require.Equal(t, "Post", initial.Snapshot.DisplayName("blog.post"))
	require.Equal(t, "('pkg.CharField', [], {'max_length': '255'})", initial.Snapshot["blog.post"]["title"])
	require.Equal(t, SQL{
		Forwards:  []string{"CREATE TABLE blog_post (id INTEGER PRIMARY KEY, title TEXT)"},
		Backwards: []string{"DROP TABLE blog_post"},
	}, initial.Transformation)

	tags := set.Get("0002_add_tags")
	require.False(t, tags.Creates)
	require.Equal(t, []any{"pkg.TextField", []any{}, map[string]any{}}, tags.Snapshot["blog.post"]["tags"])

	require.Equal(t, 2, set.SumFile().Files())
	require.NoError(t, set.Validate())
}

const authorUnit = `
creates: false
models:
  blog.post: {}
  blog.author: {}
`

func TestLoadSetCreates(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_initial.yaml":  {Data: []byte(initialUnit)},
		"0002_data.yaml":     {Data: []byte("forwards:\n  - UPDATE blog_post SET title = 'x'\n")},
		"0003_add_tags.yaml": {Data: []byte(tagsUnit)},
		"0004_author.yaml":   {Data: []byte(authorUnit)},
		"0005_reindex.yaml":  {Data: []byte("creates: true\nforwards:\n  - REINDEX\n")},
	}

	set, err := LoadSet("blog", fsys)
	require.NoError(t, err)

	creates := make([]bool, set.Len())
	for i, u := range set.Units {
		creates[i] = u.Creates
	}
	require.Equal(t, []bool{true, false, false, false, true}, creates)

	// A unit without models keeps its predecessor's snapshot.
	require.Equal(t, set.Get("0001_initial").Snapshot, set.Get("0002_data").Snapshot)
	require.Equal(t, set.Get("0004_author").Snapshot, set.Get("0005_reindex").Snapshot)
}

func TestLoadSetErrors(t *testing.T) {
	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadSet("blog", fstest.MapFS{"0001_initial.yaml": {Data: []byte("forwards: [")}})
		require.ErrorContains(t, err, "failed to load migration: 0001_initial.yaml")
	})

	t.Run("invalid sum file", func(t *testing.T) {
		fsys := migrationsFS()
		fsys["steward.sum"] = &fstest.MapFile{Data: []byte("bogus\n")}

		_, err := LoadSet("blog", fsys)
		require.ErrorContains(t, err, "failed to load steward.sum for blog")
	})
}

func TestSetValidate(t *testing.T) {
	set, err := LoadSet("blog", migrationsFS())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = set.SumFile().WriteTo(&buf)
	require.NoError(t, err)

	t.Run("matching sum file", func(t *testing.T) {
		fsys := migrationsFS()
		fsys["steward.sum"] = &fstest.MapFile{Data: buf.Bytes()}

		set, err := LoadSet("blog", fsys)
		require.NoError(t, err)
		require.NoError(t, set.Validate())
	})

	t.Run("edited unit file", func(t *testing.T) {
		fsys := migrationsFS()
		fsys["steward.sum"] = &fstest.MapFile{Data: buf.Bytes()}
		fsys["0002_add_tags.yaml"] = &fstest.MapFile{Data: []byte(tagsUnit + "\n# edited\n")}

		set, err := LoadSet("blog", fsys)
		require.NoError(t, err)
		require.ErrorContains(t, set.Validate(), "0002_add_tags.yaml does not match steward.sum")
	})

	t.Run("new unit file", func(t *testing.T) {
		fsys := migrationsFS()
		fsys["steward.sum"] = &fstest.MapFile{Data: buf.Bytes()}
		fsys["0003_comments.yaml"] = &fstest.MapFile{Data: []byte(tagsUnit)}

		set, err := LoadSet("blog", fsys)
		require.NoError(t, err)
		require.ErrorContains(t, set.Validate(), "0003_comments.yaml")
	})
}
