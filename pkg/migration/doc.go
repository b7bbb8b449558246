// Package migration holds the data model of the engine: units, the ordered
// sets they belong to, plans computed over a set, and the error taxonomy.
//
// Sets are usually loaded from a directory of YAML unit files:
//
//	set, err := migration.LoadSet("blog", os.DirFS("blog/migrations"))
//	if err != nil {
//		return err
//	}
//
//	if err := set.Validate(); err != nil {
//		return err // a unit file changed since the sum file was written
//	}
//
// Units can also be built in code with a Funcs transformation and passed to
// NewSet, which is how tests and embedded migrations register them.
package migration
