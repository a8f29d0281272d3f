// assets/embed.go
//
// Embedded defaults shipped inside the binary:
//   - catalog.json: the built-in challenge catalog (letters, syllables, games).
//   - sql/*.sql:    schema migrations applied at startup.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed catalog.json sql/*.sql
var FS embed.FS

// Catalog returns the raw embedded catalog document.
func Catalog() ([]byte, error) {
	return FS.ReadFile("catalog.json")
}

// Migrations returns the migration files rooted at sql/.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// "sql" is a literal embedded directory; Sub only fails on invalid paths.
		panic(err)
	}
	return sub
}
