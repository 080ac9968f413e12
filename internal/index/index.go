// Package index holds the packages of one repository build, keyed by name.
package index

import (
	"slices"
	"strings"
	"sync"

	"github.com/ralt/pacrepo/internal/models"
)

// Index maps package names to records. At most one record is held per
// name; inserting a record of the same or a higher version replaces it.
//
// Index is safe for concurrent use.
type Index struct {
	mu       sync.RWMutex
	packages map[string]*models.Package
}

// New creates an empty index
func New() *Index {
	return &Index{packages: make(map[string]*models.Package)}
}

// Insert adds pkg to the index. It returns nil when the name was not
// present, the superseded record when pkg replaced one, or pkg itself when
// the held record has a strictly higher version and pkg was discarded.
//
// Insert panics when pkg has no name.
func (idx *Index) Insert(pkg *models.Package) *models.Package {
	if pkg.Name == "" {
		panic("index: insert of a package without a name")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	old, ok := idx.packages[pkg.Name]
	if !ok {
		idx.packages[pkg.Name] = pkg
		return nil
	}

	if models.VersionCompare(pkg.Version, old.Version) < 0 {
		return pkg
	}

	idx.packages[pkg.Name] = pkg
	return old
}

// Lookup returns the record held for name
func (idx *Index) Lookup(name string) (*models.Package, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	pkg, ok := idx.packages[name]
	return pkg, ok
}

// Remove deletes name from the index and returns the record it held
func (idx *Index) Remove(name string) (*models.Package, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	pkg, ok := idx.packages[name]
	if ok {
		delete(idx.packages, name)
	}
	return pkg, ok
}

// Len returns the number of records
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.packages)
}

// Enumerate returns every record sorted byte-wise by name. The slice is
// freshly allocated on each call.
func (idx *Index) Enumerate() []*models.Package {
	idx.mu.RLock()
	pkgs := make([]*models.Package, 0, len(idx.packages))
	for _, pkg := range idx.packages {
		pkgs = append(pkgs, pkg)
	}
	idx.mu.RUnlock()

	slices.SortFunc(pkgs, func(a, b *models.Package) int {
		return strings.Compare(a.Name, b.Name)
	})
	return pkgs
}
