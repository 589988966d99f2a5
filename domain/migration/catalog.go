package migration

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
)

// Catalog is the ordered, versioned set of migration units known to the
// runner. Units are sorted by version ascending and versions are unique.
type Catalog struct {
	units []Unit
}

// catalog filenames look like 001_create_users.sql
var unitFilePattern = regexp.MustCompile(`^(\d+)_([A-Za-z0-9_-]+)\.sql$`)

// NewCatalog builds a catalog from units, sorting them by version and
// rejecting duplicate versions.
func NewCatalog(units []Unit) (*Catalog, error) {
	sorted := make([]Unit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	seen := make(map[string]struct{}, len(sorted))
	for _, u := range sorted {
		if _, dup := seen[u.Version]; dup {
			return nil, fmt.Errorf("duplicate migration version %q", u.Version)
		}
		seen[u.Version] = struct{}{}
	}

	return &Catalog{units: sorted}, nil
}

// LoadCatalog reads every *.sql file under dir in fsys. Filenames must follow
// the NNN_name.sql convention; anything else is an error rather than being
// silently skipped.
func LoadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migration directory %q: %w", dir, err)
	}

	var units []Unit
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		m := unitFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			return nil, fmt.Errorf("migration file %q does not match NNN_name.sql", entry.Name())
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading migration %q: %w", entry.Name(), err)
		}
		units = append(units, NewUnit(m[1], m[2], string(data)))
	}

	return NewCatalog(units)
}

// Units returns all units in version order.
func (c *Catalog) Units() []Unit {
	out := make([]Unit, len(c.units))
	copy(out, c.units)
	return out
}

// Len returns the number of units.
func (c *Catalog) Len() int {
	return len(c.units)
}

// Pending returns the units whose version has no successful ledger entry, in
// version order. applied is keyed by version.
func (c *Catalog) Pending(applied map[string]string) []Unit {
	var pending []Unit
	for _, u := range c.units {
		if _, ok := applied[u.Version]; !ok {
			pending = append(pending, u)
		}
	}
	return pending
}

// Drifted returns the versions whose latest successful ledger checksum no
// longer matches the catalog's source text.
func (c *Catalog) Drifted(applied map[string]string) []string {
	var drifted []string
	for _, u := range c.units {
		if checksum, ok := applied[u.Version]; ok && checksum != u.Checksum {
			drifted = append(drifted, u.Version)
		}
	}
	return drifted
}
