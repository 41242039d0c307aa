package reconcile

import (
	"fmt"

	"shipdesk/internal/domain"
)

// Provenance collects the field paths a single merge overwrote. It is built
// fresh for every merge and becomes the draft's provenance map wholesale.
type Provenance struct {
	paths []string
	seen  map[string]bool
}

// NewProvenance returns an empty tracker.
func NewProvenance() *Provenance {
	return &Provenance{seen: make(map[string]bool)}
}

// Mark records path as auto-filled. Repeated marks are ignored.
func (p *Provenance) Mark(path string) {
	if p.seen[path] {
		return
	}
	p.seen[path] = true
	p.paths = append(p.paths, path)
}

// Paths returns the marked paths in the order they were filled.
func (p *Provenance) Paths() []string {
	return append([]string(nil), p.paths...)
}

// Map returns the marked paths as a provenance map.
func (p *Provenance) Map() domain.ProvenanceMap {
	m := make(domain.ProvenanceMap, len(p.paths))
	for _, path := range p.paths {
		m[path] = true
	}
	return m
}

// ToMap converts a filled-path list into a provenance map.
func ToMap(paths []string) domain.ProvenanceMap {
	m := make(domain.ProvenanceMap, len(paths))
	for _, path := range paths {
		m[path] = true
	}
	return m
}

func packagePath(i int) string {
	return fmt.Sprintf("packages[%d]", i)
}

func productPath(pkg, prod int) string {
	return fmt.Sprintf("packages[%d].products[%d]", pkg, prod)
}
