package command

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/zjrosen/devconsole/internal/log"
)

// ErrNoBinder is returned when binding a candidate that was not built from a
// Declaration.
var ErrNoBinder = errors.New("candidate has no binder")

// Candidate is a discovered declaration that has not been bound yet.
type Candidate struct {
	Name          string
	DeclaringType string
	Owner         reflect.Type
	Static        bool

	bind func(instance any) (Command, error)
}

// NewCandidate returns the bindable candidate for d.
func NewCandidate(d Declaration) Candidate {
	return Candidate{
		Name:          d.Name,
		DeclaringType: d.DeclaringType,
		Owner:         d.Owner,
		Static:        d.Static,
		bind:          d.bind,
	}
}

// Bind produces the invocable command. Static candidates ignore instance.
func (c Candidate) Bind(instance any) (Command, error) {
	if c.bind == nil {
		return nil, fmt.Errorf("%s: %w", c.Name, ErrNoBinder)
	}
	return c.bind(instance)
}

// Scanner discovers candidates.
type Scanner interface {
	Scan() []Candidate
}

// CatalogScanner scans a Catalog. Each call sees every declaration added so
// far, so declarations made after an earlier scan show up in the next one.
type CatalogScanner struct {
	catalog *Catalog
}

// NewScanner returns a scanner over catalog, or over Default when nil.
func NewScanner(catalog *Catalog) *CatalogScanner {
	if catalog == nil {
		catalog = Default
	}
	return &CatalogScanner{catalog: catalog}
}

// Scan returns one candidate per declaration, in declaration order.
func (s *CatalogScanner) Scan() []Candidate {
	decls := s.catalog.snapshot()
	candidates := make([]Candidate, 0, len(decls))
	for _, d := range decls {
		candidates = append(candidates, NewCandidate(d))
	}
	log.Debug(log.CatScan, "Scanned command declarations", "candidates", len(candidates))
	return candidates
}

// ScannerFunc adapts a function to Scanner.
type ScannerFunc func() []Candidate

// Scan calls f.
func (f ScannerFunc) Scan() []Candidate { return f() }

// ListScanner returns a scanner over a fixed registration list, such as one
// generated at build time. Entries with an empty name are dropped with an
// error log, as Catalog.Add does.
func ListScanner(decls ...Declaration) Scanner {
	candidates := make([]Candidate, 0, len(decls))
	for _, d := range decls {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			log.Error(log.CatScan, "Rejected command declaration without a name", "type", d.DeclaringType)
			continue
		}
		candidates = append(candidates, NewCandidate(d))
	}
	return ScannerFunc(func() []Candidate {
		out := make([]Candidate, len(candidates))
		copy(out, candidates)
		return out
	})
}
