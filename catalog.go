package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogEntry names a puzzle file offered to solvers.
type CatalogEntry struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	File string `yaml:"file" json:"file"`
}

// Catalog is the YAML puzzle list:
//
//	numbering: derive
//	puzzles:
//	  - name: Social Deduction
//	    file: social_deduction_ok.xml
type Catalog struct {
	Numbering string         `yaml:"numbering"`
	Puzzles   []CatalogEntry `yaml:"puzzles"`

	dir string
}

// LoadCatalog reads a catalog file. Relative puzzle paths resolve against the
// catalog's directory. Entries without an id use the file's base name.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	c.dir = filepath.Dir(path)

	seen := make(map[string]bool)
	for i := range c.Puzzles {
		e := &c.Puzzles[i]
		if e.File == "" {
			return nil, fmt.Errorf("catalog entry %d has no file", i)
		}
		if e.ID == "" {
			e.ID = strings.TrimSuffix(filepath.Base(e.File), filepath.Ext(e.File))
		}
		if e.Name == "" {
			e.Name = e.ID
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog has duplicate puzzle id %q", e.ID)
		}
		seen[e.ID] = true
	}
	return &c, nil
}

func (c *Catalog) path(e CatalogEntry) string {
	if filepath.IsAbs(e.File) {
		return e.File
	}
	return filepath.Join(c.dir, e.File)
}

// LoadInto parses every catalog puzzle into the store. A puzzle that fails
// structurally is logged and skipped; the rest still load.
func (c *Catalog) LoadInto(s *Store, fallback Numbering) (int, error) {
	mode := fallback
	if c.Numbering != "" {
		m, err := ParseNumbering(c.Numbering)
		if err != nil {
			return 0, err
		}
		mode = m
	}
	loaded := 0
	for _, e := range c.Puzzles {
		data, err := os.ReadFile(c.path(e))
		if err != nil {
			logError("catalog puzzle unreadable", "id", e.ID, "file", e.File, "error", err)
			continue
		}
		p, err := ParsePuzzle(string(data), mode)
		if p.Width == 0 {
			logError("catalog puzzle unusable", "id", e.ID, "error", err)
			continue
		}
		if err != nil {
			logWarn("catalog puzzle loaded with errors", "id", e.ID, "error", err)
		}
		p.ID = e.ID
		if p.Title == "" {
			p.Title = e.Name
		}
		s.PutPuzzle(p)
		loaded++
	}
	return loaded, nil
}
