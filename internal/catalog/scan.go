package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner finds unit definition files below a directory.
type Scanner struct {
	ignored []string
}

func NewScanner() *Scanner {
	return &Scanner{
		ignored: []string{".git", "vendor", "node_modules", "testdata"},
	}
}

// ScanDefinitions walks root and parses every .yaml or .yml file in lexical
// path order, so that files may build on units from earlier ones. The first
// invalid file aborts the scan.
func (s *Scanner) ScanDefinitions(root string, onFile func(path string, defs *Definitions) error) error {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range s.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(paths)
	for _, path := range paths {
		defs, err := LoadDefinitions(path)
		if err != nil {
			return err
		}
		if err := onFile(path, defs); err != nil {
			return err
		}
	}
	return nil
}

// ApplyPath applies a single definitions file, or every definitions file
// below a directory.
func (c *Catalog) ApplyPath(path string) ([]string, error) {
	var applied []string
	apply := func(_ string, defs *Definitions) error {
		qs, err := c.Apply(defs)
		if err != nil {
			return err
		}
		for _, q := range qs {
			applied = append(applied, q.Name())
		}
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		err = NewScanner().ScanDefinitions(path, apply)
	} else {
		var defs *Definitions
		if defs, err = LoadDefinitions(path); err == nil {
			err = apply(path, defs)
		}
	}
	if err != nil {
		return applied, err
	}
	return applied, nil
}
