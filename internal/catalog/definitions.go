package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"numbasis/internal/expr"
	"numbasis/internal/units"
)

//go:embed units.schema.json
var unitsSchema []byte

const unitsSchemaURL = "units.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Definitions is a file of extra derived units, e.g.
//
//	units:
//	  - name: furlong
//	    factor: "201168/1000"
//	    of: [{unit: meter}]
type Definitions struct {
	Units []Definition `yaml:"units"`
}

// Definition describes one unit as prefix*factor*pi**pi_power*prod(of).
// Units are referenced by name or abbreviation; no expression text is parsed.
type Definition struct {
	Name    string `yaml:"name"`
	Abbrev  string `yaml:"abbrev,omitempty"`
	LaTeX   string `yaml:"latex,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"`
	Factor  string `yaml:"factor,omitempty"`
	PiPower int64  `yaml:"pi_power,omitempty"`
	Of      []Term `yaml:"of"`
}

type Term struct {
	Unit  string `yaml:"unit"`
	Power *int64 `yaml:"power,omitempty"`
}

// LoadDefinitions reads and validates a definitions file.
func LoadDefinitions(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defs, err := ParseDefinitions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// ParseDefinitions decodes YAML definitions after checking them against the
// embedded JSON schema.
func ParseDefinitions(data []byte) (*Definitions, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse unit definitions: %w", err)
	}
	if err := validateDefinitions(raw); err != nil {
		return nil, err
	}
	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to decode unit definitions: %w", err)
	}
	return &defs, nil
}

func validateDefinitions(raw any) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("failed to compile unit definitions schema: %w", err)
	}

	// Round-trip through JSON so the validator sees JSON-native types.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal unit definitions for schema validation: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("failed to normalize unit definitions for schema validation: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("unit definitions schema validation failed: %w", err)
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(unitsSchemaURL, bytes.NewReader(unitsSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(unitsSchemaURL)
	})
	return compiledSchema, schemaErr
}

// Apply registers the definitions in order, so later units may refer to
// earlier ones. It must run before the catalog is used for any conversion.
func (c *Catalog) Apply(defs *Definitions) ([]*units.Quantity, error) {
	out := make([]*units.Quantity, 0, len(defs.Units))
	for _, d := range defs.Units {
		q, err := c.define(d)
		if err != nil {
			return out, fmt.Errorf("define %s: %w", d.Name, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func (c *Catalog) define(d Definition) (*units.Quantity, error) {
	factor := expr.Expr(expr.One)
	if d.Factor != "" {
		n, err := expr.ParseRat(d.Factor)
		if err != nil {
			return nil, err
		}
		factor = n
	}
	if d.PiPower != 0 {
		factor = expr.NewMul(factor, expr.Powi(expr.Pi, d.PiPower))
	}

	abbrev := d.Abbrev
	if d.Prefix != "" {
		p, ok := units.Prefixes[d.Prefix]
		if !ok {
			return nil, fmt.Errorf("unknown prefix %q", d.Prefix)
		}
		factor = expr.NewMul(p.Factor, factor)
		if abbrev == "" && len(d.Of) == 1 {
			if u, ok := c.Lookup(d.Of[0].Unit); ok {
				abbrev = p.Abbrev + u.Abbrev()
			}
		}
	}

	refs := make([]expr.Expr, 0, len(d.Of))
	for _, t := range d.Of {
		u, ok := c.Lookup(t.Unit)
		if !ok {
			return nil, fmt.Errorf("unknown unit %q", t.Unit)
		}
		power := int64(1)
		if t.Power != nil {
			power = *t.Power
		}
		refs = append(refs, expr.Powi(u, power))
	}

	var opts []units.QuantityOption
	if abbrev != "" {
		opts = append(opts, units.WithAbbrev(abbrev))
	}
	if d.LaTeX != "" {
		opts = append(opts, units.WithLaTeX(d.LaTeX))
	}
	return c.Registry.Relative(d.Name, factor, expr.NewMul(refs...), opts...)
}
