package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/partforge/partsync/pkg/errors"
)

// file is the YAML layout of the categories configuration:
//
//	categories:
//	  Electronics:
//	    Resistors:
//	      _parameters: [Resistance, Tolerance]
//	      Chip Resistors:
//	        _aliases: [Chip Resistor - Surface Mount]
//	        _parameters: [Package Type]
//	parameters:
//	  Resistance:
//	    units: ohm
//	    aliases: [Resistance (Ohms)]
//
// Nested categories inherit their ancestors' parameters. Keys starting
// with an underscore are directives, everything else is a subcategory.
type file struct {
	Categories map[string]any           `yaml:"categories"`
	Parameters map[string]parameterSpec `yaml:"parameters"`
}

type parameterSpec struct {
	Units   string   `yaml:"units"`
	Aliases []string `yaml:"aliases"`
}

// Load parses the categories configuration from r.
func Load(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewConfigError("categories", "reading configuration", err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.WrapParse("yaml", "categories configuration", err)
	}

	var categories []*Category
	if err := walkCategories(f.Categories, nil, nil, &categories); err != nil {
		return nil, err
	}

	parameters := make([]*Parameter, 0, len(f.Parameters))
	for _, name := range sortedKeys(f.Parameters) {
		def := f.Parameters[name]
		parameters = append(parameters, &Parameter{
			Name:    name,
			Units:   def.Units,
			Aliases: def.Aliases,
		})
	}

	return New(categories, parameters), nil
}

// LoadFile parses the categories configuration at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewConfigError("categories", fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()
	return Load(f)
}

// walkCategories flattens the nested YAML tree into Category values,
// carrying inherited parameters down the path.
func walkCategories(node map[string]any, path, inherited []string, out *[]*Category) error {
	if node == nil {
		return nil
	}

	directives, children, err := splitNode(node, path)
	if err != nil {
		return err
	}

	parameters := append(append([]string{}, inherited...), directives.parameters...)

	if len(path) > 0 {
		*out = append(*out, &Category{
			Name:       path[len(path)-1],
			Path:       append([]string{}, path...),
			Parameters: parameters,
			Aliases:    directives.aliases,
		})
	}

	for _, name := range sortedKeys(children) {
		child, ok := children[name].(map[string]any)
		if !ok && children[name] != nil {
			return errors.NewConfigError("categories",
				fmt.Sprintf("category %q must be a mapping", name), nil)
		}
		if err := walkCategories(child, append(path, name), parameters, out); err != nil {
			return err
		}
	}
	return nil
}

type nodeDirectives struct {
	parameters []string
	aliases    []string
}

func splitNode(node map[string]any, path []string) (nodeDirectives, map[string]any, error) {
	var d nodeDirectives
	children := make(map[string]any)

	for key, value := range node {
		switch key {
		case "_parameters":
			list, err := stringList(value)
			if err != nil {
				return d, nil, errors.NewConfigError("categories",
					fmt.Sprintf("_parameters of %v: %v", path, err), nil)
			}
			d.parameters = list
		case "_aliases":
			list, err := stringList(value)
			if err != nil {
				return d, nil, errors.NewConfigError("categories",
					fmt.Sprintf("_aliases of %v: %v", path, err), nil)
			}
			d.aliases = list
		default:
			children[key] = value
		}
	}
	return d, children, nil
}

func stringList(value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", value)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}
